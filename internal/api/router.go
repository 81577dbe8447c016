package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leon37/RizalLamp/internal/api/controller"
	"github.com/leon37/RizalLamp/internal/api/middleware"
	"github.com/leon37/RizalLamp/internal/metrics"
)

// NewEngine 创建 gin 引擎并挂上全局中间件
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Prometheus(), middleware.Cors())
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, chatCtrl *controller.ChatController) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics.Enabled() {
		r.GET("/metrics", middleware.MetricsHandler())
	}

	chat := r.Group("/api")
	{
		chat.POST("/chat", chatCtrl.Chat)
		chat.GET("/chat", chatCtrl.Greeting)
	}
}
