package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leon37/RizalLamp/internal/api/middleware"
	"github.com/leon37/RizalLamp/internal/api/response"
	"github.com/leon37/RizalLamp/internal/service"
)

// ChatService 控制器只依赖这一个方法
type ChatService interface {
	Chat(ctx context.Context, in service.ChatInput) (*service.ChatResult, error)
}

type ChatController struct {
	service ChatService
}

// NewChatController 构造函数
func NewChatController(s ChatService) *ChatController {
	return &ChatController{service: s}
}

// ChatRequest 前端传来的 JSON，字段名沿用前端的 camelCase
type ChatRequest struct {
	Message  string `json:"message"`
	UserName string `json:"userName"`
}

// Chat POST /api/chat
func (ctrl *ChatController) Chat(c *gin.Context) {
	reqID := c.GetString(middleware.RequestIDKey)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid chat request body", "request_id", reqID, "error", err)
		ctrl.fail(c, reqID, service.ErrInvalidRequest)
		return
	}

	res, err := ctrl.service.Chat(c.Request.Context(), service.ChatInput{
		UserName: req.UserName,
		Message:  req.Message,
	})
	if err != nil {
		ctrl.fail(c, reqID, err)
		return
	}

	slog.Info("chat turn completed",
		"request_id", reqID,
		"user", req.UserName,
		"memorable", res.Memorable,
		"memory_id", res.MemoryID,
	)
	response.Reply(c, http.StatusOK, res.Reply)
}

// Greeting GET /api/chat，前端用来探活
func (ctrl *ChatController) Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from the GET request!"})
}

// fail 错误统一在这里映射：校验错误原样告诉调用方，其余一律 500 且不暴露细节
func (ctrl *ChatController) fail(c *gin.Context, reqID string, err error) {
	if service.IsValidation(err) {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	attrs := []any{"request_id", reqID, "error", err}
	var upErr *service.UpstreamError
	if errors.As(err, &upErr) {
		attrs = append(attrs, "stage", upErr.Stage)
	}
	slog.Error("chat turn failed", attrs...)
	response.Error(c, http.StatusInternalServerError, "internal server error")
}
