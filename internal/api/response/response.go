package response

import (
	"github.com/gin-gonic/gin"
)

// ChatReply 对话成功时的响应体，前端只认 response 字段
type ChatReply struct {
	Response string `json:"response"`
}

// ErrorBody 错误响应体，不带任何内部细节
type ErrorBody struct {
	Error string `json:"error"`
}

// Reply 成功响应
func Reply(c *gin.Context, httpStatus int, text string) {
	c.JSON(httpStatus, ChatReply{Response: text})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Error: msg})
}
