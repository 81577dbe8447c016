package service

import (
	"errors"
	"fmt"
)

// 校验错误：调用方可以自行修正，映射为 400
var (
	ErrMissingUser    = errors.New("userName is required")
	ErrInvalidRequest = errors.New("invalid request body")
)

// 流水线各阶段名，同时用作日志字段和指标 label
const (
	StageEmbed   = "embed"
	StageSearch  = "search"
	StageRespond = "respond"
	StageGate    = "gate"
	StageSave    = "save"
)

// UpstreamError 远程服务 (embedding / 向量库 / LLM) 调用失败
// 模型返回空内容 (llm.ErrNoContent) 也按这个处理
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsValidation 判断是否是调用方参数问题
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingUser) || errors.Is(err, ErrInvalidRequest)
}
