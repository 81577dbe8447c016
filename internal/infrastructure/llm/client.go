package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/leon37/RizalLamp/internal/config"
)

// ErrNoContent 模型调用成功但没有返回可用文本
var ErrNoContent = errors.New("llm returned no content")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 一条带角色的对话
type Message struct {
	Role    string
	Content string
}

// CompletionRequest 一次文本生成请求
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Provider 定义了 LLM 的通用行为
type Provider interface {
	// Complete 返回生成的文本；没有文本时返回 ErrNoContent
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// New 按 provider 名称构建客户端
func New(provider, apiKey, baseURL string) (Provider, error) {
	switch provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(apiKey, baseURL), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(apiKey, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}
