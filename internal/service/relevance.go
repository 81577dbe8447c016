package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/model"
)

// Gate 判断一轮对话值不值得写进记忆
type Gate interface {
	IsMemorable(ctx context.Context, userMessage, reply string) (bool, error)
}

type GateOptions struct {
	Model     string
	MaxTokens int
}

// RelevanceGate 用一个便宜的小模型做二分类，只接受 "true"/"false"
type RelevanceGate struct {
	llm     llm.Provider
	persona model.Persona
	opts    GateOptions
}

func NewRelevanceGate(provider llm.Provider, persona model.Persona, opts GateOptions) *RelevanceGate {
	return &RelevanceGate{llm: provider, persona: persona, opts: opts}
}

func (g *RelevanceGate) instruction() string {
	return fmt.Sprintf(`Evaluate if this conversation contains important contextual information about the user or meaningful discussion about %s that should be remembered for future conversations.
Respond with only "true" or "false".

%s`, g.persona.Name, g.persona.GateCriteria)
}

// IsMemorable 小写后严格等于 "true" 才算值得记住；其他任何输出 (空、maybe、JSON、带空格) 都是 false
// 模型报错时返回 false 和错误，由调用方决定是否让整轮失败
func (g *RelevanceGate) IsMemorable(ctx context.Context, userMessage, reply string) (bool, error) {
	decision, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Model: g.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: g.instruction()},
			{Role: llm.RoleUser, Content: fmt.Sprintf("User: %s\n%s: %s", userMessage, g.persona.Name, reply)},
		},
		Temperature: 0,
		MaxTokens:   g.opts.MaxTokens,
	})
	if errors.Is(err, llm.ErrNoContent) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.ToLower(decision) == "true", nil
}
