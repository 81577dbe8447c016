package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/model"
)

// Responder 生成角色回复
type Responder interface {
	Respond(ctx context.Context, userMessage, userName string, history []model.MemoryResult) (string, error)
}

type ResponderOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// PersonaResponder 拼装人设 System Prompt + 记忆上下文，调用生成模型
type PersonaResponder struct {
	llm     llm.Provider
	persona model.Persona
	opts    ResponderOptions
}

func NewPersonaResponder(provider llm.Provider, persona model.Persona, opts ResponderOptions) *PersonaResponder {
	return &PersonaResponder{llm: provider, persona: persona, opts: opts}
}

// SystemPrompt 上下文为空时只保留空的 "Previous exchanges" 块，不要求模型"认出"用户
func (r *PersonaResponder) SystemPrompt(userName string, history []model.MemoryResult) string {
	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, h.ContextLine())
	}
	contextBlock := strings.Join(lines, "\n")

	var sb strings.Builder
	sb.WriteString(r.persona.Script)
	fmt.Fprintf(&sb, "\n\nYou are speaking with %s. Previous exchanges:\n%s", userName, contextBlock)
	if contextBlock != "" {
		fmt.Fprintf(&sb, "\n\nIf you recognize %s, draw naturally from your past conversations.", userName)
	}
	return sb.String()
}

func (r *PersonaResponder) Respond(ctx context.Context, userMessage, userName string, history []model.MemoryResult) (string, error) {
	return r.llm.Complete(ctx, llm.CompletionRequest{
		Model: r.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: r.SystemPrompt(userName, history)},
			{Role: llm.RoleUser, Content: userMessage},
		},
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	})
}
