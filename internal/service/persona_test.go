package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponder(provider llm.Provider) *PersonaResponder {
	return NewPersonaResponder(provider, model.DefaultPersona(), ResponderOptions{
		Model:       chatModel,
		Temperature: 0.9,
		MaxTokens:   120,
	})
}

func TestSystemPrompt_EmptyContext(t *testing.T) {
	r := newResponder(nil)
	prompt := r.SystemPrompt("alice", nil)

	assert.True(t, strings.HasPrefix(prompt, model.RizalScript))
	assert.True(t, strings.HasSuffix(prompt, "You are speaking with alice. Previous exchanges:\n"))
	assert.NotContains(t, prompt, "If you recognize")
}

func TestSystemPrompt_WithContext(t *testing.T) {
	r := newResponder(nil)
	history := []model.MemoryResult{
		{Content: "alice: I'm a nurse\nJose Rizal: A noble calling.", Timestamp: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)},
		{Content: "alice: I read El Fili\nJose Rizal: Then you know Simoun.", Timestamp: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)},
	}
	prompt := r.SystemPrompt("alice", history)

	first := "[2026-01-01T08:00:00Z] alice: I'm a nurse\nJose Rizal: A noble calling."
	second := "[2026-01-02T08:00:00Z] alice: I read El Fili\nJose Rizal: Then you know Simoun."
	assert.Contains(t, prompt, "Previous exchanges:\n"+first+"\n"+second)
	assert.Less(t, strings.Index(prompt, first), strings.Index(prompt, second))
	assert.Contains(t, prompt, "If you recognize alice, draw naturally from your past conversations.")
}

func TestRespond_Request(t *testing.T) {
	provider := newScriptedLLM("Good evening, Alice.", "false")
	r := newResponder(provider)

	reply, err := r.Respond(context.Background(), "Hi Jose, I'm Alice", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, "Good evening, Alice.", reply)

	reqs := provider.Requests(chatModel)
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.InDelta(t, 0.9, req.Temperature, 0.0001)
	assert.Equal(t, 120, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, r.SystemPrompt("alice", nil), req.Messages[0].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Hi Jose, I'm Alice"}, req.Messages[1])
}

func TestRespond_NoContentIsError(t *testing.T) {
	provider := newScriptedLLM("", "false")
	provider.reply = func(llm.CompletionRequest) (string, error) { return "", llm.ErrNoContent }

	_, err := newResponder(provider).Respond(context.Background(), "hi", "alice", nil)
	assert.ErrorIs(t, err, llm.ErrNoContent)
}
