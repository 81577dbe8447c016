package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/leon37/RizalLamp/internal/config"
	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/model"
	"github.com/leon37/RizalLamp/internal/service"
)

// personaprobe 不连向量库，直接用配置里的模型跑人设回复和 Relevance Gate
func main() {
	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if conf.LLM.APIKey == "" {
		log.Fatal("llm.api_key is required (RIZALLAMP_LLM_API_KEY)")
	}
	log.Println("config loaded")

	llmClient, err := llm.New(conf.LLM.Provider, conf.LLM.APIKey, conf.LLM.BaseURL)
	if err != nil {
		log.Fatalf("failed to init llm client: %v", err)
	}

	persona := model.DefaultPersona()
	if conf.Persona.Name != "" || conf.Persona.ScriptFile != "" {
		if persona, err = model.LoadPersona(conf.Persona.Name, conf.Persona.ScriptFile); err != nil {
			log.Fatalf("failed to load persona: %v", err)
		}
	}
	responder := service.NewPersonaResponder(llmClient, persona, service.ResponderOptions{
		Model:       conf.LLM.Model,
		Temperature: conf.LLM.Temperature,
		MaxTokens:   conf.LLM.MaxTokens,
	})
	gate := service.NewRelevanceGate(llmClient, persona, service.GateOptions{
		Model:     conf.LLM.GateModel,
		MaxTokens: conf.LLM.GateMaxTokens,
	})

	ctx := context.Background()

	// 模拟：RAG 检索到的历史记忆
	recalled := []model.MemoryResult{{
		Content:   model.FormatMemoryContent("alice", persona.Name, "I'm Alice, a nurse from Calamba", "Calamba! My own hometown. Nursing is a noble calling."),
		Timestamp: time.Now().Add(-72 * time.Hour),
	}}

	testCases := []struct {
		Name    string
		User    string
		Input   string
		History []model.MemoryResult
	}{
		{Name: "场景1：第一次打招呼", User: "alice", Input: "Hi Jose, I'm Alice"},
		{Name: "场景2：带着历史记忆", User: "alice", Input: "Do you remember what I do for a living?", History: recalled},
		{Name: "场景3：闲聊 (不该被记住)", User: "bob", Input: "Nice weather tonight, isn't it?"},
		{Name: "场景4：作品讨论 (应该被记住)", User: "bob", Input: "Why did you write El Filibusterismo so differently from Noli?"},
	}

	for _, tc := range testCases {
		fmt.Printf("\n-------- 测试: %s --------\n", tc.Name)
		fmt.Printf("输入: %s\n", tc.Input)

		start := time.Now()
		reply, err := responder.Respond(ctx, tc.Input, tc.User, tc.History)
		if err != nil {
			log.Printf("❌ 回复失败: %v\n", err)
			continue
		}
		fmt.Printf("✅ 回复 (耗时 %v): %s\n", time.Since(start), reply)

		start = time.Now()
		memorable, err := gate.IsMemorable(ctx, tc.Input, reply)
		if err != nil {
			log.Printf("❌ Gate 失败: %v\n", err)
			continue
		}
		fmt.Printf("记住吗 (耗时 %v): %v\n", time.Since(start), memorable)
	}
}
