package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyEmbedding 接口成功返回但没有向量
var ErrEmptyEmbedding = errors.New("empty embedding data returned")

type OpenAIClient struct {
	client *openai.Client
	model  string // 例如 "text-embedding-ada-002"
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // 例如 "https://api.openai.com/v1" 或其它中转地址
	}
	if model == "" {
		model = string(openai.AdaEmbeddingV2) // 默认模型，维度 1536
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Model 返回向量模型名，缓存 key 会用到
func (c *OpenAIClient) Model() string {
	return c.model
}

// GetVector 不做长度校验，超长输入由模型自己拒绝
func (c *OpenAIClient) GetVector(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding api error: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return resp.Data[0].Embedding, nil
}
