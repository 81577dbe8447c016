package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto"
)

// CachedProvider 在进程内缓存向量，同一段文本不重复调用远端模型
type CachedProvider struct {
	next  Provider
	model string
	cache *ristretto.Cache
}

// NewCachedProvider maxVectors 是最多缓存的向量条数 (每条 cost 记为 1)
func NewCachedProvider(next Provider, model string, maxVectors int64) (*CachedProvider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxVectors * 10,
		MaxCost:     maxVectors,
		BufferItems: 64,
		// cost 只按条数算，不叠加 ristretto 内部开销
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	return &CachedProvider{next: next, model: model, cache: cache}, nil
}

func (p *CachedProvider) GetVector(ctx context.Context, text string) ([]float32, error) {
	key := p.model + "\x00" + text
	if v, ok := p.cache.Get(key); ok {
		if vec, ok := v.([]float32); ok {
			slog.Debug("embedding cache hit", "model", p.model)
			return vec, nil
		}
	}

	vec, err := p.next.GetVector(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, vec, 1)
	return vec, nil
}

// Wait 等待异步写入完成 (ristretto 的 Set 是异步的)
func (p *CachedProvider) Wait() {
	p.cache.Wait()
}

func (p *CachedProvider) Close() {
	p.cache.Close()
}
