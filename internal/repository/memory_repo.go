package repository

import (
	"context"
	"sort"

	"github.com/leon37/RizalLamp/internal/model"
)

// MemoryRepo 定义了 AI 记忆相关的接口
// 只有写入和检索：记忆不会被修改或删除，库会无限增长
type MemoryRepo interface {
	// SaveMemory upsert 一条记忆，ID 相同会覆盖，否则纯追加
	SaveMemory(ctx context.Context, record model.MemoryRecord) error
	// SearchSimilar 只在 userName 名下检索，按相似度降序，最多 limit 条；没有记忆时返回空切片
	SearchSimilar(ctx context.Context, userName string, limit int, queryVector []float32) ([]model.MemoryResult, error)
}

// SortResults 按分数降序排列，分数相同按 ID 排，保证同样的输入每次顺序一致
func SortResults(results []model.MemoryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}
