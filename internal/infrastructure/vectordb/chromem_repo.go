package vectordb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leon37/RizalLamp/internal/model"
	"github.com/leon37/RizalLamp/internal/repository"
	chromem "github.com/philippgille/chromem-go"
)

// ChromemRepository 嵌入式向量库，适合本地开发和单机部署
// 所有用户共用一个 collection，按 user_name 元数据过滤，和 Qdrant 的行为保持一致
type ChromemRepository struct {
	col *chromem.Collection
}

// NewChromemDB path 为空时纯内存，否则持久化到目录
func NewChromemDB(path string, compress bool) (*chromem.DB, error) {
	if path == "" {
		return chromem.NewDB(), nil
	}
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db at %s: %w", path, err)
	}
	return db, nil
}

// NewChromemRepository 确保集合存在
func NewChromemRepository(db *chromem.DB, collection string) (*ChromemRepository, error) {
	// 向量由我们自己算好传进来，embeddingFunc 不会被调用
	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create chromem collection: %w", err)
	}
	return &ChromemRepository{col: col}, nil
}

var _ repository.MemoryRepo = (*ChromemRepository)(nil)

func (r *ChromemRepository) SaveMemory(ctx context.Context, record model.MemoryRecord) error {
	doc := chromem.Document{
		ID:        record.ID,
		Content:   record.Content,
		Embedding: record.Vector,
		Metadata: map[string]string{
			UserNameField:  record.UserName,
			timestampField: record.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}
	if err := r.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("chromem add document: %w", err)
	}
	slog.Debug("saved memory to chromem", "id", record.ID, "user", record.UserName)
	return nil
}

func (r *ChromemRepository) SearchSimilar(ctx context.Context, userName string, limit int, queryVector []float32) ([]model.MemoryResult, error) {
	// chromem 要求 nResults <= 集合总数
	n := limit
	if count := r.col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return []model.MemoryResult{}, nil
	}

	docs, err := r.col.QueryEmbedding(ctx, queryVector, n, map[string]string{UserNameField: userName}, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]model.MemoryResult, 0, len(docs))
	for _, doc := range docs {
		// where 已经过滤过，这里再核对一次，防止串号
		if doc.Metadata[UserNameField] != userName {
			continue
		}
		ts, _ := time.Parse(time.RFC3339Nano, doc.Metadata[timestampField])
		results = append(results, model.MemoryResult{
			ID:        doc.ID,
			Content:   doc.Content,
			Timestamp: ts,
			Score:     doc.Similarity,
		})
	}
	repository.SortResults(results)
	return results, nil
}
