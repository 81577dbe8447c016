package vectordb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leon37/RizalLamp/internal/model"
	"github.com/leon37/RizalLamp/internal/repository"
	pb "github.com/qdrant/go-client/qdrant"
)

const (
	contentField   = "content"
	timestampField = "timestamp"
)

type QdrantRepository struct {
	points     pb.PointsClient
	collection string
}

// NewQdrantRepository 构造函数
func NewQdrantRepository(client *QdrantClient, collection string) repository.MemoryRepo {
	return &QdrantRepository{
		points:     client.points,
		collection: collection,
	}
}

func (r *QdrantRepository) SaveMemory(ctx context.Context, record model.MemoryRecord) error {
	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         []*pb.PointStruct{buildPoint(record)},
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	slog.Debug("saved memory to qdrant", "id", record.ID, "user", record.UserName)
	return nil
}

func (r *QdrantRepository) SearchSimilar(ctx context.Context, userName string, limit int, queryVector []float32) ([]model.MemoryResult, error) {
	searchResult, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         queryVector,
		Limit:          uint64(limit),
		Filter:         userFilter(userName),
		// 必须开启 Enable，否则只返回 ID 和 Score，不返回文本内容
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	results := toResults(searchResult.GetResult())
	repository.SortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// buildPoint 构造 Qdrant Point，ID 是 UUID
func buildPoint(record model.MemoryRecord) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: record.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: record.Vector},
			},
		},
		Payload: map[string]*pb.Value{
			UserNameField:  {Kind: &pb.Value_StringValue{StringValue: record.UserName}},
			contentField:   {Kind: &pb.Value_StringValue{StringValue: record.Content}},
			timestampField: {Kind: &pb.Value_StringValue{StringValue: record.Timestamp.UTC().Format(time.RFC3339Nano)}},
		},
	}
}

// userFilter keyword 精确匹配，不能用全文匹配 (Match_Text)，否则 "al" 能查到 "alice"
func userFilter(userName string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: UserNameField,
					Match: &pb.Match{
						MatchValue: &pb.Match_Keyword{Keyword: userName},
					},
				},
			},
		}},
	}
}

// toResults 从 Payload Map 中取出文本和时间
func toResults(points []*pb.ScoredPoint) []model.MemoryResult {
	results := make([]model.MemoryResult, 0, len(points))
	for _, point := range points {
		res := model.MemoryResult{
			ID:    point.GetId().GetUuid(),
			Score: point.GetScore(),
		}
		if v, ok := point.GetPayload()[contentField]; ok {
			res.Content = v.GetStringValue()
		}
		if v, ok := point.GetPayload()[timestampField]; ok {
			if ts, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
				res.Timestamp = ts
			}
		}
		results = append(results, res)
	}
	return results
}
