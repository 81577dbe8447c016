package vectordb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leon37/RizalLamp/internal/model"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// fakePoints 只实现用到的两个 RPC
type fakePoints struct {
	pb.PointsClient
	upserts  []*pb.UpsertPoints
	searches []*pb.SearchPoints
	result   []*pb.ScoredPoint
	err      error
}

func (f *fakePoints) Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upserts = append(f.upserts, in)
	return &pb.PointsOperationResponse{}, f.err
}

func (f *fakePoints) Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error) {
	f.searches = append(f.searches, in)
	if f.err != nil {
		return nil, f.err
	}
	return &pb.SearchResponse{Result: f.result}, nil
}

func scored(id string, score float32, content, ts string) *pb.ScoredPoint {
	return &pb.ScoredPoint{
		Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
		Score: score,
		Payload: map[string]*pb.Value{
			contentField:   {Kind: &pb.Value_StringValue{StringValue: content}},
			timestampField: {Kind: &pb.Value_StringValue{StringValue: ts}},
		},
	}
}

func TestQdrantRepository_SaveMemory(t *testing.T) {
	fake := &fakePoints{}
	repo := &QdrantRepository{points: fake, collection: "rizal"}

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	err := repo.SaveMemory(context.Background(), model.MemoryRecord{
		ID:        "0191d7a0-0000-7000-8000-000000000001",
		Vector:    []float32{0.1, 0.2},
		UserName:  "alice",
		Content:   "alice: hi\nJose Rizal: hello",
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.Len(t, fake.upserts, 1)

	req := fake.upserts[0]
	assert.Equal(t, "rizal", req.GetCollectionName())
	assert.True(t, req.GetWait())
	point := req.GetPoints()[0]
	assert.Equal(t, "0191d7a0-0000-7000-8000-000000000001", point.GetId().GetUuid())
	assert.Equal(t, []float32{0.1, 0.2}, point.GetVectors().GetVector().GetData())
	assert.Equal(t, "alice", point.GetPayload()[UserNameField].GetStringValue())
	assert.Equal(t, "2026-05-01T12:00:00Z", point.GetPayload()[timestampField].GetStringValue())
}

func TestQdrantRepository_SearchSimilar(t *testing.T) {
	fake := &fakePoints{result: []*pb.ScoredPoint{
		scored("b", 0.8, "second", "2026-01-02T00:00:00Z"),
		scored("a", 0.95, "first", "2026-01-01T00:00:00Z"),
		scored("c", 0.8, "third", "not-a-time"),
	}}
	repo := &QdrantRepository{points: fake, collection: "rizal"}

	got, err := repo.SearchSimilar(context.Background(), "alice", 5, []float32{1, 0})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
	assert.True(t, got[2].Timestamp.IsZero())

	req := fake.searches[0]
	assert.Equal(t, uint64(5), req.GetLimit())
	assert.True(t, req.GetWithPayload().GetEnable())
	cond := req.GetFilter().GetMust()[0].GetField()
	assert.Equal(t, UserNameField, cond.GetKey())
	assert.Equal(t, "alice", cond.GetMatch().GetKeyword())
}

func TestQdrantRepository_Errors(t *testing.T) {
	fake := &fakePoints{err: errors.New("unavailable")}
	repo := &QdrantRepository{points: fake, collection: "rizal"}

	_, err := repo.SearchSimilar(context.Background(), "alice", 5, []float32{1})
	assert.ErrorContains(t, err, "qdrant search failed")

	err = repo.SaveMemory(context.Background(), model.MemoryRecord{ID: "x"})
	assert.ErrorContains(t, err, "qdrant upsert failed")
}
