package vectordb

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserNameField payload 里的用户字段，检索时按它精确过滤
const UserNameField = "user_name"

type QdrantOptions struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

type QdrantClient struct {
	conn   *grpc.ClientConn
	client pb.CollectionsClient
	points pb.PointsClient
}

// NewQdrantClient 初始化连接
func NewQdrantClient(opts QdrantOptions) (*QdrantClient, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)

	transport := insecure.NewCredentials()
	if opts.UseTLS {
		transport = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(transport)}
	if opts.APIKey != "" {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(apiKeyInterceptor(opts.APIKey)))
	}

	// 连接 Qdrant (gRPC)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("did not connect to qdrant: %w", err)
	}

	return &QdrantClient{
		conn:   conn,
		client: pb.NewCollectionsClient(conn),
		points: pb.NewPointsClient(conn),
	}, nil
}

// apiKeyInterceptor Qdrant Cloud 通过 api-key 元数据鉴权
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close 关闭连接
func (q *QdrantClient) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// InitCollection 确保向量集合存在，并给 user_name 建 keyword 索引
// 索引每次启动都会建一次 (幂等)，首次启动建索引失败时重启可以补上
func (q *QdrantClient) InitCollection(ctx context.Context, collection string, vectorSize uint64) error {
	// 1. 检查集合是否存在；只有 NotFound 才去创建，鉴权或网络错误直接返回
	_, err := q.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: collection,
	})
	switch {
	case err == nil:
		slog.Info("qdrant collection already exists", "collection", collection)
	case status.Code(err) == codes.NotFound:
		// 2. 不存在，创建集合
		slog.Info("creating qdrant collection", "collection", collection, "dim", vectorSize)
		_, err = q.client.Create(ctx, &pb.CreateCollection{
			CollectionName: collection,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     vectorSize,
						Distance: pb.Distance_Cosine, // 余弦相似度最适合文本语义检索
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		slog.Info("qdrant collection created", "collection", collection)
	default:
		return fmt.Errorf("failed to get collection %s: %w", collection, err)
	}

	// 3. user_name 索引
	wait := true
	_, err = q.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      UserNameField,
		FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", UserNameField, err)
	}
	return nil
}
