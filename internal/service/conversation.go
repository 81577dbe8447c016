package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leon37/RizalLamp/internal/infrastructure/embedding"
	"github.com/leon37/RizalLamp/internal/metrics"
	"github.com/leon37/RizalLamp/internal/model"
	"github.com/leon37/RizalLamp/internal/repository"
)

// PersistMode 决定 gate + 写记忆失败时要不要让整轮对话失败
type PersistMode string

const (
	// PersistStrict 写记忆失败，整轮返回错误 (即使回复已经生成)
	PersistStrict PersistMode = "strict"
	// PersistBestEffort 同步写，失败只记日志，照常返回回复
	PersistBestEffort PersistMode = "best_effort"
	// PersistAsync 回复先返回，gate + 写记忆放到后台协程
	PersistAsync PersistMode = "async"
)

const DefaultTopK = 5

// ChatInput 是前端传来的原始参数
type ChatInput struct {
	UserName string
	Message  string
}

// ChatResult 一轮对话的结果；async 模式下 Memorable/MemoryID 总是零值
type ChatResult struct {
	Reply     string
	Memorable bool
	MemoryID  string
}

type ConversationOptions struct {
	TopK           int
	Mode           PersistMode
	PersistTimeout time.Duration
}

// ConversationService 串起 Embedding -> 检索 -> 人设回复 -> Gate -> 写记忆
// 不持有任何跨请求状态；同一用户的并发请求之间没有锁
type ConversationService struct {
	embedder  embedding.Provider
	memory    repository.MemoryRepo
	responder Responder
	gate      Gate
	exchanges repository.ExchangeRepo
	persona   model.Persona
	opts      ConversationOptions

	now   func() time.Time
	newID func() (string, error)

	wg sync.WaitGroup
}

// NewConversationService 构造函数 (依赖注入)
func NewConversationService(
	embedder embedding.Provider,
	memory repository.MemoryRepo,
	responder Responder,
	gate Gate,
	exchanges repository.ExchangeRepo,
	persona model.Persona,
	opts ConversationOptions,
) *ConversationService {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Mode == "" {
		opts.Mode = PersistBestEffort
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 10 * time.Second
	}
	if exchanges == nil {
		exchanges = repository.NopExchangeRepo{}
	}
	return &ConversationService{
		embedder:  embedder,
		memory:    memory,
		responder: responder,
		gate:      gate,
		exchanges: exchanges,
		persona:   persona,
		opts:      opts,
		now:       time.Now,
		newID:     newMemoryID,
	}
}

// newMemoryID UUIDv7：按时间有序，同一用户同一毫秒写两次也不会撞
func newMemoryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Chat 处理一次完整的对话请求
func (s *ConversationService) Chat(ctx context.Context, in ChatInput) (*ChatResult, error) {
	// 1. 没有用户名直接拒绝，不发起任何远程调用
	if in.UserName == "" {
		metrics.RecordTurn("invalid")
		return nil, ErrMissingUser
	}
	logger := slog.With("user", in.UserName)
	logger.Info("chat turn received", "message_len", len(in.Message))

	// 2. 向量化，这个向量后面写记忆时复用，不再重新 embed
	start := time.Now()
	vector, err := s.embedder.GetVector(ctx, in.Message)
	metrics.ObserveStage(StageEmbed, start, err)
	if err != nil {
		return nil, s.fail(&UpstreamError{Stage: StageEmbed, Err: err})
	}

	// 3. RAG 检索：只查这个用户名下的记忆
	start = time.Now()
	history, err := s.memory.SearchSimilar(ctx, in.UserName, s.opts.TopK, vector)
	metrics.ObserveStage(StageSearch, start, err)
	if err != nil {
		return nil, s.fail(&UpstreamError{Stage: StageSearch, Err: err})
	}
	logger.Debug("memories retrieved", "count", len(history))

	// 4. 人设回复
	start = time.Now()
	reply, err := s.responder.Respond(ctx, in.Message, in.UserName, history)
	metrics.ObserveStage(StageRespond, start, err)
	if err != nil {
		return nil, s.fail(&UpstreamError{Stage: StageRespond, Err: err})
	}

	exchange := model.Exchange{
		UserName:  in.UserName,
		Message:   in.Message,
		Reply:     reply,
		CreatedAt: s.now(),
	}
	result := &ChatResult{Reply: reply}

	// 5 + 6. Gate 判定，值得记住才写
	switch s.opts.Mode {
	case PersistAsync:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// 请求结束 ctx 会被取消，这里脱离取消但保留 value
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PersistTimeout)
			defer cancel()
			if _, _, err := s.persist(bgCtx, exchange, vector); err != nil {
				logger.Error("async memory persistence failed", "error", err)
			}
		}()
	case PersistStrict:
		memorable, memoryID, err := s.persist(ctx, exchange, vector)
		if err != nil {
			return nil, s.fail(err)
		}
		result.Memorable, result.MemoryID = memorable, memoryID
	default:
		memorable, memoryID, err := s.persist(ctx, exchange, vector)
		if err != nil {
			logger.Warn("memory persistence failed, reply still returned", "error", err)
		}
		result.Memorable, result.MemoryID = memorable, memoryID
	}

	metrics.RecordTurn("ok")
	return result, nil
}

// Wait 等待后台写记忆的协程结束，优雅退出时调用
func (s *ConversationService) Wait() {
	s.wg.Wait()
}

func (s *ConversationService) fail(err error) error {
	metrics.RecordTurn("failed")
	return err
}

// persist Gate + 写记忆 + 流水账
func (s *ConversationService) persist(ctx context.Context, ex model.Exchange, vector []float32) (bool, string, error) {
	memorable, memoryID, err := s.remember(ctx, ex, vector)
	if err == nil || s.opts.Mode != PersistStrict {
		s.appendLedger(ctx, ex, memorable, memoryID)
	}
	return memorable, memoryID, err
}

func (s *ConversationService) remember(ctx context.Context, ex model.Exchange, vector []float32) (bool, string, error) {
	start := time.Now()
	memorable, err := s.gate.IsMemorable(ctx, ex.Message, ex.Reply)
	metrics.ObserveStage(StageGate, start, err)
	if err != nil {
		metrics.RecordGateDecision("error")
		return false, "", &UpstreamError{Stage: StageGate, Err: err}
	}
	if !memorable {
		metrics.RecordGateDecision("not_memorable")
		return false, "", nil
	}
	metrics.RecordGateDecision("memorable")

	id, err := s.newID()
	if err != nil {
		return true, "", &UpstreamError{Stage: StageSave, Err: fmt.Errorf("generate memory id: %w", err)}
	}
	record := model.MemoryRecord{
		ID:        id,
		Vector:    vector,
		UserName:  ex.UserName,
		Content:   model.FormatMemoryContent(ex.UserName, s.persona.Name, ex.Message, ex.Reply),
		Timestamp: ex.CreatedAt,
	}

	start = time.Now()
	err = s.memory.SaveMemory(ctx, record)
	metrics.ObserveStage(StageSave, start, err)
	metrics.RecordMemoryWrite(err)
	if err != nil {
		return true, "", &UpstreamError{Stage: StageSave, Err: err}
	}
	slog.Info("memory saved", "user", ex.UserName, "id", id)
	return true, id, nil
}

// appendLedger 流水账写失败只记日志
func (s *ConversationService) appendLedger(ctx context.Context, ex model.Exchange, memorable bool, memoryID string) {
	entity := model.NewExchangeEntity(ex, s.persona.Name, memorable, memoryID)
	if err := s.exchanges.Create(ctx, entity); err != nil {
		slog.Error("failed to append exchange ledger", "user", ex.UserName, "error", err)
	}
}
