package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/model"
)

const (
	chatModel = "gpt-4"
	gateModel = "gpt-3.5-turbo"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	vec   []float32
	err   error
}

func (f *fakeEmbedder) GetVector(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeMemory 按 user 过滤、点积打分的内存向量库
type fakeMemory struct {
	mu        sync.Mutex
	records   []model.MemoryRecord
	searches  int
	saves     int
	searchErr error
	saveErr   error
	// afterSnapshot 在拿到快照之后、返回之前调用，用来制造并发竞争
	afterSnapshot func()
}

func (f *fakeMemory) SaveMemory(ctx context.Context, record model.MemoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeMemory) SearchSimilar(ctx context.Context, userName string, limit int, queryVector []float32) ([]model.MemoryResult, error) {
	f.mu.Lock()
	f.searches++
	if f.searchErr != nil {
		f.mu.Unlock()
		return nil, f.searchErr
	}
	results := []model.MemoryResult{}
	for _, r := range f.records {
		if r.UserName != userName {
			continue
		}
		var score float32
		for i := range r.Vector {
			if i < len(queryVector) {
				score += r.Vector[i] * queryVector[i]
			}
		}
		results = append(results, model.MemoryResult{ID: r.ID, Content: r.Content, Timestamp: r.Timestamp, Score: score})
	}
	hook := f.afterSnapshot
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeMemory) Saved() []model.MemoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.MemoryRecord(nil), f.records...)
}

func (f *fakeMemory) Counts() (searches, saves int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches, f.saves
}

// scriptedLLM 按 model 名分发：chatModel 走 reply，gateModel 走 gate
type scriptedLLM struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	reply    func(req llm.CompletionRequest) (string, error)
	gate     func(req llm.CompletionRequest) (string, error)
}

func newScriptedLLM(reply string, gateAnswer string) *scriptedLLM {
	return &scriptedLLM{
		reply: func(llm.CompletionRequest) (string, error) { return reply, nil },
		gate:  func(llm.CompletionRequest) (string, error) { return gateAnswer, nil },
	}
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	switch req.Model {
	case chatModel:
		return s.reply(req)
	case gateModel:
		return s.gate(req)
	default:
		return "", errors.New("unexpected model " + req.Model)
	}
}

func (s *scriptedLLM) Requests(modelName string) []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []llm.CompletionRequest
	for _, r := range s.requests {
		if r.Model == modelName {
			out = append(out, r)
		}
	}
	return out
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []*model.ExchangeEntity
	err     error
}

func (f *fakeLedger) Create(ctx context.Context, e *model.ExchangeEntity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedger) Entries() []*model.ExchangeEntity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.ExchangeEntity(nil), f.entries...)
}
