// Package metrics 定义 Prometheus 指标：HTTP 层 + RAG 记忆流水线
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizallamp_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rizallamp_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ChatTurnsTotal outcome: ok / invalid / failed
	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizallamp_chat_turns_total",
			Help: "Conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	// StageDurationSeconds stage: embed / search / respond / gate / save
	StageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rizallamp_stage_duration_seconds",
			Help:    "Latency of each remote call in the memory pipeline",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage", "result"},
	)

	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizallamp_relevance_decisions_total",
			Help: "Relevance gate decisions",
		},
		[]string{"decision"},
	)

	MemoryWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizallamp_memory_writes_total",
			Help: "Memory store writes by result",
		},
		[]string{"result"},
	)

	registered atomic.Bool
	enabled    atomic.Bool
)

// SetEnabled 开关指标采集
func SetEnabled(on bool) {
	enabled.Store(on)
}

func Enabled() bool {
	return enabled.Load()
}

// Register 注册到默认 registry，重复调用只注册一次
func Register() {
	if !registered.CompareAndSwap(false, true) {
		return
	}
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		ChatTurnsTotal,
		StageDurationSeconds,
		GateDecisionsTotal,
		MemoryWritesTotal,
	)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStage 记录一次远程调用耗时
func ObserveStage(stage string, start time.Time, err error) {
	if !Enabled() {
		return
	}
	StageDurationSeconds.WithLabelValues(stage, result(err)).Observe(time.Since(start).Seconds())
}

func RecordTurn(outcome string) {
	if !Enabled() {
		return
	}
	ChatTurnsTotal.WithLabelValues(outcome).Inc()
}

func RecordGateDecision(decision string) {
	if !Enabled() {
		return
	}
	GateDecisionsTotal.WithLabelValues(decision).Inc()
}

func RecordMemoryWrite(err error) {
	if !Enabled() {
		return
	}
	MemoryWritesTotal.WithLabelValues(result(err)).Inc()
}
