package model

import (
	"fmt"
	"time"
)

// MemoryRecord 是写入向量库的一条记忆
// UserName 必须和检索时的过滤条件逐字节一致，否则会串号或者失忆
type MemoryRecord struct {
	ID        string
	Vector    []float32
	UserName  string
	Content   string
	Timestamp time.Time
}

// MemoryResult 是检索命中的一条记忆
type MemoryResult struct {
	ID        string
	Content   string
	Timestamp time.Time
	Score     float32
}

// ContextLine 格式化成 "[2006-01-02T15:04:05Z] content"，用于拼进 System Prompt
func (m MemoryResult) ContextLine() string {
	return fmt.Sprintf("[%s] %s", m.Timestamp.UTC().Format(time.RFC3339), m.Content)
}

// FormatMemoryContent 生成记忆正文："alice: 消息\nJose Rizal: 回复"
func FormatMemoryContent(userName, personaName, message, reply string) string {
	return fmt.Sprintf("%s: %s\n%s: %s", userName, message, personaName, reply)
}
