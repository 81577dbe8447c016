package model

import (
	"time"
)

// Exchange 一轮完整的对话：用户消息 + 人设回复，创建后不可变
type Exchange struct {
	UserName  string
	Message   string
	Reply     string
	CreatedAt time.Time
}

// ExchangeEntity 是映射数据库表的结构体 (对话流水账，只追加不修改)
type ExchangeEntity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserName string `gorm:"type:varchar(191);index" json:"user_name"`
	Persona  string `gorm:"type:varchar(100)" json:"persona"`
	Message  string `gorm:"type:text" json:"message"`
	Reply    string `gorm:"type:text" json:"reply"`

	// Gate 的判定结果；Memorable 为 true 且写入成功时 MemoryID 有值
	Memorable bool   `json:"memorable"`
	MemoryID  string `gorm:"type:varchar(36)" json:"memory_id"`
}

// TableName 强制指定表名
func (ExchangeEntity) TableName() string {
	return "exchanges"
}

// NewExchangeEntity 把一轮对话拍平成流水记录
func NewExchangeEntity(ex Exchange, persona string, memorable bool, memoryID string) *ExchangeEntity {
	return &ExchangeEntity{
		CreatedAt: ex.CreatedAt,
		UserName:  ex.UserName,
		Persona:   persona,
		Message:   ex.Message,
		Reply:     ex.Reply,
		Memorable: memorable,
		MemoryID:  memoryID,
	}
}
