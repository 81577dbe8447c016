package repository

import (
	"context"

	"github.com/leon37/RizalLamp/internal/model"
	"gorm.io/gorm"
)

// ExchangeRepo 对话流水账，只追加
type ExchangeRepo interface {
	Create(ctx context.Context, exchange *model.ExchangeEntity) error
}

// exchangeRepo 实现
type exchangeRepo struct {
	db *gorm.DB
}

// NewExchangeRepo 构造函数
func NewExchangeRepo(db *gorm.DB) ExchangeRepo {
	return &exchangeRepo{db: db}
}

// Create 插入一条记录
func (r *exchangeRepo) Create(ctx context.Context, exchange *model.ExchangeEntity) error {
	// WithContext 确保请求超时能传递到数据库层
	return r.db.WithContext(ctx).Create(exchange).Error
}

// NopExchangeRepo 没有配置数据库时使用
type NopExchangeRepo struct{}

func (NopExchangeRepo) Create(context.Context, *model.ExchangeEntity) error { return nil }
