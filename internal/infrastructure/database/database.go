package database

import (
	"fmt"
	"time"

	"github.com/leon37/RizalLamp/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dialector 根据 driver 选择方言
func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewConnection 打开对话流水账数据库
func NewConnection(driver, dsn string, debug bool) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if debug {
		level = logger.Info // 开发阶段显示 SQL 日志
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// 自动建表 (Auto Migrate)
	if err := db.AutoMigrate(&model.ExchangeEntity{}); err != nil {
		return nil, fmt.Errorf("migrate exchanges: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
