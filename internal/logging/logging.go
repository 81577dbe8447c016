// Package logging 初始化全局 slog，支持 stdout + 滚动日志文件
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leon37/RizalLamp/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel 把配置里的字符串转成 slog.Level，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Writer 返回日志输出目标；配置了 File 时同时写 stdout 和滚动文件
func Writer(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotator)
}

// New 使用 JSONHandler，日志以 JSON 格式输出，AddSource 会带上文件名和行号
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(level),
	}))
}

// Setup 构建 logger 并设置为全局默认
func Setup(cfg config.LogConfig) *slog.Logger {
	logger := New(Writer(cfg), cfg.Level)
	slog.SetDefault(logger)
	return logger
}
