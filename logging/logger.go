// Package logging 为 rxflat 提供一个极简的日志接口以及基于 log/slog 的适配器。
//
// 库内部只依赖 Logger 接口；默认使用 NoOpLogger，不产生任何输出。
// 需要观察订阅生命周期时，通过 SetDefault 或 rxgo.WithLogger 注入实现：
//
//	logging.SetDefault(logging.NewLogger(&logging.Config{Level: logging.LevelDebug, Format: "text"}))
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Level 日志级别，与 slog 解耦以便从配置中解析
type Level int

const (
	// LevelDebug 调试级别
	LevelDebug Level = iota
	// LevelInfo 信息级别
	LevelInfo
	// LevelWarn 警告级别
	LevelWarn
	// LevelError 错误级别
	LevelError
)

// String 返回级别名称
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析级别名称，大小写不敏感，无法识别时返回 LevelInfo
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger 库使用的最小日志接口，参数为 slog 风格的键值对
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter 将 *slog.Logger 适配为 Logger
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter 包装已有的 *slog.Logger
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// With 返回携带固定属性的子 Logger
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{Logger: s.Logger.With(args...)}
}

// Config 日志配置
type Config struct {
	Level     Level
	Format    string // json 或 text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig 默认配置：info 级别、JSON 格式、输出到 stderr
func DefaultConfig() *Config {
	return &Config{Level: LevelInfo, Format: "json", Output: os.Stderr}
}

// NewLogger 根据配置创建基于 slog 的 Logger，cfg 为 nil 时使用默认配置
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slog(), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return NewSlogAdapter(logger)
}

// NoOpLogger 丢弃所有日志
type NoOpLogger struct{}

// Debug 丢弃
func (NoOpLogger) Debug(string, ...any) {}

// Info 丢弃
func (NoOpLogger) Info(string, ...any) {}

// Warn 丢弃
func (NoOpLogger) Warn(string, ...any) {}

// Error 丢弃
func (NoOpLogger) Error(string, ...any) {}

type holder struct{ logger Logger }

var defaultLogger atomic.Pointer[holder]

func init() {
	defaultLogger.Store(&holder{logger: NoOpLogger{}})
}

// Default 返回进程级默认 Logger
func Default() Logger {
	return defaultLogger.Load().logger
}

// SetDefault 替换进程级默认 Logger，传入 nil 时恢复为 NoOpLogger
func SetDefault(logger Logger) {
	if logger == nil {
		logger = NoOpLogger{}
	}
	defaultLogger.Store(&holder{logger: logger})
}
