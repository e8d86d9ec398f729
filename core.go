// Package rxgo provides reactive programming primitives for Go
// 推模式的响应式流组合库，核心是带并发上限的展平引擎（MergeScan / MergeMap 家族）
package rxgo

import (
	"github.com/xinjiayu/rxflat/logging"
)

// ============================================================================
// 核心类型定义
// ============================================================================

// Item 表示流中的一个数据项，包含值或错误
type Item struct {
	Value interface{} // 数据值
	Error error       // 错误信息
}

// IsError 检查项目是否包含错误
func (item Item) IsError() bool {
	return item.Error != nil
}

// GetValue 获取项目的值，如果是错误则返回nil
func (item Item) GetValue() interface{} {
	if item.IsError() {
		return nil
	}
	return item.Value
}

// CreateItem 创建包含值的项目
func CreateItem(value interface{}) Item {
	return Item{Value: value}
}

// CreateErrorItem 创建包含错误的项目
func CreateErrorItem(err error) Item {
	return Item{Error: err}
}

// ============================================================================
// 函数类型定义
// ============================================================================

// OnNext 处理下一个值的函数
type OnNext func(value interface{})

// OnError 处理错误的函数
type OnError func(err error)

// OnComplete 处理完成的函数
type OnComplete func()

// Predicate 谓词函数，用于过滤
type Predicate func(value interface{}) bool

// Transformer 转换函数，用于映射
type Transformer func(value interface{}) (interface{}, error)

// Projector 将源值映射为一个新的子流，index 从0开始单调递增
type Projector func(value interface{}, index int) (Observable, error)

// Accumulator MergeScan 的累加函数：基于当前累积值和源值产生一个子流，
// 子流发射的每个值都会成为新的累积值
type Accumulator func(acc interface{}, value interface{}, index int) (Observable, error)

// ============================================================================
// 安全执行
// ============================================================================

// SafeExecute 安全执行函数，将panic转换为 *PanicError
func SafeExecute(action func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	action()
	return nil
}

// ============================================================================
// 配置选项
// ============================================================================

// Option 配置选项接口
type Option interface {
	Apply(config *Config)
}

// OptionFunc 函数形式的配置选项
type OptionFunc func(config *Config)

// Apply 应用配置
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// Config 配置结构
type Config struct {
	// BufferSize 阻塞转换（ToChannel）使用的通道缓冲大小
	BufferSize int
	// Concurrency 展平操作符同时订阅的内部流上限
	Concurrency Concurrency
	// BacklogWarnThreshold 积压队列达到该长度时记录一次警告，0 表示关闭
	BacklogWarnThreshold int
	// Logger 为空时使用 logging.Default()
	Logger logging.Logger
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		BufferSize:           16,
		Concurrency:          Unbounded(),
		BacklogWarnThreshold: 1024,
	}
}

func newConfig(options []Option) *Config {
	config := DefaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt.Apply(config)
		}
	}
	return config
}

func (c *Config) logger() logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Default()
}

// WithConcurrency 限制同时活跃的内部流数量，n 必须 >= 1
func WithConcurrency(n int) Option {
	return OptionFunc(func(config *Config) {
		config.Concurrency = Bounded(n)
	})
}

// WithUnboundedConcurrency 不限制内部流数量（默认）
func WithUnboundedConcurrency() Option {
	return OptionFunc(func(config *Config) {
		config.Concurrency = Unbounded()
	})
}

// WithBacklogWarnThreshold 设置积压告警阈值
func WithBacklogWarnThreshold(n int) Option {
	return OptionFunc(func(config *Config) {
		config.BacklogWarnThreshold = n
	})
}

// WithBufferSize 设置 ToChannel 的缓冲大小
func WithBufferSize(n int) Option {
	return OptionFunc(func(config *Config) {
		if n >= 0 {
			config.BufferSize = n
		}
	})
}

// WithLogger 为单个操作符指定 Logger
func WithLogger(logger logging.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.Logger = logger
	})
}
