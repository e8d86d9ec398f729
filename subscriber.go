package rxgo

import (
	"sync/atomic"

	"github.com/xinjiayu/rxflat/logging"
)

// ============================================================================
// Subscriber 订阅者协议
// ============================================================================

// Subscriber 订阅者：既接收 OnNext / OnError / OnComplete，又是一个可取消的订阅。
//
// OnError 或 OnComplete 之后不会再观察到任何调用；订阅者被取消后也不再向下游转发，
// 并且不会为下游补发 OnError / OnComplete。
type Subscriber interface {
	Subscription

	// Add 注册随本订阅者一起释放的子订阅
	Add(child Subscription)
	// Remove 移除子订阅，不会取消它
	Remove(child Subscription)

	// OnNext 接收到新数据时调用
	OnNext(value interface{})
	// OnError 发生错误时调用
	OnError(err error)
	// OnComplete 数据流完成时调用
	OnComplete()
}

// SubscriberHooks 操作符订阅者的拦截回调，为nil的回调直接转发给下游
type SubscriberHooks struct {
	OnNext     func(value interface{})
	OnError    func(err error)
	OnComplete func()
}

// baseSubscriber 基础订阅者实现，负责终止信号只投递一次
type baseSubscriber struct {
	*CompositeSubscription
	destination Subscriber
	hooks       SubscriberHooks
	stopped     int32
}

// newBaseSubscriber 创建时即挂到下游上，同步发射期间下游取消也能传递到上游
func newBaseSubscriber(destination Subscriber, hooks SubscriberHooks) *baseSubscriber {
	s := &baseSubscriber{
		CompositeSubscription: NewCompositeSubscription(),
		destination:           destination,
		hooks:                 hooks,
	}
	if destination != nil {
		destination.Add(s)
	}
	return s
}

// NewSubscriber 创建包装下游的操作符订阅者
func NewSubscriber(destination Subscriber, hooks SubscriberHooks) Subscriber {
	return newBaseSubscriber(destination, hooks)
}

// NewObserverSubscriber 使用回调函数创建终端订阅者。onError为nil时错误会作为未处理错误记录日志
func NewObserverSubscriber(onNext OnNext, onError OnError, onComplete OnComplete) Subscriber {
	hooks := SubscriberHooks{
		OnNext: func(value interface{}) {
			if onNext != nil {
				onNext(value)
			}
		},
		OnError: func(err error) {
			if onError != nil {
				onError(err)
				return
			}
			logging.Default().Error("rxgo: unhandled error", "error", err)
		},
		OnComplete: func() {
			if onComplete != nil {
				onComplete()
			}
		},
	}
	return newBaseSubscriber(nil, hooks)
}

// IsStopped 是否已经收到终止信号
func (s *baseSubscriber) IsStopped() bool {
	return atomic.LoadInt32(&s.stopped) == 1
}

// OnNext 接收到新数据时调用
func (s *baseSubscriber) OnNext(value interface{}) {
	if s.IsStopped() || s.IsUnsubscribed() {
		return
	}

	if s.hooks.OnNext != nil {
		s.hooks.OnNext(value)
		return
	}
	if s.destination != nil {
		s.destination.OnNext(value)
	}
}

// OnError 发生错误时调用
func (s *baseSubscriber) OnError(err error) {
	if s.IsStopped() {
		logging.Default().Warn("rxgo: error after terminal notification dropped", "error", err)
		return
	}
	if s.IsUnsubscribed() {
		logging.Default().Debug("rxgo: error after unsubscribe dropped", "error", err)
		return
	}
	if !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		logging.Default().Warn("rxgo: error after terminal notification dropped", "error", err)
		return
	}
	defer s.Unsubscribe()

	if s.hooks.OnError != nil {
		s.hooks.OnError(err)
		return
	}
	if s.destination != nil {
		s.destination.OnError(err)
	}
}

// OnComplete 数据流完成时调用
func (s *baseSubscriber) OnComplete() {
	if s.IsUnsubscribed() || !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		return
	}
	defer s.Unsubscribe()

	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete()
		return
	}
	if s.destination != nil {
		s.destination.OnComplete()
	}
}

// ============================================================================
// 串行化订阅者
// ============================================================================

// serializedSubscriber 让来自多个goroutine的通知串行到达下游
type serializedSubscriber struct {
	*baseSubscriber
	serial serializer
	done   bool // 只在串行化任务内读写
}

func newSerializedSubscriber(destination Subscriber) *serializedSubscriber {
	ss := &serializedSubscriber{}
	ss.baseSubscriber = newBaseSubscriber(destination, SubscriberHooks{
		OnNext: func(value interface{}) {
			ss.serial.run(func() {
				if !ss.done {
					destination.OnNext(value)
				}
			})
		},
		OnError: func(err error) {
			ss.serial.run(func() {
				if !ss.done {
					ss.done = true
					destination.OnError(err)
				}
			})
		},
		OnComplete: func() {
			ss.serial.run(func() {
				if !ss.done {
					ss.done = true
					destination.OnComplete()
				}
			})
		},
	})
	return ss
}
