// Factory functions for rxflat
// 工厂函数：同步生产者在每次发射前检查订阅者是否已取消
package rxgo

import (
	"context"
)

// ============================================================================
// 基础工厂函数
// ============================================================================

// Just 从给定的值创建Observable，同步发射后完成
func Just(values ...interface{}) Observable {
	return FromSlice(values)
}

// FromSlice 从切片创建Observable
func FromSlice(slice []interface{}) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		for _, value := range slice {
			if subscriber.IsUnsubscribed() {
				return nil
			}
			subscriber.OnNext(value)
		}
		subscriber.OnComplete()
		return nil
	})
}

// Range 创建发射 [start, start+count) 整数的Observable
func Range(start, count int) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		for i := 0; i < count; i++ {
			if subscriber.IsUnsubscribed() {
				return nil
			}
			subscriber.OnNext(start + i)
		}
		subscriber.OnComplete()
		return nil
	})
}

// Empty 创建一个空的Observable，立即完成
func Empty() Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		subscriber.OnComplete()
		return nil
	})
}

// Never 创建一个永不发射任何值的Observable
func Never() Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		return nil
	})
}

// Throw 创建一个立即发射错误的Observable
func Throw(err error) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		subscriber.OnError(err)
		return nil
	})
}

// Defer 延迟创建：每次订阅时才调用工厂函数
func Defer(factory func() Observable) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		source := factory()
		if source == nil {
			subscriber.OnError(ErrNilObservable)
			return nil
		}
		return source.Subscribe(subscriber)
	})
}

// ============================================================================
// 从数据源创建
// ============================================================================

// FromChannel 从Go channel创建Observable，在独立goroutine上读取，
// channel关闭时完成；取消订阅会停止读取（不会关闭channel）
func FromChannel(ch <-chan interface{}) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					return
				case value, ok := <-ch:
					if !ok {
						subscriber.OnComplete()
						return
					}
					subscriber.OnNext(value)
				}
			}
		}()

		return NewSubscription(cancel)
	})
}
