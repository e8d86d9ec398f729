// Blocking operators for rxflat
// 阻塞操作符实现：ToSlice, BlockingLast, ToChannel，全部支持 context 取消
package rxgo

import (
	"context"
	"sync"
)

// ============================================================================
// 阻塞操作符实现
// ============================================================================

// ToSlice 阻塞订阅并收集所有值；流以错误结束时返回该错误。
// ctx 结束时取消订阅并返回 ctx.Err()
func ToSlice(ctx context.Context, source Observable) ([]interface{}, error) {
	var (
		mu     sync.Mutex
		result []interface{}
	)
	done := make(chan error, 1)

	subscription := source.Subscribe(NewObserverSubscriber(
		func(value interface{}) {
			mu.Lock()
			result = append(result, value)
			mu.Unlock()
		},
		func(err error) {
			done <- err
		},
		func() {
			done <- nil
		},
	))
	defer subscription.Unsubscribe()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BlockingLast 阻塞获取最后一个值，流为空时返回 *EmptyError
func BlockingLast(ctx context.Context, source Observable) (interface{}, error) {
	var (
		mu       sync.Mutex
		last     interface{}
		hasValue bool
	)
	done := make(chan error, 1)

	subscription := source.Subscribe(NewObserverSubscriber(
		func(value interface{}) {
			mu.Lock()
			last, hasValue = value, true
			mu.Unlock()
		},
		func(err error) {
			done <- err
		},
		func() {
			done <- nil
		},
	))
	defer subscription.Unsubscribe()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()
		if !hasValue {
			return nil, NewEmptyError()
		}
		return last, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ToChannel 把流转换为 Item channel：值以 Item{Value} 发送，错误以 Item{Error} 发送，
// 流结束或 ctx 结束后channel被关闭。订阅在独立goroutine上进行，缓冲大小由 WithBufferSize 指定
func ToChannel(ctx context.Context, source Observable, options ...Option) <-chan Item {
	config := newConfig(options)
	sink := &channelSink{
		ctx:      ctx,
		ch:       make(chan Item, config.BufferSize),
		finished: make(chan struct{}),
	}

	subscriber := NewObserverSubscriber(
		func(value interface{}) {
			sink.send(CreateItem(value))
		},
		func(err error) {
			sink.send(CreateErrorItem(err))
			sink.close()
		},
		sink.close,
	)

	go func() {
		select {
		case <-ctx.Done():
			subscriber.Unsubscribe()
			sink.close()
		case <-sink.finished:
		}
	}()

	go source.Subscribe(subscriber)

	return sink.ch
}

// channelSink 保证关闭channel时没有进行中的发送
type channelSink struct {
	ctx      context.Context
	ch       chan Item
	finished chan struct{}

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	once     sync.Once
}

func (s *channelSink) send(item Item) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	select {
	case s.ch <- item:
	case <-s.ctx.Done():
	}
}

func (s *channelSink) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.inflight.Wait()
		close(s.ch)
		close(s.finished)
	})
}
