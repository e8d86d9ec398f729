package rxgo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Observable 与工厂函数测试
// ============================================================================

func TestObservableIsLazy(t *testing.T) {
	runs := 0
	obs := NewObservable(func(subscriber Subscriber) Subscription {
		runs++
		subscriber.OnNext(runs)
		subscriber.OnComplete()
		return nil
	})
	assert.Equal(t, 0, runs)

	r1, _ := record(obs)
	r2, _ := record(obs)

	assert.Equal(t, []interface{}{1}, r1.Values())
	assert.Equal(t, []interface{}{2}, r2.Values())
}

func TestProducerPanicBecomesError(t *testing.T) {
	obs := NewObservable(func(subscriber Subscriber) Subscription {
		subscriber.OnNext(1)
		panic("producer exploded")
	})

	r, _ := record(obs)

	assert.Equal(t, []interface{}{1}, r.Values())
	var pe *PanicError
	require.ErrorAs(t, r.Err(), &pe)
	assert.Equal(t, "producer exploded", pe.Value)
}

func TestProducerTeardownRunsOnUnsubscribe(t *testing.T) {
	src := &manualSource{}
	r, sub := record(src.observable())

	src.next("a")
	sub.Unsubscribe()
	src.next("b")

	assert.Equal(t, []interface{}{"a"}, r.Values())
	assert.Equal(t, 1, src.Unsubscribes())
	assert.Equal(t, 0, r.Completes())
}

func TestFactories(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		obs  Observable
		want []interface{}
	}{
		{"Just", Just(1, "a", 2.5), []interface{}{1, "a", 2.5}},
		{"FromSlice", FromSlice([]interface{}{3, 2, 1}), []interface{}{3, 2, 1}},
		{"Range", Range(5, 3), []interface{}{5, 6, 7}},
		{"Empty", Empty(), nil},
		{"Defer", Defer(func() Observable { return Just("x") }), []interface{}{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSlice(ctx, tt.obs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Throw", func(t *testing.T) {
		_, err := ToSlice(ctx, Throw(errBoom))
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("Defer返回nil", func(t *testing.T) {
		_, err := ToSlice(ctx, Defer(func() Observable { return nil }))
		assert.ErrorIs(t, err, ErrNilObservable)
	})

	t.Run("Never不会结束", func(t *testing.T) {
		r, sub := record(Never())
		assert.Equal(t, 0, r.Completes())
		sub.Unsubscribe()
		assert.True(t, sub.IsUnsubscribed())
	})
}

func TestFromChannel(t *testing.T) {
	ch := make(chan interface{}, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := ToSlice(ctx, FromChannel(ch))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, got)
}

// ============================================================================
// 阻塞转换测试
// ============================================================================

func TestToSliceContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ToSlice(ctx, Never())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBlockingLast(t *testing.T) {
	ctx := context.Background()

	last, err := BlockingLast(ctx, Just(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, last)

	_, err = BlockingLast(ctx, Empty())
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = BlockingLast(ctx, Throw(errBoom))
	assert.ErrorIs(t, err, errBoom)
}

func TestToChannel(t *testing.T) {
	t.Run("值和完成", func(t *testing.T) {
		var got []interface{}
		for item := range ToChannel(context.Background(), Range(0, 5), WithBufferSize(1)) {
			require.False(t, item.IsError())
			got = append(got, item.GetValue())
		}
		assert.Equal(t, []interface{}{0, 1, 2, 3, 4}, got)
	})

	t.Run("错误作为最后一项", func(t *testing.T) {
		var items []Item
		for item := range ToChannel(context.Background(), Just(1).Pipe(Map(func(interface{}) (interface{}, error) {
			return nil, errBoom
		}))) {
			items = append(items, item)
		}
		require.Len(t, items, 1)
		assert.ErrorIs(t, items[0].Error, errBoom)
	})

	t.Run("取消上下文会关闭channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ch := ToChannel(ctx, Never())
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel未关闭")
		}
	})
}
