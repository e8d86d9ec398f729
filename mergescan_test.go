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
// MergeScan 测试
// ============================================================================

func sumAccumulator(acc, value interface{}, _ int) (Observable, error) {
	return Just(acc.(int) + value.(int)), nil
}

func TestMergeScanRunningSum(t *testing.T) {
	r, _ := record(Just(1, 2, 3).Pipe(MergeScan(sumAccumulator, 0)))

	assert.Equal(t, []interface{}{1, 3, 6}, r.Values())
	assert.Equal(t, 1, r.Completes())
	assert.Equal(t, 0, r.Errors())
}

func TestMergeScanSeedFallback(t *testing.T) {
	t.Run("空源发射seed", func(t *testing.T) {
		r, _ := record(Empty().Pipe(MergeScan(sumAccumulator, 42)))
		assert.Equal(t, []interface{}{42}, r.Values())
		assert.Equal(t, 1, r.Completes())
	})

	t.Run("所有子流都为空时发射seed", func(t *testing.T) {
		calls := 0
		r, _ := record(Just("a", "b").Pipe(MergeScan(func(acc, _ interface{}, _ int) (Observable, error) {
			calls++
			return Empty(), nil
		}, "seed")))
		assert.Equal(t, 2, calls)
		assert.Equal(t, []interface{}{"seed"}, r.Values())
		assert.Equal(t, 1, r.Completes())
	})

	t.Run("有值发射过就不再发射seed", func(t *testing.T) {
		r, _ := record(Just(1).Pipe(MergeScan(sumAccumulator, 10)))
		assert.Equal(t, []interface{}{11}, r.Values())
	})
}

func TestMergeScanAccumulatorSeesLatestValue(t *testing.T) {
	// 子流发射多个值时，每个值都成为新的累积值
	var seen []interface{}
	r, _ := record(Just(1, 2).Pipe(MergeScan(func(acc, value interface{}, index int) (Observable, error) {
		seen = append(seen, acc)
		a := acc.(int)
		return Just(a+1, a+value.(int)*10), nil
	}, 0)))

	assert.Equal(t, []interface{}{0, 10}, seen)
	assert.Equal(t, []interface{}{1, 10, 11, 30}, r.Values())
}

func TestMergeScanIndexes(t *testing.T) {
	var indexes []int
	_, _ = record(Range(0, 4).Pipe(MergeScan(func(acc, _ interface{}, index int) (Observable, error) {
		indexes = append(indexes, index)
		return Just(acc), nil
	}, nil)))
	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
}

func TestMergeScanBoundedConcurrency(t *testing.T) {
	outer := &manualSource{}
	inners := manualSources(4)
	var admitted []interface{}

	r, _ := record(outer.observable().Pipe(MergeScan(func(acc, value interface{}, index int) (Observable, error) {
		admitted = append(admitted, value)
		return inners[index].observable(), nil
	}, 0, WithConcurrency(2))))

	outer.next("a")
	outer.next("b")
	outer.next("c")
	outer.next("d")

	assert.Equal(t, []interface{}{"a", "b"}, admitted, "同时活跃的子流不超过上限")
	assert.Equal(t, 0, inners[2].Subscribes())

	// 完成第二个子流，积压队列按FIFO接纳 c
	inners[1].complete()
	assert.Equal(t, []interface{}{"a", "b", "c"}, admitted)
	assert.Equal(t, 1, inners[2].Subscribes())
	assert.Equal(t, 0, inners[3].Subscribes())

	inners[0].next(100)
	inners[0].complete()
	assert.Equal(t, []interface{}{"a", "b", "c", "d"}, admitted)

	// 源完成后还有活跃子流，不应完成
	outer.complete()
	assert.Equal(t, 1, outer.Unsubscribes(), "源完成后取消对源的订阅")
	assert.Equal(t, 0, r.Completes())

	inners[2].complete()
	assert.Equal(t, 0, r.Completes())
	inners[3].next(7)
	inners[3].complete()

	assert.Equal(t, []interface{}{100, 7}, r.Values())
	assert.Equal(t, 1, r.Completes())
	assert.Equal(t, 0, r.Errors())
}

func TestMergeScanConcurrencyOneSerializes(t *testing.T) {
	outer := &manualSource{}
	inners := manualSources(3)
	var accs []interface{}

	r, _ := record(outer.observable().Pipe(MergeScan(func(acc, value interface{}, index int) (Observable, error) {
		accs = append(accs, acc)
		return inners[index].observable(), nil
	}, 0, WithConcurrency(1))))

	outer.next(1)
	outer.next(2)
	outer.next(3)
	outer.complete()
	require.Equal(t, 1, inners[0].Subscribes())
	assert.Equal(t, 0, inners[1].Subscribes())

	inners[0].next(1)
	inners[0].complete()
	inners[1].next(3)
	inners[1].complete()
	inners[2].next(6)
	inners[2].complete()

	assert.Equal(t, []interface{}{0, 1, 3}, accs, "每次累加都能看到上一个子流的最终值")
	assert.Equal(t, []interface{}{1, 3, 6}, r.Values())
	assert.Equal(t, 1, r.Completes())
}

func TestMergeScanAsyncInners(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs := Range(1, 5).Pipe(MergeScan(func(acc, value interface{}, _ int) (Observable, error) {
		return async(acc.(int) + value.(int)), nil
	}, 0, WithConcurrency(1)))

	got, err := ToSlice(ctx, obs)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 3, 6, 10, 15}, got)
}

func TestMergeScanErrors(t *testing.T) {
	t.Run("累加函数返回错误", func(t *testing.T) {
		calls := 0
		r, _ := record(Just(1, 2, 3).Pipe(MergeScan(func(acc, value interface{}, index int) (Observable, error) {
			calls++
			if index == 1 {
				return nil, errBoom
			}
			return Just(acc.(int) + value.(int)), nil
		}, 0)))

		assert.Equal(t, 2, calls, "错误之后不再调用累加函数")
		assert.Equal(t, []interface{}{1}, r.Values())
		assert.ErrorIs(t, r.Err(), errBoom)
		assert.Equal(t, 1, r.Errors())
		assert.Equal(t, 0, r.Completes())
	})

	t.Run("累加函数panic", func(t *testing.T) {
		r, _ := record(Just(1).Pipe(MergeScan(func(interface{}, interface{}, int) (Observable, error) {
			panic("accumulator exploded")
		}, 0)))

		var pe *PanicError
		require.ErrorAs(t, r.Err(), &pe)
		assert.Equal(t, "accumulator exploded", pe.Value)
	})

	t.Run("累加函数返回nil子流", func(t *testing.T) {
		r, _ := record(Just(1).Pipe(MergeScan(func(interface{}, interface{}, int) (Observable, error) {
			return nil, nil
		}, 0)))
		assert.ErrorIs(t, r.Err(), ErrNilObservable)
	})

	t.Run("子流错误取消其它子流和源", func(t *testing.T) {
		outer := &manualSource{}
		inners := manualSources(2)
		r, _ := record(outer.observable().Pipe(MergeScan(func(_, _ interface{}, index int) (Observable, error) {
			return inners[index].observable(), nil
		}, 0)))

		outer.next(1)
		outer.next(2)
		inners[1].fail(errBoom)

		assert.ErrorIs(t, r.Err(), errBoom)
		assert.Equal(t, 1, inners[0].Unsubscribes())
		assert.Equal(t, 1, inners[1].Unsubscribes())
		assert.Equal(t, 1, outer.Unsubscribes())

		// 之后的信号全部被丢弃
		inners[0].next(9)
		inners[0].complete()
		assert.Empty(t, r.Values())
		assert.Equal(t, 1, r.Errors())
		assert.Equal(t, 0, r.Completes())
	})

	t.Run("源错误", func(t *testing.T) {
		outer := &manualSource{}
		inner := &manualSource{}
		r, _ := record(outer.observable().Pipe(MergeScan(func(interface{}, interface{}, int) (Observable, error) {
			return inner.observable(), nil
		}, 0)))

		outer.next(1)
		outer.fail(errBoom)

		assert.ErrorIs(t, r.Err(), errBoom)
		assert.Equal(t, 1, inner.Unsubscribes())
	})
}

func TestMergeScanCancellation(t *testing.T) {
	outer := &manualSource{}
	inners := manualSources(3)
	r, sub := record(outer.observable().Pipe(MergeScan(func(_, _ interface{}, index int) (Observable, error) {
		return inners[index].observable(), nil
	}, 0, WithConcurrency(2))))

	outer.next(1)
	outer.next(2)
	outer.next(3)

	sub.Unsubscribe()
	sub.Unsubscribe()

	assert.Equal(t, 1, outer.Unsubscribes())
	assert.Equal(t, 1, inners[0].Unsubscribes())
	assert.Equal(t, 1, inners[1].Unsubscribes())
	assert.Equal(t, 0, inners[2].Subscribes(), "积压的值被丢弃")

	outer.next(4)
	inners[0].next("late")
	inners[1].complete()

	assert.Empty(t, r.Values())
	assert.Equal(t, 0, r.Completes())
	assert.Equal(t, 0, r.Errors())
	assert.Equal(t, 0, inners[2].Subscribes())
}

func TestMergeScanResubscribeIsIndependent(t *testing.T) {
	obs := Just(1, 2).Pipe(MergeScan(sumAccumulator, 0))

	r1, _ := record(obs)
	r2, _ := record(obs)

	assert.Equal(t, []interface{}{1, 3}, r1.Values())
	assert.Equal(t, []interface{}{1, 3}, r2.Values())
}

func TestMergeScanInvalidConcurrency(t *testing.T) {
	calls := 0
	r, _ := record(Just(1).Pipe(MergeScan(func(interface{}, interface{}, int) (Observable, error) {
		calls++
		return Just(1), nil
	}, 0, WithConcurrency(0))))

	assert.True(t, errors.Is(r.Err(), ErrInvalidConcurrency))
	assert.Equal(t, 0, calls)
}
