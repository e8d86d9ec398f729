// Aggregation operators for rxflat
// 聚合操作符：Reduce, Count, Sum，源完成时发射唯一的结果
package rxgo

import (
	"fmt"
)

// ============================================================================
// 聚合操作符实现
// ============================================================================

// Reduce 对所有值做累积，源完成时发射最终结果；源为空时发射 seed
func Reduce(reducer func(acc, value interface{}) (interface{}, error), seed interface{}) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		acc := seed
		return SubscriberHooks{
			OnNext: func(value interface{}) {
				next, err := safeTransform(func(v interface{}) (interface{}, error) {
					return reducer(acc, v)
				}, value)
				if err != nil {
					self.OnError(err)
					return
				}
				acc = next
			},
			OnComplete: func() {
				destination.OnNext(acc)
				destination.OnComplete()
			},
		}
	})
}

// Count 源完成时发射值的个数
func Count() OperatorFunc {
	return Reduce(func(acc, _ interface{}) (interface{}, error) {
		return acc.(int) + 1, nil
	}, 0)
}

// Sum 对数值求和，空源发射 0。所有值必须是同一种数值类型
func Sum() OperatorFunc {
	reduce := Reduce(func(acc, value interface{}) (interface{}, error) {
		if acc == nil {
			acc = zeroOf(value)
		}
		return addValues(acc, value)
	}, nil)

	return func(source Observable) Observable {
		return reduce(source).Pipe(Map(func(value interface{}) (interface{}, error) {
			if value == nil {
				return 0, nil
			}
			return value, nil
		}))
	}
}

// ============================================================================
// 辅助函数
// ============================================================================

func zeroOf(value interface{}) interface{} {
	switch value.(type) {
	case int32:
		return int32(0)
	case int64:
		return int64(0)
	case float32:
		return float32(0)
	case float64:
		return float64(0)
	default:
		return 0
	}
}

// addValues 相加两个同类型数值
func addValues(a, b interface{}) (interface{}, error) {
	switch va := a.(type) {
	case int:
		if vb, ok := b.(int); ok {
			return va + vb, nil
		}
	case int32:
		if vb, ok := b.(int32); ok {
			return va + vb, nil
		}
	case int64:
		if vb, ok := b.(int64); ok {
			return va + vb, nil
		}
	case float32:
		if vb, ok := b.(float32); ok {
			return va + vb, nil
		}
	case float64:
		if vb, ok := b.(float64); ok {
			return va + vb, nil
		}
	}
	return nil, fmt.Errorf("rxgo: cannot add %T and %T", a, b)
}
