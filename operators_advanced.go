// Flattening operators for rxflat
// 展平操作符家族：MergeScan, MergeMap, ConcatMap, SwitchMap, ExhaustMap, MergeAll
package rxgo

import "fmt"

// ============================================================================
// MergeScan
// ============================================================================

// mergeScanState 单次订阅的累积状态
type mergeScanState struct {
	accumulator Accumulator
	acc         interface{}
	hasValue    bool
}

// MergeScan 类似 Scan，但累加函数返回一个子流，子流合并进输出流。
//
// 子流发射的每个值既成为新的累积值，又立即转发给下游；下一次调用累加函数时
// 拿到的总是最后一次转发的值。源为空（没有任何子流发射过值）时，完成前发射 seed。
// 默认不限制并发，可用 WithConcurrency 限制同时订阅的子流数量，超出的源值按FIFO排队。
//
// 例：统计点击次数
//
//	count := clicks.Pipe(rxgo.MergeScan(func(acc, _ interface{}, _ int) (rxgo.Observable, error) {
//		return rxgo.Just(acc.(int) + 1), nil
//	}, 0))
func MergeScan(accumulator Accumulator, seed interface{}, options ...Option) OperatorFunc {
	config := newConfig(options)
	return flatten(config, func() flattenStrategy {
		state := &mergeScanState{accumulator: accumulator, acc: seed}
		return flattenStrategy{
			name:   "MergeScan",
			policy: AdmitQueue,
			project: func(value interface{}, index int) (Observable, error) {
				return state.accumulator(state.acc, value, index)
			},
			onInnerNext: func(value interface{}) {
				state.acc = value
				state.hasValue = true
			},
			onDrained: func(destination Subscriber) {
				if !state.hasValue {
					destination.OnNext(state.acc)
				}
			},
		}
	})
}

// ============================================================================
// MergeMap 家族
// ============================================================================

// MergeMap 将每个源值映射为子流并合并输出，默认不限制并发
func MergeMap(project Projector, options ...Option) OperatorFunc {
	config := newConfig(options)
	return flatten(config, func() flattenStrategy {
		return flattenStrategy{name: "MergeMap", policy: AdmitQueue, project: project}
	})
}

// ConcatMap 连接映射，按源值顺序逐个订阅子流，前一个完成后才开始下一个
func ConcatMap(project Projector, options ...Option) OperatorFunc {
	config := newConfig(options)
	config.Concurrency = Bounded(1)
	return flatten(config, func() flattenStrategy {
		return flattenStrategy{name: "ConcatMap", policy: AdmitQueue, project: project}
	})
}

// SwitchMap 切换映射，新的源值到达时取消仍在运行的子流
func SwitchMap(project Projector, options ...Option) OperatorFunc {
	config := newConfig(options)
	config.Concurrency = Bounded(1)
	return flatten(config, func() flattenStrategy {
		return flattenStrategy{name: "SwitchMap", policy: AdmitSwitch, project: project}
	})
}

// ExhaustMap 耗尽映射，子流运行期间到达的源值被忽略
func ExhaustMap(project Projector, options ...Option) OperatorFunc {
	config := newConfig(options)
	config.Concurrency = Bounded(1)
	return flatten(config, func() flattenStrategy {
		return flattenStrategy{name: "ExhaustMap", policy: AdmitDrop, project: project}
	})
}

// MergeAll 源发射的是 Observable，把它们合并输出。源值不是 Observable 时以 ErrNotObservable 失败
func MergeAll(options ...Option) OperatorFunc {
	return MergeMap(func(value interface{}, _ int) (Observable, error) {
		inner, ok := value.(Observable)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrNotObservable, value)
		}
		return inner, nil
	}, options...)
}
