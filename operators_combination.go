// Combination operators for rxflat
// 组合操作符：Merge, Concat, StartWith，全部基于展平引擎
package rxgo

// ============================================================================
// 静态组合操作符
// ============================================================================

// Merge 合并多个Observable，全部同时订阅
func Merge(observables ...Observable) Observable {
	return MergeArray(observables)
}

// MergeArray 合并多个Observable，可用 WithConcurrency 限制同时订阅的数量
func MergeArray(observables []Observable, options ...Option) Observable {
	switch len(observables) {
	case 0:
		return Empty()
	case 1:
		return observables[0]
	}
	return fromObservables(observables).Pipe(MergeAll(options...))
}

// Concat 按顺序连接多个Observable，前一个完成后才订阅下一个
func Concat(observables ...Observable) Observable {
	switch len(observables) {
	case 0:
		return Empty()
	case 1:
		return observables[0]
	}
	return fromObservables(observables).Pipe(MergeAll(WithConcurrency(1)))
}

// StartWith 先发射给定的值，再转发源
func StartWith(values ...interface{}) OperatorFunc {
	return func(source Observable) Observable {
		return Concat(FromSlice(values), source)
	}
}

func fromObservables(observables []Observable) Observable {
	values := make([]interface{}, len(observables))
	for i, obs := range observables {
		values[i] = obs
	}
	return FromSlice(values)
}
