// Utility operators for rxflat
// 单遍转换操作符：Map, Filter, Take, DefaultIfEmpty, Serialize
package rxgo

// ============================================================================
// 转换操作符
// ============================================================================

// Map 转换操作符，transformer 返回错误或panic时以错误终止
func Map(transformer Transformer) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		return SubscriberHooks{
			OnNext: func(value interface{}) {
				result, err := safeTransform(transformer, value)
				if err != nil {
					self.OnError(err)
					return
				}
				destination.OnNext(result)
			},
		}
	})
}

func safeTransform(transformer Transformer, value interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, newPanicError(r)
		}
	}()
	return transformer(value)
}

// Filter 过滤操作符
func Filter(predicate Predicate) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		return SubscriberHooks{
			OnNext: func(value interface{}) {
				var keep bool
				if err := SafeExecute(func() { keep = predicate(value) }); err != nil {
					self.OnError(err)
					return
				}
				if keep {
					destination.OnNext(value)
				}
			},
		}
	})
}

// Take 取前N个元素，取满后完成并取消对源的订阅
func Take(count int) OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			if count <= 0 {
				destination.OnComplete()
				return nil
			}

			taken := 0
			var s *baseSubscriber
			s = newBaseSubscriber(destination, SubscriberHooks{
				OnNext: func(value interface{}) {
					taken++
					destination.OnNext(value)
					if taken >= count {
						s.OnComplete()
					}
				},
			})
			return src.Subscribe(s)
		}))
	}
}

// DefaultIfEmpty 源没有发射任何值就完成时，先发射默认值
func DefaultIfEmpty(defaultValue interface{}) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		hasValue := false
		return SubscriberHooks{
			OnNext: func(value interface{}) {
				hasValue = true
				destination.OnNext(value)
			},
			OnComplete: func() {
				if !hasValue {
					destination.OnNext(defaultValue)
				}
				destination.OnComplete()
			},
		}
	})
}

// Serialize 保证下游收到的通知不会并发重叠，适用于源在多个goroutine上发射的场景
func Serialize() OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			return src.Subscribe(newSerializedSubscriber(destination))
		}))
	}
}
