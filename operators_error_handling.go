// Error handling operators for rxflat
// 错误处理操作符实现，包含Catch, OnErrorReturn, OnErrorResumeNext, Retry, Finally
package rxgo

// ============================================================================
// 错误处理操作符实现
// ============================================================================

// Catch 错误捕获操作符，当发生错误时切换到 handler 返回的Observable。
// handler 返回错误、nil或panic时，以该错误终止
func Catch(handler func(error) (Observable, error)) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		return SubscriberHooks{
			OnError: func(err error) {
				var (
					recovery Observable
					herr     error
				)
				if perr := SafeExecute(func() { recovery, herr = handler(err) }); perr != nil {
					herr = perr
				}
				if herr == nil && recovery == nil {
					herr = ErrNilObservable
				}
				if herr != nil {
					destination.OnError(herr)
					return
				}
				recovery.Subscribe(NewSubscriber(destination, SubscriberHooks{}))
			},
		}
	})
}

// OnErrorReturn 发生错误时发射给定值并正常完成
func OnErrorReturn(value interface{}) OperatorFunc {
	return Catch(func(error) (Observable, error) {
		return Just(value), nil
	})
}

// OnErrorResumeNext 发生错误时切换到 next
func OnErrorResumeNext(next Observable) OperatorFunc {
	return Catch(func(error) (Observable, error) {
		return next, nil
	})
}

// Retry 发生错误时重新订阅源，最多重试 count 次；重试用尽后转发最后一个错误
func Retry(count int) OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			attempts := 0
			var subscribe func() Subscription
			subscribe = func() Subscription {
				return src.Subscribe(NewSubscriber(destination, SubscriberHooks{
					OnError: func(err error) {
						if attempts >= count || destination.IsUnsubscribed() {
							destination.OnError(err)
							return
						}
						attempts++
						subscribe()
					},
				}))
			}
			return subscribe()
		}))
	}
}

// Finally 流终止或被取消时执行 action，只执行一次
func Finally(action func()) OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			destination.Add(NewSubscription(action))
			return src.Subscribe(NewSubscriber(destination, SubscriberHooks{}))
		}))
	}
}
