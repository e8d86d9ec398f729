// Side effect operators for rxflat
// 副作用操作符实现，包含Tap, DoOnNext, DoOnError, DoOnComplete, ThrowIfEmpty
package rxgo

// ============================================================================
// 副作用操作符实现
// ============================================================================

// TapObserver Tap 的回调集合，任意回调都可以为nil
type TapObserver struct {
	OnNext     OnNext
	OnError    OnError
	OnComplete OnComplete
}

// Tap 通用的副作用操作符：先执行回调再原样转发。回调panic时以 *PanicError 终止流
func Tap(observer TapObserver) OperatorFunc {
	return liftWith(func(self Subscriber, destination Subscriber) SubscriberHooks {
		return SubscriberHooks{
			OnNext: func(value interface{}) {
				if observer.OnNext != nil {
					if err := SafeExecute(func() { observer.OnNext(value) }); err != nil {
						self.OnError(err)
						return
					}
				}
				destination.OnNext(value)
			},
			OnError: func(err error) {
				if observer.OnError != nil {
					if perr := SafeExecute(func() { observer.OnError(err) }); perr != nil {
						destination.OnError(perr)
						return
					}
				}
				destination.OnError(err)
			},
			OnComplete: func() {
				if observer.OnComplete != nil {
					if err := SafeExecute(observer.OnComplete); err != nil {
						destination.OnError(err)
						return
					}
				}
				destination.OnComplete()
			},
		}
	})
}

// DoOnNext 在每个值发射时执行副作用操作
func DoOnNext(action OnNext) OperatorFunc {
	return Tap(TapObserver{OnNext: action})
}

// DoOnError 在发生错误时执行副作用操作
func DoOnError(action OnError) OperatorFunc {
	return Tap(TapObserver{OnError: action})
}

// DoOnComplete 在完成时执行副作用操作
func DoOnComplete(action OnComplete) OperatorFunc {
	return Tap(TapObserver{OnComplete: action})
}

// ============================================================================
// ThrowIfEmpty
// ============================================================================

// throwIfEmptySubscriber 记录是否见过值；完成时若一个值都没有则改为发送错误
type throwIfEmptySubscriber struct {
	*baseSubscriber
	hasValue     bool
	errorFactory func() error
}

func newThrowIfEmptySubscriber(destination Subscriber, errorFactory func() error) *throwIfEmptySubscriber {
	s := &throwIfEmptySubscriber{errorFactory: errorFactory}
	s.baseSubscriber = newBaseSubscriber(destination, SubscriberHooks{
		OnNext:     s.next,
		OnComplete: s.complete,
	})
	return s
}

func (s *throwIfEmptySubscriber) next(value interface{}) {
	s.hasValue = true
	s.destination.OnNext(value)
}

func (s *throwIfEmptySubscriber) complete() {
	if s.hasValue {
		s.destination.OnComplete()
		return
	}

	var err error
	if perr := SafeExecute(func() { err = s.errorFactory() }); perr != nil {
		err = perr
	}
	if err == nil {
		err = NewEmptyError()
	}
	s.destination.OnError(err)
}

// ThrowIfEmpty 源在没有发射任何值的情况下完成时发送错误。
// errorFactory 在那一刻被调用产生错误；为nil（或返回nil）时使用 *EmptyError
func ThrowIfEmpty(errorFactory func() error) OperatorFunc {
	if errorFactory == nil {
		errorFactory = defaultEmptyErrorFactory
	}
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			return src.Subscribe(newThrowIfEmptySubscriber(destination, errorFactory))
		}))
	}
}

func defaultEmptyErrorFactory() error {
	return NewEmptyError()
}
