// Observable implementation for rxflat
// 惰性的推模式数据流：每次订阅都会重新执行生产逻辑
package rxgo

// ============================================================================
// Observable 核心接口
// ============================================================================

// Observable 可观察序列的核心接口
type Observable interface {
	// Subscribe 订阅，返回值即可用于取消的订阅（通常就是传入的subscriber本身）
	Subscribe(subscriber Subscriber) Subscription

	// SubscribeWithCallbacks 使用回调函数订阅
	SubscribeWithCallbacks(onNext OnNext, onError OnError, onComplete OnComplete) Subscription

	// Pipe 依次应用操作符
	Pipe(operators ...OperatorFunc) Observable
}

// ============================================================================
// Observable 核心实现
// ============================================================================

// observableImpl Observable的核心实现，要么是生产者函数，要么是 source + operator 的提升结果
type observableImpl struct {
	producer func(subscriber Subscriber) Subscription
	source   Observable
	operator Operator
}

// NewObservable 创建新的Observable。producer 在每次订阅时执行，返回的订阅（可为nil）
// 会在订阅者被取消或终止时释放；producer 发生panic时以 OnError 通知订阅者
func NewObservable(producer func(subscriber Subscriber) Subscription) Observable {
	return &observableImpl{producer: producer}
}

// Subscribe 订阅
func (o *observableImpl) Subscribe(subscriber Subscriber) Subscription {
	if subscriber == nil {
		subscriber = NewObserverSubscriber(nil, nil, nil)
	}

	if o.operator != nil {
		subscriber.Add(o.operator.Apply(subscriber, o.source))
	} else {
		subscriber.Add(o.trySubscribe(subscriber))
	}

	return subscriber
}

func (o *observableImpl) trySubscribe(subscriber Subscriber) (subscription Subscription) {
	defer func() {
		if r := recover(); r != nil {
			subscription = nil
			subscriber.OnError(newPanicError(r))
		}
	}()

	if o.producer == nil {
		return nil
	}
	return o.producer(subscriber)
}

// SubscribeWithCallbacks 使用回调函数订阅
func (o *observableImpl) SubscribeWithCallbacks(onNext OnNext, onError OnError, onComplete OnComplete) Subscription {
	return o.Subscribe(NewObserverSubscriber(onNext, onError, onComplete))
}

// Pipe 依次应用操作符
func (o *observableImpl) Pipe(operators ...OperatorFunc) Observable {
	return Pipe(o, operators...)
}
