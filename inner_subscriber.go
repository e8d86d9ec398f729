package rxgo

// ============================================================================
// 内部/外部订阅协调
// ============================================================================

// innerNotifier 外部订阅者实现的回调，按内部订阅实例区分通知来源
type innerNotifier interface {
	notifyNext(inner *innerSubscriber, value interface{})
	notifyError(inner *innerSubscriber, err error)
	notifyComplete(inner *innerSubscriber)
}

// innerSubscriber 每个被接纳的源值对应一个，把子流的信号转交给外部订阅者
type innerSubscriber struct {
	*baseSubscriber
	parent innerNotifier
	value  interface{} // 产生该子流的源值
	index  int
}

func newInnerSubscriber(parent innerNotifier, value interface{}, index int) *innerSubscriber {
	inner := &innerSubscriber{parent: parent, value: value, index: index}
	inner.baseSubscriber = newBaseSubscriber(nil, SubscriberHooks{
		OnNext: func(v interface{}) {
			parent.notifyNext(inner, v)
		},
		OnError: func(err error) {
			parent.notifyError(inner, err)
		},
		OnComplete: func() {
			parent.notifyComplete(inner)
		},
	})
	return inner
}

// innerSubscribe 把内部订阅者订阅到子流。子流可能在返回前同步发射值甚至完成
func innerSubscribe(source Observable, inner *innerSubscriber) Subscription {
	if inner.IsUnsubscribed() {
		return nil
	}
	return source.Subscribe(inner)
}
