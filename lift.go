package rxgo

// ============================================================================
// Operator 与 Lift
// ============================================================================

// Operator 操作符能力接口：构造包装 destination 的中间订阅者并把它订阅到 source
type Operator interface {
	Apply(destination Subscriber, source Observable) Subscription
}

// OperatorApplyFunc 函数形式的 Operator
type OperatorApplyFunc func(destination Subscriber, source Observable) Subscription

// Apply 实现 Operator
func (f OperatorApplyFunc) Apply(destination Subscriber, source Observable) Subscription {
	return f(destination, source)
}

// OperatorFunc 从一个Observable到另一个Observable的变换，供 Pipe 使用
type OperatorFunc func(source Observable) Observable

// Lift 返回新的Observable：订阅它时调用 operator.Apply(下游, source)，
// 并把返回的订阅挂到下游订阅者上
func Lift(source Observable, operator Operator) Observable {
	return &observableImpl{source: source, operator: operator}
}

// Pipe 依次应用操作符，nil 操作符被跳过
func Pipe(source Observable, operators ...OperatorFunc) Observable {
	result := source
	for _, op := range operators {
		if op != nil {
			result = op(result)
		}
	}
	return result
}

// liftWith 用 SubscriberHooks 构建简单操作符的便捷方法
func liftWith(newHooks func(self Subscriber, destination Subscriber) SubscriberHooks) OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, OperatorApplyFunc(func(destination Subscriber, src Observable) Subscription {
			s := newBaseSubscriber(destination, SubscriberHooks{})
			s.hooks = newHooks(s, destination)
			return src.Subscribe(s)
		}))
	}
}
