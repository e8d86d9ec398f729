package rxgo

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/xinjiayu/rxflat/logging"
)

// ============================================================================
// 并发上限
// ============================================================================

// Concurrency 显式的可选并发上限，零值表示不限制
type Concurrency struct {
	limit   int
	bounded bool
}

// Unbounded 不限制同时活跃的内部流数量
func Unbounded() Concurrency {
	return Concurrency{}
}

// Bounded 最多 n 个内部流同时活跃，n 必须 >= 1
func Bounded(n int) Concurrency {
	return Concurrency{limit: n, bounded: true}
}

// Limit 返回上限，以及是否有上限
func (c Concurrency) Limit() (int, bool) {
	return c.limit, c.bounded
}

// Allows 在已有 active 个活跃内部流时是否还能接纳新的
func (c Concurrency) Allows(active int) bool {
	return !c.bounded || active < c.limit
}

// Validate 检查上限是否合法
func (c Concurrency) Validate() error {
	if c.bounded && c.limit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.limit)
	}
	return nil
}

func (c Concurrency) String() string {
	if !c.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", c.limit)
}

// ============================================================================
// 接纳策略
// ============================================================================

// AdmissionPolicy 并发已满时如何处理新到达的源值
type AdmissionPolicy int

const (
	// AdmitQueue 放入FIFO积压队列，等有内部流完成再接纳（merge / concat / mergeScan）
	AdmitQueue AdmissionPolicy = iota
	// AdmitSwitch 取消最早的活跃内部流并立即接纳（switchMap）
	AdmitSwitch
	// AdmitDrop 丢弃该源值（exhaustMap）
	AdmitDrop
)

func (p AdmissionPolicy) String() string {
	switch p {
	case AdmitQueue:
		return "queue"
	case AdmitSwitch:
		return "switch"
	case AdmitDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// flattenStrategy 展平操作符家族之间的差异点
type flattenStrategy struct {
	name   string
	policy AdmissionPolicy
	// project 为源值产生子流
	project Projector
	// onInnerNext 内部流发射值、转发下游之前调用
	onInnerNext func(value interface{})
	// onDrained 全部工作结束、发送完成信号之前调用
	onDrained func(destination Subscriber)
}

// ============================================================================
// 展平引擎
// ============================================================================

// flattenSubscriber 外部订阅者：接收源的信号，按接纳策略启动内部流，
// 并把所有内部流的信号协调成下游唯一的终止信号。
//
// 所有状态只在 serial 的任务中读写；done 可被外部取消并发设置。
type flattenSubscriber struct {
	*baseSubscriber
	destination Subscriber
	strategy    flattenStrategy
	limit       Concurrency
	logger      logging.Logger
	opID        string
	backlogWarn int

	serial serializer
	done   int32

	active         []*innerSubscriber
	pending        []interface{}
	outerCompleted bool
	index          int
	backlogWarned  bool
}

func newFlattenSubscriber(destination Subscriber, strategy flattenStrategy, config *Config) *flattenSubscriber {
	limit := config.Concurrency
	if strategy.policy != AdmitQueue {
		limit = Bounded(1)
	}

	fs := &flattenSubscriber{
		destination: destination,
		strategy:    strategy,
		limit:       limit,
		logger:      config.logger(),
		opID:        uuid.NewString(),
		backlogWarn: config.BacklogWarnThreshold,
	}
	fs.baseSubscriber = newBaseSubscriber(destination, SubscriberHooks{
		OnNext:     fs.onSourceNext,
		OnError:    fs.onSourceError,
		OnComplete: fs.onSourceComplete,
	})

	// 下游被取消时丢弃积压并取消全部内部流
	destination.Add(NewSubscription(fs.dispose))

	fs.logger.Debug("rxgo: flatten subscribed",
		"op_id", fs.opID, "operator", strategy.name, "concurrency", limit.String(), "policy", strategy.policy.String())
	return fs
}

func (fs *flattenSubscriber) isDone() bool {
	return atomic.LoadInt32(&fs.done) == 1
}

// ---------------------------------------------------------------------------
// 外部（源）信号
// ---------------------------------------------------------------------------

func (fs *flattenSubscriber) onSourceNext(value interface{}) {
	fs.serial.run(func() {
		if fs.isDone() {
			return
		}
		fs.admitOrDefer(value)
	})
}

func (fs *flattenSubscriber) onSourceError(err error) {
	fs.serial.run(func() {
		fs.fail(err)
	})
}

// onSourceComplete 源结束后外部订阅者随即取消对源的订阅，活跃的内部流挂在下游上继续运行
func (fs *flattenSubscriber) onSourceComplete() {
	fs.serial.run(func() {
		if fs.isDone() {
			return
		}
		fs.outerCompleted = true
		if len(fs.active) == 0 && len(fs.pending) == 0 {
			fs.complete()
		}
	})
}

// ---------------------------------------------------------------------------
// 接纳控制
// ---------------------------------------------------------------------------

func (fs *flattenSubscriber) admitOrDefer(value interface{}) {
	if fs.limit.Allows(len(fs.active)) {
		fs.admit(value)
		return
	}

	switch fs.strategy.policy {
	case AdmitSwitch:
		oldest := fs.active[0]
		fs.active = fs.active[1:]
		oldest.Unsubscribe()
		fs.admit(value)
	case AdmitDrop:
		fs.logger.Debug("rxgo: source value dropped while saturated", "op_id", fs.opID)
	default:
		fs.pending = append(fs.pending, value)
		if fs.backlogWarn > 0 && !fs.backlogWarned && len(fs.pending) >= fs.backlogWarn {
			fs.backlogWarned = true
			fs.logger.Warn("rxgo: flatten backlog is growing",
				"op_id", fs.opID, "operator", fs.strategy.name, "pending", len(fs.pending), "active", len(fs.active))
		}
	}
}

func (fs *flattenSubscriber) admit(value interface{}) {
	index := fs.index
	fs.index++

	source, err := fs.project(value, index)
	if err != nil {
		fs.fail(err)
		return
	}

	inner := newInnerSubscriber(fs, value, index)
	fs.active = append(fs.active, inner)
	fs.destination.Add(inner)
	innerSubscribe(source, inner)
}

func (fs *flattenSubscriber) project(value interface{}, index int) (source Observable, err error) {
	defer func() {
		if r := recover(); r != nil {
			source, err = nil, newPanicError(r)
		}
	}()

	source, err = fs.strategy.project(value, index)
	if err == nil && source == nil {
		err = ErrNilObservable
	}
	return source, err
}

// ---------------------------------------------------------------------------
// 内部信号
// ---------------------------------------------------------------------------

func (fs *flattenSubscriber) notifyNext(inner *innerSubscriber, value interface{}) {
	fs.serial.run(func() {
		if fs.isDone() || !fs.isActive(inner) {
			return
		}
		if fs.strategy.onInnerNext != nil {
			fs.strategy.onInnerNext(value)
		}
		fs.destination.OnNext(value)
	})
}

func (fs *flattenSubscriber) notifyError(inner *innerSubscriber, err error) {
	fs.serial.run(func() {
		if fs.isDone() || !fs.isActive(inner) {
			return
		}
		fs.fail(err)
	})
}

func (fs *flattenSubscriber) notifyComplete(inner *innerSubscriber) {
	fs.serial.run(func() {
		if fs.isDone() || !fs.removeActive(inner) {
			return
		}

		if len(fs.pending) > 0 {
			next := fs.pending[0]
			fs.pending[0] = nil
			fs.pending = fs.pending[1:]
			fs.admit(next)
			return
		}

		if len(fs.active) == 0 && fs.outerCompleted {
			fs.complete()
		}
	})
}

func (fs *flattenSubscriber) isActive(inner *innerSubscriber) bool {
	for _, a := range fs.active {
		if a == inner {
			return true
		}
	}
	return false
}

func (fs *flattenSubscriber) removeActive(inner *innerSubscriber) bool {
	for i, a := range fs.active {
		if a == inner {
			fs.active = append(fs.active[:i], fs.active[i+1:]...)
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// 终止
// ---------------------------------------------------------------------------

func (fs *flattenSubscriber) fail(err error) {
	if !atomic.CompareAndSwapInt32(&fs.done, 0, 1) {
		return
	}
	fs.logger.Debug("rxgo: flatten failed", "op_id", fs.opID, "operator", fs.strategy.name, "error", err)

	fs.destination.OnError(err)
	fs.release()
}

func (fs *flattenSubscriber) complete() {
	if !atomic.CompareAndSwapInt32(&fs.done, 0, 1) {
		return
	}
	fs.logger.Debug("rxgo: flatten completed", "op_id", fs.opID, "operator", fs.strategy.name, "admitted", fs.index)

	if fs.strategy.onDrained != nil {
		fs.strategy.onDrained(fs.destination)
	}
	fs.destination.OnComplete()
	fs.release()
}

// dispose 外部取消：可能来自任意goroutine，状态清理交给串行队列
func (fs *flattenSubscriber) dispose() {
	if atomic.CompareAndSwapInt32(&fs.done, 0, 1) {
		fs.logger.Debug("rxgo: flatten cancelled", "op_id", fs.opID, "operator", fs.strategy.name)
	}
	fs.baseSubscriber.Unsubscribe()
	fs.serial.run(fs.release)
}

// release 取消外部订阅与所有活跃内部流，丢弃积压队列。只在串行任务中调用
func (fs *flattenSubscriber) release() {
	fs.baseSubscriber.Unsubscribe()

	active := fs.active
	fs.active = nil
	fs.pending = nil
	for _, inner := range active {
		inner.Unsubscribe()
	}
}

// ============================================================================
// 展平操作符
// ============================================================================

// flattenOperator 每次订阅创建新的策略实例，保证多次订阅互不影响
type flattenOperator struct {
	newStrategy func() flattenStrategy
	config      *Config
}

func (op *flattenOperator) Apply(destination Subscriber, source Observable) Subscription {
	if err := op.config.Concurrency.Validate(); err != nil {
		destination.OnError(err)
		return nil
	}

	fs := newFlattenSubscriber(destination, op.newStrategy(), op.config)
	return source.Subscribe(fs)
}

func flatten(config *Config, newStrategy func() flattenStrategy) OperatorFunc {
	return func(source Observable) Observable {
		return Lift(source, &flattenOperator{newStrategy: newStrategy, config: config})
	}
}
