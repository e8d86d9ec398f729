package rxgo

import (
	"errors"
	"fmt"
	"sync"
)

var errBoom = errors.New("boom")

// ============================================================================
// 记录订阅者
// ============================================================================

// recorder 记录终端订阅者收到的全部通知
type recorder struct {
	mu        sync.Mutex
	values    []interface{}
	err       error
	errs      int
	completes int
}

func (r *recorder) subscriber() Subscriber {
	return NewObserverSubscriber(
		func(value interface{}) {
			r.mu.Lock()
			r.values = append(r.values, value)
			r.mu.Unlock()
		},
		func(err error) {
			r.mu.Lock()
			r.err = err
			r.errs++
			r.mu.Unlock()
		},
		func() {
			r.mu.Lock()
			r.completes++
			r.mu.Unlock()
		},
	)
}

func (r *recorder) Values() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.values...)
}

func (r *recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *recorder) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs
}

func (r *recorder) Completes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completes
}

// record 订阅并返回记录器和订阅
func record(source Observable) (*recorder, Subscription) {
	r := &recorder{}
	return r, source.Subscribe(r.subscriber())
}

// ============================================================================
// 手动控制的数据源
// ============================================================================

// manualSource 每次订阅都记录订阅者，由测试手动推送信号；统计订阅与释放次数
type manualSource struct {
	mu           sync.Mutex
	subscribers  []Subscriber
	unsubscribes int
}

func (m *manualSource) observable() Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		m.mu.Lock()
		m.subscribers = append(m.subscribers, subscriber)
		m.mu.Unlock()
		return NewSubscription(func() {
			m.mu.Lock()
			m.unsubscribes++
			m.mu.Unlock()
		})
	})
}

func (m *manualSource) Subscribes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

func (m *manualSource) Unsubscribes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribes
}

func (m *manualSource) last() Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subscribers) == 0 {
		panic("manualSource: no subscriber")
	}
	return m.subscribers[len(m.subscribers)-1]
}

func (m *manualSource) next(value interface{}) { m.last().OnNext(value) }

func (m *manualSource) complete() { m.last().OnComplete() }

func (m *manualSource) fail(err error) { m.last().OnError(err) }

// manualSources 创建 n 个手动数据源
func manualSources(n int) []*manualSource {
	sources := make([]*manualSource, n)
	for i := range sources {
		sources[i] = &manualSource{}
	}
	return sources
}

// ============================================================================
// 异步数据源与日志捕获
// ============================================================================

// async 在独立goroutine上发射给定的值后完成
func async(values ...interface{}) Observable {
	return NewObservable(func(subscriber Subscriber) Subscription {
		go func() {
			for _, v := range values {
				if subscriber.IsUnsubscribed() {
					return
				}
				subscriber.OnNext(v)
			}
			subscriber.OnComplete()
		}()
		return nil
	})
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// captureLogger 记录所有日志调用
type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *captureLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func (l *captureLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprint(l.entries)
}
