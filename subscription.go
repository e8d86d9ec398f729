package rxgo

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/xinjiayu/rxflat/logging"
)

// ============================================================================
// 生命周期管理
// ============================================================================

// Subscription 订阅接口，管理订阅的生命周期
type Subscription interface {
	// Unsubscribe 取消订阅，重复调用无副作用
	Unsubscribe()
	// IsUnsubscribed 检查是否已取消订阅
	IsUnsubscribed() bool
}

// treeNode 由嵌入 *CompositeSubscription 的类型自动实现，用于在父子之间识别同一节点
type treeNode interface {
	node() *CompositeSubscription
}

// CompositeSubscription 订阅树节点：拥有子订阅和清理函数，并持有父节点的非拥有引用。
//
// Unsubscribe 先从所有父节点摘除自己，再深度优先取消子订阅，最后按注册顺序执行清理函数。
// 任何一步panic都不会中断遍历，失败会被聚合为 *UnsubscriptionError。
type CompositeSubscription struct {
	mu        sync.Mutex
	closed    bool
	children  []Subscription
	teardowns []func()
	parents   []*CompositeSubscription
	err       error
}

// NewCompositeSubscription 创建空的订阅树节点
func NewCompositeSubscription() *CompositeSubscription {
	return &CompositeSubscription{}
}

// NewSubscription 创建带清理函数的订阅
func NewSubscription(teardown func()) *CompositeSubscription {
	cs := &CompositeSubscription{}
	if teardown != nil {
		cs.teardowns = append(cs.teardowns, teardown)
	}
	return cs
}

func (cs *CompositeSubscription) node() *CompositeSubscription {
	return cs
}

// Add 添加子订阅；父节点已关闭时立即取消该子订阅
func (cs *CompositeSubscription) Add(child Subscription) {
	if child == nil {
		return
	}

	var childNode *CompositeSubscription
	if n, ok := child.(treeNode); ok {
		childNode = n.node()
		if childNode == nil || childNode == cs {
			return
		}
	}

	if child.IsUnsubscribed() {
		return
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		child.Unsubscribe()
		return
	}
	if cs.indexOf(child, childNode) >= 0 {
		cs.mu.Unlock()
		return
	}
	cs.children = append(cs.children, child)
	cs.mu.Unlock()

	if childNode != nil {
		childNode.addParent(cs)
	}
}

// AddTeardown 注册清理函数；节点已关闭时立即执行
func (cs *CompositeSubscription) AddTeardown(teardown func()) {
	if teardown == nil {
		return
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		if err := SafeExecute(teardown); err != nil {
			logging.Default().Error("rxgo: teardown failed", "error", err)
		}
		return
	}
	cs.teardowns = append(cs.teardowns, teardown)
	cs.mu.Unlock()
}

// Remove 移除子订阅，但不会取消它
func (cs *CompositeSubscription) Remove(child Subscription) {
	if child == nil {
		return
	}
	if n, ok := child.(treeNode); ok {
		childNode := n.node()
		cs.removeNode(childNode)
		childNode.removeParent(cs)
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i, c := range cs.children {
		if c == child {
			cs.children = append(cs.children[:i], cs.children[i+1:]...)
			return
		}
	}
}

// Unsubscribe 取消订阅
func (cs *CompositeSubscription) Unsubscribe() {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}
	cs.closed = true
	parents, children, teardowns := cs.parents, cs.children, cs.teardowns
	cs.parents, cs.children, cs.teardowns = nil, nil, nil
	cs.mu.Unlock()

	for _, parent := range parents {
		parent.removeNode(cs)
	}

	// 本节点自己的失败只在这里记录一次，子节点的失败由子节点自己记录
	var own, inherited error
	for _, child := range children {
		if err := SafeExecute(child.Unsubscribe); err != nil {
			own = multierr.Append(own, err)
		}
		if n, ok := child.(treeNode); ok {
			inherited = multierr.Append(inherited, n.node().Err())
		}
	}
	for _, teardown := range teardowns {
		own = multierr.Append(own, SafeExecute(teardown))
	}

	if own != nil {
		logging.Default().Error("rxgo: teardown failed", "error", own)
	}

	all := flattenErrors(multierr.Append(inherited, own))
	if len(all) > 0 {
		cs.mu.Lock()
		cs.err = &UnsubscriptionError{Errors: all}
		cs.mu.Unlock()
	}
}

// IsUnsubscribed 检查是否已取消订阅
func (cs *CompositeSubscription) IsUnsubscribed() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.closed
}

// Err 返回取消订阅期间聚合的错误（*UnsubscriptionError），没有失败时为nil
func (cs *CompositeSubscription) Err() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.err
}

// Len 当前持有的子订阅数量
func (cs *CompositeSubscription) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.children)
}

func (cs *CompositeSubscription) addParent(parent *CompositeSubscription) {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		parent.removeNode(cs)
		return
	}
	cs.parents = append(cs.parents, parent)
	cs.mu.Unlock()
}

func (cs *CompositeSubscription) removeParent(parent *CompositeSubscription) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i, p := range cs.parents {
		if p == parent {
			cs.parents = append(cs.parents[:i], cs.parents[i+1:]...)
			return
		}
	}
}

func (cs *CompositeSubscription) removeNode(child *CompositeSubscription) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i, c := range cs.children {
		if n, ok := c.(treeNode); ok && n.node() == child {
			cs.children = append(cs.children[:i], cs.children[i+1:]...)
			return
		}
	}
}

// indexOf 查找子订阅，调用方持有锁
func (cs *CompositeSubscription) indexOf(child Subscription, childNode *CompositeSubscription) int {
	for i, c := range cs.children {
		if childNode != nil {
			if n, ok := c.(treeNode); ok && n.node() == childNode {
				return i
			}
			continue
		}
		if c == child {
			return i
		}
	}
	return -1
}

// flattenErrors 展开嵌套的 UnsubscriptionError
func flattenErrors(err error) []error {
	var out []error
	for _, e := range multierr.Errors(err) {
		if ue, ok := e.(*UnsubscriptionError); ok {
			out = append(out, ue.Errors...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// ============================================================================
// 空订阅
// ============================================================================

// emptySubscription 已关闭的空订阅
type emptySubscription struct{}

// EmptySubscription 返回一个已经处于取消状态的订阅
func EmptySubscription() Subscription {
	return emptySubscription{}
}

func (emptySubscription) Unsubscribe() {}

func (emptySubscription) IsUnsubscribed() bool {
	return true
}
