package rxgo

import "sync"

// ============================================================================
// 串行执行队列
// ============================================================================

// serializer 非阻塞的串行执行队列。
//
// 第一个调用 run 的goroutine负责排空队列；排空期间的重入调用（同一goroutine内的同步回调）
// 或来自其它goroutine的调用只入队并立即返回。因此所有任务串行、逐个运行到结束，
// 而最外层的 run 在返回之前一定已经执行完它所触发的全部同步任务。
type serializer struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (s *serializer) run(task func()) {
	s.mu.Lock()
	s.queue = append(s.queue, task)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.drain()
}

func (s *serializer) drain() {
	defer func() {
		if r := recover(); r != nil {
			// 任务panic后丢弃剩余任务，让后续调用可以重新进入
			s.mu.Lock()
			s.queue = nil
			s.running = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		task()
	}
}
