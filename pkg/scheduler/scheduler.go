package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"DateServer/pkg/async"
	"DateServer/pkg/ctxmeta"
)

// 任务状态
const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateCancelled
)

// Func 到期执行的任务体。ctx 在任务被取消或执行超时后结束。
type Func func(ctx context.Context)

// Runner 决定到期任务在哪里执行
type Runner func(ctx context.Context, fn func(ctx context.Context))

// AsyncRunner 在全局协程池中执行任务（带超时与 panic 恢复），不同任务互不阻塞
func AsyncRunner(timeout time.Duration) Runner {
	return func(ctx context.Context, fn func(ctx context.Context)) {
		async.RunSafe(ctx, fn, timeout)
	}
}

// InlineRunner 在定时器回调所在 goroutine 中直接执行，配合 FakeClock 用于测试
func InlineRunner() Runner {
	return func(ctx context.Context, fn func(ctx context.Context)) {
		fn(ctx)
	}
}

// Task 一次性延时任务，同时充当取消令牌
type Task struct {
	key    string
	fireAt time.Time
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	timer  Timer
	done   chan struct{}
}

// Key 任务键
func (t *Task) Key() string { return t.key }

// FireAt 计划触发时间
func (t *Task) FireAt() time.Time { return t.fireAt }

// Context 任务取消后结束
func (t *Task) Context() context.Context { return t.ctx }

// Done 任务执行完成或被取消后关闭
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancelled 任务是否在触发前被取消
func (t *Task) Cancelled() bool { return t.state.Load() == stateCancelled }

// Fired 任务是否已经触发（执行中或已完成）
func (t *Task) Fired() bool {
	s := t.state.Load()
	return s == stateRunning || s == stateDone
}

// Cancel 取消任务。触发前取消返回 true 且任务体不会执行；
// 执行中的任务只会收到 ctx 取消信号，返回 false。
func (t *Task) Cancel() bool {
	if t.state.CompareAndSwap(statePending, stateCancelled) {
		if t.timer != nil {
			t.timer.Stop()
		}
		t.cancel()
		close(t.done)
		return true
	}
	t.cancel()
	return false
}

// Scheduler 按键管理的一次性任务表。同一个键同时只有一个待执行任务，重复调度会替换旧任务。
type Scheduler struct {
	clock Clock
	run   Runner

	mu    sync.Mutex
	tasks map[string]*Task
}

// Option 调度器选项
type Option func(*Scheduler)

// WithRunner 指定任务执行方式，默认 AsyncRunner(time.Minute)
func WithRunner(r Runner) Option {
	return func(s *Scheduler) { s.run = r }
}

// New 创建调度器，clock 为 nil 时使用系统时间
func New(clock Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	s := &Scheduler{
		clock: clock,
		run:   AsyncRunner(time.Minute),
		tasks: make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock 返回调度器使用的时间源
func (s *Scheduler) Clock() Clock { return s.clock }

// Schedule 在 delay 后执行 fn。parent 只用于透传追踪字段，其取消不影响任务。
func (s *Scheduler) Schedule(parent context.Context, key string, delay time.Duration, fn Func) *Task {
	ctx, cancel := context.WithCancel(ctxmeta.Detach(parent))
	t := &Task{
		key:    key,
		fireAt: s.clock.Now().Add(delay),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	old := s.tasks[key]
	s.tasks[key] = t
	// 先登记再创建定时器，保证零延时任务触发时已能在表中找到自己
	t.timer = s.clock.AfterFunc(delay, func() { s.fire(t, fn) })
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	return t
}

func (s *Scheduler) fire(t *Task, fn Func) {
	if !t.state.CompareAndSwap(statePending, stateRunning) {
		return
	}
	s.remove(t)

	s.run(t.ctx, func(runCtx context.Context) {
		ctx, stop := context.WithCancel(runCtx)
		defer stop()
		unlink := context.AfterFunc(t.ctx, stop)
		defer unlink()
		defer func() {
			t.state.Store(stateDone)
			t.cancel()
			close(t.done)
		}()
		fn(ctx)
	})
}

func (s *Scheduler) remove(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[t.key]; ok && cur == t {
		delete(s.tasks, t.key)
	}
}

// Get 返回键对应的待执行任务
func (s *Scheduler) Get(key string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	return t, ok
}

// Cancel 取消键对应的待执行任务
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if ok {
		delete(s.tasks, key)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return t.Cancel()
}

// CancelWhere 取消所有键满足 match 的待执行任务，返回取消数量
func (s *Scheduler) CancelWhere(match func(key string) bool) int {
	s.mu.Lock()
	var victims []*Task
	for key, t := range s.tasks {
		if match(key) {
			victims = append(victims, t)
			delete(s.tasks, key)
		}
	}
	s.mu.Unlock()

	n := 0
	for _, t := range victims {
		if t.Cancel() {
			n++
		}
	}
	return n
}

// Pending 待执行任务数
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop 取消全部待执行任务（进程退出时调用）
func (s *Scheduler) Stop() int {
	return s.CancelWhere(func(string) bool { return true })
}
