package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Timer 可停止的一次性定时器
type Timer interface {
	// Stop 阻止定时器触发，已触发或已停止时返回 false
	Stop() bool
}

// Clock 时间源。生产环境使用 RealClock，测试使用 FakeClock 手动推进时间。
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock 返回基于系统时间的 Clock
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeClock 虚拟时钟：时间只在 Advance 时前进，到期回调在 Advance 的调用方 goroutine 中同步执行
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	fireAt  time.Time
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

// NewFakeClock 创建从 start 开始的虚拟时钟
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, fireAt: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance 推进时间 d，按到期时间（同一时刻按注册顺序）依次触发回调。
// 回调中新注册且在目标时间内到期的定时器同样会被触发。
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.fireAt.After(c.now) {
			c.now = next.fireAt
		}
		c.mu.Unlock()

		next.f()
	}
}

// Pending 尚未触发且未停止的定时器数量
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *FakeClock) nextDueLocked(target time.Time) *fakeTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].fireAt.Equal(c.timers[j].fireAt) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].fireAt.Before(c.timers[j].fireAt)
	})
	if len(c.timers) == 0 || c.timers[0].fireAt.After(target) {
		return nil
	}
	return c.timers[0]
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
