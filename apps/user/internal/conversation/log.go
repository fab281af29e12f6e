package conversation

import (
	"DateServer/model"
)

// Log 单个用户的消息日志，按聊天对象限制条数。
//
// 每条消息同时挂在 sender 和 receiver 两个对象的队列下（相同时只挂一次），
// 追加时若该对象下已有 cap 条，则淘汰该对象队列中最早的一条。
// 这与「从头扫描第一条 sender==partner 或 receiver==partner 的消息」的结果完全一致。
type Log struct {
	cap       int
	entries   []*entry
	removed   int
	byPartner map[string]*queue
}

type entry struct {
	msg     model.Message
	removed bool
}

// queue 懒删除 FIFO：被淘汰的 entry 只打标记，出队时跳过
type queue struct {
	items []*entry
	head  int
	live  int
}

// NewLog 创建空日志，cap<=0 表示不限制
func NewLog(cap int) *Log {
	return &Log{cap: cap, byPartner: make(map[string]*queue)}
}

// Load 按原有顺序装载已持久化的消息。
// 装载不触发淘汰：历史数据即使超出上限也原样保留，由后续追加逐步淘汰。
func Load(msgs []model.Message, cap int) *Log {
	l := NewLog(cap)
	for _, m := range msgs {
		l.add(m)
	}
	return l
}

// Append 追加一条消息，聊天对象取 msg.Receiver。
// 返回被淘汰的消息（没有淘汰时为 nil）。
func (l *Log) Append(msg model.Message) *model.Message {
	var evicted *model.Message
	if l.cap > 0 && l.CountWith(msg.Receiver) >= l.cap {
		if e := l.byPartner[msg.Receiver].pop(); e != nil {
			l.evict(e)
			m := e.msg
			evicted = &m
		}
	}
	l.add(msg)
	return evicted
}

// CountWith 与 partner 相关的消息条数（作为发送方或接收方）
func (l *Log) CountWith(partner string) int {
	if q, ok := l.byPartner[partner]; ok {
		return q.live
	}
	return 0
}

// Len 日志中的消息总数
func (l *Log) Len() int {
	return len(l.entries) - l.removed
}

// Messages 按追加顺序返回所有消息
func (l *Log) Messages() []model.Message {
	out := make([]model.Message, 0, l.Len())
	for _, e := range l.entries {
		if !e.removed {
			out = append(out, e.msg)
		}
	}
	return out
}

// HasMessage 是否存在 sender -> receiver 方向的消息
func (l *Log) HasMessage(sender, receiver string) bool {
	q, ok := l.byPartner[receiver]
	if !ok {
		return false
	}
	for _, e := range q.items[q.head:] {
		if !e.removed && e.msg.Sender == sender && e.msg.Receiver == receiver {
			return true
		}
	}
	return false
}

func (l *Log) add(msg model.Message) {
	e := &entry{msg: msg}
	l.entries = append(l.entries, e)
	for _, p := range partnersOf(msg) {
		l.queueFor(p).push(e)
	}
}

func (l *Log) evict(e *entry) {
	e.removed = true
	l.removed++
	for _, p := range partnersOf(e.msg) {
		l.byPartner[p].live--
	}
	// 淘汰数量过半时压缩一次，避免切片无限增长
	if l.removed > len(l.entries)/2 {
		live := l.entries[:0]
		for _, x := range l.entries {
			if !x.removed {
				live = append(live, x)
			}
		}
		for i := len(live); i < len(l.entries); i++ {
			l.entries[i] = nil
		}
		l.entries = live
		l.removed = 0
	}
}

func (l *Log) queueFor(partner string) *queue {
	q, ok := l.byPartner[partner]
	if !ok {
		q = &queue{}
		l.byPartner[partner] = q
	}
	return q
}

func partnersOf(msg model.Message) []string {
	if msg.Sender == msg.Receiver {
		return []string{msg.Sender}
	}
	return []string{msg.Sender, msg.Receiver}
}

func (q *queue) push(e *entry) {
	q.items = append(q.items, e)
	q.live++
}

// pop 弹出最早的未淘汰 entry（不修改 live，由 evict 统一扣减）
func (q *queue) pop() *entry {
	if q == nil {
		return nil
	}
	for q.head < len(q.items) {
		e := q.items[q.head]
		q.items[q.head] = nil
		q.head++
		if !e.removed {
			q.compact()
			return e
		}
	}
	q.compact()
	return nil
}

func (q *queue) compact() {
	if q.head > 32 && q.head > len(q.items)/2 {
		q.items = append(q.items[:0:0], q.items[q.head:]...)
		q.head = 0
	}
}
