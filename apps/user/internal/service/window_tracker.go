package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"DateServer/apps/user/internal/conversation"
	"DateServer/apps/user/internal/repository"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/scheduler"
)

// windowKeyPrefix 消息窗口任务键前缀，完整键为 match:{房间号}
const windowKeyPrefix = "match:"

// WindowOutcome 消息窗口检查结果
type WindowOutcome string

const (
	OutcomeKept      WindowOutcome = "kept"      // 发起方已发出消息，配对保留
	OutcomeDissolved WindowOutcome = "dissolved" // 窗口内无消息，已解除配对
	OutcomeStale     WindowOutcome = "stale"     // 配对已不存在（已解除或账号已删除），无操作
	OutcomeFailed    WindowOutcome = "failed"    // 读写失败，放弃
)

// WindowTracker 配对后的消息窗口：到期时发起方仍未给对方发过消息则自动解除配对
type WindowTracker struct {
	users  repository.IUserRepository
	sched  *scheduler.Scheduler
	window time.Duration
}

// NewWindowTracker 创建消息窗口跟踪器
func NewWindowTracker(users repository.IUserRepository, sched *scheduler.Scheduler, window time.Duration) *WindowTracker {
	return &WindowTracker{users: users, sched: sched, window: window}
}

// WindowKey 消息窗口任务键，与双方顺序无关
func WindowKey(a, b string) string {
	return windowKeyPrefix + conversation.RoomKey(a, b)
}

// Window 窗口时长
func (w *WindowTracker) Window() time.Duration { return w.window }

// Arm 配对成功时开启窗口。initiator 是需要发出第一条消息的一方。
// 同一对用户重复开启会替换之前的任务。
func (w *WindowTracker) Arm(ctx context.Context, initiatorID, counterpartID string) *scheduler.Task {
	key := WindowKey(initiatorID, counterpartID)
	if _, replaced := w.sched.Get(key); !replaced {
		pendingWindows.Inc()
	}
	return w.sched.Schedule(ctxmeta.Detach(ctx), key, w.window, func(runCtx context.Context) {
		pendingWindows.Dec()
		outcome := w.Check(runCtx, initiatorID, counterpartID)
		windowChecksTotal.WithLabelValues(string(outcome)).Inc()
	})
}

// CancelFor 取消与某个用户相关的所有未触发窗口，返回取消数量
func (w *WindowTracker) CancelFor(userID string) int {
	n := w.sched.CancelWhere(func(key string) bool {
		pair, ok := strings.CutPrefix(key, windowKeyPrefix)
		if !ok {
			return false
		}
		a, b, _ := strings.Cut(pair, "_")
		return a == userID || b == userID
	})
	pendingWindows.Sub(float64(n))
	return n
}

// Check 执行一次窗口检查。
// 只看发起方的消息日志中 sender=发起方、receiver=对方 的消息，对方发给发起方的消息不算数。
func (w *WindowTracker) Check(ctx context.Context, initiatorID, counterpartID string) WindowOutcome {
	initiator, err := w.users.FindByID(ctx, initiatorID)
	if err != nil {
		return w.readFailed(ctx, err, initiatorID, counterpartID)
	}
	counterpart, err := w.users.FindByID(ctx, counterpartID)
	if err != nil {
		return w.readFailed(ctx, err, initiatorID, counterpartID)
	}

	if !initiator.IsMatchedWith(counterpartID) || !counterpart.IsMatchedWith(initiatorID) {
		logger.Debug(ctx, "消息窗口到期，配对已不存在",
			logger.String("initiator", initiatorID),
			logger.String("counterpart", counterpartID),
		)
		return OutcomeStale
	}

	log := conversation.Load(initiator.Messages, consts.MessageCapPerPartner)
	if log.HasMessage(initiatorID, counterpartID) {
		return OutcomeKept
	}

	if err := w.users.UnlinkMatch(ctx, initiatorID, counterpartID); err != nil {
		logger.Error(ctx, "消息窗口到期解除配对失败",
			logger.String("user_id", initiatorID),
			logger.String("other_id", counterpartID),
			logger.ErrorField("error", err),
		)
		return OutcomeFailed
	}
	if err := w.users.UnlinkMatch(ctx, counterpartID, initiatorID); err != nil {
		// 第一侧已解除，这里失败会留下单向配对
		logger.Error(ctx, "消息窗口到期解除配对失败，配对关系不对称",
			logger.String("user_id", counterpartID),
			logger.String("other_id", initiatorID),
			logger.ErrorField("error", err),
		)
		return OutcomeFailed
	}

	logger.Info(ctx, "消息窗口内未发送消息，已自动解除配对",
		logger.String("initiator", initiatorID),
		logger.String("counterpart", counterpartID),
	)
	return OutcomeDissolved
}

func (w *WindowTracker) readFailed(ctx context.Context, err error, initiatorID, counterpartID string) WindowOutcome {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return OutcomeStale
	}
	logger.Error(ctx, "消息窗口检查读取用户失败",
		logger.String("initiator", initiatorID),
		logger.String("counterpart", counterpartID),
		logger.ErrorField("error", err),
	)
	return OutcomeFailed
}
