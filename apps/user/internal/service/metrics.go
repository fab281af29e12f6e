package service

import (
	"DateServer/pkg/async"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	likesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "justdate_likes_total",
			Help: "Like operations by result",
		},
		[]string{"result"},
	)
	windowChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "justdate_window_checks_total",
			Help: "Message window checks by outcome",
		},
		[]string{"outcome"},
	)
	pendingWindows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "justdate_pending_windows",
			Help: "Message window checks armed but not yet fired",
		},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "justdate_messages_sent_total",
			Help: "Messages persisted",
		},
	)
	messagesEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "justdate_messages_evicted_total",
			Help: "Messages evicted by the per-partner cap",
		},
	)
	roomPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "justdate_room_publish_failures_total",
			Help: "Realtime room publish failures",
		},
	)
	asyncRunning = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "justdate_async_running_tasks",
			Help: "Tasks currently running on the async pool",
		},
		func() float64 { return float64(async.Running()) },
	)
)

func init() {
	prometheus.MustRegister(
		likesTotal,
		windowChecksTotal,
		pendingWindows,
		messagesSentTotal,
		messagesEvictedTotal,
		roomPublishFailuresTotal,
		asyncRunning,
	)
}
