package handler

import "github.com/prometheus/client_golang/prometheus"

var onlineConnections = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "justdate_connect_online_connections",
		Help: "Open WebSocket connections",
	},
)

func init() {
	prometheus.MustRegister(onlineConnections)
}
