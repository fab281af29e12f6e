package server

import (
	"context"
	"net/http"
	"time"

	"DateServer/apps/connect/internal/handler"
	"DateServer/config"
	"DateServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readHeaderTimeout 握手请求头读取超时，限制慢连接占用资源
const readHeaderTimeout = 5 * time.Second

// Server 对 http.Server 的轻量封装，集中管理启动和优雅关闭
type Server struct {
	httpServer *http.Server
}

// NewEngine 构建 Gin 路由：
// - GET /health:  健康检查
// - GET /metrics: Prometheus 指标
// - GET /ws:      WebSocket 接入入口
func NewEngine(wsHandler *handler.WSHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(util.TraceLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.ServeWS)
	return r
}

// New 包装成 HTTP Server。读写超时只作用于握手阶段，升级后由 websocket 连接自行控制。
func New(cfg config.ServerConfig, wsHandler *handler.WSHandler) *Server {
	gin.SetMode(cfg.Mode)
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewEngine(wsHandler),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
}

// Start 启动 HTTP 监听，优雅关闭时返回 http.ErrServerClosed
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown 执行优雅停机，调用方需要传入带超时的 ctx
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
