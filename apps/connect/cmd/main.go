package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"DateServer/apps/connect/internal/consumer"
	"DateServer/apps/connect/internal/handler"
	"DateServer/apps/connect/internal/manager"
	"DateServer/apps/connect/internal/server"
	"DateServer/apps/connect/internal/svc"
	"DateServer/config"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/kafka"
	"DateServer/pkg/logger"
	pkgredis "DateServer/pkg/redis"
	"DateServer/pkg/util"
)

func main() {
	// connect 服务不是从 HTTP 请求起步，先放一个固定 trace_id 用于启动期日志串联
	ctx, cancel := context.WithCancel(ctxmeta.WithTraceID(context.Background(), "0"))
	defer cancel()

	cfg := config.Load()

	// 1) 初始化日志组件
	cfg.Logger.Service = "connect"
	l, err := logger.Build(cfg.Logger)
	if err != nil {
		panic(err)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		_ = l.Sync()
	}()

	util.InitJWT(cfg.JWT)

	// 2) 初始化 Redis。
	// 握手时校验登录会话与在线状态都依赖 Redis，不可用时服务仍可启动（退化为仅 JWT 校验）。
	redisClient, err := pkgredis.Build(cfg.Redis)
	if err != nil {
		logger.Warn(ctx, "Connect 服务 Redis 初始化失败，降级为无 Redis 模式",
			logger.ErrorField("error", err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Connect 服务 Redis 初始化成功",
			logger.String("addr", cfg.Redis.Addr),
		)
	}

	// 3) 组装核心依赖：
	// - manager:  连接注册/注销与房间索引
	// - svc:      鉴权、房间解析、在线状态
	// - handler:  Gin /ws 入口
	// - consumer: 房间事件 -> 房间广播
	connManager := manager.NewConnectionManager()
	connectSvc := svc.NewConnectService(redisClient)
	wsHandler := handler.NewWSHandler(connManager, connectSvc, cfg.Connect.AllowedOrigins)

	roomConsumer := consumer.NewRoomConsumer(cfg.Kafka, connManager, kafka.NewZapLoggerAdapter(logger.L()))
	go func() {
		logger.Info(ctx, "房间事件消费者启动中",
			logger.String("topic", cfg.Kafka.RoomEventTopic),
		)
		if err := roomConsumer.Start(ctx); err != nil {
			logger.Error(ctx, "房间事件消费者运行错误", logger.ErrorField("error", err))
		}
	}()

	// 4) 后台启动 HTTP 监听
	srv := server.New(cfg.Connect, wsHandler)
	go func() {
		logger.Info(ctx, "Connect 服务启动中",
			logger.String("addr", cfg.Connect.Addr),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Connect 服务启动失败",
				logger.ErrorField("error", err),
			)
		}
	}()

	// 5) 阻塞等待系统退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 6) 优雅关闭：先停消费，再断开所有连接，最后关闭 HTTP 服务
	logger.Info(ctx, "Connect 服务开始优雅停机")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Connect.ShutdownTimeout)
	defer shutdownCancel()

	cancel()
	if err := roomConsumer.Close(); err != nil {
		logger.Warn(ctx, "关闭房间事件消费者失败", logger.ErrorField("error", err))
	}
	connManager.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Connect 服务优雅停机失败",
			logger.ErrorField("error", err),
		)
		return
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info(ctx, "Connect 服务已退出")
}
