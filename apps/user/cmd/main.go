package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"DateServer/apps/user/internal/handler"
	"DateServer/apps/user/internal/middleware"
	"DateServer/apps/user/internal/repository"
	"DateServer/apps/user/internal/router"
	"DateServer/apps/user/internal/service"
	"DateServer/apps/user/mq"
	"DateServer/config"
	"DateServer/pkg/async"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/kafka"
	"DateServer/pkg/logger"
	"DateServer/pkg/mail"
	pkgminio "DateServer/pkg/minio"
	pkgmongo "DateServer/pkg/mongo"
	pkgredis "DateServer/pkg/redis"
	"DateServer/pkg/scheduler"
	"DateServer/pkg/util"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, cancel := context.WithCancel(ctxmeta.WithTraceID(context.Background(), "0"))
	defer cancel()

	cfg := config.Load()

	// 1. 初始化日志
	cfg.Logger.Service = "user"
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer func() {
		_ = zl.Sync()
	}()

	// 2. 初始化协程池与小组件
	if err := async.Init(cfg.Async); err != nil {
		log.Fatalf("初始化协程池失败: %v", err)
	}
	util.InitSnowflake(cfg.NodeID)
	util.InitJWT(cfg.JWT)

	// 3. 初始化 MongoDB
	db, err := pkgmongo.Build(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("初始化MongoDB失败: %v", err)
	}
	pkgmongo.ReplaceGlobal(db)

	// 4. 初始化Redis
	redisClient, err := pkgredis.Build(cfg.Redis)
	if err != nil {
		// Redis 初始化失败不阻塞启动（验证码、会话、缓存能力降级）
		logger.Warn(ctx, "Redis 初始化失败，将降级到 Mongo-Only 模式",
			logger.ErrorField("error", err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis 初始化成功",
			logger.String("addr", cfg.Redis.Addr),
		)
	}

	// 5. 初始化 Kafka
	// 房间事件生产者始终启用；Redis 重试链路仅在 Redis 可用时启动
	roomProducer := kafka.NewProducerWithConfig(cfg.Kafka, cfg.Kafka.RoomEventTopic)
	roomPublisher := mq.NewKafkaRoomPublisher(roomProducer)
	logger.Info(ctx, "房间事件生产者初始化成功",
		logger.Strings("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.RoomEventTopic),
	)

	var retryProducer *kafka.Producer
	var redisConsumer *mq.RedisRetryConsumer
	if redisClient != nil {
		retryProducer = kafka.NewProducerWithConfig(cfg.Kafka, cfg.Kafka.RedisRetryTopic)
		mq.SetGlobalProducer(retryProducer)

		redisConsumer = mq.NewRedisRetryConsumer(cfg.Kafka, redisClient, retryProducer, kafka.NewZapLoggerAdapter(logger.L()))
		go func() {
			logger.Info(ctx, "Redis 重试消费者启动中",
				logger.String("topic", cfg.Kafka.RedisRetryTopic),
				logger.String("group_id", cfg.Kafka.ConsumerConfig.GroupID),
			)
			if err := redisConsumer.Start(ctx); err != nil {
				logger.Error(ctx, "Redis 重试消费者运行错误", logger.ErrorField("error", err))
			}
		}()
	}

	// 6. 初始化 MinIO（可选，未配置时海报上传不可用）
	var uploader service.Uploader
	minioClient, err := pkgminio.Build(cfg.MinIO)
	if err != nil {
		logger.Warn(ctx, "MinIO 初始化失败，海报上传不可用",
			logger.ErrorField("error", err),
		)
	} else {
		pkgminio.ReplaceGlobal(minioClient)
		uploader = minioClient
	}

	// 7. 初始化邮件发送
	mailer, err := mail.NewSMTPSender(cfg.Mail)
	if err != nil {
		log.Fatalf("初始化邮件发送失败: %v", err)
	}

	// 8. 组装依赖 - Repository 层
	userRepo := repository.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("创建索引失败: %v", err)
	}
	authRepo := repository.NewAuthRepository(redisClient)
	cardCache := repository.NewCardCache(userRepo, redisClient)

	// 9. 组装依赖 - Service 层
	sched := scheduler.New(scheduler.RealClock(), scheduler.WithRunner(scheduler.AsyncRunner(cfg.Match.CheckTimeout)))
	tracker := service.NewWindowTracker(userRepo, sched, cfg.Match.MessageWindow)

	authService := service.NewAuthService(userRepo, authRepo, cardCache, sched, tracker, mailer, cfg.Match, cfg.JWT)
	profileService := service.NewProfileService(userRepo, cardCache, uploader)
	discoverService := service.NewDiscoverService(userRepo)
	matchService := service.NewMatchService(userRepo, tracker)
	messageService := service.NewMessageService(userRepo, roomPublisher, sched.Clock())

	// 10. 组装依赖 - Handler 与路由
	gin.SetMode(cfg.Server.Mode)
	r := router.InitRouter(router.Deps{
		Server:        cfg.Server,
		RateLimit:     cfg.RateLimit,
		Limiter:       middleware.NewRateLimiter(redisClient, cfg.RateLimit.Rate, cfg.RateLimit.Burst),
		Authenticator: authService,
		Auth:          handler.NewAuthHandler(authService),
		Profile:       handler.NewProfileHandler(profileService),
		Match:         handler.NewMatchHandler(discoverService, matchService),
		Message:       handler.NewMessageHandler(messageService),
	})

	srv := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	// 11. 启动服务器
	go func() {
		logger.Info(ctx, "User 服务启动中",
			logger.String("address", cfg.Server.Addr),
			logger.Duration("message_window", cfg.Match.MessageWindow),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "服务器启动失败", logger.ErrorField("error", err))
			os.Exit(1)
		}
	}()

	// 12. 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(ctx, "收到关闭信号，开始优雅停机...",
		logger.String("signal", sig.String()),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "服务器强制关闭", logger.ErrorField("error", err))
	}

	// 未触发的消息窗口与未验证账号清理随进程退出丢弃
	dropped := sched.Stop()
	logger.Info(ctx, "调度任务已停止", logger.Int("dropped", dropped))

	cancel()
	if redisConsumer != nil {
		if err := redisConsumer.Close(); err != nil {
			logger.Error(ctx, "关闭 Redis 重试消费者失败", logger.ErrorField("error", err))
		}
	}
	if retryProducer != nil {
		if err := retryProducer.Close(); err != nil {
			logger.Error(ctx, "关闭 Kafka Producer 失败", logger.ErrorField("error", err))
		}
	}
	if err := roomProducer.Close(); err != nil {
		logger.Error(ctx, "关闭房间事件生产者失败", logger.ErrorField("error", err))
	}
	if err := async.Release(); err != nil {
		logger.Warn(ctx, "协程池释放超时", logger.ErrorField("error", err))
	}
	if err := pkgmongo.Close(shutdownCtx, db); err != nil {
		logger.Error(ctx, "关闭 MongoDB 失败", logger.ErrorField("error", err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info(ctx, "User 服务已优雅退出")
}
