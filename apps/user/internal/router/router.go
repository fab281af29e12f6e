package router

import (
	"net/http"

	"DateServer/apps/user/internal/handler"
	"DateServer/apps/user/internal/middleware"
	"DateServer/config"
	"DateServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 路由依赖（依赖注入）
type Deps struct {
	Server    config.ServerConfig
	RateLimit config.RateLimitConfig

	// Limiter 为空时不启用限流
	Limiter       *middleware.RateLimiter
	Authenticator middleware.Authenticator

	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Match   *handler.MatchHandler
	Message *handler.MessageHandler
}

// InitRouter 初始化路由
func InitRouter(d Deps) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 客户端 IP 中间件
	r.Use(middleware.ClientIPMiddleware())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware(d.Server.AllowedOrigins))

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	if d.Limiter != nil {
		api.Use(middleware.IPRateLimitMiddleware(d.Limiter, d.RateLimit.BlacklistKey))
	}
	if d.Server.RequestTimeout > 0 {
		api.Use(middleware.TimeoutMiddleware(d.Server.RequestTimeout))
	}

	jwtAuth := middleware.JWTAuthMiddleware(d.Authenticator)

	// 认证接口
	auth := api.Group("/auth")
	{
		// 公开接口
		auth.POST("/signup", d.Auth.Signup)
		auth.POST("/verify-otp", d.Auth.VerifyOtp)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/forgot-password", d.Auth.ForgotPassword)
		auth.POST("/reset-password", d.Auth.ResetPassword)
		auth.DELETE("/delete-user", d.Auth.DeleteAccount)

		// 需要登录
		auth.GET("/logout", jwtAuth, d.Auth.Logout)
		auth.PUT("/update-profile", jwtAuth, d.Profile.UpdateProfile)
	}

	// 需要认证的接口
	authed := api.Group("")
	authed.Use(jwtAuth)
	if d.Limiter != nil {
		authed.Use(middleware.UserRateLimitMiddleware(d.Limiter))
	}
	{
		user := authed.Group("/user")
		user.GET("/me", d.Profile.GetMe)
		user.PUT("/details", d.Profile.UpdateDetails)
		user.PUT("/shows", d.Profile.UpdateShows)
		user.POST("/poster", d.Profile.UploadPoster)
		user.GET("/:id/card", d.Profile.GetCard)

		authed.GET("/discover", d.Match.Discover)
		authed.POST("/like/:id", d.Match.Like)
		authed.GET("/matches", d.Match.ListMatches)
		authed.GET("/likes", d.Match.ListLikes)

		authed.POST("/messages", d.Message.Send)
		authed.GET("/messages/:senderId/:receiverId", d.Message.GetConversation)
	}

	return r
}
