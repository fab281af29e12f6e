package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"DateServer/consts"
	rediskey "DateServer/consts/redisKey"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ==================== Redis 令牌桶 Lua 脚本 ====================

// luaTokenBucketRedis Redis 令牌桶 Lua 脚本
// 功能：原子性地更新令牌桶并判断是否允许通过
// 参数：
//
//	KEYS[1]: 限流 key (如: rate:limit:ip:{ip})
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 每次请求消耗的令牌数
//
// 返回值：1 允许通过，0 令牌不足
const luaTokenBucketRedis = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

-- 补充令牌: (时间差ms * 速率) / 1000，保留小数
local time_diff = math.max(0, now - last_time)
current_tokens = math.min(capacity, current_tokens + (time_diff * rate) / 1000)
last_time = now

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', tostring(current_tokens), 'last_time', last_time)

-- 过期时间：桶填满所需时间 * 2，至少 60 秒
local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// redisCheckTimeout Redis 限流检查的独立超时，防止 Redis 响应慢拖慢请求
const redisCheckTimeout = 50 * time.Millisecond

// localLimiterSize 本地兜底限流器最多跟踪的 key 数量
const localLimiterSize = 10000

// ==================== 限流器 ====================

// RateLimiter IP 级别令牌桶限流器。
// 优先使用 Redis（多实例共享配额），Redis 未启用或出错时退回进程内 x/time/rate 令牌桶。
type RateLimiter struct {
	mu          sync.RWMutex
	redisClient *redis.Client
	rate        float64 // 每秒产生的令牌数
	burst       int     // 令牌桶容量
	now         func() time.Time

	local   *expirable.LRU[string, *rate.Limiter]
	localMu sync.Mutex
}

// NewRateLimiter 创建限流器，redisClient 可以为 nil
func NewRateLimiter(redisClient *redis.Client, r float64, burst int) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		rate:        r,
		burst:       burst,
		now:         time.Now,
		local:       expirable.NewLRU[string, *rate.Limiter](localLimiterSize, nil, 30*time.Minute),
	}
}

func (l *RateLimiter) client() *redis.Client {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.redisClient
}

// Allow 检查 key 是否还有令牌
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	client := l.client()
	if client == nil {
		return l.allowLocal(key)
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisCheckTimeout)
	defer cancel()

	res, err := client.Eval(redisCtx, luaTokenBucketRedis, []string{key}, l.now().UnixMilli(), l.burst, l.rate, 1).Result()
	if err != nil {
		logger.Warn(ctx, "Redis 限流检查失败，使用本地限流",
			logger.String("key", key),
			logger.ErrorField("error", err),
		)
		return l.allowLocal(key)
	}
	allowed, ok := res.(int64)
	if !ok {
		logger.Warn(ctx, "Redis 限流返回值类型错误，使用本地限流",
			logger.String("key", key),
			logger.Any("result", res),
		)
		return l.allowLocal(key)
	}
	return allowed == 1
}

// allowLocal 进程内令牌桶
func (l *RateLimiter) allowLocal(key string) bool {
	l.localMu.Lock()
	lim, ok := l.local.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rate), l.burst)
		l.local.Add(key, lim)
	}
	l.localMu.Unlock()
	return lim.AllowN(l.now(), 1)
}

// IsBlacklisted 检查 IP 是否在黑名单 Set 中，Redis 不可用时视为不在黑名单
func (l *RateLimiter) IsBlacklisted(ctx context.Context, blacklistKey, ip string) bool {
	client := l.client()
	if client == nil || blacklistKey == "" {
		return false
	}
	redisCtx, cancel := context.WithTimeout(ctx, redisCheckTimeout)
	defer cancel()

	exists, err := client.SIsMember(redisCtx, blacklistKey, ip).Result()
	if err != nil {
		logger.Warn(ctx, "Redis 黑名单检查失败，降级放行",
			logger.String("ip", ip),
			logger.ErrorField("error", err),
		)
		return false
	}
	return exists
}

// ==================== IP 限流中间件 ====================

// IPRateLimitMiddleware IP 级别限流中间件：黑名单检查 + 令牌桶
func IPRateLimitMiddleware(limiter *RateLimiter, blacklistKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxmeta.FromGin(c)

		// 1. 获取客户端 IP
		ip, ok := GetClientIPSafe(c)
		if !ok {
			logger.Warn(ctx, "无法获取客户端 IP，跳过限流检查",
				logger.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		// 2. 检查 IP 黑名单
		if limiter.IsBlacklisted(ctx, blacklistKey, ip) {
			logger.Warn(ctx, "IP 在黑名单中，拒绝访问",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
			)
			result.AbortWithCode(c, http.StatusForbidden, consts.CodePermissionDeny)
			return
		}

		// 3. 令牌桶
		if !limiter.Allow(ctx, rediskey.GatewayIPRateLimitKey(ip)) {
			logger.Warn(ctx, "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.AbortWithCode(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}

		c.Next()
	}
}

// UserRateLimitMiddleware 基于用户 ID 的限流中间件，需在 JWTAuthMiddleware 之后使用
func UserRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}
		if !limiter.Allow(ctxmeta.FromGin(c), rediskey.GatewayUserRateLimitKey(userID)) {
			logger.Warn(ctxmeta.FromGin(c), "用户请求被限流",
				logger.String("user_id", userID),
				logger.String("path", c.Request.URL.Path),
			)
			result.AbortWithCode(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
