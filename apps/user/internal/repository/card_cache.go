package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"DateServer/apps/user/mq"
	rediskey "DateServer/consts/redisKey"
	"DateServer/model"
	"DateServer/pkg/async"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	// localCardSize 进程内名片缓存容量
	localCardSize = 4096
	// localCardTTL 进程内缓存时间，远小于 Redis TTL，多实例间不一致窗口有限
	localCardTTL = 30 * time.Second
	// emptyPlaceholder 空值占位，防止缓存穿透
	emptyPlaceholder = "{}"
)

// cardCacheImpl 用户名片多级缓存实现
type cardCacheImpl struct {
	local       *expirable.LRU[string, *model.UserCard]
	redisClient *redis.Client
	users       IUserRepository
}

// NewCardCache 创建名片缓存，redisClient 为 nil 时只使用进程内缓存
func NewCardCache(users IUserRepository, redisClient *redis.Client) ICardCache {
	return &cardCacheImpl{
		local:       expirable.NewLRU[string, *model.UserCard](localCardSize, nil, localCardTTL),
		redisClient: redisClient,
		users:       users,
	}
}

// Get 获取用户名片
func (c *cardCacheImpl) Get(ctx context.Context, userID string) (*model.UserCard, error) {
	// ==================== 1. 进程内缓存 ====================
	if card, ok := c.local.Get(userID); ok {
		return card, nil
	}

	// ==================== 2. Redis 缓存 ====================
	cacheKey := rediskey.UserCardKey(userID)
	if c.redisClient != nil {
		cached, err := c.redisClient.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && cached == emptyPlaceholder:
			return nil, ErrRecordNotFound
		case err == nil:
			var card model.UserCard
			if jsonErr := json.Unmarshal([]byte(cached), &card); jsonErr == nil {
				c.local.Add(userID, &card)
				return &card, nil
			}
		case !errors.Is(err, redis.Nil):
			LogRedisError(ctx, err) // 记录日志 降级处理
		}
	}

	// ==================== 3. 回源 Mongo ====================
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.fill(ctx, cacheKey, emptyPlaceholder, rediskey.UserCardEmptyTTL)
		}
		return nil, err
	}

	card := user.Card()
	c.local.Add(userID, card)
	if data, err := json.Marshal(card); err == nil {
		c.fill(ctx, cacheKey, string(data), rediskey.UserCardTTL)
	}
	return card, nil
}

// fill 异步回填 Redis，随机过期时间防止缓存雪崩
func (c *cardCacheImpl) fill(ctx context.Context, key, value string, ttl time.Duration) {
	if c.redisClient == nil {
		return
	}
	ttl = getRandomExpireTime(ttl)
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := c.redisClient.Set(runCtx, key, value, ttl).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// Invalidate 失效名片缓存
func (c *cardCacheImpl) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		c.local.Remove(id)
		keys = append(keys, rediskey.UserCardKey(id))
	}
	if c.redisClient == nil {
		return
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		LogAndRetryRedisError(ctx, mq.BuildDelTask(keys...).WithSource("card-cache"), err)
	}
}
