package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// fixedWindow는 첫 요청에 윈도우 만료를 설정하는 고정 윈도우 카운터입니다
// 반환값은 {허용 여부, 남은 요청 수}입니다
var fixedWindow = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local current = tonumber(redis.call('GET', key) or "0")

	if current < limit then
		current = redis.call('INCR', key)
		if current == 1 then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - current}
	end
	return {0, 0}
`)

// RateLimiter는 Redis 기반 고정 윈도우 요청 제한기입니다
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
}

var _ repository.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter는 새로운 요청 제한기를 생성합니다
func NewRateLimiter(client redis.UniversalClient, prefix string) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix}
}

// Allow는 요청을 허용할지 확인합니다
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	fullKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	seconds := int64(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	result, err := fixedWindow.Run(ctx, rl.client, []string{fullKey}, limit, seconds).Int64Slice()
	if err != nil {
		logger.LogError(ctx, err, "rate limit check failed", logger.CacheKey(fullKey))
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result[0] == 1
	if !allowed {
		logger.Debug(ctx, "rate limit exceeded",
			logger.CacheKey(fullKey),
			logger.Field("limit", limit),
		)
	}
	return allowed, result[1], nil
}

// Reset은 key의 요청 수를 초기화합니다
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, fmt.Sprintf("%s:%s", rl.prefix, key)).Err()
}
