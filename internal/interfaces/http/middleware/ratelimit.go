package middleware

import (
	"strconv"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit는 IP 기반 고정 윈도우 rate limiting 미들웨어입니다
// 저장소 오류 시에는 요청을 허용합니다 (fail open)
func RateLimit(limiter repository.RateLimiter, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		allowed, remaining, err := limiter.Allow(ctx, clientIP, limit, window)
		if err != nil {
			logger.Error(ctx, "rate limit check failed",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			logger.Warn(ctx, "rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.Int64("limit", limit),
				zap.Duration("window", window),
			)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			_ = c.Error(apperrors.RateLimited(apperrors.MsgTooManyRequests))
			c.Abort()
			return
		}

		c.Next()
	}
}
