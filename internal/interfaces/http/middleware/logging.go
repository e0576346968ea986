package middleware

import (
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logging은 HTTP 요청/응답을 로깅합니다
// 요청 본문은 기록하지 않습니다 (비밀번호, 업로드 파일)
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		// 인증 미들웨어가 추가한 user_id가 포함되도록 요청 처리 후의 컨텍스트를 사용합니다
		ctx := c.Request.Context()
		fields := []zap.Field{
			logger.HTTPMethod(c.Request.Method),
			logger.HTTPPath(path),
			logger.HTTPStatus(statusCode),
			logger.RemoteAddr(c.ClientIP()),
			logger.Duration(duration),
			logger.DurationMs(duration),
			zap.Int("response_size", c.Writer.Size()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		logLevel := logger.Info
		if statusCode >= 500 {
			logLevel = logger.Error
		} else if statusCode >= 400 {
			logLevel = logger.Warn
		}
		logLevel(ctx, "request completed", fields...)
	}
}
