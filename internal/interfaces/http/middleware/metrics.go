package middleware

import (
	"strconv"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics는 Prometheus HTTP 메트릭을 수집합니다
// endpoint 라벨은 라우트 패턴이며 매칭되지 않은 경로는 "unmatched"입니다
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		requestSize := 0
		if c.Request.ContentLength > 0 {
			requestSize = int(c.Request.ContentLength)
		}

		m.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			requestSize,
			c.Writer.Size(),
		)
	}
}
