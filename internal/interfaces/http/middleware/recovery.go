package middleware

import (
	"fmt"
	"runtime/debug"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stackKey는 패닉 스택을 에러 렌더러에 전달하는 키입니다
const stackKey = "panic_stack"

// Recovery는 패닉을 복구하여 internal 에러로 에러 파이프라인에 넘깁니다
// ErrorHandler 뒤에 등록되어야 합니다
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())

				logger.Error(c.Request.Context(), "panic recovered",
					logger.HTTPMethod(c.Request.Method),
					logger.HTTPPath(c.Request.URL.Path),
					logger.RemoteAddr(c.ClientIP()),
					zap.Any("panic", rec),
					logger.ErrorStack(stack),
				)

				c.Set(stackKey, stack)
				_ = c.Error(apperrors.Internal(fmt.Errorf("panic: %v", rec)))
				c.Abort()
			}
		}()

		c.Next()
	}
}
