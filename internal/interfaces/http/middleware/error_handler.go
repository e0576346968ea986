package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 에러 페이지 메시지
const (
	ErrorPageTitle   = "Something went wrong!"
	MsgTryAgainLater = "Please try again later!"
	MsgBodyTooLarge  = "Request body too large"
)

// ErrorView는 에러 페이지 템플릿 이름입니다
const ErrorView = "error.html"

// APIPrefix로 시작하는 경로는 JSON으로 렌더링됩니다
const APIPrefix = "/api"

// ErrorHandlerConfig는 에러 렌더링 설정입니다
type ErrorHandlerConfig struct {
	// Production이면 내부 에러 상세를 숨깁니다
	Production bool
	// Pages가 false이면 페이지 요청도 JSON으로 렌더링합니다 (HTML 렌더러 미설정 시)
	Pages bool
}

// ErrorHandler는 핸들러가 c.Error로 넘긴 에러를 분류하고 렌더링합니다
// Recovery보다 앞에 등록되어야 패닉도 같은 경로로 렌더링됩니다
func ErrorHandler(cfg ErrorHandlerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := Normalize(err)
		logError(c, appErr)

		if c.Writer.Written() {
			return
		}
		render(c, cfg, appErr)
	}
}

// Normalize는 임의의 에러를 AppError로 분류합니다
// 이미 분류된 에러는 그대로 반환하고 알 수 없는 에러는 internal입니다
func Normalize(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.Validation(MsgBodyTooLarge).WithCause(err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		var decoded *apperrors.AppError
		if errors.As(validation.DecodeError(err), &decoded) {
			return decoded
		}
	}

	return apperrors.Internal(err)
}

func logError(c *gin.Context, appErr *apperrors.AppError) {
	ctx := c.Request.Context()
	fields := []zap.Field{
		logger.HTTPMethod(c.Request.Method),
		logger.HTTPPath(c.Request.URL.Path),
		logger.HTTPStatus(appErr.HTTPStatus),
		logger.ErrorKind(string(appErr.Kind)),
		logger.ErrorMessage(appErr.Message),
	}

	if !appErr.IsOperational() {
		fields = append(fields, zap.Error(appErr), logger.ErrorStack(stackOf(c, appErr)))
		logger.Error(ctx, "unexpected error", fields...)
		return
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", append(fields, zap.Error(appErr))...)
		return
	}
	logger.Debug(ctx, "request rejected", fields...)
}

func render(c *gin.Context, cfg ErrorHandlerConfig, appErr *apperrors.AppError) {
	api := strings.HasPrefix(c.Request.URL.Path, APIPrefix) || !cfg.Pages
	status := appErr.HTTPStatus

	switch {
	case !cfg.Production && api:
		body := gin.H{
			"status": appErr.Status(),
			"error": gin.H{
				"kind":    appErr.Kind,
				"message": appErr.Message,
				"cause":   causeOf(appErr),
			},
			"message": appErr.Message,
			"stack":   stackOf(c, appErr),
		}
		if len(appErr.Fields) > 0 {
			body["error"].(gin.H)["fields"] = appErr.Fields
		}
		c.JSON(status, body)

	case !cfg.Production:
		c.HTML(status, ErrorView, gin.H{"title": ErrorPageTitle, "msg": appErr.Message})

	case api && appErr.IsOperational():
		c.JSON(status, gin.H{"status": appErr.Status(), "message": appErr.Message})

	case api:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": apperrors.MsgGeneric})

	case appErr.IsOperational():
		c.HTML(status, ErrorView, gin.H{"title": ErrorPageTitle, "msg": appErr.Message})

	default:
		c.HTML(status, ErrorView, gin.H{"title": ErrorPageTitle, "msg": MsgTryAgainLater})
	}
}

func causeOf(appErr *apperrors.AppError) string {
	if appErr.Err == nil {
		return ""
	}
	return appErr.Err.Error()
}

// stackOf는 패닉 스택이 있으면 반환하고 없으면 에러 체인을 반환합니다
func stackOf(c *gin.Context, appErr *apperrors.AppError) string {
	if stack := c.GetString(stackKey); stack != "" {
		return stack
	}

	var b strings.Builder
	var err error = appErr
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%T: %v", err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}

// NotFound는 매칭되지 않은 경로에 대한 404 에러를 넘깁니다
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound(fmt.Sprintf("Can't find %s on this server.", c.Request.URL.RequestURI())))
	}
}
