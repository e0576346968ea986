package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockService는 ResourceService의 testify mock입니다
type MockService[T entity.Entity] struct {
	mock.Mock
	newFn func() T
}

func (m *MockService[T]) Create(ctx context.Context, doc T) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockService[T]) Get(ctx context.Context, id string, expand ...string) (T, error) {
	args := m.Called(ctx, id, expand)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockService[T]) List(ctx context.Context, spec *query.Spec) ([]T, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockService[T]) Update(ctx context.Context, id string, patch []byte) (T, error) {
	args := m.Called(ctx, id, patch)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockService[T]) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService[T]) New() T {
	return m.newFn()
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{Production: true}))
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// asUser는 Protect 대신 사용자를 주입하는 테스트 미들웨어입니다
func asUser(user *entity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, user)
		c.Next()
	}
}
