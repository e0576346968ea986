package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker는 의존성 상태 확인 함수입니다
type Checker func(ctx context.Context) error

// Dependency는 헬스체크 대상 의존성입니다
// Critical이 아닌 의존성 실패는 degraded로 보고됩니다
type Dependency struct {
	Name     string
	Check    Checker
	Critical bool
}

// HealthHandler는 헬스체크 핸들러입니다
type HealthHandler struct {
	version      string
	dependencies []Dependency
	timeout      time.Duration
}

// NewHealthHandler는 새로운 HealthHandler를 생성합니다
func NewHealthHandler(version string, dependencies ...Dependency) *HealthHandler {
	return &HealthHandler{
		version:      version,
		dependencies: dependencies,
		timeout:      3 * time.Second,
	}
}

// HealthResponse는 헬스체크 응답입니다
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck는 개별 의존성 체크 결과입니다
type HealthCheck struct {
	Status   string  `json:"status"` // "healthy", "unhealthy"
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// Health godoc
// @Summary      Health check
// @Description  Check the health status of the service and its dependencies
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response := h.Check(c.Request.Context())

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// Ready godoc
// @Summary      Readiness check
// @Description  Check if the service is ready to accept traffic (Kubernetes readiness probe)
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if name, err := h.ReadyCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": name + " check failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// Check는 모든 의존성을 확인합니다
func (h *HealthHandler) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    make(map[string]HealthCheck, len(h.dependencies)),
	}

	for _, dep := range h.dependencies {
		start := time.Now()
		err := h.run(ctx, dep)
		check := HealthCheck{
			Status:   "healthy",
			Duration: float64(time.Since(start).Milliseconds()),
		}
		if err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
			if dep.Critical {
				response.Status = "unhealthy"
			} else if response.Status == "healthy" {
				response.Status = "degraded"
			}
		}
		response.Checks[dep.Name] = check
	}

	return response
}

// ReadyCheck는 핵심 의존성만 확인하고 실패한 의존성 이름을 반환합니다
func (h *HealthHandler) ReadyCheck(ctx context.Context) (string, error) {
	for _, dep := range h.dependencies {
		if !dep.Critical {
			continue
		}
		if err := h.run(ctx, dep); err != nil {
			return dep.Name, err
		}
	}
	return "", nil
}

func (h *HealthHandler) run(ctx context.Context, dep Dependency) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return dep.Check(ctx)
}
