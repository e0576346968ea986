package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/pkg/circuitbreaker"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/retry"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MsgUnavailable은 circuit이 열린 동안 반환되는 메시지입니다
const MsgUnavailable = "Service temporarily unavailable, Please try again later"

// WriteOp는 쓰기 작업 종류입니다
type WriteOp string

const (
	OpCreate WriteOp = "create"
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// AfterWrite는 쓰기 성공 후 실행되는 명시적 후처리 단계입니다
// 에러는 호출자에게 전파됩니다
type AfterWrite[T entity.Entity] func(ctx context.Context, op WriteOp, doc T) error

// ResourceUseCase는 리소스 하나에 대한 제네릭 CRUD 유즈케이스입니다
type ResourceUseCase[T entity.Entity] struct {
	name       string
	repo       repository.ResourceRepository[T]
	newDoc     func() T
	afterWrite AfterWrite[T]
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	now        func() time.Time
}

// ResourceOption은 ResourceUseCase 옵션입니다
type ResourceOption[T entity.Entity] func(*ResourceUseCase[T])

// WithAfterWrite는 쓰기 후처리 단계를 설정합니다
func WithAfterWrite[T entity.Entity](fn AfterWrite[T]) ResourceOption[T] {
	return func(uc *ResourceUseCase[T]) {
		uc.afterWrite = fn
	}
}

// WithRetryConfig는 재시도 설정을 덮어씁니다
func WithRetryConfig[T entity.Entity](cfg retry.Config) ResourceOption[T] {
	return func(uc *ResourceUseCase[T]) {
		uc.retryCfg = cfg
	}
}

// WithClock은 시각 함수를 설정합니다 (테스트용)
func WithClock[T entity.Entity](now func() time.Time) ResourceOption[T] {
	return func(uc *ResourceUseCase[T]) {
		uc.now = now
	}
}

// NewResourceUseCase는 새로운 ResourceUseCase를 생성합니다
func NewResourceUseCase[T entity.Entity](name string, repo repository.ResourceRepository[T], newDoc func() T, opts ...ResourceOption[T]) *ResourceUseCase[T] {
	uc := &ResourceUseCase[T]{
		name:     name,
		repo:     repo,
		newDoc:   newDoc,
		breaker:  newBreaker(name + "_usecase"),
		retryCfg: retry.DefaultConfig(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// newBreaker는 유즈케이스용 circuit breaker를 생성합니다
func newBreaker(name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from circuitbreaker.State, to circuitbreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				zap.String("name", name),
				logger.CircuitState(to.String()),
				zap.String("from", from.String()),
			)
		},
	})
}

// isFailure는 circuit breaker에 집계할 에러인지 판단합니다
// 사용자 에러(validation, not found 등)는 저장소 장애가 아닙니다
func isFailure(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindInternal
}

// guard는 저장소 호출을 circuit breaker로 감쌉니다
// 쓰기는 멱등이 아니므로 재시도하지 않습니다
func guard[R any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func(ctx context.Context) (R, error)) (R, error) {
	result, err := circuitbreaker.Run(ctx, cb, isFailure, fn)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return result, apperrors.Unavailable(MsgUnavailable, err).WithStatus(http.StatusServiceUnavailable)
	}
	return result, err
}

// guardRead는 조회 호출을 circuit breaker와 재시도로 감쌉니다
func guardRead[R any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, cfg retry.Config, fn func(ctx context.Context) (R, error)) (R, error) {
	return guard(ctx, cb, func(ctx context.Context) (R, error) {
		return retry.DoWithValue(ctx, cfg, fn)
	})
}

// exec는 반환값이 없는 쓰기 호출을 guard로 한 번 실행합니다
func exec(ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func(ctx context.Context) error) error {
	_, err := guard(ctx, cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (uc *ResourceUseCase[T]) span(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := tracing.StartSpan(ctx, "ResourceUseCase."+op)
	tracing.SetAttributes(ctx, attribute.String("resource", uc.name))
	return ctx, func(errp *error) {
		if *errp != nil {
			tracing.RecordError(ctx, *errp)
		}
		span.End()
	}
}

// Create는 문서를 검증하여 저장합니다
func (uc *ResourceUseCase[T]) Create(ctx context.Context, doc T) (err error) {
	ctx, end := uc.span(ctx, "Create")
	defer end(&err)

	doc.Prepare(true, uc.now())
	if err := doc.Validate(); err != nil {
		return err
	}

	if err := exec(ctx, uc.breaker, func(ctx context.Context) error {
		return uc.repo.Create(ctx, doc)
	}); err != nil {
		return err
	}

	logger.Info(ctx, "document created",
		logger.Collection(uc.name),
		logger.DocumentID(doc.GetID().Hex()),
	)
	return uc.after(ctx, OpCreate, doc)
}

// Get은 ID로 문서를 조회합니다
func (uc *ResourceUseCase[T]) Get(ctx context.Context, id string, expand ...string) (doc T, err error) {
	ctx, end := uc.span(ctx, "Get")
	defer end(&err)
	tracing.SetAttributes(ctx, attribute.String("id", id))

	return guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) (T, error) {
		return uc.repo.FindByID(ctx, id, expand...)
	})
}

// List는 조회 명세로 문서 목록을 조회합니다
func (uc *ResourceUseCase[T]) List(ctx context.Context, spec *query.Spec) (docs []T, err error) {
	ctx, end := uc.span(ctx, "List")
	defer end(&err)
	if spec != nil {
		tracing.SetAttributes(ctx,
			attribute.Int("page", spec.Page),
			attribute.Int("limit", spec.Limit),
		)
	}

	return guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) ([]T, error) {
		return uc.repo.Find(ctx, spec)
	})
}

// Update는 저장된 문서에 JSON 패치를 병합하고 재검증하여 저장합니다
// 저장 시 버전이 다르면 conflict 에러입니다
func (uc *ResourceUseCase[T]) Update(ctx context.Context, id string, patch []byte) (doc T, err error) {
	ctx, end := uc.span(ctx, "Update")
	defer end(&err)
	tracing.SetAttributes(ctx, attribute.String("id", id))

	doc, err = uc.Get(ctx, id)
	if err != nil {
		return doc, err
	}

	if err := uc.Apply(ctx, doc, patch); err != nil {
		return doc, err
	}
	return doc, nil
}

// Apply는 이미 조회된 문서에 패치를 병합하여 저장합니다
func (uc *ResourceUseCase[T]) Apply(ctx context.Context, doc T, patch []byte) error {
	oid, version := doc.GetID(), doc.GetVersion()
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, doc); err != nil {
			return validation.DecodeError(err)
		}
	}
	doc.SetID(oid)
	doc.SetVersion(version)

	return uc.Save(ctx, doc)
}

// Save는 변경된 문서를 재검증하여 저장하고 후처리를 실행합니다
func (uc *ResourceUseCase[T]) Save(ctx context.Context, doc T) error {
	doc.Prepare(false, uc.now())
	if err := doc.Validate(); err != nil {
		return err
	}

	if err := exec(ctx, uc.breaker, func(ctx context.Context) error {
		return uc.repo.Update(ctx, doc)
	}); err != nil {
		return err
	}

	logger.Info(ctx, "document updated",
		logger.Collection(uc.name),
		logger.DocumentID(doc.GetID().Hex()),
		zap.Int("version", doc.GetVersion()),
	)
	return uc.after(ctx, OpUpdate, doc)
}

// Delete는 문서를 삭제합니다
func (uc *ResourceUseCase[T]) Delete(ctx context.Context, id string) (err error) {
	ctx, end := uc.span(ctx, "Delete")
	defer end(&err)
	tracing.SetAttributes(ctx, attribute.String("id", id))

	doc, err := guard(ctx, uc.breaker, func(ctx context.Context) (T, error) {
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document deleted",
		logger.Collection(uc.name),
		logger.DocumentID(id),
	)
	return uc.after(ctx, OpDelete, doc)
}

// New는 빈 문서를 생성합니다
func (uc *ResourceUseCase[T]) New() T {
	return uc.newDoc()
}

// Name은 리소스 이름을 반환합니다
func (uc *ResourceUseCase[T]) Name() string {
	return uc.name
}

func (uc *ResourceUseCase[T]) after(ctx context.Context, op WriteOp, doc T) error {
	if uc.afterWrite == nil {
		return nil
	}
	return uc.afterWrite(ctx, op, doc)
}
