package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MsgDocumentCreated는 생성 성공 메시지입니다
const MsgDocumentCreated = "Document created successfully"

// ResourceService는 팩토리 핸들러가 사용하는 리소스 CRUD 계약입니다
type ResourceService[T entity.Entity] interface {
	Create(ctx context.Context, doc T) error
	Get(ctx context.Context, id string, expand ...string) (T, error)
	List(ctx context.Context, spec *query.Spec) ([]T, error)
	Update(ctx context.Context, id string, patch []byte) (T, error)
	Delete(ctx context.Context, id string) error
	New() T
}

// ScopeFunc는 상위 리소스 경로에서 목록 조회 범위를 만듭니다
type ScopeFunc func(c *gin.Context) (map[string]interface{}, error)

// BeforeCreateFunc는 디코딩된 새 문서를 저장 전에 보정합니다
type BeforeCreateFunc[T entity.Entity] func(c *gin.Context, doc T) error

// ResourceHandler는 리소스 하나에 대한 제네릭 CRUD 핸들러입니다
type ResourceHandler[T entity.Entity] struct {
	service      ResourceService[T]
	options      query.Options
	expand       []string
	scope        ScopeFunc
	beforeCreate BeforeCreateFunc[T]
}

// FactoryOption은 ResourceHandler 옵션입니다
type FactoryOption[T entity.Entity] func(*ResourceHandler[T])

// WithExpand는 단건 조회 시 확장할 관계를 설정합니다
func WithExpand[T entity.Entity](fields ...string) FactoryOption[T] {
	return func(h *ResourceHandler[T]) {
		h.expand = fields
	}
}

// WithScope는 목록 조회 범위 함수를 설정합니다
func WithScope[T entity.Entity](fn ScopeFunc) FactoryOption[T] {
	return func(h *ResourceHandler[T]) {
		h.scope = fn
	}
}

// WithBeforeCreate는 생성 전 보정 함수를 설정합니다
func WithBeforeCreate[T entity.Entity](fn BeforeCreateFunc[T]) FactoryOption[T] {
	return func(h *ResourceHandler[T]) {
		h.beforeCreate = fn
	}
}

// NewResourceHandler는 새로운 ResourceHandler를 생성합니다
func NewResourceHandler[T entity.Entity](service ResourceService[T], options query.Options, opts ...FactoryOption[T]) *ResourceHandler[T] {
	h := &ResourceHandler[T]{
		service: service,
		options: options,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateOne godoc
// @Summary      Create a document
// @Tags         resources
// @Accept       json
// @Produce      json
// @Success      201  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/{resource} [post]
func (h *ResourceHandler[T]) CreateOne(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		abort(c, err)
		return
	}

	doc := h.service.New()
	if len(body) > 0 {
		if err := json.Unmarshal(body, doc); err != nil {
			abort(c, validation.DecodeError(err))
			return
		}
	}
	// 클라이언트가 보낸 식별자와 버전은 무시합니다
	doc.SetID(primitive.NilObjectID)
	doc.SetVersion(0)

	if h.beforeCreate != nil {
		if err := h.beforeCreate(c, doc); err != nil {
			abort(c, err)
			return
		}
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusCreated, Response{Message: MsgDocumentCreated, Data: data(doc)})
}

// GetOne godoc
// @Summary      Get a document by id
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/{resource}/{id} [get]
func (h *ResourceHandler[T]) GetOne(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"), h.expand...)
	if err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusOK, Response{Data: data(doc)})
}

// GetAll godoc
// @Summary      List documents
// @Description  Filter (field[gte|gt|lte|lt]=v), sort, fields and page/limit query parameters
// @Tags         resources
// @Produce      json
// @Success      200  {object}  Response
// @Router       /api/v1/{resource} [get]
func (h *ResourceHandler[T]) GetAll(c *gin.Context) {
	spec := query.Build(c.Request.URL.Query(), h.options)
	if h.scope != nil {
		scope, err := h.scope(c)
		if err != nil {
			abort(c, err)
			return
		}
		spec = spec.WithScope(scope)
	}

	docs, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		abort(c, err)
		return
	}
	if docs == nil {
		docs = []T{}
	}

	list(c, docs, len(docs))
}

// UpdateOne godoc
// @Summary      Update a document
// @Description  Partial update merged onto the stored document
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/{resource}/{id} [patch]
func (h *ResourceHandler[T]) UpdateOne(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		abort(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusOK, Response{Data: data(doc)})
}

// DeleteOne godoc
// @Summary      Delete a document
// @Tags         resources
// @Param        id   path      string  true  "Document ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/{resource}/{id} [delete]
func (h *ResourceHandler[T]) DeleteOne(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
