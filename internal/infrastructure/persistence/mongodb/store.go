package mongodb

import (
	"context"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Expander는 조회된 문서의 관계 필드를 확장(populate)합니다
// expand는 요청된 선택적 관계 이름이며 항상 확장되는 관계는 expand와 무관하게 처리합니다
type Expander[T entity.Entity] func(ctx context.Context, docs []T, expand []string) error

// Store는 하나의 컬렉션에 대한 제네릭 ResourceRepository 구현입니다
type Store[T entity.Entity] struct {
	coll       *mongo.Collection
	name       string
	newDoc     func() T
	baseFilter bson.M
	expander   Expander[T]
	metrics    *metrics.Metrics
}

// StoreOption은 Store 옵션입니다
type StoreOption[T entity.Entity] func(*Store[T])

// WithBaseFilter는 모든 조회에 적용되는 기본 필터를 설정합니다
func WithBaseFilter[T entity.Entity](filter bson.M) StoreOption[T] {
	return func(s *Store[T]) {
		s.baseFilter = filter
	}
}

// WithExpander는 관계 확장 함수를 설정합니다
func WithExpander[T entity.Entity](expander Expander[T]) StoreOption[T] {
	return func(s *Store[T]) {
		s.expander = expander
	}
}

// NewStore는 새로운 Store를 생성합니다
func NewStore[T entity.Entity](db *mongo.Database, collection string, newDoc func() T, opts ...StoreOption[T]) *Store[T] {
	s := &Store[T]{
		coll:    db.Collection(collection),
		name:    collection,
		newDoc:  newDoc,
		metrics: metrics.GetMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection은 내부 컬렉션을 반환합니다
func (s *Store[T]) Collection() *mongo.Collection {
	return s.coll
}

// observe는 작업 메트릭과 디버그 로그를 기록합니다
func (s *Store[T]) observe(ctx context.Context, op string, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = "not_found"
	case apperrors.KindConflict:
		status = "conflict"
	case apperrors.KindValidation:
		status = "invalid"
	default:
		if err != nil {
			status = "error"
		}
	}
	s.metrics.RecordDBOperation(op, s.name, status, duration)
	logger.LogDBOperation(ctx, op, s.name, duration.Milliseconds(), errorIfInternal(err))
}

// errorIfInternal은 사용자 에러는 로깅 대상에서 제외합니다
func errorIfInternal(err error) error {
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		return err
	}
	return nil
}

// Create는 문서를 저장합니다
func (s *Store[T]) Create(ctx context.Context, doc T) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "insert", start, err) }()

	doc.SetVersion(0)
	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return classify("insert into", s.name, err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.SetID(oid)
	}
	return nil
}

// FindByID는 ID로 문서를 조회합니다
func (s *Store[T]) FindByID(ctx context.Context, id string, expand ...string) (doc T, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "find_one", start, err) }()

	oid, err := entity.ParseID(id)
	if err != nil {
		return doc, err
	}

	found, err := s.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return doc, err
	}

	if err := s.expand(ctx, []T{found}, expand); err != nil {
		return doc, err
	}
	return found, nil
}

// FindOne은 기본 필터를 적용하여 한 문서를 조회합니다 (확장하지 않음)
func (s *Store[T]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (T, error) {
	doc := s.newDoc()
	if err := s.coll.FindOne(ctx, mergeFilters(s.baseFilter, filter), opts...).Decode(doc); err != nil {
		var zero T
		return zero, classify("find in", s.name, err)
	}
	return doc, nil
}

// Find는 조회 명세를 실행합니다
func (s *Store[T]) Find(ctx context.Context, spec *query.Spec) (docs []T, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "find", start, err) }()

	docs, err = s.FindMany(ctx, buildFilter(spec), findOptions(spec))
	if err != nil {
		return nil, err
	}

	if err := s.expand(ctx, docs, nil); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindMany는 기본 필터를 적용하여 여러 문서를 조회합니다 (확장하지 않음)
func (s *Store[T]) FindMany(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := s.coll.Find(ctx, mergeFilters(s.baseFilter, filter), opts...)
	if err != nil {
		return nil, classify("find in", s.name, err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	for cursor.Next(ctx) {
		doc := s.newDoc()
		if err := cursor.Decode(doc); err != nil {
			return nil, classify("decode from", s.name, err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, classify("iterate", s.name, err)
	}
	return docs, nil
}

// Update는 버전이 일치할 때만 문서를 교체합니다 (낙관적 잠금)
func (s *Store[T]) Update(ctx context.Context, doc T) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "replace", start, err) }()

	version := doc.GetVersion()
	filter := mergeFilters(s.baseFilter, bson.M{"_id": doc.GetID(), "__v": version})

	doc.SetVersion(version + 1)
	result, err := s.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		doc.SetVersion(version)
		return classify("replace in", s.name, err)
	}

	if result.MatchedCount == 0 {
		doc.SetVersion(version)
		return s.missOrConflict(ctx, doc.GetID())
	}
	return nil
}

// missOrConflict는 갱신 대상이 없을 때 문서 부재와 버전 충돌을 구분합니다
func (s *Store[T]) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	count, err := s.coll.CountDocuments(ctx, mergeFilters(s.baseFilter, bson.M{"_id": id}), options.Count().SetLimit(1))
	if err != nil {
		return classify("count in", s.name, err)
	}
	if count == 0 {
		return apperrors.NotFound(apperrors.MsgNoDocument)
	}
	return apperrors.Conflict(apperrors.MsgVersionConflict)
}

// UpdateFields는 $set으로 일부 필드를 갱신하고 버전을 올립니다
func (s *Store[T]) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "update", start, err) }()

	update := bson.M{"$set": fields, "$inc": bson.M{"__v": 1}}
	result, err := s.coll.UpdateOne(ctx, mergeFilters(s.baseFilter, bson.M{"_id": id}), update)
	if err != nil {
		return classify("update in", s.name, err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound(apperrors.MsgNoDocument)
	}
	return nil
}

// Delete는 문서를 삭제하고 삭제된 문서를 반환합니다
func (s *Store[T]) Delete(ctx context.Context, id string) (doc T, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete", start, err) }()

	oid, err := entity.ParseID(id)
	if err != nil {
		return doc, err
	}

	deleted := s.newDoc()
	if err := s.coll.FindOneAndDelete(ctx, mergeFilters(s.baseFilter, bson.M{"_id": oid})).Decode(deleted); err != nil {
		return doc, classify("delete from", s.name, err)
	}
	return deleted, nil
}

func (s *Store[T]) expand(ctx context.Context, docs []T, expand []string) error {
	if s.expander == nil || len(docs) == 0 {
		return nil
	}
	if err := s.expander(ctx, docs, expand); err != nil {
		return classify("expand", s.name, err)
	}
	return nil
}

// hasExpand는 expand 목록에 name이 있는지 확인합니다
func hasExpand(expand []string, name string) bool {
	for _, e := range expand {
		if e == name {
			return true
		}
	}
	return false
}
