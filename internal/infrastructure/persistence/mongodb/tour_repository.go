package mongodb

import (
	"context"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TourRepository는 MongoDB 기반 투어 저장소입니다
// 비밀 투어(secretTour)는 모든 조회에서 제외됩니다
type TourRepository struct {
	*Store[*entity.Tour]
	db      *mongo.Database
	reviews *ReviewRepository
}

var _ repository.TourRepository = (*TourRepository)(nil)

// NewTourRepository는 새로운 투어 저장소를 생성합니다
func NewTourRepository(db *mongo.Database) *TourRepository {
	r := &TourRepository{
		db:      db,
		reviews: NewReviewRepository(db),
	}
	r.Store = NewStore(db, CollectionTours,
		func() *entity.Tour { return &entity.Tour{} },
		WithBaseFilter[*entity.Tour](publicTours),
		WithExpander[*entity.Tour](r.expandTours),
	)
	return r
}

// expandTours는 가이드를 항상 확장하고 요청 시 리뷰를 확장합니다
func (r *TourRepository) expandTours(ctx context.Context, tours []*entity.Tour, expand []string) error {
	var guideIDs []primitive.ObjectID
	for _, t := range tours {
		t.Derive()
		guideIDs = append(guideIDs, entity.IDs(t.Guides)...)
	}

	guides, err := loadUsers(ctx, r.db, guideIDs, guideProjection)
	if err != nil {
		return err
	}

	for _, t := range tours {
		expanded := make([]entity.Ref[entity.UserSummary], 0, len(t.Guides))
		for _, g := range t.Guides {
			if doc, ok := guides[g.ID]; ok {
				expanded = append(expanded, entity.Ref[entity.UserSummary]{ID: g.ID, Doc: doc})
			}
		}
		t.Guides = expanded
	}

	if !hasExpand(expand, "reviews") {
		return nil
	}

	for _, t := range tours {
		reviews, err := r.reviews.FindMany(ctx, bson.M{"tour": t.ID})
		if err != nil {
			return err
		}
		if err := r.reviews.expandReviews(ctx, reviews, nil); err != nil {
			return err
		}
		t.Reviews = reviews
	}
	return nil
}

// FindBySlug는 slug로 투어를 조회합니다 (리뷰 확장 포함)
func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (tour *entity.Tour, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "find_by_slug", start, err) }()

	tour, err = r.FindOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return nil, err
	}
	if err := r.expand(ctx, []*entity.Tour{tour}, []string{"reviews"}); err != nil {
		return nil, err
	}
	return tour, nil
}

// FindByIDs는 여러 투어를 한 번에 조회합니다
func (r *TourRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Tour, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := entity.ParseID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return []*entity.Tour{}, nil
	}

	tours, err := r.FindMany(ctx, bson.M{"_id": bson.M{"$in": uniqueIDs(oids)}})
	if err != nil {
		return nil, err
	}
	if err := r.expand(ctx, tours, nil); err != nil {
		return nil, err
	}
	return tours, nil
}

// Stats는 평점 minRating 이상 투어의 난이도별 통계를 반환합니다
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]entity.TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: mergeFilters(publicTours, bson.M{"ratingsAverage": bson.M{"$gte": minRating}})}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	stats := make([]entity.TourStats, 0)
	if err := aggregate(ctx, r.Store, "tour_stats", pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthlyPlan은 해당 연도의 월별 투어 시작 계획을 반환합니다
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: publicTours}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}}},
		{{Key: "$limit", Value: 12}},
	}

	plan := make([]entity.MonthlyPlan, 0)
	if err := aggregate(ctx, r.Store, "monthly_plan", pipeline, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Within은 중심점으로부터 radius(라디안) 안에 출발지가 있는 투어를 반환합니다
func (r *TourRepository) Within(ctx context.Context, lng, lat, radius float64) (tours []*entity.Tour, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "geo_within", start, err) }()

	filter := bson.M{"startLocation": bson.M{
		"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radius}},
	}}
	tours, err = r.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := r.expand(ctx, tours, nil); err != nil {
		return nil, err
	}
	return tours, nil
}

// Distances는 중심점으로부터 각 투어까지의 거리를 반환합니다
// 거리는 미터에 multiplier를 곱한 값입니다
func (r *TourRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]entity.TourDistance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":               bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              publicTours,
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}

	distances := make([]entity.TourDistance, 0)
	if err := aggregate(ctx, r.Store, "geo_near", pipeline, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}

// UpdateRatings는 투어의 평점 집계 필드를 갱신합니다
// 비밀 투어도 갱신 대상입니다
func (r *TourRepository) UpdateRatings(ctx context.Context, id string, quantity int, average float64) (err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "update_ratings", start, err) }()

	oid, err := entity.ParseID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{"ratingsQuantity": quantity, "ratingsAverage": entity.RoundRating(average)},
		"$inc": bson.M{"__v": 1},
	}
	if _, err := r.Collection().UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return classify("update ratings in", CollectionTours, err)
	}
	return nil
}

// aggregate는 파이프라인을 실행하고 결과를 out에 디코딩합니다
func aggregate[T entity.Entity](ctx context.Context, s *Store[T], op string, pipeline mongo.Pipeline, out interface{}) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, op, start, err) }()

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return classify("aggregate", s.name, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return classify("decode aggregate from", s.name, err)
	}
	return nil
}
