package mongodb

import (
	"context"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReviewRepository는 MongoDB 기반 리뷰 저장소입니다
type ReviewRepository struct {
	*Store[*entity.Review]
	db *mongo.Database
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository는 새로운 리뷰 저장소를 생성합니다
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	r := &ReviewRepository{db: db}
	r.Store = NewStore(db, CollectionReviews,
		func() *entity.Review { return &entity.Review{} },
		WithExpander[*entity.Review](r.expandReviews),
	)
	return r
}

// expandReviews는 작성자를 항상 확장하고 요청 시 투어를 확장합니다
func (r *ReviewRepository) expandReviews(ctx context.Context, reviews []*entity.Review, expand []string) error {
	userIDs := make([]primitive.ObjectID, 0, len(reviews))
	tourIDs := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		userIDs = append(userIDs, rv.User.ID)
		tourIDs = append(tourIDs, rv.Tour.ID)
	}

	authors, err := loadUsers(ctx, r.db, userIDs, authorProjection)
	if err != nil {
		return err
	}
	for _, rv := range reviews {
		rv.User.Doc = authors[rv.User.ID]
	}

	if !hasExpand(expand, "tour") {
		return nil
	}

	tours, err := loadTours(ctx, r.db, tourIDs)
	if err != nil {
		return err
	}
	for _, rv := range reviews {
		rv.Tour.Doc = tours[rv.Tour.ID]
	}
	return nil
}

// RatingSummary는 투어의 리뷰 개수와 평균 평점을 집계합니다
func (r *ReviewRepository) RatingSummary(ctx context.Context, tourID string) (entity.RatingSummary, error) {
	oid, err := entity.ParseID(tourID)
	if err != nil {
		return entity.RatingSummary{}, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": oid}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	var results []struct {
		NRating   int     `bson:"nRating"`
		AvgRating float64 `bson:"avgRating"`
	}
	if err := aggregate(ctx, r.Store, "rating_summary", pipeline, &results); err != nil {
		return entity.RatingSummary{}, err
	}

	if len(results) == 0 {
		return entity.RatingSummary{}, nil
	}
	return entity.RatingSummary{Quantity: results[0].NRating, Average: results[0].AvgRating}, nil
}
