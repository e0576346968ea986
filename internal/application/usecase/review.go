package usecase

import (
	"context"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"go.uber.org/zap"
)

var reviewEvents = map[WriteOp]event.Type{
	OpCreate: event.ReviewCreated,
	OpUpdate: event.ReviewUpdated,
	OpDelete: event.ReviewDeleted,
}

// ReviewUseCase는 리뷰 유즈케이스입니다
// 리뷰 쓰기 후에는 부모 투어의 평점 집계를 다시 계산합니다
type ReviewUseCase struct {
	*ResourceUseCase[*entity.Review]
	reviews   repository.ReviewRepository
	tours     repository.TourRepository
	publisher event.Publisher
	onRatings func(ctx context.Context)
	metrics   *metrics.Metrics
}

// NewReviewUseCase는 새로운 ReviewUseCase를 생성합니다
// onRatings는 평점 재계산 후 호출됩니다 (예: 통계 캐시 무효화)
func NewReviewUseCase(reviews repository.ReviewRepository, tours repository.TourRepository, publisher event.Publisher, onRatings func(ctx context.Context)) *ReviewUseCase {
	uc := &ReviewUseCase{
		reviews:   reviews,
		tours:     tours,
		publisher: publisher,
		onRatings: onRatings,
		metrics:   metrics.GetMetrics(),
	}
	uc.ResourceUseCase = NewResourceUseCase[*entity.Review]("reviews", reviews,
		func() *entity.Review { return &entity.Review{} },
		WithAfterWrite[*entity.Review](uc.afterReviewWrite),
	)
	return uc
}

// Update는 리뷰에 패치를 적용합니다
// 리뷰가 다른 투어로 옮겨지면 이전 투어의 평점도 다시 계산합니다
func (uc *ReviewUseCase) Update(ctx context.Context, id string, patch []byte) (review *entity.Review, err error) {
	ctx, span := tracing.StartSpan(ctx, "ReviewUseCase.Update")
	defer span.End()

	review, err = uc.Get(ctx, id)
	if err != nil {
		return review, err
	}

	previous := review.Tour.ID
	if err := uc.Apply(ctx, review, patch); err != nil {
		return review, err
	}
	if review.Tour.ID != previous {
		if err := uc.RecomputeRatings(ctx, previous.Hex()); err != nil {
			return review, err
		}
	}
	return review, nil
}

func (uc *ReviewUseCase) afterReviewWrite(ctx context.Context, op WriteOp, review *entity.Review) error {
	if err := uc.RecomputeRatings(ctx, review.Tour.ID.Hex()); err != nil {
		return err
	}
	publish(ctx, uc.publisher, reviewEvents[op], review.ID.Hex(), map[string]interface{}{
		"tour":   review.Tour.ID.Hex(),
		"user":   review.User.ID.Hex(),
		"rating": review.Rating,
	})
	return nil
}

// RecomputeRatings는 투어의 리뷰 개수와 평균 평점을 다시 계산하여 저장합니다
// 리뷰가 없으면 0개와 기본 평점 4.5입니다
func (uc *ReviewUseCase) RecomputeRatings(ctx context.Context, tourID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ReviewUseCase.RecomputeRatings")
	defer span.End()
	defer func() {
		if err != nil {
			uc.metrics.RecordRatingRecompute("error")
			tracing.RecordError(ctx, err)
			return
		}
		uc.metrics.RecordRatingRecompute("success")
	}()

	summary, err := guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) (entity.RatingSummary, error) {
		return uc.reviews.RatingSummary(ctx, tourID)
	})
	if err != nil {
		return err
	}

	quantity, average := summary.Apply()
	if err := exec(ctx, uc.breaker, func(ctx context.Context) error {
		return uc.tours.UpdateRatings(ctx, tourID, quantity, average)
	}); err != nil {
		return err
	}

	logger.Debug(ctx, "tour ratings recomputed",
		logger.TourID(tourID),
		zap.Int("ratings_quantity", quantity),
		zap.Float64("ratings_average", average),
	)
	publish(ctx, uc.publisher, event.TourRatingsUpdated, tourID, map[string]interface{}{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	})
	if uc.onRatings != nil {
		uc.onRatings(ctx)
	}
	return nil
}
