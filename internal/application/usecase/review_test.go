package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReview(t *testing.T) *entity.Review {
	t.Helper()
	tourID, err := primitive.ObjectIDFromHex(tourHex)
	require.NoError(t, err)
	userID, err := primitive.ObjectIDFromHex(userHex)
	require.NoError(t, err)
	return &entity.Review{
		Review: "Amazing tour, would book again",
		Rating: 5,
		Tour:   entity.NewRef[entity.TourSummary](tourID),
		User:   entity.NewRef[entity.UserSummary](userID),
	}
}

func TestReviewCreate_RecomputesTourRatings(t *testing.T) {
	// Arrange
	reviews := new(MockReviewRepository)
	tours := new(MockTourRepository)
	publisher := &recordingPublisher{}
	invalidated := 0
	uc := usecase.NewReviewUseCase(reviews, tours, publisher, func(context.Context) { invalidated++ })

	review := newReview(t)
	reviews.On("Create", mock.Anything, review).Return(nil)
	reviews.On("RatingSummary", mock.Anything, tourHex).Return(entity.RatingSummary{Quantity: 3, Average: 4.666666}, nil)
	tours.On("UpdateRatings", mock.Anything, tourHex, 3, 4.7).Return(nil)

	// Act
	err := uc.Create(context.Background(), review)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, invalidated)
	assert.Equal(t, []event.Type{event.TourRatingsUpdated, event.ReviewCreated}, publisher.types())
	reviews.AssertExpectations(t)
	tours.AssertExpectations(t)
}

func TestReviewDelete_LastReviewResetsDefaults(t *testing.T) {
	reviews := new(MockReviewRepository)
	tours := new(MockTourRepository)
	uc := usecase.NewReviewUseCase(reviews, tours, nil, nil)

	review := newReview(t)
	review.ID = primitive.NewObjectID()
	reviews.On("Delete", mock.Anything, review.ID.Hex()).Return(review, nil)
	reviews.On("RatingSummary", mock.Anything, tourHex).Return(entity.RatingSummary{}, nil)
	tours.On("UpdateRatings", mock.Anything, tourHex, 0, entity.DefaultRatingsAverage).Return(nil)

	err := uc.Delete(context.Background(), review.ID.Hex())

	require.NoError(t, err)
	tours.AssertExpectations(t)
}

func TestReviewUpdate_RecomputesWithStoredTour(t *testing.T) {
	reviews := new(MockReviewRepository)
	tours := new(MockTourRepository)
	uc := usecase.NewReviewUseCase(reviews, tours, nil, nil)

	stored := newReview(t)
	stored.ID = primitive.NewObjectID()
	reviews.On("FindByID", mock.Anything, stored.ID.Hex(), mock.Anything).Return(stored, nil)
	reviews.On("Update", mock.Anything, stored).Return(nil)
	reviews.On("RatingSummary", mock.Anything, tourHex).Return(entity.RatingSummary{Quantity: 1, Average: 2}, nil)
	tours.On("UpdateRatings", mock.Anything, tourHex, 1, 2.0).Return(nil)

	doc, err := uc.Update(context.Background(), stored.ID.Hex(), []byte(`{"rating":2}`))

	require.NoError(t, err)
	assert.Equal(t, 2.0, doc.Rating)
	tours.AssertExpectations(t)
}

func TestReviewCreate_RecomputeFailurePropagates(t *testing.T) {
	reviews := new(MockReviewRepository)
	tours := new(MockTourRepository)
	uc := usecase.NewReviewUseCase(reviews, tours, nil, nil)

	review := newReview(t)
	reviews.On("Create", mock.Anything, review).Return(nil)
	reviews.On("RatingSummary", mock.Anything, tourHex).Return(entity.RatingSummary{}, apperrors.Internal(errors.New("aggregate failed")))

	err := uc.Create(context.Background(), review)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	tours.AssertNotCalled(t, "UpdateRatings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCreate_InvalidRating(t *testing.T) {
	reviews := new(MockReviewRepository)
	uc := usecase.NewReviewUseCase(reviews, new(MockTourRepository), nil, nil)

	review := newReview(t)
	review.Rating = 6

	err := uc.Create(context.Background(), review)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ratings must be less than or equal to 5.")
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewUpdate_MovedReviewRecomputesBothTours(t *testing.T) {
	// Arrange
	reviews := new(MockReviewRepository)
	tours := new(MockTourRepository)
	uc := usecase.NewReviewUseCase(reviews, tours, nil, nil)

	const otherTourHex = "5c88fa8cf4afda39709c2961"
	stored := newReview(t)
	stored.ID = primitive.NewObjectID()
	reviews.On("FindByID", mock.Anything, stored.ID.Hex(), mock.Anything).Return(stored, nil)
	reviews.On("Update", mock.Anything, stored).Return(nil)
	reviews.On("RatingSummary", mock.Anything, otherTourHex).Return(entity.RatingSummary{Quantity: 4, Average: 4.25}, nil)
	reviews.On("RatingSummary", mock.Anything, tourHex).Return(entity.RatingSummary{}, nil)
	tours.On("UpdateRatings", mock.Anything, otherTourHex, 4, 4.3).Return(nil)
	tours.On("UpdateRatings", mock.Anything, tourHex, 0, entity.DefaultRatingsAverage).Return(nil)

	// Act
	doc, err := uc.Update(context.Background(), stored.ID.Hex(), []byte(`{"tour":"`+otherTourHex+`"}`))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, otherTourHex, doc.Tour.ID.Hex())
	tours.AssertExpectations(t)
	tours.AssertNumberOfCalls(t, "UpdateRatings", 2)
}
