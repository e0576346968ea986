package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const tourHex = "5c88fa8cf4afda39709c2955"

func validTour() *entity.Tour {
	return &entity.Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   "easy",
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func storedTour(t *testing.T) *entity.Tour {
	t.Helper()
	tour := validTour()
	id, err := primitive.ObjectIDFromHex(tourHex)
	require.NoError(t, err)
	tour.ID = id
	tour.Version = 3
	tour.RatingsAverage = 4.7
	return tour
}

type writeCall struct {
	op  usecase.WriteOp
	doc *entity.Tour
}

func newTourResource(repo *MockStore[*entity.Tour], calls *[]writeCall) *usecase.ResourceUseCase[*entity.Tour] {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return usecase.NewResourceUseCase[*entity.Tour]("tours", repo,
		func() *entity.Tour { return &entity.Tour{} },
		usecase.WithAfterWrite[*entity.Tour](func(_ context.Context, op usecase.WriteOp, doc *entity.Tour) error {
			*calls = append(*calls, writeCall{op: op, doc: doc})
			return nil
		}),
		usecase.WithRetryConfig[*entity.Tour](retry.Config{MaxAttempts: 1}),
		usecase.WithClock[*entity.Tour](func() time.Time { return fixed }),
	)
}

func TestResourceCreate_PreparesAndRunsAfterWrite(t *testing.T) {
	// Arrange
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)
	tour := validTour()

	repo.On("Create", mock.Anything, tour).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Tour).SetID(primitive.NewObjectID())
	}).Return(nil)

	// Act
	err := uc.Create(context.Background(), tour)

	// Assert
	require.NoError(t, err)
	assert.False(t, tour.ID.IsZero())
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, entity.DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), tour.CreatedAt)
	require.Len(t, calls, 1)
	assert.Equal(t, usecase.OpCreate, calls[0].op)
	repo.AssertExpectations(t)
}

func TestResourceCreate_ValidationSkipsStore(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	tour := validTour()
	tour.Name = "short"

	err := uc.Create(context.Background(), tour)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "A tour name must have minimum 10 character")
	assert.Empty(t, calls)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResourceUpdate_MergesPatchAndKeepsIdentity(t *testing.T) {
	// Arrange
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)
	stored := storedTour(t)

	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Tour")).Return(nil)

	// Act
	doc, err := uc.Update(context.Background(), tourHex,
		[]byte(`{"name":"The Forest Explorer","price":497,"_id":"000000000000000000000000"}`))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, tourHex, doc.ID.Hex())
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, "The Forest Explorer", doc.Name)
	assert.Equal(t, "the-forest-explorer", doc.Slug)
	assert.Equal(t, 497.0, doc.Price)
	assert.Equal(t, 5.0, doc.Duration)
	require.Len(t, calls, 1)
	assert.Equal(t, usecase.OpUpdate, calls[0].op)
	repo.AssertExpectations(t)
}

func TestResourceUpdate_RevalidatesMergedDocument(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)

	_, err := uc.Update(context.Background(), tourHex, []byte(`{"difficulty":"extreme"}`))

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.GetHTTPStatus(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestResourceUpdate_TypeMismatchIsValidation(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)

	_, err := uc.Update(context.Background(), tourHex, []byte(`{"price":"cheap"}`))

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid price")
}

func TestResourceUpdate_VersionConflict(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(apperrors.Conflict(apperrors.MsgVersionConflict))

	_, err := uc.Update(context.Background(), tourHex, []byte(`{"price":450}`))

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.GetHTTPStatus(err))
	assert.Empty(t, calls)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestResourceGet_NotFound(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	repo.On("FindByID", mock.Anything, tourHex, []string{"reviews"}).Return(nil, apperrors.NotFound(apperrors.MsgNoDocument))

	_, err := uc.Get(context.Background(), tourHex, "reviews")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.GetHTTPStatus(err))
	repo.AssertExpectations(t)
}

func TestResourceList_PassesSpec(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)

	spec := &query.Spec{Page: 2, Limit: 10}
	repo.On("Find", mock.Anything, spec).Return([]*entity.Tour{storedTour(t)}, nil)

	tours, err := uc.List(context.Background(), spec)

	require.NoError(t, err)
	assert.Len(t, tours, 1)
	repo.AssertExpectations(t)
}

func TestResourceDelete_RunsAfterWriteWithDeletedDocument(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)
	stored := storedTour(t)

	repo.On("Delete", mock.Anything, tourHex).Return(stored, nil)

	err := uc.Delete(context.Background(), tourHex)

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, usecase.OpDelete, calls[0].op)
	assert.Same(t, stored, calls[0].doc)
}

func TestResourceDelete_AfterWriteErrorPropagates(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	hookErr := apperrors.Internal(errors.New("recompute failed"))
	uc := usecase.NewResourceUseCase[*entity.Tour]("tours", repo,
		func() *entity.Tour { return &entity.Tour{} },
		usecase.WithAfterWrite[*entity.Tour](func(context.Context, usecase.WriteOp, *entity.Tour) error {
			return hookErr
		}),
	)

	repo.On("Delete", mock.Anything, tourHex).Return(storedTour(t), nil)

	err := uc.Delete(context.Background(), tourHex)

	assert.ErrorIs(t, err, hookErr)
}

func TestResource_CircuitOpensOnStoreFailures(t *testing.T) {
	// Arrange
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)
	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(nil, apperrors.Internal(errors.New("server selection error")))

	for i := 0; i < 3; i++ {
		_, err := uc.Get(context.Background(), tourHex)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperrors.GetHTTPStatus(err))
	}

	// Act
	_, err := uc.Get(context.Background(), tourHex)

	// Assert
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.GetHTTPStatus(err))
	assert.Contains(t, err.Error(), usecase.MsgUnavailable)
	repo.AssertNumberOfCalls(t, "FindByID", 3)
}

func TestResource_BusinessErrorsDoNotTripCircuit(t *testing.T) {
	repo := new(MockStore[*entity.Tour])
	var calls []writeCall
	uc := newTourResource(repo, &calls)
	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(nil, apperrors.NotFound(apperrors.MsgNoDocument))

	for i := 0; i < 5; i++ {
		_, err := uc.Get(context.Background(), tourHex)
		assert.Equal(t, http.StatusNotFound, apperrors.GetHTTPStatus(err))
	}
	repo.AssertNumberOfCalls(t, "FindByID", 5)
}

func newRetryingTourResource(repo *MockStore[*entity.Tour]) *usecase.ResourceUseCase[*entity.Tour] {
	return usecase.NewResourceUseCase[*entity.Tour]("tours", repo,
		func() *entity.Tour { return &entity.Tour{} },
		usecase.WithRetryConfig[*entity.Tour](retry.Config{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1,
		}),
	)
}

func networkError() error {
	return apperrors.Internal(mongo.CommandError{Code: 6, Message: "connection reset", Labels: []string{"NetworkError"}})
}

func TestResourceCreate_NetworkErrorIsNotRetried(t *testing.T) {
	// Arrange
	repo := new(MockStore[*entity.Tour])
	uc := newRetryingTourResource(repo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Tour")).Return(networkError()).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Tour")).Return(nil)

	// Act
	err := uc.Create(context.Background(), validTour())

	// Assert
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetHTTPStatus(err))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestResourceWrites_NetworkErrorsAreNotRetried(t *testing.T) {
	t.Run("update", func(t *testing.T) {
		repo := new(MockStore[*entity.Tour])
		uc := newRetryingTourResource(repo)
		repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Tour")).Return(networkError()).Once()
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Tour")).Return(nil)

		_, err := uc.Update(context.Background(), tourHex, []byte(`{"price":500}`))

		require.Error(t, err)
		repo.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("delete", func(t *testing.T) {
		repo := new(MockStore[*entity.Tour])
		uc := newRetryingTourResource(repo)
		repo.On("Delete", mock.Anything, tourHex).Return(nil, networkError()).Once()
		repo.On("Delete", mock.Anything, tourHex).Return(storedTour(t), nil)

		err := uc.Delete(context.Background(), tourHex)

		require.Error(t, err)
		repo.AssertNumberOfCalls(t, "Delete", 1)
	})
}

func TestResourceGet_NetworkErrorIsRetried(t *testing.T) {
	// Arrange
	repo := new(MockStore[*entity.Tour])
	uc := newRetryingTourResource(repo)
	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(nil, networkError()).Once()
	repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)

	// Act
	tour, err := uc.Get(context.Background(), tourHex)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, tourHex, tour.ID.Hex())
	repo.AssertNumberOfCalls(t, "FindByID", 2)
}
