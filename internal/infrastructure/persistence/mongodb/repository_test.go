package mongodb

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func tourDoc(id primitive.ObjectID, name string, price float64, guides ...primitive.ObjectID) bson.D {
	guideIDs := bson.A{}
	for _, g := range guides {
		guideIDs = append(guideIDs, g)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "__v", Value: int32(0)},
		{Key: "name", Value: name},
		{Key: "slug", Value: "the-forest-hiker"},
		{Key: "duration", Value: 14.0},
		{Key: "maxGroupSize", Value: int32(25)},
		{Key: "difficulty", Value: "easy"},
		{Key: "ratingsAverage", Value: 4.7},
		{Key: "price", Value: price},
		{Key: "summary", Value: "Breathtaking hike"},
		{Key: "imageCover", Value: "tour-1-cover.jpg"},
		{Key: "guides", Value: guideIDs},
	}
}

func kindOf(t *mtest.T, err error) apperrors.Kind {
	t.Helper()
	require.Error(t, err)
	return apperrors.KindOf(err)
}

func TestStore_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns generated id", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		tour := &entity.Tour{Name: "The Forest Hiker", Price: 397}
		err := repo.Create(context.Background(), tour)

		require.NoError(mt, err)
		assert.False(mt, tour.ID.IsZero())
		assert.Equal(mt, 0, tour.Version)
	})

	mt.Run("duplicate key becomes conflict", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "The Forest Hiker" }`,
		}))

		err := repo.Create(context.Background(), &entity.Tour{Name: "The Forest Hiker"})

		assert.Equal(mt, apperrors.KindConflict, kindOf(mt, err))
		assert.Equal(mt, 409, apperrors.GetHTTPStatus(err))
		assert.Contains(mt, err.Error(), "Duplicate name: 'The Forest Hiker', Please use another name.")
	})
}

func TestStore_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "wwwww")

		assert.Equal(mt, apperrors.KindValidation, kindOf(mt, err))
		assert.Contains(mt, err.Error(), "Invalid _id : wwwww.")
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.tours", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())

		assert.Equal(mt, apperrors.KindNotFound, kindOf(mt, err))
	})

	mt.Run("expands guides and derives fields", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		tourID, guideID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "natours.tours", mtest.FirstBatch, tourDoc(tourID, "The Forest Hiker", 397, guideID)),
			mtest.CreateCursorResponse(0, "natours.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: guideID},
				{Key: "name", Value: "Lourdes Browning"},
				{Key: "email", Value: "loulou@example.com"},
				{Key: "role", Value: "lead-guide"},
			}),
		)

		tour, err := repo.FindByID(context.Background(), tourID.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, "The Forest Hiker", tour.Name)
		assert.Equal(mt, 2.0, tour.DurationWeeks)
		require.Len(mt, tour.Guides, 1)
		require.NotNil(mt, tour.Guides[0].Doc)
		assert.Equal(mt, entity.RoleLeadGuide, tour.Guides[0].Doc.Role)
	})
}

func TestStore_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("applies spec to find command", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.tours", mtest.FirstBatch,
			tourDoc(primitive.NewObjectID(), "The Star Gazer", 997),
			tourDoc(primitive.NewObjectID(), "The Northern Lights", 497),
		))
		values, _ := url.ParseQuery("price[gte]=100&sort=-price&limit=2&page=1")
		spec := query.Build(values, query.Options{Schema: query.Schema{"price": query.Number}})

		tours, err := repo.Find(context.Background(), spec)

		require.NoError(mt, err)
		require.Len(mt, tours, 2)
		assert.GreaterOrEqual(mt, tours[0].Price, tours[1].Price)

		event := mt.GetStartedEvent()
		assert.Equal(mt, "find", event.CommandName)
		cmd := event.Command
		filter := cmd.Lookup("filter").Document()
		assert.Equal(mt, 100.0, filter.Lookup("price", "$gte").Double())
		assert.Equal(mt, true, filter.Lookup("secretTour", "$ne").Boolean())
		assert.Equal(mt, int32(-1), cmd.Lookup("sort", "price").Int32())
		assert.Equal(mt, int64(2), cmd.Lookup("limit").AsInt64())
	})
}

func TestStore_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("bumps version", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		review := &entity.Review{Review: "Great", Rating: 5}
		review.ID = primitive.NewObjectID()
		review.Version = 2

		require.NoError(mt, repo.Update(context.Background(), review))
		assert.Equal(mt, 3, review.Version)
	})

	mt.Run("stale version is conflict", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "natours.reviews", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)
		review := &entity.Review{Review: "Great", Rating: 5}
		review.ID = primitive.NewObjectID()
		review.Version = 2

		err := repo.Update(context.Background(), review)

		assert.Equal(mt, apperrors.KindConflict, kindOf(mt, err))
		assert.Equal(mt, 2, review.Version)
	})

	mt.Run("missing document is not found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "natours.reviews", mtest.FirstBatch),
		)
		review := &entity.Review{}
		review.ID = primitive.NewObjectID()

		err := repo.Update(context.Background(), review)

		assert.Equal(mt, apperrors.KindNotFound, kindOf(mt, err))
	})
}

func TestStore_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns deleted document", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		reviewID, tourID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: reviewID},
			{Key: "review", Value: "Amazing"},
			{Key: "rating", Value: 5.0},
			{Key: "tour", Value: tourID},
		}}))

		deleted, err := repo.Delete(context.Background(), reviewID.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, tourID, deleted.Tour.ID)
	})

	mt.Run("unknown id is not found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())

		assert.Equal(mt, apperrors.KindNotFound, kindOf(mt, err))
	})
}

func TestReviewRepository_RatingSummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregates ratings", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		tourID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.reviews", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: tourID},
			{Key: "nRating", Value: int32(3)},
			{Key: "avgRating", Value: 4.666},
		}))

		summary, err := repo.RatingSummary(context.Background(), tourID.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, entity.RatingSummary{Quantity: 3, Average: 4.666}, summary)
	})

	mt.Run("no reviews", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.reviews", mtest.FirstBatch))

		summary, err := repo.RatingSummary(context.Background(), primitive.NewObjectID().Hex())

		require.NoError(mt, err)
		assert.Equal(mt, entity.RatingSummary{}, summary)
	})
}

func TestTourRepository_Stats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes grouped stats", func(mt *mtest.T) {
		repo := NewTourRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.tours", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "EASY"},
				{Key: "numTours", Value: int32(4)},
				{Key: "numRatings", Value: int32(26)},
				{Key: "avgRating", Value: 4.7},
				{Key: "avgPrice", Value: 1272.0},
				{Key: "minPrice", Value: 397.0},
				{Key: "maxPrice", Value: 1997.0},
			},
		))

		stats, err := repo.Stats(context.Background(), 4.5)

		require.NoError(mt, err)
		require.Len(mt, stats, 1)
		assert.Equal(mt, "EASY", stats[0].Difficulty)
		assert.Equal(mt, 4, stats[0].NumTours)
		assert.Equal(mt, 397.0, stats[0].MinPrice)
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters inactive users", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		userID := primitive.NewObjectID()
		changed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: userID},
			{Key: "name", Value: "Jonas Doe"},
			{Key: "email", Value: "jonas@example.com"},
			{Key: "password", Value: "$2a$12$hash"},
			{Key: "passwordChangedAt", Value: changed},
			{Key: "active", Value: true},
		}))

		user, err := repo.FindByEmail(context.Background(), " Jonas@Example.com ")

		require.NoError(mt, err)
		assert.Equal(mt, userID, user.ID)
		require.NotNil(mt, user.PasswordChangedAt)
		assert.True(mt, user.PasswordChangedAt.Equal(changed))

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "jonas@example.com", filter.Lookup("email").StringValue())
		assert.Equal(mt, false, filter.Lookup("active", "$ne").Boolean())
	})
}
