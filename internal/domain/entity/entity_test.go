package entity

import (
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validTour() *Tour {
	return &Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   "easy",
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestRef_JSON(t *testing.T) {
	id := primitive.NewObjectID()

	var ref Ref[UserSummary]
	require.NoError(t, json.Unmarshal([]byte(`"`+id.Hex()+`"`), &ref))
	assert.Equal(t, id, ref.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"`+id.Hex()+`","name":"x"}`), &ref))
	assert.Equal(t, id, ref.ID)

	out, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id.Hex()+`"`, string(out))

	ref.Doc = &UserSummary{ID: id, Name: "Leo Gillespie", Photo: "user-1.jpg"}
	out, err = json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"`+id.Hex()+`","name":"Leo Gillespie","photo":"user-1.jpg"}`, string(out))
}

func TestRef_JSONInvalidID(t *testing.T) {
	var ref Ref[TourSummary]

	err := json.Unmarshal([]byte(`"abc"`), &ref)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "Invalid _id : abc.")
}

func TestRef_BSONStoresObjectID(t *testing.T) {
	tourID := primitive.NewObjectID()
	review := Review{Review: "Great", Rating: 5, Tour: NewRef[TourSummary](tourID)}
	review.Tour.Doc = &TourSummary{Name: "ignored on write"}

	raw, err := bson.Marshal(review)
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, tourID, stored["tour"])

	var decoded Review
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, tourID, decoded.Tour.ID)
	assert.Nil(t, decoded.Tour.Doc)
}

func TestTour_PrepareAndValidate(t *testing.T) {
	tour := validTour()
	now := time.Now()

	tour.Prepare(true, now)

	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, now, tour.CreatedAt)
	assert.NoError(t, tour.Validate())
}

func TestTour_ValidateMessages(t *testing.T) {
	tour := validTour()
	tour.Name = "Short"
	tour.PriceDiscount = 500
	tour.Difficulty = "extreme"
	tour.Prepare(true, time.Now())

	err := tour.Validate()

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, `Invalid input data: A tour name must have minimum 10 character, Difficulty must be one of "easy", "medium", "difficult", Discount price should be less the retail price.`, appErr.Message)
}

func TestTour_DeriveAndSummary(t *testing.T) {
	tour := validTour()
	tour.Duration = 14

	tour.Derive()

	assert.Equal(t, 2.0, tour.DurationWeeks)
	assert.Equal(t, tour.Name, tour.Brief().Name)
}

func TestRatingSummary_Apply(t *testing.T) {
	qty, avg := RatingSummary{}.Apply()
	assert.Equal(t, 0, qty)
	assert.Equal(t, DefaultRatingsAverage, avg)

	qty, avg = RatingSummary{Quantity: 3, Average: 4.66666}.Apply()
	assert.Equal(t, 3, qty)
	assert.Equal(t, 4.7, avg)
}

func TestUser_PasswordLifecycle(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &User{Name: "Jonas Doe", Email: " Jonas@Example.COM "}
	user.Prepare(true, now)

	assert.Equal(t, "jonas@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, DefaultPhoto, user.Photo)
	assert.True(t, user.Active)

	// 생성 시에는 변경 시각이 기록되지 않습니다
	user.SetPassword("hash-1", now)
	assert.Nil(t, user.PasswordChangedAt)

	user.ID = primitive.NewObjectID()
	user.SetResetToken("hashed", now.Add(10*time.Minute))
	user.SetPassword("hash-2", now)

	require.NotNil(t, user.PasswordChangedAt)
	assert.Empty(t, user.PasswordResetToken)
	assert.Nil(t, user.PasswordResetExpires)
	assert.True(t, user.ChangedPasswordAfter(now.Add(-time.Hour)))
	assert.True(t, user.ChangedPasswordAfter(now.Add(-time.Millisecond)))
	assert.False(t, user.ChangedPasswordAfter(now))
	assert.False(t, user.ChangedPasswordAfter(now.Add(time.Millisecond)))
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	user := &User{Name: "Jonas Doe", Email: "jonas@example.com", Password: "hash", PasswordResetToken: "tok"}

	out, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "hash")
	assert.NotContains(t, string(out), "tok")
	assert.NotContains(t, string(out), "active")
}

func TestUser_HasRole(t *testing.T) {
	user := &User{Role: RoleLeadGuide}

	assert.True(t, user.HasRole(RoleAdmin, RoleLeadGuide))
	assert.False(t, user.HasRole(RoleAdmin))
}
