package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingFixture struct {
	uc        *usecase.BookingUseCase
	bookings  *MockBookingRepository
	tours     *MockTourRepository
	users     *MockUserRepository
	gateway   *MockPaymentGateway
	publisher *recordingPublisher
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  new(MockBookingRepository),
		tours:     new(MockTourRepository),
		users:     new(MockUserRepository),
		gateway:   new(MockPaymentGateway),
		publisher: &recordingPublisher{},
	}
	f.uc = usecase.NewBookingUseCase(f.bookings, f.tours, f.users, f.gateway, f.publisher)
	return f
}

func principal(t *testing.T) *entity.User {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(userHex)
	require.NoError(t, err)
	return &entity.User{Base: entity.Base{ID: id}, Name: "Laura Wilson", Email: "laura@example.io", Role: entity.RoleUser}
}

func TestCheckoutSession_BuildsRequestFromTour(t *testing.T) {
	// Arrange
	f := newBookingFixture()
	tour := storedTour(t)
	tour.Slug = "the-forest-hiker"
	f.tours.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(tour, nil)
	f.gateway.On("CreateCheckoutSession", mock.Anything, repository.CheckoutRequest{
		TourID:        tourHex,
		TourName:      "The Forest Hiker",
		Summary:       tour.Summary,
		ImageURL:      "https://natours.dev/img/tours/tour-1-cover.jpg",
		Price:         397,
		CustomerEmail: "laura@example.io",
		SuccessURL:    "https://natours.dev/my-tours",
		CancelURL:     "https://natours.dev/tour/the-forest-hiker",
	}).Return(&repository.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}, nil)

	// Act
	session, err := f.uc.CheckoutSession(context.Background(), principal(t), tourHex, "https://natours.dev/")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	f.gateway.AssertExpectations(t)
}

func TestCheckoutSession_WithoutGateway(t *testing.T) {
	f := newBookingFixture()
	uc := usecase.NewBookingUseCase(f.bookings, f.tours, f.users, nil, nil)

	_, err := uc.CheckoutSession(context.Background(), principal(t), tourHex, "http://localhost")

	assert.Equal(t, http.StatusServiceUnavailable, apperrors.GetHTTPStatus(err))
	assert.Contains(t, err.Error(), usecase.MsgPaymentsDisabled)
}

func TestHandleWebhook_CreatesBooking(t *testing.T) {
	// Arrange
	f := newBookingFixture()
	payload := []byte(`{"type":"checkout.session.completed"}`)
	f.gateway.On("ParseWebhook", payload, "t=1,v1=abc").Return(&repository.CompletedCheckout{
		SessionID:     "cs_test_1",
		TourID:        tourHex,
		CustomerEmail: "laura@example.io",
		Price:         397,
	}, nil)
	f.bookings.On("ExistsBySession", mock.Anything, "cs_test_1").Return(false, nil)
	f.users.On("FindByEmail", mock.Anything, "laura@example.io").Return(principal(t), nil)

	var created *entity.Booking
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*entity.Booking")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entity.Booking)
		created.SetID(primitive.NewObjectID())
	}).Return(nil)

	// Act
	err := f.uc.HandleWebhook(context.Background(), payload, "t=1,v1=abc")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, tourHex, created.Tour.ID.Hex())
	assert.Equal(t, userHex, created.User.ID.Hex())
	assert.Equal(t, 397.0, created.Price)
	assert.True(t, created.Paid)
	assert.Equal(t, []event.Type{event.BookingCreated}, f.publisher.types())
}

func TestHandleWebhook_DuplicateSessionIgnored(t *testing.T) {
	f := newBookingFixture()
	f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(&repository.CompletedCheckout{SessionID: "cs_test_1"}, nil)
	f.bookings.On("ExistsBySession", mock.Anything, "cs_test_1").Return(true, nil)

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newBookingFixture()
	f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(nil, nil)

	require.NoError(t, f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	f.bookings.AssertNotCalled(t, "ExistsBySession", mock.Anything, mock.Anything)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	f := newBookingFixture()
	f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(nil, apperrors.Validation("Webhook error: signature mismatch"))

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")

	assert.Equal(t, http.StatusBadRequest, apperrors.GetHTTPStatus(err))
}

func TestMyTours(t *testing.T) {
	f := newBookingFixture()
	tourID, err := primitive.ObjectIDFromHex(tourHex)
	require.NoError(t, err)
	f.bookings.On("FindByUser", mock.Anything, userHex).Return([]*entity.Booking{
		{Tour: entity.NewRef[entity.TourSummary](tourID)},
	}, nil)
	f.tours.On("FindByIDs", mock.Anything, []string{tourHex}).Return([]*entity.Tour{storedTour(t)}, nil)

	tours, err := f.uc.MyTours(context.Background(), principal(t))

	require.NoError(t, err)
	assert.Len(t, tours, 1)
}

func TestMyTours_NoBookings(t *testing.T) {
	f := newBookingFixture()
	f.bookings.On("FindByUser", mock.Anything, userHex).Return([]*entity.Booking{}, nil)

	tours, err := f.uc.MyTours(context.Background(), principal(t))

	require.NoError(t, err)
	assert.Empty(t, tours)
	f.tours.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}
