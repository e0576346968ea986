package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// MockStore는 ResourceRepository의 mock입니다
type MockStore[T entity.Entity] struct {
	mock.Mock
}

func (m *MockStore[T]) Create(ctx context.Context, doc T) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore[T]) FindByID(ctx context.Context, id string, expand ...string) (T, error) {
	args := m.Called(ctx, id, expand)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockStore[T]) Find(ctx context.Context, spec *query.Spec) ([]T, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockStore[T]) Update(ctx context.Context, doc T) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore[T]) Delete(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

// MockTourRepository는 TourRepository의 mock입니다
type MockTourRepository struct {
	MockStore[*entity.Tour]
}

func (m *MockTourRepository) FindBySlug(ctx context.Context, slug string) (*entity.Tour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tour), args.Error(1)
}

func (m *MockTourRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Tour, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Tour), args.Error(1)
}

func (m *MockTourRepository) Stats(ctx context.Context, minRating float64) ([]entity.TourStats, error) {
	args := m.Called(ctx, minRating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TourStats), args.Error(1)
}

func (m *MockTourRepository) MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MonthlyPlan), args.Error(1)
}

func (m *MockTourRepository) Within(ctx context.Context, lng, lat, radius float64) ([]*entity.Tour, error) {
	args := m.Called(ctx, lng, lat, radius)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Tour), args.Error(1)
}

func (m *MockTourRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]entity.TourDistance, error) {
	args := m.Called(ctx, lng, lat, multiplier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TourDistance), args.Error(1)
}

func (m *MockTourRepository) UpdateRatings(ctx context.Context, id string, quantity int, average float64) error {
	args := m.Called(ctx, id, quantity, average)
	return args.Error(0)
}

// MockReviewRepository는 ReviewRepository의 mock입니다
type MockReviewRepository struct {
	MockStore[*entity.Review]
}

func (m *MockReviewRepository) RatingSummary(ctx context.Context, tourID string) (entity.RatingSummary, error) {
	args := m.Called(ctx, tourID)
	return args.Get(0).(entity.RatingSummary), args.Error(1)
}

// MockUserRepository는 UserRepository의 mock입니다
type MockUserRepository struct {
	MockStore[*entity.User]
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, hashedToken string) (*entity.User, error) {
	args := m.Called(ctx, hashedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookingRepository는 BookingRepository의 mock입니다
type MockBookingRepository struct {
	MockStore[*entity.Booking]
}

func (m *MockBookingRepository) FindByUser(ctx context.Context, userID string) ([]*entity.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) ExistsBySession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// MockCacheRepository는 CacheRepository의 mock입니다
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMailer는 Mailer의 mock입니다
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(ctx context.Context, name, email, url string) error {
	args := m.Called(ctx, name, email, url)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, name, email, url string, validFor time.Duration) error {
	args := m.Called(ctx, name, email, url, validFor)
	return args.Error(0)
}

// MockImageStore는 ImageStore의 mock입니다
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, folder, name, contentType string, data []byte) error {
	args := m.Called(ctx, folder, name, contentType, data)
	return args.Error(0)
}

// MockPaymentGateway는 PaymentGateway의 mock입니다
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req repository.CheckoutRequest) (*repository.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signature string) (*repository.CompletedCheckout, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CompletedCheckout), args.Error(1)
}

// recordingPublisher는 발행된 이벤트를 기록합니다
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]event.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

var (
	_ repository.TourRepository    = (*MockTourRepository)(nil)
	_ repository.ReviewRepository  = (*MockReviewRepository)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.CacheRepository   = (*MockCacheRepository)(nil)
	_ repository.PaymentGateway    = (*MockPaymentGateway)(nil)
)
