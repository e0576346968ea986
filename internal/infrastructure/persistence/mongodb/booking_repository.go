package mongodb

import (
	"context"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingRepository는 MongoDB 기반 예약 저장소입니다
type BookingRepository struct {
	*Store[*entity.Booking]
	db *mongo.Database
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

// NewBookingRepository는 새로운 예약 저장소를 생성합니다
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	r := &BookingRepository{db: db}
	r.Store = NewStore(db, CollectionBookings,
		func() *entity.Booking { return &entity.Booking{} },
		WithExpander[*entity.Booking](r.expandBookings),
	)
	return r
}

// expandBookings는 투어와 사용자를 확장합니다
func (r *BookingRepository) expandBookings(ctx context.Context, bookings []*entity.Booking, _ []string) error {
	tourIDs := make([]primitive.ObjectID, 0, len(bookings))
	userIDs := make([]primitive.ObjectID, 0, len(bookings))
	for _, b := range bookings {
		tourIDs = append(tourIDs, b.Tour.ID)
		userIDs = append(userIDs, b.User.ID)
	}

	tours, err := loadTours(ctx, r.db, tourIDs)
	if err != nil {
		return err
	}
	users, err := loadUsers(ctx, r.db, userIDs, bson.M{"name": 1, "email": 1})
	if err != nil {
		return err
	}

	for _, b := range bookings {
		b.Tour.Doc = tours[b.Tour.ID]
		b.User.Doc = users[b.User.ID]
	}
	return nil
}

// FindByUser는 사용자의 모든 예약을 최신순으로 조회합니다
func (r *BookingRepository) FindByUser(ctx context.Context, userID string) (bookings []*entity.Booking, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "find_by_user", start, err) }()

	oid, err := entity.ParseID(userID)
	if err != nil {
		return nil, err
	}

	bookings, err = r.FindMany(ctx, bson.M{"user": oid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	if err := r.expand(ctx, bookings, nil); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ExistsBySession은 결제 세션으로 생성된 예약이 있는지 확인합니다
func (r *BookingRepository) ExistsBySession(ctx context.Context, sessionID string) (bool, error) {
	count, err := r.Collection().CountDocuments(ctx, bson.M{"sessionId": sessionID}, options.Count().SetLimit(1))
	if err != nil {
		return false, classify("count in", CollectionBookings, err)
	}
	return count > 0, nil
}
