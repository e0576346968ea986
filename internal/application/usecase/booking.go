package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"go.uber.org/zap"
)

// MsgPaymentsDisabled는 결제가 비활성화된 경우의 메시지입니다
const MsgPaymentsDisabled = "Online payments are currently unavailable."

// BookingUseCase는 예약과 결제 유즈케이스입니다
type BookingUseCase struct {
	*ResourceUseCase[*entity.Booking]
	bookings  repository.BookingRepository
	tours     repository.TourRepository
	users     repository.UserRepository
	gateway   repository.PaymentGateway
	publisher event.Publisher
}

// NewBookingUseCase는 새로운 BookingUseCase를 생성합니다
// gateway가 nil이면 결제 세션을 만들 수 없습니다
func NewBookingUseCase(bookings repository.BookingRepository, tours repository.TourRepository, users repository.UserRepository, gateway repository.PaymentGateway, publisher event.Publisher) *BookingUseCase {
	uc := &BookingUseCase{
		bookings:  bookings,
		tours:     tours,
		users:     users,
		gateway:   gateway,
		publisher: publisher,
	}
	uc.ResourceUseCase = NewResourceUseCase[*entity.Booking]("bookings", bookings,
		func() *entity.Booking { return &entity.Booking{} },
		WithAfterWrite[*entity.Booking](func(ctx context.Context, op WriteOp, b *entity.Booking) error {
			if op == OpCreate {
				publish(ctx, uc.publisher, event.BookingCreated, b.ID.Hex(), map[string]interface{}{
					"tour":  b.Tour.ID.Hex(),
					"user":  b.User.ID.Hex(),
					"price": b.Price,
				})
			}
			return nil
		}),
	)
	return uc
}

func (uc *BookingUseCase) disabled() error {
	return apperrors.Unavailable(MsgPaymentsDisabled, nil).WithStatus(http.StatusServiceUnavailable)
}

// CheckoutSession은 투어 결제 세션을 생성합니다
// baseURL은 성공/취소 주소와 이미지 주소의 기준입니다
func (uc *BookingUseCase) CheckoutSession(ctx context.Context, principal *entity.User, tourID, baseURL string) (*repository.CheckoutSession, error) {
	ctx, span := tracing.StartSpan(ctx, "BookingUseCase.CheckoutSession")
	defer span.End()

	if uc.gateway == nil {
		return nil, uc.disabled()
	}

	tour, err := uc.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	session, err := uc.gateway.CreateCheckoutSession(ctx, repository.CheckoutRequest{
		TourID:        tour.ID.Hex(),
		TourName:      tour.Name,
		Summary:       tour.Summary,
		ImageURL:      baseURL + "/img/tours/" + tour.ImageCover,
		Price:         tour.Price,
		CustomerEmail: principal.Email,
		SuccessURL:    baseURL + "/my-tours",
		CancelURL:     baseURL + "/tour/" + tour.Slug,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return session, nil
}

// HandleWebhook은 결제 완료 웹훅으로 예약을 생성합니다
// 같은 세션의 중복 전달은 무시합니다
func (uc *BookingUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracing.StartSpan(ctx, "BookingUseCase.HandleWebhook")
	defer span.End()

	if uc.gateway == nil {
		return uc.disabled()
	}

	completed, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil || completed == nil {
		return err
	}

	exists, err := uc.bookings.ExistsBySession(ctx, completed.SessionID)
	if err != nil {
		return err
	}
	if exists {
		logger.Info(ctx, "checkout session already booked", zap.String("session_id", completed.SessionID))
		return nil
	}

	user, err := uc.users.FindByEmail(ctx, completed.CustomerEmail)
	if err != nil {
		return err
	}
	tourID, err := entity.ParseID(completed.TourID)
	if err != nil {
		return err
	}

	booking := &entity.Booking{
		Tour:      entity.NewRef[entity.TourSummary](tourID),
		User:      entity.NewRef[entity.UserSummary](user.ID),
		Price:     completed.Price,
		SessionID: completed.SessionID,
	}
	return uc.Create(ctx, booking)
}

// MyTours는 사용자가 예약한 투어 목록을 반환합니다
func (uc *BookingUseCase) MyTours(ctx context.Context, principal *entity.User) ([]*entity.Tour, error) {
	ctx, span := tracing.StartSpan(ctx, "BookingUseCase.MyTours")
	defer span.End()

	bookings, err := uc.bookings.FindByUser(ctx, principal.ID.Hex())
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.Tour.ID.Hex())
	}
	if len(ids) == 0 {
		return []*entity.Tour{}, nil
	}
	return uc.tours.FindByIDs(ctx, ids)
}
