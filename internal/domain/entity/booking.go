package entity

import (
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/validation"
)

// Booking은 결제 완료된 투어 예약입니다
type Booking struct {
	Base      `bson:",inline"`
	Tour      Ref[TourSummary] `bson:"tour" json:"tour" validate:"required" msg:"required=Booking must belong to a Tour!"`
	User      Ref[UserSummary] `bson:"user" json:"user" validate:"required" msg:"required=Booking must belong to a User!"`
	Price     float64          `bson:"price" json:"price" validate:"required,gt=0" msg:"required=Booking must have a price."`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	Paid      bool             `bson:"paid" json:"paid"`
	SessionID string           `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
}

// Prepare는 생성 시각과 결제 여부 기본값을 채웁니다
func (b *Booking) Prepare(isNew bool, now time.Time) {
	if isNew {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.Paid = true
	}
}

// Validate는 예약 필드를 검증합니다
func (b *Booking) Validate() error {
	return validation.Struct(b)
}
