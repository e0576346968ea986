package entity

import (
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/validation"
)

// Review는 투어 리뷰 리소스입니다
// 한 사용자는 한 투어에 하나의 리뷰만 작성할 수 있습니다
type Review struct {
	Base      `bson:",inline"`
	Review    string           `bson:"review" json:"review" validate:"required" msg:"required=Review can not be empty!"`
	Rating    float64          `bson:"rating" json:"rating" validate:"required,gte=1,lte=5" msg:"required=Ratings must be above 0.;gte=Ratings must be above 0.;lte=Ratings must be less than or equal to 5."`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	Tour      Ref[TourSummary] `bson:"tour" json:"tour" validate:"required" msg:"required=Review must belong to a tour."`
	User      Ref[UserSummary] `bson:"user" json:"user" validate:"required" msg:"required=Review must belong to an user."`
}

// Prepare는 생성 시각을 채웁니다
func (r *Review) Prepare(isNew bool, now time.Time) {
	r.Review = strings.TrimSpace(r.Review)
	if isNew && r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// Validate는 리뷰 필드를 검증합니다
func (r *Review) Validate() error {
	return validation.Struct(r)
}
