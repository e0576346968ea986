package entity

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/slug"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultRatingsAverage는 리뷰가 없는 투어의 평점입니다
	DefaultRatingsAverage = 4.5
)

// Location은 GeoJSON Point 위치입니다
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour는 투어 리소스입니다
type Tour struct {
	Base            `bson:",inline"`
	Name            string             `bson:"name" json:"name" validate:"required,min=10,max=40" msg:"required=A tour must have a name;min=A tour name must have minimum 10 character;max=A tour name can have maximum 40 character"`
	Slug            string             `bson:"slug" json:"slug"`
	Duration        float64            `bson:"duration" json:"duration" validate:"required,gt=0" msg:"required=A tour must have a duration"`
	MaxGroupSize    int                `bson:"maxGroupSize" json:"maxGroupSize" validate:"required,gt=0" msg:"required=A tour must have a maxGroupSize"`
	Difficulty      string             `bson:"difficulty" json:"difficulty" validate:"required,oneof=easy medium difficult" msg:"required=A tour must have a difficulty;oneof=Difficulty must be one of \"easy\", \"medium\", \"difficult\""`
	RatingsAverage  float64            `bson:"ratingsAverage" json:"ratingsAverage" validate:"gte=1,lte=5" msg:"gte=Ratings must be above 0;lte=Ratings must be less than or equal to 5"`
	RatingsQuantity int                `bson:"ratingsQuantity" json:"ratingsQuantity" validate:"gte=0"`
	Price           float64            `bson:"price" json:"price" validate:"required,gt=0" msg:"required=A tour must have a price"`
	PriceDiscount   float64            `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price" msg:"ltfield=Discount price should be less the retail price."`
	Summary         string             `bson:"summary" json:"summary" validate:"required" msg:"required=A tour must have a summary"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string             `bson:"imageCover" json:"imageCover" validate:"required" msg:"required=A tour must have an imageCover"`
	Images          []string           `bson:"images" json:"images"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	StartDates      []time.Time        `bson:"startDates" json:"startDates"`
	SecretTour      bool               `bson:"secretTour" json:"secretTour"`
	StartLocation   *Location          `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []Location         `bson:"locations" json:"locations"`
	Guides          []Ref[UserSummary] `bson:"guides" json:"guides"`

	// 읽기 시 파생되는 필드
	DurationWeeks float64   `bson:"-" json:"durationWeeks,omitempty"`
	Reviews       []*Review `bson:"-" json:"reviews,omitempty"`
}

// Prepare는 slug와 기본값을 채웁니다
func (t *Tour) Prepare(isNew bool, now time.Time) {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = slug.Make(t.Name)
	t.RatingsAverage = RoundRating(t.RatingsAverage)

	if isNew {
		if t.RatingsAverage == 0 {
			t.RatingsAverage = DefaultRatingsAverage
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
	}

	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.Guides == nil {
		t.Guides = []Ref[UserSummary]{}
	}
}

// Validate는 투어 필드를 검증합니다
func (t *Tour) Validate() error {
	if err := validation.Struct(t); err != nil {
		return err
	}
	if t.StartLocation != nil && len(t.StartLocation.Coordinates) != 0 && len(t.StartLocation.Coordinates) != 2 {
		return apperrors.Validation(apperrors.MsgInvalidInputData+": startLocation must be [lng, lat]", "startLocation")
	}
	return nil
}

// Derive는 읽기 시 파생 필드를 계산합니다
func (t *Tour) Derive() {
	t.DurationWeeks = t.Duration / 7
}

// Brief는 확장(populate)용 요약 정보를 반환합니다
func (t *Tour) Brief() *TourSummary {
	return &TourSummary{ID: t.ID, Name: t.Name, Slug: t.Slug, ImageCover: t.ImageCover, Price: t.Price}
}

// RoundRating은 평점을 소수점 한 자리로 반올림합니다
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// TourSummary는 다른 리소스에 확장되는 투어 정보입니다
type TourSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Slug       string             `bson:"slug,omitempty" json:"slug,omitempty"`
	ImageCover string             `bson:"imageCover,omitempty" json:"imageCover,omitempty"`
	Price      float64            `bson:"price,omitempty" json:"price,omitempty"`
}

// TourStats는 난이도별 투어 통계입니다
type TourStats struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlan은 월별 투어 시작 계획입니다
type MonthlyPlan struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourDistance는 기준점으로부터 투어까지의 거리입니다
type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

// RatingSummary는 투어의 리뷰 집계 결과입니다
type RatingSummary struct {
	Quantity int
	Average  float64
}

// Apply는 집계 결과를 투어에 반영할 값으로 변환합니다
// 리뷰가 없으면 0개와 기본 평점입니다
func (r RatingSummary) Apply() (int, float64) {
	if r.Quantity == 0 {
		return 0, DefaultRatingsAverage
	}
	return r.Quantity, RoundRating(r.Average)
}
