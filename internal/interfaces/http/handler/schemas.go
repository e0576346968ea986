package handler

import "github.com/YouSangSon/tour-service/internal/domain/query"

// 리소스별 쿼리 필드 타입
var (
	tourSchema = query.Schema{
		"duration":        query.Number,
		"maxGroupSize":    query.Number,
		"ratingsAverage":  query.Number,
		"ratingsQuantity": query.Number,
		"price":           query.Number,
		"priceDiscount":   query.Number,
		"secretTour":      query.Bool,
		"createdAt":       query.Time,
		"startDates":      query.Time,
		"guides":          query.ObjectID,
	}

	reviewSchema = query.Schema{
		"rating":    query.Number,
		"createdAt": query.Time,
		"tour":      query.ObjectID,
		"user":      query.ObjectID,
	}

	userSchema = query.Schema{
		"active": query.Bool,
	}

	bookingSchema = query.Schema{
		"price":     query.Number,
		"paid":      query.Bool,
		"createdAt": query.Time,
		"tour":      query.ObjectID,
		"user":      query.ObjectID,
	}
)

// tourWhitelist의 필드는 반복된 쿼리 값을 모두 유지합니다
var tourWhitelist = []string{"duration", "ratingsAverage", "ratingsQuantity", "maxGroupSize", "difficulty", "price"}

// QueryLimits는 목록 조회 페이지 크기 설정입니다
type QueryLimits struct {
	DefaultLimit int
	MaxLimit     int
}

func (l QueryLimits) options(schema query.Schema, whitelist []string) query.Options {
	opts := query.DefaultOptions()
	opts.Schema = schema
	opts.Whitelist = whitelist
	if l.DefaultLimit > 0 {
		opts.DefaultLimit = l.DefaultLimit
	}
	if l.MaxLimit > 0 {
		opts.MaxLimit = l.MaxLimit
	}
	return opts
}

// TourQuery는 투어 목록 쿼리 옵션을 반환합니다
func (l QueryLimits) TourQuery() query.Options {
	return l.options(tourSchema, tourWhitelist)
}

// ReviewQuery는 리뷰 목록 쿼리 옵션을 반환합니다
func (l QueryLimits) ReviewQuery() query.Options {
	return l.options(reviewSchema, nil)
}

// UserQuery는 사용자 목록 쿼리 옵션을 반환합니다
func (l QueryLimits) UserQuery() query.Options {
	return l.options(userSchema, nil)
}

// BookingQuery는 예약 목록 쿼리 옵션을 반환합니다
func (l QueryLimits) BookingQuery() query.Options {
	return l.options(bookingSchema, nil)
}
