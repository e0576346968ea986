package handler

import (
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/gin-gonic/gin"
)

// TourIDParam은 중첩 리뷰 경로의 투어 ID 파라미터 이름입니다
const TourIDParam = "tourId"

// NestedTour는 /tours/:id/reviews 경로의 id를 tourId 파라미터로 옮깁니다
func NestedTour(c *gin.Context) {
	c.AddParam(TourIDParam, c.Param("id"))
	c.Next()
}

// ReviewScope는 중첩 경로이면 리뷰 목록을 해당 투어로 한정합니다
func ReviewScope(c *gin.Context) (map[string]interface{}, error) {
	raw := c.Param(TourIDParam)
	if raw == "" {
		return nil, nil
	}
	tourID, err := entity.ParseID(raw)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"tour": tourID}, nil
}

// SetReviewRefs는 본문에 없으면 투어를 경로의 투어로, 작성자를 현재 사용자로 채웁니다
func SetReviewRefs(c *gin.Context, review *entity.Review) error {
	if review.Tour.IsZero() {
		if raw := c.Param(TourIDParam); raw != "" {
			tourID, err := entity.ParseID(raw)
			if err != nil {
				return err
			}
			review.Tour = entity.NewRef[entity.TourSummary](tourID)
		}
	}
	if review.User.IsZero() {
		user, err := principal(c)
		if err != nil {
			return err
		}
		review.User = entity.NewRef[entity.UserSummary](user.ID)
	}
	return nil
}
