package dto

import "github.com/YouSangSon/tour-service/internal/pkg/upload"

// 거리 단위
const (
	UnitMiles      = "mi"
	UnitKilometers = "km"
)

// GeoQuery는 위치 기반 투어 조회 요청입니다
type GeoQuery struct {
	Lat      float64
	Lng      float64
	Distance float64
	Unit     string
}

// TourImagesRequest는 투어 이미지 업로드 요청입니다
type TourImagesRequest struct {
	Cover  *upload.File
	Images []upload.File
}

// Empty는 업로드할 이미지가 없는지 확인합니다
func (r *TourImagesRequest) Empty() bool {
	return r == nil || (r.Cover == nil && len(r.Images) == 0)
}
