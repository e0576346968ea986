package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"github.com/YouSangSon/tour-service/internal/pkg/upload"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// 투어 조회 메시지
const (
	MsgInvalidLatLng = "Please provide latitude and longitude in the format lat,lng."
	MsgNoTourByName  = "There is no tour with that name."
	MsgInvalidYear   = "Please provide a valid year."
)

const (
	statsCacheKey  = "tour-stats"
	statsMinRating = 4.5

	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
	metersToMiles    = 0.000621371
	metersToKm       = 0.001
)

// TourUseCase는 투어 유즈케이스입니다
type TourUseCase struct {
	*ResourceUseCase[*entity.Tour]
	repo     repository.TourRepository
	cache    repository.CacheRepository
	statsTTL time.Duration
	images   repository.ImageStore
	now      func() time.Time
}

// NewTourUseCase는 새로운 TourUseCase를 생성합니다
// cache가 nil이면 통계를 캐시하지 않습니다
func NewTourUseCase(repo repository.TourRepository, cache repository.CacheRepository, statsTTL time.Duration, images repository.ImageStore) *TourUseCase {
	uc := &TourUseCase{
		repo:     repo,
		cache:    cache,
		statsTTL: statsTTL,
		images:   images,
		now:      time.Now,
	}
	uc.ResourceUseCase = NewResourceUseCase[*entity.Tour]("tours", repo,
		func() *entity.Tour { return &entity.Tour{} },
		WithAfterWrite[*entity.Tour](func(ctx context.Context, _ WriteOp, _ *entity.Tour) error {
			uc.InvalidateStats(ctx)
			return nil
		}),
	)
	return uc
}

// BySlug는 slug로 투어를 리뷰와 함께 조회합니다
func (uc *TourUseCase) BySlug(ctx context.Context, slug string) (*entity.Tour, error) {
	ctx, span := tracing.StartSpan(ctx, "TourUseCase.BySlug")
	defer span.End()

	tour, err := guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) (*entity.Tour, error) {
		return uc.repo.FindBySlug(ctx, slug)
	})
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, apperrors.NotFound(MsgNoTourByName)
	}
	return tour, err
}

// Stats는 평점 4.5 이상 투어의 난이도별 통계를 반환합니다
func (uc *TourUseCase) Stats(ctx context.Context) ([]entity.TourStats, error) {
	ctx, span := tracing.StartSpan(ctx, "TourUseCase.Stats")
	defer span.End()

	if uc.cache != nil {
		var cached []entity.TourStats
		found, err := uc.cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			logger.Warn(ctx, "failed to read stats cache", zap.Error(err))
		}
		if found {
			return cached, nil
		}
	}

	stats, err := guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) ([]entity.TourStats, error) {
		return uc.repo.Stats(ctx, statsMinRating)
	})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, statsCacheKey, stats, uc.statsTTL); err != nil {
			logger.Warn(ctx, "failed to cache stats", zap.Error(err))
		}
	}
	return stats, nil
}

// InvalidateStats는 통계 캐시를 비웁니다
func (uc *TourUseCase) InvalidateStats(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, statsCacheKey); err != nil {
		logger.Warn(ctx, "failed to invalidate stats cache", zap.Error(err))
	}
}

// MonthlyPlan은 연도별 월간 투어 시작 계획을 반환합니다
func (uc *TourUseCase) MonthlyPlan(ctx context.Context, year string) ([]entity.MonthlyPlan, error) {
	ctx, span := tracing.StartSpan(ctx, "TourUseCase.MonthlyPlan")
	defer span.End()

	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return nil, apperrors.Validation(MsgInvalidYear)
	}
	tracing.SetAttributes(ctx, attribute.Int("year", y))

	return guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) ([]entity.MonthlyPlan, error) {
		return uc.repo.MonthlyPlan(ctx, y)
	})
}

// ParseGeoQuery는 경로 파라미터를 위치 조회 요청으로 변환합니다
// distance가 빈 문자열이면 거리 제한이 없는 조회입니다
func ParseGeoQuery(distance, latlng, unit string) (dto.GeoQuery, error) {
	q := dto.GeoQuery{Unit: unit}

	latStr, lngStr, ok := strings.Cut(latlng, ",")
	if !ok {
		return q, apperrors.Validation(MsgInvalidLatLng)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return q, apperrors.Validation(MsgInvalidLatLng)
	}
	q.Lat, q.Lng = lat, lng

	if distance != "" {
		d, err := strconv.ParseFloat(distance, 64)
		if err != nil || d < 0 {
			return q, apperrors.Validation("Please provide a valid distance.")
		}
		q.Distance = d
	}
	return q, nil
}

// Within은 중심점에서 거리 안에 시작 위치가 있는 투어를 반환합니다
func (uc *TourUseCase) Within(ctx context.Context, q dto.GeoQuery) ([]*entity.Tour, error) {
	ctx, span := tracing.StartSpan(ctx, "TourUseCase.Within")
	defer span.End()

	radius := q.Distance / earthRadiusKm
	if q.Unit == dto.UnitMiles {
		radius = q.Distance / earthRadiusMiles
	}

	return guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) ([]*entity.Tour, error) {
		return uc.repo.Within(ctx, q.Lng, q.Lat, radius)
	})
}

// Distances는 중심점에서 각 투어까지의 거리를 반환합니다
func (uc *TourUseCase) Distances(ctx context.Context, q dto.GeoQuery) ([]entity.TourDistance, error) {
	ctx, span := tracing.StartSpan(ctx, "TourUseCase.Distances")
	defer span.End()

	multiplier := metersToKm
	if q.Unit == dto.UnitMiles {
		multiplier = metersToMiles
	}

	return guardRead(ctx, uc.breaker, uc.retryCfg, func(ctx context.Context) ([]entity.TourDistance, error) {
		return uc.repo.Distances(ctx, q.Lng, q.Lat, multiplier)
	})
}

// UpdateWithImages는 업로드 이미지를 저장하고 패치와 함께 투어를 갱신합니다
func (uc *TourUseCase) UpdateWithImages(ctx context.Context, id string, patch []byte, imgs *dto.TourImagesRequest) (*entity.Tour, error) {
	if imgs.Empty() {
		return uc.Update(ctx, id, patch)
	}

	ctx, span := tracing.StartSpan(ctx, "TourUseCase.UpdateWithImages")
	defer span.End()

	tour, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 업로드 전에 모든 파일이 이미지인지 확인합니다
	var cover *upload.Image
	if imgs.Cover != nil {
		if cover, err = upload.DetectImage(*imgs.Cover); err != nil {
			return nil, err
		}
	}
	images := make([]*upload.Image, 0, len(imgs.Images))
	for _, f := range imgs.Images {
		img, err := upload.DetectImage(f)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	now := uc.now()
	if cover != nil {
		name := upload.TourCoverName(id, now, cover.Ext)
		if err := uc.images.Put(ctx, upload.FolderTours, name, cover.ContentType, cover.Data); err != nil {
			return nil, apperrors.Internal(err)
		}
		tour.ImageCover = name
	}
	if len(images) > 0 {
		names := make([]string, 0, len(images))
		for i, img := range images {
			name := upload.TourImageName(id, now, i+1, img.Ext)
			if err := uc.images.Put(ctx, upload.FolderTours, name, img.ContentType, img.Data); err != nil {
				return nil, apperrors.Internal(err)
			}
			names = append(names, name)
		}
		tour.Images = names
	}

	if err := uc.Apply(ctx, tour, patch); err != nil {
		return nil, err
	}
	return tour, nil
}
