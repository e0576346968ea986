package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestParseGeoQuery(t *testing.T) {
	tests := []struct {
		name     string
		distance string
		latlng   string
		unit     string
		want     dto.GeoQuery
		wantErr  string
	}{
		{
			name:     "miles",
			distance: "233",
			latlng:   "34.111745,-118.113491",
			unit:     "mi",
			want:     dto.GeoQuery{Lat: 34.111745, Lng: -118.113491, Distance: 233, Unit: "mi"},
		},
		{
			name:   "distances route has no radius",
			latlng: "34.1,-118.1",
			unit:   "km",
			want:   dto.GeoQuery{Lat: 34.1, Lng: -118.1, Unit: "km"},
		},
		{
			name:     "missing comma",
			distance: "10",
			latlng:   "34.1",
			unit:     "km",
			wantErr:  usecase.MsgInvalidLatLng,
		},
		{
			name:     "latitude out of range",
			distance: "10",
			latlng:   "134.1,-118.1",
			unit:     "km",
			wantErr:  usecase.MsgInvalidLatLng,
		},
		{
			name:     "bad distance",
			distance: "far",
			latlng:   "34.1,-118.1",
			unit:     "km",
			wantErr:  "Please provide a valid distance.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.ParseGeoQuery(tt.distance, tt.latlng, tt.unit)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperrors.GetHTTPStatus(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTourWithin_ConvertsDistanceToRadians(t *testing.T) {
	repo := new(MockTourRepository)
	uc := usecase.NewTourUseCase(repo, nil, time.Minute, nil)

	repo.On("Within", mock.Anything, -118.1, 34.1, 1.0).Return([]*entity.Tour{}, nil)

	_, err := uc.Within(context.Background(), dto.GeoQuery{Lat: 34.1, Lng: -118.1, Distance: 3963.2, Unit: dto.UnitMiles})
	require.NoError(t, err)
	_, err = uc.Within(context.Background(), dto.GeoQuery{Lat: 34.1, Lng: -118.1, Distance: 6378.1, Unit: dto.UnitKilometers})
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "Within", 2)
}

func TestTourDistances_UsesUnitMultiplier(t *testing.T) {
	repo := new(MockTourRepository)
	uc := usecase.NewTourUseCase(repo, nil, time.Minute, nil)

	repo.On("Distances", mock.Anything, -118.1, 34.1, 0.000621371).Return([]entity.TourDistance{{Name: "The Sea Explorer", Distance: 12.3}}, nil)

	got, err := uc.Distances(context.Background(), dto.GeoQuery{Lat: 34.1, Lng: -118.1, Unit: dto.UnitMiles})

	require.NoError(t, err)
	require.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestTourStats_CacheAside(t *testing.T) {
	t.Run("hit skips store", func(t *testing.T) {
		repo := new(MockTourRepository)
		cache := new(MockCacheRepository)
		uc := usecase.NewTourUseCase(repo, cache, time.Minute, nil)

		cache.On("Get", mock.Anything, "tour-stats", mock.Anything).Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]entity.TourStats)
			*dest = []entity.TourStats{{Difficulty: "easy", NumTours: 4}}
		}).Return(true, nil)

		stats, err := uc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 4, stats[0].NumTours)
		repo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
	})

	t.Run("miss loads and stores", func(t *testing.T) {
		repo := new(MockTourRepository)
		cache := new(MockCacheRepository)
		uc := usecase.NewTourUseCase(repo, cache, 5*time.Minute, nil)
		stats := []entity.TourStats{{Difficulty: "medium", NumTours: 3}}

		cache.On("Get", mock.Anything, "tour-stats", mock.Anything).Return(false, nil)
		repo.On("Stats", mock.Anything, 4.5).Return(stats, nil)
		cache.On("Set", mock.Anything, "tour-stats", stats, 5*time.Minute).Return(nil)

		got, err := uc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, stats, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		repo := new(MockTourRepository)
		cache := new(MockCacheRepository)
		uc := usecase.NewTourUseCase(repo, cache, time.Minute, nil)

		cache.On("Get", mock.Anything, "tour-stats", mock.Anything).Return(false, errors.New("redis down"))
		repo.On("Stats", mock.Anything, 4.5).Return([]entity.TourStats{}, nil)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := uc.Stats(context.Background())

		require.NoError(t, err)
	})
}

func TestTourWrite_InvalidatesStats(t *testing.T) {
	repo := new(MockTourRepository)
	cache := new(MockCacheRepository)
	uc := usecase.NewTourUseCase(repo, cache, time.Minute, nil)

	repo.On("Delete", mock.Anything, tourHex).Return(storedTour(t), nil)
	cache.On("Delete", mock.Anything, []string{"tour-stats"}).Return(nil)

	require.NoError(t, uc.Delete(context.Background(), tourHex))
	cache.AssertExpectations(t)
}

func TestTourBySlug_NotFoundMessage(t *testing.T) {
	repo := new(MockTourRepository)
	uc := usecase.NewTourUseCase(repo, nil, time.Minute, nil)
	repo.On("FindBySlug", mock.Anything, "the-lost-tour").Return(nil, apperrors.NotFound(apperrors.MsgNoDocument))

	_, err := uc.BySlug(context.Background(), "the-lost-tour")

	assert.Equal(t, http.StatusNotFound, apperrors.GetHTTPStatus(err))
	assert.Contains(t, err.Error(), usecase.MsgNoTourByName)
}

func TestTourMonthlyPlan_RejectsBadYear(t *testing.T) {
	repo := new(MockTourRepository)
	uc := usecase.NewTourUseCase(repo, nil, time.Minute, nil)

	_, err := uc.MonthlyPlan(context.Background(), "twenty")

	assert.Equal(t, http.StatusBadRequest, apperrors.GetHTTPStatus(err))
	repo.AssertNotCalled(t, "MonthlyPlan", mock.Anything, mock.Anything)
}

func TestTourUpdateWithImages(t *testing.T) {
	t.Run("stores cover and gallery", func(t *testing.T) {
		// Arrange
		repo := new(MockTourRepository)
		images := new(MockImageStore)
		uc := usecase.NewTourUseCase(repo, nil, time.Minute, images)

		repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		images.On("Put", mock.Anything, upload.FolderTours, mock.AnythingOfType("string"), "image/png", pngHeader).Return(nil)

		// Act
		tour, err := uc.UpdateWithImages(context.Background(), tourHex, nil, &dto.TourImagesRequest{
			Cover:  &upload.File{Filename: "cover.png", Data: pngHeader},
			Images: []upload.File{{Data: pngHeader}, {Data: pngHeader}},
		})

		// Assert
		require.NoError(t, err)
		assert.Regexp(t, `^tour-`+tourHex+`-\d+-cover\.png$`, tour.ImageCover)
		require.Len(t, tour.Images, 2)
		assert.Regexp(t, `-2\.png$`, tour.Images[1])
		images.AssertNumberOfCalls(t, "Put", 3)
	})

	t.Run("rejects non image before upload", func(t *testing.T) {
		repo := new(MockTourRepository)
		images := new(MockImageStore)
		uc := usecase.NewTourUseCase(repo, nil, time.Minute, images)

		repo.On("FindByID", mock.Anything, tourHex, mock.Anything).Return(storedTour(t), nil)

		_, err := uc.UpdateWithImages(context.Background(), tourHex, nil, &dto.TourImagesRequest{
			Cover:  &upload.File{Data: pngHeader},
			Images: []upload.File{{Data: []byte("plain text")}},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), upload.MsgNotAnImage)
		images.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
