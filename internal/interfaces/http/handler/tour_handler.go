package handler

import (
	"net/http"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// TourHandler는 투어 전용 HTTP 핸들러입니다. CRUD는 ResourceHandler가 담당합니다
type TourHandler struct {
	tours *usecase.TourUseCase
}

// NewTourHandler는 새로운 TourHandler를 생성합니다
func NewTourHandler(tours *usecase.TourUseCase) *TourHandler {
	return &TourHandler{tours: tours}
}

// AliasTopTours는 평점 높고 저렴한 투어 5개 조회 쿼리를 설정합니다
func (h *TourHandler) AliasTopTours(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set(query.KeyLimit, "5")
	q.Set(query.KeySort, "-ratingsAverage,price")
	q.Set(query.KeyFields, "name,price,ratingsAverage,summary,difficulty")
	c.Request.URL.RawQuery = q.Encode()
	c.Next()
}

// Stats godoc
// @Summary      Tour statistics grouped by difficulty
// @Tags         tours
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/tours/tour-stats [get]
func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.tours.Stats(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "stats": stats})
}

// MonthlyPlan godoc
// @Summary      Tour starts per month of a year
// @Tags         tours
// @Produce      json
// @Param        year  path      int  true  "Year"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  ErrorResponse
// @Router       /api/v1/tours/monthly-plan/{year} [get]
func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	plan, err := h.tours.MonthlyPlan(c.Request.Context(), c.Param("year"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "plan": plan})
}

// Within godoc
// @Summary      Tours within a distance of a point
// @Tags         tours
// @Produce      json
// @Param        distance  path      number  true  "Radius"
// @Param        latlng    path      string  true  "lat,lng"
// @Param        unit      path      string  true  "mi or km"
// @Success      200       {object}  Response
// @Failure      400       {object}  ErrorResponse
// @Router       /api/v1/tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func (h *TourHandler) Within(c *gin.Context) {
	q, err := usecase.ParseGeoQuery(c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		abort(c, err)
		return
	}

	tours, err := h.tours.Within(c.Request.Context(), q)
	if err != nil {
		abort(c, err)
		return
	}

	list(c, tours, len(tours))
}

// Distances godoc
// @Summary      Distance from a point to every tour
// @Tags         tours
// @Produce      json
// @Param        latlng  path      string  true  "lat,lng"
// @Param        unit    path      string  true  "mi or km"
// @Success      200     {object}  Response
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/tours/distances/{latlng}/unit/{unit} [get]
func (h *TourHandler) Distances(c *gin.Context) {
	q, err := usecase.ParseGeoQuery("", c.Param("latlng"), c.Param("unit"))
	if err != nil {
		abort(c, err)
		return
	}

	distances, err := h.tours.Distances(c.Request.Context(), q)
	if err != nil {
		abort(c, err)
		return
	}

	list(c, distances, len(distances))
}

// UpdateTour godoc
// @Summary      Update a tour, optionally uploading imageCover and up to 3 images
// @Tags         tours
// @Accept       json,mpfd
// @Produce      json
// @Param        id   path      string  true  "Tour ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/tours/{id} [patch]
func (h *TourHandler) UpdateTour(c *gin.Context) {
	var (
		patch []byte
		imgs  dto.TourImagesRequest
		err   error
	)

	if isMultipart(c) {
		form, ferr := c.MultipartForm()
		if ferr != nil {
			abort(c, apperrors.Validation(ferr.Error()).WithCause(ferr))
			return
		}
		covers, ferr := formFiles(form, "imageCover", 1)
		if ferr != nil {
			abort(c, ferr)
			return
		}
		if len(covers) == 1 {
			imgs.Cover = &covers[0]
		}
		if imgs.Images, err = formFiles(form, "images", MaxTourImages); err != nil {
			abort(c, err)
			return
		}
		if patch, err = formPatch(form); err != nil {
			abort(c, apperrors.Internal(err))
			return
		}
	} else if patch, err = readBody(c); err != nil {
		abort(c, err)
		return
	}

	tour, err := h.tours.UpdateWithImages(c.Request.Context(), c.Param("id"), patch, &imgs)
	if err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusOK, Response{Data: data(tour)})
}

