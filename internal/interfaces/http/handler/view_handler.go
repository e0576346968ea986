package handler

import (
	"net/http"
	"net/url"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ViewHandler는 서버 렌더링 페이지 핸들러입니다
type ViewHandler struct {
	tours    *usecase.TourUseCase
	bookings *usecase.BookingUseCase
	users    *usecase.UserUseCase
}

// NewViewHandler는 새로운 ViewHandler를 생성합니다
func NewViewHandler(tours *usecase.TourUseCase, bookings *usecase.BookingUseCase, users *usecase.UserUseCase) *ViewHandler {
	return &ViewHandler{tours: tours, bookings: bookings, users: users}
}

// page는 LoggedIn/Protect가 설정한 사용자를 템플릿 데이터에 추가하여 렌더링합니다
func page(c *gin.Context, name string, values gin.H) {
	if user, ok := middleware.CurrentUser(c); ok {
		if _, set := values[middleware.ViewUserKey]; !set {
			values[middleware.ViewUserKey] = user
		}
	}
	c.HTML(http.StatusOK, name, values)
}

// Overview는 전체 투어 페이지를 렌더링합니다
func (h *ViewHandler) Overview(c *gin.Context) {
	opts := query.DefaultOptions()
	opts.DefaultLimit = query.MaxLimit
	tours, err := h.tours.List(c.Request.Context(), query.Build(url.Values{}, opts))
	if err != nil {
		abort(c, err)
		return
	}

	page(c, "overview.html", gin.H{"title": "All Tours", "tours": tours})
}

// Tour는 투어 상세 페이지를 렌더링합니다
func (h *ViewHandler) Tour(c *gin.Context) {
	tour, err := h.tours.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abort(c, err)
		return
	}

	page(c, "tour.html", gin.H{"title": tour.Name + " Tour", "tour": tour})
}

// Login은 로그인 페이지를 렌더링합니다
func (h *ViewHandler) Login(c *gin.Context) {
	page(c, "login.html", gin.H{"title": "Log into your account"})
}

// Account는 내 계정 페이지를 렌더링합니다
func (h *ViewHandler) Account(c *gin.Context) {
	page(c, "account.html", gin.H{"title": "Your account"})
}

// MyTours는 현재 사용자가 예약한 투어 페이지를 렌더링합니다
func (h *ViewHandler) MyTours(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	tours, err := h.bookings.MyTours(c.Request.Context(), user)
	if err != nil {
		abort(c, err)
		return
	}

	page(c, "overview.html", gin.H{"title": "My Tours", "tours": tours})
}

// SubmitUserData는 계정 페이지 form으로 이름과 이메일을 변경합니다
func (h *ViewHandler) SubmitUserData(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	name, email := c.PostForm("name"), c.PostForm("email")
	updated, err := h.users.UpdateMe(c.Request.Context(), user, &dto.UpdateMeRequest{Name: &name, Email: &email})
	if err != nil {
		abort(c, err)
		return
	}

	page(c, "account.html", gin.H{"title": "Your account", middleware.ViewUserKey: updated})
}
