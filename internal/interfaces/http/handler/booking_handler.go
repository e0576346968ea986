package handler

import (
	"io"
	"net/http"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// StripeSignatureHeader는 webhook 서명 헤더 이름입니다
const StripeSignatureHeader = "Stripe-Signature"

// BookingHandler는 결제 세션과 webhook HTTP 핸들러입니다
type BookingHandler struct {
	bookings *usecase.BookingUseCase
	baseURL  string
}

// NewBookingHandler는 새로운 BookingHandler를 생성합니다
// baseURL이 비어 있으면 요청의 host를 사용합니다
func NewBookingHandler(bookings *usecase.BookingUseCase, baseURL string) *BookingHandler {
	return &BookingHandler{bookings: bookings, baseURL: baseURL}
}

// CheckoutSession godoc
// @Summary      Create a checkout session for a tour
// @Tags         bookings
// @Produce      json
// @Param        tourId  path      string  true  "Tour ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      404     {object}  ErrorResponse
// @Failure      503     {object}  ErrorResponse
// @Router       /api/v1/bookings/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	base := h.baseURL
	if base == "" {
		base = baseURL(c)
	}

	session, err := h.bookings.CheckoutSession(c.Request.Context(), user, c.Param(TourIDParam), base)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "session": session})
}

// Webhook godoc
// @Summary      Payment provider webhook
// @Description  Verifies the signature and records a booking for completed checkouts
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /api/v1/bookings/webhook-checkout [post]
func (h *BookingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, apperrors.Validation("Webhook error: "+err.Error()).WithCause(err))
		return
	}

	if err := h.bookings.HandleWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader)); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
