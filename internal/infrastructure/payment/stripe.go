package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// SessionAPI는 Stripe checkout session 클라이언트 중 사용하는 부분입니다
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Gateway는 Stripe 결제 게이트웨이입니다
type Gateway struct {
	sessions      SessionAPI
	webhookSecret string
	currency      string
}

var _ repository.PaymentGateway = (*Gateway)(nil)

// New는 설정으로 Gateway를 생성합니다
func New(cfg config.PaymentConfig) *Gateway {
	sc := client.New(cfg.StripeSecretKey, nil)
	return NewGateway(sc.CheckoutSessions, cfg.StripeWebhookSecret, cfg.Currency)
}

// NewGateway는 주어진 session 클라이언트로 Gateway를 생성합니다
func NewGateway(sessions SessionAPI, webhookSecret, currency string) *Gateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &Gateway{sessions: sessions, webhookSecret: webhookSecret, currency: currency}
}

// CreateCheckoutSession은 투어 1건에 대한 checkout session을 생성합니다
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req repository.CheckoutRequest) (*repository.CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(req.TourName + " Tour"),
		Description: stripe.String(req.Summary),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.TourID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				UnitAmount:  stripe.Int64(ToCents(req.Price)),
				ProductData: product,
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx

	session, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &repository.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// ParseWebhook은 서명을 검증하고 checkout.session.completed 이벤트를 해석합니다
// 다른 종류의 이벤트는 nil, nil을 반환합니다
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*repository.CompletedCheckout, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("Webhook error: %v", err))
	}

	if evt.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("Webhook error: %v", err))
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	return &repository.CompletedCheckout{
		SessionID:     session.ID,
		TourID:        session.ClientReferenceID,
		CustomerEmail: email,
		Price:         FromCents(session.AmountTotal),
	}, nil
}

// ToCents는 금액을 최소 통화 단위로 변환합니다
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents는 최소 통화 단위를 금액으로 변환합니다
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
