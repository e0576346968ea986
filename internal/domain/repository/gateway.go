package repository

import (
	"context"
	"time"
)

// Mailer는 트랜잭션 메일 발송 인터페이스입니다
type Mailer interface {
	SendWelcome(ctx context.Context, name, email, url string) error
	SendPasswordReset(ctx context.Context, name, email, url string, validFor time.Duration) error
}

// ImageStore는 이미지 파일 저장소 인터페이스입니다
type ImageStore interface {
	// Put은 folder/name 위치에 이미지를 저장합니다
	Put(ctx context.Context, folder, name, contentType string, data []byte) error
}

// CheckoutRequest는 투어 결제 세션 요청입니다
type CheckoutRequest struct {
	TourID        string
	TourName      string
	Summary       string
	ImageURL      string
	Price         float64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession은 생성된 결제 세션입니다
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedCheckout은 완료된 결제 세션 정보입니다
type CompletedCheckout struct {
	SessionID     string
	TourID        string
	CustomerEmail string
	Price         float64
}

// PaymentGateway는 결제 게이트웨이 인터페이스입니다
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook은 서명을 검증하고 완료된 결제를 반환합니다. 관련 없는 이벤트는 nil입니다
	ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error)
}
