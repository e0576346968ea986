package event

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type은 도메인 이벤트 종류입니다. "<aggregate>.<action>" 형식입니다
type Type string

const (
	UserSignedUp        Type = "user.signed_up"
	UserPasswordChanged Type = "user.password_changed"
	UserDeactivated     Type = "user.deactivated"
	ReviewCreated       Type = "review.created"
	ReviewUpdated       Type = "review.updated"
	ReviewDeleted       Type = "review.deleted"
	BookingCreated      Type = "booking.created"
	TourRatingsUpdated  Type = "tour.ratings_updated"
)

// Aggregate는 이벤트 종류의 aggregate 이름을 반환합니다 (예: "review")
func (t Type) Aggregate() string {
	aggregate, _, _ := strings.Cut(string(t), ".")
	return aggregate
}

// Event는 발행되는 도메인 이벤트입니다
type Event struct {
	ID          string            `json:"event_id"`
	Type        Type              `json:"event_type"`
	Timestamp   time.Time         `json:"timestamp"`
	AggregateID string            `json:"aggregate_id"`
	Data        interface{}       `json:"data,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// New는 ID와 시각이 채워진 이벤트를 생성합니다
func New(t Type, aggregateID string, data interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Timestamp:   time.Now().UTC(),
		AggregateID: aggregateID,
		Data:        data,
	}
}

// Publisher는 도메인 이벤트 발행 인터페이스입니다
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop은 이벤트를 버리는 Publisher입니다 (Kafka 비활성 시 사용)
type Nop struct{}

// Publish는 아무것도 하지 않습니다
func (Nop) Publish(context.Context, Event) error { return nil }
