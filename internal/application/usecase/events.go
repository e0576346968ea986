package usecase

import (
	"context"

	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// publish는 이벤트를 발행합니다. 발행 실패는 요청을 실패시키지 않고 경고로 기록합니다
func publish(ctx context.Context, pub event.Publisher, t event.Type, aggregateID string, data interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event.New(t, aggregateID, data)); err != nil {
		logger.Warn(ctx, "failed to publish event",
			zap.String("event_type", string(t)),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err),
		)
	}
}
