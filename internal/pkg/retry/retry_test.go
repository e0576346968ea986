package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	// Arrange
	attempts := 0

	// Act
	err := retry.Do(context.Background(), retry.DefaultConfig(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	// Arrange
	attempts := 0

	// Act
	err := retry.Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_StopsOnAppError(t *testing.T) {
	// Arrange
	attempts := 0
	notFound := apperrors.NotFound(apperrors.MsgNoDocument)

	// Act
	err := retry.Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("lookup timeout: %w", notFound)
	})

	// Assert
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, attempts)
}

func TestDo_MaxAttemptsExceeded(t *testing.T) {
	// Arrange
	attempts := 0

	// Act
	err := retry.Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		attempts++
		return errors.New("dial tcp: connection refused")
	})

	// Assert
	assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(3), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithValue(t *testing.T) {
	attempts := 0

	got, err := retry.DoWithValue(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("i/o timeout")
		}
		return "tour", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "tour", got)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"app error", apperrors.Conflict("dup"), false},
		{"internal wrapping transient", apperrors.Internal(errors.New("read: connection reset by peer")), true},
		{"internal wrapping defect", apperrors.Internal(errors.New("nil map")), false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:27017: connection refused"), true},
		{"plain", errors.New("validation failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsRetryable(tt.err))
		})
	}
}
