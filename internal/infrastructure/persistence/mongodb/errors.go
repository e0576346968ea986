package mongodb

import (
	"errors"
	"fmt"
	"regexp"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// dupKeyPattern은 E11000 메시지의 "dup key: { field: value }" 부분입니다
var dupKeyPattern = regexp.MustCompile(`dup key: \{\s*([^:\s]+)\s*:\s*"?((?:[^"\\]|\\.)*?)"?\s*\}`)

// classify는 드라이버 에러를 AppError로 분류합니다
// 이미 분류된 에러는 그대로 반환합니다
func classify(op, collection string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.NotFound(apperrors.MsgNoDocument).WithCause(err)
	case mongo.IsDuplicateKeyError(err):
		return apperrors.Conflict(duplicateMessage(err)).WithCause(err)
	default:
		return apperrors.Internal(fmt.Errorf("failed to %s %s: %w", op, collection, err))
	}
}

// duplicateMessage는 중복 키 에러를 사용자 메시지로 변환합니다
func duplicateMessage(err error) string {
	match := dupKeyPattern.FindStringSubmatch(err.Error())
	if match == nil {
		return "Duplicate field value, Please use another value."
	}
	field, value := match[1], match[2]
	return fmt.Sprintf("Duplicate %s: '%s', Please use another %s.", field, value, field)
}
