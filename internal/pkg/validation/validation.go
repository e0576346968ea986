// Package validation은 go-playground/validator 기반 요청 검증을 제공합니다
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Validator는 공유 validator 인스턴스를 반환합니다
// 필드명은 json 태그 이름으로 보고됩니다
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct는 구조체를 검증하고 실패를 validation AppError로 변환합니다
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal(fmt.Errorf("failed to validate: %w", err))
	}

	messages := make([]string, 0, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, Message(v, fe))
		fields = append(fields, fe.Field())
	}

	return apperrors.Validation(
		fmt.Sprintf("%s: %s", apperrors.MsgInvalidInputData, strings.Join(messages, ", ")),
		fields...,
	).WithCause(err)
}

// Message는 필드 에러를 사람이 읽을 수 있는 메시지로 변환합니다
// 필드에 msg 태그가 있으면 우선 사용합니다
func Message(v interface{}, fe validator.FieldError) string {
	if msg := customMessage(v, fe); msg != "" {
		return msg
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be below %s", field, fe.Param())
	case "mongodb":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func customMessage(v interface{}, fe validator.FieldError) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}

	sf, ok := t.FieldByName(fe.StructField())
	if !ok {
		return ""
	}

	// msg:"required=A tour must have a name;max=..." 형식
	for _, part := range strings.Split(sf.Tag.Get("msg"), ";") {
		tag, msg, found := strings.Cut(part, "=")
		if found && strings.TrimSpace(tag) == fe.Tag() {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}

// DecodeError는 JSON 디코딩 실패를 validation AppError로 변환합니다
// 타입 불일치는 "Invalid <field> : <value>." 형식입니다
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperrors.Validation(fmt.Sprintf("Invalid %s : %s.", field, typeErr.Value), field).WithCause(err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.Validation(fmt.Sprintf("Invalid JSON body at offset %d", syntaxErr.Offset)).WithCause(err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return apperrors.Validation(err.Error()).WithCause(err)
}
