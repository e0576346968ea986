package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind는 닫힌 에러 분류 타입입니다
// 새로운 Kind를 추가하면 HTTPStatus, IsOperational, 렌더링 switch를 함께 수정해야 합니다
type Kind string

const (
	KindValidation      Kind = "validation_failure"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

// HTTPStatus는 Kind에 대응하는 HTTP 상태 코드를 반환합니다
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError는 애플리케이션 에러입니다
type AppError struct {
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	HTTPStatus int      `json:"-"`
	Err        error    `json:"-"`
	Fields     []string `json:"fields,omitempty"`

	operational bool
}

// Error는 error 인터페이스를 구현합니다
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap은 원본 에러를 반환합니다
func (e *AppError) Unwrap() error {
	return e.Err
}

// Status는 응답 envelope의 status 값을 반환합니다 (4xx: fail, 5xx: error)
func (e *AppError) Status() string {
	if e.HTTPStatus >= 400 && e.HTTPStatus < 500 {
		return "fail"
	}
	return "error"
}

// IsOperational은 예상된(사용자에게 노출 가능한) 에러인지 반환합니다
func (e *AppError) IsOperational() bool {
	return e.operational
}

// WithCause는 원인 에러를 설정합니다
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// WithStatus는 HTTP 상태 코드를 덮어씁니다
func (e *AppError) WithStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

func newError(kind Kind, message string) *AppError {
	return &AppError{
		Kind:        kind,
		Message:     message,
		HTTPStatus:  kind.HTTPStatus(),
		operational: kind != KindInternal,
	}
}

// Validation은 입력 검증 실패 에러를 생성합니다
func Validation(message string, fields ...string) *AppError {
	err := newError(KindValidation, message)
	err.Fields = fields
	return err
}

// Unauthenticated는 인증 실패 에러를 생성합니다
func Unauthenticated(message string) *AppError {
	return newError(KindUnauthenticated, message)
}

// Forbidden은 권한 부족 에러를 생성합니다
func Forbidden(message string) *AppError {
	return newError(KindForbidden, message)
}

// NotFound는 리소스 없음 에러를 생성합니다
func NotFound(message string) *AppError {
	return newError(KindNotFound, message)
}

// Conflict는 중복 키/버전 충돌 에러를 생성합니다
func Conflict(message string) *AppError {
	return newError(KindConflict, message)
}

// RateLimited는 요청 한도 초과 에러를 생성합니다
func RateLimited(message string) *AppError {
	return newError(KindRateLimited, message)
}

// Internal은 예상하지 못한 내부 에러를 생성합니다 (non-operational)
func Internal(err error) *AppError {
	e := newError(KindInternal, "internal server error")
	e.Err = err
	return e
}

// Unavailable은 외부 협력자 실패처럼 예상된 5xx 에러를 생성합니다
// 메시지가 클라이언트에 그대로 노출됩니다
func Unavailable(message string, err error) *AppError {
	e := newError(KindInternal, message)
	e.Err = err
	e.operational = true
	return e
}

// As는 errors.As의 별칭입니다
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is는 errors.Is의 별칭입니다
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// KindOf는 에러의 Kind를 반환합니다. AppError가 아니면 KindInternal입니다
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind는 에러가 특정 Kind인지 확인합니다
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetHTTPStatus는 에러의 HTTP 상태 코드를 반환합니다
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// 미리 정의된 메시지들
const (
	MsgNoDocument       = "No document found with that ID"
	MsgNotLoggedIn      = "you are not logged in. Please log in to get access."
	MsgUserGone         = "The user belonging to the this token does not exist."
	MsgPasswordChanged  = "User recently changed the password, Please login again"
	MsgInvalidToken     = "Invalid token, Please log in again"
	MsgExpiredToken     = "Token has Expired, Please log in again"
	MsgNoPermission     = "You do not have permission to perform this action"
	MsgGeneric          = "Something went wrong."
	MsgTooManyRequests  = "Too many requests from this IP, Please try again in an hour"
	MsgVersionConflict  = "The document was modified by another request, Please retry"
	MsgInvalidInputData = "Invalid input data"
)
