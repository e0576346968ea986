package security

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	// iat/exp를 밀리초 정밀도로 발급해야 비밀번호 변경 직전 토큰이 거부됩니다
	jwt.TimePrecision = time.Millisecond
}

// Claims는 세션 토큰에 담기는 클레임입니다 ({id, iat, exp})
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// IssuedAtTime은 발급 시각을 반환합니다
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TokenManager는 HS256 세션 토큰을 발급하고 검증합니다
type TokenManager struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenManager는 새로운 TokenManager를 생성합니다
func NewTokenManager(secret string, expiresIn time.Duration) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// Sign은 사용자 ID에 대한 토큰을 발급합니다
func (m *TokenManager) Sign(userID string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify는 서명과 만료를 검증하고 클레임을 반환합니다
// 실패는 항상 unauthenticated AppError로 반환됩니다
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthenticated(apperrors.MsgExpiredToken).WithCause(err)
		}
		return nil, apperrors.Unauthenticated(apperrors.MsgInvalidToken).WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.Unauthenticated(apperrors.MsgInvalidToken)
	}

	return claims, nil
}

// ExpiresIn은 토큰 유효 기간을 반환합니다
func (m *TokenManager) ExpiresIn() time.Duration {
	return m.expiresIn
}
