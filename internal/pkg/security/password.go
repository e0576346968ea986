package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost는 비밀번호 해시 기본 cost입니다
const DefaultBcryptCost = 12

// PasswordHasher는 bcrypt 기반 비밀번호 해셔입니다
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher는 새로운 PasswordHasher를 생성합니다
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash는 비밀번호를 해시합니다
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare는 비밀번호가 해시와 일치하는지 반환합니다
// 불일치 외의 에러(잘못된 해시 등)는 error로 반환됩니다
func (h *PasswordHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password: %w", err)
}
