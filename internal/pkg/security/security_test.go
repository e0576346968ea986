package security

import (
	"testing"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_SignAndVerify(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Sign("5c8a1d5b0190b214360dc057")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "5c8a1d5b0190b214360dc057", claims.UserID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAtTime(), 2*time.Second)
}

func TestTokenManager_IssuedAtKeepsMilliseconds(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second).Add(250*time.Millisecond + 400*time.Microsecond)
	m := NewTokenManager(testSecret, time.Hour)
	m.now = func() time.Time { return issued }
	token, err := m.Sign("u1")
	require.NoError(t, err)

	m.now = time.Now
	claims, err := m.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, issued.Truncate(time.Millisecond).UnixMilli(), claims.IssuedAtTime().UnixMilli())
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Sign("u1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.MsgExpiredToken, appErr.Message)
}

func TestTokenManager_InvalidSignature(t *testing.T) {
	token, err := NewTokenManager("another-secret-another-secret-xx", time.Hour).Sign("u1")
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).Verify(token)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.KindUnauthenticated, appErr.Kind)
	assert.Equal(t, apperrors.MsgInvalidToken, appErr.Message)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).Verify(unsigned)

	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestTokenManager_Malformed(t *testing.T) {
	_, err := NewTokenManager(testSecret, time.Hour).Verify("not-a-token")

	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("pass1234")
	require.NoError(t, err)
	assert.NotEqual(t, "pass1234", hash)

	ok, err := h.Compare(hash, "pass1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "pass1234")
	assert.Error(t, err)
}

func TestNewPasswordHasher_DefaultsInvalidCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
}

func TestResetToken(t *testing.T) {
	plain, hashed, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, 64)
	assert.Len(t, hashed, 64)
	assert.NotEqual(t, plain, hashed)
	assert.Equal(t, hashed, HashResetToken(plain))
}
