package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	// PrincipalKey는 gin 컨텍스트에서 인증된 사용자를 저장하는 키입니다
	PrincipalKey = "principal"

	// ViewUserKey는 페이지 템플릿에 전달되는 사용자 키입니다
	ViewUserKey = "user"

	// DefaultCookieName은 세션 토큰 쿠키 기본 이름입니다
	DefaultCookieName = "jwt"
)

type principalCtxKey struct{}

// Authenticator는 세션 토큰을 사용자로 해석합니다
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
	Resolve(ctx context.Context, token string) (usecase.Resolution, error)
}

// Auth는 인증 미들웨어 묶음입니다
type Auth struct {
	authenticator Authenticator
	cookieName    string
}

// NewAuth는 새로운 Auth 미들웨어를 생성합니다
func NewAuth(authenticator Authenticator, cookieName string) *Auth {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Auth{authenticator: authenticator, cookieName: cookieName}
}

// CookieName은 세션 쿠키 이름을 반환합니다
func (a *Auth) CookieName() string {
	return a.cookieName
}

// Protect는 인증된 사용자만 통과시킵니다
// Authorization Bearer 헤더가 쿠키보다 우선합니다
func (a *Auth) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.authenticator.Authenticate(c.Request.Context(), a.bearerOrCookie(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		attach(c, user)
		c.Next()
	}
}

// LoggedIn은 쿠키 세션이 있으면 사용자를 해석하고 없으면 익명으로 통과시킵니다
// 인증 실패는 익명으로 처리하지만 저장소 장애는 에러로 넘깁니다
func (a *Auth) LoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(a.cookieName)

		resolution, err := a.authenticator.Resolve(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		if user, ok := resolution.User(); ok {
			attach(c, user)
		}
		c.Next()
	}
}

// RestrictTo는 주어진 역할의 사용자만 통과시킵니다
// Protect 뒤에 등록되어야 합니다
func RestrictTo(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			_ = c.Error(apperrors.Internal(errors.New("restrict to roles without an authenticated principal")))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		_ = c.Error(apperrors.Forbidden(apperrors.MsgNoPermission))
		c.Abort()
	}
}

func (a *Auth) bearerOrCookie(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	token, _ := c.Cookie(a.cookieName)
	return token
}

func attach(c *gin.Context, user *entity.User) {
	c.Set(PrincipalKey, user)
	c.Set(ViewUserKey, user)

	ctx := context.WithValue(c.Request.Context(), principalCtxKey{}, user)
	ctx = logger.WithFields(ctx, logger.UserID(user.ID.Hex()), logger.Role(string(user.Role)))
	c.Request = c.Request.WithContext(ctx)
}

// CurrentUser는 gin 컨텍스트의 인증된 사용자를 반환합니다
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

// UserFromContext는 요청 컨텍스트의 인증된 사용자를 반환합니다
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(principalCtxKey{}).(*entity.User)
	return user, ok && user != nil
}
