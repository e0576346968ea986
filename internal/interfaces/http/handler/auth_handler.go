package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"github.com/gin-gonic/gin"
)

// 인증 응답 메시지
const (
	MsgUserRegistered  = "User registered successfully"
	MsgLoggedIn        = "success"
	MsgPasswordReset   = "Password Reset successfull"
	MsgPasswordUpdated = "Password changed."
)

// logoutCookieTTL은 로그아웃 쿠키 유효 시간입니다
const logoutCookieTTL = 10 * time.Second

// CookieConfig는 세션 쿠키 설정입니다
type CookieConfig struct {
	Name      string
	ExpiresIn time.Duration
	Secure    bool
}

// AuthHandler는 가입, 로그인, 비밀번호 관리 HTTP 핸들러입니다
type AuthHandler struct {
	auth   *usecase.AuthUseCase
	cookie CookieConfig
}

// NewAuthHandler는 새로운 AuthHandler를 생성합니다
func NewAuthHandler(auth *usecase.AuthUseCase, cookie CookieConfig) *AuthHandler {
	if cookie.ExpiresIn <= 0 {
		cookie.ExpiresIn = auth.TokenTTL()
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, int(ttl.Seconds()), "/", "", h.cookie.Secure, true)
}

// sendToken은 토큰을 쿠키와 본문으로 전달합니다
func (h *AuthHandler) sendToken(c *gin.Context, status int, resp *dto.AuthResponse, message string) {
	h.setCookie(c, resp.Token, h.cookie.ExpiresIn)
	ok(c, status, Response{
		Message: message,
		Token:   resp.Token,
		Data:    gin.H{"user": resp.User},
	})
}

func bindJSON(c *gin.Context, dst interface{}) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validation.DecodeError(err)
	}
	return nil
}

// Signup godoc
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SignupRequest  true  "Signup request"
// @Success      201      {object}  Response
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /api/v1/users/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), &req, baseURL(c)+"/me")
	if err != nil {
		abort(c, err)
		return
	}

	h.sendToken(c, http.StatusCreated, resp, MsgUserRegistered)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LoginRequest  true  "Login request"
// @Success      200      {object}  Response
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		abort(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, resp, MsgLoggedIn)
}

// Logout godoc
// @Summary      Log out
// @Description  Overwrites the session cookie with a short-lived placeholder
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Response
// @Router       /api/v1/users/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, usecase.LoggedOutToken, logoutCookieTTL)
	ok(c, http.StatusOK, Response{})
}

// ForgotPassword godoc
// @Summary      Request a password reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  Response
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/users/forgotPassword [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}

	base := baseURL(c)
	err := h.auth.ForgotPassword(c.Request.Context(), req.Email, func(token string) string {
		return base + "/api/v1/users/resetPassword/" + token
	})
	if err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusOK, Response{Message: usecase.MsgResetTokenSent})
}

// ResetPassword godoc
// @Summary      Reset the password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token    path      string                    true  "Reset token"
// @Param        request  body      dto.ResetPasswordRequest  true  "New password"
// @Success      200      {object}  Response
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/users/resetPassword/{token} [patch]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}

	resp, err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		abort(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, resp, MsgPasswordReset)
}

// UpdatePassword godoc
// @Summary      Change the current user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.UpdatePasswordRequest  true  "Current and new password"
// @Success      200      {object}  Response
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/users/updatePassword [patch]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req dto.UpdatePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}

	resp, err := h.auth.UpdatePassword(c.Request.Context(), user, &req)
	if err != nil {
		abort(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, resp, MsgPasswordUpdated)
}
