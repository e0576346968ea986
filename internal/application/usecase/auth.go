package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/YouSangSon/tour-service/internal/pkg/security"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"go.uber.org/zap"
)

// 인증 흐름 메시지
const (
	MsgMissingCredentials   = "Please provide email and password."
	MsgIncorrectCredentials = "Incorrect email or password."
	MsgNoUserWithEmail      = "There is no user with that email address."
	MsgResetTokenSent       = "Token sent to registered email."
	MsgEmailFailed          = "There was an error sending the email."
	MsgResetTokenInvalid    = "The user does not exist or Token is expired."
	MsgIncorrectPassword    = "Incorrect new password."
	MsgSamePassword         = "Current password and new password cannot be same."
)

// LoggedOutToken은 로그아웃 시 쿠키에 설정되는 값입니다
const LoggedOutToken = "loggedout"

// Resolution은 선택적 인증(soft gate)의 결과입니다
// Resolved(principal) 또는 Anonymous 중 하나입니다
type Resolution struct {
	user *entity.User
}

// Resolved는 인증된 사용자 결과를 생성합니다
func Resolved(user *entity.User) Resolution {
	return Resolution{user: user}
}

// Anonymous는 익명 결과를 생성합니다
func Anonymous() Resolution {
	return Resolution{}
}

// User는 인증된 사용자와 인증 여부를 반환합니다
func (r Resolution) User() (*entity.User, bool) {
	return r.user, r.user != nil
}

// AuthUseCase는 가입, 로그인, 토큰 검증, 비밀번호 관리 유즈케이스입니다
type AuthUseCase struct {
	users     *ResourceUseCase[*entity.User]
	repo      repository.UserRepository
	tokens    *security.TokenManager
	hasher    *security.PasswordHasher
	mailer    repository.Mailer
	publisher event.Publisher
	resetTTL  time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

// AuthDeps는 AuthUseCase 의존성입니다
type AuthDeps struct {
	Users     repository.UserRepository
	Tokens    *security.TokenManager
	Hasher    *security.PasswordHasher
	Mailer    repository.Mailer
	Publisher event.Publisher
	ResetTTL  time.Duration
}

// NewAuthUseCase는 새로운 AuthUseCase를 생성합니다
func NewAuthUseCase(deps AuthDeps) *AuthUseCase {
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = 10 * time.Minute
	}
	return &AuthUseCase{
		users:     NewResourceUseCase[*entity.User]("users", deps.Users, func() *entity.User { return &entity.User{} }),
		repo:      deps.Users,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		mailer:    deps.Mailer,
		publisher: deps.Publisher,
		resetTTL:  deps.ResetTTL,
		metrics:   metrics.GetMetrics(),
		now:       time.Now,
	}
}

// TokenTTL은 발급 토큰의 유효 기간을 반환합니다
func (uc *AuthUseCase) TokenTTL() time.Duration {
	return uc.tokens.ExpiresIn()
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, err := uc.tokens.Sign(user.ID.Hex())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// Signup은 새 사용자를 user 역할로 생성하고 토큰을 발급합니다
// welcomeURL은 환영 메일에 담길 주소입니다
func (uc *AuthUseCase) Signup(ctx context.Context, req *dto.SignupRequest, welcomeURL string) (resp *dto.AuthResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.Signup")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("signup", outcome(err)) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &entity.User{Name: req.Name, Email: req.Email, Role: entity.RoleUser}
	user.SetPassword(hash, uc.now())
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.mailer.SendWelcome(ctx, user.Name, user.Email, welcomeURL); err != nil {
		logger.Warn(ctx, "welcome email not delivered", logger.UserID(user.ID.Hex()), zap.Error(err))
	}
	publish(ctx, uc.publisher, event.UserSignedUp, user.ID.Hex(), user.Brief())

	return uc.issue(user)
}

// Login은 이메일과 비밀번호를 확인하고 토큰을 발급합니다
func (uc *AuthUseCase) Login(ctx context.Context, req *dto.LoginRequest) (resp *dto.AuthResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.Login")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("login", outcome(err)) }()

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.Validation(MsgMissingCredentials)
	}

	user, err := uc.repo.FindByEmail(ctx, req.Email)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, apperrors.Unauthenticated(MsgIncorrectCredentials)
	}
	if err != nil {
		return nil, err
	}

	ok, err := uc.hasher.Compare(user.Password, req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.Unauthenticated(MsgIncorrectCredentials)
	}

	return uc.issue(user)
}

// Authenticate는 토큰을 검증하고 토큰의 사용자를 반환합니다 (Protect)
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (user *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.Authenticate")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("protect", outcome(err)) }()

	if token == "" || token == LoggedOutToken {
		return nil, apperrors.Unauthenticated(apperrors.MsgNotLoggedIn)
	}

	claims, err := uc.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err = uc.repo.FindByID(ctx, claims.UserID)
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound, apperrors.KindValidation:
		return nil, apperrors.Unauthenticated(apperrors.MsgUserGone)
	}
	if err != nil {
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, apperrors.Unauthenticated(apperrors.MsgPasswordChanged)
	}
	return user, nil
}

// Resolve는 선택적 인증을 수행합니다 (LoggedIn)
// 인증 실패는 Anonymous로, 인프라 장애는 에러로 반환합니다
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (Resolution, error) {
	if token == "" || token == LoggedOutToken {
		return Anonymous(), nil
	}

	user, err := uc.Authenticate(ctx, token)
	if apperrors.IsKind(err, apperrors.KindUnauthenticated) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), err
	}
	return Resolved(user), nil
}

// ForgotPassword는 재설정 토큰을 발급하고 메일로 보냅니다
// resetURL은 평문 토큰을 받아 재설정 주소를 만듭니다
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.ForgotPassword")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("forgot_password", outcome(err)) }()

	user, err := uc.repo.FindByEmail(ctx, email)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return apperrors.NotFound(MsgNoUserWithEmail)
	}
	if err != nil {
		return err
	}

	plain, hashed, err := security.NewResetToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	user.SetResetToken(hashed, uc.now().Add(uc.resetTTL))
	if err := uc.users.Save(ctx, user); err != nil {
		return err
	}

	if err := uc.mailer.SendPasswordReset(ctx, user.Name, user.Email, resetURL(plain), uc.resetTTL); err != nil {
		user.ClearResetToken()
		if saveErr := uc.users.Save(ctx, user); saveErr != nil {
			logger.LogError(ctx, saveErr, "failed to clear reset token", logger.UserID(user.ID.Hex()))
		}
		return apperrors.Unavailable(MsgEmailFailed, err)
	}
	return nil
}

// ResetPassword는 재설정 토큰으로 비밀번호를 변경하고 토큰을 발급합니다
func (uc *AuthUseCase) ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) (resp *dto.AuthResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.ResetPassword")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("reset_password", outcome(err)) }()

	user, err := uc.repo.FindByResetToken(ctx, security.HashResetToken(token))
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, apperrors.Validation(MsgResetTokenInvalid)
	}
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if err := uc.changePassword(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// UpdatePassword는 현재 비밀번호를 확인하고 새 비밀번호로 변경합니다
func (uc *AuthUseCase) UpdatePassword(ctx context.Context, principal *entity.User, req *dto.UpdatePasswordRequest) (resp *dto.AuthResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "AuthUseCase.UpdatePassword")
	defer span.End()
	defer func() { uc.metrics.RecordAuthEvent("update_password", outcome(err)) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := uc.repo.FindByID(ctx, principal.ID.Hex())
	if err != nil {
		return nil, err
	}

	ok, err := uc.hasher.Compare(user.Password, req.PasswordCurrent)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.Unauthenticated(MsgIncorrectPassword)
	}
	if req.PasswordCurrent == req.Password {
		return nil, apperrors.Unauthenticated(MsgSamePassword)
	}

	if err := uc.changePassword(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

func (uc *AuthUseCase) changePassword(ctx context.Context, user *entity.User, password string) error {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return apperrors.Internal(err)
	}
	user.SetPassword(hash, uc.now())
	if err := uc.users.Save(ctx, user); err != nil {
		return err
	}

	publish(ctx, uc.publisher, event.UserPasswordChanged, user.ID.Hex(), nil)
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(apperrors.KindOf(err))
}
