package dto

// SignupRequest는 회원 가입 요청 DTO입니다
type SignupRequest struct {
	Name            string `json:"name" form:"name" validate:"required" msg:"required=Please tell us your name"`
	Email           string `json:"email" form:"email" validate:"required,email" msg:"required=Please provide your email;email=Please provide a valid email"`
	Password        string `json:"password" form:"password" validate:"required,min=8" msg:"required=Please provide a password;min=Password must have at least 8 characters"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm" validate:"required,eqfield=Password" msg:"required=Please confirm your password;eqfield=Passwords are not the same!"`
}

// LoginRequest는 로그인 요청 DTO입니다
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ForgotPasswordRequest는 비밀번호 재설정 메일 요청 DTO입니다
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ResetPasswordRequest는 비밀번호 재설정 요청 DTO입니다
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8" msg:"required=Please provide a password;min=Password must have at least 8 characters"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password" msg:"required=Please confirm your password;eqfield=Passwords are not the same!"`
}

// UpdatePasswordRequest는 비밀번호 변경 요청 DTO입니다
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required" msg:"required=Please provide your current password"`
	Password        string `json:"password" validate:"required,min=8" msg:"required=Please provide a password;min=Password must have at least 8 characters"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password" msg:"required=Please confirm your password;eqfield=Passwords are not the same!"`
}

// AuthResponse는 토큰 발급 결과입니다
type AuthResponse struct {
	Token string
	User  interface{}
}
