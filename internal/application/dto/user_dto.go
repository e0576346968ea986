package dto

import "github.com/YouSangSon/tour-service/internal/pkg/upload"

// UpdateMeRequest는 내 정보 수정 요청 DTO입니다
// 비밀번호 필드가 있으면 거부됩니다
type UpdateMeRequest struct {
	Name            *string      `json:"name" form:"name"`
	Email           *string      `json:"email" form:"email"`
	Password        string       `json:"password" form:"password"`
	PasswordConfirm string       `json:"passwordConfirm" form:"passwordConfirm"`
	Photo           *upload.File `json:"-" form:"-"`
}

// HasPassword는 요청에 비밀번호 필드가 있는지 확인합니다
func (r *UpdateMeRequest) HasPassword() bool {
	return r.Password != "" || r.PasswordConfirm != ""
}
