package entity

import (
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role은 사용자 역할입니다
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// DefaultPhoto는 사진이 없는 사용자의 기본 사진입니다
const DefaultPhoto = "default.jpg"

// User는 인증 주체(Principal)입니다
// 비밀번호와 재설정 토큰은 응답에 직렬화되지 않습니다
type User struct {
	Base                 `bson:",inline"`
	Name                 string     `bson:"name" json:"name" validate:"required,min=5,max=40" msg:"required=The name is required;min=Name must have at least 5 characters;max=Name can have maximum 40 characters"`
	Email                string     `bson:"email" json:"email" validate:"required,email,max=40" msg:"required=The email address is required;email=Please fill a valid email address"`
	Photo                string     `bson:"photo" json:"photo"`
	Role                 Role       `bson:"role" json:"role" validate:"required,oneof=user guide lead-guide admin"`
	Password             string     `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string     `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool       `bson:"active" json:"-"`
	CreatedAt            time.Time  `bson:"createdAt" json:"-"`
}

// Prepare는 기본값을 채우고 이메일을 정규화합니다
func (u *User) Prepare(isNew bool, now time.Time) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if isNew {
		u.Active = true
		u.CreatedAt = now
	}
}

// Validate는 사용자 필드를 검증합니다
func (u *User) Validate() error {
	return validation.Struct(u)
}

// SetPassword는 해시된 비밀번호를 설정하고 변경 시각을 기록합니다
// 변경 시각은 MongoDB 저장 정밀도(밀리초)로 잘라 기록합니다
func (u *User) SetPassword(hash string, now time.Time) {
	u.Password = hash
	if !u.ID.IsZero() {
		changed := now.Truncate(time.Millisecond)
		u.PasswordChangedAt = &changed
	}
	u.ClearResetToken()
}

// ChangedPasswordAfter는 토큰 발급 이후 비밀번호가 변경되었는지 반환합니다 (밀리초 단위 비교)
// 변경과 같은 밀리초에 발급된 토큰은 유효합니다
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.UnixMilli() < u.PasswordChangedAt.UnixMilli()
}

// SetResetToken은 해시된 재설정 토큰과 만료 시각을 설정합니다
func (u *User) SetResetToken(hashed string, expires time.Time) {
	u.PasswordResetToken = hashed
	u.PasswordResetExpires = &expires
}

// ClearResetToken은 재설정 토큰을 제거합니다
func (u *User) ClearResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// HasRole은 사용자가 주어진 역할 중 하나를 갖는지 반환합니다
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Brief는 확장(populate)용 요약 정보를 반환합니다
func (u *User) Brief() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Photo: u.Photo, Role: u.Role}
}

// UserSummary는 다른 리소스에 확장되는 사용자 정보입니다
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}
