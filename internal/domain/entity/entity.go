package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entity는 Resource 팩토리가 다루는 저장 단위입니다
// Prepare와 Validate는 저장 직전에 usecase가 명시적으로 호출합니다
type Entity interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
	GetVersion() int
	SetVersion(v int)

	// Prepare는 기본값과 파생 필드를 채웁니다 (isNew: 최초 생성 여부)
	Prepare(isNew bool, now time.Time)

	// Validate는 저장 가능한 상태인지 검증합니다
	Validate() error
}

// Base는 모든 엔티티가 공유하는 _id와 __v 필드입니다
type Base struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Version int                `bson:"__v" json:"-"`
}

// GetID는 문서 ID를 반환합니다
func (b *Base) GetID() primitive.ObjectID {
	return b.ID
}

// SetID는 ID를 설정합니다 (persistence layer에서만 사용)
func (b *Base) SetID(id primitive.ObjectID) {
	b.ID = id
}

// GetVersion은 문서 버전을 반환합니다 (낙관적 잠금용)
func (b *Base) GetVersion() int {
	return b.Version
}

// SetVersion은 문서 버전을 설정합니다
func (b *Base) SetVersion(v int) {
	b.Version = v
}
