package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository는 MongoDB 기반 사용자 저장소입니다
// 비활성(active=false) 사용자는 모든 조회에서 제외됩니다
type UserRepository struct {
	*Store[*entity.User]
	now func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository는 새로운 사용자 저장소를 생성합니다
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		Store: NewStore(db, CollectionUsers,
			func() *entity.User { return &entity.User{} },
			WithBaseFilter[*entity.User](activeUsers),
		),
		now: time.Now,
	}
}

// FindByEmail은 이메일로 활성 사용자를 조회합니다
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user *entity.User, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "find_by_email", start, err) }()

	return r.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByResetToken은 만료되지 않은 해시 재설정 토큰으로 사용자를 조회합니다
func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string) (user *entity.User, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "find_by_reset_token", start, err) }()

	return r.FindOne(ctx, bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": r.now()},
	})
}

// Deactivate는 사용자를 비활성화합니다 (soft delete)
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	oid, err := entity.ParseID(id)
	if err != nil {
		return err
	}
	return r.UpdateFields(ctx, oid, bson.M{"active": false})
}
