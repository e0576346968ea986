package usecase

import (
	"context"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"github.com/YouSangSon/tour-service/internal/pkg/upload"
)

// 사용자 관리 메시지
const (
	MsgPasswordRoute = "This route is not allowed for password update, Please use /updatePassword"
	MsgUseSignup     = "This route is not defined, Please use sign up instead."
)

// UserUseCase는 사용자 관리 유즈케이스입니다
type UserUseCase struct {
	*ResourceUseCase[*entity.User]
	repo      repository.UserRepository
	images    repository.ImageStore
	publisher event.Publisher
	now       func() time.Time
}

// NewUserUseCase는 새로운 UserUseCase를 생성합니다
func NewUserUseCase(repo repository.UserRepository, images repository.ImageStore, publisher event.Publisher) *UserUseCase {
	return &UserUseCase{
		ResourceUseCase: NewResourceUseCase[*entity.User]("users", repo, func() *entity.User { return &entity.User{} }),
		repo:            repo,
		images:          images,
		publisher:       publisher,
		now:             time.Now,
	}
}

// UpdateMe는 현재 사용자의 이름, 이메일, 사진만 변경합니다
func (uc *UserUseCase) UpdateMe(ctx context.Context, principal *entity.User, req *dto.UpdateMeRequest) (user *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.UpdateMe")
	defer span.End()

	if req.HasPassword() {
		return nil, apperrors.Validation(MsgPasswordRoute)
	}

	user, err = uc.Get(ctx, principal.ID.Hex())
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Photo != nil {
		img, err := upload.DetectImage(*req.Photo)
		if err != nil {
			return nil, err
		}
		name := upload.UserPhotoName(user.ID.Hex(), uc.now(), img.Ext)
		if err := uc.images.Put(ctx, upload.FolderUsers, name, img.ContentType, img.Data); err != nil {
			return nil, apperrors.Internal(err)
		}
		user.Photo = name
	}

	if err := uc.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteMe는 현재 사용자를 비활성화합니다
func (uc *UserUseCase) DeleteMe(ctx context.Context, principal *entity.User) error {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.DeleteMe")
	defer span.End()

	if err := uc.repo.Deactivate(ctx, principal.ID.Hex()); err != nil {
		return err
	}
	publish(ctx, uc.publisher, event.UserDeactivated, principal.ID.Hex(), nil)
	return nil
}
