package handler

import (
	"net/http"

	"github.com/YouSangSon/tour-service/internal/application/dto"
	"github.com/YouSangSon/tour-service/internal/application/usecase"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// UserHandler는 현재 사용자와 관리자용 사용자 HTTP 핸들러입니다
type UserHandler struct {
	users *usecase.UserUseCase
}

// NewUserHandler는 새로운 UserHandler를 생성합니다
func NewUserHandler(users *usecase.UserUseCase) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe는 현재 사용자의 ID를 경로 파라미터로 설정하여 GetOne으로 넘깁니다
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}
	c.AddParam("id", user.ID.Hex())
	c.Next()
}

// UpdateMe godoc
// @Summary      Update the current user's name, email or photo
// @Tags         users
// @Accept       json,mpfd
// @Produce      json
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /api/v1/users/updateMe [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	req, err := h.updateMeRequest(c)
	if err != nil {
		abort(c, err)
		return
	}

	updated, err := h.users.UpdateMe(c.Request.Context(), user, req)
	if err != nil {
		abort(c, err)
		return
	}

	ok(c, http.StatusOK, Response{Data: gin.H{"user": updated}})
}

func (h *UserHandler) updateMeRequest(c *gin.Context) (*dto.UpdateMeRequest, error) {
	var req dto.UpdateMeRequest
	if !isMultipart(c) {
		if err := bindJSON(c, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.Validation(err.Error()).WithCause(err)
	}
	if name, ok := c.GetPostForm("name"); ok {
		req.Name = &name
	}
	if email, ok := c.GetPostForm("email"); ok {
		req.Email = &email
	}
	req.Password = c.PostForm("password")
	req.PasswordConfirm = c.PostForm("passwordConfirm")

	photos, err := formFiles(form, "photo", 1)
	if err != nil {
		return nil, err
	}
	if len(photos) == 1 {
		req.Photo = &photos[0]
	}
	return &req, nil
}

// DeleteMe godoc
// @Summary      Deactivate the current user
// @Tags         users
// @Success      204
// @Router       /api/v1/users/deleteMe [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, err := principal(c)
	if err != nil {
		abort(c, err)
		return
	}

	if err := h.users.DeleteMe(c.Request.Context(), user); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateUser는 가입 경로를 안내합니다. 사용자 생성은 signup으로만 가능합니다
func (h *UserHandler) CreateUser(c *gin.Context) {
	abort(c, apperrors.Unavailable(usecase.MsgUseSignup, nil))
}
