package handler

import (
	"io"
	"net/http"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/middleware"
	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// StatusSuccess는 성공 응답 envelope의 status 값입니다
const StatusSuccess = "success"

// Response는 성공 응답 envelope입니다
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Result  *int        `json:"result,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse는 실패 응답 envelope입니다
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// abort는 에러를 에러 파이프라인으로 넘기고 체인을 중단합니다
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// data는 {data: doc} 형태의 data 객체를 반환합니다
func data(doc interface{}) gin.H {
	return gin.H{"data": doc}
}

func ok(c *gin.Context, status int, body Response) {
	body.Status = StatusSuccess
	c.JSON(status, body)
}

func list(c *gin.Context, docs interface{}, n int) {
	ok(c, http.StatusOK, Response{Result: &n, Data: data(docs)})
}

// readBody는 요청 본문을 읽습니다. 본문 크기 제한 초과는 에러 파이프라인에서 400으로 분류됩니다
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(c.Request.Body)
}

// principal은 Protect가 설정한 사용자를 반환합니다
func principal(c *gin.Context) (*entity.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperrors.Unauthenticated(apperrors.MsgNotLoggedIn)
	}
	return user, nil
}

// baseURL은 요청의 scheme과 host로 절대 주소의 기준을 만듭니다
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
