package upload

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
)

// MsgNotAnImage는 이미지가 아닌 업로드에 대한 메시지입니다
const MsgNotAnImage = "Not an image. Please upload an image."

// 이미지 폴더
const (
	FolderTours = "img/tours"
	FolderUsers = "img/users"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// File은 업로드된 파일 내용입니다
type File struct {
	Filename string
	Data     []byte
}

// Image는 형식이 확인된 이미지입니다
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DetectImage는 내용으로 이미지 형식을 판별합니다
// 이미지가 아니면 validation 에러입니다
func DetectImage(f File) (*Image, error) {
	contentType := http.DetectContentType(f.Data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperrors.Validation(MsgNotAnImage)
	}
	return &Image{Data: f.Data, ContentType: contentType, Ext: ext}, nil
}

// UserPhotoName은 사용자 사진 파일명을 반환합니다 (user-<id>-<ms>.<ext>)
func UserPhotoName(userID string, at time.Time, ext string) string {
	return fmt.Sprintf("user-%s-%d.%s", userID, at.UnixMilli(), ext)
}

// TourCoverName은 투어 커버 이미지 파일명을 반환합니다 (tour-<id>-<ms>-cover.<ext>)
func TourCoverName(tourID string, at time.Time, ext string) string {
	return fmt.Sprintf("tour-%s-%d-cover.%s", tourID, at.UnixMilli(), ext)
}

// TourImageName은 투어 이미지 파일명을 반환합니다. n은 1부터 시작합니다
func TourImageName(tourID string, at time.Time, n int, ext string) string {
	return fmt.Sprintf("tour-%s-%d-%d.%s", tourID, at.UnixMilli(), n, ext)
}
