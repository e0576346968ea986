package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/upload"
	"github.com/gin-gonic/gin"
)

// MaxTourImages는 한 번에 업로드할 수 있는 투어 이미지 수입니다
const MaxTourImages = 3

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func readFile(fh *multipart.FileHeader) (*upload.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return &upload.File{Filename: fh.Filename, Data: b}, nil
}

// formFiles는 필드의 업로드 파일을 최대 max개까지 읽습니다
func formFiles(form *multipart.Form, field string, max int) ([]upload.File, error) {
	headers := form.File[field]
	if len(headers) > max {
		return nil, apperrors.Validation(fmt.Sprintf("Too many files for %s, maximum is %d", field, max), field)
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, nil
}

// formPatch는 multipart 텍스트 필드를 JSON 패치로 변환합니다
// 숫자와 불리언으로 읽히는 값은 해당 타입으로 변환합니다
func formPatch(form *multipart.Form) ([]byte, error) {
	if len(form.Value) == 0 {
		return nil, nil
	}

	patch := make(map[string]interface{}, len(form.Value))
	for key, vals := range form.Value {
		if len(vals) == 0 {
			continue
		}
		raw := vals[len(vals)-1]
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			patch[key] = n
		} else if b, err := strconv.ParseBool(raw); err == nil {
			patch[key] = b
		} else {
			patch[key] = raw
		}
	}
	return json.Marshal(patch)
}
