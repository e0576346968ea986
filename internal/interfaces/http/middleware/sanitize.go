package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/YouSangSon/tour-service/internal/pkg/sanitizer"
	"github.com/gin-gonic/gin"
)

// Sanitize는 JSON과 form 본문에서 연산자 키를 제거하고 HTML을 지웁니다
// skip 경로(서명 검증이 필요한 webhook 등)의 본문은 그대로 둡니다
func Sanitize(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		switch c.ContentType() {
		case gin.MIMEJSON:
			if err := sanitizeJSON(c); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		case gin.MIMEPOSTForm:
			if err := sanitizeForm(c); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func sanitizeJSON(c *gin.Context) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}

	body := raw
	var decoded interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	// 파싱할 수 없는 본문은 핸들러가 디코딩 에러로 보고합니다
	if err := dec.Decode(&decoded); err == nil {
		if cleaned, err := json.Marshal(sanitizer.Value(decoded)); err == nil {
			body = cleaned
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Request.ContentLength = int64(len(body))
	return nil
}

func sanitizeForm(c *gin.Context) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return nil
	}

	cleaned := url.Values{}
	for key, vals := range values {
		if sanitizer.UnsafeKey(key) {
			continue
		}
		for _, v := range vals {
			cleaned.Add(key, sanitizer.String(v))
		}
	}

	body := cleaned.Encode()
	c.Request.Body = io.NopCloser(bytes.NewReader([]byte(body)))
	c.Request.ContentLength = int64(len(body))
	return nil
}
