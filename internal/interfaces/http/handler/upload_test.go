package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormPatch_CoercesScalars(t *testing.T) {
	form := &multipart.Form{Value: map[string][]string{
		"price":      {"397"},
		"secretTour": {"false"},
		"name":       {"The Forest Hiker"},
	}}

	raw, err := formPatch(form)
	require.NoError(t, err)

	var patch map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &patch))
	assert.Equal(t, float64(397), patch["price"])
	assert.Equal(t, false, patch["secretTour"])
	assert.Equal(t, "The Forest Hiker", patch["name"])
}

func TestFormPatch_EmptyForm(t *testing.T) {
	raw, err := formPatch(&multipart.Form{})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestFormFiles_RejectsTooMany(t *testing.T) {
	headers := make([]*multipart.FileHeader, MaxTourImages+1)
	form := &multipart.Form{File: map[string][]*multipart.FileHeader{"images": headers}}

	_, err := formFiles(form, "images", MaxTourImages)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBaseURL(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		proto string
		want  string
	}{
		{"plain", "", "http://natours.example.io"},
		{"behind proxy", "https", "https://natours.example.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, (&url.URL{Scheme: "http", Host: "natours.example.io", Path: "/"}).String(), nil)
			if tt.proto != "" {
				c.Request.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			assert.Equal(t, tt.want, baseURL(c))
		})
	}
}
