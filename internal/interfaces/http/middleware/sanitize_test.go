package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/YouSangSon/tour-service/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookPath = "/api/v1/bookings/webhook-checkout"

func newEchoEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{Production: true}))
	r.Use(middleware.Sanitize(webhookPath))
	echo := func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.String(http.StatusOK, string(raw))
	}
	r.POST("/api/v1/users/login", echo)
	r.POST(webhookPath, echo)
	return r
}

func TestSanitize_JSON(t *testing.T) {
	// Arrange
	payload := `{"email":{"$gt":""},"name":"<b>Jonas</b>","tags":["<i>x</i>"],"price":497}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	// Act
	w := serve(newEchoEngine(), req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]interface{}{}, body["email"])
	assert.Equal(t, "Jonas", body["name"])
	assert.Equal(t, []interface{}{"x"}, body["tags"])
	assert.Equal(t, float64(497), body["price"])
}

func TestSanitize_MalformedJSONIsLeftForTheHandler(t *testing.T) {
	payload := `{"email":`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := serve(newEchoEngine(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.String())
}

func TestSanitize_Form(t *testing.T) {
	form := url.Values{}
	form.Set("name", "<b>Jonas</b>")
	form.Set("$where", "1")
	form.Set("a.b", "c")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(newEchoEngine(), req)

	require.Equal(t, http.StatusOK, w.Code)
	values, err := url.ParseQuery(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "Jonas", values.Get("name"))
	assert.NotContains(t, values, "$where")
	assert.NotContains(t, values, "a.b")
}

func TestSanitize_SkippedPathKeepsRawBody(t *testing.T) {
	payload := `{"type":"checkout.session.completed","data":{"object":{"$x":"<b>y</b>"}}}`
	req := httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := serve(newEchoEngine(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.String())
}
