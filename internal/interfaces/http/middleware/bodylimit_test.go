package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type payBody struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
}

func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), BodyLimit(limit))
	r.POST("/pay", func(c *gin.Context) {
		var body payBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.String(http.StatusOK, body.Amount)
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	const payload = `{"amount":"150.00","method":"efectivo"}`

	t.Run("payload within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		newBodyLimitRouter(1024).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(payload)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "150.00", w.Body.String())
	})

	t.Run("declared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(payload))
		w := httptest.NewRecorder()
		newBodyLimitRouter(16).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(payload))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		newBodyLimitRouter(16).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
	})
}
