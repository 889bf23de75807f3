package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxMarker struct{}

func TestProfilingWithConfig_RunsHandler(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"disabled", ProfilingConfig{Enabled: false}, "/api/v1/ledger/accounts/1"},
		{"labelled route", DefaultProfilingConfig(), "/api/v1/ledger/accounts/1"},
		{"skipped health", DefaultProfilingConfig(), "/health"},
		{"skipped swagger", DefaultProfilingConfig(), "/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := func(c *gin.Context) {
				called = true
				c.Status(http.StatusOK)
			}

			r := gin.New()
			r.Use(ProfilingWithConfig(tt.cfg))
			r.GET("/api/v1/ledger/accounts/:id", handler)
			r.GET("/health", handler)
			r.GET("/swagger/*any", handler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestProfilingWithConfig_PreservesContext(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxMarker{}, "kept"))
		c.Next()
	})
	r.Use(ProfilingWithConfig(DefaultProfilingConfig()))
	r.POST("/api/v1/ledger/installments/:id/payments", func(c *gin.Context) {
		assert.Equal(t, "kept", c.Request.Context().Value(ctxMarker{}))
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/ledger/installments/9/payments", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestExtractControllerFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/ledger/accounts/:id", "accounts"},
		{"/api/v1/ledger/accounts/:id/summary", "accounts"},
		{"/api/v1/ledger/reservations/:id/payments", "reservations"},
		{"/api/v2/ledger/payments/:id/receipt.pdf", "payments"},
		{"/health", "health"},
		{"/api/v1/:id", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, extractControllerFromRoute(tt.route))
		})
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("ledger"))
}
