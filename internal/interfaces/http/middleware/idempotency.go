package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/cache"
	"github.com/tourops/backend/internal/infrastructure/logger"
	"github.com/tourops/backend/internal/interfaces/http/dto"
)

const (
	// IdempotencyKeyHeader is the client supplied key for a mutating request
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set on responses served from the store
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// IdempotencyMiddlewareConfig configures Idempotency
type IdempotencyMiddlewareConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency makes mutating ledger requests safe to retry. The first
// request carrying an Idempotency-Key runs normally and its response is
// stored; identical retries get that response back. A retry with another
// body, or one that arrives while the first is still running, gets 409.
// Responses with a 5xx status are not stored so the client can retry.
//
// Keys are scoped to the authenticated user, so the middleware must run
// after JWT authentication.
func Idempotency(cfg IdempotencyMiddlewareConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passThrough
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		requestID := c.GetString(RequestIDKey)
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidation, "Idempotency-Key must be at most 255 characters", requestID))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Request body could not be read", requestID))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		userID := GetJWTUserID(c)
		storeKey := userID + ":" + key
		fingerprint := cache.Fingerprint(
			[]byte(c.Request.Method),
			[]byte(c.Request.URL.Path),
			[]byte(userID),
			body,
		)

		ctx := c.Request.Context()
		state, stored, err := cfg.Store.Reserve(ctx, storeKey, fingerprint, cfg.TTL)
		if err != nil {
			// Without the store a retried payment could be applied twice.
			logger.WithLogger(ctx, log).Error("idempotency store unavailable",
				zap.String("idempotency_key", key), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "Idempotency store unavailable, retry later", requestID))
			return
		}

		switch state {
		case shared.IdempotencyCompleted:
			if stored == nil {
				break
			}
			c.Header(IdempotentReplayHeader, "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		case shared.IdempotencyInFlight:
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyConflict, "A request with this Idempotency-Key is still in progress", requestID))
			return
		case shared.IdempotencyMismatch:
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyConflict, "Idempotency-Key was already used with a different request", requestID))
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		completed := false
		defer func() {
			// Runs on panics too, so a crashed request does not pin the key.
			if completed {
				return
			}
			if err := cfg.Store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				logger.WithLogger(ctx, log).Warn("failed to release idempotency key",
					zap.String("idempotency_key", key), zap.Error(err))
			}
		}()

		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		resp := shared.IdempotentResponse{
			StatusCode:  status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if err := cfg.Store.Complete(context.WithoutCancel(ctx), storeKey, fingerprint, resp, cfg.TTL); err != nil {
			logger.WithLogger(ctx, log).Error("failed to store idempotent response",
				zap.String("idempotency_key", key), zap.Error(err))
			return
		}
		completed = true
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseRecorder tees the response body so it can be stored.
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
