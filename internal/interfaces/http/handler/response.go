package handler

import "github.com/tourops/backend/internal/interfaces/http/dto"

// APIResponse is the envelope every ledger endpoint answers with. It exists
// for the generated API docs and for decoding in tests; handlers build
// responses through the dto package.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure shape of APIResponse
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
