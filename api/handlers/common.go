package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/rlmbox/types"
)

// maxRequestBody bounds the size of a decoded request body. Scripts plus
// context corpora can be large, but not unbounded.
const maxRequestBody = 16 << 20

// ErrorInfo is the structured error payload of non-200 responses.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type errorResponse struct {
	Error ErrorInfo `json:"error"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a structured error response, mapping the error's code to
// an HTTP status.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var typed *types.Error
	if !errors.As(err, &typed) {
		typed = types.NewError(types.ErrInternalError, err.Error())
	}
	status := typed.HTTPStatus
	if status == 0 {
		status = statusForCode(typed.Code)
	}
	if status >= 500 {
		logger.Error("request failed", zap.String("code", string(typed.Code)), zap.Error(err))
	}
	WriteJSON(w, status, errorResponse{Error: ErrorInfo{
		Code:      string(typed.Code),
		Message:   typed.Message,
		Retryable: typed.Retryable,
	}})
}

func statusForCode(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest, types.ErrValidationFailed:
		return http.StatusBadRequest
	case types.ErrSessionNotFound:
		return http.StatusNotFound
	case types.ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody decodes a JSON request body into dst with a size limit.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
