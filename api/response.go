package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/logging"
)

// APIError 是所有错误响应的统一结构
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// 错误码
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnavailable     = "UNAVAILABLE"
	CodeTimeout         = "TIMEOUT"
	CodeFeatureMismatch = "FEATURE_MISMATCH"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)

// respondJSON 写 JSON 响应
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

// respondError 写错误响应；5xx 错误在这里记录一次日志
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", code).Str("path", r.URL.Path).Msg("request failed")
	}
	respondJSON(w, status, APIError{
		Code:      code,
		Message:   message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// respondDomainError 按错误类型映射 HTTP 状态码。
// notFoundMessage 用于 NotFound 错误的对外提示。
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	switch {
	case core.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, CodeNotFound, notFoundMessage, nil)
	case core.IsInvalidInput(err):
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, CodeTimeout, "request timed out", err)
	case core.IsUnavailable(err):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "upstream unavailable", err)
	case core.IsFeatureMismatch(err):
		respondError(w, r, http.StatusInternalServerError, CodeFeatureMismatch, "model input does not match its feature schema", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error", err)
	}
}
