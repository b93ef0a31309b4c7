package api

import (
	"encoding/json"
	"net/http"

	"github.com/USSTM/courier-console/internal/middleware"
)

const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeUpstreamError    = "UPSTREAM_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

// Error is the JSON error envelope returned by every handler.
type Error struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() Error {
	body := ErrorBody{
		Code:    e.Code,
		Message: e.Message,
	}
	if len(e.Details) > 0 {
		body.Details = e.Details
	}
	if len(e.Context) > 0 {
		body.Context = e.Context
	}
	return Error{Error: body}
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func UpstreamErr(msg string, status int) *ErrorBuilder {
	return NewError(CodeUpstreamError, msg).WithContext(ErrorContext{
		"upstream_status": status,
	})
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.GetLoggerFromContext(r.Context()).Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, e *ErrorBuilder) {
	writeJSON(w, r, status, e.Create())
}

// denyJSON renders rbac rejections in the API error envelope.
func denyJSON(w http.ResponseWriter, r *http.Request, status int) {
	if status == http.StatusUnauthorized {
		writeError(w, r, status, Unauthorized("Authentication required"))
		return
	}
	writeError(w, r, status, PermissionDenied("Insufficient permissions"))
}
