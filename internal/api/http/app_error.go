package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// AppError はアプリケーション固有のエラーを表します。
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
}

const (
	// CodeNotFound は 404 Not Found エラーを表します。
	CodeNotFound = "NOT_FOUND"
	// CodeMethodNotAllowed は 405 Method Not Allowed エラーを表します。
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	// CodeInternalError は 500 Internal Server Error エラーを表します。
	CodeInternalError = "INTERNAL_ERROR"
	// CodeUnavailable は 503 Service Unavailable エラーを表します。
	CodeUnavailable = "UNAVAILABLE"
	// CodeTimeout は タイムアウトによる 408 Request Timeout エラーを表します。
	CodeTimeout = "TIMEOUT"
	// CodeCanceled は キャンセルによる 408 Request Timeout エラーを表します。
	CodeCanceled = "CANCELED"
)

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

// NewAppError は新しい AppError を作成します。
func NewAppError(status int, code, message string, meta any) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Meta:    meta,
	}
}

// NotFound は 404 Not Found エラーを表す AppError を作成します。
func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, msg, nil)
}

// MethodNotAllowed は 405 Method Not Allowed エラーを表す AppError を作成します。
func MethodNotAllowed(msg string) *AppError {
	return NewAppError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, msg, nil)
}

// Internal は 500 Internal Server Error エラーを表す AppError を作成します。
func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, msg, nil)
}

// Unavailable は 503 Service Unavailable エラーを表す AppError を作成します。
func Unavailable(msg string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, msg, nil)
}

// FromStdError は標準の error を AppError に変換します。
func FromStdError(err error) *AppError {
	if err == nil {
		return nil
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	switch {
	case errors.Is(err, context.Canceled):
		return NewAppError(http.StatusRequestTimeout, CodeCanceled, "request canceled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusRequestTimeout, CodeTimeout, "request timeout", nil)
	default:
		return Internal("unexpected error")
	}
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	app := FromStdError(err)
	writeJSON(w, app.Status, errorEnvelope{Err: app})
}
