package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"runtime/debug"

	ilog "github.com/amakane-hakari/tcache/internal/log"
)

type ctxKey int

const requestIDKey ctxKey = iota

const headerRequestID = "X-Request-ID"

// GetRequestID はコンテキストからリクエストIDを取得します。
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDMiddleware はリクエストIDを管理するミドルウェアです。
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = genRequestID()
			}
			w.Header().Set(headerRequestID, rid)
			ctx := context.WithValue(r.Context(), requestIDKey, rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoverMiddleware は panic を 500 応答に変換し、スタックをログに残すミドルウェアです。
func RecoverMiddleware(l ilog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if l != nil {
					l.Error("http.panic",
						"panic", fmt.Sprint(rec),
						"request_id", GetRequestID(r.Context()),
						"stack", string(debug.Stack()),
					)
				}
				writeError(w, Internal("panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func genRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
