// Package log は slog を包んだアプリケーション共通のロガーを提供します。
package log

import (
	"io"
	"log/slog"
	"strings"
)

// Logger はキャッシュや HTTP 層が使うロガーの抽象です。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Slog は slog による Logger 実装です。
type Slog struct {
	l *slog.Logger
}

// New は level ("debug"|"info"|"error") と format ("text"|"json") に従って w へ出力する Slog を作成します。
func New(level, format string, w io.Writer) *Slog {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Slog{l: slog.New(h)}
}

// ParseLevel はログレベル名を slog.Level に変換します。不明な名前は info です。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With は属性を付与したロガーを返します。
func (s *Slog) With(args ...any) *Slog { return &Slog{l: s.l.With(args...)} }

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }
