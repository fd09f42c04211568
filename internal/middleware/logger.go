// Package middleware provides HTTP middleware for the Lucky Draw API.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request through logger
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&slogFormatter{logger: logger})
}

type slogFormatter struct {
	logger *slog.Logger
}

func (f *slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{
		logger: f.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		),
	}
}

type slogEntry struct {
	logger *slog.Logger
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	e.logger.Log(context.Background(), level, "request completed",
		"status", status,
		"bytes", bytes,
		"duration_ms", elapsed.Milliseconds(),
	)
}

func (e *slogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("request panicked", "panic", fmt.Sprint(v), "stack", string(stack))
}
