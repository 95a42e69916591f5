package log

import (
	"context"
	"log/slog"
	"net/http"
)

// Middleware puts base (enriched with the request id from idFn) into every request context.
func Middleware(base *Logger, idFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.WithComponent(ComponentHTTP)
			if idFn != nil {
				if id := idFn(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// LogRequest writes one completion record; 4xx log at warn, 5xx at error.
func LogRequest(ctx context.Context, l *Logger, r *http.Request, status int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().WithHTTP(r.Method, r.URL.Path, status, durationMs)
	fields[FieldClientIP] = clientIP
	fields[FieldUserAgent] = r.Header.Get("User-Agent")
	l.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogError logs err with its component and operation.
func LogError(ctx context.Context, l *Logger, msg string, err error, component, op string, extra Fields) {
	if extra == nil {
		extra = NewFields()
	}
	l.ErrorContext(ctx, msg, extra.WithError(err).WithOperation(op).WithComponent(component).ToSlice()...)
}
