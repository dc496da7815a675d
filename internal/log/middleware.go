package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or the slog default tagged
// "unknown" outside a request.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware stores base in each request context, tagged with the id
// requestID extracts. An empty id is left out.
func Middleware(base *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = base.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// RequestFailed logs a request that ended in an error response. Server
// errors log at Error, everything else at Debug.
func RequestFailed(r *http.Request, status int, userID, errorType string, err error) {
	ctx := r.Context()
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
		WithUser(userID).
		WithErrorType(errorType).
		WithError(err)
	fields[FieldStatusCode] = status

	l := FromContext(ctx)
	if status >= http.StatusInternalServerError {
		l.ErrorContext(ctx, "Request failed", fields.ToSlice()...)
		return
	}
	l.DebugContext(ctx, "Request rejected", fields.ToSlice()...)
}
