package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Setup(&buf, "warn", ComponentWorker)
	l.Info("hidden")
	l.Warn("shown", FieldCount, 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "count=3") {
		t.Errorf("missing fields in %q", out)
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithUser("u1").
		WithEntity("BUDGET", "2025-06").
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldUserID] != "u1" || f[FieldEntityID] != "2025-06" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice must emit key/value pairs")
	}
	if _, ok := NewFields().WithUser("")[FieldUserID]; ok {
		t.Fatal("empty user id should be omitted")
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)})

	var got *Logger
	h := Middleware(base, func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("logger not propagated: %+v", got)
	}
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing from %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("fallback logger should report unknown component")
	}
}

func TestRequestFailedLevels(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})})
	r := httptest.NewRequest(http.MethodPost, "/expenses?x=1", nil)
	r = r.WithContext(NewContext(r.Context(), base))

	RequestFailed(r, http.StatusUnprocessableEntity, "u1", ErrorTypeValidation, errors.New("bad amount"))
	if buf.Len() != 0 {
		t.Fatalf("client errors log at debug, got %q", buf.String())
	}

	RequestFailed(r, http.StatusInternalServerError, "u1", ErrorTypeDatabase, errors.New("disk full"))
	out := buf.String()
	for _, want := range []string{"Request failed", "status_code=500", "user_id=u1", "error_type=database_error", `error="disk full"`, "component=http"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
