// Package http serves the Record Store over a JSON REST API.
//
// This file builds JSON responses and maps domain errors onto status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// ErrorBody is the JSON envelope of every failed request.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Send writes headers, status and the encoded body. A nil body sends no content.
func (b *JSONResponseBuilder) Send(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", log.FieldComponent, log.ComponentHTTP, log.FieldError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Send(w)
}

// errorResponse classifies err into a status code and body. Unknown errors
// become a 500 whose message does not leak internals.
func errorResponse(err error) (int, ErrorBody) {
	var verr *core.ValidationError
	var cerr *core.ConflictError
	switch {
	case errors.As(err, &verr):
		fields := make(map[string]string, len(verr.Fields))
		for name, ferr := range verr.Fields {
			fields[name] = ferr.Error()
		}
		return http.StatusUnprocessableEntity, ErrorBody{Error: "validation failed", Fields: fields}
	case errors.As(err, &cerr):
		return http.StatusConflict, ErrorBody{Error: cerr.Message}
	case errors.Is(err, core.ErrEmailTaken):
		return http.StatusConflict, ErrorBody{Error: core.ErrEmailTaken.Error()}
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: core.ErrNotFound.Error()}
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, core.ErrAuth):
		return http.StatusUnauthorized, ErrorBody{Error: err.Error()}
	case errors.Is(err, core.ErrInvalidMonth):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Fields: map[string]string{"monthYear": err.Error()}}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	userID, _ := auth.UserFrom(r.Context())
	log.RequestFailed(r, status, userID, errorType(status), err)
	writeJSON(w, status, body)
}

func errorType(status int) string {
	switch status {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return log.ErrorTypeValidation
	case http.StatusConflict:
		return log.ErrorTypeConflict
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusUnauthorized:
		return log.ErrorTypeAuth
	default:
		return log.ErrorTypeInternal
	}
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().
		Status(http.StatusUnauthorized).
		Header("WWW-Authenticate", `Bearer realm="budgetbuddy"`).
		Body(ErrorBody{Error: "missing or invalid token"}).
		Send(w)
}
