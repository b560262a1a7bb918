package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"kasir-pos/internal/logger"
	"kasir-pos/internal/notice"

	"go.uber.org/zap"
)

type envelope struct {
	Data    any             `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Notices []notice.Notice `json:"notices"`
}

var errEmptyBody = errors.New("request body is required")

type badRequest struct{ err error }

func (b badRequest) Error() string { return "invalid request: " + b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

// withNotices gives every request its own notice collector; the response
// drains it.
func withNotices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := notice.WithCollector(r.Context(), notice.NewCollector())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func drained(r *http.Request) []notice.Notice {
	if c, ok := notice.CollectorFrom(r.Context()); ok {
		return c.Drain()
	}
	return []notice.Notice{}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, envelope{Data: data, Notices: drained(r)})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "api"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	write(w, r, status, envelope{Error: msg, Code: code, Notices: drained(r)})
}

func write(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromCtx(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

// decode reads a JSON body into v. An empty body is an error unless optional.
func decode(r *http.Request, v any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return badRequest{errEmptyBody}
	}

	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case errors.Is(err, io.EOF):
		if optional {
			return nil
		}
		return badRequest{errEmptyBody}
	case err != nil:
		return badRequest{err}
	}
	return nil
}
