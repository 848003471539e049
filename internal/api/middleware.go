package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/observability"
	"github.com/eduplan/seatplan/pkg/session"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	scopeKey
)

// requestID reuses a well-formed incoming ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request ID stored in ctx.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Request()

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", RequestIDFrom(r.Context()),
			"duration", time.Since(start))
	})
}

// authenticate resolves the caller's scope from the bearer session.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.local != nil {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey, s.local.Scope)))
			return
		}
		if s.sessions == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "authentication is not configured"))
			return
		}

		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			s.writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "missing bearer token"))
			return
		}
		sess, err := s.sessions.Get(r.Context(), token)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeUnauthorized, err, "invalid session"))
			return
		}
		if err := sess.Scope.Validate(); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeUnauthorized, err, "session has no establishment"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey, sess.Scope)))
	})
}

func scopeFrom(ctx context.Context) session.Scope {
	scope, _ := ctx.Value(scopeKey).(session.Scope)
	return scope
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
