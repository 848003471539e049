// Package api serves seating plans over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/plans/render                  render a plan sent in the body
//	GET  /v1/rooms/{roomID}/plan           render a stored room (?subroom=&format=)
//	POST /v1/credentials/archive           credential cards as a ZIP archive
//	GET  /v1/credentials/archive/{id}      re-download a recent archive
//
// Every /v1 route requires "Authorization: Bearer <session id>". The
// session decides which establishment the request acts for.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eduplan/seatplan/pkg/buildinfo"
	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

// maxBodyBytes bounds request bodies. A full 350-seat plan is well below.
const maxBodyBytes = 4 << 20

// Server handles API requests.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	sessions session.Store
	local    *session.Session
	policy   seating.Policy
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a [Server].
type Option func(*Server)

// WithSessions authenticates requests against s.
func WithSessions(s session.Store) Option { return func(srv *Server) { srv.sessions = s } }

// WithLocalEstablishment disables authentication: every request acts for
// establishmentID.
func WithLocalEstablishment(establishmentID string) Option {
	return func(srv *Server) { srv.local = session.Local(establishmentID) }
}

// WithPolicy sets the configuration limits exports are checked against.
func WithPolicy(p seating.Policy) Option { return func(srv *Server) { srv.policy = p } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithClock sets the clock stamping plans and archives sent without a date.
func WithClock(now func() time.Time) Option { return func(srv *Server) { srv.now = now } }

// NewServer creates a server. Without WithSessions or
// WithLocalEstablishment every /v1 request is rejected.
func NewServer(runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		store:  st,
		policy: seating.DefaultPolicy,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			buildinfo.Info
		}{"ok", buildinfo.Get()})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/plans/render", s.handleRenderPlan)
		r.Get("/rooms/{roomID}/plan", s.handleRoomPlan)
		r.Post("/credentials/archive", s.handleCreateArchive)
		r.Get("/credentials/archive/{archiveID}", s.handleFetchArchive)
	})
	return r
}
