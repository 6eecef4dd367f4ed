// internal/httpserver/server.go
//
// HTTP server wiring for the blocksum lesson backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", POST /lesson/new.
//   - Lesson endpoints (require session token): mounted under /lesson.
//   - Session token (JWT) + cookie handling.
//   - Background sweep of idle lessons.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The SSE stream (/lesson/events) is exempt from the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/blocksum/internal/config"
	"github.com/robalobadob/blocksum/internal/i18n"
	"github.com/robalobadob/blocksum/internal/lesson"
	"github.com/robalobadob/blocksum/internal/store"
)

// Server bundles router, lesson store and configuration.
type Server struct {
	r       *chi.Mux
	store   store.Store
	cfg     *config.Config
	sched   lesson.Scheduler
	lang    language.Tag
	now     func() time.Time
	logger  zerolog.Logger
	timeout time.Duration

	heartbeat time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithScheduler sets the scheduler new lessons use for their timers.
func WithScheduler(s lesson.Scheduler) Option { return func(srv *Server) { srv.sched = s } }

// WithClock sets the wall clock used for tokens and the daily problem.
func WithClock(now func() time.Time) Option { return func(srv *Server) { srv.now = now } }

// WithLogger sets the logger for the server, its handlers and its lessons.
func WithLogger(l zerolog.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithHeartbeat sets how often an idle event stream is pinged.
func WithHeartbeat(d time.Duration) Option { return func(srv *Server) { srv.heartbeat = d } }

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		cfg:     cfg,
		sched:   lesson.WallClock,
		lang:    language.Japanese,
		now:     time.Now,
		logger:  log.Logger,
		timeout: 10 * time.Second,

		heartbeat: 15 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	if s.heartbeat <= 0 {
		s.heartbeat = 15 * time.Second
	}
	if tag, ok := i18n.Parse(cfg.DefaultLang); ok {
		s.lang = tag
	}
	if err := i18n.Init(); err != nil {
		s.logger.Error().Err(err).Msg("load message catalogs")
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(s.accessLog)     // one line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"service":   "blocksum",
			"endpoints": []string{"/health", "POST /lesson/new", "/lesson/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Lesson endpoints
	s.r.Route("/lesson", s.mountLesson)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Sweep evicts idle lessons every interval until ctx is done.
func (s *Server) Sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.now()); n > 0 {
				s.logger.Info().Int("evicted", n).Int("active", s.store.Len()).Msg("swept idle lessons")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("encode response")
	}
}

// writeError writes a JSON error body in the {"error": "..."} shape.
func (s *Server) writeError(w http.ResponseWriter, status int, code string) {
	s.writeJSON(w, status, map[string]string{"error": code})
}
