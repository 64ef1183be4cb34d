// Package server exposes the Create Matter form over HTTP. Each browser
// session owns one matter.Controller; the HTML page drives it with plain
// form posts and the JSON API answers every call with an envelope carrying
// the settled form state.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/metrics"
	"github.com/goliatone/go-matterform/pkg/openapi"
	"github.com/goliatone/go-matterform/pkg/render"
	jsonrenderer "github.com/goliatone/go-matterform/pkg/renderers/json"
	"github.com/goliatone/go-matterform/pkg/renderers/vanilla"
	"github.com/goliatone/go-matterform/pkg/store"
)

const (
	// DefaultCookieName carries the session id.
	DefaultCookieName = "matterform_session"
	// CSRFField is the hidden form field holding the session's form token.
	CSRFField = "_csrf"

	pagePath = "/matter"
)

// Server routes HTTP requests to per-session controllers.
type Server struct {
	sessions   *sessions
	logger     *zap.Logger
	metrics    *metrics.Metrics
	store      store.Store
	spec       *openapi.Spec
	renderers  *render.Registry
	theme      *theme.RendererConfig
	termsText  string
	lookups    http.Handler
	cookieName string
	router     chi.Router
}

// New builds a server whose sessions get their controller from factory.
func New(factory ControllerFactory, options ...Option) (*Server, error) {
	if factory == nil {
		return nil, errors.New("server: controller factory is required")
	}
	s := &Server{
		sessions:   newSessions(factory),
		logger:     zap.NewNop(),
		cookieName: DefaultCookieName,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderers == nil {
		html, err := vanilla.New()
		if err != nil {
			return nil, err
		}
		registry, err := render.NewRegistry(html, jsonrenderer.New())
		if err != nil {
			return nil, err
		}
		s.renderers = registry
	}

	s.sessions.logger = s.logger
	if s.metrics != nil {
		s.sessions.opened = s.metrics.SessionOpened
		s.sessions.closed = s.metrics.SessionClosed
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sweep closes idle sessions and reports how many were removed.
func (s *Server) Sweep() int {
	return s.sessions.sweep()
}

// Sessions reports the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.count()
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("server: evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close closes every session and its controller.
func (s *Server) Close() error {
	s.sessions.closeAll()
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pagePath, http.StatusSeeOther)
	})
	r.Handle("/assets/*", http.StripPrefix("/assets", http.FileServer(http.FS(vanilla.AssetsFS()))))

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	if s.spec != nil {
		r.Handle("/openapi.json", s.spec.Handler())
	}
	if s.lookups != nil {
		r.Mount("/api/lookups", http.StripPrefix("/api/lookups", s.lookups))
	}

	r.Route(pagePath, func(r chi.Router) {
		r.Get("/", s.withSession(s.page))
		r.Post("/{event}", s.withSession(s.pageEvent))
		r.Post("/picker/{event}", s.withSession(s.pageEvent))
	})

	r.Route("/api/matter", func(r chi.Router) {
		r.Get("/state", s.withSession(s.apiState))
		r.Post("/region", s.withSession(s.apiRegion))
		r.Post("/name", s.withSession(s.apiName))
		r.Post("/picker/open", s.withSession(s.apiOpenPicker))
		r.Post("/picker/close", s.withSession(s.apiClosePicker))
		r.Post("/field", s.withSession(s.apiField))
		r.Post("/blur", s.withSession(s.apiBlur))
		r.Post("/create", s.withSession(s.apiCreate))
		r.Post("/accept", s.withSession(s.apiAccept))
		r.Post("/reject", s.withSession(s.apiReject))
		r.Post("/reset", s.withSession(s.apiReset))
	})

	if s.store != nil {
		r.Get("/api/matters", s.listMatters)
		r.Get("/api/matters/{id}", s.getMatter)
	}
	return r
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session)

// withSession resolves the session cookie, opening a new session when the
// cookie is missing, unknown or expired.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(s.cookieName); err == nil {
			id = cookie.Value
		}
		sess, ok := s.sessions.get(id)
		if !ok {
			var err error
			sess, err = s.sessions.create(context.WithoutCancel(r.Context()))
			if err != nil {
				s.logger.Error("server: open session", zap.Error(err))
				writeEnvelope(w, http.StatusInternalServerError, unexpected(err, nil))
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     s.cookieName,
				Value:    sess.id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, sess)
	}
}

// settle waits for the session's lookups so responses carry settled data.
func (s *Server) settle(r *http.Request, sess *session) {
	if err := sess.ctrl.Wait(r.Context()); err != nil {
		s.logger.Debug("server: wait interrupted", zap.String("session", sess.id), zap.Error(err))
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
