package server

import (
	"net/http"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/metrics"
	"github.com/goliatone/go-matterform/pkg/openapi"
	"github.com/goliatone/go-matterform/pkg/render"
	"github.com/goliatone/go-matterform/pkg/store"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records HTTP and session metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithStore exposes submitted matters under /api/matters.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithSpec serves the API contract at /openapi.json.
func WithSpec(spec *openapi.Spec) Option {
	return func(s *Server) {
		s.spec = spec
	}
}

// WithRenderers replaces the page renderers. The registry fallback renders
// GET /matter; "?format=<name>" picks another one.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithTheme applies a resolved theme to rendered pages.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithTermsText sets the body of the terms modal.
func WithTermsText(text string) Option {
	return func(s *Server) {
		s.termsText = text
	}
}

// WithSessionTTL evicts sessions idle for longer than ttl. Zero keeps
// sessions until Close.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl >= 0 {
			s.sessions.ttl = ttl
		}
	}
}

// WithClock overrides time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.sessions.now = now
		}
	}
}

// WithLookups mounts the lookup handler under /api/lookups. The handler sees
// paths relative to the mount point.
func WithLookups(handler http.Handler) Option {
	return func(s *Server) {
		s.lookups = handler
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.cookieName = trimmed
		}
	}
}
