// Package matterform wires the Create Matter form from configuration: the
// lookup source and its decorators, the matter store, metrics, theme, and the
// API contract. Commands and embedders build a Runtime once and ask it for
// controllers or a ready HTTP server.
package matterform

import (
	"context"
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/components/lookups"
	"github.com/goliatone/go-matterform/pkg/config"
	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/metrics"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/openapi"
	"github.com/goliatone/go-matterform/pkg/render"
	"github.com/goliatone/go-matterform/pkg/server"
	"github.com/goliatone/go-matterform/pkg/store"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// Snapshot aliases matter.Snapshot for callers importing only the root package.
type Snapshot = matter.Snapshot

// FormValues aliases model.FormValues.
type FormValues = model.FormValues

// Runtime holds the shared dependencies every session controller uses.
type Runtime struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Store   store.Store
	Spec    *openapi.Spec
	Theme   *theme.RendererConfig

	lookups lookup.Service
	mock    *lookups.Mock
	prefill lookup.Prefill
	schema  *validation.Schema
	cache   *lookup.Cached
}

// Option customises NewRuntime.
type Option func(*Runtime)

// WithMetrics uses m instead of a fresh metrics registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Runtime) {
		if m != nil {
			rt.Metrics = m
		}
	}
}

// WithStore uses st instead of opening the configured store driver.
func WithStore(st store.Store) Option {
	return func(rt *Runtime) {
		if st != nil {
			rt.Store = st
		}
	}
}

// WithLookupService replaces the configured lookup source. Decorators are
// still applied on top.
func WithLookupService(svc lookup.Service) Option {
	return func(rt *Runtime) {
		if svc != nil {
			rt.lookups = svc
		}
	}
}

// NewRuntime builds the runtime described by cfg.
func NewRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger, options ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{Config: cfg, Logger: logger}
	for _, opt := range options {
		if opt != nil {
			opt(rt)
		}
	}
	if rt.Metrics == nil {
		rt.Metrics = metrics.New()
	}

	source, err := rt.lookupSource()
	if err != nil {
		return nil, err
	}
	rt.cache = lookup.NewCached(source)
	rt.lookups = lookup.NewInstrumented(lookup.NewTraced(rt.cache, nil), rt.Metrics.ObserveLookup)

	if cfg.Prefill {
		prefill, ok := source.(lookup.Prefill)
		if !ok {
			logger.Warn("matterform: prefill enabled but the lookup source has no initial values")
		} else {
			rt.prefill = prefill
		}
	}

	if rt.schema, err = loadSchema(cfg.SchemaFile); err != nil {
		return nil, err
	}

	if rt.Spec, err = openapi.LoadEmbedded(ctx); err != nil {
		return nil, fmt.Errorf("matterform: api contract: %w", err)
	}

	selection, err := render.NewStaticSelector(cfg.Theme, cfg.ThemeVariant, render.DefaultManifest()).
		Select(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		return nil, err
	}
	rt.Theme = render.ThemeConfig(selection, render.DefaultPartials())

	if rt.Store == nil {
		st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		rt.Store = st
	}
	return rt, nil
}

func (rt *Runtime) lookupSource() (lookup.Service, error) {
	if rt.lookups != nil {
		return rt.lookups, nil
	}
	if base := strings.TrimSpace(rt.Config.LookupBaseURL); base != "" {
		rt.Logger.Info("matterform: using remote lookups", zap.String("base_url", base))
		return lookup.NewClient(base)
	}
	mock, err := lookups.NewMock(
		lookups.WithDelay(rt.Config.LookupDelay),
		lookups.WithLogger(rt.Logger.Named("lookups")),
	)
	if err != nil {
		return nil, fmt.Errorf("matterform: lookup dataset: %w", err)
	}
	rt.mock = mock
	return mock, nil
}

func loadSchema(path string) (*validation.Schema, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return validation.DefaultSchema(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("matterform: schema file: %w", err)
	}
	defer f.Close()
	schema, err := validation.LoadSchema(f)
	if err != nil {
		return nil, fmt.Errorf("matterform: schema file %s: %w", path, err)
	}
	return schema, nil
}

// Lookups returns the decorated lookup service shared by all controllers.
func (rt *Runtime) Lookups() lookup.Service {
	return rt.lookups
}

// Submitter persists confirmed matters and records submission metrics.
func (rt *Runtime) Submitter() matter.Submitter {
	saved := func(m store.Matter) {
		rt.Logger.Info("matter saved",
			zap.String("id", m.ID),
			zap.String("region", m.Values.Region),
			zap.String("name", m.Values.Name),
			zap.String("title", m.Values.Title),
		)
	}
	return rt.Metrics.Submitter(store.Submitter(rt.Store, store.WithSaved(saved)))
}

// NewController builds an unloaded controller over the shared dependencies.
// It satisfies server.ControllerFactory.
func (rt *Runtime) NewController(context.Context) (*matter.Controller, error) {
	options := []matter.Option{
		matter.WithLogger(rt.Logger.Named("matter")),
		matter.WithSchema(rt.schema),
		matter.WithSubmitter(rt.Submitter()),
	}
	if rt.prefill != nil {
		options = append(options, matter.WithPrefill(rt.prefill))
	}
	return matter.New(rt.lookups, options...)
}

// NewServer builds the HTTP server. The in-process lookup mock, when used,
// is mounted under /api/lookups.
func (rt *Runtime) NewServer(options ...server.Option) (*server.Server, error) {
	base := []server.Option{
		server.WithLogger(rt.Logger.Named("server")),
		server.WithMetrics(rt.Metrics),
		server.WithStore(rt.Store),
		server.WithSpec(rt.Spec),
		server.WithTheme(rt.Theme),
		server.WithTermsText(rt.Config.TermsText),
		server.WithSessionTTL(rt.Config.SessionTTL),
	}
	if rt.mock != nil {
		base = append(base, server.WithLookups(lookups.NewHandler(
			lookups.WithService(rt.mock),
			lookups.WithLogger(rt.Logger.Named("lookups")),
		)))
	}
	return server.New(rt.NewController, append(base, options...)...)
}

// PurgeLookups drops every memoised lookup result.
func (rt *Runtime) PurgeLookups() {
	if rt.cache != nil {
		rt.cache.Purge()
	}
}

// Close releases the store.
func (rt *Runtime) Close() error {
	if rt.Store == nil {
		return nil
	}
	if err := rt.Store.Close(); err != nil {
		return fmt.Errorf("matterform: closing store: %w", err)
	}
	return nil
}
