package lookups

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/lookup"
)

// GuardFunc can reject a request before it is served.
type GuardFunc func(r *http.Request) error

// Options configures the mock service and the HTTP handler.
type Options struct {
	RoutePath string
	Delay     time.Duration
	Guard     GuardFunc
	Logger    *zap.Logger

	// Dataset overrides the embedded data.
	Dataset *Dataset
	// Service overrides the service the handler answers from. When nil the
	// handler builds a Mock from Dataset and Delay.
	Service lookup.Service
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath: "/api/lookups",
		Delay:     DefaultDelay,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/lookups"
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dataset != nil {
		opts.Dataset = opts.Dataset.Clone()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithDelay(delay time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Delay = delay
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithDataset(ds *Dataset) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Dataset = ds
	}
}

func WithService(svc lookup.Service) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Service = svc
	}
}
