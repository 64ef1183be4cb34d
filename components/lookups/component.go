package lookups

import "net/http"

// Component is a small, extraction-friendly wrapper around the lookup handler,
// the mock service, and routing helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Service returns the mock service configured by the component.
func (c *Component) Service() (*Mock, error) {
	if c == nil {
		return NewMock()
	}
	return NewMockWithOptions(c.opts)
}

// Handler returns a net/http handler for lookup queries.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}

// Mount mounts the component handler under basePath on a prefix router.
func (c *Component) Mount(router Mounter, basePath string) (string, error) {
	return MountWithOptions(router, basePath, c.Options())
}
