package lookups

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/lookup"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type dataResponse struct {
	Data any `json:"data"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options
// value. Request paths are interpreted relative to the mount point, so callers
// mounting under a prefix should strip it first (RegisterRoutes does).
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	svc := opts.Service
	var initErr error
	if svc == nil {
		svc, initErr = NewMockWithOptions(opts)
	}
	logger := opts.Logger

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if initErr != nil {
			logger.Error("lookups: dataset unavailable", zap.Error(initErr))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		route, key, ok := matchRoute(r.URL)
		if !ok {
			http.NotFound(w, r)
			return
		}

		var (
			data any
			err  error
		)
		switch route {
		case lookup.OpRegions:
			data, err = svc.Regions(r.Context())
		case lookup.OpNameOptions:
			data, err = svc.NameOptions(r.Context(), key)
		case lookup.OpDetails:
			data, err = svc.Details(r.Context(), key)
		}
		if err != nil {
			code := statusFor(err)
			logger.Warn("lookups: request failed",
				zap.String("op", route),
				zap.String("key", key),
				zap.Int("status", code),
				zap.Error(err),
			)
			http.Error(w, http.StatusText(code), code)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(dataResponse{Data: data})
	})
}

// matchRoute resolves the relative request path into an operation and its key.
func matchRoute(u *url.URL) (string, string, bool) {
	raw := u.EscapedPath()
	segments := strings.Split(strings.Trim(raw, "/"), "/")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", "", false
		}
		segments[i] = decoded
	}

	switch {
	case len(segments) == 1 && segments[0] == "regions":
		return lookup.OpRegions, "", true
	case len(segments) == 3 && segments[0] == "regions" && segments[2] == "names" && segments[1] != "":
		return lookup.OpNameOptions, segments[1], true
	case len(segments) == 3 && segments[0] == "names" && segments[2] == "details" && segments[1] != "":
		return lookup.OpDetails, segments[1], true
	default:
		return "", "", false
	}
}

func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, lookup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lookup.ErrEmptyKey):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
