package openapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Spec is a loaded and validated contract.
type Spec struct {
	doc  Document
	t    *openapi3.T
	json []byte
}

// Load parses doc with kin-openapi and validates it. External references
// are not followed.
func Load(ctx context.Context, doc Document) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, fmt.Errorf("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	t, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	if t.Paths == nil || t.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi: %s does not contain any paths", doc.Location())
	}
	if err := t.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate %s: %w", doc.Location(), err)
	}

	encoded, err := t.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: encode %s: %w", doc.Location(), err)
	}
	return &Spec{doc: doc, t: t, json: encoded}, nil
}

// LoadEmbedded loads the contract bundled with the binary.
func LoadEmbedded(ctx context.Context) (*Spec, error) {
	return Load(ctx, Embedded())
}

// Title returns info.title.
func (s *Spec) Title() string {
	if s.t.Info == nil {
		return ""
	}
	return s.t.Info.Title
}

// Version returns info.version.
func (s *Spec) Version() string {
	if s.t.Info == nil {
		return ""
	}
	return s.t.Info.Version
}

// Operations lists every operation sorted by path then method.
func (s *Spec) Operations() []Operation {
	var out []Operation
	for path, item := range s.t.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{
				ID:      id,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Operation finds the operation declared for method and path. path uses the
// contract's template syntax ("/api/matters/{id}").
func (s *Spec) Operation(method, path string) (Operation, bool) {
	for _, op := range s.Operations() {
		if op.Method == strings.ToUpper(method) && op.Path == path {
			return op, true
		}
	}
	return Operation{}, false
}

// ValidateSchema checks a decoded JSON value (maps, slices, float64s)
// against the named component schema.
func (s *Spec) ValidateSchema(name string, value any) error {
	if s.t.Components == nil {
		return fmt.Errorf("openapi: no components declared")
	}
	ref, ok := s.t.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("openapi: schema %q not found", name)
	}
	if err := ref.Value.VisitJSON(value); err != nil {
		return fmt.Errorf("openapi: %s: %w", name, err)
	}
	return nil
}

// JSON returns the contract encoded as JSON.
func (s *Spec) JSON() []byte {
	return append([]byte(nil), s.json...)
}

// Handler serves the contract as JSON. Only GET and HEAD are allowed.
func (s *Spec) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(s.json)
	})
}
