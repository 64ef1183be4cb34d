// Package json renders controller snapshots as JSON documents, for API
// clients and for inspecting form state from the command line.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/render"
)

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty prints the output using indent for each level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer writes {"state": ..., "messages": ..., "formErrors": ...}.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Document is the JSON payload produced by Render.
type Document struct {
	State      matter.Snapshot     `json:"state"`
	Messages   map[string][]string `json:"messages,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
	TermsText  string              `json:"termsText,omitempty"`
}

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, view matter.Snapshot, options render.RenderOptions) ([]byte, error) {
	doc := BuildDocument(view, options)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// BuildDocument merges the visible validation errors with the server
// payload in options. Terms text is only included while the modal is open.
func BuildDocument(view matter.Snapshot, options render.RenderOptions) Document {
	mapping := render.MapErrorPayload(options.Errors)
	doc := Document{
		State:      view,
		FormErrors: render.MergeFormErrors(options.FormErrors, mapping.Form...),
	}
	if fields := render.FieldMessages(view.Errors, mapping); len(fields) > 0 {
		doc.Messages = make(map[string][]string, len(fields))
		for field, messages := range fields {
			doc.Messages[string(field)] = messages
		}
	}
	if view.TermsOpen {
		doc.TermsText = options.TermsText
	}
	return doc
}
