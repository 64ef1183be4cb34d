package render

import (
	"context"

	"github.com/goliatone/go-matterform/pkg/matter"
)

// Renderer converts a controller snapshot into a byte representation (HTML,
// JSON, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view matter.Snapshot, options RenderOptions) ([]byte, error)
}
