// Package lookup defines the collaborator contract the Create Matter form
// depends on: listing regions, listing the name options of a region, and
// fetching the details of a name. It also ships transport and decorator
// implementations (HTTP client, caching, tracing, instrumentation) that wrap
// any Service.
package lookup

import (
	"context"
	"errors"

	"github.com/goliatone/go-matterform/pkg/model"
)

// Operation names used for logging, metrics and spans.
const (
	OpRegions     = "regions"
	OpNameOptions = "name_options"
	OpDetails     = "details"
	OpPrefill     = "prefill"
)

var (
	// ErrNotFound signals an unknown region or name.
	ErrNotFound = errors.New("lookup: not found")
	// ErrEmptyKey is returned when a region or name argument is blank.
	ErrEmptyKey = errors.New("lookup: key is required")
)

// Service resolves the dependent data of the form.
type Service interface {
	Regions(ctx context.Context) ([]model.Region, error)
	NameOptions(ctx context.Context, region string) ([]model.NameOption, error)
	Details(ctx context.Context, name string) (model.Details, error)
}

// Prefill provides the initial values used to hydrate a form before it is
// first shown.
type Prefill interface {
	InitialValues(ctx context.Context) (model.Partial, error)
}

// PrefillFunc adapts a function to the Prefill interface.
type PrefillFunc func(ctx context.Context) (model.Partial, error)

// InitialValues calls f.
func (f PrefillFunc) InitialValues(ctx context.Context) (model.Partial, error) {
	return f(ctx)
}

// StaticPrefill returns a Prefill that always yields partial.
func StaticPrefill(partial model.Partial) Prefill {
	return PrefillFunc(func(ctx context.Context) (model.Partial, error) {
		if err := ctx.Err(); err != nil {
			return model.Partial{}, err
		}
		return partial, nil
	})
}
