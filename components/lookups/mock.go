package lookups

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/model"
)

// DefaultDelay is the artificial latency of every mock lookup.
const DefaultDelay = 400 * time.Millisecond

// Mock answers lookups from a Dataset after a fixed delay. It never fails for
// well-formed input; unknown regions yield an empty option list.
type Mock struct {
	data  *Dataset
	delay time.Duration
}

var (
	_ lookup.Service = (*Mock)(nil)
	_ lookup.Prefill = (*Mock)(nil)
)

// NewMock builds a mock service from the component options.
func NewMock(fns ...OptionFn) (*Mock, error) {
	opts := NewOptions(fns...)
	return NewMockWithOptions(opts)
}

// NewMockWithOptions builds a mock service from a pre-built Options value.
func NewMockWithOptions(opts Options) (*Mock, error) {
	opts = NewOptions(func(o *Options) { *o = opts })
	data := opts.Dataset
	if data == nil {
		loaded, err := DefaultDataset()
		if err != nil {
			return nil, err
		}
		data = loaded
	}
	return &Mock{data: data, delay: opts.Delay}, nil
}

// Dataset exposes the data the mock answers from.
func (m *Mock) Dataset() *Dataset {
	return m.data
}

func (m *Mock) Regions(ctx context.Context) ([]model.Region, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	return m.data.RegionList(), nil
}

func (m *Mock) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	opts, _ := m.data.NameOptions(region)
	return opts, nil
}

func (m *Mock) Details(ctx context.Context, name string) (model.Details, error) {
	if strings.TrimSpace(name) == "" {
		return model.Details{}, lookup.ErrEmptyKey
	}
	if err := m.sleep(ctx); err != nil {
		return model.Details{}, err
	}
	return m.data.DetailsFor(name), nil
}

// InitialValues returns the dataset's prefill record.
func (m *Mock) InitialValues(ctx context.Context) (model.Partial, error) {
	if err := m.sleep(ctx); err != nil {
		return model.Partial{}, err
	}
	return m.data.Prefill, nil
}

func (m *Mock) sleep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
