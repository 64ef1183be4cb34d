package lookup

import (
	"context"
	"time"

	"github.com/goliatone/go-matterform/pkg/model"
)

// ObserveFunc receives the outcome of every lookup call.
type ObserveFunc func(op string, elapsed time.Duration, err error)

// Instrumented reports call durations and outcomes to an ObserveFunc.
type Instrumented struct {
	next    Service
	observe ObserveFunc
	now     func() time.Time
}

var _ Service = (*Instrumented)(nil)

// NewInstrumented wraps next. A nil observe makes the wrapper transparent.
func NewInstrumented(next Service, observe ObserveFunc) *Instrumented {
	return &Instrumented{next: next, observe: observe, now: time.Now}
}

func (i *Instrumented) Regions(ctx context.Context) ([]model.Region, error) {
	start := i.now()
	out, err := i.next.Regions(ctx)
	i.report(OpRegions, start, err)
	return out, err
}

func (i *Instrumented) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	start := i.now()
	out, err := i.next.NameOptions(ctx, region)
	i.report(OpNameOptions, start, err)
	return out, err
}

func (i *Instrumented) Details(ctx context.Context, name string) (model.Details, error) {
	start := i.now()
	out, err := i.next.Details(ctx, name)
	i.report(OpDetails, start, err)
	return out, err
}

func (i *Instrumented) report(op string, start time.Time, err error) {
	if i.observe == nil {
		return
	}
	i.observe(op, i.now().Sub(start), err)
}
