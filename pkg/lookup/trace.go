package lookup

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-matterform/pkg/model"
)

const tracerName = "github.com/goliatone/go-matterform/pkg/lookup"

// Traced wraps a Service so each call runs inside a span. With no tracer
// provider configured the global no-op provider is used.
type Traced struct {
	next   Service
	tracer trace.Tracer
}

var _ Service = (*Traced)(nil)

// NewTraced wraps next. A nil tracer uses the global provider.
func NewTraced(next Service, tracer trace.Tracer) *Traced {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Traced{next: next, tracer: tracer}
}

func (t *Traced) Regions(ctx context.Context) ([]model.Region, error) {
	ctx, span := t.tracer.Start(ctx, "lookup."+OpRegions)
	defer span.End()
	regions, err := t.next.Regions(ctx)
	finishSpan(span, err, attribute.Int("lookup.results", len(regions)))
	return regions, err
}

func (t *Traced) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	ctx, span := t.tracer.Start(ctx, "lookup."+OpNameOptions,
		trace.WithAttributes(attribute.String("lookup.region", region)))
	defer span.End()
	opts, err := t.next.NameOptions(ctx, region)
	finishSpan(span, err, attribute.Int("lookup.results", len(opts)))
	return opts, err
}

func (t *Traced) Details(ctx context.Context, name string) (model.Details, error) {
	ctx, span := t.tracer.Start(ctx, "lookup."+OpDetails,
		trace.WithAttributes(attribute.String("lookup.name", name)))
	defer span.End()
	details, err := t.next.Details(ctx, name)
	finishSpan(span, err, attribute.Int("lookup.results", len(details.Table)))
	return details, err
}

func finishSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attrs...)
}
