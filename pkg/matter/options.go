package matter

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// Submitter performs the side effect of a confirmed submission.
type Submitter interface {
	Submit(ctx context.Context, values model.FormValues) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, values model.FormValues) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, values model.FormValues) error {
	return f(ctx, values)
}

// LogSubmitter returns a Submitter that only logs the submitted values.
func LogSubmitter(logger *zap.Logger) Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return SubmitterFunc(func(ctx context.Context, values model.FormValues) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("matter submitted",
			zap.String("region", values.Region),
			zap.String("name", values.Name),
			zap.String("country", values.Country),
			zap.String("selected_person", values.SelectedPerson),
			zap.String("title", values.Title),
			zap.Int("comment_len", len(values.Comment)),
		)
		return nil
	})
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSchema overrides the validation schema.
func WithSchema(schema *validation.Schema) Option {
	return func(c *Controller) {
		if schema != nil {
			c.schema = schema
		}
	}
}

// WithPrefill hydrates the form from prefill during Load.
func WithPrefill(prefill lookup.Prefill) Option {
	return func(c *Controller) {
		c.prefill = prefill
	}
}

// WithSubmitter sets the submission side effect. The default logs the values.
func WithSubmitter(submitter Submitter) Option {
	return func(c *Controller) {
		if submitter != nil {
			c.submitter = submitter
		}
	}
}
