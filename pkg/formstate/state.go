// Package formstate holds the mutable state of a single form instance: the
// current values, the initial values they are compared against for dirtiness,
// and the per-field touched flags that decide when an error is shown. Errors
// are never stored; they are derived from the values and the validation
// schema on every read.
//
// A Container is not safe for concurrent use. Owners such as the matter
// controller serialise access.
package formstate

import (
	"fmt"

	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// Container tracks values, touched flags, and initial values.
type Container struct {
	schema  *validation.Schema
	initial model.FormValues
	values  model.FormValues
	touched map[model.Field]bool
}

// New seeds a container with initial values. A nil schema falls back to the
// embedded default schema.
func New(schema *validation.Schema, initial model.FormValues) *Container {
	if schema == nil {
		schema = validation.DefaultSchema()
	}
	return &Container{
		schema:  schema,
		initial: initial,
		values:  initial,
		touched: make(map[model.Field]bool),
	}
}

// Schema returns the schema the container validates against.
func (c *Container) Schema() *validation.Schema {
	return c.schema
}

// Values returns a copy of the current values.
func (c *Container) Values() model.FormValues {
	return c.values
}

// Initial returns the values the container was (re)initialised with.
func (c *Container) Initial() model.FormValues {
	return c.initial
}

// Value returns the current value of field.
func (c *Container) Value(field model.Field) string {
	return c.values.Get(field)
}

// Set writes a single field.
func (c *Container) Set(field model.Field, value string) error {
	if err := c.values.Set(field, value); err != nil {
		return fmt.Errorf("formstate: %w", err)
	}
	return nil
}

// Clear empties the listed fields.
func (c *Container) Clear(fields ...model.Field) {
	for _, field := range fields {
		_ = c.values.Set(field, "")
	}
}

// Touch marks field as interacted with (blurred at least once).
func (c *Container) Touch(field model.Field) {
	c.touched[field] = true
}

// TouchAll marks every field touched, the way a submit attempt does.
func (c *Container) TouchAll() {
	for _, field := range model.Fields {
		c.touched[field] = true
	}
}

// Touched reports whether field has been touched.
func (c *Container) Touched(field model.Field) bool {
	return c.touched[field]
}

// TouchedFields returns the touched fields in display order.
func (c *Container) TouchedFields() []model.Field {
	var out []model.Field
	for _, field := range model.Fields {
		if c.touched[field] {
			out = append(out, field)
		}
	}
	return out
}

// Dirty reports whether any field differs from its initial value.
func (c *Container) Dirty() bool {
	return c.values != c.initial
}

// Validate evaluates the current values against the schema.
func (c *Container) Validate() validation.Result {
	return c.schema.Validate(c.values)
}

// Errors returns every current validation error.
func (c *Container) Errors() validation.ErrorMap {
	return c.Validate().Errors()
}

// VisibleErrors returns only the errors of touched fields.
func (c *Container) VisibleErrors() validation.ErrorMap {
	return c.Errors().Filter(c.Touched)
}

// IsValid reports whether the current values pass the schema.
func (c *Container) IsValid() bool {
	return c.Validate().Valid
}

// Reset restores the initial values and clears touched flags.
func (c *Container) Reset() {
	c.values = c.initial
	c.touched = make(map[model.Field]bool)
}

// Reinitialize replaces the initial values and resets to them.
func (c *Container) Reinitialize(initial model.FormValues) {
	c.initial = initial
	c.Reset()
}
