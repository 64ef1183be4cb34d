package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Field identifies a single entry of FormValues.
type Field string

const (
	FieldRegion         Field = "region"
	FieldName           Field = "name"
	FieldDetails        Field = "details"
	FieldCountry        Field = "country"
	FieldSelectedPerson Field = "selectedPerson"
	FieldTitle          Field = "title"
	FieldComment        Field = "comment"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldRegion,
	FieldName,
	FieldDetails,
	FieldCountry,
	FieldSelectedPerson,
	FieldTitle,
	FieldComment,
}

// ParseField resolves a raw field identifier. Matching is case-insensitive and
// accepts the "instanceRegion" alias used by older clients.
func ParseField(raw string) (Field, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "instanceRegion") {
		return FieldRegion, true
	}
	for _, field := range Fields {
		if strings.EqualFold(trimmed, string(field)) {
			return field, true
		}
	}
	return "", false
}

// Derived reports whether the field is populated by lookups rather than typed
// by the user.
func (f Field) Derived() bool {
	switch f {
	case FieldName, FieldDetails, FieldCountry:
		return true
	default:
		return false
	}
}

// FormValues is the flat record edited by the Create Matter form.
type FormValues struct {
	Region         string `json:"region" yaml:"region"`
	Name           string `json:"name" yaml:"name"`
	Details        string `json:"details" yaml:"details"`
	Country        string `json:"country" yaml:"country"`
	SelectedPerson string `json:"selectedPerson" yaml:"selectedPerson"`
	Title          string `json:"title" yaml:"title"`
	Comment        string `json:"comment" yaml:"comment"`
}

// Get returns the value stored for field.
func (v FormValues) Get(field Field) string {
	switch field {
	case FieldRegion:
		return v.Region
	case FieldName:
		return v.Name
	case FieldDetails:
		return v.Details
	case FieldCountry:
		return v.Country
	case FieldSelectedPerson:
		return v.SelectedPerson
	case FieldTitle:
		return v.Title
	case FieldComment:
		return v.Comment
	default:
		return ""
	}
}

// Set stores value under field. Unknown fields return an error.
func (v *FormValues) Set(field Field, value string) error {
	switch field {
	case FieldRegion:
		v.Region = value
	case FieldName:
		v.Name = value
	case FieldDetails:
		v.Details = value
	case FieldCountry:
		v.Country = value
	case FieldSelectedPerson:
		v.SelectedPerson = value
	case FieldTitle:
		v.Title = value
	case FieldComment:
		v.Comment = value
	default:
		return fmt.Errorf("model: unknown field %q", field)
	}
	return nil
}

// Map flattens the record into a field-name keyed map.
func (v FormValues) Map() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, field := range Fields {
		out[string(field)] = v.Get(field)
	}
	return out
}

// Partial is a sparse FormValues record, used by prefill sources. Nil entries
// are left untouched when merged.
type Partial struct {
	Region         *string `json:"region,omitempty" yaml:"region,omitempty"`
	Name           *string `json:"name,omitempty" yaml:"name,omitempty"`
	Details        *string `json:"details,omitempty" yaml:"details,omitempty"`
	Country        *string `json:"country,omitempty" yaml:"country,omitempty"`
	SelectedPerson *string `json:"selectedPerson,omitempty" yaml:"selectedPerson,omitempty"`
	Title          *string `json:"title,omitempty" yaml:"title,omitempty"`
	Comment        *string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Merge returns base with every non-nil entry of p applied.
func (p Partial) Merge(base FormValues) FormValues {
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	out := base
	apply(&out.Region, p.Region)
	apply(&out.Name, p.Name)
	apply(&out.Details, p.Details)
	apply(&out.Country, p.Country)
	apply(&out.SelectedPerson, p.SelectedPerson)
	apply(&out.Title, p.Title)
	apply(&out.Comment, p.Comment)
	return out
}

// String returns a pointer to s, handy when building Partial literals.
func String(s string) *string {
	return &s
}

// Region is a selectable instance region.
type Region struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel falls back to the identifier when no label is configured.
func (r Region) DisplayLabel() string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return r.ID
}

// NameOption is one entry of the name picker for a region.
type NameOption struct {
	Name string `json:"name" yaml:"name"`
}

// TableEntry is one row of the details table. Person rows carry Name and
// Lastname; value rows carry Value.
type TableEntry struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Lastname string `json:"lastname,omitempty" yaml:"lastname,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
}

// DisplayName is the string a person select stores for this row.
func (e TableEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Value != "" {
		return e.Value
	}
	return strconv.Itoa(e.ID)
}

// Details is the result of a details lookup for a selected name.
type Details struct {
	Table   []TableEntry `json:"tablevalues" yaml:"tablevalues"`
	Details string       `json:"details" yaml:"details"`
	Country string       `json:"country" yaml:"country"`
}
