package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-matterform/pkg/model"
)

//go:embed default_schema.yaml
var defaultSchemaYAML []byte

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
	defaultErr    error
)

// FieldRules binds an ordered rule list to a form field.
type FieldRules struct {
	Field model.Field `yaml:"field" json:"field"`
	Rules []Rule      `yaml:"rules" json:"rules"`
}

// Schema is an immutable, ordered set of field rules.
type Schema struct {
	fields []FieldRules
	index  map[model.Field]int
}

type schemaDocument struct {
	Fields []FieldRules `yaml:"fields"`
}

// NewSchema validates and compiles the provided field rules. Fields keep the
// order they are declared in; declaring a field twice is an error.
func NewSchema(fields ...FieldRules) (*Schema, error) {
	s := &Schema{
		fields: make([]FieldRules, 0, len(fields)),
		index:  make(map[model.Field]int, len(fields)),
	}
	for _, entry := range fields {
		field, ok := model.ParseField(string(entry.Field))
		if !ok {
			return nil, fmt.Errorf("validation: unknown field %q", entry.Field)
		}
		if _, exists := s.index[field]; exists {
			return nil, fmt.Errorf("validation: field %q declared twice", field)
		}
		rules := make([]Rule, len(entry.Rules))
		copy(rules, entry.Rules)
		for i := range rules {
			if err := rules[i].compile(); err != nil {
				return nil, fmt.Errorf("validation: field %q rule %d: %w", field, i, err)
			}
		}
		s.index[field] = len(s.fields)
		s.fields = append(s.fields, FieldRules{Field: field, Rules: rules})
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error, for package-level wiring.
func MustSchema(fields ...FieldRules) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(raw []byte) (*Schema, error) {
	if len(raw) == 0 {
		return nil, errors.New("validation: schema document is empty")
	}
	var doc schemaDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("validation: decode schema: %w", err)
	}
	return NewSchema(doc.Fields...)
}

// LoadSchema reads and parses a YAML schema document from r.
func LoadSchema(r io.Reader) (*Schema, error) {
	if r == nil {
		return nil, errors.New("validation: missing reader")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("validation: read schema: %w", err)
	}
	return ParseSchema(raw)
}

// DefaultSchema returns the embedded Create Matter schema.
func DefaultSchema() *Schema {
	defaultOnce.Do(func() {
		defaultSchema, defaultErr = ParseSchema(defaultSchemaYAML)
	})
	if defaultErr != nil {
		panic(fmt.Errorf("validation: embedded schema: %w", defaultErr))
	}
	return defaultSchema
}

// Fields returns the declared fields in order.
func (s *Schema) Fields() []model.Field {
	if s == nil {
		return nil
	}
	out := make([]model.Field, len(s.fields))
	for i, entry := range s.fields {
		out[i] = entry.Field
	}
	return out
}

// Rules returns a copy of the rules declared for field.
func (s *Schema) Rules(field model.Field) []Rule {
	if s == nil {
		return nil
	}
	idx, ok := s.index[field]
	if !ok {
		return nil
	}
	return append([]Rule(nil), s.fields[idx].Rules...)
}

// IsRequired reports whether field carries a required rule.
func (s *Schema) IsRequired(field model.Field) bool {
	for _, rule := range s.Rules(field) {
		if rule.Kind == RuleRequired {
			return true
		}
	}
	return false
}

// MaxLength reports the max length bound for field, or 0 when unbounded.
func (s *Schema) MaxLength(field model.Field) int {
	for _, rule := range s.Rules(field) {
		if rule.Kind == RuleMaxLength {
			return rule.Value
		}
	}
	return 0
}

// ValidateField runs the rules for field against value and returns the first
// failing message, or "" when the value passes.
func (s *Schema) ValidateField(field model.Field, value string) string {
	if s == nil {
		return ""
	}
	idx, ok := s.index[field]
	if !ok {
		return ""
	}
	for _, rule := range s.fields[idx].Rules {
		if !rule.Passes(value) {
			return rule.Message
		}
	}
	return ""
}

// Validate evaluates every declared field against values.
func (s *Schema) Validate(values model.FormValues) Result {
	result := Result{Valid: true}
	if s == nil {
		return result
	}
	for _, entry := range s.fields {
		if msg := s.ValidateField(entry.Field, values.Get(entry.Field)); msg != "" {
			result.Valid = false
			result.Issues = append(result.Issues, Issue{Field: entry.Field, Message: msg})
		}
	}
	return result
}

// Issue is a single failing field.
type Issue struct {
	Field   model.Field `json:"field"`
	Message string      `json:"message"`
}

// Result captures the outcome of Validate. Issues follow schema order.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors converts the issues into an ErrorMap.
func (r Result) Errors() ErrorMap {
	if len(r.Issues) == 0 {
		return ErrorMap{}
	}
	out := make(ErrorMap, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = issue.Message
	}
	return out
}

// Messages returns the issue messages in schema order.
func (r Result) Messages() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// ErrorMap maps a field to its current error message. Absent keys are valid.
type ErrorMap map[model.Field]string

// Has reports whether field has an error.
func (m ErrorMap) Has(field model.Field) bool {
	_, ok := m[field]
	return ok
}

// Filter keeps only the entries for which keep returns true.
func (m ErrorMap) Filter(keep func(model.Field) bool) ErrorMap {
	out := make(ErrorMap, len(m))
	for field, msg := range m {
		if keep(field) {
			out[field] = msg
		}
	}
	return out
}

// Strings converts the map to plain string keys, handy for JSON payloads.
func (m ErrorMap) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for field, msg := range m {
		out[string(field)] = msg
	}
	return out
}

// Sorted returns "field: message" lines sorted by field name.
func (m ErrorMap) Sorted() []string {
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field+": "+m[model.Field(field)])
	}
	return out
}
