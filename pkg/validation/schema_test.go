package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-matterform/pkg/model"
)

func completeValues() model.FormValues {
	return model.FormValues{
		Region:         "EU",
		Name:           "Jane",
		Details:        "Details for Jane",
		Country:        "India",
		SelectedPerson: "Row1",
		Title:          "Quarterly review",
		Comment:        "",
	}
}

func TestDefaultSchema_CompleteValuesAreValid(t *testing.T) {
	result := DefaultSchema().Validate(completeValues())
	if !result.Valid {
		t.Fatalf("expected valid, got issues %#v", result.Issues)
	}
	if len(result.Errors()) != 0 {
		t.Fatalf("expected empty error map, got %#v", result.Errors())
	}
}

func TestDefaultSchema_EmptyRequiredFieldInvalidates(t *testing.T) {
	schema := DefaultSchema()
	required := []model.Field{
		model.FieldRegion,
		model.FieldName,
		model.FieldDetails,
		model.FieldCountry,
		model.FieldSelectedPerson,
		model.FieldTitle,
	}
	for _, field := range required {
		t.Run(string(field), func(t *testing.T) {
			values := completeValues()
			if err := values.Set(field, ""); err != nil {
				t.Fatalf("set: %v", err)
			}
			result := schema.Validate(values)
			if result.Valid {
				t.Fatalf("expected invalid when %s is empty", field)
			}
			if !result.Errors().Has(field) {
				t.Fatalf("expected error entry for %s, got %#v", field, result.Errors())
			}
			if !schema.IsRequired(field) {
				t.Fatalf("expected %s to be reported as required", field)
			}
		})
	}
}

func TestDefaultSchema_LengthBounds(t *testing.T) {
	schema := DefaultSchema()

	if got := schema.ValidateField(model.FieldTitle, "abcd"); got != "Min 5 characters" {
		t.Fatalf("short title: got %q", got)
	}
	if got := schema.ValidateField(model.FieldTitle, "abcde"); got != "" {
		t.Fatalf("5 char title should pass, got %q", got)
	}
	if got := schema.ValidateField(model.FieldTitle, ""); got != "Title is required" {
		t.Fatalf("required should short-circuit before minLength, got %q", got)
	}

	if got := schema.ValidateField(model.FieldComment, strings.Repeat("x", 250)); got != "" {
		t.Fatalf("250 char comment should pass, got %q", got)
	}
	if got := schema.ValidateField(model.FieldComment, strings.Repeat("é", 251)); got != "Max 250 characters" {
		t.Fatalf("251 rune comment: got %q", got)
	}
	if got := schema.ValidateField(model.FieldComment, ""); got != "" {
		t.Fatalf("comment is optional, got %q", got)
	}
	if got := schema.MaxLength(model.FieldComment); got != 250 {
		t.Fatalf("max length: got %d", got)
	}
}

func TestValidate_IssuesFollowSchemaOrder(t *testing.T) {
	result := DefaultSchema().Validate(model.FormValues{Title: "abc"})
	want := []string{
		"Region is required",
		"Name is required",
		"Details are required",
		"Country is required",
		"Person is required",
		"Min 5 characters",
	}
	if diff := cmp.Diff(want, result.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema([]byte(`
fields:
  - field: title
    rules:
      - kind: required
      - kind: pattern
        pattern: "^[A-Z]"
        message: Must start uppercase
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := schema.ValidateField(model.FieldTitle, ""); got != "Required" {
		t.Fatalf("default required message: got %q", got)
	}
	if got := schema.ValidateField(model.FieldTitle, "lower"); got != "Must start uppercase" {
		t.Fatalf("pattern: got %q", got)
	}
	if got := schema.ValidateField(model.FieldTitle, "Upper"); got != "" {
		t.Fatalf("pattern pass: got %q", got)
	}
	if diff := cmp.Diff([]model.Field{model.FieldTitle}, schema.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchema_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown field": "fields:\n  - field: gpn\n    rules: []\n",
		"unknown kind":  "fields:\n  - field: title\n    rules:\n      - kind: email\n",
		"bad pattern":   "fields:\n  - field: title\n    rules:\n      - kind: pattern\n        pattern: \"(\"\n",
		"duplicate":     "fields:\n  - field: title\n  - field: title\n",
		"empty":         "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSchema([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestErrorMapHelpers(t *testing.T) {
	errs := ErrorMap{model.FieldTitle: "Min 5 characters", model.FieldRegion: "Region is required"}
	visible := errs.Filter(func(f model.Field) bool { return f == model.FieldTitle })
	if diff := cmp.Diff(ErrorMap{model.FieldTitle: "Min 5 characters"}, visible); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	want := []string{"region: Region is required", "title: Min 5 characters"}
	if diff := cmp.Diff(want, errs.Sorted()); diff != "" {
		t.Fatalf("sorted mismatch (-want +got):\n%s", diff)
	}
}
