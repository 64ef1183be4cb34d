package render

import (
	"strings"

	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[model.Field][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level error slices,
// trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload resolves payload keys onto form fields. Keys may be plain
// names, aliases such as "instanceRegion", or JSON pointer / dotted paths
// ("/body/title", "$.values.comment"); the last segment decides. Unknown keys
// become form-level errors so messages are not lost.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[model.Field][]string)}
	for raw, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		field, ok := fieldForPath(raw)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[field] = normalizeMessages(append(mapping.Fields[field], normalized...))
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// FieldMessages merges the visible validation errors with server-side
// messages, one slice per field in display order.
func FieldMessages(visible validation.ErrorMap, server ErrorMapping) map[model.Field][]string {
	out := make(map[model.Field][]string)
	for _, field := range model.Fields {
		var messages []string
		if msg, ok := visible[field]; ok {
			messages = append(messages, msg)
		}
		messages = append(messages, server.Fields[field]...)
		if normalized := normalizeMessages(messages); len(normalized) > 0 {
			out[field] = normalized
		}
	}
	return out
}

func fieldForPath(raw string) (model.Field, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	trimmed = strings.NewReplacer("[", ".", "]", "").Replace(trimmed)
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	if len(parts) == 0 {
		return "", false
	}
	return model.ParseField(parts[len(parts)-1])
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
