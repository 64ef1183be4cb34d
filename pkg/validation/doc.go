// Package validation evaluates FormValues against a declarative schema: an
// ordered list of fields, each carrying an ordered list of rules. Rules for a
// field run in sequence and stop at the first failure, so every field reports
// at most one message. Schemas can be built in code or parsed from YAML; the
// embedded default schema encodes the Create Matter rules.
package validation
