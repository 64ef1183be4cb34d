package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	RuleRequired  = "required"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
)

// Rule is a single predicate plus the message reported when it fails. Length
// rules count runes and, like pattern rules, only apply to non-empty values so
// optional fields stay optional.
type Rule struct {
	Kind    string `yaml:"kind" json:"kind"`
	Value   int    `yaml:"value,omitempty" json:"value,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Message string `yaml:"message" json:"message"`

	re *regexp.Regexp
}

// Required fails on blank values.
func Required(message string) Rule {
	return Rule{Kind: RuleRequired, Message: message}
}

// MinLength fails when a non-empty value is shorter than n runes.
func MinLength(n int, message string) Rule {
	return Rule{Kind: RuleMinLength, Value: n, Message: message}
}

// MaxLength fails when a value is longer than n runes.
func MaxLength(n int, message string) Rule {
	return Rule{Kind: RuleMaxLength, Value: n, Message: message}
}

// Pattern fails when a non-empty value does not match expr.
func Pattern(expr, message string) Rule {
	return Rule{Kind: RulePattern, Pattern: expr, Message: message}
}

func (r *Rule) compile() error {
	switch r.Kind {
	case RuleRequired:
	case RuleMinLength, RuleMaxLength:
		if r.Value < 0 {
			return fmt.Errorf("%s bound must not be negative", r.Kind)
		}
	case RulePattern:
		if strings.TrimSpace(r.Pattern) == "" {
			return fmt.Errorf("pattern rule requires an expression")
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", r.Pattern, err)
		}
		r.re = re
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	if strings.TrimSpace(r.Message) == "" {
		r.Message = defaultMessage(*r)
	}
	return nil
}

// Passes reports whether value satisfies the rule.
func (r Rule) Passes(value string) bool {
	if r.Kind == RuleRequired {
		return strings.TrimSpace(value) != ""
	}
	if value == "" {
		return true
	}
	switch r.Kind {
	case RuleMinLength:
		return utf8.RuneCountInString(value) >= r.Value
	case RuleMaxLength:
		return utf8.RuneCountInString(value) <= r.Value
	case RulePattern:
		if r.re == nil {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return false
			}
			return re.MatchString(value)
		}
		return r.re.MatchString(value)
	default:
		return false
	}
}

func defaultMessage(r Rule) string {
	switch r.Kind {
	case RuleRequired:
		return "Required"
	case RuleMinLength:
		return fmt.Sprintf("Min %d characters", r.Value)
	case RuleMaxLength:
		return fmt.Sprintf("Max %d characters", r.Value)
	default:
		return "Invalid value"
	}
}
