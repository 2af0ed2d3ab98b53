package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownContractType = errors.New("unknown contract type")
	ErrValidationFailed    = errors.New("validation failed")
)

type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every field that failed its rule.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s (%s)", issue.Field, issue.Rule))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// Schema maps payload field names to validator tags.
type Schema struct {
	Rules map[string]string
}

func (s Schema) RequiredFields() []string {
	fields := make([]string, 0, len(s.Rules))
	for field, rule := range s.Rules {
		if hasRequired(rule) {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

func (s Schema) merge(extra map[string]string) Schema {
	rules := make(map[string]string, len(s.Rules)+len(extra))
	for field, rule := range s.Rules {
		rules[field] = rule
	}
	for field, rule := range extra {
		rules[field] = joinRules(rules[field], rule)
	}
	return Schema{Rules: rules}
}

// Issues checks fields against the rules. Presence is checked here so that a
// zero number still counts as supplied; the remaining tags go to the validator.
func (s Schema) Issues(fields map[string]any) []FieldIssue {
	names := make([]string, 0, len(s.Rules))
	for name := range s.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []FieldIssue
	for _, name := range names {
		rule := s.Rules[name]
		value, present := fields[name]
		if !present || isBlank(value) {
			if hasRequired(rule) {
				issues = append(issues, FieldIssue{Field: name, Rule: "required"})
			}
			continue
		}
		rest := withoutRequired(rule)
		if rest == "" {
			continue
		}
		if err := validate.Var(value, rest); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				issues = append(issues, FieldIssue{Field: name, Rule: verrs[0].Tag()})
				continue
			}
			issues = append(issues, FieldIssue{Field: name, Rule: rest})
		}
	}
	return issues
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func withoutRequired(rule string) string {
	parts := strings.Split(rule, ",")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "required" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, ",")
}

func hasRequired(rule string) bool {
	for _, part := range strings.Split(rule, ",") {
		if strings.TrimSpace(part) == "required" {
			return true
		}
	}
	return false
}

func joinRules(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "," + b
	}
}
