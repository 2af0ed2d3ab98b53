package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Duration string

const (
	DurationTemporary Duration = "temporary"
	DurationPermanent Duration = "permanent"
)

// ContractInput is the type-sensitive part of a contract payload.
type ContractInput struct {
	StartDate       time.Time
	EndDate         *time.Time
	PositionsSought []string
	Fields          map[string]any
}

// ContractTypeBehavior is the behavior bundle resolved for one contract type.
type ContractTypeBehavior interface {
	ID() string
	Name() string
	Industry() string
	Duration() Duration
	PresentationKey() string
	FeesRequired() bool
	Schema() Schema
	Validate(input ContractInput) error
}

// Definition is one catalogue entry as written in YAML.
type Definition struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Industry        string            `yaml:"industry"`
	Duration        Duration          `yaml:"duration"`
	PresentationKey string            `yaml:"presentation_key"`
	FeesRequired    bool              `yaml:"fees_required"`
	Fields          map[string]string `yaml:"fields"`
}

func (d Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("registry: contract type id is required")
	}
	if d.Industry == "" {
		return fmt.Errorf("registry: industry is required for %s", d.ID)
	}
	if d.Duration != DurationTemporary && d.Duration != DurationPermanent {
		return fmt.Errorf("registry: invalid duration %q for %s", d.Duration, d.ID)
	}
	if d.PresentationKey == "" {
		return fmt.Errorf("registry: presentation_key is required for %s", d.ID)
	}
	fields := make([]string, 0, len(d.Fields))
	for field := range d.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := checkRule(d.Fields[field]); err != nil {
			return fmt.Errorf("registry: invalid rule %q for %s.%s: %w", d.Fields[field], d.ID, field, err)
		}
	}
	return nil
}

// checkRule dry-runs a rule through the validator, which panics on tags it
// does not know.
func checkRule(rule string) (err error) {
	rest := withoutRequired(rule)
	if rest == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	_ = validate.Var("", rest)
	return nil
}

type baseBehavior struct {
	def    Definition
	schema Schema
}

func newBase(def Definition) baseBehavior {
	return baseBehavior{def: def, schema: Schema{Rules: def.Fields}}
}

func (b baseBehavior) ID() string              { return b.def.ID }
func (b baseBehavior) Name() string            { return b.def.Name }
func (b baseBehavior) Industry() string        { return b.def.Industry }
func (b baseBehavior) Duration() Duration      { return b.def.Duration }
func (b baseBehavior) PresentationKey() string { return b.def.PresentationKey }
func (b baseBehavior) FeesRequired() bool      { return b.def.FeesRequired }
func (b baseBehavior) Schema() Schema          { return b.schema }

func (b baseBehavior) Validate(input ContractInput) error {
	return b.check(input, b.schema, nil)
}

// withRules merges industry rules into the catalogue schema. Only fields the
// type declares are merged, so an industry rule never turns an unknown field
// into a checked one.
func (b baseBehavior) withRules(rules map[string]string) Schema {
	declared := map[string]string{}
	for field, rule := range rules {
		if _, ok := b.def.Fields[field]; ok {
			declared[field] = rule
		}
	}
	return b.schema.merge(declared)
}

func (b baseBehavior) check(input ContractInput, schema Schema, extra []FieldIssue) error {
	issues := schema.Issues(input.Fields)
	issues = append(issues, extra...)
	if input.StartDate.IsZero() {
		issues = append(issues, FieldIssue{Field: "start_date", Rule: "required"})
	}
	if b.def.Duration == DurationTemporary {
		switch {
		case input.EndDate == nil:
			issues = append(issues, FieldIssue{Field: "end_date", Rule: "required"})
		case !input.StartDate.IsZero() && input.EndDate.Before(input.StartDate):
			issues = append(issues, FieldIssue{Field: "end_date", Rule: "gtefield=start_date"})
		}
	}
	if len(input.PositionsSought) == 0 {
		issues = append(issues, FieldIssue{Field: "positions_sought", Rule: "min=1"})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

var dentalRules = map[string]string{
	"required_experience": "years",
	"annual_salary":       "positive_amount",
}

type dentalBehavior struct{ baseBehavior }

func (b dentalBehavior) Schema() Schema { return b.withRules(dentalRules) }

func (b dentalBehavior) Validate(input ContractInput) error {
	return b.check(input, b.Schema(), nil)
}

var pharmacyRules = map[string]string{
	"required_experience": "years",
	"annual_salary":       "positive_amount",
}

type pharmacyBehavior struct{ baseBehavior }

func (b pharmacyBehavior) Schema() Schema { return b.withRules(pharmacyRules) }

func (b pharmacyBehavior) Validate(input ContractInput) error {
	return b.check(input, b.Schema(), nil)
}

var nursingRules = map[string]string{
	"minimum_experience": "years",
	"compensation_mode":  "compensation_mode",
	"annual_salary":      "positive_amount",
}

// Each compensation mode is paid through its own rate field.
var nursingRateFields = map[string]string{
	"hourly": "hourly_rate",
	"daily":  "daily_rate",
	"fixed":  "contract_value",
}

type nursingBehavior struct{ baseBehavior }

func (b nursingBehavior) Schema() Schema { return b.withRules(nursingRules) }

func (b nursingBehavior) Validate(input ContractInput) error {
	return b.check(input, b.Schema(), b.rateIssues(input.Fields))
}

// rateIssues requires a positive rate in the field the compensation mode
// names. Unknown modes are reported by the compensation_mode rule instead.
func (b nursingBehavior) rateIssues(fields map[string]any) []FieldIssue {
	if _, declared := b.def.Fields["compensation_mode"]; !declared {
		return nil
	}
	mode, _ := fields["compensation_mode"].(string)
	rateField, ok := nursingRateFields[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		return nil
	}
	value, present := fields[rateField]
	if !present || isBlank(value) {
		return []FieldIssue{{Field: rateField, Rule: "required"}}
	}
	if err := validate.Var(value, "positive_amount"); err != nil {
		return []FieldIssue{{Field: rateField, Rule: "positive_amount"}}
	}
	return nil
}

var generalPracticeRules = map[string]string{
	"minimum_experience": "years",
	"annual_salary":      "positive_amount",
}

type generalPracticeBehavior struct{ baseBehavior }

func (b generalPracticeBehavior) Schema() Schema { return b.withRules(generalPracticeRules) }

func (b generalPracticeBehavior) Validate(input ContractInput) error {
	return b.check(input, b.Schema(), nil)
}

// genericBehavior serves industries without rules of their own.
type genericBehavior struct{ baseBehavior }

func newBehavior(def Definition) ContractTypeBehavior {
	base := newBase(def)
	switch def.Industry {
	case IndustryDental:
		return dentalBehavior{base}
	case IndustryPharmacy:
		return pharmacyBehavior{base}
	case IndustryNursing:
		return nursingBehavior{base}
	case IndustryGeneralPractice, IndustryGeneralMedicine:
		return generalPracticeBehavior{base}
	default:
		return genericBehavior{base}
	}
}
