// Package compliance defines the rule model evaluated against refund
// requests: the rule tagged union, violations, the evaluation result, and
// the loosely-typed evaluation context.
package compliance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// EvaluationType tags the shape of a rule's evaluation
type EvaluationType string

const (
	EvaluationTimeframe     EvaluationType = "timeframe"
	EvaluationAmount        EvaluationType = "amount"
	EvaluationMethod        EvaluationType = "method"
	EvaluationDocumentation EvaluationType = "documentation"
	EvaluationFrequency     EvaluationType = "frequency"
	EvaluationComposite     EvaluationType = "composite"
)

// TimeframeOperator selects how a resolved date is compared
type TimeframeOperator string

const (
	TimeframeWithinDays TimeframeOperator = "withinDays"
	TimeframeAfterDays  TimeframeOperator = "afterDays"
	TimeframeBeforeDate TimeframeOperator = "beforeDate"
	TimeframeAfterDate  TimeframeOperator = "afterDate"
)

// AmountOperator selects how the refund amount is compared
type AmountOperator string

const (
	AmountLessThan           AmountOperator = "lessThan"
	AmountLessThanOrEqual    AmountOperator = "lessThanOrEqual"
	AmountGreaterThan        AmountOperator = "greaterThan"
	AmountGreaterThanOrEqual AmountOperator = "greaterThanOrEqual"
	AmountEquals             AmountOperator = "equals"
	AmountNotEquals          AmountOperator = "notEquals"
)

// ConditionOperator is used by documentation rule conditions
type ConditionOperator string

const (
	ConditionGreaterThan ConditionOperator = "greaterThan"
	ConditionLessThan    ConditionOperator = "lessThan"
)

// CompositeOperator combines child rule outcomes
type CompositeOperator string

const (
	CompositeAND CompositeOperator = "AND"
	CompositeOR  CompositeOperator = "OR"
)

// TimeframeEvaluation compares a date field against a day window or a fixed
// date. Days is used by withinDays/afterDays, Date by beforeDate/afterDate.
type TimeframeEvaluation struct {
	Field    string            `json:"field"`
	Operator TimeframeOperator `json:"operator"`
	Days     int               `json:"days,omitempty"`
	Date     time.Time         `json:"date,omitempty"`
}

// AmountEvaluation compares the refund amount against a literal value or a
// context field reference. Exactly one of Value/ValueField is set.
type AmountEvaluation struct {
	Operator   AmountOperator  `json:"operator"`
	Value      decimal.Decimal `json:"value,omitempty"`
	ValueField string          `json:"valueField,omitempty"`
}

// MethodEvaluation restricts the refund payout method to an allow-list
type MethodEvaluation struct {
	AllowedMethods []string `json:"allowedMethods"`
}

// DocumentationCondition gates a documentation requirement on a numeric
// comparison. Field "amount" reads the refund amount directly.
type DocumentationCondition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    float64           `json:"value"`
}

// DocumentationEvaluation requires supporting document types, optionally
// only when the condition holds
type DocumentationEvaluation struct {
	RequiredTypes []string                `json:"requiredTypes"`
	Condition     *DocumentationCondition `json:"condition,omitempty"`
}

// Frequency evaluation defaults applied when a rule leaves them unset
const (
	DefaultFrequencyLimit  = 3
	DefaultFrequencyPeriod = "30 days"
)

// FrequencyEvaluation caps how many refunds a caller-supplied counter may
// reach within a period
type FrequencyEvaluation struct {
	Limit      int    `json:"limit,omitempty"`
	TimePeriod string `json:"timePeriod,omitempty"`
}

// EffectiveLimit returns the configured limit or the default
func (f *FrequencyEvaluation) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultFrequencyLimit
	}
	return f.Limit
}

// EffectivePeriod returns the configured period or the default
func (f *FrequencyEvaluation) EffectivePeriod() string {
	if f.TimePeriod == "" {
		return DefaultFrequencyPeriod
	}
	return f.TimePeriod
}

// CompositeEvaluation combines child rules under a boolean operator
type CompositeEvaluation struct {
	Operator CompositeOperator `json:"operator"`
	Rules    []Rule            `json:"rules"`
}

// Evaluation is the tagged union of rule shapes. Exactly the variant named
// by Type is populated.
type Evaluation struct {
	Type          EvaluationType           `json:"type"`
	Timeframe     *TimeframeEvaluation     `json:"timeframe,omitempty"`
	Amount        *AmountEvaluation        `json:"amount,omitempty"`
	Method        *MethodEvaluation        `json:"method,omitempty"`
	Documentation *DocumentationEvaluation `json:"documentation,omitempty"`
	Frequency     *FrequencyEvaluation     `json:"frequency,omitempty"`
	Composite     *CompositeEvaluation     `json:"composite,omitempty"`
}

// Rule is an immutable compliance rule supplied by a provider
type Rule struct {
	RuleID           string     `json:"rule_id" validate:"required"`
	RuleName         string     `json:"rule_name" validate:"required"`
	Description      string     `json:"description,omitempty"`
	Evaluation       Evaluation `json:"evaluation"`
	ViolationCode    string     `json:"violation_code" validate:"required"`
	ViolationMessage string     `json:"violation_message" validate:"required"`
	Severity         Severity   `json:"severity" validate:"required,oneof=ERROR WARNING"`
	Remediation      string     `json:"remediation,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural soundness of the rule and its evaluation
// variant, recursing through composite children. Providers call this at
// load time so malformed rules never reach the dispatcher.
func (r *Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("rule %s: %w", r.RuleID, err)
	}
	return r.Evaluation.validate(r.RuleID)
}

func (e *Evaluation) validate(ruleID string) error {
	switch e.Type {
	case EvaluationTimeframe:
		if e.Timeframe == nil {
			return fmt.Errorf("rule %s: timeframe evaluation missing", ruleID)
		}
		if e.Timeframe.Field == "" {
			return fmt.Errorf("rule %s: timeframe field cannot be empty", ruleID)
		}
		switch e.Timeframe.Operator {
		case TimeframeWithinDays, TimeframeAfterDays:
			if e.Timeframe.Days <= 0 {
				return fmt.Errorf("rule %s: timeframe %s requires a positive day count", ruleID, e.Timeframe.Operator)
			}
		case TimeframeBeforeDate, TimeframeAfterDate:
			if e.Timeframe.Date.IsZero() {
				return fmt.Errorf("rule %s: timeframe %s requires a date", ruleID, e.Timeframe.Operator)
			}
		default:
			return fmt.Errorf("rule %s: unknown timeframe operator %q", ruleID, e.Timeframe.Operator)
		}
	case EvaluationAmount:
		if e.Amount == nil {
			return fmt.Errorf("rule %s: amount evaluation missing", ruleID)
		}
		switch e.Amount.Operator {
		case AmountLessThan, AmountLessThanOrEqual, AmountGreaterThan,
			AmountGreaterThanOrEqual, AmountEquals, AmountNotEquals:
		default:
			return fmt.Errorf("rule %s: unknown amount operator %q", ruleID, e.Amount.Operator)
		}
	case EvaluationMethod:
		if e.Method == nil || len(e.Method.AllowedMethods) == 0 {
			return fmt.Errorf("rule %s: method evaluation requires a non-empty allow-list", ruleID)
		}
	case EvaluationDocumentation:
		if e.Documentation == nil || len(e.Documentation.RequiredTypes) == 0 {
			return fmt.Errorf("rule %s: documentation evaluation requires required types", ruleID)
		}
		if cond := e.Documentation.Condition; cond != nil {
			if cond.Operator != ConditionGreaterThan && cond.Operator != ConditionLessThan {
				return fmt.Errorf("rule %s: unknown condition operator %q", ruleID, cond.Operator)
			}
			if cond.Field == "" {
				return fmt.Errorf("rule %s: condition field cannot be empty", ruleID)
			}
		}
	case EvaluationFrequency:
		if e.Frequency == nil {
			return fmt.Errorf("rule %s: frequency evaluation missing", ruleID)
		}
	case EvaluationComposite:
		if e.Composite == nil {
			return fmt.Errorf("rule %s: composite evaluation missing", ruleID)
		}
		if e.Composite.Operator != CompositeAND && e.Composite.Operator != CompositeOR {
			return fmt.Errorf("rule %s: unknown composite operator %q", ruleID, e.Composite.Operator)
		}
		if len(e.Composite.Rules) == 0 {
			return fmt.Errorf("rule %s: composite evaluation requires child rules", ruleID)
		}
		for i := range e.Composite.Rules {
			if err := e.Composite.Rules[i].Validate(); err != nil {
				return fmt.Errorf("rule %s: child %d: %w", ruleID, i, err)
			}
		}
	default:
		// Unknown types are tolerated here for forward compatibility; the
		// dispatcher logs and skips them at evaluation time.
	}
	return nil
}

// evaluationWire is the flat on-the-wire shape rules arrive in
type evaluationWire struct {
	Type           EvaluationType          `json:"type"`
	Field          string                  `json:"field,omitempty"`
	Operator       string                  `json:"operator,omitempty"`
	Value          json.RawMessage         `json:"value,omitempty"`
	AllowedMethods []string                `json:"allowedMethods,omitempty"`
	RequiredTypes  []string                `json:"requiredTypes,omitempty"`
	Condition      *DocumentationCondition `json:"condition,omitempty"`
	Limit          int                     `json:"limit,omitempty"`
	TimePeriod     string                  `json:"timePeriod,omitempty"`
	Rules          []Rule                  `json:"rules,omitempty"`
}

// UnmarshalJSON maps the flat wire format onto the tagged union. The wire
// `value` key is polymorphic: a day count or date string for timeframe
// rules; a number, or a dotted field-reference string, for amount rules.
func (e *Evaluation) UnmarshalJSON(data []byte) error {
	var wire evaluationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*e = Evaluation{Type: wire.Type}

	switch wire.Type {
	case EvaluationTimeframe:
		tf := &TimeframeEvaluation{
			Field:    wire.Field,
			Operator: TimeframeOperator(wire.Operator),
		}
		switch tf.Operator {
		case TimeframeWithinDays, TimeframeAfterDays:
			if err := json.Unmarshal(wire.Value, &tf.Days); err != nil {
				return fmt.Errorf("timeframe %s value: %w", tf.Operator, err)
			}
		case TimeframeBeforeDate, TimeframeAfterDate:
			var raw string
			if err := json.Unmarshal(wire.Value, &raw); err != nil {
				return fmt.Errorf("timeframe %s value: %w", tf.Operator, err)
			}
			date, err := ParseDate(raw)
			if err != nil {
				return fmt.Errorf("timeframe %s value: %w", tf.Operator, err)
			}
			tf.Date = date
		}
		e.Timeframe = tf

	case EvaluationAmount:
		am := &AmountEvaluation{Operator: AmountOperator(wire.Operator)}
		if len(wire.Value) > 0 {
			var str string
			if err := json.Unmarshal(wire.Value, &str); err == nil {
				// A string value containing a dot is a context field
				// reference; anything else must parse as a number.
				if strings.Contains(str, ".") {
					am.ValueField = str
				} else {
					dec, err := decimal.NewFromString(str)
					if err != nil {
						return fmt.Errorf("amount value %q: %w", str, err)
					}
					am.Value = dec
				}
			} else {
				var num float64
				if err := json.Unmarshal(wire.Value, &num); err != nil {
					return fmt.Errorf("amount value: %w", err)
				}
				am.Value = decimal.NewFromFloat(num)
			}
		}
		e.Amount = am

	case EvaluationMethod:
		e.Method = &MethodEvaluation{AllowedMethods: wire.AllowedMethods}

	case EvaluationDocumentation:
		e.Documentation = &DocumentationEvaluation{
			RequiredTypes: wire.RequiredTypes,
			Condition:     wire.Condition,
		}

	case EvaluationFrequency:
		e.Frequency = &FrequencyEvaluation{
			Limit:      wire.Limit,
			TimePeriod: wire.TimePeriod,
		}

	case EvaluationComposite:
		e.Composite = &CompositeEvaluation{
			Operator: CompositeOperator(wire.Operator),
			Rules:    wire.Rules,
		}
	}

	return nil
}

// MarshalJSON writes the union back out in the flat wire format
func (e Evaluation) MarshalJSON() ([]byte, error) {
	wire := evaluationWire{Type: e.Type}

	switch e.Type {
	case EvaluationTimeframe:
		if e.Timeframe != nil {
			wire.Field = e.Timeframe.Field
			wire.Operator = string(e.Timeframe.Operator)
			var value any
			switch e.Timeframe.Operator {
			case TimeframeBeforeDate, TimeframeAfterDate:
				value = e.Timeframe.Date.UTC().Format(time.RFC3339)
			default:
				value = e.Timeframe.Days
			}
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			wire.Value = raw
		}
	case EvaluationAmount:
		if e.Amount != nil {
			wire.Operator = string(e.Amount.Operator)
			var value any = e.Amount.Value
			if e.Amount.ValueField != "" {
				value = e.Amount.ValueField
			}
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			wire.Value = raw
		}
	case EvaluationMethod:
		if e.Method != nil {
			wire.AllowedMethods = e.Method.AllowedMethods
		}
	case EvaluationDocumentation:
		if e.Documentation != nil {
			wire.RequiredTypes = e.Documentation.RequiredTypes
			wire.Condition = e.Documentation.Condition
		}
	case EvaluationFrequency:
		if e.Frequency != nil {
			wire.Limit = e.Frequency.Limit
			wire.TimePeriod = e.Frequency.TimePeriod
		}
	case EvaluationComposite:
		if e.Composite != nil {
			wire.Operator = string(e.Composite.Operator)
			wire.Rules = e.Composite.Rules
		}
	}

	return json.Marshal(wire)
}

// dateLayouts accepted for rule dates and resolved context values
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// ParseDate parses a date value from a rule definition or resolved context
// field. Accepted inputs are time.Time and RFC 3339 or YYYY-MM-DD strings.
func ParseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", v)
	default:
		return time.Time{}, fmt.Errorf("unparseable date value of type %T", value)
	}
}
