package compliance

// Severity grades how serious a violation is
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Engine-generated violation codes. Rule-specific codes come from the rule
// definitions themselves.
const (
	CodeFieldNotAvailable   = "FIELD_NOT_AVAILABLE"
	CodeInvalidDateFormat   = "INVALID_DATE_FORMAT"
	CodeRuleEvaluationError = "RULE_EVALUATION_ERROR"
	CodeSystemError         = "SYSTEM_ERROR"
)

// Violation is a structured record of a specific compliance failure.
// Violations are immutable once created.
type Violation struct {
	RuleID      string         `json:"rule_id,omitempty"`
	Code        string         `json:"violation_code"`
	Message     string         `json:"violation_message"`
	Severity    Severity       `json:"severity"`
	Remediation string         `json:"remediation,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	IsBlocker   bool           `json:"is_blocker,omitempty"`
}

// NewRuleViolation creates a violation carrying the rule's own code,
// message, severity, and remediation
func NewRuleViolation(rule *Rule, details map[string]any) *Violation {
	return &Violation{
		RuleID:      rule.RuleID,
		Code:        rule.ViolationCode,
		Message:     rule.ViolationMessage,
		Severity:    rule.Severity,
		Remediation: rule.Remediation,
		Details:     details,
	}
}

// NewFieldNotAvailableViolation reports a context field a rule depends on
// that could not be resolved
func NewFieldNotAvailableViolation(rule *Rule, field string) *Violation {
	return &Violation{
		RuleID:   rule.RuleID,
		Code:     CodeFieldNotAvailable,
		Message:  "Required field not available: " + field,
		Severity: SeverityError,
		Details: map[string]any{
			"field": field,
		},
	}
}

// IsBlocking reports whether this violation prevents the refund from
// proceeding
func (v *Violation) IsBlocking() bool {
	return v.Severity == SeverityError || v.IsBlocker
}
