package compliance

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one compliance evaluation. The blocking and
// warning slices partition Violations; Compliant is true exactly when no
// blocking violation exists.
type Result struct {
	CheckID            uuid.UUID     `json:"check_id"`
	Compliant          bool          `json:"compliant"`
	Violations         []*Violation  `json:"violations"`
	BlockingViolations []*Violation  `json:"blocking_violations"`
	WarningViolations  []*Violation  `json:"warning_violations"`
	Timestamp          time.Time     `json:"timestamp"`
	ProcessTime        time.Duration `json:"process_time"`
}

// NewResult classifies violations into blocking and warning buckets.
// The two predicates are checked in order: a violation is blocking when its
// severity is ERROR or it is explicitly marked a blocker; only otherwise is
// a WARNING violation placed in the warning bucket. The order matters for a
// WARNING violation marked as a blocker, which lands in the blocking bucket.
func NewResult(violations []*Violation) *Result {
	result := &Result{
		Violations:         violations,
		BlockingViolations: []*Violation{},
		WarningViolations:  []*Violation{},
	}
	if result.Violations == nil {
		result.Violations = []*Violation{}
	}

	for _, v := range violations {
		switch {
		case v.Severity == SeverityError || v.IsBlocker:
			result.BlockingViolations = append(result.BlockingViolations, v)
		case v.Severity == SeverityWarning:
			result.WarningViolations = append(result.WarningViolations, v)
		}
	}

	result.Compliant = len(result.BlockingViolations) == 0
	return result
}
