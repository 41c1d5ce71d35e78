package compliance

import (
	"fmt"
	"time"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
)

const dayMillis = 86_400_000

// daysSince is the floor of the elapsed time in whole days, matching the
// millisecond arithmetic the rule thresholds were calibrated against.
func daysSince(now, date time.Time) int {
	diff := now.Sub(date).Milliseconds()
	days := diff / dayMillis
	if diff < 0 && diff%dayMillis != 0 {
		days--
	}
	return int(days)
}

// evaluateTimeframe checks a context date field against a day window or a
// fixed date boundary
func (e *Engine) evaluateTimeframe(rule *compliance.Rule, cctx compliance.Context) (*compliance.Violation, error) {
	tf := rule.Evaluation.Timeframe
	if tf == nil {
		return nil, fmt.Errorf("rule %s: timeframe evaluation missing", rule.RuleID)
	}

	raw, ok := cctx.Resolve(tf.Field)
	if !ok {
		return compliance.NewFieldNotAvailableViolation(rule, tf.Field), nil
	}

	date, err := compliance.ParseDate(raw)
	if err != nil {
		return &compliance.Violation{
			RuleID:   rule.RuleID,
			Code:     compliance.CodeInvalidDateFormat,
			Message:  "Invalid date format for field: " + tf.Field,
			Severity: compliance.SeverityError,
			Details: map[string]any{
				"field": tf.Field,
				"value": fmt.Sprint(raw),
			},
		}, nil
	}

	now := e.clock.Now()
	originalDate := date.UTC().Format(time.RFC3339)

	switch tf.Operator {
	case compliance.TimeframeWithinDays:
		if elapsed := daysSince(now, date); elapsed > tf.Days {
			return compliance.NewRuleViolation(rule, map[string]any{
				"limit_days":    tf.Days,
				"actual_days":   elapsed,
				"original_date": originalDate,
			}), nil
		}
	case compliance.TimeframeAfterDays:
		if elapsed := daysSince(now, date); elapsed < tf.Days {
			return compliance.NewRuleViolation(rule, map[string]any{
				"limit_days":    tf.Days,
				"actual_days":   elapsed,
				"original_date": originalDate,
			}), nil
		}
	case compliance.TimeframeBeforeDate:
		if date.After(tf.Date) {
			return compliance.NewRuleViolation(rule, map[string]any{
				"limit_date":    tf.Date.UTC().Format(time.RFC3339),
				"original_date": originalDate,
			}), nil
		}
	case compliance.TimeframeAfterDate:
		if date.Before(tf.Date) {
			return compliance.NewRuleViolation(rule, map[string]any{
				"limit_date":    tf.Date.UTC().Format(time.RFC3339),
				"original_date": originalDate,
			}), nil
		}
	default:
		return nil, fmt.Errorf("rule %s: unknown timeframe operator %q", rule.RuleID, tf.Operator)
	}

	return nil, nil
}
