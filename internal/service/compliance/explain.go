package compliance

import (
	"fmt"
	"strings"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
)

// Explain renders a violation as a detailed human-readable sentence. It is
// pure and total: presentation layers can call it on anything, including a
// missing violation.
func Explain(v *compliance.Violation) string {
	if v == nil || (v.Code == "" && v.Message == "") {
		return "No violation details provided"
	}

	var parts []string
	if detail := detailSentence(v); detail != "" {
		parts = append(parts, detail)
	}
	if v.Message != "" {
		parts = append(parts, v.Message)
	}
	if v.Remediation != "" {
		parts = append(parts, "Recommendation: "+v.Remediation)
	}
	if len(parts) == 0 {
		return "No violation details provided"
	}
	return strings.Join(parts, " ")
}

// detailSentence builds the code-specific lead-in from the violation
// details. Unrecognized codes get no lead-in and fall back to the base
// message alone.
func detailSentence(v *compliance.Violation) string {
	code := v.Code
	details := v.Details

	switch {
	case strings.Contains(code, "TIME") || strings.Contains(code, "DATE"):
		if actual, ok := details["actual_days"]; ok {
			return fmt.Sprintf("The transaction was processed %s days ago (on %s), which exceeds the %s-day limit.",
				formatNumber(actual),
				formatDate(details["original_date"]),
				formatNumber(details["limit_days"]))
		}
		if limitDate, ok := details["limit_date"]; ok {
			return fmt.Sprintf("The transaction date %s falls outside the allowed boundary of %s.",
				formatDate(details["original_date"]),
				formatDate(limitDate))
		}
		if field, ok := details["field"]; ok {
			return fmt.Sprintf("The date value for field %v could not be interpreted.", field)
		}

	case strings.Contains(code, "AMOUNT"):
		return fmt.Sprintf("The refund amount of %s does not satisfy the %v limit of %s.",
			formatAmount(details["refund_amount"]),
			details["operator"],
			formatAmount(details["limit_amount"]))

	case strings.Contains(code, "METHOD"):
		return fmt.Sprintf("Refund method %v is not permitted. Allowed methods: %s.",
			details["requested_method"],
			joinList(details["allowed_methods"]))

	case strings.Contains(code, "DOCUMENTATION"):
		return fmt.Sprintf("Missing required document: %v. Required: %s; provided: %s.",
			details["missing_type"],
			joinList(details["required_types"]),
			joinList(details["provided_types"]))

	case strings.Contains(code, "FREQUENCY"):
		return fmt.Sprintf("The refund count of %s has reached the limit of %s per %v.",
			formatNumber(details["refund_count"]),
			formatNumber(details["limit"]),
			details["time_period"])
	}

	return ""
}

// formatNumber renders ints and whole floats without a decimal point
func formatNumber(value any) string {
	switch n := value.(type) {
	case int:
		return fmt.Sprintf("%d", n)
	case int64:
		return fmt.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case nil:
		return "?"
	default:
		return fmt.Sprint(n)
	}
}

// formatAmount renders monetary detail values with two decimals
func formatAmount(value any) string {
	switch n := value.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case int:
		return fmt.Sprintf("%d.00", n)
	case int64:
		return fmt.Sprintf("%d.00", n)
	case nil:
		return "?"
	default:
		return fmt.Sprint(n)
	}
}

// formatDate renders an ISO 8601 detail value as a readable date
func formatDate(value any) string {
	raw, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	date, err := compliance.ParseDate(raw)
	if err != nil {
		return raw
	}
	return date.UTC().Format("January 2, 2006")
}

// joinList joins detail slices regardless of whether they survived a JSON
// round trip as []string or []any
func joinList(value any) string {
	switch list := value.(type) {
	case []string:
		return strings.Join(list, ", ")
	case []any:
		items := make([]string, 0, len(list))
		for _, item := range list {
			items = append(items, fmt.Sprint(item))
		}
		return strings.Join(items, ", ")
	case nil:
		return "none"
	default:
		return fmt.Sprint(value)
	}
}
