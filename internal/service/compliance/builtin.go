package compliance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// DefaultProviders returns the built-in provider set: card-network rules,
// merchant refund policy, and the always-on regulatory baseline. Callers
// wanting different rule sources register their own RuleProvider
// implementations instead.
func DefaultProviders() []RuleProvider {
	return []RuleProvider{
		NewCardNetworkProvider(),
		NewMerchantPolicyProvider(),
		NewRegulatoryProvider(),
	}
}

// cardNetworkProvider serves per-network refund rules. It engages only when
// the context names a card network.
type cardNetworkProvider struct {
	byNetwork map[string][]compliance.Rule
	common    []compliance.Rule
}

// NewCardNetworkProvider builds the card-network rule provider
func NewCardNetworkProvider() RuleProvider {
	return &cardNetworkProvider{
		byNetwork: map[string][]compliance.Rule{
			"VISA": {
				{
					RuleID:      "VISA_TIME_LIMIT",
					RuleName:    "Visa refund time limit",
					Description: "Visa refunds must be initiated within 180 days of the original transaction",
					Evaluation: compliance.Evaluation{
						Type: compliance.EvaluationTimeframe,
						Timeframe: &compliance.TimeframeEvaluation{
							Field:    "transactionDetails.processedAt",
							Operator: compliance.TimeframeWithinDays,
							Days:     180,
						},
					},
					ViolationCode:    "VISA_REFUND_TIME_EXCEEDED",
					ViolationMessage: "Refund requested outside the Visa 180-day window.",
					Severity:         compliance.SeverityError,
					Remediation:      "Advise the customer to raise a dispute with their issuing bank.",
				},
			},
			"MASTERCARD": {
				{
					RuleID:      "MC_TIME_LIMIT",
					RuleName:    "Mastercard refund time limit",
					Description: "Mastercard refunds must be initiated within 120 days of the original transaction",
					Evaluation: compliance.Evaluation{
						Type: compliance.EvaluationTimeframe,
						Timeframe: &compliance.TimeframeEvaluation{
							Field:    "transactionDetails.processedAt",
							Operator: compliance.TimeframeWithinDays,
							Days:     120,
						},
					},
					ViolationCode:    "MC_REFUND_TIME_EXCEEDED",
					ViolationMessage: "Refund requested outside the Mastercard 120-day window.",
					Severity:         compliance.SeverityError,
					Remediation:      "Advise the customer to raise a dispute with their issuing bank.",
				},
			},
		},
		common: []compliance.Rule{
			{
				RuleID:      "NETWORK_AMOUNT_PARITY",
				RuleName:    "Refund cannot exceed original transaction",
				Description: "Card networks reject refunds larger than the captured transaction amount",
				Evaluation: compliance.Evaluation{
					Type: compliance.EvaluationAmount,
					Amount: &compliance.AmountEvaluation{
						Operator:   compliance.AmountLessThanOrEqual,
						ValueField: "transactionDetails.amount",
					},
				},
				ViolationCode:    "REFUND_AMOUNT_EXCEEDS_TRANSACTION",
				ViolationMessage: "Refund amount exceeds the original transaction amount.",
				Severity:         compliance.SeverityError,
				Remediation:      "Reduce the refund amount to at most the original transaction amount.",
			},
		},
	}
}

func (p *cardNetworkProvider) Name() string { return "card-network" }

func (p *cardNetworkProvider) AppliesTo(cctx compliance.Context) bool {
	_, ok := cctx.CardNetwork()
	return ok
}

func (p *cardNetworkProvider) Rules(ctx context.Context, cctx compliance.Context) ([]compliance.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	network, _ := cctx.CardNetwork()
	rules := append([]compliance.Rule{}, p.byNetwork[network]...)
	return append(rules, p.common...), nil
}

// NewMerchantPolicyProvider builds the merchant refund policy provider,
// engaged when the context carries a merchant identifier
func NewMerchantPolicyProvider() RuleProvider {
	appliesTo := func(cctx compliance.Context) bool {
		_, ok := cctx.MerchantID()
		return ok
	}

	return MustNewStaticProvider("merchant-policy", appliesTo,
		compliance.Rule{
			RuleID:      "MERCHANT_METHOD_POLICY",
			RuleName:    "Merchant refund method policy",
			Description: "Refunds are paid back to the original payment method or merchant balance",
			Evaluation: compliance.Evaluation{
				Type: compliance.EvaluationMethod,
				Method: &compliance.MethodEvaluation{
					AllowedMethods: []string{
						string(refund.MethodOriginalPayment),
						string(refund.MethodBalance),
					},
				},
			},
			ViolationCode:    "MERCHANT_REFUND_METHOD_RESTRICTED",
			ViolationMessage: "The requested refund method is not permitted by merchant policy.",
			Severity:         compliance.SeverityError,
			Remediation:      "Resubmit the refund using the original payment method or merchant balance.",
		},
		compliance.Rule{
			RuleID:      "MERCHANT_FREQUENCY_LIMIT",
			RuleName:    "Merchant refund frequency limit",
			Description: "Flags customers exceeding the merchant's refund frequency threshold",
			Evaluation: compliance.Evaluation{
				Type: compliance.EvaluationFrequency,
				Frequency: &compliance.FrequencyEvaluation{
					Limit:      3,
					TimePeriod: "30 days",
				},
			},
			ViolationCode:    "REFUND_FREQUENCY_EXCEEDED",
			ViolationMessage: "The customer has exceeded the merchant's refund frequency limit.",
			Severity:         compliance.SeverityWarning,
			Remediation:      "Review the customer's refund history before approving.",
		},
		compliance.Rule{
			RuleID:      "MERCHANT_HIGH_VALUE_DOCS",
			RuleName:    "High-value refund documentation",
			Description: "High-value refunds require proof of purchase",
			Evaluation: compliance.Evaluation{
				Type: compliance.EvaluationDocumentation,
				Documentation: &compliance.DocumentationEvaluation{
					RequiredTypes: []string{refund.DocProofOfPurchase},
					Condition: &compliance.DocumentationCondition{
						Field:    "amount",
						Operator: compliance.ConditionGreaterThan,
						Value:    2500,
					},
				},
			},
			ViolationCode:    "REFUND_DOCUMENTATION_REQUIRED",
			ViolationMessage: "Supporting documentation is required for high-value refunds.",
			Severity:         compliance.SeverityError,
			Remediation:      "Attach a proof of purchase and resubmit the refund request.",
		},
	)
}

// NewRegulatoryProvider builds the always-on regulatory baseline provider
func NewRegulatoryProvider() RuleProvider {
	return MustNewStaticProvider("regulatory", nil,
		compliance.Rule{
			RuleID:      "REG_STALE_HIGH_VALUE",
			RuleName:    "Stale high-value refund review",
			Description: "Refunds that are both aged and high-value are flagged for manual review",
			Evaluation: compliance.Evaluation{
				Type: compliance.EvaluationComposite,
				Composite: &compliance.CompositeEvaluation{
					Operator: compliance.CompositeAND,
					Rules: []compliance.Rule{
						{
							RuleID:   "REG_STALE_TRANSACTION",
							RuleName: "Transaction older than one year",
							Evaluation: compliance.Evaluation{
								Type: compliance.EvaluationTimeframe,
								Timeframe: &compliance.TimeframeEvaluation{
									Field:    "transactionDetails.processedAt",
									Operator: compliance.TimeframeWithinDays,
									Days:     365,
								},
							},
							ViolationCode:    "REG_TRANSACTION_STALE",
							ViolationMessage: "Transaction is older than one year.",
							Severity:         compliance.SeverityWarning,
						},
						{
							RuleID:   "REG_HIGH_VALUE",
							RuleName: "Refund at or above review threshold",
							Evaluation: compliance.Evaluation{
								Type: compliance.EvaluationAmount,
								Amount: &compliance.AmountEvaluation{
									Operator: compliance.AmountLessThan,
									Value:    decimal.NewFromInt(10000),
								},
							},
							ViolationCode:    "REG_AMOUNT_REVIEW",
							ViolationMessage: "Refund amount is at or above the review threshold.",
							Severity:         compliance.SeverityWarning,
						},
					},
				},
			},
			ViolationCode:    "REG_REVIEW_REQUIRED",
			ViolationMessage: "Aged high-value refund requires manual compliance review.",
			Severity:         compliance.SeverityWarning,
			Remediation:      "Route the refund to the compliance review queue.",
		},
	)
}
