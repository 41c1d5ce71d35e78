package compliance

import (
	"context"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/errors"
)

// StaticProvider serves a fixed, validated rule set. The applies predicate
// decides per-context engagement; nil means the provider always engages.
type StaticProvider struct {
	name    string
	applies func(compliance.Context) bool
	rules   []compliance.Rule
}

// NewStaticProvider validates the rules and wraps them in a provider
func NewStaticProvider(name string, applies func(compliance.Context) bool, rules ...compliance.Rule) (*StaticProvider, error) {
	if name == "" {
		return nil, errors.NewValidationError("INVALID_PROVIDER_NAME", "provider name cannot be empty")
	}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, errors.NewValidationError("INVALID_RULE", "provider "+name+" has an invalid rule").WithCause(err)
		}
	}
	return &StaticProvider{name: name, applies: applies, rules: rules}, nil
}

// MustNewStaticProvider wraps NewStaticProvider and panics on error, for
// rule sets defined in code
func MustNewStaticProvider(name string, applies func(compliance.Context) bool, rules ...compliance.Rule) *StaticProvider {
	p, err := NewStaticProvider(name, applies, rules...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *StaticProvider) Name() string { return p.name }

func (p *StaticProvider) AppliesTo(cctx compliance.Context) bool {
	if p.applies == nil {
		return true
	}
	return p.applies(cctx)
}

func (p *StaticProvider) Rules(ctx context.Context, cctx compliance.Context) ([]compliance.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]compliance.Rule, len(p.rules))
	copy(out, p.rules)
	return out, nil
}
