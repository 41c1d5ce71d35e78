package compliance

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/errors"
)

// FileProvider serves rules loaded from a JSON document. Rules are
// validated at load time so malformed definitions surface immediately
// rather than mid-evaluation. The provider always engages.
type FileProvider struct {
	name  string
	rules []compliance.Rule
}

// ruleDocument is the accepted file shape; a bare top-level rule array is
// also accepted
type ruleDocument struct {
	Rules []compliance.Rule `json:"rules"`
}

// NewFileProvider loads and validates a rule file
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInternalError("reading rule file "+path).WithCause(err)
	}

	var doc ruleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		var bare []compliance.Rule
		if err2 := json.Unmarshal(data, &bare); err2 != nil {
			return nil, errors.NewValidationError("INVALID_RULE_FILE", "parsing rule file "+path).WithCause(err)
		}
		doc.Rules = bare
	}

	for i := range doc.Rules {
		if err := doc.Rules[i].Validate(); err != nil {
			return nil, errors.NewValidationError("INVALID_RULE_FILE", "rule file "+path+" has an invalid rule").WithCause(err)
		}
	}

	name := "file:" + filepath.Base(path)
	return &FileProvider{name: name, rules: doc.Rules}, nil
}

func (p *FileProvider) Name() string { return p.name }

func (p *FileProvider) AppliesTo(compliance.Context) bool { return true }

func (p *FileProvider) Rules(ctx context.Context, cctx compliance.Context) ([]compliance.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]compliance.Rule, len(p.rules))
	copy(out, p.rules)
	return out, nil
}
