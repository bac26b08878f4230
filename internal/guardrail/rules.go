// Package guardrail evaluates spending and domain-permission rules.
// The validator is pure: given the same rule tables and ledger state it
// always returns the same decision, with no side effects.
package guardrail

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// Rules holds the static rule tables for the validator. Rules can be
// loaded from a YAML file layered over Default.
type Rules struct {
	// AutoApprove maps a payment type to the amount at or below which
	// it is approved without a human decision. Payment types absent
	// from the map always require approval.
	AutoApprove map[models.PaymentType]float64 `yaml:"auto_approve"`
	// HighRiskShare is the fraction of remaining total budget at or
	// above which a spend is classified High risk.
	HighRiskShare float64 `yaml:"high_risk_share"`
	// CommitmentKeywords raise a spend to at least Medium risk when
	// they appear in its description, regardless of amount.
	CommitmentKeywords []string `yaml:"commitment_keywords"`
}

// Default returns the compiled-in rule tables.
func Default() *Rules {
	return &Rules{
		AutoApprove: map[models.PaymentType]float64{
			models.PaymentAPIFee:      100,
			models.PaymentLegalFiling: 1000,
		},
		HighRiskShare: 0.50,
		CommitmentKeywords: []string{
			"contract", "agreement", "subscription", "retainer", "lease",
		},
	}
}

// Load reads rules from a YAML file, layering them over the defaults.
// Absent fields keep their default values.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	rules := Default()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	rules.Validate()
	return rules, nil
}

// Validate clamps rule values to acceptable ranges.
func (r *Rules) Validate() {
	if r.HighRiskShare <= 0 || r.HighRiskShare > 1 {
		r.HighRiskShare = 0.50
	}
	if r.AutoApprove == nil {
		r.AutoApprove = make(map[models.PaymentType]float64)
	}
	// A ceiling on the contractor type would contradict the permanent
	// ban; drop it if a rules file sneaks one in.
	delete(r.AutoApprove, models.PaymentContractor)
}
