package main

import (
	"testing"

	"github.com/boardroom-dev/boardroom/internal/config"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

func TestIntentString(t *testing.T) {
	tests := []struct {
		name  string
		flags models.IntentFlags
		want  string
	}{
		{
			name:  "single directorate",
			flags: models.IntentFlags{Finance: true},
			want:  "finance",
		},
		{
			name:  "several directorates",
			flags: models.IntentFlags{Finance: true, Engineering: true, Marketing: true},
			want:  "finance,engineering,marketing",
		},
		{
			name:  "none",
			flags: models.IntentFlags{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intentString(tt.flags); got != tt.want {
				t.Errorf("intentString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDryRunScriptCoversEveryDirectorate(t *testing.T) {
	for _, domain := range models.Directorates() {
		script := dryRunScript(domain)
		if len(script.Spends) == 0 {
			t.Errorf("dryRunScript(%s) has no spending to rehearse", domain)
		}
		for _, spend := range script.Spends {
			if !spend.PaymentType.Valid() {
				t.Errorf("dryRunScript(%s) uses invalid payment type %q", domain, spend.PaymentType)
			}
			if spend.Amount <= 0 {
				t.Errorf("dryRunScript(%s) has non-positive amount %v", domain, spend.Amount)
			}
		}
	}
}

func TestBuildRegistry_DryRunResolvesEveryDirectorate(t *testing.T) {
	registry, err := buildRegistry(config.Default(), true)
	if err != nil {
		t.Fatalf("buildRegistry failed: %v", err)
	}
	for _, domain := range models.Directorates() {
		if _, err := registry.Director(domain); err != nil {
			t.Errorf("no director registered for %s: %v", domain, err)
		}
	}
}

func TestConfigValueRoundTrip(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"defaults.budget", "2500", "2500.00"},
		{"defaults.approval_timeout", "8h", "8h0m0s"},
		{"defaults.tick_interval", "500ms", "500ms"},
		{"guardrails.rules_path", "/opt/rules.yaml", "/opt/rules.yaml"},
		{"anthropic.model", "claude-opus-4-1", "claude-opus-4-1"},
		{"anthropic.use_aws_bedrock", "true", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := setConfigValue(cfg, tt.key, tt.value); err != nil {
				t.Fatalf("setConfigValue(%s) failed: %v", tt.key, err)
			}
			got, err := getConfigValue(cfg, tt.key)
			if err != nil {
				t.Fatalf("getConfigValue(%s) failed: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("getConfigValue(%s) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSetConfigValueRejectsBadInput(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "nope.nothing", "x"},
		{"non-numeric budget", "defaults.budget", "lots"},
		{"negative budget", "defaults.budget", "-5"},
		{"bad duration", "defaults.approval_timeout", "soon"},
		{"bad bool", "anthropic.use_aws_bedrock", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := setConfigValue(cfg, tt.key, tt.value); err == nil {
				t.Errorf("setConfigValue(%s, %q) accepted bad input", tt.key, tt.value)
			}
		})
	}

	if cfg.Defaults.Budget != 10000 {
		t.Errorf("rejected writes mutated the config: budget = %v", cfg.Defaults.Budget)
	}
}
