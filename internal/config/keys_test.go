package config

import (
	"errors"
	"testing"
)

func TestResolveCredentials(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		cfg        *Config
		wantSource CredentialSource
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "bedrock wins over everything",
			env:        "sk-ant-env-key-123456789",
			cfg:        &Config{Anthropic: AnthropicConfig{UseAWSBedrock: true, APIKey: "sk-ant-cfg-key-123456789"}},
			wantSource: CredentialBedrock,
		},
		{
			name:       "env wins over config",
			env:        "sk-ant-env-key-123456789",
			cfg:        &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-cfg-key-123456789"}},
			wantSource: CredentialEnv,
			wantKey:    "sk-ant-env-key-123456789",
		},
		{
			name:       "config key used when env is empty",
			cfg:        &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-cfg-key-123456789"}},
			wantSource: CredentialConfig,
			wantKey:    "sk-ant-cfg-key-123456789",
		},
		{
			name:       "unexpanded reference is no key",
			cfg:        &Config{Anthropic: AnthropicConfig{APIKey: "${UNSET_BOARDROOM_VAR}"}},
			wantSource: CredentialNone,
			wantErr:    true,
		},
		{
			name:       "nothing configured",
			cfg:        &Config{},
			wantSource: CredentialNone,
			wantErr:    true,
		},
		{
			name:       "nil config",
			wantSource: CredentialNone,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", tt.env)

			source, key, err := ResolveCredentials(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNoCredentials) {
				t.Errorf("err = %v, want ErrNoCredentials", err)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "sk-ant-api03-abcdef123456", false},
		{"empty", "", true},
		{"wrong prefix", "sk-openai-abcdef123456", true},
		{"too short", "sk-ant-x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey(%q) = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "sk-ant-xyz", "***"},
		{"normal", "sk-ant-REDACTED", "sk-ant-...9876"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
