package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoCredentials is returned when neither an API key nor Bedrock is
// configured.
var ErrNoCredentials = errors.New("no Anthropic API key configured and Bedrock is disabled")

// CredentialSource represents how the API client will authenticate.
type CredentialSource string

const (
	CredentialEnv     CredentialSource = "environment"
	CredentialConfig  CredentialSource = "config_file"
	CredentialBedrock CredentialSource = "aws_bedrock"
	CredentialNone    CredentialSource = "none"
)

// ResolveCredentials determines how the API client should authenticate
// and returns the key when one applies. Bedrock mode needs no key; AWS
// credentials are resolved by the SDK's default chain.
// Key lookup order: environment variable, then config file.
func ResolveCredentials(cfg *Config) (CredentialSource, string, error) {
	if cfg != nil && cfg.Anthropic.UseAWSBedrock {
		return CredentialBedrock, "", nil
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return CredentialEnv, key, nil
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		// Expand any remaining ${VAR} references.
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return CredentialConfig, key, nil
		}
	}

	return CredentialNone, "", ErrNoCredentials
}

// ValidateAPIKey performs basic format validation on an API key. It
// does not verify the key against the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoCredentials
	}

	// Anthropic API keys start with "sk-ant-"
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}

	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters (sk-ant-) and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}
