package config

import (
	"fmt"
	"time"
)

// Provider identifies a cloud backend for the LLM client.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderVertex    Provider = "vertex"
	ProviderBedrock   Provider = "bedrock"
)

// IsValid returns true if the provider is a recognized value.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderVertex, ProviderBedrock:
		return true
	default:
		return false
	}
}

// Default configuration values. The loader applies them when the
// corresponding file key or environment variable is unset.
const (
	DefaultModel          = "claude-opus-4-20250514"
	DefaultTimeoutSeconds = 180
	DefaultMaxRetries     = 3
	DefaultVertexRegion   = "us-central1"
	DefaultAWSRegion      = "us-east-1"
)

// LLM configures the multi-provider LLM client. Immutable after construction;
// exactly the credential fields required by Provider must be set, which
// Validate enforces before any network use.
type LLM struct {
	Provider       Provider `mapstructure:"provider"`
	Model          string   `mapstructure:"model"`
	TimeoutSeconds int      `mapstructure:"timeoutSeconds"`
	MaxRetries     int      `mapstructure:"maxRetries"`

	// Provider-specific credentials.
	APIKey    string `mapstructure:"apiKey"`    // anthropic
	ProjectID string `mapstructure:"projectID"` // vertex
	Region    string `mapstructure:"region"`    // vertex
	AWSRegion string `mapstructure:"awsRegion"` // bedrock
}

// Timeout returns the per-call transport timeout.
func (c LLM) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks that the configuration names a supported provider and
// carries the credentials that provider requires. The error names the exact
// missing field and its environment source.
func (c LLM) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("anthropic API key is required (ANTHROPIC_API_KEY)")
		}
	case ProviderVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("Google Cloud project ID is required (GOOGLE_CLOUD_PROJECT)")
		}
		if c.Region == "" {
			return fmt.Errorf("Google Cloud region is required (GOOGLE_CLOUD_REGION)")
		}
	case ProviderBedrock:
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS region is required (AWS_REGION)")
		}
	default:
		return fmt.Errorf("unsupported provider %q (supported: anthropic, vertex, bedrock)", c.Provider)
	}
	return nil
}

// StoreConfig configures the optional verdict persistence layer.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig configures call logging.
type LoggingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Level         string `mapstructure:"level"`         // debug, info, error
	Format        string `mapstructure:"format"`        // json, human
	RedactAPIKeys bool   `mapstructure:"redactAPIKeys"` // Redact API keys in logs
}

// GitHubConfig configures the optional pull-request context fetcher.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// Config represents the full application configuration.
type Config struct {
	LLM     LLM           `mapstructure:"llm"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	GitHub  GitHubConfig  `mapstructure:"github"`
}
