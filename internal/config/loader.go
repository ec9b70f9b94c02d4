package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable names recognized by the loader. These are fixed:
// callers integrate by setting these exact names.
const (
	EnvProvider       = "LLM_PROVIDER"
	EnvModel          = "CLAUDE_MODEL"
	EnvTimeoutSeconds = "LLM_TIMEOUT_SECONDS"
	EnvMaxRetries     = "LLM_MAX_RETRIES"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvGCPProject     = "GOOGLE_CLOUD_PROJECT"
	EnvGCPRegion      = "GOOGLE_CLOUD_REGION"
	EnvAWSRegion      = "AWS_REGION"
	EnvGitHubToken    = "GITHUB_TOKEN"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
}

// Load returns the merged configuration from an optional YAML file and the
// environment. Environment variables take precedence over file values.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "sectriage"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	bindEnvironment(v)
	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg = expandEnvVars(cfg)
	cfg.LLM.Provider = Provider(strings.ToLower(string(cfg.LLM.Provider)))

	return cfg, nil
}

// FromEnvironment builds the LLM client configuration from the fixed
// environment variable set alone, applying defaults for anything unset.
// An unrecognized LLM_PROVIDER value is an error; there is no silent
// fallback to a default provider.
func FromEnvironment() (LLM, error) {
	cfg, err := Load(LoaderOptions{})
	if err != nil {
		return LLM{}, err
	}
	if !cfg.LLM.Provider.IsValid() {
		return LLM{}, fmt.Errorf("invalid %s: %q (supported: anthropic, vertex, bedrock)", EnvProvider, cfg.LLM.Provider)
	}
	return cfg.LLM, nil
}

// bindEnvironment wires the fixed variable names onto config keys. Viper's
// prefix-based AutomaticEnv is deliberately not used here: the variable names
// are an external contract, not derived from key paths.
func bindEnvironment(v *viper.Viper) {
	_ = v.BindEnv("llm.provider", EnvProvider)
	_ = v.BindEnv("llm.model", EnvModel)
	_ = v.BindEnv("llm.timeoutSeconds", EnvTimeoutSeconds)
	_ = v.BindEnv("llm.maxRetries", EnvMaxRetries)
	_ = v.BindEnv("llm.apiKey", EnvAnthropicKey)
	_ = v.BindEnv("llm.projectID", EnvGCPProject)
	_ = v.BindEnv("llm.region", EnvGCPRegion)
	_ = v.BindEnv("llm.awsRegion", EnvAWSRegion)
	_ = v.BindEnv("github.token", EnvGitHubToken)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(ProviderAnthropic))
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.timeoutSeconds", DefaultTimeoutSeconds)
	v.SetDefault("llm.maxRetries", DefaultMaxRetries)
	v.SetDefault("llm.region", DefaultVertexRegion)
	v.SetDefault("llm.awsRegion", DefaultAWSRegion)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", defaultStorePath())

	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.redactAPIKeys", true)
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings, so
// file-based configs can reference credentials without embedding them.
func expandEnvVars(cfg Config) Config {
	cfg.LLM.Model = expandEnvString(cfg.LLM.Model)
	cfg.LLM.APIKey = expandEnvString(cfg.LLM.APIKey)
	cfg.LLM.ProjectID = expandEnvString(cfg.LLM.ProjectID)
	cfg.LLM.Region = expandEnvString(cfg.LLM.Region)
	cfg.LLM.AWSRegion = expandEnvString(cfg.LLM.AWSRegion)
	cfg.Store.Path = expandEnvString(cfg.Store.Path)
	cfg.Logging.Level = expandEnvString(cfg.Logging.Level)
	cfg.Logging.Format = expandEnvString(cfg.Logging.Format)
	cfg.GitHub.Token = expandEnvString(cfg.GitHub.Token)
	return cfg
}

var (
	bracedVarPattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	bareVarPattern   = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	s = bracedVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	s = bareVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./sectriage.db"
	}
	return filepath.Join(home, ".config", "sectriage", "sectriage.db")
}
