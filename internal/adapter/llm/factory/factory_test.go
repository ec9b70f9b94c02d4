package factory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/adapter/llm/factory"
	"github.com/bkyoung/sectriage/internal/config"
)

func TestCreateClientUnsupportedProvider(t *testing.T) {
	for _, provider := range []string{"azure", "openai", ""} {
		t.Run("provider "+provider, func(t *testing.T) {
			client, err := factory.CreateClient(context.Background(), config.LLM{
				Provider: config.Provider(provider),
				Model:    config.DefaultModel,
			})

			assert.Nil(t, client)
			require.Error(t, err)

			var classified *llm.Error
			require.ErrorAs(t, err, &classified)
			assert.Equal(t, llm.ErrKindUnsupportedProvider, classified.Kind)
		})
	}
}

func TestCreateClientValidatesCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLM
		wantMsg string
	}{
		{
			name: "anthropic without key",
			cfg: config.LLM{
				Provider: config.ProviderAnthropic,
				Model:    config.DefaultModel,
			},
			wantMsg: "ANTHROPIC_API_KEY",
		},
		{
			name: "vertex without project",
			cfg: config.LLM{
				Provider: config.ProviderVertex,
				Model:    config.DefaultModel,
				Region:   config.DefaultVertexRegion,
			},
			wantMsg: "project",
		},
		{
			name: "vertex without region",
			cfg: config.LLM{
				Provider:  config.ProviderVertex,
				Model:     config.DefaultModel,
				ProjectID: "my-project",
			},
			wantMsg: "GOOGLE_CLOUD_REGION",
		},
		{
			name: "bedrock without region",
			cfg: config.LLM{
				Provider: config.ProviderBedrock,
				Model:    config.DefaultModel,
			},
			wantMsg: "AWS_REGION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := factory.CreateClient(context.Background(), tt.cfg)

			assert.Nil(t, client)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var classified *llm.Error
			require.ErrorAs(t, err, &classified)
			assert.Equal(t, llm.ErrKindConfiguration, classified.Kind)
		})
	}
}

func TestCreateClientAnthropic(t *testing.T) {
	client, err := factory.CreateClient(context.Background(), config.LLM{
		Provider:       config.ProviderAnthropic,
		Model:          config.DefaultModel,
		TimeoutSeconds: config.DefaultTimeoutSeconds,
		APIKey:         "test-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "anthropic", client.Provider())
	assert.Equal(t, config.DefaultModel, client.NativeModel())
}

func TestCreateClientBedrockTranslatesModel(t *testing.T) {
	client, err := factory.CreateClient(context.Background(), config.LLM{
		Provider:  config.ProviderBedrock,
		Model:     "claude-3-5-sonnet-v2-20241022",
		AWSRegion: config.DefaultAWSRegion,
	})
	require.NoError(t, err)

	assert.Equal(t, "bedrock", client.Provider())
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", client.NativeModel())
}

func TestNewCallerAppliesRetryBudget(t *testing.T) {
	caller, err := factory.NewCaller(context.Background(), config.LLM{
		Provider:   config.ProviderAnthropic,
		Model:      config.DefaultModel,
		MaxRetries: 5,
		APIKey:     "test-key",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", caller.Client().Provider())
}

func TestNewCallerPropagatesConfigErrors(t *testing.T) {
	caller, err := factory.NewCaller(context.Background(), config.LLM{
		Provider: config.ProviderVertex,
		Model:    config.DefaultModel,
	}, nil)

	assert.Nil(t, caller)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project")
}

func TestFromEnvironment(t *testing.T) {
	t.Run("anthropic from env", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "anthropic")
		t.Setenv("ANTHROPIC_API_KEY", "env-key")
		t.Setenv("CLAUDE_MODEL", "")
		t.Setenv("LLM_TIMEOUT_SECONDS", "")
		t.Setenv("LLM_MAX_RETRIES", "")

		caller, err := factory.FromEnvironment(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, "anthropic", caller.Client().Provider())
		assert.Equal(t, config.DefaultModel, caller.Client().NativeModel())
	})

	t.Run("invalid provider is not silently replaced", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "azure")
		t.Setenv("ANTHROPIC_API_KEY", "env-key")

		caller, err := factory.FromEnvironment(context.Background(), nil)

		assert.Nil(t, caller)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_PROVIDER")
	})
}
