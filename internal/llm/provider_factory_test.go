package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryDemoModeAlwaysOffline(t *testing.T) {
	factory := NewProviderFactory("sk-real", "gm-real", true)

	for _, model := range []string{"gpt-4o-mini", "gemini-2.0-flash", ""} {
		provider, err := factory.GetProvider(context.Background(), model, "")
		require.NoError(t, err)
		assert.Equal(t, "offline", provider.Name(), "model %q", model)
	}
}

func TestFactoryExplicitProviderName(t *testing.T) {
	factory := NewProviderFactory("sk-test", "", false)

	provider, err := factory.GetProvider(context.Background(), "gpt-4o-mini", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	_, err = factory.GetProvider(context.Background(), "", "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API key not configured")

	_, err = factory.GetProvider(context.Background(), "", "cohere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestFactoryOfflineByName(t *testing.T) {
	factory := NewProviderFactory("", "", false)

	provider, err := factory.GetProvider(context.Background(), "", "offline")
	require.NoError(t, err)
	assert.Equal(t, "offline", provider.Name())
}

func TestFactoryInfersProviderFromModel(t *testing.T) {
	factory := NewProviderFactory("sk-test", "", false)

	provider, err := factory.GetProvider(context.Background(), "gpt-4o-mini", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	_, err = factory.GetProvider(context.Background(), "gemini-2.0-flash", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API key not configured")
}

func TestFactoryMissingDefaultKey(t *testing.T) {
	factory := NewProviderFactory("", "", false)

	_, err := factory.GetProvider(context.Background(), "gpt-4o-mini", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API key not configured")
}
