package unifiedllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureAdapterCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/my-deployment/completions", r.URL.Path)
		assert.Equal(t, "2024-02-15-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))

		var req azureCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is Go?", req.Prompt)
		assert.Equal(t, 100, req.MaxTokens)
		assert.Equal(t, 1.0, req.TopP)

		w.Write([]byte(`{"choices":[{"text":"  A language. \n"}]}`))
	}))
	defer server.Close()

	root := DefaultRootConfig()
	root.Provider = "Azure"
	root.Overlay(RootConfig{Azure: &ProviderConfig{APIKey: "az-key", ModelName: "my-deployment", BaseURL: server.URL}})

	f, err := New(root)
	require.NoError(t, err)

	got, err := f.CallAIInterface(context.Background(), "What is Go?")
	require.NoError(t, err)
	assert.Equal(t, "A language.", got)
}

func TestAzureAdapterAPIVersionOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2023-05-15", r.URL.Query().Get("api-version"))
		w.Write([]byte(`{"choices":[{"text":"ok"}]}`))
	}))
	defer server.Close()

	adapter := &azureAdapter{http: newHTTPClient()}
	got, err := adapter.Call(context.Background(), &EffectiveConfig{Kind: KindAzure, ProviderConfig: ProviderConfig{
		ModelName: "d",
		BaseURL:   server.URL,
		Extra:     map[string]any{"apiVersion": "2023-05-15"},
	}}, "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestAzureAdapterErrorsPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`))
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	f, err := New(RootConfig{
		Provider: "azure",
		Azure:    &ProviderConfig{ModelName: "d", BaseURL: server.URL},
	}, WithLogger(logger))
	require.NoError(t, err)

	got, err := f.CallAIInterface(context.Background(), "p")
	assert.Empty(t, got)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "azure", authErr.Provider)
	assert.Contains(t, authErr.Message, "invalid subscription key")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Error making azure API call", hook.LastEntry().Message)
}

func TestAzureAdapterNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	adapter := &azureAdapter{http: newHTTPClient()}
	_, err := adapter.Call(context.Background(), &EffectiveConfig{Kind: KindAzure, ProviderConfig: ProviderConfig{ModelName: "d", BaseURL: server.URL}}, "p")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, IsBackendError(err))
}

func TestAzureAdapterRequiresBaseURL(t *testing.T) {
	adapter := &azureAdapter{http: newHTTPClient()}
	_, err := adapter.Call(context.Background(), &EffectiveConfig{Kind: KindAzure}, "p")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAzureCompletionsURL(t *testing.T) {
	tests := []struct {
		base, deployment, want string
	}{
		{"https://res.openai.azure.com", "gpt", "https://res.openai.azure.com/openai/deployments/gpt/completions"},
		{"https://res.openai.azure.com/", "gpt 35", "https://res.openai.azure.com/openai/deployments/gpt%2035/completions"},
		{"https://res.openai.azure.com/openai/deployments/fixed", "ignored", "https://res.openai.azure.com/openai/deployments/fixed/completions"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, azureCompletionsURL(tt.base, tt.deployment))
	}
}
