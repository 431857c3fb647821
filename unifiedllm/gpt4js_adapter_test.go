package unifiedllm

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPT4JSAdapterDefaultSubProvider(t *testing.T) {
	server := httptest.NewServer(chatCompletionHandler(t, "gpt-4o-free", "\nnextway reply"))
	defer server.Close()

	root := DefaultRootConfig()
	root.Provider = "gpt4js"
	root.GPT4JS = &ProviderConfig{BaseURL: server.URL}

	f, err := New(root)
	require.NoError(t, err)

	got, err := f.CallAIInterface(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "nextway reply", got)
}

func TestGPT4JSAdapterRegisteredSubProvider(t *testing.T) {
	var got ChatRequest
	custom := func(ctx context.Context, req ChatRequest, progress func(string)) (string, error) {
		got = req
		progress("partial")
		return "custom reply", nil
	}

	f, err := New(RootConfig{
		Provider: "gpt4js",
		GPT4JS:   &ProviderConfig{Provider: "Custom", ModelName: "m", APIKey: "k"},
	}, WithGPT4JSProvider("Custom", custom))
	require.NoError(t, err)

	text, err := f.CallAIInterface(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "custom reply", text)
	assert.Equal(t, ChatRequest{Model: "m", Messages: []ChatMessage{UserMessage("hello")}, APIKey: "k"}, got)
}

func TestGPT4JSAdapterUnknownSubProviderIsSwallowed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	f, err := New(RootConfig{Provider: "gpt4js", GPT4JS: &ProviderConfig{Provider: "Nowhere"}}, WithLogger(logger))
	require.NoError(t, err)

	got, err := f.CallAIInterface(context.Background(), "hi")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Sorry, there was an error calling gpt4js.", hook.LastEntry().Message)
}

func TestGPT4JSDefaultSubProviderNeedsBaseURL(t *testing.T) {
	adapter := newGPT4JSAdapter(newHTTPClient(), nil)
	_, err := adapter.Call(context.Background(), &EffectiveConfig{Kind: KindGPT4JS}, "hi")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
