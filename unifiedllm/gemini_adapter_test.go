package unifiedllm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
}

func TestGeminiAdapterName(t *testing.T) {
	adapter := &geminiAdapter{}
	assert.Equal(t, "gemini", adapter.Name())
	assert.Equal(t, Swallow, adapter.FailureMode())
}

func TestGeminiAdapterCall(t *testing.T) {
	var requests []geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		var req geminiRequest
		require.NoError(t, json.Unmarshal(body, &req))
		requests = append(requests, req)

		geminiReply(w, "\nHello from Gemini!")
	}))
	defer server.Close()

	f, err := New(RootConfig{
		Provider: "Gemini",
		Gemini:   &ProviderConfig{APIKey: "g-key", ModelName: "gemini-pro", BaseURL: server.URL},
	})
	require.NoError(t, err)

	for _, prompt := range []string{"first", "second"} {
		got, err := f.CallAIInterface(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, "Hello from Gemini!", got)
	}

	// Every call is a fresh session: no history from the first call leaks in.
	require.Len(t, requests, 2)
	for i, prompt := range []string{"first", "second"} {
		req := requests[i]
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, []geminiPart{{Text: prompt}}, req.Contents[0].Parts)
		assert.Equal(t, geminiGenerationConfig, req.GenerationConfig)
		require.Len(t, req.SafetySettings, 4)
		for _, s := range req.SafetySettings {
			assert.Equal(t, "BLOCK_ONLY_HIGH", s.Threshold)
		}
	}
}

func TestGeminiChatKeepsHistoryWithinSession(t *testing.T) {
	var contents [][]geminiContent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		contents = append(contents, req.Contents)
		geminiReply(w, "ok")
	}))
	defer server.Close()

	adapter := &geminiAdapter{http: newHTTPClient()}
	chat := adapter.startChat(&EffectiveConfig{Kind: KindGemini, ProviderConfig: ProviderConfig{ModelName: "m", BaseURL: server.URL}})

	_, err := chat.sendMessage(context.Background(), "one")
	require.NoError(t, err)
	_, err = chat.sendMessage(context.Background(), "two")
	require.NoError(t, err)

	require.Len(t, contents, 2)
	assert.Len(t, contents[0], 1)
	require.Len(t, contents[1], 3)
	assert.Equal(t, "model", contents[1][1].Role)
	assert.Equal(t, "two", contents[1][2].Parts[0].Text)
}

func TestGeminiAdapterErrorsAreSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "quota exhausted", "status": "RESOURCE_EXHAUSTED"},
		})
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	f, err := New(RootConfig{
		Provider: "gemini",
		Gemini:   &ProviderConfig{ModelName: "gemini-pro", BaseURL: server.URL},
	}, WithLogger(logger))
	require.NoError(t, err)

	got, err := f.CallAIInterface(context.Background(), "hi")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Sorry, there was an error calling gemini.", hook.LastEntry().Message)
	var rateErr *RateLimitError
	require.ErrorAs(t, hook.LastEntry().Data["error"].(error), &rateErr)
	assert.Equal(t, "RESOURCE_EXHAUSTED", rateErr.ErrorCode)
}

func TestGeminiAdapterBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	adapter := &geminiAdapter{http: newHTTPClient()}
	_, err := adapter.Call(context.Background(), &EffectiveConfig{Kind: KindGemini, ProviderConfig: ProviderConfig{ModelName: "m", BaseURL: server.URL}}, "hi")

	var filterErr *ContentFilterError
	require.ErrorAs(t, err, &filterErr)
	assert.Contains(t, err.Error(), "SAFETY")
}
