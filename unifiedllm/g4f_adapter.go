package unifiedllm

import "context"

// g4fAdapter talks to a gpt4free interference server, which exposes an
// OpenAI-compatible chat endpoint. The backend is best-effort.
type g4fAdapter struct {
	http *httpClient
}

func (a *g4fAdapter) Name() string             { return string(KindG4F) }
func (a *g4fAdapter) FailureMode() FailureMode { return Swallow }

func (a *g4fAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultG4FBaseURL
	}
	return a.http.chatCompletion(ctx, a.Name(), baseURL, cfg.APIKey, cfg.ModelName, []ChatMessage{UserMessage(prompt)})
}
