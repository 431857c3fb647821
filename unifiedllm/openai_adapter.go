package unifiedllm

import (
	"context"

	"github.com/sirupsen/logrus"
)

// openAIAdapter issues a single-turn chat completion over the OpenAI
// protocol. It serves openai, deepseek and every kind without a dedicated
// adapter. An unset baseUrl means OpenAI's own API. Errors propagate.
type openAIAdapter struct {
	name   string
	http   *httpClient
	logger logrus.FieldLogger
}

func newOpenAIAdapter(name string, hc *httpClient, logger logrus.FieldLogger) *openAIAdapter {
	return &openAIAdapter{name: name, http: hc, logger: logger}
}

func (a *openAIAdapter) Name() string             { return a.name }
func (a *openAIAdapter) FailureMode() FailureMode { return Propagate }

func (a *openAIAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	a.logger.WithFields(logrus.Fields{
		"adapter": a.name,
		"config":  cfg.Redacted(),
	}).Debug("calling OpenAI-compatible backend")

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return a.http.chatCompletion(ctx, a.name, baseURL, cfg.APIKey, cfg.ModelName, []ChatMessage{UserMessage(prompt)})
}
