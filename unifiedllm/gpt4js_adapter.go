package unifiedllm

import (
	"context"
	"fmt"
)

// ChatRequest is what a gpt4js sub-provider receives.
type ChatRequest struct {
	Model    string
	Messages []ChatMessage
	BaseURL  string
	APIKey   string
}

// SubProvider is one gpt4js chat implementation. progress receives partial
// output if the implementation produces any; it may be ignored.
type SubProvider func(ctx context.Context, req ChatRequest, progress func(string)) (string, error)

// gpt4jsAdapter picks a sub-provider by the config's provider field
// (default "Nextway"). The backend is best-effort.
type gpt4jsAdapter struct {
	providers map[string]SubProvider
}

func newGPT4JSAdapter(hc *httpClient, extra map[string]SubProvider) *gpt4jsAdapter {
	providers := map[string]SubProvider{
		defaultGPT4JSProvider: openAICompatibleSubProvider(hc, defaultGPT4JSProvider),
	}
	for name, p := range extra {
		providers[name] = p
	}
	return &gpt4jsAdapter{providers: providers}
}

func (a *gpt4jsAdapter) Name() string             { return string(KindGPT4JS) }
func (a *gpt4jsAdapter) FailureMode() FailureMode { return Swallow }

func (a *gpt4jsAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	name := cfg.Provider
	if name == "" {
		name = defaultGPT4JSProvider
	}
	provider, ok := a.providers[name]
	if !ok {
		return "", configError(fmt.Sprintf("gpt4js provider %q is not registered", name), nil)
	}

	req := ChatRequest{
		Model:    cfg.ModelName,
		Messages: []ChatMessage{UserMessage(prompt)},
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
	}
	return provider(ctx, req, func(string) {})
}

// openAICompatibleSubProvider posts an OpenAI chat completion to req.BaseURL.
func openAICompatibleSubProvider(hc *httpClient, name string) SubProvider {
	return func(ctx context.Context, req ChatRequest, _ func(string)) (string, error) {
		if err := validateBaseURL(req.BaseURL); err != nil {
			return "", configError(fmt.Sprintf("gpt4js provider %s needs a valid baseUrl", name), err)
		}
		return hc.chatCompletion(ctx, "gpt4js/"+name, req.BaseURL, req.APIKey, req.Model, req.Messages)
	}
}
