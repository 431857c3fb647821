package unifiedllm

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

type azureCompletionRequest struct {
	Model            string  `json:"model,omitempty"`
	Prompt           string  `json:"prompt"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

type azureCompletionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// azureAdapter issues a legacy (non-chat) completion against an Azure OpenAI
// deployment named by the model. Errors propagate.
type azureAdapter struct {
	http *httpClient
}

func (a *azureAdapter) Name() string             { return string(KindAzure) }
func (a *azureAdapter) FailureMode() FailureMode { return Propagate }

func (a *azureAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return "", configError("azure requires a valid baseUrl", err)
	}

	apiVersion := cfg.ExtraString("apiVersion")
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	endpoint, err := withQuery(azureCompletionsURL(cfg.BaseURL, cfg.ModelName), map[string]string{"api-version": apiVersion})
	if err != nil {
		return "", configError("azure baseUrl is not a valid URL", err)
	}

	body, err := json.Marshal(azureCompletionRequest{
		Model:            cfg.ModelName,
		Prompt:           prompt,
		MaxTokens:        100,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	})
	if err != nil {
		return "", err
	}

	data, err := a.http.postJSON(ctx, a.Name(), endpoint, map[string]string{"api-key": cfg.APIKey}, body)
	if err != nil {
		return "", err
	}

	var resp azureCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &ProviderError{SDKError: SDKError{Message: "malformed completion response", Cause: err}, Provider: a.Name()}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{SDKError: SDKError{Message: "completion returned no choices"}, Provider: a.Name()}
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}

// azureCompletionsURL accepts either a resource endpoint or a base URL that
// already points at a deployment.
func azureCompletionsURL(baseURL, deployment string) string {
	if strings.Contains(baseURL, "/openai/deployments/") {
		return joinURL(baseURL, "completions")
	}
	return joinURL(baseURL, "openai/deployments", url.PathEscape(deployment), "completions")
}
