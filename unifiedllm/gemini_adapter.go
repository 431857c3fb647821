package unifiedllm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Fixed generation parameters for every Gemini call.
var geminiGenerationConfig = geminiGenerationParams{
	Temperature:     0.5,
	TopP:            1,
	TopK:            1,
	MaxOutputTokens: 2048,
}

var geminiSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationParams struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationParams `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// geminiAdapter sends each prompt as the first message of a new chat
// session. The backend is best-effort.
type geminiAdapter struct {
	http *httpClient
}

func (a *geminiAdapter) Name() string             { return string(KindGemini) }
func (a *geminiAdapter) FailureMode() FailureMode { return Swallow }

func (a *geminiAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	return a.startChat(cfg).sendMessage(ctx, prompt)
}

func (a *geminiAdapter) startChat(cfg *EffectiveConfig) *geminiChat {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &geminiChat{
		http:   a.http,
		url:    joinURL(baseURL, "v1beta/models", url.PathEscape(cfg.ModelName)+":generateContent"),
		apiKey: cfg.APIKey,
	}
}

// geminiChat is one conversation. History lives only as long as the value.
type geminiChat struct {
	http    *httpClient
	url     string
	apiKey  string
	history []geminiContent
}

func (s *geminiChat) sendMessage(ctx context.Context, text string) (string, error) {
	userTurn := geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}}
	contents := append(append([]geminiContent{}, s.history...), userTurn)

	body, err := json.Marshal(geminiRequest{
		Contents:         contents,
		GenerationConfig: geminiGenerationConfig,
		SafetySettings:   geminiSafetySettings,
	})
	if err != nil {
		return "", err
	}

	data, err := s.http.postJSON(ctx, string(KindGemini), s.url, map[string]string{"x-goog-api-key": s.apiKey}, body)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &ProviderError{SDKError: SDKError{Message: "malformed gemini response", Cause: err}, Provider: string(KindGemini)}
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", &ContentFilterError{ProviderError: ProviderError{
				SDKError: SDKError{Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason)},
				Provider: string(KindGemini),
			}}
		}
		return "", &ProviderError{SDKError: SDKError{Message: "gemini returned no candidates"}, Provider: string(KindGemini)}
	}

	reply := resp.Candidates[0].Content
	var sb strings.Builder
	for _, part := range reply.Parts {
		sb.WriteString(part.Text)
	}

	reply.Role = "model"
	s.history = append(contents, reply)
	return sb.String(), nil
}
