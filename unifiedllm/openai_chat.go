package unifiedllm

import (
	"context"
	"errors"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// chatCompletion sends a chat completion to an OpenAI-compatible endpoint at
// baseURL and returns the first choice's content, or "" when there is none.
// The request carries only model and messages.
func (hc *httpClient) chatCompletion(ctx context.Context, provider, baseURL, apiKey, model string, messages []ChatMessage) (string, error) {
	client := openai.NewClient(hc.openAIOptions(baseURL, apiKey)...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", translateOpenAIError(provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIOptions pins every setting the SDK would otherwise take from the
// environment (OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_ORG_ID, ...).
func (hc *httpClient) openAIOptions(baseURL, apiKey string) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(hc.client),
		option.WithMaxRetries(0),
		option.WithAPIKey(apiKey),
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	}
	if apiKey == "" {
		opts = append(opts, option.WithHeaderDel("Authorization"))
	}
	return opts
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// translateOpenAIError maps an SDK error to the facade error hierarchy,
// keeping the HTTP status and the provider's error body.
func translateOpenAIError(provider string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		var body []byte
		if apiErr.Response != nil && apiErr.Response.Body != nil {
			body, _ = io.ReadAll(apiErr.Response.Body)
		}
		if len(body) == 0 {
			body = []byte(apiErr.RawJSON())
		}
		return errorFromBody(apiErr.StatusCode, body, provider)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestTimeoutError{SDKError: SDKError{Message: "request timed out", Cause: err}}
	}
	return &NetworkError{SDKError: SDKError{Message: "request failed", Cause: err}}
}
