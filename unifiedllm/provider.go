package unifiedllm

import "context"

// FailureMode decides what the facade does with a backend error.
type FailureMode int

const (
	// Propagate returns the backend error to the caller unchanged.
	Propagate FailureMode = iota
	// Swallow logs the error and returns empty text. Used by best-effort backends.
	Swallow
)

func (m FailureMode) String() string {
	switch m {
	case Swallow:
		return "swallow"
	default:
		return "propagate"
	}
}

// Adapter is the interface every backend call path implements.
type Adapter interface {
	// Name returns the adapter identifier used in diagnostics.
	Name() string

	// FailureMode reports how the facade treats errors from Call.
	FailureMode() FailureMode

	// Call sends prompt to the backend using cfg and returns the reply text.
	Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error)
}

// Call describes one facade invocation as seen by middleware.
type Call struct {
	ID       string
	Provider ProviderKind
	Adapter  string
	Model    string
	BaseURL  string
	Prompt   string
}

// CallFunc invokes the next handler in the middleware chain.
type CallFunc func(ctx context.Context, call Call) (string, error)

// Middleware wraps the raw adapter call. It sees backend errors before the
// adapter's FailureMode is applied and text before newline stripping.
type Middleware func(ctx context.Context, call Call, next CallFunc) (string, error)

// ChatMessage is one entry of a chat-style request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a single user ChatMessage.
func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}
