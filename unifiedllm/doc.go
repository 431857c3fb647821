// Package unifiedllm sends a single text prompt to one of several LLM
// backends chosen by configuration and returns plain text, hiding each
// backend's request and response shape from the caller.
//
// # Configuration
//
// A RootConfig names the active provider and carries a default block plus
// one optional block per provider (moonshot, openai, azure, gemini, g4f,
// gpt4js, otherAI, deepseek). Resolve merges the provider block over the
// default block one level deep into an EffectiveConfig:
//
//	root := unifiedllm.RootConfig{
//	    Provider: "DeepSeek",
//	    Default:  &unifiedllm.ProviderConfig{APIKey: "d", ModelName: "m"},
//	    DeepSeek: &unifiedllm.ProviderConfig{APIKey: "o"},
//	}
//	cfg, _ := unifiedllm.Resolve(root) // {Kind: deepseek, APIKey: "o", ModelName: "m"}
//
// LoadConfigFile reads the same structure from YAML, TOML or JSON on top of
// DefaultRootConfig, whose Base layer holds the built-in defaults. Both the
// default block and the provider block override Base. A key written out in a
// file overrides even when empty.
//
// # Facade
//
//	f, err := unifiedllm.New(root, unifiedllm.WithLogger(logger))
//	if err != nil {
//	    return err // *ConfigurationError for an unknown provider
//	}
//	text, err := f.CallAIInterface(ctx, "Summarize this diff")
//
// Routing is fixed at construction. g4f, gpt4js, gemini, azure, other and
// deepseek have dedicated adapters; openai, moonshot and anything else use
// the OpenAI-compatible adapter. The returned text has its first "\n"
// removed; later newlines are kept.
//
// # Failure modes
//
// Every Adapter declares a FailureMode. g4f, gpt4js and gemini are
// best-effort (Swallow): a backend error is logged and the call returns "".
// azure, other and the OpenAI-compatible adapter Propagate: the error is
// logged and returned unchanged. Backend errors satisfy IsBackendError.
package unifiedllm
