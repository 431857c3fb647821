package unifiedllm

const (
	defaultAzureAPIVersion = "2024-02-15-preview"
	defaultGPT4JSProvider  = "Nextway"
	defaultGeminiBaseURL   = "https://generativelanguage.googleapis.com"
	defaultG4FBaseURL      = "http://localhost:1337/v1"
	openAIBaseURL          = "https://api.openai.com/v1"
)

// defaultConfigs is the baseline settings table, keyed by provider.
var defaultConfigs = map[ProviderKind]ProviderConfig{
	KindMoonshot: {
		ModelName: "moonshot-v1-8k",
		BaseURL:   "https://api.moonshot.cn/v1",
	},
	KindOpenAI: {
		ModelName: "gpt-4-turbo-preview",
		BaseURL:   openAIBaseURL,
	},
	KindAzure: {
		ModelName: "gpt-35-turbo",
		Extra:     map[string]any{"apiVersion": defaultAzureAPIVersion},
	},
	KindGemini: {},
	KindG4F: {
		APIKey:    "xxx",
		ModelName: "gpt-3.5-turbo-16k-0613",
		BaseURL:   defaultG4FBaseURL,
	},
	KindGPT4JS: {
		APIKey:    "xxx",
		ModelName: "gpt-4o-free",
		Provider:  defaultGPT4JSProvider,
	},
	KindOther: {},
	KindDeepSeek: {
		ModelName: "deepseek-chat",
		BaseURL:   "https://api.deepseek.com/v1",
	},
}

// DefaultProviderConfig returns a copy of the baseline settings for kind.
func DefaultProviderConfig(kind ProviderKind) (ProviderConfig, bool) {
	cfg, ok := defaultConfigs[kind]
	if !ok {
		return ProviderConfig{}, false
	}
	return cfg.Clone(), true
}

// DefaultRootConfig returns a RootConfig whose Base layer holds the baseline
// table, with empty blocks and no provider selected. Default and the provider
// blocks both override the table.
func DefaultRootConfig() RootConfig {
	root := RootConfig{
		Base:    make(map[ProviderKind]ProviderConfig, len(defaultConfigs)),
		Default: &ProviderConfig{},
	}
	for _, kind := range ProviderKinds() {
		root.Base[kind], _ = DefaultProviderConfig(kind)
	}
	return root
}
