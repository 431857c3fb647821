package unifiedllm

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Facade sends prompts to the provider fixed at construction. It is safe for
// concurrent use; nothing it holds changes after New returns.
type Facade struct {
	kind       ProviderKind
	config     *EffectiveConfig
	adapter    Adapter
	middleware []Middleware
	logger     logrus.FieldLogger
}

// Option configures a Facade.
type Option func(*facadeOptions)

type facadeOptions struct {
	logger       logrus.FieldLogger
	httpClient   *http.Client
	adapters     map[ProviderKind]Adapter
	middleware   []Middleware
	subProviders map[string]SubProvider
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *facadeOptions) {
		o.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used by every HTTP adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(o *facadeOptions) {
		o.httpClient = client
	}
}

// WithAdapter replaces the adapter a routing key dispatches to. Routing keys
// are g4f, gpt4js, gemini, azure, other, deepseek and openai.
func WithAdapter(kind ProviderKind, adapter Adapter) Option {
	return func(o *facadeOptions) {
		o.adapters[kind] = adapter
	}
}

// WithMiddleware adds middleware around adapter calls.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *facadeOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithGPT4JSProvider registers a gpt4js sub-provider under name.
func WithGPT4JSProvider(name string, provider SubProvider) Option {
	return func(o *facadeOptions) {
		o.subProviders[name] = provider
	}
}

// New resolves root into an EffectiveConfig and returns a ready Facade.
// An unrecognized provider yields a *ConfigurationError and no Facade.
func New(root RootConfig, opts ...Option) (*Facade, error) {
	cfg, err := Resolve(root)
	if err != nil {
		return nil, err
	}

	o := &facadeOptions{
		adapters:     make(map[ProviderKind]Adapter),
		subProviders: make(map[string]SubProvider),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}

	key := route(cfg.Kind)
	adapter, ok := o.adapters[key]
	if !ok {
		adapter = defaultAdapter(key, o)
	}

	return &Facade{
		kind:       cfg.Kind,
		config:     cfg,
		adapter:    adapter,
		middleware: o.middleware,
		logger:     o.logger,
	}, nil
}

// route maps a provider to the key of the adapter that serves it. Kinds
// without a dedicated adapter take the OpenAI-compatible default arm.
func route(kind ProviderKind) ProviderKind {
	switch kind {
	case KindG4F:
		return KindG4F
	case KindGPT4JS:
		return KindGPT4JS
	case KindGemini:
		return KindGemini
	case KindAzure:
		return KindAzure
	case KindOther:
		return KindOther
	case KindDeepSeek:
		return KindDeepSeek
	case KindOpenAI, KindMoonshot:
		return KindOpenAI
	default:
		return KindOpenAI
	}
}

func defaultAdapter(key ProviderKind, o *facadeOptions) Adapter {
	hc := newHTTPClient()
	if o.httpClient != nil {
		hc = &httpClient{client: o.httpClient}
	}

	switch key {
	case KindG4F:
		return &g4fAdapter{http: hc}
	case KindGPT4JS:
		return newGPT4JSAdapter(hc, o.subProviders)
	case KindGemini:
		return &geminiAdapter{http: hc}
	case KindAzure:
		return &azureAdapter{http: hc}
	case KindOther:
		return &otherAdapter{http: hc, logger: o.logger}
	case KindDeepSeek:
		return newOpenAIAdapter(string(KindDeepSeek), hc, o.logger)
	default:
		return newOpenAIAdapter(string(KindOpenAI), hc, o.logger)
	}
}

// Provider returns the resolved provider kind.
func (f *Facade) Provider() ProviderKind { return f.kind }

// Adapter returns the adapter this facade dispatches to.
func (f *Facade) Adapter() Adapter { return f.adapter }

// Config returns a copy of the effective configuration.
func (f *Facade) Config() EffectiveConfig {
	return EffectiveConfig{Kind: f.config.Kind, ProviderConfig: f.config.ProviderConfig.Clone()}
}

// CallAIInterface sends prompt to the configured backend and returns its
// reply with the first newline removed. Whether a backend error is returned
// or replaced by "" depends on the adapter's FailureMode; either way it is
// logged first.
func (f *Facade) CallAIInterface(ctx context.Context, prompt string) (string, error) {
	call := Call{
		ID:       uuid.New().String(),
		Provider: f.kind,
		Adapter:  f.adapter.Name(),
		Model:    f.config.ModelName,
		BaseURL:  f.config.BaseURL,
		Prompt:   prompt,
	}

	handler := func(ctx context.Context, c Call) (string, error) {
		return f.adapter.Call(ctx, f.config, c.Prompt)
	}
	// Apply middleware in reverse order so first registered runs first.
	for i := len(f.middleware) - 1; i >= 0; i-- {
		mw := f.middleware[i]
		next := handler
		handler = func(ctx context.Context, c Call) (string, error) {
			return mw(ctx, c, next)
		}
	}

	text, err := handler(ctx, call)
	if err != nil {
		entry := f.logger.WithFields(logrus.Fields{
			"provider": f.kind,
			"adapter":  call.Adapter,
			"call_id":  call.ID,
		}).WithError(err)
		if f.adapter.FailureMode() == Swallow {
			entry.Errorf("Sorry, there was an error calling %s.", call.Adapter)
			return "", nil
		}
		entry.Errorf("Error making %s API call", call.Adapter)
		return "", err
	}

	return stripFirstNewline(text), nil
}

// stripFirstNewline removes only the first "\n"; later ones are kept.
func stripFirstNewline(s string) string {
	return strings.Replace(s, "\n", "", 1)
}
