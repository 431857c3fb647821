package unifiedllm

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

// ProviderKind is the normalized, lower-case provider key.
type ProviderKind string

const (
	KindMoonshot ProviderKind = "moonshot"
	KindOpenAI   ProviderKind = "openai"
	KindAzure    ProviderKind = "azure"
	KindGemini   ProviderKind = "gemini"
	KindG4F      ProviderKind = "g4f"
	KindGPT4JS   ProviderKind = "gpt4js"
	KindOther    ProviderKind = "other"
	KindDeepSeek ProviderKind = "deepseek"
)

// ProviderKinds returns every recognized provider key.
func ProviderKinds() []ProviderKind {
	return []ProviderKind{
		KindMoonshot, KindOpenAI, KindAzure, KindGemini,
		KindG4F, KindGPT4JS, KindOther, KindDeepSeek,
	}
}

// ParseProviderKind matches name case-insensitively against the recognized keys.
func ParseProviderKind(name string) (ProviderKind, bool) {
	kind := ProviderKind(strings.ToLower(name))
	for _, k := range ProviderKinds() {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

// RequestConfig holds transport options for the "other" adapter.
type RequestConfig struct {
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Timeout int               `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"` // milliseconds
	Auth    *BasicAuth        `json:"auth,omitempty" yaml:"auth,omitempty"`

	// Extra holds options this client does not apply (proxy, maxRedirects, ...).
	// The "other" adapter logs them as ignored.
	Extra map[string]any `json:"-" yaml:",inline"`
}

// BasicAuth is sent as an HTTP Basic Authorization header.
type BasicAuth struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

var requestConfigKeys = map[string]bool{
	"headers": true, "params": true, "timeout": true, "auth": true,
}

// UnmarshalJSON decodes the known keys and collects the rest into Extra.
func (r *RequestConfig) UnmarshalJSON(b []byte) error {
	type plain RequestConfig
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, _, err := unknownKeys(b, requestConfigKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = RequestConfig(p)
	return nil
}

// MarshalJSON writes Extra keys next to the known ones.
func (r RequestConfig) MarshalJSON() ([]byte, error) {
	type plain RequestConfig
	b, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	return setExtra(b, r.Extra, requestConfigKeys)
}

// ProviderConfig is one settings block. Zero-valued fields are "unset".
type ProviderConfig struct {
	APIKey        string         `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	ModelName     string         `json:"modelName,omitempty" yaml:"modelName,omitempty"`
	BaseURL       string         `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" validate:"omitempty,url"`
	Data          map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	RequestConfig *RequestConfig `json:"requestConfig,omitempty" yaml:"requestConfig,omitempty"`
	ResponsePath  string         `json:"responsePath,omitempty" yaml:"responsePath,omitempty"`
	Provider      string         `json:"provider,omitempty" yaml:"provider,omitempty"` // gpt4js sub-provider

	// Extra holds every other key (e.g. apiVersion for azure).
	Extra map[string]any `json:"-" yaml:",inline"`

	// present lists known keys that were spelled out in decoded input. A
	// present key overrides even when its value is empty.
	present map[string]bool
}

var providerConfigKeys = map[string]bool{
	"apiKey": true, "modelName": true, "baseUrl": true, "data": true,
	"requestConfig": true, "responsePath": true, "provider": true,
}

// UnmarshalJSON decodes the known keys and collects the rest into Extra.
func (c *ProviderConfig) UnmarshalJSON(b []byte) error {
	type plain ProviderConfig
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, present, err := unknownKeys(b, providerConfigKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	p.present = present
	*c = ProviderConfig(p)
	return nil
}

// unknownKeys splits the keys of a JSON object into values for keys not in
// known, and the set of known keys that appear.
func unknownKeys(b []byte, known map[string]bool) (map[string]any, map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, nil, err
	}
	var extra map[string]any
	var present map[string]bool
	for key, value := range raw {
		if known[key] {
			if present == nil {
				present = make(map[string]bool)
			}
			present[key] = true
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, nil, err
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = v
	}
	return extra, present, nil
}

func setExtra(b []byte, extra map[string]any, known map[string]bool) ([]byte, error) {
	var err error
	for _, key := range sortedKeys(extra) {
		if known[key] {
			continue
		}
		if b, err = sjson.SetBytes(b, escapePathComponent(key), extra[key]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// MarshalJSON writes Extra keys next to the known ones.
func (c ProviderConfig) MarshalJSON() ([]byte, error) {
	type plain ProviderConfig
	b, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	return setExtra(b, c.Extra, providerConfigKeys)
}

// ExtraString returns Extra[key] when it is a string.
func (c ProviderConfig) ExtraString(key string) string {
	s, _ := c.Extra[key].(string)
	return s
}

// overlay returns c with every set field of o written over it. A field is set
// when it is non-zero or was present in decoded input, so an explicit "" from
// a config file clears the value below it. Extra keys are top-level fields and
// merge key by key; every other field is replaced whole.
func (c ProviderConfig) overlay(o *ProviderConfig) ProviderConfig {
	if o == nil {
		return c
	}
	if o.APIKey != "" || o.present["apiKey"] {
		c.APIKey = o.APIKey
	}
	if o.ModelName != "" || o.present["modelName"] {
		c.ModelName = o.ModelName
	}
	if o.BaseURL != "" || o.present["baseUrl"] {
		c.BaseURL = o.BaseURL
	}
	if o.Data != nil || o.present["data"] {
		c.Data = cloneMap(o.Data)
	}
	if o.RequestConfig != nil || o.present["requestConfig"] {
		c.RequestConfig = o.RequestConfig.clone()
	}
	if o.ResponsePath != "" || o.present["responsePath"] {
		c.ResponsePath = o.ResponsePath
	}
	if o.Provider != "" || o.present["provider"] {
		c.Provider = o.Provider
	}
	if len(o.present) > 0 {
		present := make(map[string]bool, len(c.present)+len(o.present))
		for k := range c.present {
			present[k] = true
		}
		for k := range o.present {
			present[k] = true
		}
		c.present = present
	}
	if len(o.Extra) > 0 {
		extra := cloneMap(c.Extra)
		if extra == nil {
			extra = make(map[string]any, len(o.Extra))
		}
		for k, v := range o.Extra {
			extra[k] = cloneValue(v)
		}
		c.Extra = extra
	}
	return c
}

// Clone returns a deep copy of c.
func (c ProviderConfig) Clone() ProviderConfig {
	return ProviderConfig{}.overlay(&c)
}

// RootConfig is the caller-owned layered configuration.
type RootConfig struct {
	// Base holds per-provider fallbacks that sit below Default. It is never
	// read from or written to config files; DefaultRootConfig fills it from
	// the built-in table.
	Base map[ProviderKind]ProviderConfig `json:"-" yaml:"-"`

	Provider string          `json:"provider" yaml:"provider"`
	Default  *ProviderConfig `json:"default,omitempty" yaml:"default,omitempty"`
	Moonshot *ProviderConfig `json:"moonshot,omitempty" yaml:"moonshot,omitempty"`
	OpenAI   *ProviderConfig `json:"openai,omitempty" yaml:"openai,omitempty"`
	Azure    *ProviderConfig `json:"azure,omitempty" yaml:"azure,omitempty"`
	Gemini   *ProviderConfig `json:"gemini,omitempty" yaml:"gemini,omitempty"`
	G4F      *ProviderConfig `json:"g4f,omitempty" yaml:"g4f,omitempty"`
	GPT4JS   *ProviderConfig `json:"gpt4js,omitempty" yaml:"gpt4js,omitempty"`
	// Other is the "other" provider; its surface key is otherAI.
	Other    *ProviderConfig `json:"otherAI,omitempty" yaml:"otherAI,omitempty"`
	DeepSeek *ProviderConfig `json:"deepseek,omitempty" yaml:"deepseek,omitempty"`
}

// Block returns the override block for kind, or nil if absent.
func (r *RootConfig) Block(kind ProviderKind) *ProviderConfig {
	if p := r.blockPtr(kind); p != nil {
		return *p
	}
	return nil
}

// SetBlock replaces the override block for kind.
func (r *RootConfig) SetBlock(kind ProviderKind, cfg *ProviderConfig) {
	if p := r.blockPtr(kind); p != nil {
		*p = cfg
	}
}

func (r *RootConfig) blockPtr(kind ProviderKind) **ProviderConfig {
	switch kind {
	case KindMoonshot:
		return &r.Moonshot
	case KindOpenAI:
		return &r.OpenAI
	case KindAzure:
		return &r.Azure
	case KindGemini:
		return &r.Gemini
	case KindG4F:
		return &r.G4F
	case KindGPT4JS:
		return &r.GPT4JS
	case KindOther:
		return &r.Other
	case KindDeepSeek:
		return &r.DeepSeek
	}
	return nil
}

// Overlay writes every set field of o over r, block by block.
func (r *RootConfig) Overlay(o RootConfig) {
	for kind, base := range o.Base {
		if r.Base == nil {
			r.Base = make(map[ProviderKind]ProviderConfig)
		}
		b := base
		r.Base[kind] = r.Base[kind].overlay(&b)
	}
	if o.Provider != "" {
		r.Provider = o.Provider
	}
	if o.Default != nil {
		merged := r.Default.orEmpty().overlay(o.Default)
		r.Default = &merged
	}
	for _, kind := range ProviderKinds() {
		block := o.Block(kind)
		if block == nil {
			continue
		}
		merged := r.Block(kind).orEmpty().overlay(block)
		r.SetBlock(kind, &merged)
	}
}

func (c *ProviderConfig) orEmpty() ProviderConfig {
	if c == nil {
		return ProviderConfig{}
	}
	return *c
}

// EffectiveConfig is the resolved settings record for the active provider.
type EffectiveConfig struct {
	Kind           ProviderKind `json:"kind" yaml:"kind"`
	ProviderConfig `yaml:",inline"`
}

// MarshalJSON keeps Kind alongside the promoted ProviderConfig encoding.
func (e EffectiveConfig) MarshalJSON() ([]byte, error) {
	b, err := e.ProviderConfig.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, "kind", string(e.Kind))
}

// Redacted returns a copy with the credential masked.
func (e EffectiveConfig) Redacted() EffectiveConfig {
	out := EffectiveConfig{Kind: e.Kind, ProviderConfig: e.ProviderConfig.Clone()}
	if out.APIKey != "" {
		out.APIKey = "[redacted]"
	}
	return out
}

// Resolve merges the provider block named by root.Provider over root.Default,
// and both over root.Base for that provider when one is set. An unrecognized
// provider yields a *ConfigurationError.
func Resolve(root RootConfig) (*EffectiveConfig, error) {
	kind, ok := ParseProviderKind(root.Provider)
	if !ok {
		return nil, configError(ErrProviderNotSet.Error(), ErrProviderNotSet)
	}
	base := root.Base[kind]
	merged := base.Clone().overlay(root.Default).overlay(root.Block(kind))
	return &EffectiveConfig{Kind: kind, ProviderConfig: merged}, nil
}

func (r *RequestConfig) clone() *RequestConfig {
	if r == nil {
		return nil
	}
	out := &RequestConfig{Timeout: r.Timeout, Extra: cloneMap(r.Extra)}
	if r.Auth != nil {
		auth := *r.Auth
		out.Auth = &auth
	}
	if r.Headers != nil {
		out.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			out.Headers[k] = v
		}
	}
	if r.Params != nil {
		out.Params = make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			out.Params[k] = v
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
