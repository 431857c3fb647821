package unifiedllm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// validateBaseURL reports whether u is a usable absolute URL.
func validateBaseURL(u string) error {
	return validate.Var(u, "required,url")
}

// LoadConfigFile reads a YAML, TOML or JSON config file (chosen by
// extension) and overlays it on DefaultRootConfig.
func LoadConfigFile(path string) (RootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RootConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseConfig(data, format)
}

// ParseConfig decodes data in the given format ("yaml", "yml", "toml" or
// "json"), overlays it on DefaultRootConfig and validates the result.
func ParseConfig(data []byte, format string) (RootConfig, error) {
	var generic map[string]any
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &generic)
	case "toml":
		err = toml.Unmarshal(data, &generic)
	case "json", "":
		err = json.Unmarshal(data, &generic)
	default:
		return RootConfig{}, configError(fmt.Sprintf("unsupported config format %q", format), nil)
	}
	if err != nil {
		return RootConfig{}, configError("failed to parse "+format+" config", err)
	}

	// Every format goes through JSON so ProviderConfig collects unknown keys
	// into Extra the same way.
	normalized, err := json.Marshal(generic)
	if err != nil {
		return RootConfig{}, configError("failed to normalize config", err)
	}
	var file RootConfig
	if err := json.Unmarshal(normalized, &file); err != nil {
		return RootConfig{}, configError("invalid config structure", err)
	}

	root := DefaultRootConfig()
	root.Overlay(file)
	if err := ValidateConfig(root); err != nil {
		return RootConfig{}, err
	}
	return root, nil
}

// ValidateConfig checks field formats: base URLs must be absolute URLs when
// set and request timeouts must not be negative. Provider names are checked
// by Resolve.
func ValidateConfig(root RootConfig) error {
	if err := validate.Struct(root); err != nil {
		return configError("invalid config", err)
	}
	return nil
}

// Credentials are API keys read from the environment.
type Credentials struct {
	OpenAI   string `env:"OPENAI_API_KEY"`
	DeepSeek string `env:"DEEPSEEK_API_KEY"`
	Moonshot string `env:"MOONSHOT_API_KEY"`
	Gemini   string `env:"GEMINI_API_KEY"`
	Azure    string `env:"AZURE_OPENAI_API_KEY"`
}

// CredentialsFromEnv parses Credentials from the process environment.
func CredentialsFromEnv() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("parsing credentials from environment: %w", err)
	}
	return c, nil
}

// ApplyCredentials fills the apiKey of each block that has none and did not
// set one explicitly. Blocks that are absent are created.
func (r *RootConfig) ApplyCredentials(c Credentials) {
	for kind, key := range map[ProviderKind]string{
		KindOpenAI:   c.OpenAI,
		KindDeepSeek: c.DeepSeek,
		KindMoonshot: c.Moonshot,
		KindGemini:   c.Gemini,
		KindAzure:    c.Azure,
	} {
		if key == "" {
			continue
		}
		block := r.Block(kind).orEmpty()
		if block.APIKey != "" || block.present["apiKey"] {
			continue
		}
		block.APIKey = key
		r.SetBlock(kind, &block)
	}
}
