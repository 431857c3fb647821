package main

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martinemde/aiface/unifiedllm"
)

var rootCmd = &cobra.Command{
	Use:           "aiface",
	Short:         "Send prompts to a configured LLM provider",
	Long:          "aiface resolves a layered provider configuration and sends a prompt to the selected LLM backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "Provider override")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix("AIFACE")
	viper.AutomaticEnv()
}

// newLogger builds the CLI logger. Diagnostics go to stderr so replies on
// stdout stay clean.
func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	return logger, nil
}

// loadRootConfig reads the config file (or the built-in table when path is
// empty), fills missing API keys from the environment and applies the
// provider override.
func loadRootConfig(path, provider string) (unifiedllm.RootConfig, error) {
	root := unifiedllm.DefaultRootConfig()
	if path != "" {
		var err error
		if root, err = unifiedllm.LoadConfigFile(path); err != nil {
			return unifiedllm.RootConfig{}, err
		}
	}

	creds, err := unifiedllm.CredentialsFromEnv()
	if err != nil {
		return unifiedllm.RootConfig{}, err
	}
	root.ApplyCredentials(creds)

	if provider != "" {
		root.Provider = provider
	}
	return root, nil
}

func loadRootConfigFromFlags() (unifiedllm.RootConfig, error) {
	return loadRootConfig(viper.GetString("config"), viper.GetString("provider"))
}
