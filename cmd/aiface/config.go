package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/martinemde/aiface/unifiedllm"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective provider configuration",
	Long:  "Resolve the configuration and print the settings the selected provider would be called with. The API key is redacted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadRootConfigFromFlags()
		if err != nil {
			return err
		}
		return printEffectiveConfig(cmd.OutOrStdout(), root)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printEffectiveConfig(out io.Writer, root unifiedllm.RootConfig) error {
	cfg, err := unifiedllm.Resolve(root)
	if err != nil {
		return err
	}

	// Go through JSON so Extra keys come out next to the known ones.
	b, err := json.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
