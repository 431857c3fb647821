package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martinemde/aiface/metrics"
	"github.com/martinemde/aiface/unifiedllm"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Send a prompt to the configured provider",
	Long:  "Send a prompt to the configured provider and print the reply. The prompt is read from stdin when no arguments are given.",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().String("metrics-file", "", "Write call metrics to this file in Prometheus text format")
	_ = viper.BindPFlag("metrics_file", askCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	root, err := loadRootConfigFromFlags()
	if err != nil {
		return err
	}

	logger, err := newLogger(viper.GetString("log_level"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	facade, err := unifiedllm.New(root,
		unifiedllm.WithLogger(logger),
		unifiedllm.WithMiddleware(metrics.Middleware(reg)),
	)
	if err != nil {
		return err
	}

	reply, callErr := facade.CallAIInterface(cmd.Context(), prompt)

	if path := viper.GetString("metrics_file"); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			logger.WithError(err).Warn("failed to write metrics file")
		}
	}

	if callErr != nil {
		return callErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// readPrompt joins args, or reads all of in when there are none.
func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given")
	}
	return prompt, nil
}
