package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martinemde/aiface/metrics"
	"github.com/martinemde/aiface/replycache"
	"github.com/martinemde/aiface/unifiedllm"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Send one prompt per line and print one reply per line",
	Long:  "Send each non-blank line of file (or stdin) as a prompt. Repeated prompts are answered from an in-memory cache.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().Duration("cache-ttl", 10*time.Minute, "How long a reply is reused for a repeated prompt")
	_ = viper.BindPFlag("cache_ttl", batchCmd.Flags().Lookup("cache-ttl"))

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening prompts: %w", err)
		}
		defer f.Close()
		in = f
	}
	prompts, err := readPrompts(in)
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

	ttl := viper.GetDuration("cache_ttl")
	cache := replycache.New(ttl, 2*ttl)
	facade, err := unifiedllm.New(root,
		unifiedllm.WithLogger(logger),
		unifiedllm.WithMiddleware(metrics.Middleware(prometheus.NewRegistry()), cache.Middleware()),
	)
	if err != nil {
		return err
	}

	return answerAll(cmd.Context(), facade, prompts, cmd.OutOrStdout())
}

// answerAll writes one reply per prompt, with embedded newlines escaped so
// output lines match input lines. It stops at the first error.
func answerAll(ctx context.Context, facade *unifiedllm.Facade, prompts []string, out io.Writer) error {
	for i, prompt := range prompts {
		reply, err := facade.CallAIInterface(ctx, prompt)
		if err != nil {
			return fmt.Errorf("prompt %d: %w", i+1, err)
		}
		fmt.Fprintln(out, strings.ReplaceAll(reply, "\n", `\n`))
	}
	return nil
}

// readPrompts returns the trimmed non-blank lines of in.
func readPrompts(in io.Reader) ([]string, error) {
	var prompts []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts given")
	}
	return prompts, nil
}
