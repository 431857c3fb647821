package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/martinemde/aiface/unifiedllm"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers and their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProviders(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func printProviders(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tADAPTER\tON ERROR\tMODEL\tBASE URL")
	for _, kind := range unifiedllm.ProviderKinds() {
		facade, err := unifiedllm.New(unifiedllm.RootConfig{Provider: string(kind)})
		if err != nil {
			return err
		}
		cfg, _ := unifiedllm.DefaultProviderConfig(kind)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			kind,
			facade.Adapter().Name(),
			facade.Adapter().FailureMode(),
			orDash(cfg.ModelName),
			orDash(cfg.BaseURL),
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
