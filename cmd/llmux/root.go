package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the global --config flag.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "llmux",
	Short: "llmux - OpenAI-compatible multi-provider LLM gateway",
	Long: `llmux is an OpenAI-compatible gateway that multiplexes chat-completion
traffic across upstream LLM providers.

Clients talk to one endpoint with one API key; llmux resolves model
aliases, picks a provider by the configured routing strategy, falls back
across providers on failure, and caches identical completions.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "llmux.yaml", "config file path")
}
