package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blueberrycongee/llmux/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the gateway.

On success, prints a summary of the configured providers, models, and
aliases. On failure, prints every validation error with its field path.

Examples:
  # Validate the default config
  llmux validate

  # Validate a specific file
  llmux validate --config /etc/llmux/llmux.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration %s is valid.\n\n", cfgFile)
	fmt.Printf("Server:   %s\n", cfg.Server.Addr())
	fmt.Printf("Strategy: %s\n", cfg.Routing.DefaultStrategy)
	if cfg.Cache.Enabled {
		fmt.Printf("Cache:    %s\n", cfg.Cache.Backend)
	} else {
		fmt.Printf("Cache:    disabled\n")
	}

	fmt.Printf("\nProviders (%d):\n", len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		pc, ok := cfg.Providers[name]
		if !ok {
			continue
		}
		state := "enabled"
		if !pc.IsEnabled() {
			state = "disabled"
		}
		fmt.Printf("  %-12s %s  models: %s\n", name, state, strings.Join(pc.Models, ", "))
	}

	if len(cfg.Routing.ModelAliases) > 0 {
		aliases := make([]string, 0, len(cfg.Routing.ModelAliases))
		for alias := range cfg.Routing.ModelAliases {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)

		fmt.Printf("\nModel aliases (%d):\n", len(aliases))
		for _, alias := range aliases {
			targets := cfg.Routing.ModelAliases[alias]
			providers := make([]string, 0, len(targets))
			for provider := range targets {
				providers = append(providers, provider)
			}
			sort.Strings(providers)
			fmt.Printf("  %-24s -> %s\n", alias, strings.Join(providers, ", "))
		}
	}

	return nil
}
