// ABOUTME: Main entry point for the Diagnostic Report API
// ABOUTME: Cobra root command with the HTTP server and offline decode/render/resolve tools

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diagnostic-report-api/pkg/config"
)

var (
	version    = "1.0.0"
	configPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "diagnostic-report-api",
		Short:        "Diagnostic report API",
		Long:         "Serves rendered diagnostic reports and their images, and decodes assistant chat messages.",
		Version:      version,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file with asset root overrides (default: $CONFIG_FILE)")

	root.AddCommand(serveCmd())
	root.AddCommand(decodeCmd())
	root.AddCommand(renderCmd())
	root.AddCommand(resolveCmd())

	return root
}

// loadConfig reads the environment, applies --config and validates the result
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
