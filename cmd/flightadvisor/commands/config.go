package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		view := map[string]any{
			"port": cfg.Port,
			"scraper": map[string]any{
				"api_key":       mask(cfg.ScraperAPIKey),
				"base_url":      cfg.ScraperBaseURL,
				"timeout":       cfg.ScraperTimeout.String(),
				"poll_interval": cfg.ExtractPollInterval.String(),
				"rps":           cfg.ScraperRPS,
				"burst":         cfg.ScraperBurst,
			},
			"llm": map[string]any{
				"api_key":        mask(cfg.LLMAPIKey),
				"base_url":       cfg.LLMBaseURL,
				"timeout":        cfg.LLMTimeout.String(),
				"rps":            cfg.LLMRPS,
				"burst":          cfg.LLMBurst,
				"model":          cfg.DefaultModel,
				"allowed_models": cfg.AllowedModels,
			},
			"search": map[string]any{
				"base_url": cfg.SearchBaseURL,
			},
			"log": map[string]any{
				"level":       cfg.LogLevel,
				"development": cfg.LogDevelopment,
			},
			"tracing": map[string]any{
				"enabled":      cfg.TracingEnabled,
				"endpoint":     cfg.OTLPEndpoint,
				"service_name": cfg.ServiceName,
			},
		}

		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	ConfigCmd.AddCommand(showConfigCmd)
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:3] + strings.Repeat("*", len(secret)-7) + secret[len(secret)-4:]
}
