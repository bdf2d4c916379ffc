package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dharmasatrya/flightadvisor/cmd/flightadvisor/commands"
	"github.com/dharmasatrya/flightadvisor/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flightadvisor",
	Short: "Find flights and get AI recommendations",
	Long: `flightadvisor scrapes a flight search page for the requested route and
asks a language model to compare the results by price, travel time and
layovers.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.ConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flightadvisor.yaml)")
	rootCmd.PersistentFlags().String("firecrawl-key", "", "Firecrawl API key (overrides FIRECRAWL_API_KEY)")
	rootCmd.PersistentFlags().String("openai-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default warn)")

	v := commands.Viper()
	config.SetDefaults(v)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", true)
	v.BindPFlag("scraper.api_key", rootCmd.PersistentFlags().Lookup("firecrawl-key"))
	v.BindPFlag("llm.api_key", rootCmd.PersistentFlags().Lookup("openai-key"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	v := commands.Viper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		v.AddConfigPath(home)
		v.SetConfigName(".flightadvisor")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
	}
}
