package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/autocomplete/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "autocomplete",
	Short: "search-and-select widget for the terminal",
	Long: `autocomplete - search-and-select widget for the terminal
  - type to filter a catalog, ↑↓ to highlight, enter to choose
  - single or multiple selection, mouse aware`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configFile overrides the default config location when set.
var configFile string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/autocomplete/config.yaml)")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFromFile(configFile)
	}
	return config.Load()
}

func configPath(paths *config.Paths) string {
	if configFile != "" {
		return configFile
	}
	return paths.ConfigFile()
}
