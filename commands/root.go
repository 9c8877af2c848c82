// Package commands implements the CLI commands for the inspection scraper.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "inspections",
	Short: "Extract King County restaurant inspection scores",
	Long: `Extracts restaurant records and inspection scores from the King County
food safety results page, keyed by business name.

Examples:
  # Parse the cached page from the last fetch
  inspections scrape

  # Fetch a fresh page for another zip code, keep the first 20 listings
  inspections scrape --mode fetch --zip 98104 --limit 20

  # Export geocoded features and store records in SQLite
  inspections scrape --geojson out/inspections.geojson --store sqlite`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default ./.inspections.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".inspections")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("INSPECTIONS")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the CLI and exits non-zero on failure.
func Main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
