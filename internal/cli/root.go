package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "livewire",
	Short: "Health-risk scoring for instrumented physical assets",
	Long: `Livewire turns periodic multi-channel sensor readings (vibration,
temperature, strain) into a per-asset health-risk score, an ordinal risk
zone, and an estimated time remaining until critical failure.

Fit the pipeline once on a trusted healthy-baseline period, then score
production readings against the learned thresholds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "pipeline config file (yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(scoreCmd)
}

func initConfig() {
	viper.SetEnvPrefix("LIVEWIRE")
	viper.AutomaticEnv()
}

// newLogger builds the CLI logger; verbose switches to development output.
func newLogger() (*zap.Logger, error) {
	if verbose || viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
