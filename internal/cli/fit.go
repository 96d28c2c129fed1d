package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/config"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/pipeline"
)

var (
	fitInput string
	fitModel string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Calibrate zone thresholds from a healthy-baseline period",
	Long: `Fit learns the green/yellow/orange zone cut points from the score
distribution of a trusted baseline and writes the fitted model artifact.
The baseline must be a known-healthy period kept separate from the data
that will later be scored.`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&fitInput, "input", "", "baseline readings file (csv or json)")
	fitCmd.Flags().StringVar(&fitModel, "model", "model.json", "output path for the fitted model artifact")
	fitCmd.MarkFlagRequired("input")
}

func runFit(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := config.DefaultConfig()
	if cfgFile != "" {
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
	}

	readings, err := readRecords(fitInput)
	if err != nil {
		return err
	}

	pipe, err := pipeline.New(logger, cfg)
	if err != nil {
		return err
	}
	if err := pipe.Fit(cmd.Context(), readings); err != nil {
		return err
	}
	if err := pipe.Save(fitModel); err != nil {
		return err
	}

	thresholds, _ := pipe.Thresholds()
	fmt.Fprintf(cmd.OutOrStdout(),
		"fitted on %d readings: green_max=%.4f yellow_max=%.4f orange_max=%.4f -> %s\n",
		len(readings), thresholds.GreenMax, thresholds.YellowMax, thresholds.OrangeMax, fitModel)
	return nil
}
