package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/pipeline"
)

var (
	scoreInput  string
	scoreModel  string
	scoreOutput string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score readings against a fitted model",
	Long: `Score augments each reading with its health-risk score, risk zone,
and projected hours until the score trend crosses the critical threshold,
using the thresholds learned by a previous fit.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "readings file (csv or json)")
	scoreCmd.Flags().StringVar(&scoreModel, "model", "model.json", "fitted model artifact")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "scored.json", "output path for scored records")
	scoreCmd.MarkFlagRequired("input")
}

func runScore(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pipe, err := pipeline.Load(scoreModel, logger)
	if err != nil {
		return err
	}

	readings, err := readRecords(scoreInput)
	if err != nil {
		return err
	}

	scored, err := pipe.Score(cmd.Context(), readings)
	if err != nil {
		return err
	}
	if err := writeScored(scoreOutput, scored); err != nil {
		return err
	}

	counts := make(map[domain.Zone]int)
	for _, sr := range scored {
		counts[sr.Zone]++
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"scored %d readings: green=%d yellow=%d orange=%d red=%d pending=%d -> %s\n",
		len(scored), counts[domain.ZoneGreen], counts[domain.ZoneYellow],
		counts[domain.ZoneOrange], counts[domain.ZoneRed], counts[domain.ZonePending], scoreOutput)
	return nil
}
