package cmd

import (
	"context"
	"fmt"

	"studiosim/internal/cli"
	"studiosim/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagBuffers []float64

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sensitivity sweep over working-capital buffer levels",
	Long:  "Re-runs the full simulation at each extra-buffer level and reports how survival and the cash floor respond.",
	RunE:  runSweepCmd,
}

func init() {
	sweepCmd.Flags().Float64SliceVar(&flagBuffers, "buffers", []float64{0, 10000, 25000, 50000}, "Extra working-capital buffer levels")
	rootCmd.AddCommand(sweepCmd)
}

func runSweepCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	progressf("  Sweeping %d buffer levels...\n", len(flagBuffers))
	points, err := pipeline.Sweep(context.Background(), &cfg, flagBuffers)
	if err != nil {
		return err
	}

	t := cli.Table{
		Title:   "Buffer sensitivity",
		Headers: []string{"Extra Buffer", "Survival", "Median Min Cash"},
	}
	var minCash []float64
	for _, p := range points {
		t.Rows = append(t.Rows, []string{
			cli.FormatMoney(p.ExtraBuffer),
			cli.StyleSurvival(p.SurvivalPct),
			cli.StyleMoney(p.MedianMinCash),
		})
		minCash = append(minCash, p.MedianMinCash)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUFFER SWEEP"))
	fmt.Println()
	fmt.Println(cli.RenderTable(t))
	fmt.Println("  cash floor  " + cli.RenderSparkline(minCash))
	return nil
}
