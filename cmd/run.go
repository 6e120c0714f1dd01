package cmd

import (
	"context"
	"fmt"
	"time"

	"studiosim/internal/cli"
	"studiosim/internal/pipeline"
	"studiosim/internal/sim"
	"studiosim/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagRunLabel string
	flagNoSave   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full scenario sweep and report KPIs",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagRunLabel, "label", "", "Label for the stored run")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Skip persisting results")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	combos := sim.Combos(&cfg)
	progressf("  Simulating %d combos x %d trials over %d months...\n",
		len(combos), cfg.Sim.Trials, cfg.Sim.Months)

	start := time.Now()
	rows, err := sim.Run(context.Background(), &cfg)
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}
	progressf("  Done in %s (%s rows)\n", time.Since(start).Round(time.Millisecond),
		cli.FormatNumber(int64(len(rows))))

	if !flagNoSave {
		s, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		label := flagRunLabel
		if label == "" {
			label = time.Now().Format("2006-01-02 15:04")
		}
		runID, err := s.SaveRun(label, cfg.Sim.Months, cfg.Sim.Trials, cfg.Sim.Seed, rows)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		progressf("  Saved as run %d (%q)\n", runID, label)
	}

	kpis := pipeline.Aggregate(rows)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STUDIO SWEEP  %d mo x %d trials", cfg.Sim.Months, cfg.Sim.Trials)))
	fmt.Println()
	fmt.Println(cli.RenderTable(kpiTable(kpis, cfg.Loans.DSCRCashTarget)))
	return nil
}
