package cmd

import (
	"fmt"
	"strconv"

	"studiosim/internal/cli"
	"studiosim/internal/model"
	"studiosim/internal/pipeline"
	"studiosim/internal/store"

	"github.com/spf13/cobra"
)

var flagRunID int64

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report KPIs from a stored run",
	Long:  "Re-aggregates a previously saved sweep. Defaults to the newest run.",
	RunE:  runSummaryCmd,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE:  runRunsCmd,
}

func init() {
	summaryCmd.Flags().Int64Var(&flagRunID, "run", 0, "Run id (0 = newest)")
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(runsCmd)
}

func runSummaryCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	runID := flagRunID
	var label string
	if runID == 0 {
		runs, err := s.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("\n  No stored runs. Use `studiosim run` first.")
			return nil
		}
		runID = runs[0].RunID
		label = runs[0].Label
	}

	rows, err := s.LoadRun(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("run %d has no rows", runID)
	}

	kpis := pipeline.Aggregate(rows)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RUN %d  %s", runID, label)))
	fmt.Println()
	fmt.Println(cli.RenderTable(kpiTable(kpis, cfg.Loans.DSCRCashTarget)))
	return nil
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	s, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	runs, err := s.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\n  No stored runs.")
		return nil
	}

	t := cli.Table{
		Title:   "Stored Runs",
		Headers: []string{"ID", "Label", "Created", "Months", "Trials", "Rows"},
	}
	for _, r := range runs {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.RunID, 10),
			r.Label,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Months),
			strconv.Itoa(r.Trials),
			cli.FormatNumber(int64(r.RowCount)),
		})
	}
	fmt.Println()
	fmt.Println(cli.RenderTable(t))
	return nil
}

// kpiTable builds the per-combo KPI table shared by run and summary.
func kpiTable(kpis []model.ComboKPI, dscrTarget float64) cli.Table {
	t := cli.Table{
		Title: "Per-combo KPIs",
		Headers: []string{
			"Scenario", "Rent", "Draw", "Survival", "Insolv<Grant",
			"BreakEven", "Final Cash", "Min Cash", "Members", "DSCR",
		},
	}
	for _, k := range kpis {
		t.Rows = append(t.Rows, []string{
			k.Scenario,
			cli.FormatMoney(k.Rent),
			cli.FormatMoney(k.OwnerDraw),
			cli.StyleSurvival(k.SurvivalPct),
			cli.FormatPercent(k.PctInsolventBeforeGrant),
			cli.FormatMonths(k.MedianBreakEvenMonth),
			cli.StyleMoney(k.MedianFinalCash),
			cli.StyleMoney(k.MedianMinCash),
			fmt.Sprintf("%s (%s-%s)",
				cli.FormatCount(k.MedianFinalMembers),
				cli.FormatCount(k.P10FinalMembers),
				cli.FormatCount(k.P90FinalMembers)),
			cli.StyleDSCR(k.DSCRCashMedian, dscrTarget),
		})
	}
	return t
}
