package cmd

import (
	"fmt"
	"strconv"

	"studiosim/internal/cli"
	"studiosim/internal/config"
	"studiosim/internal/finance"

	"github.com/spf13/cobra"
)

var (
	flagLoanRent  float64
	flagLoanDraw  float64
	flagLoanEvery int
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Preview loan sizing and payment schedules",
	Long:  "Shows the sized financing package and amortization for one rent and owner-draw combination, before any simulation.",
	RunE:  runLoanCmd,
}

func init() {
	loanCmd.Flags().Float64Var(&flagLoanRent, "rent", 0, "Monthly rent (0 = first configured scenario)")
	loanCmd.Flags().Float64Var(&flagLoanDraw, "draw", 0, "Monthly owner draw (0 = first configured scenario)")
	loanCmd.Flags().IntVar(&flagLoanEvery, "every", 12, "Schedule row interval in months")
	rootCmd.AddCommand(loanCmd)
}

func runLoanCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rent := flagLoanRent
	if rent == 0 && len(cfg.RentScenarios) > 0 {
		rent = cfg.RentScenarios[0]
	}
	draw := flagLoanDraw
	if draw == 0 && len(cfg.OwnerDrawScenarios) > 0 {
		draw = cfg.OwnerDrawScenarios[0]
	}

	sizing := finance.SizeLoans(&cfg, rent, draw)

	fmt.Println()
	fmt.Println(cli.RenderTitle("FINANCING PACKAGE"))
	fmt.Println()
	fmt.Println(cli.RenderKV([][2]string{
		{"Rent / Owner draw", cli.FormatMoney(rent) + " / " + cli.FormatMoney(draw)},
		{"Planned capex", cli.FormatMoney(sizing.CapexTotal)},
		{"Runway costs", cli.FormatMoney(sizing.RunwayCosts)},
		{"Primary principal", cli.FormatMoney(sizing.PrimaryPrincipal)},
		{"Working principal", cli.FormatMoney(sizing.WorkingPrincipal)},
		{"Fees financed", cli.FormatMoney(sizing.FeesFinancedPrimary + sizing.FeesFinancedWorking)},
		{"Fees due at closing", cli.FormatMoney(sizing.FeesCashOutflow)},
	}))

	fmt.Println(cli.RenderTable(scheduleTable("Primary loan", sizing.PrimaryPrincipal, cfg.Loans.Primary, cfg.Sim.Months)))
	fmt.Println(cli.RenderTable(scheduleTable("Working-capital loan", sizing.WorkingPrincipal, cfg.Loans.Working, cfg.Sim.Months)))
	return nil
}

func scheduleTable(title string, principal float64, terms config.LoanTerms, months int) cli.Table {
	t := cli.Table{
		Title:   title,
		Headers: []string{"Month", "Payment", "Interest", "Principal", "Balance"},
	}
	if principal <= 0 {
		return t
	}

	loan := finance.NewLoan(terms, months)
	loan.DrawUpfront(principal)

	every := flagLoanEvery
	if every < 1 {
		every = 1
	}
	for m := 0; m < months; m++ {
		step := loan.Step(m)
		if m%every != 0 && m != months-1 {
			continue
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(m + 1),
			cli.FormatMoney(step.Payment),
			cli.FormatMoney(step.Interest),
			cli.FormatMoney(step.Principal),
			cli.FormatMoney(step.Balance),
		})
	}
	return t
}
