package cmd

import (
	"fmt"
	"math"
	"sort"

	"studiosim/internal/capacity"
	"studiosim/internal/cli"

	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Report the studio's soft membership cap",
	Long:  "Computes the contention-adjusted member cap per station from configured hours, stations, and archetype usage.",
	RunE:  runCapacityCmd,
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}

func runCapacityCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	softCap, perStation := capacity.SoftCap(&cfg.Capacity, cfg.Archetypes)

	names := make([]string, 0, len(perStation))
	for name := range perStation {
		names = append(names, name)
	}
	sort.Strings(names)

	t := cli.Table{
		Title:   "Station caps",
		Headers: []string{"Station", "Member Cap"},
	}
	for _, name := range names {
		capVal := perStation[name]
		cell := "unbounded"
		if !math.IsInf(capVal, 1) {
			cell = fmt.Sprintf("%.0f", capVal)
		}
		t.Rows = append(t.Rows, []string{name, cell})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CAPACITY"))
	fmt.Println()
	fmt.Println(cli.RenderTable(t))

	binding := "none"
	if !math.IsInf(softCap, 1) {
		for _, name := range names {
			if perStation[name] == softCap {
				binding = name
				break
			}
		}
	}
	fmt.Println(cli.RenderKV([][2]string{
		{"Soft cap", fmt.Sprintf("%.0f members", softCap)},
		{"Binding station", binding},
		{"Open hours/week", fmt.Sprintf("%.0f", cfg.Capacity.OpenHoursPerWeek)},
	}))
	return nil
}
