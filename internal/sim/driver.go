package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"studiosim/internal/config"
	"studiosim/internal/model"
)

// Combos expands the configuration into the full Cartesian sweep of
// rent levels, owner-draw levels, and grant scenarios, in deterministic
// order.
func Combos(cfg *config.Config) []Combo {
	out := make([]Combo, 0, len(cfg.RentScenarios)*len(cfg.OwnerDrawScenarios)*len(cfg.Scenarios))
	for _, rent := range cfg.RentScenarios {
		for _, draw := range cfg.OwnerDrawScenarios {
			for i, scen := range cfg.Scenarios {
				out = append(out, Combo{
					Rent:          rent,
					OwnerDraw:     draw,
					ScenarioIndex: i,
					Scenario:      scen,
				})
			}
		}
	}
	return out
}

// Run executes the full sweep, fanning trials across a bounded worker
// pool. Row order is deterministic: combos in Combos order, trials in
// index order, months ascending; goroutine scheduling cannot reorder
// the output because every trial writes its own preallocated slot.
func Run(ctx context.Context, cfg *config.Config) ([]model.ResultRow, error) {
	combos := Combos(cfg)
	trials := cfg.Sim.Trials

	slots := make([][]model.ResultRow, len(combos)*trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for ci, combo := range combos {
		for t := 0; t < trials; t++ {
			ci, combo, t := ci, combo, t
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("trial %d of %s/rent %.0f/draw %.0f: %w",
						t, combo.Scenario.Name, combo.Rent, combo.OwnerDraw, err)
				}
				slots[ci*trials+t] = RunTrial(cfg, combo, t)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]model.ResultRow, 0, len(slots)*cfg.Sim.Months)
	for _, slot := range slots {
		rows = append(rows, slot...)
	}
	return rows, nil
}
