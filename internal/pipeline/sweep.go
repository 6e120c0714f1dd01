package pipeline

import (
	"context"
	"fmt"

	"studiosim/internal/config"
	"studiosim/internal/model"
	"studiosim/internal/sim"
)

// Sweep runs the full simulation once per working-capital buffer level
// and reports how survival and cash cushion respond. KPIs are pooled
// across all combos at each buffer level.
func Sweep(ctx context.Context, cfg *config.Config, buffers []float64) ([]model.SweepPoint, error) {
	out := make([]model.SweepPoint, 0, len(buffers))
	for _, buf := range buffers {
		variant := *cfg
		variant.Loans.ExtraBuffer = buf

		rows, err := sim.Run(ctx, &variant)
		if err != nil {
			return nil, fmt.Errorf("sweep at buffer %.0f: %w", buf, err)
		}

		kpis := Aggregate(rows)
		var survival, minCash float64
		var mins []float64
		for _, k := range kpis {
			survival += k.SurvivalPct
			mins = append(mins, k.MedianMinCash)
		}
		if len(kpis) > 0 {
			survival /= float64(len(kpis))
			minCash = Quantile(mins, 0.5)
		}
		out = append(out, model.SweepPoint{
			ExtraBuffer:   buf,
			SurvivalPct:   survival,
			MedianMinCash: minCash,
		})
	}
	return out, nil
}
