// Package pipeline turns raw simulation rows into the aggregate KPIs
// used by the report commands and sensitivity sweeps.
package pipeline

import (
	"math"
	"sort"

	"studiosim/internal/model"
)

type comboKey struct {
	scenario  string
	rent      float64
	ownerDraw float64
}

// Aggregate computes per-combo KPIs across all trials in a result set.
// Output is ordered by scenario, then rent, then owner draw.
func Aggregate(rows []model.ResultRow) []model.ComboKPI {
	byCombo := make(map[comboKey][]model.ResultRow)
	for _, r := range rows {
		k := comboKey{r.Scenario, r.Rent, r.OwnerDraw}
		byCombo[k] = append(byCombo[k], r)
	}

	keys := make([]comboKey, 0, len(byCombo))
	for k := range byCombo {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.scenario != b.scenario {
			return a.scenario < b.scenario
		}
		if a.rent != b.rent {
			return a.rent < b.rent
		}
		return a.ownerDraw < b.ownerDraw
	})

	out := make([]model.ComboKPI, 0, len(keys))
	for _, k := range keys {
		out = append(out, aggregateCombo(k, byCombo[k]))
	}
	return out
}

func aggregateCombo(k comboKey, rows []model.ResultRow) model.ComboKPI {
	byTrial := make(map[int][]model.ResultRow)
	for _, r := range rows {
		byTrial[r.Trial] = append(byTrial[r.Trial], r)
	}

	trials := make([]int, 0, len(byTrial))
	for t := range byTrial {
		trials = append(trials, t)
		sort.Slice(byTrial[t], func(i, j int) bool { return byTrial[t][i].Month < byTrial[t][j].Month })
	}
	sort.Ints(trials)

	var (
		insolventCount int
		survivedCount  int
		breakEvens     []float64
		finalCash      []float64
		minCash        []float64
		finalMembers   []float64
		dscrCash       []float64
	)
	var debtMonths, breach100, breachTarget, negAddMonths, totalMonths int

	for _, t := range trials {
		tr := byTrial[t]
		survived := true
		breakEven := math.NaN()
		low := math.Inf(1)
		for _, r := range tr {
			if r.CashBalance < 0 {
				survived = false
			}
			if r.CashBalance < low {
				low = r.CashBalance
			}
			if math.IsNaN(breakEven) && r.CumOperatingProfit >= 0 {
				breakEven = float64(r.Month)
			}
			if !math.IsNaN(r.DSCRCash) {
				debtMonths++
				dscrCash = append(dscrCash, r.DSCRCash)
				if r.DSCRCashBreach100 {
					breach100++
				}
				if r.DSCRCashBreachTarget {
					breachTarget++
				}
			}
			if r.NetAdds < 0 {
				negAddMonths++
			}
			totalMonths++
		}

		last := tr[len(tr)-1]
		if last.InsolventBeforeGrant {
			insolventCount++
		}
		if survived {
			survivedCount++
		}
		if math.IsNaN(breakEven) {
			breakEven = math.Inf(1)
		}
		breakEvens = append(breakEvens, breakEven)
		finalCash = append(finalCash, last.CashBalance)
		minCash = append(minCash, low)
		finalMembers = append(finalMembers, float64(last.ActiveMembers))
	}

	n := float64(len(trials))
	kpi := model.ComboKPI{
		Scenario:  k.scenario,
		Rent:      k.rent,
		OwnerDraw: k.ownerDraw,
		Trials:    len(trials),

		MedianBreakEvenMonth: finiteOrNaN(Quantile(breakEvens, 0.5)),
		MedianFinalCash:      Quantile(finalCash, 0.5),
		MedianMinCash:        Quantile(minCash, 0.5),
		MedianFinalMembers:   Quantile(finalMembers, 0.5),
		P10FinalMembers:      Quantile(finalMembers, 0.1),
		P90FinalMembers:      Quantile(finalMembers, 0.9),
		DSCRCashMedian:       Quantile(dscrCash, 0.5),
	}
	if n > 0 {
		kpi.PctInsolventBeforeGrant = float64(insolventCount) / n
		kpi.SurvivalPct = float64(survivedCount) / n
	}
	if debtMonths > 0 {
		kpi.DSCRBreach100Rate = float64(breach100) / float64(debtMonths)
		kpi.DSCRBreachTargetRate = float64(breachTarget) / float64(debtMonths)
	}
	if totalMonths > 0 {
		kpi.NegativeNetAddsRate = float64(negAddMonths) / float64(totalMonths)
	}
	return kpi
}

func finiteOrNaN(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Quantile returns the q-th quantile of vs using linear interpolation.
// NaN values are dropped first; an empty input returns NaN.
func Quantile(vs []float64, q float64) float64 {
	clean := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	if q <= 0 {
		return clean[0]
	}
	if q >= 1 {
		return clean[len(clean)-1]
	}
	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return clean[lo]
	}
	frac := pos - float64(lo)
	return clean[lo]*(1-frac) + clean[hi]*frac
}
