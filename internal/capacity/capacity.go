// Package capacity computes the studio's sustainable membership level
// from station supply and archetype usage, plus the crowding signals the
// join and churn models consume.
package capacity

import (
	"math"

	"studiosim/internal/config"
)

// SoftCap returns the binding membership soft cap and the per-station
// caps it was taken from. Each station supports
// alpha*capacity*openHours / (kappa * weekly demand per average member)
// members; the studio-wide cap is the minimum across stations. A station
// with no modeled demand imposes no constraint.
func SoftCap(cc *config.CapacityConfig, archetypes map[string]config.Archetype) (float64, map[string]float64) {
	perStation := make(map[string]float64, len(cc.Stations))
	softCap := math.Inf(1)

	for name, st := range cc.Stations {
		var demand float64
		for arch, a := range archetypes {
			demand += a.Prob * cc.SessionsPerWeek[arch] * cc.SessionHours[arch] * cc.UsageShare[arch][name]
		}
		cap := math.Inf(1)
		if st.Kappa*demand > 0 {
			cap = (st.Alpha * st.Capacity * cc.OpenHoursPerWeek) / (st.Kappa * demand)
		}
		perStation[name] = cap
		if cap < softCap {
			softCap = cap
		}
	}
	return softCap, perStation
}

// Damping returns the join damping factor in [0, 1]: full strength when
// the studio is empty, zero at or beyond the soft cap for large beta.
func Damping(active int, softCap, beta float64) float64 {
	ratio := float64(active) / math.Max(1, softCap)
	d := 1 - math.Pow(ratio, beta)
	if d < 0 {
		return 0
	}
	return d
}

// OverUtilization returns how far membership sits beyond the soft cap,
// as a fraction of the cap. Zero when at or under capacity.
func OverUtilization(active int, softCap float64) float64 {
	over := float64(active)/math.Max(1, softCap) - 1
	if over < 0 {
		return 0
	}
	return over
}
