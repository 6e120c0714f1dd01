package sim

import (
	"math"

	"studiosim/internal/config"
)

// winterMonths is the heating season: November through April.
func isWinter(month int) bool {
	switch month % 12 {
	case 10, 11, 0, 1, 2, 3:
		return true
	}
	return false
}

// seasonalChurnMult returns the churn multiplier for the calendar month:
// summer travel, post-holiday dropout, and year-end expirations all
// elevate departures.
func seasonalChurnMult(month int) float64 {
	switch month%12 + 1 {
	case 6, 7, 8:
		return 1.25
	case 1, 2:
		return 1.15
	case 11, 12:
		return 1.10
	}
	return 1.0
}

// awarenessMult ramps marketing awareness linearly from the start to the
// end multiplier over the configured ramp.
func awarenessMult(m *config.MarketConfig, month int) float64 {
	if m.AwarenessRampMonths <= 0 {
		return m.AwarenessEndMult
	}
	t := math.Min(1, float64(month)/float64(m.AwarenessRampMonths))
	return m.AwarenessStartMult + t*(m.AwarenessEndMult-m.AwarenessStartMult)
}

// womMult is a Bass-style imitation term rising with membership level.
func womMult(m *config.MarketConfig, members int) float64 {
	if m.WOMSaturation <= 0 {
		return 1.0
	}
	return 1.0 + m.WOMQ*float64(members)/m.WOMSaturation
}

// priceMult converts a price relative to reference into an intent or
// churn multiplier via constant elasticity, clamped to sane bounds.
func priceMult(price, reference, elasticity float64) float64 {
	if reference <= 0 {
		return 1.0
	}
	m := math.Pow(math.Max(price, 1e-9)/reference, elasticity)
	if m < 0.25 {
		return 0.25
	}
	if m > 4.0 {
		return 4.0
	}
	return m
}

// churnProbability composes the per-member departure probability from
// the tenure-tiered base and the month's multipliers, clipped to
// [0, 0.99] so departure is never certain and never negative.
func churnProbability(base, downturnMult, priceMult, uplift, utilOver, seasonalMult float64) float64 {
	p := base * downturnMult * priceMult * (1 + uplift*utilOver) * seasonalMult
	return math.Min(0.99, math.Max(0, p))
}

// hazardToProb converts a monthly hazard rate into a probability.
func hazardToProb(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return 1 - math.Exp(-lambda)
}

// isClassMonth reports whether classes run this month under the
// configured calendar.
func isClassMonth(c *config.ClassConfig, month int) bool {
	if !c.Enabled || month < c.StartMonth {
		return false
	}
	if c.CalendarMode == "monthly" {
		return true
	}
	m := month % 12
	for _, start := range c.SemesterStartMonths {
		if d := m - start; d >= 0 && d < c.SemesterLength {
			return true
		}
	}
	return false
}

// inOwnerDrawWindow reports whether the owner draw is payable this
// month. Start and end are 1-based inclusive; end 0 leaves the window
// open-ended.
func inOwnerDrawWindow(c *config.OwnerDrawConfig, month int) bool {
	m := month + 1
	if m < c.StartMonth {
		return false
	}
	return c.EndMonth == 0 || m <= c.EndMonth
}

// firingsThisMonth scales the firing count with membership when dynamic
// firings are on, clamped to the configured band.
func firingsThisMonth(cc *config.CostConfig, members int) int {
	if !cc.DynamicFirings {
		return cc.BaseFiringsPerMonth
	}
	ref := cc.ReferenceMembers
	if ref < 1 {
		ref = 1
	}
	raw := float64(cc.BaseFiringsPerMonth) * float64(members) / float64(ref)
	n := int(math.Round(raw))
	if n < cc.MinFiringsPerMonth {
		n = cc.MinFiringsPerMonth
	}
	if n > cc.MaxFiringsPerMonth {
		n = cc.MaxFiringsPerMonth
	}
	return n
}

// firingFee charges clay poundage through the progressive tier schedule.
// A tier with UpToLbs == 0 is open-ended; if the schedule closes without
// one, the final tier's rate covers the excess.
func firingFee(tiers []config.FiringTier, lbs float64) float64 {
	if len(tiers) == 0 || lbs <= 0 {
		return 0
	}
	var total float64
	remaining := lbs
	prevCut := 0.0
	for _, tier := range tiers {
		upper := math.Inf(1)
		if tier.UpToLbs > 0 {
			upper = tier.UpToLbs
		}
		band := math.Min(remaining, upper-prevCut)
		if band > 0 {
			total += band * tier.Rate
			remaining -= band
		}
		prevCut = upper
		if remaining <= 1e-9 {
			break
		}
	}
	if remaining > 1e-9 {
		total += remaining * tiers[len(tiers)-1].Rate
	}
	return total
}
