package finance

import "studiosim/internal/config"

// Sizing is the month-0 financing package for one scenario combination:
// the equipment loan sized off planned capex plus contingency, and the
// working-capital loan sized off runway burn plus any extra buffer.
// Origination fees are either rolled into the principals or flagged for
// a month-0 cash outflow.
type Sizing struct {
	PrimaryPrincipal float64
	WorkingPrincipal float64

	PrimaryFees float64
	WorkingFees float64

	FeesFinancedPrimary float64
	FeesFinancedWorking float64
	FeesCashOutflow     float64

	RunwayCosts float64
	CapexTotal  float64
}

// SizeLoans computes loan principals for a rent/owner-draw combination.
// Percentage fees accrue per instrument; the flat packaging and closing
// fees attach to the working-capital loan. Explicit principal overrides
// replace the sized amounts, fees included.
func SizeLoans(cfg *config.Config, rent, ownerDraw float64) Sizing {
	avgHeat := (cfg.Costs.HeatingWinter + cfg.Costs.HeatingSummer) / 2
	runway := (cfg.Costs.Insurance + cfg.Costs.GlazePerMonth + avgHeat + rent + ownerDraw) *
		float64(cfg.Loans.RunwayMonths)

	capexTotal := config.PlannedCapexTotal(cfg.Capex)

	s := Sizing{
		PrimaryPrincipal: capexTotal * (1 + cfg.Loans.ContingencyPct),
		WorkingPrincipal: runway + cfg.Loans.ExtraBuffer,
		RunwayCosts:      runway,
		CapexTotal:       capexTotal,
	}

	s.PrimaryFees = cfg.Loans.Primary.FeePct * s.PrimaryPrincipal
	s.WorkingFees = cfg.Loans.Working.FeePct*s.WorkingPrincipal +
		cfg.Loans.PackagingFee + cfg.Loans.ClosingFee

	if cfg.Loans.Primary.FinanceFees {
		s.PrimaryPrincipal += s.PrimaryFees
		s.FeesFinancedPrimary = s.PrimaryFees
	} else {
		s.FeesCashOutflow += s.PrimaryFees
	}
	if cfg.Loans.Working.FinanceFees {
		s.WorkingPrincipal += s.WorkingFees
		s.FeesFinancedWorking = s.WorkingFees
	} else {
		s.FeesCashOutflow += s.WorkingFees
	}

	if ov := cfg.Loans.Primary.PrincipalOverride; ov != nil {
		s.PrimaryPrincipal = *ov
	}
	if ov := cfg.Loans.Working.PrincipalOverride; ov != nil {
		s.WorkingPrincipal = *ov
	}
	return s
}
