package finance

import (
	"math"
	"testing"

	"studiosim/internal/config"
)

func terms(rate float64, years, io int, mode string) config.LoanTerms {
	return config.LoanTerms{AnnualRate: rate, TermYears: years, IOMonths: io, Mode: mode}
}

func TestMonthlyPaymentMatchesAnnuityFormula(t *testing.T) {
	got := MonthlyPayment(120_000, 0.06, 120)
	r := 0.06 / 12
	want := 120_000 * r * math.Pow(1+r, 120) / (math.Pow(1+r, 120) - 1)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("payment = %v, want %v", got, want)
	}
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	if got := MonthlyPayment(12_000, 0, 24); got != 500 {
		t.Fatalf("zero-rate payment = %v, want 500", got)
	}
}

func TestLoanFullyAmortizes(t *testing.T) {
	ln := NewLoan(terms(0.06, 10, 0, config.LoanModeUpfront), 120)
	ln.DrawUpfront(120_000)

	var paid float64
	for m := 0; m < 120; m++ {
		step := ln.Step(m)
		paid += step.Payment
		if step.Balance < 0 {
			t.Fatalf("month %d: balance went negative: %v", m, step.Balance)
		}
	}
	if bal := ln.Balance(); math.Abs(bal) > 1e-4 {
		t.Fatalf("balance after final payment = %v, want 0", bal)
	}
	if paid <= 120_000 {
		t.Fatalf("total paid %v should exceed principal (interest owed)", paid)
	}
}

func TestLoanInterestOnlyPhase(t *testing.T) {
	ln := NewLoan(terms(0.08, 5, 6, config.LoanModeUpfront), 60)
	ln.DrawUpfront(50_000)

	ioPay := 50_000 * 0.08 / 12
	for m := 0; m < 6; m++ {
		step := ln.Step(m)
		if math.Abs(step.Payment-ioPay) > 1e-9 {
			t.Fatalf("month %d: payment = %v, want IO payment %v", m, step.Payment, ioPay)
		}
		if step.Principal != 0 {
			t.Fatalf("month %d: principal retired %v during IO phase", m, step.Principal)
		}
		if math.Abs(step.Balance-50_000) > 1e-9 {
			t.Fatalf("month %d: balance %v changed during IO phase", m, step.Balance)
		}
	}
	// Amortization starts month 6 over the remaining 54 months.
	step := ln.Step(6)
	wantPay := MonthlyPayment(50_000, 0.08, 54)
	if math.Abs(step.Payment-wantPay) > 1e-9 {
		t.Fatalf("first amortizing payment = %v, want %v", step.Payment, wantPay)
	}
	if step.Principal <= 0 {
		t.Fatalf("no principal retired once amortization starts")
	}
}

func TestLoanBalanceMonotoneAfterIO(t *testing.T) {
	ln := NewLoan(terms(0.07, 5, 3, config.LoanModeUpfront), 60)
	ln.DrawUpfront(80_000)
	prev := ln.Balance()
	for m := 0; m < 60; m++ {
		step := ln.Step(m)
		if step.Balance > prev+1e-9 {
			t.Fatalf("month %d: balance rose %v -> %v without a draw", m, prev, step.Balance)
		}
		prev = step.Balance
	}
}

func TestStagedTranchePaymentsStartNextMonth(t *testing.T) {
	ln := NewLoan(terms(0.07, 5, 0, config.LoanModeStaged), 60)
	ln.DrawStaged(10, 20_000)

	if got := ln.Payment(10); got != 0 {
		t.Fatalf("payment in draw month = %v, want 0", got)
	}
	want := MonthlyPayment(20_000, 0.07, 60)
	if got := ln.Payment(11); math.Abs(got-want) > 1e-9 {
		t.Fatalf("payment month after draw = %v, want %v", got, want)
	}
	if got := ln.Balance(); got != 20_000 {
		t.Fatalf("balance after draw = %v, want 20000", got)
	}
}

func TestLoanZeroPrincipalIsInert(t *testing.T) {
	ln := NewLoan(terms(0.07, 5, 0, config.LoanModeUpfront), 24)
	ln.DrawUpfront(0)
	ln.DrawUpfront(-500)
	for m := 0; m < 24; m++ {
		step := ln.Step(m)
		if step.Payment != 0 || step.Balance != 0 {
			t.Fatalf("month %d: inert loan produced payment %v balance %v", m, step.Payment, step.Balance)
		}
	}
}

func TestPaymentScheduleZerosPastMaturity(t *testing.T) {
	sched := PaymentSchedule(10_000, 0.05, 1, 0, 24)
	for m := 12; m < 24; m++ {
		if sched[m] != 0 {
			t.Fatalf("month %d: payment %v past maturity", m, sched[m])
		}
	}
	for m := 0; m < 12; m++ {
		if sched[m] <= 0 {
			t.Fatalf("month %d: no payment within term", m)
		}
	}
}

func TestTrancheDrawsPassThroughWithoutFloor(t *testing.T) {
	eligible := []float64{0, 5000, 0, 12_000}
	draws := TrancheDraws(eligible, config.StagedRule{DrawPct: 1, MaxTranche: 10_000})
	want := []float64{0, 5000, 0, 10_000}
	for i := range want {
		if draws[i] != want[i] {
			t.Fatalf("draws[%d] = %v, want %v", i, draws[i], want[i])
		}
	}
}

func TestTrancheDrawsAccumulateToFloor(t *testing.T) {
	eligible := []float64{2000, 2000, 2000, 0}
	draws := TrancheDraws(eligible, config.StagedRule{MinTranche: 5000})
	if draws[0] != 0 || draws[1] != 0 {
		t.Fatalf("drew before reaching floor: %v", draws)
	}
	if draws[2] != 6000 {
		t.Fatalf("draws[2] = %v, want 6000", draws[2])
	}
	// Residual below the floor lands in the final month.
	eligible = []float64{2000, 0, 0, 1000}
	draws = TrancheDraws(eligible, config.StagedRule{MinTranche: 5000})
	if draws[3] != 3000 {
		t.Fatalf("tail residual = %v, want 3000", draws[3])
	}
}

func TestFacilityTopsUpToReserveFloor(t *testing.T) {
	f := NewFacility(config.FacilityRule{
		FacilityLimit: 10_000,
		MinDraw:       1000,
		MaxDraw:       4000,
		ReserveFloor:  5000,
	})

	if got := f.DrawFor(6000); got != 0 {
		t.Fatalf("drew %v with cash above floor", got)
	}
	// Shortfall of 4500 exceeds max draw.
	if got := f.DrawFor(500); got != 4000 {
		t.Fatalf("capped draw = %v, want 4000", got)
	}
	// Shortfall of 200 is below the minimum draw.
	if got := f.DrawFor(4800); got != 1000 {
		t.Fatalf("min draw = %v, want 1000", got)
	}
	// Only 5000 of commitment remains.
	if got := f.DrawFor(0); got != 4000 {
		t.Fatalf("draw = %v, want 4000", got)
	}
	if got := f.DrawFor(0); got != 1000 {
		t.Fatalf("final commitment draw = %v, want 1000", got)
	}
	if got := f.DrawFor(0); got != 0 {
		t.Fatalf("exhausted facility still drew %v", got)
	}
}

func TestSizeLoansSplitsCapexAndRunway(t *testing.T) {
	cfg := config.Default()
	m0 := 0
	cfg.Capex = []config.CapexItem{
		{Enabled: true, Label: "kiln", Count: 1, UnitCost: 10_000, Month: &m0},
	}
	cfg.Loans.ExtraBuffer = 5000
	cfg.Loans.Primary.FinanceFees = false
	cfg.Loans.Working.FinanceFees = false

	s := SizeLoans(&cfg, 3000, 2000)

	wantPrimary := 10_000 * 1.08
	if math.Abs(s.PrimaryPrincipal-wantPrimary) > 1e-9 {
		t.Fatalf("primary principal = %v, want %v", s.PrimaryPrincipal, wantPrimary)
	}
	avgHeat := (cfg.Costs.HeatingWinter + cfg.Costs.HeatingSummer) / 2
	wantRunway := (cfg.Costs.Insurance + cfg.Costs.GlazePerMonth + avgHeat + 3000 + 2000) * 12
	if math.Abs(s.RunwayCosts-wantRunway) > 1e-6 {
		t.Fatalf("runway = %v, want %v", s.RunwayCosts, wantRunway)
	}
	if math.Abs(s.WorkingPrincipal-(wantRunway+5000)) > 1e-6 {
		t.Fatalf("working principal = %v, want %v", s.WorkingPrincipal, wantRunway+5000)
	}
	// Unfinanced fees come out of cash at month 0.
	wantFees := 0.02*wantPrimary + 0.03*(wantRunway+5000) + 2500 + 1500
	if math.Abs(s.FeesCashOutflow-wantFees) > 1e-6 {
		t.Fatalf("cash fees = %v, want %v", s.FeesCashOutflow, wantFees)
	}
}

func TestSizeLoansFinancedFeesInflatePrincipal(t *testing.T) {
	cfg := config.Default()
	cfg.Capex = nil
	cfg.Loans.ExtraBuffer = 0

	s := SizeLoans(&cfg, 2500, 0)
	if s.PrimaryPrincipal != 0 {
		t.Fatalf("no capex should size primary at 0, got %v", s.PrimaryPrincipal)
	}
	if s.FeesCashOutflow != 0 {
		t.Fatalf("financed fees should not hit cash, got %v", s.FeesCashOutflow)
	}
	wantWorking := s.RunwayCosts + s.WorkingFees
	if math.Abs(s.WorkingPrincipal-wantWorking) > 1e-6 {
		t.Fatalf("working principal = %v, want runway+fees %v", s.WorkingPrincipal, wantWorking)
	}
}

func TestSizeLoansOverrideWins(t *testing.T) {
	cfg := config.Default()
	ov := 99_000.0
	cfg.Loans.Working.PrincipalOverride = &ov
	s := SizeLoans(&cfg, 2500, 1000)
	if s.WorkingPrincipal != 99_000 {
		t.Fatalf("override ignored: %v", s.WorkingPrincipal)
	}
}
