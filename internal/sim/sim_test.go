package sim

import (
	"context"
	"math"
	"reflect"
	"testing"

	"studiosim/internal/config"
)

// smallConfig keeps trial counts low so the stochastic tests stay fast.
func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Sim.Months = 12
	cfg.Sim.Trials = 3
	cfg.RentScenarios = []float64{3000}
	cfg.OwnerDrawScenarios = []float64{1000}
	cfg.Scenarios = []config.Scenario{{Name: "Base"}}
	return cfg
}

func baseCombo(cfg *config.Config) Combo {
	return Combo{
		Rent:          cfg.RentScenarios[0],
		OwnerDraw:     cfg.OwnerDrawScenarios[0],
		ScenarioIndex: 0,
		Scenario:      cfg.Scenarios[0],
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := smallConfig()

	first, err := Run(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := Run(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		// NaN != NaN, so compare the DSCR fields separately.
		if !sameFloat(a.DSCROperating, b.DSCROperating) || !sameFloat(a.DSCRCash, b.DSCRCash) {
			t.Fatalf("row %d: DSCR fields differ", i)
		}
		a.DSCROperating, b.DSCROperating = 0, 0
		a.DSCRCash, b.DSCRCash = 0, 0
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("row %d differs between identical runs:\n%+v\n%+v", i, a, b)
		}
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func TestTrialsDiffer(t *testing.T) {
	cfg := smallConfig()
	combo := baseCombo(&cfg)

	a := RunTrial(&cfg, combo, 0)
	b := RunTrial(&cfg, combo, 1)
	same := true
	for i := range a {
		if a[i].ActiveMembers != b[i].ActiveMembers || a[i].NetCashFlow != b[i].NetCashFlow {
			same = false
			break
		}
	}
	if same {
		t.Fatal("two different trial indexes produced identical paths")
	}
}

func TestRowOrderAndCount(t *testing.T) {
	cfg := smallConfig()
	cfg.RentScenarios = []float64{2500, 3500}
	cfg.OwnerDrawScenarios = []float64{0, 1000}
	m2 := 2
	cfg.Scenarios = []config.Scenario{
		{Name: "Base"},
		{Name: "Grant", GrantAmount: 25_000, GrantMonth: &m2},
	}

	rows, err := Run(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := 2 * 2 * 2 * cfg.Sim.Trials * cfg.Sim.Months
	if len(rows) != want {
		t.Fatalf("row count = %d, want %d", len(rows), want)
	}
	// Months run 1..N within each trial block.
	for i, r := range rows {
		if wantM := i%cfg.Sim.Months + 1; r.Month != wantM {
			t.Fatalf("row %d: month = %d, want %d", i, r.Month, wantM)
		}
	}
	if rows[0].Rent != 2500 || rows[len(rows)-1].Rent != 3500 {
		t.Fatalf("sweep order broken: first rent %v, last rent %v", rows[0].Rent, rows[len(rows)-1].Rent)
	}
}

func TestMembershipStaysWithinBounds(t *testing.T) {
	cfg := smallConfig()
	cfg.Sim.Months = 36
	combo := baseCombo(&cfg)

	for trial := 0; trial < 5; trial++ {
		for _, r := range RunTrial(&cfg, combo, trial) {
			if r.ActiveMembers < 0 {
				t.Fatalf("trial %d month %d: negative membership %d", trial, r.Month, r.ActiveMembers)
			}
			if r.ActiveMembers > cfg.Market.MaxMembers {
				t.Fatalf("trial %d month %d: %d members above ceiling %d",
					trial, r.Month, r.ActiveMembers, cfg.Market.MaxMembers)
			}
		}
	}
}

func TestOnboardingCapRespected(t *testing.T) {
	cfg := smallConfig()
	cfg.Sim.Months = 24
	cfg.Market.MaxOnboardingsPerMonth = 2
	combo := baseCombo(&cfg)

	for trial := 0; trial < 5; trial++ {
		for _, r := range RunTrial(&cfg, combo, trial) {
			if r.Joins > 2 {
				t.Fatalf("trial %d month %d: %d joins above onboarding cap", trial, r.Month, r.Joins)
			}
		}
	}
}

func TestDeadMarketProducesNoMembers(t *testing.T) {
	cfg := smallConfig()
	for name, p := range cfg.Market.Pools {
		p.Size = 0
		p.Inflow = 0
		cfg.Market.Pools[name] = p
	}
	cfg.Market.ReferralRatePerMember = 0
	cfg.Workshops.Enabled = false
	cfg.Classes.Enabled = false
	cfg.Manual.UseCurve = false

	for _, r := range RunTrial(&cfg, baseCombo(&cfg), 0) {
		if r.ActiveMembers != 0 {
			t.Fatalf("month %d: %d members in an empty market", r.Month, r.ActiveMembers)
		}
		if r.RevenueMembership != 0 || r.RevenueClay != 0 || r.RevenueFiring != 0 {
			t.Fatalf("month %d: member revenue without members: %+v", r.Month, r)
		}
	}
}

func TestPermanentDownturnFlagsEveryMonth(t *testing.T) {
	cfg := smallConfig()
	cfg.Market.DownturnProb = 1
	for _, r := range RunTrial(&cfg, baseCombo(&cfg), 0) {
		if !r.Downturn {
			t.Fatalf("month %d not flagged as downturn with probability 1", r.Month)
		}
	}
}

func TestPermanentDownturnZeroJoinMultStopsPoolJoins(t *testing.T) {
	cfg := smallConfig()
	cfg.Market.DownturnProb = 1
	cfg.Market.DownturnJoinMult = 0
	for _, r := range RunTrial(&cfg, baseCombo(&cfg), 0) {
		if !r.Downturn {
			t.Fatalf("month %d not flagged as downturn with probability 1", r.Month)
		}
		if r.JoinsOrganic != 0 {
			t.Fatalf("month %d: %d pool joins with join multiplier 0", r.Month, r.JoinsOrganic)
		}
	}
}

func TestPoolJoinsNeverExceedProspectSupply(t *testing.T) {
	cfg := smallConfig()
	cfg.Sim.Months = 24
	supply := 0
	for name, p := range cfg.Market.Pools {
		p.Size = 15
		p.Inflow = 0
		p.BaseRate = 0.9 // drain the pools fast so the bound binds
		cfg.Market.Pools[name] = p
		supply += p.Size
	}
	cfg.Workshops.Enabled = false
	cfg.Classes.Enabled = false
	cfg.Manual.UseCurve = false

	drawn := 0
	for _, r := range RunTrial(&cfg, baseCombo(&cfg), 0) {
		drawn += r.JoinsOrganic + r.JoinsReferral + r.JoinsBaseline
		if drawn > supply {
			t.Fatalf("month %d: %d cumulative pool-sourced joins from %d prospects", r.Month, drawn, supply)
		}
	}
}

func TestChurnProbabilityClipped(t *testing.T) {
	if got := churnProbability(0.8, 3, 4, 0.5, 2, 1.25); got != 0.99 {
		t.Fatalf("extreme multipliers gave %v, want clip at 0.99", got)
	}
	if got := churnProbability(-0.1, 1, 1, 0, 0, 1); got != 0 {
		t.Fatalf("negative base gave %v, want floor at 0", got)
	}
	if got := churnProbability(0.05, 1.3, 1.1, 0.3, 0.5, 1.25); got <= 0 || got >= 0.99 {
		t.Fatalf("ordinary inputs should pass through unclipped, got %v", got)
	}
}

func TestCashBalanceIdentity(t *testing.T) {
	cfg := smallConfig()
	cfg.Sim.Months = 24
	m3 := 3
	cfg.Scenarios = []config.Scenario{{Name: "Grant", GrantAmount: 10_000, GrantMonth: &m3}}
	m1 := 1
	cfg.Capex = []config.CapexItem{
		{Enabled: true, Label: "test kiln", Count: 1, UnitCost: 5000, Month: &m1},
	}
	combo := baseCombo(&cfg)
	combo.Scenario = cfg.Scenarios[0]

	rows := RunTrial(&cfg, combo, 0)
	prev := 0.0
	for i, r := range rows {
		want := prev + r.LoanProceeds - r.FeesCashPaid - r.CapexSpend +
			r.LoanDrawPrimary + r.LoanDrawWorking + r.NetCashFlow + r.GrantReceived
		if math.Abs(r.CashBalance-want) > 1e-6 {
			t.Fatalf("row %d: cash %v, want %v from components", i, r.CashBalance, want)
		}
		prev = r.CashBalance
	}
}

func TestGrantArrivesOnSchedule(t *testing.T) {
	cfg := smallConfig()
	m4 := 4
	cfg.Scenarios = []config.Scenario{{Name: "Grant", GrantAmount: 50_000, GrantMonth: &m4}}
	combo := baseCombo(&cfg)
	combo.Scenario = cfg.Scenarios[0]

	rows := RunTrial(&cfg, combo, 0)
	for _, r := range rows {
		if r.Month == 5 { // month index 4 is the fifth row
			if r.GrantReceived != 50_000 {
				t.Fatalf("grant month received %v", r.GrantReceived)
			}
		} else if r.GrantReceived != 0 {
			t.Fatalf("month %d received grant %v off schedule", r.Month, r.GrantReceived)
		}
		if r.GrantMonth != 4 {
			t.Fatalf("grant month metadata = %d, want 4", r.GrantMonth)
		}
	}
}

func TestNoDebtYieldsNaNDSCR(t *testing.T) {
	cfg := smallConfig()
	cfg.Capex = nil
	zero := 0.0
	cfg.Loans.Primary.PrincipalOverride = &zero
	cfg.Loans.Working.PrincipalOverride = &zero

	for _, r := range RunTrial(&cfg, baseCombo(&cfg), 0) {
		if r.LoanPaymentTotal != 0 {
			t.Fatalf("month %d: debt service %v with no loans", r.Month, r.LoanPaymentTotal)
		}
		if !math.IsNaN(r.DSCROperating) || !math.IsNaN(r.DSCRCash) {
			t.Fatalf("month %d: DSCR should be NaN without debt service", r.Month)
		}
		if r.DSCRCashBreach100 || r.DSCRCashBreachTarget {
			t.Fatalf("month %d: breach flags set without debt service", r.Month)
		}
	}
}

func TestManualCurveForcesHeadcount(t *testing.T) {
	cfg := smallConfig()
	cfg.Manual.UseCurve = true
	cfg.Manual.Curve = []float64{5, 10, 7, 7, 0}

	rows := RunTrial(&cfg, baseCombo(&cfg), 0)
	for i, want := range []int{5, 10, 7, 7, 0} {
		if rows[i].ActiveMembers != want {
			t.Fatalf("month %d: members = %d, want manual target %d", i+1, rows[i].ActiveMembers, want)
		}
	}
}

func TestInsolventBeforeGrantLatches(t *testing.T) {
	cfg := smallConfig()
	cfg.Sim.Months = 6
	// Make ends impossible to meet: huge draw, no loans.
	zero := 0.0
	cfg.Loans.Primary.PrincipalOverride = &zero
	cfg.Loans.Working.PrincipalOverride = &zero
	m5 := 5
	cfg.Scenarios = []config.Scenario{{Name: "Late Grant", GrantAmount: 1, GrantMonth: &m5}}
	combo := baseCombo(&cfg)
	combo.OwnerDraw = 50_000
	combo.Scenario = cfg.Scenarios[0]

	rows := RunTrial(&cfg, combo, 0)
	sawInsolvent := false
	for _, r := range rows {
		if r.InsolventBeforeGrant {
			sawInsolvent = true
		} else if sawInsolvent {
			t.Fatalf("month %d: insolvency flag un-latched", r.Month)
		}
	}
	if !sawInsolvent {
		t.Fatal("cash never went negative despite impossible burn")
	}
}

func TestStagedCapexDrawsFundPurchases(t *testing.T) {
	cfg := smallConfig()
	cfg.Loans.Primary.Mode = config.LoanModeStaged
	zero := 0.0
	cfg.Loans.Working.PrincipalOverride = &zero
	m2 := 2
	cfg.Capex = []config.CapexItem{
		{Enabled: true, Label: "kiln", Count: 1, UnitCost: 8000, Month: &m2},
	}
	rows := RunTrial(&cfg, baseCombo(&cfg), 0)

	var sawDraw bool
	for _, r := range rows {
		if r.LoanDrawPrimary > 0 {
			sawDraw = true
			if r.CapexSpend == 0 {
				t.Fatalf("month %d: tranche drawn without a purchase", r.Month)
			}
		}
		if r.Month == 1 && r.LoanProceeds != 0 {
			t.Fatalf("staged mode paid out upfront proceeds: %v", r.LoanProceeds)
		}
	}
	if !sawDraw {
		t.Fatal("staged capex never drew a tranche")
	}
}

func TestSeedDerivationDistinguishesPaths(t *testing.T) {
	base := TrialSeed(42, 2500, 1000, 0, 0)
	for _, other := range []uint64{
		TrialSeed(42, 2500, 1000, 0, 1),
		TrialSeed(42, 2500, 1000, 1, 0),
		TrialSeed(42, 2500, 2000, 0, 0),
		TrialSeed(42, 3500, 1000, 0, 0),
		TrialSeed(43, 2500, 1000, 0, 0),
		TrialSeed(42, 2500.25, 1000, 0, 0),
		TrialSeed(42, 2500, 1000.50, 0, 0),
	} {
		if other == base {
			t.Fatal("two distinct paths derived the same seed")
		}
	}
	if TrialSeed(42, 2500, 1000, 0, 0) != base {
		t.Fatal("seed derivation not stable")
	}
}

func TestClassConversionsLagIntoJoins(t *testing.T) {
	cfg := smallConfig()
	cfg.Classes.Enabled = true
	cfg.Classes.CalendarMode = "monthly"
	cfg.Classes.ConvRate = 1.0
	cfg.Classes.ConvLagMonths = 1
	cfg.Classes.FillStd = 0

	rows := RunTrial(&cfg, baseCombo(&cfg), 0)
	if rows[0].ClassStudents == 0 {
		t.Fatal("monthly classes ran no students in month 1")
	}
	if rows[0].JoinsClasses != 0 {
		t.Fatalf("conversions arrived without lag: %d", rows[0].JoinsClasses)
	}
	if rows[1].JoinsClasses == 0 {
		t.Fatal("lagged class conversions never materialized")
	}
}

func TestWorkshopStreamContributes(t *testing.T) {
	cfg := smallConfig()
	cfg.Workshops.Enabled = true

	rows := RunTrial(&cfg, baseCombo(&cfg), 0)
	w := cfg.Workshops
	attendees := math.Round(w.PerMonth * float64(w.AvgAttendance))
	wantNet := attendees*w.Fee - w.PerMonth*w.CostPerEvent
	for _, r := range rows {
		if math.Abs(r.RevenueWorkshops-wantNet) > 1e-9 {
			t.Fatalf("month %d: workshop revenue %v, want %v", r.Month, r.RevenueWorkshops, wantNet)
		}
	}
}

func TestTotalRevenueIsSumOfStreams(t *testing.T) {
	cfg := smallConfig()
	cfg.Workshops.Enabled = true
	cfg.Classes.Enabled = true

	rows := RunTrial(&cfg, baseCombo(&cfg), 0)
	for _, r := range rows {
		want := r.RevenueMembership + r.RevenueClay + r.RevenueFiring + r.RevenueEvents +
			r.RevenueWorkshops + r.RevenueClasses + r.RevenueRentals
		if math.Abs(r.TotalRevenue-want) > 1e-9 {
			t.Fatalf("month %d: total revenue %v, want %v", r.Month, r.TotalRevenue, want)
		}
	}
}

func BenchmarkRunTrial(b *testing.B) {
	cfg := config.Default()
	cfg.Sim.Months = 60
	combo := Combo{Rent: 3500, OwnerDraw: 1000, Scenario: config.Scenario{Name: "Base"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rows := RunTrial(&cfg, combo, i)
		_ = rows
	}
}
