package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSane(t *testing.T) {
	cfg := Default()
	if cfg.Sim.Months != 60 || cfg.Sim.Trials != 100 {
		t.Fatalf("unexpected horizon defaults: months=%d trials=%d", cfg.Sim.Months, cfg.Sim.Trials)
	}
	var probSum float64
	for _, a := range cfg.Archetypes {
		probSum += a.Prob
	}
	if math.Abs(probSum-1.0) > 1e-9 {
		t.Fatalf("archetype probs sum to %v, want 1", probSum)
	}
	if len(cfg.Market.Seasonality) != 12 {
		t.Fatalf("seasonality has %d entries, want 12", len(cfg.Market.Seasonality))
	}
	if got := len(cfg.Costs.FiringFeeTiers); got != 3 {
		t.Fatalf("firing fee tiers = %d, want 3", got)
	}
	if last := cfg.Costs.FiringFeeTiers[2]; last.UpToLbs != 0 {
		t.Fatalf("final firing tier should be open-ended, got up_to=%v", last.UpToLbs)
	}
}

func TestResolveScalarOverrides(t *testing.T) {
	cfg := Resolve(map[string]any{
		"MONTHS":        36,
		"N_SIMULATIONS": 250,
		"PRICE":         195.0,
		"MAX_MEMBERS":   60,
		"ENTITY_TYPE":   EntitySCorp,
	})
	if cfg.Sim.Months != 36 || cfg.Sim.Trials != 250 {
		t.Fatalf("sim overrides not applied: %+v", cfg.Sim)
	}
	if cfg.Pricing.Price != 195 {
		t.Fatalf("price = %v, want 195", cfg.Pricing.Price)
	}
	if cfg.Market.MaxMembers != 60 {
		t.Fatalf("max members = %d, want 60", cfg.Market.MaxMembers)
	}
	if cfg.Tax.EntityType != EntitySCorp {
		t.Fatalf("entity = %q, want s_corp", cfg.Tax.EntityType)
	}
}

func TestResolveMappingGuard(t *testing.T) {
	// Scalar values for mapping-typed knobs must be discarded, keeping the
	// defaults intact.
	cfg := Resolve(map[string]any{
		"POOL_BASE_INTENT":   0.5,
		"SESSIONS_PER_WEEK":  3,
		"MARKET_POOLS_INFLOW": "lots",
	})
	def := Default()
	if got := cfg.Market.Pools[PoolNoAccess].BaseRate; got != def.Market.Pools[PoolNoAccess].BaseRate {
		t.Fatalf("scalar override mutated pool base rate: %v", got)
	}
	if got := cfg.Capacity.SessionsPerWeek["Hobbyist"]; got != def.Capacity.SessionsPerWeek["Hobbyist"] {
		t.Fatalf("scalar override mutated sessions per week: %v", got)
	}
	if got := cfg.Market.Pools[PoolNoAccess].Inflow; got != def.Market.Pools[PoolNoAccess].Inflow {
		t.Fatalf("scalar override mutated pool inflow: %v", got)
	}
}

func TestResolveMappingOverride(t *testing.T) {
	cfg := Resolve(map[string]any{
		"POOL_BASE_INTENT": map[string]any{PoolNoAccess: 0.09},
		"MARKET_POOLS":     map[string]any{PoolHomeStudio: 80},
	})
	if got := cfg.Market.Pools[PoolNoAccess].BaseRate; got != 0.09 {
		t.Fatalf("base rate = %v, want 0.09", got)
	}
	if got := cfg.Market.Pools[PoolHomeStudio].Size; got != 80 {
		t.Fatalf("pool size = %d, want 80", got)
	}
	// Untouched pools keep defaults.
	if got := cfg.Market.Pools[PoolCommunityStudio].Size; got != 70 {
		t.Fatalf("community pool size = %d, want 70", got)
	}
}

func TestResolveArchetypeOverride(t *testing.T) {
	cfg := Resolve(map[string]any{
		"MEMBER_ARCHETYPES": map[string]any{
			"Hobbyist": map[string]any{
				"prob":          0.5,
				"monthly_churn": 0.08,
				"clay_bags":     []any{0.5, 1.0, 1.5},
				"monthly_fee":   999.0, // legacy key; members pay the swept price
			},
		},
	})
	a := cfg.Archetypes["Hobbyist"]
	if a.Prob != 0.5 || a.MonthlyChurn != 0.08 {
		t.Fatalf("archetype override not applied: %+v", a)
	}
	if a.ClayBags != [3]float64{0.5, 1.0, 1.5} {
		t.Fatalf("clay bags = %v", a.ClayBags)
	}
}

func TestResolveUnknownKeysLandInExtra(t *testing.T) {
	cfg := Resolve(map[string]any{"SOME_FUTURE_KNOB": 7})
	v, ok := cfg.Extra["SOME_FUTURE_KNOB"]
	if !ok {
		t.Fatal("unknown key dropped instead of carried")
	}
	if n, _ := v.(int); n != 7 {
		t.Fatalf("extra value = %v, want 7", v)
	}
}

func TestResolveClampsDegenerateInputs(t *testing.T) {
	cfg := Resolve(map[string]any{
		"N_SIMULATIONS":           0,
		"DOWNTURN_PROB_PER_MONTH": 1.5,
		"JOIN_MODEL":              "nonsense",
	})
	if cfg.Sim.Trials != 1 {
		t.Fatalf("trials = %d, want clamp to 1", cfg.Sim.Trials)
	}
	if cfg.Market.DownturnProb != 1 {
		t.Fatalf("downturn prob = %v, want clamp to 1", cfg.Market.DownturnProb)
	}
	if cfg.Sim.JoinModel != "compartment" {
		t.Fatalf("join model = %q, want compartment fallback", cfg.Sim.JoinModel)
	}
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Sim.Months != Default().Sim.Months {
		t.Fatalf("missing file did not yield defaults")
	}
}

func TestLoadFileMergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.toml")
	body := "[simulation]\nmonths = 24\n\n[pricing]\nprice = 210.0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sim.Months != 24 {
		t.Fatalf("months = %d, want 24", cfg.Sim.Months)
	}
	if cfg.Pricing.Price != 210 {
		t.Fatalf("price = %v, want 210", cfg.Pricing.Price)
	}
	// A field the file never mentions keeps its default.
	if cfg.Market.MaxMembers != 77 {
		t.Fatalf("max members = %d, want default 77", cfg.Market.MaxMembers)
	}
}

func TestSeasonalityNormMeanOne(t *testing.T) {
	cfg := Default()
	w := cfg.SeasonalityNorm()
	var sum float64
	for _, v := range w {
		sum += v
	}
	mean := sum / float64(len(w))
	if math.Abs(mean-1.0) > 1e-9 {
		t.Fatalf("normalized seasonality mean = %v, want 1", mean)
	}

	cfg.Market.NormalizeSeasonality = false
	raw := cfg.SeasonalityNorm()
	for i, v := range raw {
		if v != cfg.Market.Seasonality[i] {
			t.Fatalf("unnormalized weights should pass through unchanged")
		}
	}
}

func TestLumpCapexByMonth(t *testing.T) {
	m0, m1, m5 := 0, 1, 5
	items := []CapexItem{
		{Enabled: true, Label: "kiln", Count: 1, UnitCost: 8000, Month: &m0},
		{Enabled: true, Label: "wheels", Count: 4, UnitCost: 1200, Month: &m1},
		{Enabled: true, Label: "pug mill", Count: 1, UnitCost: 4000, Month: &m5},
		{Enabled: false, Label: "slab roller", Count: 1, UnitCost: 2500, Month: &m5},
		{Enabled: true, Label: "racks", Count: 2, UnitCost: 300}, // no trigger month
	}
	lumps := LumpCapexByMonth(items, 2)
	if len(lumps) != 2 {
		t.Fatalf("lump count = %d, want 2 (%v)", len(lumps), lumps)
	}
	// Months 0 and 1 share the [0,2) bucket; month 5 anchors to 4.
	if got := lumps[0]; got != 8000+4*1200 {
		t.Fatalf("month-0 lump = %v, want 12800", got)
	}
	if got := lumps[4]; got != 4000 {
		t.Fatalf("month-4 lump = %v, want 4000", got)
	}

	// Window 1 keeps each purchase month separate.
	flat := LumpCapexByMonth(items, 1)
	if len(flat) != 3 {
		t.Fatalf("unlumped count = %d, want 3", len(flat))
	}
}

func TestCapexTotals(t *testing.T) {
	m0 := 0
	items := []CapexItem{
		{Enabled: true, Count: 2, UnitCost: 100, Month: &m0, FinanceViaPrimaryLoan: true},
		{Enabled: true, Count: 0, UnitCost: 50, Month: &m0}, // count clamps to 1
		{Enabled: false, Count: 3, UnitCost: 999, Month: &m0},
	}
	if got := PlannedCapexTotal(items); got != 250 {
		t.Fatalf("planned total = %v, want 250", got)
	}
	if got := FinancedCapexTotal(items); got != 200 {
		t.Fatalf("financed total = %v, want 200", got)
	}
}
