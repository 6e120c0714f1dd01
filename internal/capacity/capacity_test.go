package capacity

import (
	"math"
	"testing"

	"studiosim/internal/config"
)

func TestSoftCapSingleStation(t *testing.T) {
	cc := &config.CapacityConfig{
		OpenHoursPerWeek: 100,
		Stations: map[string]config.Station{
			"wheels": {Capacity: 10, Alpha: 1, Kappa: 1},
		},
		SessionsPerWeek: map[string]float64{"Only": 1},
		SessionHours:    map[string]float64{"Only": 1},
		UsageShare:      map[string]map[string]float64{"Only": {"wheels": 1}},
	}
	arch := map[string]config.Archetype{"Only": {Prob: 1}}

	cap, per := SoftCap(cc, arch)
	// 1*10*100 / (1 * 1*1*1*1) = 1000 member-hours of headroom.
	if math.Abs(cap-1000) > 1e-9 {
		t.Fatalf("soft cap = %v, want 1000", cap)
	}
	if per["wheels"] != cap {
		t.Fatalf("per-station cap mismatch: %v", per)
	}
}

func TestSoftCapTakesBindingStation(t *testing.T) {
	cfg := config.Default()
	cap, per := SoftCap(&cfg.Capacity, cfg.Archetypes)
	if math.IsInf(cap, 1) || cap <= 0 {
		t.Fatalf("default soft cap = %v", cap)
	}
	for name, c := range per {
		if c < cap-1e-9 {
			t.Fatalf("station %s cap %v below reported minimum %v", name, c, cap)
		}
	}
}

func TestSoftCapScalesWithStationCount(t *testing.T) {
	cfg := config.Default()
	base, _ := SoftCap(&cfg.Capacity, cfg.Archetypes)

	st := cfg.Capacity.Stations["wheels"]
	st.Capacity *= 2
	cfg.Capacity.Stations["wheels"] = st
	grown, _ := SoftCap(&cfg.Capacity, cfg.Archetypes)
	if grown < base {
		t.Fatalf("adding wheels shrank the cap: %v -> %v", base, grown)
	}
}

func TestSoftCapIgnoresUnusedStation(t *testing.T) {
	cc := &config.CapacityConfig{
		OpenHoursPerWeek: 100,
		Stations: map[string]config.Station{
			"wheels": {Capacity: 10, Alpha: 1, Kappa: 1},
			"idle":   {Capacity: 1, Alpha: 0.1, Kappa: 5},
		},
		SessionsPerWeek: map[string]float64{"Only": 1},
		SessionHours:    map[string]float64{"Only": 1},
		UsageShare:      map[string]map[string]float64{"Only": {"wheels": 1}},
	}
	arch := map[string]config.Archetype{"Only": {Prob: 1}}

	cap, per := SoftCap(cc, arch)
	if !math.IsInf(per["idle"], 1) {
		t.Fatalf("zero-demand station should be unconstrained, got %v", per["idle"])
	}
	if math.Abs(cap-1000) > 1e-9 {
		t.Fatalf("cap should come from the used station, got %v", cap)
	}
}

func TestDampingEndpoints(t *testing.T) {
	if got := Damping(0, 50, 4); got != 1 {
		t.Fatalf("empty studio damping = %v, want 1", got)
	}
	if got := Damping(50, 50, 4); got != 0 {
		t.Fatalf("at-cap damping = %v, want 0", got)
	}
	if got := Damping(100, 50, 4); got != 0 {
		t.Fatalf("over-cap damping = %v, want clamp to 0", got)
	}
	mid := Damping(25, 50, 4)
	if mid <= 0 || mid >= 1 {
		t.Fatalf("half-full damping = %v, want within (0, 1)", mid)
	}
}

func TestOverUtilization(t *testing.T) {
	if got := OverUtilization(40, 50); got != 0 {
		t.Fatalf("under capacity over-utilization = %v", got)
	}
	if got := OverUtilization(60, 50); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("over-utilization = %v, want 0.2", got)
	}
}
