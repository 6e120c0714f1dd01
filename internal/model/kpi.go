package model

// ComboKPI holds the aggregate business KPIs for one
// (scenario, rent, owner draw) cell across all trials.
type ComboKPI struct {
	Scenario  string
	Rent      float64
	OwnerDraw float64
	Trials    int

	PctInsolventBeforeGrant float64
	SurvivalPct             float64 // trials whose cash never went negative
	MedianBreakEvenMonth    float64 // NaN when the median trial never breaks even
	MedianFinalCash         float64
	MedianMinCash           float64
	MedianFinalMembers      float64
	P10FinalMembers         float64
	P90FinalMembers         float64

	DSCRCashMedian       float64 // NaN when no debt service in any month
	DSCRBreach100Rate    float64 // share of debt-service months with cash DSCR < 1.00
	DSCRBreachTargetRate float64
	NegativeNetAddsRate  float64
}

// SweepPoint is one buffer level of a sensitivity sweep.
type SweepPoint struct {
	ExtraBuffer   float64
	SurvivalPct   float64
	MedianMinCash float64
}
