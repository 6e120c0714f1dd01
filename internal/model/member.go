package model

// JoinSource tags where a member came from, for analytics.
type JoinSource string

const (
	SourceOrganic  JoinSource = "organic"
	SourceReferral JoinSource = "referral"
	SourceBaseline JoinSource = "baseline"
	SourceWorkshop JoinSource = "workshop"
	SourceClass    JoinSource = "class"
	SourceManual   JoinSource = "manual"
)

// Member is one active membership. Archetype and JoinMonth are fixed at
// creation; MonthlyFee is a snapshot of the price when the member joined.
type Member struct {
	Archetype  string
	JoinMonth  int
	MonthlyFee float64

	// Clay usage range in bags per month (low, typical, high).
	ClayLow     float64
	ClayTypical float64
	ClayHigh    float64

	Source JoinSource
}

// Tenure returns the member's tenure in months at the given month index.
func (m Member) Tenure(month int) int {
	return month - m.JoinMonth
}
