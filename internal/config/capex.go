package config

// CapexItem is one planned equipment purchase. Exactly one of Month or
// MemberThreshold triggers it: Month schedules it on a fixed simulation
// month, MemberThreshold fires the first month active membership reaches
// the threshold. An item with neither trigger never fires.
type CapexItem struct {
	Enabled         bool    `toml:"enabled" json:"enabled"`
	Label           string  `toml:"label" json:"label"`
	Count           int     `toml:"count" json:"count"`
	UnitCost        float64 `toml:"unit_cost" json:"unit_cost"`
	Month           *int    `toml:"month,omitempty" json:"month,omitempty"`
	MemberThreshold *int    `toml:"member_threshold,omitempty" json:"member_threshold,omitempty"`

	FinanceViaPrimaryLoan bool `toml:"finance_via_primary_loan" json:"finance_via_primary_loan"`
}

// Total returns the purchase cost of the item.
func (it CapexItem) Total() float64 {
	n := it.Count
	if n < 1 {
		n = 1
	}
	return float64(n) * it.UnitCost
}

// ActiveCapex filters out disabled and zero-cost items, preserving order.
func ActiveCapex(items []CapexItem) []CapexItem {
	out := make([]CapexItem, 0, len(items))
	for _, it := range items {
		if !it.Enabled || it.Total() <= 0 {
			continue
		}
		out = append(out, it)
	}
	return out
}

// PlannedCapexTotal sums the cost of all active items regardless of
// trigger. Used when sizing the primary loan.
func PlannedCapexTotal(items []CapexItem) float64 {
	var total float64
	for _, it := range ActiveCapex(items) {
		total += it.Total()
	}
	return total
}

// FinancedCapexTotal sums only the active items flagged for primary-loan
// financing.
func FinancedCapexTotal(items []CapexItem) float64 {
	var total float64
	for _, it := range ActiveCapex(items) {
		if it.FinanceViaPrimaryLoan {
			total += it.Total()
		}
	}
	return total
}

// LumpCapexByMonth groups month-triggered items into spend lumps: each
// purchase is anchored to the start of its windowMonths-wide bucket so
// nearby purchases land as one outflow. Threshold-triggered items are
// excluded; they cannot be scheduled ahead of time. windowMonths < 1 is
// treated as 1 (no lumping).
func LumpCapexByMonth(items []CapexItem, windowMonths int) map[int]float64 {
	wnd := windowMonths
	if wnd < 1 {
		wnd = 1
	}
	out := map[int]float64{}
	for _, it := range ActiveCapex(items) {
		if it.Month == nil {
			continue
		}
		m := *it.Month
		if m < 0 {
			m = 0
		}
		anchor := (m / wnd) * wnd
		out[anchor] += it.Total()
	}
	return out
}

func asCapexItems(val any) ([]CapexItem, bool) {
	raw, ok := val.([]any)
	if !ok {
		if items, ok := val.([]CapexItem); ok {
			out := make([]CapexItem, len(items))
			copy(out, items)
			return out, true
		}
		return nil, false
	}
	out := make([]CapexItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		var it CapexItem
		if b, ok := m["enabled"].(bool); ok {
			it.Enabled = b
		}
		if s, ok := m["label"].(string); ok {
			it.Label = s
		}
		if n, ok := asInt(m["count"]); ok {
			it.Count = n
		}
		if f, ok := asFloat(m["unit_cost"]); ok {
			it.UnitCost = f
		}
		if n, ok := asInt(m["month"]); ok {
			mo := n
			it.Month = &mo
		}
		if n, ok := asInt(m["member_threshold"]); ok {
			th := n
			it.MemberThreshold = &th
		}
		if b, ok := m["finance_via_primary_loan"].(bool); ok {
			it.FinanceViaPrimaryLoan = b
		}
		out = append(out, it)
	}
	return out, true
}
