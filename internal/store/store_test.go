package store

import (
	"math"
	"path/filepath"
	"testing"

	"studiosim/internal/model"
)

func sampleRows() []model.ResultRow {
	return []model.ResultRow{
		{
			Scenario: "baseline", Rent: 3200, OwnerDraw: 2000, Trial: 0, Month: 1,
			ActiveMembers: 12, Joins: 3, Departures: 1, NetAdds: 2,
			RevenueMembership: 2160, RevenueClay: 310.5, TotalRevenue: 2470.5,
			OperatingProfit: -1800.25, CumOperatingProfit: -1800.25,
			NetCashFlow: -1650, CashBalance: 48000,
			LoanPaymentTotal: 612.4, LoanBalancePrimary: 118000, LoanBalanceWorking: 64000,
			DSCROperating: math.NaN(), DSCRCash: math.NaN(),
			TaxPaymentsMade: 0, SalesTaxCollected: 22.1,
		},
		{
			Scenario: "baseline", Rent: 3200, OwnerDraw: 2000, Trial: 0, Month: 2,
			ActiveMembers: 14, Joins: 2, Departures: 0, NetAdds: 2,
			RevenueMembership: 2520, TotalRevenue: 2890,
			OperatingProfit: -1200, CumOperatingProfit: -3000.25,
			NetCashFlow: -1100, CashBalance: 46900,
			LoanPaymentTotal: 612.4, LoanBalancePrimary: 117500, LoanBalanceWorking: 63800,
			DSCROperating: 0.85, DSCRCash: 1.12,
			DSCRCashBreach100: false, DSCRCashBreachTarget: true,
			GrantReceived: 15000, Downturn: true,
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	rows := sampleRows()
	runID, err := s.SaveRun("smoke", 2, 1, 42, rows)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("expected positive run id, got %d", runID)
	}

	got, err := s.LoadRun(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("row count = %d, want %d", len(got), len(rows))
	}

	first := got[0]
	if !math.IsNaN(first.DSCROperating) || !math.IsNaN(first.DSCRCash) {
		t.Fatalf("month 1 DSCRs should round-trip as NaN, got %v / %v", first.DSCROperating, first.DSCRCash)
	}
	if first.CashBalance != 48000 || first.RevenueClay != 310.5 {
		t.Fatalf("month 1 fields mangled: %+v", first)
	}
	// Break-even aggregation keys off this field; a loss month must
	// read back negative, not zero.
	if first.CumOperatingProfit != -1800.25 {
		t.Fatalf("month 1 CumOperatingProfit = %v, want -1800.25", first.CumOperatingProfit)
	}

	second := got[1]
	if second.DSCRCash != 1.12 {
		t.Fatalf("month 2 DSCRCash = %v, want 1.12", second.DSCRCash)
	}
	if !second.DSCRCashBreachTarget || second.DSCRCashBreach100 {
		t.Fatalf("breach flags mangled: %+v", second)
	}
	if !second.Downturn || second.GrantReceived != 15000 {
		t.Fatalf("month 2 flags mangled: %+v", second)
	}
}

func TestListAndDeleteRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	id1, err := s.SaveRun("first", 2, 1, 1, sampleRows())
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	id2, err := s.SaveRun("second", 2, 1, 2, nil)
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(runs))
	}
	if runs[0].RunID != id2 || runs[0].Label != "second" {
		t.Fatalf("expected newest first, got %+v", runs[0])
	}
	if runs[1].RowCount != 2 {
		t.Fatalf("row_count = %d, want 2", runs[1].RowCount)
	}

	if err := s.DeleteRun(id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, err := s.LoadRun(id1)
	if err != nil {
		t.Fatalf("load deleted: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("deleted run still has %d rows", len(rows))
	}
}
