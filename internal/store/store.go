// Package store persists simulation results to SQLite so sweeps can be
// re-aggregated and inspected without re-running the engine.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"studiosim/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite-backed result archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the results database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunInfo describes one stored sweep.
type RunInfo struct {
	RunID     int64
	Label     string
	CreatedAt time.Time
	Months    int
	Trials    int
	Seed      int64
	RowCount  int
}

// SaveRun stores a completed sweep under a label and returns its run id.
// The insert is transactional; a failed save leaves no partial run.
func (s *Store) SaveRun(label string, months, trials int, seed int64, rows []model.ResultRow) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO runs (label, created_at, months, trials, seed, row_count) VALUES (?, ?, ?, ?, ?, ?)`,
		label, time.Now().UTC().Format(time.RFC3339), months, trials, seed, len(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolving run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO results (
		run_id, scenario, rent, owner_draw, trial, month,
		active_members, joins, departures, net_adds,
		revenue_membership, revenue_clay, revenue_firing, revenue_events,
		revenue_workshops, revenue_classes, revenue_rentals, total_revenue,
		operating_profit, profit_after_tax, cum_operating_profit,
		net_cash_flow, cash_balance, cfads,
		loan_payment_total, loan_balance_primary, loan_balance_working,
		loan_draw_primary, loan_draw_working, capex_spend,
		dscr_operating, dscr_cash, dscr_breach_100, dscr_breach_target,
		tax_payments_made, sales_tax_collected,
		grant_received, insolvent_pre_grant, downturn
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range rows {
		r := &rows[i]
		if _, err := stmt.Exec(
			runID, r.Scenario, r.Rent, r.OwnerDraw, r.Trial, r.Month,
			r.ActiveMembers, r.Joins, r.Departures, r.NetAdds,
			r.RevenueMembership, r.RevenueClay, r.RevenueFiring, r.RevenueEvents,
			r.RevenueWorkshops, r.RevenueClasses, r.RevenueRentals, r.TotalRevenue,
			r.OperatingProfit, r.OperatingProfitAfterTax, r.CumOperatingProfit,
			r.NetCashFlow, r.CashBalance, r.CFADS,
			r.LoanPaymentTotal, r.LoanBalancePrimary, r.LoanBalanceWorking,
			r.LoanDrawPrimary, r.LoanDrawWorking, r.CapexSpend,
			nullableFloat(r.DSCROperating), nullableFloat(r.DSCRCash),
			boolToInt(r.DSCRCashBreach100), boolToInt(r.DSCRCashBreachTarget),
			r.TaxPaymentsMade, r.SalesTaxCollected,
			r.GrantReceived, boolToInt(r.InsolventBeforeGrant), boolToInt(r.Downturn),
		); err != nil {
			return 0, fmt.Errorf("inserting result row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing save: %w", err)
	}
	return runID, nil
}

// LoadRun reads back all rows of a stored run, in combo/trial/month
// order.
func (s *Store) LoadRun(runID int64) ([]model.ResultRow, error) {
	dbRows, err := s.db.Query(`SELECT
		scenario, rent, owner_draw, trial, month,
		active_members, joins, departures, net_adds,
		revenue_membership, revenue_clay, revenue_firing, revenue_events,
		revenue_workshops, revenue_classes, revenue_rentals, total_revenue,
		operating_profit, profit_after_tax, cum_operating_profit,
		net_cash_flow, cash_balance, cfads,
		loan_payment_total, loan_balance_primary, loan_balance_working,
		loan_draw_primary, loan_draw_working, capex_spend,
		dscr_operating, dscr_cash, dscr_breach_100, dscr_breach_target,
		tax_payments_made, sales_tax_collected,
		grant_received, insolvent_pre_grant, downturn
	FROM results WHERE run_id = ?
	ORDER BY scenario, rent, owner_draw, trial, month`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer func() { _ = dbRows.Close() }()

	var out []model.ResultRow
	for dbRows.Next() {
		var r model.ResultRow
		var dscrOp, dscrCash sql.NullFloat64
		var breach100, breachTarget, insolvent, downturn int
		if err := dbRows.Scan(
			&r.Scenario, &r.Rent, &r.OwnerDraw, &r.Trial, &r.Month,
			&r.ActiveMembers, &r.Joins, &r.Departures, &r.NetAdds,
			&r.RevenueMembership, &r.RevenueClay, &r.RevenueFiring, &r.RevenueEvents,
			&r.RevenueWorkshops, &r.RevenueClasses, &r.RevenueRentals, &r.TotalRevenue,
			&r.OperatingProfit, &r.OperatingProfitAfterTax, &r.CumOperatingProfit,
			&r.NetCashFlow, &r.CashBalance, &r.CFADS,
			&r.LoanPaymentTotal, &r.LoanBalancePrimary, &r.LoanBalanceWorking,
			&r.LoanDrawPrimary, &r.LoanDrawWorking, &r.CapexSpend,
			&dscrOp, &dscrCash, &breach100, &breachTarget,
			&r.TaxPaymentsMade, &r.SalesTaxCollected,
			&r.GrantReceived, &insolvent, &downturn,
		); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		r.DSCROperating = fromNullable(dscrOp)
		r.DSCRCash = fromNullable(dscrCash)
		r.DSCRCashBreach100 = breach100 != 0
		r.DSCRCashBreachTarget = breachTarget != 0
		r.InsolventBeforeGrant = insolvent != 0
		r.Downturn = downturn != 0
		out = append(out, r)
	}
	return out, dbRows.Err()
}

// ListRuns returns stored run metadata, newest first.
func (s *Store) ListRuns() ([]RunInfo, error) {
	rows, err := s.db.Query(`SELECT run_id, label, created_at, months, trials, seed, row_count
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunInfo
	for rows.Next() {
		var ri RunInfo
		var created string
		if err := rows.Scan(&ri.RunID, &ri.Label, &created, &ri.Months, &ri.Trials, &ri.Seed, &ri.RowCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ri.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, ri)
	}
	return out, rows.Err()
}

// DeleteRun removes a stored run and its rows.
func (s *Store) DeleteRun(runID int64) error {
	if _, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return nil
}

// nullableFloat maps NaN to NULL; SQLite has no NaN representation.
func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
