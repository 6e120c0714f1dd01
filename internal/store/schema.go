package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id               INTEGER PRIMARY KEY AUTOINCREMENT,
    label                TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    months               INTEGER NOT NULL,
    trials               INTEGER NOT NULL,
    seed                 INTEGER NOT NULL,
    row_count            INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    run_id               INTEGER NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    scenario             TEXT NOT NULL,
    rent                 REAL NOT NULL,
    owner_draw           REAL NOT NULL,
    trial                INTEGER NOT NULL,
    month                INTEGER NOT NULL,

    active_members       INTEGER NOT NULL,
    joins                INTEGER NOT NULL,
    departures           INTEGER NOT NULL,
    net_adds             INTEGER NOT NULL,

    revenue_membership   REAL NOT NULL,
    revenue_clay         REAL NOT NULL,
    revenue_firing       REAL NOT NULL,
    revenue_events       REAL NOT NULL,
    revenue_workshops    REAL NOT NULL,
    revenue_classes      REAL NOT NULL,
    revenue_rentals      REAL NOT NULL,
    total_revenue        REAL NOT NULL,

    operating_profit     REAL NOT NULL,
    profit_after_tax     REAL NOT NULL,
    cum_operating_profit REAL NOT NULL,
    net_cash_flow        REAL NOT NULL,
    cash_balance         REAL NOT NULL,
    cfads                REAL NOT NULL,

    loan_payment_total   REAL NOT NULL,
    loan_balance_primary REAL NOT NULL,
    loan_balance_working REAL NOT NULL,
    loan_draw_primary    REAL NOT NULL,
    loan_draw_working    REAL NOT NULL,
    capex_spend          REAL NOT NULL,

    dscr_operating       REAL,
    dscr_cash            REAL,
    dscr_breach_100      INTEGER NOT NULL,
    dscr_breach_target   INTEGER NOT NULL,

    tax_payments_made    REAL NOT NULL,
    sales_tax_collected  REAL NOT NULL,

    grant_received       REAL NOT NULL,
    insolvent_pre_grant  INTEGER NOT NULL,
    downturn             INTEGER NOT NULL,

    PRIMARY KEY (run_id, scenario, rent, owner_draw, trial, month)
);

CREATE INDEX IF NOT EXISTS idx_results_combo ON results(run_id, scenario, rent, owner_draw);
CREATE INDEX IF NOT EXISTS idx_results_month ON results(run_id, month);
`
