package model

// ResultRow is one (path, month) observation. Month is 1-based.
// DSCR fields are NaN when there is no debt service that month.
type ResultRow struct {
	Scenario  string
	Rent      float64
	OwnerDraw float64
	Trial     int
	Month     int

	ActiveMembers int
	Joins         int
	Departures    int
	NetAdds       int

	JoinsOrganic   int
	JoinsReferral  int
	JoinsBaseline  int
	JoinsWorkshops int
	JoinsClasses   int
	ManualAdds     int
	ManualRemovals int

	RevenueMembership float64
	RevenueClay       float64
	RevenueFiring     float64
	RevenueEvents     float64
	RevenueWorkshops  float64
	RevenueClasses    float64
	RevenueRentals    float64
	TotalRevenue      float64

	CostFixed       float64
	CostVariable    float64
	CostStaff       float64
	CostMarketing   float64
	CostMaintenance float64
	OwnerSalary     float64
	PayrollTax      float64
	OwnerDrawPaid   float64

	OperatingProfit         float64
	OperatingProfitAfterTax float64
	CumOperatingProfit      float64
	NetCashFlow             float64
	CashBalance             float64
	CFADS                   float64

	LoanPaymentPrimary float64
	LoanPaymentWorking float64
	LoanPaymentTotal   float64
	LoanBalancePrimary float64
	LoanBalanceWorking float64
	LoanDrawPrimary    float64
	LoanDrawWorking    float64
	LoanProceeds       float64
	FeesCashPaid       float64
	CapexSpend         float64

	DSCROperating        float64
	DSCRCash             float64
	DSCRCashBreach100    bool
	DSCRCashBreachTarget bool

	SETaxAccrued       float64
	StateTaxAccrued    float64
	CorpTaxAccrued     float64
	SalesTaxCollected  float64
	SalesTaxRemitted   float64
	PropertyTax        float64
	TaxPaymentsMade    float64

	GrantReceived        float64
	GrantMonth           int // -1 when the scenario has no grant
	GrantAmount          float64
	InsolventBeforeGrant bool
	Downturn             bool

	EventsHeld          int
	ClassStudents       int
	RentalUnitsOccupied int
}
