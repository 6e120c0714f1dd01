package finance

import "studiosim/internal/config"

// TaxMonth is the tax outcome for a single month of one trial.
type TaxMonth struct {
	SETax          float64 // self-employment (pass-through entities)
	StateIncomeTax float64 // MA personal income tax on pass-through profit
	CorpTax        float64 // combined federal + state corporate tax

	PropertyTax       float64
	SalesTaxCollected float64
	SalesTaxRemitted  float64

	// CashPayments is the cash remitted this month for accrued income,
	// self-employment, and corporate taxes plus sales tax. Property tax
	// is billed separately.
	CashPayments float64
}

// Accrued returns the accrual-basis tax cost charged against operating
// profit this month.
func (m TaxMonth) Accrued() float64 {
	return m.SETax + m.StateIncomeTax + m.CorpTax
}

// TaxState accrues tax liabilities across the months of one trial and
// remits them on the configured cadence. Not safe for concurrent use;
// each trial owns its own state.
type TaxState struct {
	cfg config.TaxConfig

	ssWageBaseUsedYTD float64
	sePayable         float64
	statePayable      float64
	corpPayable       float64
	salesPayable      float64
}

// NewTaxState returns fresh accumulators for one trial.
func NewTaxState(cfg config.TaxConfig) *TaxState {
	return &TaxState{cfg: cfg}
}

// OwnerPayroll returns the monthly S-corp owner salary expense and the
// employer-side payroll tax on it. Zero for every other entity type;
// pass-through owners are paid via draws, not wages.
func OwnerPayroll(cfg config.TaxConfig) (salary, employerTax float64) {
	if cfg.EntityType != config.EntitySCorp {
		return 0, 0
	}
	return cfg.SCorpOwnerSalary, cfg.SCorpOwnerSalary * cfg.EmployerPayrollRate
}

// Step accrues this month's taxes on pre-tax operating profit and retail
// clay revenue, then applies the remittance calendar. month is 0-based;
// the Social Security wage base resets every January.
func (t *TaxState) Step(month int, opProfit, clayRevenue float64) TaxMonth {
	if month%12 == 0 {
		t.ssWageBaseUsedYTD = 0
	}

	var out TaxMonth
	c := t.cfg

	switch c.EntityType {
	case config.EntitySoleProp, config.EntityPartnership:
		seEarnings := max(0, opProfit) * c.SEEarningsFactor
		ssRemaining := max(0, c.SESocSecWageBase-t.ssWageBaseUsedYTD)
		ssTaxable := min(seEarnings, ssRemaining)
		t.ssWageBaseUsedYTD += ssTaxable

		out.SETax = ssTaxable*c.SESocSecRate + seEarnings*c.SEMedicareRate
		t.sePayable += out.SETax

		// Half of SE tax is deductible before the state income tax.
		taxable := max(0, opProfit-0.5*out.SETax)
		out.StateIncomeTax = taxable * c.PersonalIncomeRate
		t.statePayable += out.StateIncomeTax

	case config.EntitySCorp:
		// Owner salary and employer payroll tax are already operating
		// expenses; the pass-through profit is taxed personally.
		out.StateIncomeTax = max(0, opProfit) * c.PersonalIncomeRate
		t.statePayable += out.StateIncomeTax

	case config.EntityCCorp:
		out.CorpTax = max(0, opProfit) * (c.FedCorpRate + c.StateCorpRate)
		t.corpPayable += out.CorpTax
	}

	if c.PropertyTaxAnnual > 0 && (month+1)%12 == c.PropertyTaxBillMonth%12 {
		out.PropertyTax = c.PropertyTaxAnnual / 12
	}

	if c.EstTaxRemitMonths > 0 && (month+1)%c.EstTaxRemitMonths == 0 {
		switch c.EntityType {
		case config.EntitySoleProp, config.EntityPartnership, config.EntitySCorp:
			out.CashPayments += t.sePayable + t.statePayable
			t.sePayable = 0
			t.statePayable = 0
		case config.EntityCCorp:
			out.CashPayments += t.corpPayable
			t.corpPayable = 0
		}
	}

	out.SalesTaxCollected = clayRevenue * c.SalesTaxRate
	t.salesPayable += out.SalesTaxCollected
	if c.SalesTaxRemitMonths > 0 && (month+1)%c.SalesTaxRemitMonths == 0 {
		out.SalesTaxRemitted = t.salesPayable
		out.CashPayments += out.SalesTaxRemitted
		t.salesPayable = 0
	}

	return out
}
