// Package finance implements the loan instruments, loan sizing, and the
// tax accrual machinery used by the simulation engine.
package finance

import (
	"studiosim/internal/config"
)

// MonthlyPayment returns the level annuity payment for a principal repaid
// over nMonths at the given annual rate. A zero rate degrades to straight
// division; nMonths <= 0 returns the full principal.
func MonthlyPayment(principal, annualRate float64, nMonths int) float64 {
	if nMonths <= 0 {
		return principal
	}
	if annualRate == 0 {
		return principal / float64(nMonths)
	}
	r := annualRate / 12
	pow := 1.0
	for i := 0; i < nMonths; i++ {
		pow *= 1 + r
	}
	return principal * r * pow / (pow - 1)
}

// PaymentSchedule returns a months-long payment series for one tranche:
// interest-only for ioMonths, then level amortization over the remaining
// term, zeros past maturity. Non-positive principal yields all zeros.
func PaymentSchedule(principal, annualRate float64, termYears, ioMonths, months int) []float64 {
	if months < 0 {
		months = 0
	}
	pays := make([]float64, months)
	if principal <= 0 || months == 0 {
		return pays
	}

	r := annualRate / 12
	termM := termYears * 12
	ioM := ioMonths
	if ioM < 0 {
		ioM = 0
	}
	if ioM > termM {
		ioM = termM
	}

	ioLen := ioM
	if ioLen > months {
		ioLen = months
	}
	for m := 0; m < ioLen; m++ {
		pays[m] = principal * r
	}

	remTerm := termM - ioLen
	if remTerm > 0 && ioLen < months {
		amort := MonthlyPayment(principal, annualRate, remTerm)
		end := ioLen + remTerm
		if end > months {
			end = months
		}
		for m := ioLen; m < end; m++ {
			pays[m] = amort
		}
	}
	return pays
}

// LoanStep is the cash breakdown of one month of debt service.
type LoanStep struct {
	Payment   float64
	Interest  float64
	Principal float64
	Balance   float64 // after this month's payment
}

// Loan tracks one instrument: a payment series assembled from upfront and
// staged tranches, plus the running balance the payments retire. Draws
// made in a month must happen before that month's Step call.
type Loan struct {
	annualRate float64
	termYears  int
	ioMonths   int

	payments []float64
	balance  float64
	drawn    float64
}

// NewLoan constructs an instrument with no tranches drawn.
func NewLoan(terms config.LoanTerms, months int) *Loan {
	if months < 0 {
		months = 0
	}
	return &Loan{
		annualRate: terms.AnnualRate,
		termYears:  terms.TermYears,
		ioMonths:   terms.IOMonths,
		payments:   make([]float64, months),
	}
}

// DrawUpfront adds a tranche whose payments begin at month 0.
func (l *Loan) DrawUpfront(principal float64) {
	l.addTranche(principal, 0)
}

// DrawStaged adds a tranche drawn in the given month; its payments begin
// the following month.
func (l *Loan) DrawStaged(month int, principal float64) {
	l.addTranche(principal, month+1)
}

func (l *Loan) addTranche(principal float64, start int) {
	if principal <= 0 {
		return
	}
	l.balance += principal
	l.drawn += principal

	if start < 0 {
		start = 0
	}
	if start >= len(l.payments) {
		return
	}
	sched := PaymentSchedule(principal, l.annualRate, l.termYears, l.ioMonths, len(l.payments))
	for i := start; i < len(l.payments); i++ {
		l.payments[i] += sched[i-start]
	}
}

// Payment returns the scheduled debt service for a month.
func (l *Loan) Payment(month int) float64 {
	if month < 0 || month >= len(l.payments) {
		return 0
	}
	return l.payments[month]
}

// Step applies one month of debt service: interest accrues on the running
// balance, the remainder of the scheduled payment retires principal, and
// the balance floors at zero.
func (l *Loan) Step(month int) LoanStep {
	pay := l.Payment(month)
	interest := l.balance * l.annualRate / 12
	prin := pay - interest
	if prin < 0 {
		prin = 0
	}
	if prin > l.balance {
		prin = l.balance
	}
	l.balance -= prin
	return LoanStep{Payment: pay, Interest: interest, Principal: prin, Balance: l.balance}
}

// Balance returns the current outstanding balance.
func (l *Loan) Balance() float64 { return l.balance }

// Drawn returns the total principal drawn to date.
func (l *Loan) Drawn() float64 { return l.drawn }

// TrancheDraws converts a per-month eligible-spend series into staged
// draw amounts. With no minimum tranche the eligible amount is drawn as
// it appears, capped per month; with a minimum, spend accumulates in a
// bucket and fires capped draws once the bucket clears the floor. Any
// residual bucket is drawn in the final month.
func TrancheDraws(eligible []float64, rule config.StagedRule) []float64 {
	n := len(eligible)
	draws := make([]float64, n)
	if n == 0 {
		return draws
	}

	maxTranche := rule.MaxTranche
	hasCap := maxTranche > 0
	floor := rule.MinTranche

	if floor <= 0 {
		for m, e := range eligible {
			if hasCap && e > maxTranche {
				e = maxTranche
			}
			draws[m] = e
		}
		return draws
	}

	var bucket float64
	for m := 0; m < n; m++ {
		bucket += eligible[m]
		for bucket+1e-12 >= floor {
			take := bucket
			if hasCap && take > maxTranche {
				take = maxTranche
			}
			if take <= 0 {
				break
			}
			draws[m] += take
			bucket -= take
		}
	}
	if bucket > 0 {
		draws[n-1] += bucket
	}
	return draws
}

// Facility is a staged working-capital line drawn against a reserve
// floor: when cash dips below the floor the facility tops it back up,
// subject to per-draw bounds and the remaining commitment.
type Facility struct {
	Remaining float64
	Rule      config.FacilityRule
}

// NewFacility returns a facility with its full commitment available.
func NewFacility(rule config.FacilityRule) *Facility {
	return &Facility{Remaining: rule.FacilityLimit, Rule: rule}
}

// DrawFor returns the amount to draw given the current cash balance,
// decrementing the remaining commitment. Returns 0 when cash is at or
// above the reserve floor or the facility is exhausted.
func (f *Facility) DrawFor(cash float64) float64 {
	if cash >= f.Rule.ReserveFloor || f.Remaining <= 0 {
		return 0
	}
	amt := f.Rule.ReserveFloor - cash
	if amt < f.Rule.MinDraw {
		amt = f.Rule.MinDraw
	}
	if f.Rule.MaxDraw > 0 && amt > f.Rule.MaxDraw {
		amt = f.Rule.MaxDraw
	}
	if amt > f.Remaining {
		amt = f.Remaining
	}
	if amt <= 0 {
		return 0
	}
	f.Remaining -= amt
	return amt
}
