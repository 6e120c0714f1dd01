package sim

import (
	"math"
	"sort"
	"strings"

	"studiosim/internal/capacity"
	"studiosim/internal/config"
	"studiosim/internal/finance"
	"studiosim/internal/model"
)

// Combo is one point of the scenario sweep: a rent level, an owner draw
// level, and a grant scenario.
type Combo struct {
	Rent          float64
	OwnerDraw     float64
	ScenarioIndex int
	Scenario      config.Scenario
}

// trialState is the mutable world of one simulated trial. Everything
// here resets between trials; equipment purchases mutate the dynamic
// copies, never the configuration.
type trialState struct {
	cfg   *config.Config
	rng   *Rand
	combo Combo

	// dynamic equipment effects
	stations        map[string]config.Station
	maxMembers      int
	kilnCount       int
	clayCOGSMult    float64
	pugMillMaint    float64
	slabRollerMaint float64

	// market state
	pools      map[string]int
	csEligible int
	members    []model.Member

	// revenue stream precomputes
	workshopRevenue []float64
	workshopJoins   []int
	pendingClass    map[int]int

	// financing
	sizing     finance.Sizing
	primary    *finance.Loan
	working    *finance.Loan
	facility   *finance.Facility
	capexQueue []capexState
	capexDraws []float64
	tax        *finance.TaxState

	cash                 float64
	cumOpProfit          float64
	insolventBeforeGrant bool
}

type capexState struct {
	item      config.CapexItem
	purchased bool
}

// RunTrial simulates one full trial path and returns a row per month.
// The result is a pure function of the configuration, the combo, and
// the trial index.
func RunTrial(cfg *config.Config, combo Combo, trial int) []model.ResultRow {
	months := cfg.Sim.Months
	rows := make([]model.ResultRow, 0, months)
	if months == 0 {
		return rows
	}

	s := newTrialState(cfg, combo, trial)
	for month := 0; month < months; month++ {
		rows = append(rows, s.step(month, trial))
	}
	return rows
}

func newTrialState(cfg *config.Config, combo Combo, trial int) *trialState {
	seed := TrialSeed(cfg.Sim.Seed, combo.Rent, combo.OwnerDraw, combo.ScenarioIndex, trial)
	s := &trialState{
		cfg:          cfg,
		rng:          NewRand(seed),
		combo:        combo,
		stations:     make(map[string]config.Station, len(cfg.Capacity.Stations)),
		maxMembers:   cfg.Market.MaxMembers,
		clayCOGSMult: 1.0,
		pools:        make(map[string]int, len(cfg.Market.Pools)),
		pendingClass: make(map[int]int),
		tax:          finance.NewTaxState(cfg.Tax),
	}
	for name, st := range cfg.Capacity.Stations {
		s.stations[name] = st
	}
	for name, p := range cfg.Market.Pools {
		s.pools[name] = p.Size
	}

	months := cfg.Sim.Months
	s.workshopRevenue = make([]float64, months)
	s.workshopJoins = make([]int, months)
	if cfg.Workshops.Enabled {
		w := cfg.Workshops
		attendees := int(math.Round(w.PerMonth * float64(w.AvgAttendance)))
		net := float64(attendees)*w.Fee - w.PerMonth*w.CostPerEvent
		converts := int(math.Round(float64(attendees) * w.ConvRate))
		for t := 0; t < months; t++ {
			s.workshopRevenue[t] += net
			ct := t + w.ConvLagMonths
			if ct > months-1 {
				ct = months - 1
			}
			s.workshopJoins[ct] += converts
		}
	}

	s.sizing = finance.SizeLoans(cfg, combo.Rent, combo.OwnerDraw)
	s.primary = finance.NewLoan(cfg.Loans.Primary, months)
	s.working = finance.NewLoan(cfg.Loans.Working, months)

	if cfg.Loans.Primary.Mode == config.LoanModeUpfront {
		s.primary.DrawUpfront(s.sizing.PrimaryPrincipal)
	} else {
		lumps := config.LumpCapexByMonth(cfg.Capex, cfg.Loans.CapexLumpWindowMonths)
		eligible := make([]float64, months)
		for m, amt := range lumps {
			if m >= 0 && m < months {
				eligible[m] = amt * cfg.Loans.StagedRule.DrawPct
			}
		}
		s.capexDraws = finance.TrancheDraws(eligible, cfg.Loans.StagedRule)
	}
	if cfg.Loans.Working.Mode == config.LoanModeUpfront {
		s.working.DrawUpfront(s.sizing.WorkingPrincipal)
	} else {
		s.facility = finance.NewFacility(cfg.Loans.FacilityRule)
	}

	for _, it := range config.ActiveCapex(cfg.Capex) {
		s.capexQueue = append(s.capexQueue, capexState{item: it})
	}
	return s
}

// step advances the trial one month and emits the observation row.
func (s *trialState) step(month, trial int) model.ResultRow {
	cfg := s.cfg
	rng := s.rng

	seasonal := cfg.SeasonalityNorm()[month%12]
	isDownturn := rng.Float64() < cfg.Market.DownturnProb
	joinMult, churnMult := 1.0, 1.0
	if isDownturn {
		joinMult = cfg.Market.DownturnJoinMult
		churnMult = cfg.Market.DownturnChurnMult
	}

	priceMultJoins := priceMult(cfg.Pricing.Price, cfg.Pricing.ReferencePrice, cfg.Pricing.JoinElasticity)
	priceMultChurn := priceMult(cfg.Pricing.Price, cfg.Pricing.ReferencePrice, cfg.Pricing.ChurnElasticity)

	// ----- Classes -----
	var classGross, classCost, classNet float64
	classStudents := 0
	if isClassMonth(&cfg.Classes, month) {
		for i := 0; i < cfg.Classes.CohortsPerMonth; i++ {
			fill := rng.Normal(cfg.Classes.FillMean, cfg.Classes.FillStd)
			fill = math.Min(1, math.Max(0, fill))
			seats := int(math.Round(float64(cfg.Classes.CapPerCohort) * fill))
			classStudents += seats
			classGross += float64(seats) * cfg.Classes.Price
			classCost += float64(seats)*cfg.Classes.CostPerStudent +
				cfg.Classes.InstructorRate*cfg.Classes.HoursPerCohort
		}
		if converts := int(math.Round(float64(classStudents) * cfg.Classes.ConvRate)); converts > 0 {
			s.pendingClass[month+cfg.Classes.ConvLagMonths] += converts
		}
		classNet = math.Max(0, classGross-classCost)
	}
	classJoins := s.pendingClass[month]
	delete(s.pendingClass, month)

	// ----- Pool replenishment and community-studio unlocks -----
	for name, p := range cfg.Market.Pools {
		s.pools[name] += p.Inflow
	}
	softCap := s.softCap()
	damping := capacity.Damping(len(s.members), softCap, cfg.Capacity.DampingBeta)
	if cfg.Market.TermMonths > 0 && month > 0 && month%cfg.Market.TermMonths == 0 {
		unlock := int(math.Floor(float64(s.pools[config.PoolCommunityStudio]) * cfg.Market.UnlockFraction))
		if unlock > s.pools[config.PoolCommunityStudio] {
			unlock = s.pools[config.PoolCommunityStudio]
		}
		s.pools[config.PoolCommunityStudio] -= unlock
		s.csEligible += unlock
	}

	// ----- Joins -----
	noise := rng.MeanOneNoise(cfg.Market.AdoptionSigma)
	intentMult := seasonal * joinMult * awarenessMult(&cfg.Market, month) *
		womMult(&cfg.Market, len(s.members)) * damping * noise * priceMultJoins

	intent := func(pool string) float64 {
		rate := cfg.Market.Pools[pool].BaseRate
		if cfg.Sim.JoinModel == "compartment" {
			return hazardToProb(math.Max(0, rate*intentMult))
		}
		return rate * intentMult
	}

	joinsNoAccess := rng.Binomial(s.pools[config.PoolNoAccess], intent(config.PoolNoAccess))
	joinsHome := rng.Binomial(s.pools[config.PoolHomeStudio], intent(config.PoolHomeStudio))
	joinsCS := rng.Binomial(s.csEligible, intent(config.PoolCommunityStudio))
	s.pools[config.PoolNoAccess] -= joinsNoAccess
	s.pools[config.PoolHomeStudio] -= joinsHome
	s.csEligible -= joinsCS

	// Referral loop, bounded by remaining prospect supply.
	referralJoins := rng.Poisson(cfg.Market.ReferralRatePerMember * float64(len(s.members)) * cfg.Market.ReferralConv)
	remainingSupply := s.pools[config.PoolNoAccess] + s.pools[config.PoolHomeStudio] + s.csEligible
	if referralJoins > remainingSupply {
		referralJoins = remainingSupply
	}

	// Capacity-aware baseline trickle, only outside the compartment model.
	var bnNoAccess, bnCS, bnHome int
	if cfg.Sim.JoinModel != "compartment" {
		demand := rng.Poisson(cfg.Market.BaselineJoinRate * softCap * damping)
		supply := s.pools[config.PoolNoAccess] + s.pools[config.PoolHomeStudio] + s.csEligible
		if demand > supply {
			demand = supply
		}
		bnNoAccess, bnCS, bnHome = s.allocateAcrossPools(demand)
	}
	baselineJoins := bnNoAccess + bnCS + bnHome

	refNoAccess, refCS, refHome := s.allocateAcrossPools(referralJoins)
	referralJoins = refNoAccess + refCS + refHome

	workshopJoins := s.workshopJoins[month]
	joins := classJoins + joinsNoAccess + joinsHome + joinsCS + baselineJoins + referralJoins + workshopJoins

	// Onboarding ops cap: classes soak overflow first, then a
	// proportional rollback to the pools, unwinding referral joins
	// before baseline before organic.
	if onboardCap := cfg.Market.MaxOnboardingsPerMonth; onboardCap > 0 && joins > onboardCap {
		overflow := joins - onboardCap

		soak := overflow
		if soak > classJoins {
			soak = classJoins
		}
		classJoins -= soak
		overflow -= soak

		takeNo := joinsNoAccess + bnNoAccess + refNoAccess
		takeHome := joinsHome + bnHome + refHome
		takeCS := joinsCS + bnCS + refCS
		totalDrawn := takeNo + takeHome + takeCS
		if totalDrawn < 1 {
			totalDrawn = 1
		}

		rbNo := int(math.Round(float64(overflow) * float64(takeNo) / float64(totalDrawn)))
		rbHome := int(math.Round(float64(overflow) * float64(takeHome) / float64(totalDrawn)))
		rbCS := overflow - rbNo - rbHome

		s.pools[config.PoolNoAccess] += rbNo
		s.pools[config.PoolHomeStudio] += rbHome
		s.csEligible += rbCS

		rbNo = unwind(rbNo, &refNoAccess, &bnNoAccess, &joinsNoAccess)
		rbHome = unwind(rbHome, &refHome, &bnHome, &joinsHome)
		rbCS = unwind(rbCS, &refCS, &bnCS, &joinsCS)

		baselineJoins = bnNoAccess + bnHome + bnCS
		referralJoins = refNoAccess + refHome + refCS
		joins = classJoins + joinsNoAccess + joinsHome + joinsCS + baselineJoins + referralJoins
		if joins > onboardCap {
			joins = onboardCap
		}
	}

	// Hard member ceiling.
	if room := s.maxMembers - len(s.members); joins > room {
		joins = int(math.Max(0, float64(room)))
	}

	s.admitMembers(joins, classJoins, referralJoins, baselineJoins, workshopJoins, month)

	// ----- Churn -----
	before := len(s.members)
	utilOver := capacity.OverUtilization(len(s.members), softCap)
	scm := seasonalChurnMult(month)
	kept := s.members[:0]
	for _, m := range s.members {
		p := churnProbability(s.churnProb(m, month), churnMult, priceMultChurn,
			cfg.Capacity.UtilizationChurnUplift, utilOver, scm)
		if rng.Float64() > p {
			kept = append(kept, m)
		}
	}
	s.members = kept
	churned := before - len(s.members)

	// ----- Manual membership curve -----
	manualAdded, manualRemoved := s.applyManualCurve(month)

	departures := churned + manualRemoved
	netAdds := joins + manualAdded - departures

	// ----- Revenue -----
	var revMembership float64
	for _, m := range s.members {
		revMembership += m.MonthlyFee
	}

	rentalOccupied := 0
	if cfg.Rentals.Units > 0 {
		rentalOccupied = rng.Binomial(cfg.Rentals.Units, cfg.Rentals.BaseOccupancy)
	}
	revRentals := float64(rentalOccupied) * cfg.Rentals.Price

	var revClay, revFiring, totalClayLbs float64
	for _, m := range s.members {
		bags := rng.Triangle(m.ClayLow, m.ClayTypical, m.ClayHigh)
		revClay += bags * cfg.Pricing.RetailClayPerBag
		lbs := bags * cfg.Costs.LbsPerBagClay
		totalClayLbs += lbs
		revFiring += firingFee(cfg.Costs.FiringFeeTiers, lbs)
	}

	var eventsGross, eventsMaterials, eventsLabor float64
	eventsHeld := 0
	if cfg.Events.Enabled {
		lam := math.Max(0, cfg.Events.BaseLambda*seasonal)
		eventsHeld = rng.Poisson(lam)
		if eventsHeld > cfg.Events.MaxPerMonth {
			eventsHeld = cfg.Events.MaxPerMonth
		}
		for i := 0; i < eventsHeld; i++ {
			attendees := float64(rng.IntChoice(cfg.Events.AttendeeChoices))
			eventsGross += attendees * cfg.Events.TicketPrice
			eventsMaterials += attendees*rng.Uniform(cfg.Events.MugCostRange[0], cfg.Events.MugCostRange[1]) +
				attendees*cfg.Events.ConsumablesPerCap
			if cfg.Events.StaffRatePerHour > 0 && cfg.Events.HoursPerEvent > 0 {
				eventsLabor += cfg.Events.StaffRatePerHour * cfg.Events.HoursPerEvent
			}
		}
	}
	revEvents := math.Max(0, eventsGross-eventsMaterials-eventsLabor)

	revWorkshops := 0.0
	if cfg.Workshops.Enabled {
		revWorkshops = s.workshopRevenue[month]
	}

	totalRevenue := revMembership + revClay + revFiring + revEvents +
		revWorkshops + revRentals + classNet

	// ----- Costs -----
	bags := totalClayLbs / cfg.Costs.LbsPerBagClay
	clayCost := bags * cfg.Costs.WholesaleClayPerBag * s.clayCOGSMult
	waterCost := bags * cfg.Costs.GallonsPerBagClay * cfg.Costs.WaterCostPerGallon

	firings := firingsThisMonth(&cfg.Costs, len(s.members))
	kwhPerFiring := cfg.Costs.KWHPerFiringPrimary
	if s.kilnCount >= 2 {
		kwhPerFiring += cfg.Costs.KWHPerFiringSecond
	}
	electricityCost := float64(firings) * kwhPerFiring * cfg.Costs.CostPerKWH

	heatingCost := cfg.Costs.HeatingSummer
	if isWinter(month) {
		heatingCost = cfg.Costs.HeatingWinter
	}

	staffCost := 0.0
	if len(s.members) >= cfg.Staffing.ExpansionThreshold {
		staffCost = cfg.Staffing.CostPerMonth
	}

	maintenanceCost := cfg.Costs.MaintenanceBase + math.Max(0, rng.Normal(0, cfg.Costs.MaintenanceStd)) +
		s.pugMillMaint + s.slabRollerMaint

	marketingCost := cfg.Costs.MarketingBase
	if month < cfg.Costs.MarketingRampMonths {
		marketingCost *= cfg.Costs.MarketingRampMult
	}

	ownerSalary, employerPayroll := finance.OwnerPayroll(cfg.Tax)

	rentThisMonth := s.combo.Rent * math.Pow(1+cfg.Costs.RentGrowthPct, float64(month/12))
	fixedOpex := rentThisMonth + cfg.Costs.Insurance + cfg.Costs.GlazePerMonth + heatingCost
	variableOpex := clayCost + waterCost + electricityCost
	totalOpexProfit := fixedOpex + variableOpex + staffCost + marketingCost +
		maintenanceCost + ownerSalary + employerPayroll

	ownerDrawNow := 0.0
	if inOwnerDrawWindow(&cfg.OwnerDraw, month) && month < cfg.OwnerDraw.StipendMonths {
		ownerDrawNow = s.combo.OwnerDraw
	}

	loanPayTotal := s.primary.Payment(month) + s.working.Payment(month)
	totalOpexCash := totalOpexProfit + loanPayTotal + ownerDrawNow

	opProfit := totalRevenue - totalOpexProfit

	taxMonth := s.tax.Step(month, opProfit, revClay)
	totalOpexCash += taxMonth.PropertyTax
	totalOpexCash += taxMonth.CashPayments - taxMonth.SalesTaxRemitted
	netCashFlow := totalRevenue - totalOpexCash + taxMonth.SalesTaxCollected

	afterTax := opProfit - taxMonth.Accrued()

	dscr := math.NaN()
	dscrCash := math.NaN()
	cfads := totalRevenue - (totalOpexCash - loanPayTotal - ownerDrawNow)
	if loanPayTotal > 0 {
		dscr = opProfit / loanPayTotal
		dscrCash = cfads / loanPayTotal
	}

	// ----- Month-0 proceeds and origination fees -----
	var proceeds, feesCash float64
	if month == 0 {
		if cfg.Loans.Primary.Mode == config.LoanModeUpfront && s.sizing.PrimaryPrincipal > 0 {
			proceeds += s.sizing.PrimaryPrincipal
		}
		if cfg.Loans.Working.Mode == config.LoanModeUpfront && s.sizing.WorkingPrincipal > 0 {
			proceeds += s.sizing.WorkingPrincipal
		}
		feesCash = s.sizing.FeesCashOutflow
		s.cash += proceeds - feesCash
	}

	// ----- Capex purchases, equipment effects, staged draws -----
	capexSpend := s.executeCapex(month)
	var drawPrimary, drawWorking float64
	if cfg.Loans.Primary.Mode == config.LoanModeStaged && month < len(s.capexDraws) {
		if tranche := s.capexDraws[month]; tranche > 0 {
			s.cash += tranche
			s.primary.DrawStaged(month, tranche)
			drawPrimary = tranche
		}
	}
	if s.facility != nil {
		if draw := s.facility.DrawFor(s.cash); draw > 0 {
			s.cash += draw
			s.working.DrawStaged(month, draw)
			drawWorking = draw
		}
	}

	// ----- Apply the month -----
	s.cash += netCashFlow
	s.cumOpProfit += opProfit

	grantMonth := -1
	if s.combo.Scenario.GrantMonth != nil {
		grantMonth = *s.combo.Scenario.GrantMonth
	}
	preGrant := grantMonth < 0 || month < grantMonth
	if preGrant && s.cash < 0 {
		s.insolventBeforeGrant = true
	}
	grantReceived := 0.0
	if grantMonth >= 0 && month == grantMonth {
		grantReceived = s.combo.Scenario.GrantAmount
		s.cash += grantReceived
	}

	primaryStep := s.primary.Step(month)
	workingStep := s.working.Step(month)

	return model.ResultRow{
		Scenario:  s.combo.Scenario.Name,
		Rent:      s.combo.Rent,
		OwnerDraw: s.combo.OwnerDraw,
		Trial:     trial,
		Month:     month + 1,

		ActiveMembers: len(s.members),
		Joins:         joins,
		Departures:    departures,
		NetAdds:       netAdds,

		JoinsOrganic:   joinsNoAccess + joinsHome + joinsCS,
		JoinsReferral:  referralJoins,
		JoinsBaseline:  baselineJoins,
		JoinsWorkshops: workshopJoins,
		JoinsClasses:   classJoins,
		ManualAdds:     manualAdded,
		ManualRemovals: manualRemoved,

		RevenueMembership: revMembership,
		RevenueClay:       revClay,
		RevenueFiring:     revFiring,
		RevenueEvents:     revEvents,
		RevenueWorkshops:  revWorkshops,
		RevenueClasses:    classNet,
		RevenueRentals:    revRentals,
		TotalRevenue:      totalRevenue,

		CostFixed:       fixedOpex,
		CostVariable:    variableOpex,
		CostStaff:       staffCost,
		CostMarketing:   marketingCost,
		CostMaintenance: maintenanceCost,
		OwnerSalary:     ownerSalary,
		PayrollTax:      employerPayroll,
		OwnerDrawPaid:   ownerDrawNow,

		OperatingProfit:         opProfit,
		OperatingProfitAfterTax: afterTax,
		CumOperatingProfit:      s.cumOpProfit,
		NetCashFlow:             netCashFlow,
		CashBalance:             s.cash,
		CFADS:                   cfads,

		LoanPaymentPrimary: primaryStep.Payment,
		LoanPaymentWorking: workingStep.Payment,
		LoanPaymentTotal:   loanPayTotal,
		LoanBalancePrimary: primaryStep.Balance,
		LoanBalanceWorking: workingStep.Balance,
		LoanDrawPrimary:    drawPrimary,
		LoanDrawWorking:    drawWorking,
		LoanProceeds:       proceeds,
		FeesCashPaid:       feesCash,
		CapexSpend:         capexSpend,

		DSCROperating:        dscr,
		DSCRCash:             dscrCash,
		DSCRCashBreach100:    !math.IsNaN(dscrCash) && dscrCash < 1.00,
		DSCRCashBreachTarget: !math.IsNaN(dscrCash) && dscrCash < cfg.Loans.DSCRCashTarget,

		SETaxAccrued:      taxMonth.SETax,
		StateTaxAccrued:   taxMonth.StateIncomeTax,
		CorpTaxAccrued:    taxMonth.CorpTax,
		SalesTaxCollected: taxMonth.SalesTaxCollected,
		SalesTaxRemitted:  taxMonth.SalesTaxRemitted,
		PropertyTax:       taxMonth.PropertyTax,
		TaxPaymentsMade:   taxMonth.CashPayments,

		GrantReceived:        grantReceived,
		GrantMonth:           grantMonth,
		GrantAmount:          s.combo.Scenario.GrantAmount,
		InsolventBeforeGrant: s.insolventBeforeGrant,
		Downturn:             isDownturn,

		EventsHeld:          eventsHeld,
		ClassStudents:       classStudents,
		RentalUnitsOccupied: rentalOccupied,
	}
}

// softCap recomputes the membership soft cap from the trial's dynamic
// station state, so equipment purchases raise capacity mid-run.
func (s *trialState) softCap() float64 {
	cc := s.cfg.Capacity
	cc.Stations = s.stations
	sc, _ := capacity.SoftCap(&cc, s.cfg.Archetypes)
	return sc
}

// churnProb is the tenure-tiered monthly departure hazard: elevated in
// the onboarding window, base in steady state, stickier for long stays.
func (s *trialState) churnProb(m model.Member, month int) float64 {
	base := s.cfg.Archetypes[m.Archetype].MonthlyChurn
	switch tenure := m.Tenure(month); {
	case tenure <= 2:
		return base * 1.8
	case tenure <= 6:
		return base
	default:
		return base * 0.7
	}
}

// allocateAcrossPools spends demand against the prospect pools in
// priority order (no-access, community-eligible, home-studio) and
// returns the per-pool takes.
func (s *trialState) allocateAcrossPools(demand int) (noAccess, cs, home int) {
	noAccess = min(demand, s.pools[config.PoolNoAccess])
	s.pools[config.PoolNoAccess] -= noAccess
	spill := demand - noAccess

	cs = min(spill, s.csEligible)
	s.csEligible -= cs
	spill -= cs

	home = min(spill, s.pools[config.PoolHomeStudio])
	s.pools[config.PoolHomeStudio] -= home
	return noAccess, cs, home
}

// unwind reduces a pool's rollback against its sources, referrals first,
// then baseline, with the remainder charged to organic joins. Returns
// the organic share.
func unwind(rollback int, referral, baseline, organic *int) int {
	fromRef := min(rollback, *referral)
	*referral -= fromRef
	rollback -= fromRef

	fromBase := min(rollback, *baseline)
	*baseline -= fromBase
	rollback -= fromBase

	*organic -= rollback
	return rollback
}

// admitMembers creates joins new members with the archetype mix,
// tagging provenance in class, referral, baseline, workshop, organic
// order.
func (s *trialState) admitMembers(joins, class, referral, baseline, workshop, month int) {
	names := make([]string, 0, len(s.cfg.Archetypes))
	for name := range s.cfg.Archetypes {
		names = append(names, name)
	}
	// Map iteration order varies; fix it for determinism.
	sort.Strings(names)
	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = s.cfg.Archetypes[name].Prob
	}

	for i := 0; i < joins; i++ {
		name := names[s.rng.WeightedChoice(weights)]
		a := s.cfg.Archetypes[name]
		src := model.SourceOrganic
		switch {
		case i < class:
			src = model.SourceClass
		case i < class+referral:
			src = model.SourceReferral
		case i < class+referral+baseline:
			src = model.SourceBaseline
		case i < class+referral+baseline+workshop:
			src = model.SourceWorkshop
		}
		s.members = append(s.members, model.Member{
			Archetype:   name,
			JoinMonth:   month,
			MonthlyFee:  s.cfg.Pricing.Price,
			ClayLow:     a.ClayBags[0],
			ClayTypical: a.ClayBags[1],
			ClayHigh:    a.ClayBags[2],
			Source:      src,
		})
	}
}

// applyManualCurve forces headcount to the caller-supplied target for
// this month, adding members with the archetype mix or randomly
// removing surplus.
func (s *trialState) applyManualCurve(month int) (added, removed int) {
	mc := s.cfg.Manual
	if !mc.UseCurve || month >= len(mc.Curve) {
		return 0, 0
	}
	target := int(math.Max(0, mc.Curve[month]))
	cur := len(s.members)
	switch {
	case target > cur:
		added = target - cur
		before := len(s.members)
		s.admitMembers(added, 0, 0, 0, 0, month)
		for i := before; i < len(s.members); i++ {
			s.members[i].Source = model.SourceManual
		}
	case target < cur:
		removed = cur - target
		for i := 0; i < removed; i++ {
			idx := s.rng.src.Intn(len(s.members))
			s.members[idx] = s.members[len(s.members)-1]
			s.members = s.members[:len(s.members)-1]
		}
	}
	return added, removed
}

// executeCapex fires any queued purchases triggered this month and
// applies their equipment effects to the trial's dynamic state.
func (s *trialState) executeCapex(month int) float64 {
	var spend float64
	members := len(s.members)
	for i := range s.capexQueue {
		q := &s.capexQueue[i]
		if q.purchased {
			continue
		}
		monthOK := q.item.Month != nil && month == *q.item.Month
		countOK := q.item.MemberThreshold != nil && members >= *q.item.MemberThreshold
		if !monthOK && !countOK {
			continue
		}
		spend += q.item.Total()
		s.applyEquipmentEffect(q.item)
		q.purchased = true
	}
	if spend > 0 {
		s.cash -= spend
	}
	return spend
}

// applyEquipmentEffect mutates the dynamic trial state based on the
// purchased equipment's label.
func (s *trialState) applyEquipmentEffect(it config.CapexItem) {
	lbl := strings.ToLower(it.Label)
	cnt := it.Count
	if cnt < 1 {
		cnt = 1
	}
	if strings.Contains(lbl, "kiln") {
		s.kilnCount += cnt
	}
	if strings.Contains(lbl, "wheel") {
		if st, ok := s.stations["wheels"]; ok {
			// Count is the total wheel target, not an increment.
			if float64(cnt) > st.Capacity {
				st.Capacity = float64(cnt)
				s.stations["wheels"] = st
			}
		}
	}
	if strings.Contains(lbl, "rack") {
		// Three members per rack; count is the total rack target.
		if target := 3 * cnt; target > s.maxMembers {
			s.maxMembers = target
		}
	}
	if strings.Contains(lbl, "slab") && strings.Contains(lbl, "roll") {
		if st, ok := s.stations["handbuilding"]; ok {
			st.Capacity = math.Max(1, math.Round(st.Capacity*1.20))
			s.stations["handbuilding"] = st
		}
		s.slabRollerMaint += 10
	}
	if strings.Contains(lbl, "pug") {
		s.clayCOGSMult = 0.75
		s.pugMillMaint += 20
	}
}
