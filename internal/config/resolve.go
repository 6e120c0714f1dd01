package config

import "math"

// Resolve merges a flat key→value override mapping onto the built-in
// defaults. Keys use the upper-snake parameter names the dashboard emits.
// Overrides are applied by shallow key replacement; an override whose
// default is a mapping but whose supplied value is a scalar is discarded
// so malformed input never reaches the stochastic engine. Unrecognized
// keys are carried through on Config.Extra. The defaults table is never
// mutated.
func Resolve(overrides map[string]any) Config {
	cfg := Default()
	for key, val := range overrides {
		if !cfg.apply(key, val) {
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]any)
			}
			cfg.Extra[key] = val
		}
	}
	cfg.normalize()
	return cfg
}

// apply sets one override. Returns false when the key is unrecognized.
func (c *Config) apply(key string, val any) bool {
	switch key {
	case "MONTHS":
		setInt(&c.Sim.Months, val)
	case "N_SIMULATIONS":
		setInt(&c.Sim.Trials, val)
	case "RANDOM_SEED":
		if n, ok := asInt(val); ok {
			c.Sim.Seed = int64(n)
		}
	case "JOIN_MODEL":
		if s, ok := val.(string); ok {
			c.Sim.JoinModel = s
		}
	case "PRICE":
		setFloat(&c.Pricing.Price, val)
	case "REFERENCE_PRICE":
		setFloat(&c.Pricing.ReferencePrice, val)
	case "JOIN_PRICE_ELASTICITY":
		setFloat(&c.Pricing.JoinElasticity, val)
	case "CHURN_PRICE_ELASTICITY":
		setFloat(&c.Pricing.ChurnElasticity, val)
	case "RETAIL_CLAY_PRICE_PER_BAG":
		setFloat(&c.Pricing.RetailClayPerBag, val)

	case "MARKET_POOLS":
		// Mapping-typed knob: scalar overrides are dropped.
		if m, ok := asFloatMap(val); ok {
			for name, size := range m {
				p := c.Market.Pools[name]
				p.Size = int(size)
				c.Market.Pools[name] = p
			}
		}
	case "MARKET_POOLS_INFLOW":
		if m, ok := asFloatMap(val); ok {
			for name, inflow := range m {
				p := c.Market.Pools[name]
				p.Inflow = int(inflow)
				c.Market.Pools[name] = p
			}
		}
	case "POOL_BASE_INTENT":
		if m, ok := asFloatMap(val); ok {
			for name, rate := range m {
				p := c.Market.Pools[name]
				p.BaseRate = rate
				c.Market.Pools[name] = p
			}
		}
	case "BASELINE_RATE_NO_ACCESS":
		setPoolRate(c, PoolNoAccess, val)
	case "BASELINE_RATE_HOME":
		setPoolRate(c, PoolHomeStudio, val)
	case "BASELINE_RATE_COMMUNITY":
		setPoolRate(c, PoolCommunityStudio, val)
	case "CLASS_TERM_MONTHS":
		setInt(&c.Market.TermMonths, val)
	case "CS_UNLOCK_FRACTION_PER_TERM":
		setFloat(&c.Market.UnlockFraction, val)
	case "MAX_ONBOARDINGS_PER_MONTH":
		if val == nil {
			c.Market.MaxOnboardingsPerMonth = 0
		} else {
			setInt(&c.Market.MaxOnboardingsPerMonth, val)
		}
	case "WOM_Q":
		setFloat(&c.Market.WOMQ, val)
	case "WOM_SATURATION":
		setFloat(&c.Market.WOMSaturation, val)
	case "ADOPTION_SIGMA":
		setFloat(&c.Market.AdoptionSigma, val)
	case "AWARENESS_RAMP_MONTHS":
		setInt(&c.Market.AwarenessRampMonths, val)
	case "AWARENESS_RAMP_START_MULT":
		setFloat(&c.Market.AwarenessStartMult, val)
	case "AWARENESS_RAMP_END_MULT":
		setFloat(&c.Market.AwarenessEndMult, val)
	case "BASELINE_JOIN_RATE":
		setFloat(&c.Market.BaselineJoinRate, val)
	case "REFERRAL_RATE_PER_MEMBER":
		setFloat(&c.Market.ReferralRatePerMember, val)
	case "REFERRAL_CONV":
		setFloat(&c.Market.ReferralConv, val)
	case "MAX_MEMBERS":
		setInt(&c.Market.MaxMembers, val)
	case "DOWNTURN_PROB_PER_MONTH":
		if f, ok := asFloat(val); ok {
			c.Market.DownturnProb = math.Min(1, math.Max(0, f))
		}
	case "DOWNTURN_JOIN_MULT":
		setFloat(&c.Market.DownturnJoinMult, val)
	case "DOWNTURN_CHURN_MULT":
		setFloat(&c.Market.DownturnChurnMult, val)
	case "SEASONALITY_WEIGHTS":
		if fs, ok := asFloatSlice(val); ok && len(fs) == 12 {
			c.Market.Seasonality = fs
		}
	case "NORMALIZE_SEASONALITY":
		setBool(&c.Market.NormalizeSeasonality, val)

	case "OPEN_HOURS_PER_WEEK":
		setFloat(&c.Capacity.OpenHoursPerWeek, val)
	case "STATIONS":
		if m, ok := val.(map[string]any); ok {
			for name, raw := range m {
				sm, ok := asFloatMap(raw)
				if !ok {
					continue
				}
				st := c.Capacity.Stations[name]
				if v, ok := sm["capacity"]; ok {
					st.Capacity = v
				}
				if v, ok := sm["alpha"]; ok {
					st.Alpha = v
				}
				if v, ok := sm["kappa"]; ok {
					st.Kappa = v
				}
				c.Capacity.Stations[name] = st
			}
		}
	case "SESSIONS_PER_WEEK":
		if m, ok := asFloatMap(val); ok {
			c.Capacity.SessionsPerWeek = m
		}
	case "SESSION_HOURS":
		if m, ok := asFloatMap(val); ok {
			c.Capacity.SessionHours = m
		}
	case "USAGE_SHARE":
		if m, ok := asNestedFloatMap(val); ok {
			c.Capacity.UsageShare = m
		}
	case "CAPACITY_DAMPING_BETA":
		setFloat(&c.Capacity.DampingBeta, val)
	case "UTILIZATION_CHURN_UPLIFT":
		setFloat(&c.Capacity.UtilizationChurnUplift, val)

	case "WORKSHOPS_ENABLED":
		setBool(&c.Workshops.Enabled, val)
	case "WORKSHOPS_PER_MONTH":
		setFloat(&c.Workshops.PerMonth, val)
	case "WORKSHOP_AVG_ATTENDANCE":
		setInt(&c.Workshops.AvgAttendance, val)
	case "WORKSHOP_FEE":
		setFloat(&c.Workshops.Fee, val)
	case "WORKSHOP_COST_PER_EVENT":
		setFloat(&c.Workshops.CostPerEvent, val)
	case "WORKSHOP_CONV_RATE":
		setFloat(&c.Workshops.ConvRate, val)
	case "WORKSHOP_CONV_LAG_MO":
		setInt(&c.Workshops.ConvLagMonths, val)

	case "CLASSES_ENABLED":
		setBool(&c.Classes.Enabled, val)
	case "CLASSES_CALENDAR_MODE":
		if s, ok := val.(string); ok {
			c.Classes.CalendarMode = s
		}
	case "CLASS_COHORTS_PER_MONTH":
		setInt(&c.Classes.CohortsPerMonth, val)
	case "CLASS_CAP_PER_COHORT":
		setInt(&c.Classes.CapPerCohort, val)
	case "CLASS_FILL_MEAN":
		setFloat(&c.Classes.FillMean, val)
	case "CLASS_PRICE":
		setFloat(&c.Classes.Price, val)
	case "CLASS_COST_PER_STUDENT":
		setFloat(&c.Classes.CostPerStudent, val)
	case "CLASS_CONV_RATE":
		setFloat(&c.Classes.ConvRate, val)
	case "CLASS_CONV_LAG_MO":
		setInt(&c.Classes.ConvLagMonths, val)

	case "EVENTS_ENABLED":
		setBool(&c.Events.Enabled, val)
	case "EVENTS_MAX_PER_MONTH":
		setInt(&c.Events.MaxPerMonth, val)
	case "BASE_EVENTS_PER_MONTH_LAMBDA":
		setFloat(&c.Events.BaseLambda, val)
	case "TICKET_PRICE":
		setFloat(&c.Events.TicketPrice, val)
	case "ATTENDEES_PER_EVENT_RANGE":
		if fs, ok := asFloatSlice(val); ok && len(fs) > 0 {
			out := make([]int, len(fs))
			for i, f := range fs {
				out[i] = int(f)
			}
			c.Events.AttendeeChoices = out
		}
	case "EVENT_CONSUMABLES_PER_PERSON":
		setFloat(&c.Events.ConsumablesPerCap, val)
	case "EVENT_STAFF_RATE_PER_HOUR":
		setFloat(&c.Events.StaffRatePerHour, val)
	case "EVENT_HOURS_PER_EVENT":
		setFloat(&c.Events.HoursPerEvent, val)

	case "DESIGNATED_STUDIO_COUNT":
		setInt(&c.Rentals.Units, val)
	case "DESIGNATED_STUDIO_PRICE":
		setFloat(&c.Rentals.Price, val)
	case "DESIGNATED_STUDIO_BASE_OCCUPANCY":
		setFloat(&c.Rentals.BaseOccupancy, val)

	case "INSURANCE_COST":
		setFloat(&c.Costs.Insurance, val)
	case "GLAZE_COST_PER_MONTH":
		setFloat(&c.Costs.GlazePerMonth, val)
	case "HEATING_COST_WINTER":
		setFloat(&c.Costs.HeatingWinter, val)
	case "HEATING_COST_SUMMER":
		setFloat(&c.Costs.HeatingSummer, val)
	case "RENT_GROWTH_PCT":
		// Legacy key carries a percentage, not a fraction.
		if f, ok := asFloat(val); ok {
			c.Costs.RentGrowthPct = f / 100
		}
	case "MAINTENANCE_BASE_COST":
		setFloat(&c.Costs.MaintenanceBase, val)
	case "MAINTENANCE_RANDOM_STD":
		setFloat(&c.Costs.MaintenanceStd, val)
	case "MARKETING_COST_BASE":
		setFloat(&c.Costs.MarketingBase, val)
	case "MARKETING_RAMP_MONTHS":
		setInt(&c.Costs.MarketingRampMonths, val)
	case "MARKETING_RAMP_MULTIPLIER":
		setFloat(&c.Costs.MarketingRampMult, val)
	case "STAFF_EXPANSION_THRESHOLD":
		setInt(&c.Staffing.ExpansionThreshold, val)
	case "STAFF_COST_PER_MONTH":
		setFloat(&c.Staffing.CostPerMonth, val)

	case "LOAN_504_ANNUAL_RATE":
		setFloat(&c.Loans.Primary.AnnualRate, val)
	case "LOAN_504_TERM_YEARS":
		setInt(&c.Loans.Primary.TermYears, val)
	case "IO_MONTHS_504":
		setInt(&c.Loans.Primary.IOMonths, val)
	case "LOAN_7A_ANNUAL_RATE":
		setFloat(&c.Loans.Working.AnnualRate, val)
	case "LOAN_7A_TERM_YEARS":
		setInt(&c.Loans.Working.TermYears, val)
	case "IO_MONTHS_7A":
		setInt(&c.Loans.Working.IOMonths, val)
	case "CAPEX_LOAN_MODE":
		if s, ok := val.(string); ok {
			c.Loans.Primary.Mode = s
		}
	case "OPEX_LOAN_MODE":
		if s, ok := val.(string); ok {
			c.Loans.Working.Mode = s
		}
	case "LOAN_OVERRIDE_504":
		if f, ok := asFloat(val); ok {
			c.Loans.Primary.PrincipalOverride = &f
		}
	case "LOAN_OVERRIDE_7A":
		if f, ok := asFloat(val); ok {
			c.Loans.Working.PrincipalOverride = &f
		}
	case "FEES_UPFRONT_PCT_504":
		setFloat(&c.Loans.Primary.FeePct, val)
	case "FEES_UPFRONT_PCT_7A":
		setFloat(&c.Loans.Working.FeePct, val)
	case "FINANCE_FEES_504":
		setBool(&c.Loans.Primary.FinanceFees, val)
	case "FINANCE_FEES_7A":
		setBool(&c.Loans.Working.FinanceFees, val)
	case "FEES_PACKAGING":
		setFloat(&c.Loans.PackagingFee, val)
	case "FEES_CLOSING":
		setFloat(&c.Loans.ClosingFee, val)
	case "RUNWAY_MONTHS":
		setInt(&c.Loans.RunwayMonths, val)
	case "LOAN_CONTINGENCY_PCT":
		setFloat(&c.Loans.ContingencyPct, val)
	case "EXTRA_BUFFER":
		setFloat(&c.Loans.ExtraBuffer, val)
	case "CAPEX_LUMP_WINDOW_MONTHS":
		setInt(&c.Loans.CapexLumpWindowMonths, val)
	case "DSCR_CASH_TARGET":
		setFloat(&c.Loans.DSCRCashTarget, val)
	case "LOAN_STAGED_RULE":
		if m, ok := asFloatMap(val); ok {
			if v, ok := m["draw_pct_of_purchase"]; ok {
				c.Loans.StagedRule.DrawPct = v
			}
			if v, ok := m["min_tranche"]; ok {
				c.Loans.StagedRule.MinTranche = v
			}
			if v, ok := m["max_tranche"]; ok {
				c.Loans.StagedRule.MaxTranche = v
			}
		}
	case "LOAN_STAGED_RULE_OPEX":
		if m, ok := asFloatMap(val); ok {
			if v, ok := m["facility_limit"]; ok {
				c.Loans.FacilityRule.FacilityLimit = v
			}
			if v, ok := m["min_draw"]; ok {
				c.Loans.FacilityRule.MinDraw = v
			}
			if v, ok := m["max_draw"]; ok {
				c.Loans.FacilityRule.MaxDraw = v
			}
			if v, ok := m["reserve_floor"]; ok {
				c.Loans.FacilityRule.ReserveFloor = v
			}
		}

	case "ENTITY_TYPE":
		if s, ok := val.(string); ok {
			c.Tax.EntityType = s
		}
	case "MA_PERSONAL_INCOME_TAX_RATE":
		setFloat(&c.Tax.PersonalIncomeRate, val)
	case "SE_SOC_SEC_WAGE_BASE":
		setFloat(&c.Tax.SESocSecWageBase, val)
	case "SCORP_OWNER_SALARY_PER_MONTH":
		setFloat(&c.Tax.SCorpOwnerSalary, val)
	case "MA_SALES_TAX_RATE":
		setFloat(&c.Tax.SalesTaxRate, val)
	case "PERSONAL_PROPERTY_TAX_ANNUAL":
		setFloat(&c.Tax.PropertyTaxAnnual, val)
	case "PERSONAL_PROPERTY_TAX_BILL_MONTH":
		setInt(&c.Tax.PropertyTaxBillMonth, val)
	case "ESTIMATED_TAX_REMIT_FREQUENCY_MONTHS":
		setInt(&c.Tax.EstTaxRemitMonths, val)
	case "SALES_TAX_REMIT_FREQUENCY_MONTHS":
		setInt(&c.Tax.SalesTaxRemitMonths, val)

	case "OWNER_DRAW_START_MONTH":
		setInt(&c.OwnerDraw.StartMonth, val)
	case "OWNER_DRAW_END_MONTH":
		if val == nil {
			c.OwnerDraw.EndMonth = 0
		} else {
			setInt(&c.OwnerDraw.EndMonth, val)
		}
	case "OWNER_STIPEND_MONTHS":
		setInt(&c.OwnerDraw.StipendMonths, val)

	case "USE_MANUAL_MEMBERSHIP_CURVE":
		setBool(&c.Manual.UseCurve, val)
	case "MANUAL_MEMBERSHIP_CURVE":
		if fs, ok := asFloatSlice(val); ok {
			c.Manual.Curve = fs
		}

	case "CAPEX_ITEMS":
		if items, ok := asCapexItems(val); ok {
			c.Capex = items
		}
	case "SCENARIO_CONFIGS":
		if scens, ok := asScenarios(val); ok && len(scens) > 0 {
			c.Scenarios = scens
		}
	case "RENT_SCENARIOS":
		if fs, ok := asFloatSlice(val); ok && len(fs) > 0 {
			c.RentScenarios = fs
		}
	case "OWNER_DRAW_SCENARIOS":
		if fs, ok := asFloatSlice(val); ok && len(fs) > 0 {
			c.OwnerDrawScenarios = fs
		}
	case "MEMBER_ARCHETYPES":
		if m, ok := val.(map[string]any); ok {
			arch := make(map[string]Archetype, len(m))
			for name, raw := range m {
				am, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				a := c.Archetypes[name]
				if v, ok := asFloat(am["prob"]); ok {
					a.Prob = v
				}
				if v, ok := asFloat(am["monthly_churn"]); ok {
					a.MonthlyChurn = v
				}
				if fs, ok := asFloatSlice(am["clay_bags"]); ok && len(fs) == 3 {
					a.ClayBags = [3]float64{fs[0], fs[1], fs[2]}
				}
				arch[name] = a
			}
			if len(arch) > 0 {
				c.Archetypes = arch
			}
		}

	default:
		return false
	}
	return true
}

func setPoolRate(c *Config, pool string, val any) {
	if f, ok := asFloat(val); ok {
		p := c.Market.Pools[pool]
		p.BaseRate = f
		c.Market.Pools[pool] = p
	}
}

func setFloat(dst *float64, val any) {
	if f, ok := asFloat(val); ok {
		*dst = f
	}
}

func setInt(dst *int, val any) {
	if n, ok := asInt(val); ok {
		*dst = n
	}
}

func setBool(dst *bool, val any) {
	if b, ok := val.(bool); ok {
		*dst = b
	}
}

func asFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func asFloatSlice(val any) ([]float64, bool) {
	switch v := val.(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, 0, len(v))
		for _, raw := range v {
			f, ok := asFloat(raw)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func asFloatMap(val any) (map[string]float64, bool) {
	switch v := val.(type) {
	case map[string]float64:
		out := make(map[string]float64, len(v))
		for k, f := range v {
			out[k] = f
		}
		return out, true
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k, raw := range v {
			f, ok := asFloat(raw)
			if !ok {
				return nil, false
			}
			out[k] = f
		}
		return out, true
	}
	return nil, false
}

func asNestedFloatMap(val any) (map[string]map[string]float64, bool) {
	m, ok := val.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]map[string]float64, len(m))
	for k, raw := range m {
		inner, ok := asFloatMap(raw)
		if !ok {
			return nil, false
		}
		out[k] = inner
	}
	return out, true
}
