// Package config holds the simulator's typed configuration, its built-in
// defaults, and the override resolver. Downstream code never inspects raw
// untyped maps; everything is validated here once.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full effective configuration for a simulation run.
type Config struct {
	Sim        SimConfig            `toml:"simulation" json:"simulation"`
	Pricing    PricingConfig        `toml:"pricing" json:"pricing"`
	Market     MarketConfig         `toml:"market" json:"market"`
	Capacity   CapacityConfig       `toml:"capacity" json:"capacity"`
	Archetypes map[string]Archetype `toml:"archetypes" json:"archetypes"`
	Workshops  WorkshopConfig       `toml:"workshops" json:"workshops"`
	Classes    ClassConfig          `toml:"classes" json:"classes"`
	Events     EventConfig          `toml:"events" json:"events"`
	Rentals    RentalConfig         `toml:"rentals" json:"rentals"`
	Costs      CostConfig           `toml:"costs" json:"costs"`
	Staffing   StaffingConfig       `toml:"staffing" json:"staffing"`
	Loans      LoanConfig           `toml:"loans" json:"loans"`
	Tax        TaxConfig            `toml:"tax" json:"tax"`
	OwnerDraw  OwnerDrawConfig      `toml:"owner_draw" json:"owner_draw"`
	Manual     ManualConfig         `toml:"manual" json:"manual"`

	Capex     []CapexItem `toml:"capex" json:"capex"`
	Scenarios []Scenario  `toml:"scenarios" json:"scenarios"`

	RentScenarios      []float64 `toml:"rent_scenarios" json:"rent_scenarios"`
	OwnerDrawScenarios []float64 `toml:"owner_draw_scenarios" json:"owner_draw_scenarios"`

	// Extra carries unrecognized override keys through untouched so
	// forward-compatible callers can round-trip them.
	Extra map[string]any `toml:"-" json:"extra,omitempty"`
}

// SimConfig holds simulation controls.
type SimConfig struct {
	Months    int    `toml:"months" json:"months"`
	Trials    int    `toml:"trials" json:"trials"`
	Seed      int64  `toml:"seed" json:"seed"`
	JoinModel string `toml:"join_model" json:"join_model"` // "compartment" or "baseline"
}

// PricingConfig holds membership pricing and elasticity.
type PricingConfig struct {
	Price             float64 `toml:"price" json:"price"`
	ReferencePrice    float64 `toml:"reference_price" json:"reference_price"`
	JoinElasticity    float64 `toml:"join_elasticity" json:"join_elasticity"`   // normally negative
	ChurnElasticity   float64 `toml:"churn_elasticity" json:"churn_elasticity"` // normally positive
	RetailClayPerBag  float64 `toml:"retail_clay_per_bag" json:"retail_clay_per_bag"`
}

// Pool is one prospect segment: remaining head-count, monthly inflow, and
// the baseline per-capita monthly join rate.
type Pool struct {
	Size     int     `toml:"size" json:"size"`
	Inflow   int     `toml:"inflow" json:"inflow"`
	BaseRate float64 `toml:"base_rate" json:"base_rate"`
}

// Pool names. CommunityStudio additionally carries the eligible-to-switch
// sub-pool mechanic.
const (
	PoolNoAccess        = "no_access"
	PoolHomeStudio      = "home_studio"
	PoolCommunityStudio = "community_studio"
)

// MarketConfig holds market pools and join dynamics.
type MarketConfig struct {
	Pools map[string]Pool `toml:"pools" json:"pools"`

	TermMonths             int     `toml:"term_months" json:"term_months"`
	UnlockFraction         float64 `toml:"unlock_fraction" json:"unlock_fraction"`
	MaxOnboardingsPerMonth int     `toml:"max_onboardings_per_month" json:"max_onboardings_per_month"` // 0 = no cap

	WOMQ                float64 `toml:"wom_q" json:"wom_q"`
	WOMSaturation       float64 `toml:"wom_saturation" json:"wom_saturation"`
	AdoptionSigma       float64 `toml:"adoption_sigma" json:"adoption_sigma"`
	AwarenessRampMonths int     `toml:"awareness_ramp_months" json:"awareness_ramp_months"`
	AwarenessStartMult  float64 `toml:"awareness_start_mult" json:"awareness_start_mult"`
	AwarenessEndMult    float64 `toml:"awareness_end_mult" json:"awareness_end_mult"`

	BaselineJoinRate      float64 `toml:"baseline_join_rate" json:"baseline_join_rate"`
	ReferralRatePerMember float64 `toml:"referral_rate_per_member" json:"referral_rate_per_member"`
	ReferralConv          float64 `toml:"referral_conv" json:"referral_conv"`

	MaxMembers int `toml:"max_members" json:"max_members"`

	DownturnProb      float64 `toml:"downturn_prob" json:"downturn_prob"`
	DownturnJoinMult  float64 `toml:"downturn_join_mult" json:"downturn_join_mult"`
	DownturnChurnMult float64 `toml:"downturn_churn_mult" json:"downturn_churn_mult"`

	Seasonality          []float64 `toml:"seasonality" json:"seasonality"`
	NormalizeSeasonality bool      `toml:"normalize_seasonality" json:"normalize_seasonality"`
}

// Station is one capacity resource (wheels, handbuilding, glaze).
type Station struct {
	Capacity float64 `toml:"capacity" json:"capacity"`
	Alpha    float64 `toml:"alpha" json:"alpha"` // usable share of nominal capacity
	Kappa    float64 `toml:"kappa" json:"kappa"` // contention factor
}

// CapacityConfig holds station resources and per-archetype usage intensity.
type CapacityConfig struct {
	OpenHoursPerWeek float64                       `toml:"open_hours_per_week" json:"open_hours_per_week"`
	Stations         map[string]Station            `toml:"stations" json:"stations"`
	SessionsPerWeek  map[string]float64            `toml:"sessions_per_week" json:"sessions_per_week"`
	SessionHours     map[string]float64            `toml:"session_hours" json:"session_hours"`
	UsageShare       map[string]map[string]float64 `toml:"usage_share" json:"usage_share"`

	DampingBeta            float64 `toml:"damping_beta" json:"damping_beta"`
	UtilizationChurnUplift float64 `toml:"utilization_churn_uplift" json:"utilization_churn_uplift"`
}

// Archetype is a member behavior profile. Prob values are treated as a
// categorical distribution and renormalized by the sampler. Members pay
// the studio's swept price, not a per-archetype fee.
type Archetype struct {
	Prob         float64    `toml:"prob" json:"prob"`
	ClayBags     [3]float64 `toml:"clay_bags" json:"clay_bags"` // low, typical, high bags/month
	MonthlyChurn float64    `toml:"monthly_churn" json:"monthly_churn"`
}

// WorkshopConfig holds the beginner-workshop revenue stream.
type WorkshopConfig struct {
	Enabled       bool    `toml:"enabled" json:"enabled"`
	PerMonth      float64 `toml:"per_month" json:"per_month"`
	AvgAttendance int     `toml:"avg_attendance" json:"avg_attendance"`
	Fee           float64 `toml:"fee" json:"fee"`
	CostPerEvent  float64 `toml:"cost_per_event" json:"cost_per_event"`
	ConvRate      float64 `toml:"conv_rate" json:"conv_rate"`
	ConvLagMonths int     `toml:"conv_lag_months" json:"conv_lag_months"`
}

// ClassConfig holds the beginner-class revenue stream and its calendar.
type ClassConfig struct {
	Enabled             bool    `toml:"enabled" json:"enabled"`
	CalendarMode        string  `toml:"calendar_mode" json:"calendar_mode"` // "semester" or "monthly"
	CohortsPerMonth     int     `toml:"cohorts_per_month" json:"cohorts_per_month"`
	CapPerCohort        int     `toml:"cap_per_cohort" json:"cap_per_cohort"`
	FillMean            float64 `toml:"fill_mean" json:"fill_mean"`
	FillStd             float64 `toml:"fill_std" json:"fill_std"`
	Price               float64 `toml:"price" json:"price"`
	CostPerStudent      float64 `toml:"cost_per_student" json:"cost_per_student"`
	InstructorRate      float64 `toml:"instructor_rate" json:"instructor_rate"`
	HoursPerCohort      float64 `toml:"hours_per_cohort" json:"hours_per_cohort"`
	ConvRate            float64 `toml:"conv_rate" json:"conv_rate"`
	ConvLagMonths       int     `toml:"conv_lag_months" json:"conv_lag_months"`
	StartMonth          int     `toml:"start_month" json:"start_month"` // first sim month classes may run
	SemesterLength      int     `toml:"semester_length" json:"semester_length"`
	SemesterStartMonths []int   `toml:"semester_start_months" json:"semester_start_months"` // 0 = January
}

// EventConfig holds paint-a-pot style event parameters.
type EventConfig struct {
	Enabled           bool      `toml:"enabled" json:"enabled"`
	MaxPerMonth       int       `toml:"max_per_month" json:"max_per_month"`
	BaseLambda        float64   `toml:"base_lambda" json:"base_lambda"`
	TicketPrice       float64   `toml:"ticket_price" json:"ticket_price"`
	AttendeeChoices   []int     `toml:"attendee_choices" json:"attendee_choices"`
	MugCostRange      [2]float64 `toml:"mug_cost_range" json:"mug_cost_range"`
	ConsumablesPerCap float64   `toml:"consumables_per_person" json:"consumables_per_person"`
	StaffRatePerHour  float64   `toml:"staff_rate_per_hour" json:"staff_rate_per_hour"`
	HoursPerEvent     float64   `toml:"hours_per_event" json:"hours_per_event"`
}

// RentalConfig holds designated-studio rental parameters.
type RentalConfig struct {
	Units         int     `toml:"units" json:"units"`
	Price         float64 `toml:"price" json:"price"`
	BaseOccupancy float64 `toml:"base_occupancy" json:"base_occupancy"`
}

// FiringTier is one tier of the usage-based firing-fee schedule.
// UpToLbs == 0 means no upper limit (open final tier).
type FiringTier struct {
	UpToLbs float64 `toml:"up_to_lbs" json:"up_to_lbs"`
	Rate    float64 `toml:"rate" json:"rate"`
}

// CostConfig holds fixed and variable operating cost rates.
type CostConfig struct {
	Insurance     float64 `toml:"insurance" json:"insurance"`
	GlazePerMonth float64 `toml:"glaze_per_month" json:"glaze_per_month"`
	HeatingWinter float64 `toml:"heating_winter" json:"heating_winter"`
	HeatingSummer float64 `toml:"heating_summer" json:"heating_summer"`
	RentGrowthPct float64 `toml:"rent_growth_pct" json:"rent_growth_pct"` // annual, as a fraction

	CostPerKWH          float64 `toml:"cost_per_kwh" json:"cost_per_kwh"`
	KWHPerFiringPrimary float64 `toml:"kwh_per_firing_primary" json:"kwh_per_firing_primary"`
	KWHPerFiringSecond  float64 `toml:"kwh_per_firing_second" json:"kwh_per_firing_second"`
	WaterCostPerGallon  float64 `toml:"water_cost_per_gallon" json:"water_cost_per_gallon"`
	GallonsPerBagClay   float64 `toml:"gallons_per_bag_clay" json:"gallons_per_bag_clay"`
	WholesaleClayPerBag float64 `toml:"wholesale_clay_per_bag" json:"wholesale_clay_per_bag"`
	LbsPerBagClay       float64 `toml:"lbs_per_bag_clay" json:"lbs_per_bag_clay"`

	DynamicFirings      bool `toml:"dynamic_firings" json:"dynamic_firings"`
	BaseFiringsPerMonth int  `toml:"base_firings_per_month" json:"base_firings_per_month"`
	ReferenceMembers    int  `toml:"reference_members" json:"reference_members"`
	MinFiringsPerMonth  int  `toml:"min_firings_per_month" json:"min_firings_per_month"`
	MaxFiringsPerMonth  int  `toml:"max_firings_per_month" json:"max_firings_per_month"`

	FiringFeeTiers []FiringTier `toml:"firing_fee_tiers" json:"firing_fee_tiers"`

	MaintenanceBase float64 `toml:"maintenance_base" json:"maintenance_base"`
	MaintenanceStd  float64 `toml:"maintenance_std" json:"maintenance_std"`

	MarketingBase       float64 `toml:"marketing_base" json:"marketing_base"`
	MarketingRampMonths int     `toml:"marketing_ramp_months" json:"marketing_ramp_months"`
	MarketingRampMult   float64 `toml:"marketing_ramp_mult" json:"marketing_ramp_mult"`
}

// StaffingConfig holds the staff expansion step cost.
type StaffingConfig struct {
	ExpansionThreshold int     `toml:"expansion_threshold" json:"expansion_threshold"`
	CostPerMonth       float64 `toml:"cost_per_month" json:"cost_per_month"`
}

// LoanMode selects how a loan disburses.
const (
	LoanModeUpfront = "upfront"
	LoanModeStaged  = "staged"
)

// LoanTerms describes one loan instrument.
type LoanTerms struct {
	AnnualRate        float64  `toml:"annual_rate" json:"annual_rate"`
	TermYears         int      `toml:"term_years" json:"term_years"`
	IOMonths          int      `toml:"io_months" json:"io_months"`
	Mode              string   `toml:"mode" json:"mode"`
	FeePct            float64  `toml:"fee_pct" json:"fee_pct"`
	FinanceFees       bool     `toml:"finance_fees" json:"finance_fees"`
	PrincipalOverride *float64 `toml:"principal_override,omitempty" json:"principal_override,omitempty"`
}

// StagedRule governs capex-triggered tranche draws on the primary loan.
type StagedRule struct {
	DrawPct    float64 `toml:"draw_pct" json:"draw_pct"`
	MinTranche float64 `toml:"min_tranche" json:"min_tranche"`
	MaxTranche float64 `toml:"max_tranche" json:"max_tranche"` // 0 = no cap
}

// FacilityRule governs reserve-floor draws on the working-capital loan.
type FacilityRule struct {
	FacilityLimit float64 `toml:"facility_limit" json:"facility_limit"`
	MinDraw       float64 `toml:"min_draw" json:"min_draw"`
	MaxDraw       float64 `toml:"max_draw" json:"max_draw"` // 0 = no cap
	ReserveFloor  float64 `toml:"reserve_floor" json:"reserve_floor"`
}

// LoanConfig holds both loan instruments and the sizing inputs.
type LoanConfig struct {
	Primary LoanTerms `toml:"primary" json:"primary"` // equipment-secured
	Working LoanTerms `toml:"working" json:"working"` // working capital

	PackagingFee float64 `toml:"packaging_fee" json:"packaging_fee"`
	ClosingFee   float64 `toml:"closing_fee" json:"closing_fee"`

	RunwayMonths   int     `toml:"runway_months" json:"runway_months"`
	ContingencyPct float64 `toml:"contingency_pct" json:"contingency_pct"`
	ExtraBuffer    float64 `toml:"extra_buffer" json:"extra_buffer"`

	StagedRule   StagedRule   `toml:"staged_rule" json:"staged_rule"`
	FacilityRule FacilityRule `toml:"facility_rule" json:"facility_rule"`

	CapexLumpWindowMonths int     `toml:"capex_lump_window_months" json:"capex_lump_window_months"`
	DSCRCashTarget        float64 `toml:"dscr_cash_target" json:"dscr_cash_target"`
}

// Entity types for taxation.
const (
	EntitySoleProp    = "sole_prop"
	EntityPartnership = "partnership"
	EntitySCorp       = "s_corp"
	EntityCCorp       = "c_corp"
)

// TaxConfig holds entity and tax-rate parameters.
type TaxConfig struct {
	EntityType string `toml:"entity_type" json:"entity_type"`

	PersonalIncomeRate float64 `toml:"personal_income_rate" json:"personal_income_rate"`
	SEEarningsFactor   float64 `toml:"se_earnings_factor" json:"se_earnings_factor"`
	SESocSecRate       float64 `toml:"se_soc_sec_rate" json:"se_soc_sec_rate"`
	SEMedicareRate     float64 `toml:"se_medicare_rate" json:"se_medicare_rate"`
	SESocSecWageBase   float64 `toml:"se_soc_sec_wage_base" json:"se_soc_sec_wage_base"`

	SCorpOwnerSalary    float64 `toml:"scorp_owner_salary" json:"scorp_owner_salary"`
	EmployeePayrollRate float64 `toml:"employee_payroll_rate" json:"employee_payroll_rate"`
	EmployerPayrollRate float64 `toml:"employer_payroll_rate" json:"employer_payroll_rate"`

	FedCorpRate   float64 `toml:"fed_corp_rate" json:"fed_corp_rate"`
	StateCorpRate float64 `toml:"state_corp_rate" json:"state_corp_rate"`

	SalesTaxRate         float64 `toml:"sales_tax_rate" json:"sales_tax_rate"`
	PropertyTaxAnnual    float64 `toml:"property_tax_annual" json:"property_tax_annual"`
	PropertyTaxBillMonth int     `toml:"property_tax_bill_month" json:"property_tax_bill_month"`

	EstTaxRemitMonths   int `toml:"est_tax_remit_months" json:"est_tax_remit_months"`
	SalesTaxRemitMonths int `toml:"sales_tax_remit_months" json:"sales_tax_remit_months"`
}

// OwnerDrawConfig gates when the owner draw is actually paid.
// StartMonth/EndMonth are 1-based inclusive; EndMonth 0 means indefinite.
type OwnerDrawConfig struct {
	StartMonth    int `toml:"start_month" json:"start_month"`
	EndMonth      int `toml:"end_month" json:"end_month"`
	StipendMonths int `toml:"stipend_months" json:"stipend_months"`
}

// ManualConfig enables the caller-supplied membership target curve.
type ManualConfig struct {
	UseCurve bool      `toml:"use_curve" json:"use_curve"`
	Curve    []float64 `toml:"curve" json:"curve"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Sim: SimConfig{
			Months:    60,
			Trials:    100,
			Seed:      42,
			JoinModel: "compartment",
		},
		Pricing: PricingConfig{
			Price:            175,
			ReferencePrice:   175,
			JoinElasticity:   -0.6,
			ChurnElasticity:  0.3,
			RetailClayPerBag: 25,
		},
		Market: MarketConfig{
			Pools: map[string]Pool{
				PoolCommunityStudio: {Size: 70, Inflow: 4, BaseRate: 0.10},
				PoolHomeStudio:      {Size: 50, Inflow: 2, BaseRate: 0.010},
				PoolNoAccess:        {Size: 20, Inflow: 3, BaseRate: 0.040},
			},
			TermMonths:             3,
			UnlockFraction:         0.25,
			MaxOnboardingsPerMonth: 0,
			WOMQ:                   0.60,
			WOMSaturation:          60,
			AdoptionSigma:          0.20,
			AwarenessRampMonths:    4,
			AwarenessStartMult:     0.5,
			AwarenessEndMult:       1.0,
			BaselineJoinRate:       0.013,
			ReferralRatePerMember:  0.06,
			ReferralConv:           0.22,
			MaxMembers:             77,
			DownturnProb:           0.15,
			DownturnJoinMult:       0.65,
			DownturnChurnMult:      1.50,
			Seasonality:            []float64{1.1, 1.2, 1.3, 1.4, 1.3, 0.9, 0.8, 0.85, 1.3, 1.4, 1.2, 1.0},
			NormalizeSeasonality:   true,
		},
		Capacity: CapacityConfig{
			OpenHoursPerWeek: 112,
			Stations: map[string]Station{
				"wheels":       {Capacity: 8, Alpha: 0.80, Kappa: 2.0},
				"handbuilding": {Capacity: 6, Alpha: 0.50, Kappa: 3.0},
				"glaze":        {Capacity: 6, Alpha: 0.55, Kappa: 2.6},
			},
			SessionsPerWeek: map[string]float64{
				"Hobbyist": 1.0, "Committed Artist": 1.5,
				"Production Potter": 3.5, "Seasonal User": 0.75,
			},
			SessionHours: map[string]float64{
				"Hobbyist": 1.7, "Committed Artist": 2.75,
				"Production Potter": 3.8, "Seasonal User": 2.0,
			},
			UsageShare: map[string]map[string]float64{
				"Hobbyist":          {"wheels": 0.50, "handbuilding": 0.35, "glaze": 0.15},
				"Committed Artist":  {"wheels": 0.45, "handbuilding": 0.35, "glaze": 0.20},
				"Production Potter": {"wheels": 0.60, "handbuilding": 0.25, "glaze": 0.15},
				"Seasonal User":     {"wheels": 0.40, "handbuilding": 0.45, "glaze": 0.15},
			},
			DampingBeta:            4,
			UtilizationChurnUplift: 0.25,
		},
		Archetypes: map[string]Archetype{
			"Hobbyist":          {Prob: 0.35, ClayBags: [3]float64{0.25, 0.5, 1}, MonthlyChurn: 0.049 * 0.95},
			"Committed Artist":  {Prob: 0.40, ClayBags: [3]float64{1, 1.5, 2}, MonthlyChurn: 0.049 * 0.80},
			"Production Potter": {Prob: 0.10, ClayBags: [3]float64{2, 2.5, 3}, MonthlyChurn: 0.049 * 0.65},
			"Seasonal User":     {Prob: 0.15, ClayBags: [3]float64{0.25, 0.5, 1}, MonthlyChurn: 0.049 * 1.90},
		},
		Workshops: WorkshopConfig{
			Enabled:       false,
			PerMonth:      2,
			AvgAttendance: 8,
			Fee:           45,
			CostPerEvent:  60,
			ConvRate:      0.10,
			ConvLagMonths: 1,
		},
		Classes: ClassConfig{
			Enabled:             false,
			CalendarMode:        "semester",
			CohortsPerMonth:     2,
			CapPerCohort:        10,
			FillMean:            0.85,
			FillStd:             0.08,
			Price:               600,
			CostPerStudent:      40,
			InstructorRate:      30,
			HoursPerCohort:      3,
			ConvRate:            0.12,
			ConvLagMonths:       1,
			StartMonth:          0,
			SemesterLength:      3,
			SemesterStartMonths: []int{0, 3, 6, 9},
		},
		Events: EventConfig{
			Enabled:           true,
			MaxPerMonth:       4,
			BaseLambda:        3,
			TicketPrice:       75,
			AttendeeChoices:   []int{8, 10, 12},
			MugCostRange:      [2]float64{4.50, 7.50},
			ConsumablesPerCap: 2.50,
			StaffRatePerHour:  22.0,
			HoursPerEvent:     2.0,
		},
		Rentals: RentalConfig{
			Units:         2,
			Price:         300,
			BaseOccupancy: 0.3,
		},
		Costs: CostConfig{
			Insurance:           75,
			GlazePerMonth:       833.33,
			HeatingWinter:       450,
			HeatingSummer:       30,
			RentGrowthPct:       0,
			CostPerKWH:          0.2182,
			KWHPerFiringPrimary: 75,
			KWHPerFiringSecond:  110,
			WaterCostPerGallon:  0.02,
			GallonsPerBagClay:   1,
			WholesaleClayPerBag: 16.75,
			LbsPerBagClay:       25,
			DynamicFirings:      true,
			BaseFiringsPerMonth: 10,
			ReferenceMembers:    12,
			MinFiringsPerMonth:  4,
			MaxFiringsPerMonth:  12,
			FiringFeeTiers: []FiringTier{
				{UpToLbs: 20, Rate: 3.0},
				{UpToLbs: 40, Rate: 4.0},
				{UpToLbs: 0, Rate: 5.0},
			},
			MaintenanceBase:     200,
			MaintenanceStd:      150,
			MarketingBase:       300,
			MarketingRampMonths: 12,
			MarketingRampMult:   2.0,
		},
		Staffing: StaffingConfig{
			ExpansionThreshold: 50,
			CostPerMonth:       2500,
		},
		Loans: LoanConfig{
			Primary: LoanTerms{
				AnnualRate:  0.070,
				TermYears:   5,
				IOMonths:    0,
				Mode:        LoanModeUpfront,
				FeePct:      0.02,
				FinanceFees: true,
			},
			Working: LoanTerms{
				AnnualRate:  0.115,
				TermYears:   5,
				IOMonths:    0,
				Mode:        LoanModeUpfront,
				FeePct:      0.03,
				FinanceFees: true,
			},
			PackagingFee:          2500,
			ClosingFee:            1500,
			RunwayMonths:          12,
			ContingencyPct:        0.08,
			ExtraBuffer:           0,
			StagedRule:            StagedRule{DrawPct: 1.0},
			FacilityRule:          FacilityRule{},
			CapexLumpWindowMonths: 2,
			DSCRCashTarget:        1.25,
		},
		Tax: TaxConfig{
			EntityType:           EntitySoleProp,
			PersonalIncomeRate:   0.05,
			SEEarningsFactor:     0.9235,
			SESocSecRate:         0.124,
			SEMedicareRate:       0.029,
			SESocSecWageBase:     168_600,
			SCorpOwnerSalary:     4000,
			EmployeePayrollRate:  0.0765,
			EmployerPayrollRate:  0.0765,
			FedCorpRate:          0.21,
			StateCorpRate:        0.08,
			SalesTaxRate:         0.0625,
			PropertyTaxAnnual:    0,
			PropertyTaxBillMonth: 3,
			EstTaxRemitMonths:    3,
			SalesTaxRemitMonths:  3,
		},
		OwnerDraw: OwnerDrawConfig{
			StartMonth:    1,
			EndMonth:      12,
			StipendMonths: 12,
		},
		Manual: ManualConfig{},
		Capex:  nil,
		Scenarios: []Scenario{
			{Name: "Base"},
		},
		RentScenarios:      []float64{2500, 3500, 4500},
		OwnerDrawScenarios: []float64{0, 1000, 2000, 3000},
	}
}

// LoadFile reads a TOML override file and merges it onto the defaults.
// A missing file is not an error; the defaults are returned.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize repairs values that would otherwise produce undefined behavior
// downstream, per the degenerate-input contract.
func (c *Config) normalize() {
	if c.Sim.Months < 0 {
		c.Sim.Months = 0
	}
	if c.Sim.Trials < 1 {
		c.Sim.Trials = 1
	}
	if c.Sim.JoinModel != "baseline" {
		c.Sim.JoinModel = "compartment"
	}
	if c.Market.DownturnProb < 0 {
		c.Market.DownturnProb = 0
	}
	if c.Market.DownturnProb > 1 {
		c.Market.DownturnProb = 1
	}
	if len(c.Market.Seasonality) != 12 {
		c.Market.Seasonality = Default().Market.Seasonality
	}
	if len(c.RentScenarios) == 0 {
		c.RentScenarios = Default().RentScenarios
	}
	if len(c.OwnerDrawScenarios) == 0 {
		c.OwnerDrawScenarios = Default().OwnerDrawScenarios
	}
	if len(c.Scenarios) == 0 {
		c.Scenarios = []Scenario{{Name: "Base"}}
	}
}

// SeasonalityNorm returns the seasonality weights, mean-normalized when
// configured to do so.
func (c *Config) SeasonalityNorm() []float64 {
	w := c.Market.Seasonality
	out := make([]float64, len(w))
	if !c.Market.NormalizeSeasonality {
		copy(out, w)
		return out
	}
	var sum float64
	for _, v := range w {
		sum += v
	}
	mean := sum / float64(len(w))
	if mean == 0 {
		copy(out, w)
		return out
	}
	for i, v := range w {
		out[i] = v / mean
	}
	return out
}
