package legislature

// lawTemplate is the default shape of a bill in a category. Budget figures are
// sized for a city and scaled up by the chamber. A passed law books its budget
// effect less its implementation cost.
type lawTemplate struct {
	title   string
	support float64
	effects Effects
	cost    float64 // Implementation cost, zero when none is tracked
}

var lawTemplates = map[Category]lawTemplate{
	CategoryEconomic: {
		title: "Small Business Relief Act", support: 55,
		effects: Effects{ApprovalChange: 2, EconomicImpact: 0.3, BudgetImpact: 5e6},
		cost:    20e6,
	},
	CategoryTax: {
		title: "Tax Simplification Act", support: 48,
		effects: Effects{ApprovalChange: -1, EconomicImpact: 0.2, BudgetImpact: 30e6},
	},
	CategoryHealthcare: {
		title: "Community Health Access Act", support: 62,
		effects: Effects{ApprovalChange: 4, EconomicImpact: 0.05},
		cost:    35e6,
	},
	CategoryEducation: {
		title: "Public Schools Modernization Act", support: 65,
		effects: Effects{ApprovalChange: 3, EconomicImpact: 0.1},
		cost:    25e6,
	},
	CategoryEnvironment: {
		title: "Clean Air and Water Act", support: 58,
		effects: Effects{ApprovalChange: 2, EconomicImpact: -0.1},
		cost:    15e6,
	},
	CategoryInfrastructure: {
		title: "Roads and Bridges Renewal Act", support: 60,
		effects: Effects{ApprovalChange: 3, EconomicImpact: 0.25, BudgetImpact: 2e6},
		cost:    40e6,
	},
	CategoryPublicSafety: {
		title: "Public Safety Funding Act", support: 52,
		effects: Effects{ApprovalChange: 1},
		cost:    18e6,
	},
	CategoryJustice: {
		title: "Criminal Justice Reform Act", support: 45,
		effects: Effects{ApprovalChange: 1, BudgetImpact: -5e6},
	},
	CategorySocial: {
		title: "Housing Affordability Act", support: 57,
		effects: Effects{ApprovalChange: 3, EconomicImpact: 0.05},
		cost:    22e6,
	},
}

// Categories lists every law category in display order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for i := range categoryNames {
		out = append(out, Category(i))
	}
	return out
}

// DefaultPolicies returns the policies a new game starts with, all available.
// Costs are paid from the character's own funds.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			ID: "open-data", Title: "Open Government Data Initiative", Category: CategorySocial,
			SupportPercentage: 68,
			Effects:           Effects{ApprovalChange: 2, EconomicImpact: 0.02, BudgetImpact: -1e6},
			RepealEffects:     Effects{ApprovalChange: -3},
			Requirements:      Requirements{CostToEnact: 5_000},
		},
		{
			ID: "small-biz-grants", Title: "Small Business Grant Program", Category: CategoryEconomic,
			SupportPercentage: 61,
			Effects:           Effects{ApprovalChange: 2, EconomicImpact: 0.15, BudgetImpact: -10e6},
			RepealEffects:     Effects{ApprovalChange: -1, EconomicImpact: -0.05},
			Requirements:      Requirements{CostToEnact: 15_000},
		},
		{
			ID: "enterprise-zones", Title: "Enterprise Zones", Category: CategoryEconomic,
			SupportPercentage: 52,
			Effects:           Effects{ApprovalChange: 1, EconomicImpact: 0.25, BudgetImpact: -6e6},
			RepealEffects:     Effects{ApprovalChange: -1, EconomicImpact: -0.1},
			Requirements:      Requirements{CostToEnact: 30_000, Prerequisites: []string{"small-biz-grants"}},
		},
		{
			ID: "green-energy", Title: "Green Energy Incentives", Category: CategoryEnvironment,
			SupportPercentage: 57,
			Effects:           Effects{ApprovalChange: 2, EconomicImpact: 0.05, BudgetImpact: -12e6},
			RepealEffects:     Effects{ApprovalChange: -2, BudgetImpact: 4e6},
			Requirements:      Requirements{CostToEnact: 20_000},
		},
		{
			ID: "transit-expansion", Title: "Public Transit Expansion", Category: CategoryInfrastructure,
			SupportPercentage: 55,
			Effects:           Effects{ApprovalChange: 2, EconomicImpact: 0.12, BudgetImpact: -25e6},
			RepealEffects:     Effects{ApprovalChange: -3, EconomicImpact: -0.05},
			Requirements:      Requirements{CostToEnact: 40_000, Prerequisites: []string{"green-energy"}},
		},
		{
			ID: "school-lunch", Title: "Universal School Lunch", Category: CategoryEducation,
			SupportPercentage: 70,
			Effects:           Effects{ApprovalChange: 4, EconomicImpact: 0.02, BudgetImpact: -8e6},
			RepealEffects:     Effects{ApprovalChange: -5, BudgetImpact: 3e6},
			Requirements:      Requirements{CostToEnact: 10_000},
		},
		{
			ID: "community-policing", Title: "Community Policing Program", Category: CategoryJustice,
			SupportPercentage: 50,
			Effects:           Effects{ApprovalChange: 1, BudgetImpact: -4e6},
			RepealEffects:     Effects{ApprovalChange: -2},
			Requirements:      Requirements{CostToEnact: 8_000},
		},
		{
			ID: "sales-tax-holiday", Title: "Sales Tax Holiday", Category: CategoryTax,
			SupportPercentage: 66,
			Effects:           Effects{ApprovalChange: 3, EconomicImpact: 0.08, BudgetImpact: -9e6},
			RepealEffects:     Effects{ApprovalChange: -1, BudgetImpact: 2e6},
			Requirements:      Requirements{CostToEnact: 12_000},
		},
	}
}
