package persona

// Catalog persona IDs.
const (
	TechEarlyAdopter      = "tech_early_adopter"
	BudgetConsciousFamily = "budget_conscious_family"
	LuxuryConsumer        = "luxury_consumer"
)

// Catalog is the built-in set of market segments, in menu order.
var Catalog = []Profile{
	{
		ID:            TechEarlyAdopter,
		Demographic:   "Age 28-35, College educated, Urban, Tech professional, Income $75K-100K",
		Psychographic: "Innovation-focused, Values efficiency and cutting-edge features, Willing to pay premium for quality",
		Behavioral:    "Early adopter, Heavy social media user, Researches products extensively before purchase",
		Description:   "Tech-savvy professional, early adopter, values innovation",
	},
	{
		ID:            BudgetConsciousFamily,
		Demographic:   "Age 35-45, Married with children, Suburban, Middle management, Income $50K-75K",
		Psychographic: "Value-oriented, Family-first mindset, Practical decision maker",
		Behavioral:    "Comparison shops extensively, Reads reviews, Prefers established brands",
		Description:   "Family-oriented, value-conscious, practical decision maker",
	},
	{
		ID:            LuxuryConsumer,
		Demographic:   "Age 45-55, High income professional, Urban/suburban, Income $150K+",
		Psychographic: "Status-conscious, Quality-focused, Brand loyal, Convenience-oriented",
		Behavioral:    "Premium buyer, Limited price sensitivity, Values exclusivity and service",
		Description:   "High-income professional, quality-focused, brand loyal",
	},
}

// Default returns a registry holding the built-in catalog.
func Default() *Registry {
	r, err := NewRegistry(Catalog...)
	if err != nil {
		// Catalog IDs are constants; a failure here is a programming error.
		panic(err)
	}
	return r
}
