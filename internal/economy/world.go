package economy

import "sort"

// Country is a row in the world comparison table.
type Country struct {
	Name         string  `json:"name"`
	GDP          float64 `json:"gdp"`
	Population   float64 `json:"population"`
	Unemployment float64 `json:"unemployment"`
	Inflation    float64 `json:"inflation"`
	GrowthRate   float64 `json:"growth_rate"` // Fractional GDP growth per year
}

// advance grows the country by one day of its trend.
func (c *Country) advance() {
	c.GDP *= 1 + c.GrowthRate/365
	c.Population *= 1 + 0.004/365
}

// GDPPerCapita returns output per resident.
func (c Country) GDPPerCapita() float64 {
	if c.Population <= 0 {
		return 0
	}
	return c.GDP / c.Population
}

// DefaultCountries returns the comparison table at game start.
func DefaultCountries() []Country {
	return []Country{
		{Name: "China", GDP: 1.78e13, Population: 1.41e9, Unemployment: 5.2, Inflation: 0.2, GrowthRate: 0.045},
		{Name: "Germany", GDP: 4.5e12, Population: 8.4e7, Unemployment: 3.0, Inflation: 2.9, GrowthRate: 0.005},
		{Name: "Japan", GDP: 4.2e12, Population: 1.24e8, Unemployment: 2.6, Inflation: 2.8, GrowthRate: 0.008},
		{Name: "India", GDP: 3.7e12, Population: 1.43e9, Unemployment: 7.8, Inflation: 5.4, GrowthRate: 0.065},
		{Name: "United Kingdom", GDP: 3.3e12, Population: 6.8e7, Unemployment: 4.2, Inflation: 3.9, GrowthRate: 0.007},
		{Name: "France", GDP: 3.0e12, Population: 6.8e7, Unemployment: 7.3, Inflation: 2.3, GrowthRate: 0.009},
		{Name: "Brazil", GDP: 2.2e12, Population: 2.16e8, Unemployment: 7.8, Inflation: 4.5, GrowthRate: 0.025},
		{Name: "Canada", GDP: 2.1e12, Population: 4.0e7, Unemployment: 5.8, Inflation: 3.1, GrowthRate: 0.012},
		{Name: "Mexico", GDP: 1.8e12, Population: 1.29e8, Unemployment: 2.8, Inflation: 4.7, GrowthRate: 0.02},
	}
}

// Countries returns a copy of the comparison table.
func (m *Model) Countries() []Country {
	out := make([]Country, len(m.countries))
	copy(out, m.countries)
	return out
}

// HomeCountry is the name the federal economy appears under in comparisons.
const HomeCountry = "Home"

// Compare returns the comparison table with the federal economy included,
// ordered by GDP descending.
func (m *Model) Compare() []Country {
	fed := m.Series(Federal)
	rows := m.Countries()
	rows = append(rows, Country{
		Name:         HomeCountry,
		GDP:          fed.GDP.Current(),
		Population:   fed.Population,
		Unemployment: fed.Unemployment.Current(),
		Inflation:    fed.Inflation.Current(),
		GrowthRate:   fed.GDP.Change(30),
	})
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].GDP > rows[b].GDP })
	return rows
}

// WorldRank returns the federal economy's 1-based GDP rank.
func (m *Model) WorldRank() int {
	for i, c := range m.Compare() {
		if c.Name == HomeCountry {
			return i + 1
		}
	}
	return 0
}
