// Package economy provides the macroeconomic model: federal, state, and local
// indicator series advanced one simulated day at a time, plus the world
// comparison table and display helpers.
package economy

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ojrac/opensimplex-go"
	"golang.org/x/exp/constraints"

	"github.com/talgya/capitol/internal/entropy"
)

// Jurisdiction is a level of government with its own economy and treasury.
type Jurisdiction uint8

const (
	Federal Jurisdiction = iota
	State
	Local
)

// Jurisdictions lists every jurisdiction in tick order.
var Jurisdictions = []Jurisdiction{Federal, State, Local}

// String returns the jurisdiction name.
func (j Jurisdiction) String() string {
	switch j {
	case Federal:
		return "federal"
	case State:
		return "state"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (j Jurisdiction) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *Jurisdiction) UnmarshalText(b []byte) error {
	v, err := ParseJurisdiction(string(b))
	if err != nil {
		return err
	}
	*j = v
	return nil
}

// ParseJurisdiction maps a name back to a Jurisdiction.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	for _, j := range Jurisdictions {
		if j.String() == s {
			return j, nil
		}
	}
	return 0, fmt.Errorf("unknown jurisdiction %q", s)
}

// Params tunes the daily dynamics. Rates are annual unless noted.
type Params struct {
	TrendGrowth         float64 `json:"trend_growth" yaml:"trend_growth"`                 // Fractional GDP growth per year
	NaturalUnemployment float64 `json:"natural_unemployment" yaml:"natural_unemployment"` // Percent
	InflationTarget     float64 `json:"inflation_target" yaml:"inflation_target"`         // Percent
	Okun                float64 `json:"okun" yaml:"okun"`                                 // Unemployment points per point of growth gap
	Volatility          float64 `json:"volatility" yaml:"volatility"`                     // Multiplier on all noise
	CycleAmplitude      float64 `json:"cycle_amplitude" yaml:"cycle_amplitude"`           // Peak growth swing from the business cycle
	CyclePeriodDays     float64 `json:"cycle_period_days" yaml:"cycle_period_days"`
	CycleSeed           int64   `json:"cycle_seed" yaml:"-"`
}

// DefaultParams returns a calm, slowly growing economy.
func DefaultParams() Params {
	return Params{
		TrendGrowth:         0.02,
		NaturalUnemployment: 4.5,
		InflationTarget:     2.0,
		Okun:                0.5,
		Volatility:          1.0,
		CycleAmplitude:      0.015,
		CyclePeriodDays:     720,
	}
}

// Impact is a one-shot adjustment queued by legislation and folded into the
// next tick's drift.
type Impact struct {
	GDPPercent         float64 `json:"gdp_percent"`
	UnemploymentPoints float64 `json:"unemployment_points"`
	InflationPoints    float64 `json:"inflation_points"`
}

func (i Impact) plus(o Impact) Impact {
	return Impact{
		GDPPercent:         i.GDPPercent + o.GDPPercent,
		UnemploymentPoints: i.UnemploymentPoints + o.UnemploymentPoints,
		InflationPoints:    i.InflationPoints + o.InflationPoints,
	}
}

// Series holds the indicators for one jurisdiction.
type Series struct {
	Jurisdiction     Jurisdiction `json:"jurisdiction"`
	GDP              *Indicator   `json:"gdp"`
	Unemployment     *Indicator   `json:"unemployment"`
	Inflation        *Indicator   `json:"inflation"`
	InterestRate     *Indicator   `json:"interest_rate"`
	Population       float64      `json:"population"`
	PopulationGrowth float64      `json:"population_growth"` // Fractional per year
	GDPFloor         float64      `json:"gdp_floor"`
	GDPCeiling       float64      `json:"gdp_ceiling"`
}

// Indicators returns the series' indicators in a fixed order.
func (s *Series) Indicators() []*Indicator {
	return []*Indicator{s.GDP, s.Unemployment, s.Inflation, s.InterestRate}
}

// Bounds for the rate indicators, in percent.
const (
	unemploymentFloor, unemploymentCeiling = 1.5, 30.0
	inflationFloor, inflationCeiling       = -5.0, 40.0
	rateFloor, rateCeiling                 = 0.0, 25.0

	// Daily noise standard deviations before Volatility scaling.
	gdpNoise          = 0.0006 // Fraction of GDP
	unemploymentNoise = 0.01
	inflationNoise    = 0.01
	rateNoise         = 0.004

	neutralRealRate = 1.0
)

type opening struct {
	gdp, unemployment, inflation, rate float64
	population, popGrowth             float64
}

var openings = map[Jurisdiction]opening{
	Federal: {gdp: 2.3e13, unemployment: 4.0, inflation: 3.0, rate: 5.25, population: 3.35e8, popGrowth: 0.005},
	State:   {gdp: 3.0e12, unemployment: 4.5, inflation: 3.2, rate: 4.75, population: 3.9e7, popGrowth: 0.004},
	Local:   {gdp: 6.0e10, unemployment: 5.0, inflation: 3.1, rate: 4.5, population: 8.5e5, popGrowth: 0.006},
}

// Reading is the latest value of every indicator for one jurisdiction.
type Reading struct {
	GDP          float64 `json:"gdp"`
	GDPGrowth    float64 `json:"gdp_growth"` // Annualized percent over the last 30 days
	Unemployment float64 `json:"unemployment"`
	Inflation    float64 `json:"inflation"`
	InterestRate float64 `json:"interest_rate"`
	Population   float64 `json:"population"`
}

// Snapshot is what one tick returns.
type Snapshot struct {
	Date     time.Time                `json:"date"`
	Day      int                      `json:"day"`
	Readings map[Jurisdiction]Reading `json:"readings"`
}

// For returns the reading for j.
func (s Snapshot) For(j Jurisdiction) Reading {
	return s.Readings[j]
}

func (s *Series) clone() *Series {
	cp := *s
	cp.GDP = s.GDP.clone()
	cp.Unemployment = s.Unemployment.clone()
	cp.Inflation = s.Inflation.clone()
	cp.InterestRate = s.InterestRate.clone()
	return &cp
}

// Model owns the indicator series. Not safe for concurrent use.
type Model struct {
	params    Params
	rng       *entropy.Source
	cycle     opensimplex.Noise
	series    []*Series
	countries []Country
	pending   map[Jurisdiction]Impact
	day       int
}

// NewModel seeds every jurisdiction at its opening values on start.
func NewModel(p Params, src *entropy.Source, start time.Time) *Model {
	if p.CycleSeed == 0 {
		p.CycleSeed = src.Seed() + 500
	}
	m := &Model{
		params:    p,
		rng:       src,
		cycle:     opensimplex.New(p.CycleSeed),
		countries: DefaultCountries(),
		pending:   make(map[Jurisdiction]Impact),
	}
	for _, j := range Jurisdictions {
		o := openings[j]
		m.series = append(m.series, &Series{
			Jurisdiction:     j,
			GDP:              NewIndicator("gdp", start, o.gdp),
			Unemployment:     NewIndicator("unemployment", start, o.unemployment),
			Inflation:        NewIndicator("inflation", start, o.inflation),
			InterestRate:     NewIndicator("interest_rate", start, o.rate),
			Population:       o.population,
			PopulationGrowth: o.popGrowth,
			GDPFloor:         o.gdp * 0.2,
			GDPCeiling:       o.gdp * 25,
		})
	}
	return m
}

// Series returns the series for j.
func (m *Model) Series(j Jurisdiction) *Series {
	for _, s := range m.series {
		if s.Jurisdiction == j {
			return s
		}
	}
	return nil
}

// Params returns the dynamics the model runs with.
func (m *Model) Params() Params {
	return m.params
}

// Day returns the number of ticks applied.
func (m *Model) Day() int {
	return m.day
}

// Shock queues an impact for j that the next tick applies once.
func (m *Model) Shock(j Jurisdiction, imp Impact) {
	m.pending[j] = m.pending[j].plus(imp)
}

type nextValues struct {
	gdp, unemployment, inflation, rate, population float64
}

// Tick advances every indicator by one period dated date. All values are
// computed before anything is appended; if any would be non-finite, nothing
// changes and ErrNonFinite is returned.
func (m *Model) Tick(date time.Time) (Snapshot, error) {
	next := make([]nextValues, len(m.series))
	for k, s := range m.series {
		if !date.After(s.GDP.Last().Date) {
			return Snapshot{}, fmt.Errorf("tick %s: %w", date.Format(time.DateOnly), ErrNonMonotonic)
		}
		nv, err := m.step(s)
		if err != nil {
			slog.Error("economic tick rejected",
				"jurisdiction", s.Jurisdiction,
				"day", m.day+1,
				"error", err,
			)
			return Snapshot{}, err
		}
		next[k] = nv
	}

	for k, s := range m.series {
		s.commit(date, next[k])
	}
	for i := range m.countries {
		m.countries[i].advance()
	}
	m.pending = make(map[Jurisdiction]Impact)
	m.day++

	return m.Snapshot(), nil
}

// commit appends one period to every indicator of s. Tick has already checked
// the values are finite and the date is later, so a failed append means the
// history is corrupt and the model panics rather than run on half a day.
func (s *Series) commit(date time.Time, nv nextValues) {
	err := errors.Join(
		s.GDP.Append(date, nv.gdp),
		s.Unemployment.Append(date, nv.unemployment),
		s.Inflation.Append(date, nv.inflation),
		s.InterestRate.Append(date, nv.rate),
	)
	if err != nil {
		panic(fmt.Sprintf("economy: %s series integrity: %v", s.Jurisdiction, err))
	}
	s.Population = nv.population
}

// step computes next values for one jurisdiction without touching history.
func (m *Model) step(s *Series) (nextValues, error) {
	p := m.params
	imp := m.pending[s.Jurisdiction]

	cycle := m.cycle.Eval2(float64(m.day)/p.CyclePeriodDays, float64(s.Jurisdiction)*3.7)
	// Growth gap vs trend, annualized percent. Noise is left out so labor and
	// prices follow the cycle and policy rather than daily jitter.
	gapPct := p.CycleAmplitude*cycle*100 + imp.GDPPercent

	gdp := s.GDP.Current()
	gdpDrift := gdp*p.TrendGrowth/365 + gdp*p.CycleAmplitude*cycle/365 + gdp*imp.GDPPercent/100
	gdpNext := gdp + gdpDrift + gdp*m.rng.Normal(gdpNoise*p.Volatility)

	u := s.Unemployment.Current()
	uDrift := -p.Okun*gapPct/365 + (p.NaturalUnemployment-u)*0.002 + imp.UnemploymentPoints
	uNext := u + uDrift + m.rng.Normal(unemploymentNoise*p.Volatility)

	infl := s.Inflation.Current()
	inflDrift := (p.InflationTarget-infl)*0.003 + 0.1*gapPct/365 + imp.InflationPoints
	inflNext := infl + inflDrift + m.rng.Normal(inflationNoise*p.Volatility)

	r := s.InterestRate.Current()
	taylor := neutralRealRate + infl + 0.5*(infl-p.InflationTarget) + 0.5*gapPct
	rNext := r + (taylor-r)*0.01 + m.rng.Normal(rateNoise*p.Volatility)

	popNext := s.Population * (1 + s.PopulationGrowth/365)

	for _, v := range []float64{gdpNext, uNext, inflNext, rNext, popNext} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nextValues{}, fmt.Errorf("%s: %w", s.Jurisdiction, ErrNonFinite)
		}
	}

	return nextValues{
		gdp:          clamp(gdpNext, s.GDPFloor, s.GDPCeiling),
		unemployment: clamp(uNext, unemploymentFloor, unemploymentCeiling),
		inflation:    clamp(inflNext, inflationFloor, inflationCeiling),
		rate:         clamp(rNext, rateFloor, rateCeiling),
		population:   popNext,
	}, nil
}

// Snapshot returns the latest readings without advancing.
func (m *Model) Snapshot() Snapshot {
	snap := Snapshot{
		Day:      m.day,
		Readings: make(map[Jurisdiction]Reading, len(m.series)),
	}
	for _, s := range m.series {
		snap.Date = s.GDP.Last().Date
		snap.Readings[s.Jurisdiction] = Reading{
			GDP:          s.GDP.Current(),
			GDPGrowth:    annualize(s.GDP.Change(30), min(30, s.GDP.Len()-1)),
			Unemployment: s.Unemployment.Current(),
			Inflation:    s.Inflation.Current(),
			InterestRate: s.InterestRate.Current(),
			Population:   s.Population,
		}
	}
	return snap
}

// annualize converts a fractional change over days into an annual percent.
func annualize(change float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return (math.Pow(1+change, 365/float64(days)) - 1) * 100
}

func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ModelState is the serializable form of a Model.
type ModelState struct {
	Params    Params                  `json:"params"`
	Day       int                     `json:"day"`
	Series    []*Series               `json:"series"`
	Countries []Country               `json:"countries"`
	Pending   map[Jurisdiction]Impact `json:"pending,omitempty"`
}

// State captures the model for a snapshot.
func (m *Model) State() ModelState {
	pending := make(map[Jurisdiction]Impact, len(m.pending))
	for j, imp := range m.pending {
		pending[j] = imp
	}
	countries := make([]Country, len(m.countries))
	copy(countries, m.countries)
	series := make([]*Series, 0, len(m.series))
	for _, s := range m.series {
		series = append(series, s.clone())
	}
	return ModelState{
		Params:    m.params,
		Day:       m.day,
		Series:    series,
		Countries: countries,
		Pending:   pending,
	}
}

// RestoreModel rebuilds a model from a snapshot, validating every series.
func RestoreModel(st ModelState, src *entropy.Source) (*Model, error) {
	if len(st.Series) != len(Jurisdictions) {
		return nil, fmt.Errorf("restore economy: want %d series, got %d", len(Jurisdictions), len(st.Series))
	}
	for _, s := range st.Series {
		for _, ind := range s.Indicators() {
			if ind == nil {
				return nil, fmt.Errorf("restore economy: %s series incomplete", s.Jurisdiction)
			}
			if err := ind.Validate(); err != nil {
				return nil, fmt.Errorf("restore economy: %w", err)
			}
		}
	}
	pending := st.Pending
	if pending == nil {
		pending = make(map[Jurisdiction]Impact)
	}
	return &Model{
		params:    st.Params,
		rng:       src,
		cycle:     opensimplex.New(st.Params.CycleSeed),
		series:    st.Series,
		countries: st.Countries,
		pending:   pending,
		day:       st.Day,
	}, nil
}
