package govstats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/treasury"
)

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func healthyInputs() Inputs {
	l := treasury.New(economy.Local, decimal.NewFromInt(1_000_000), jan1, 2025)
	return Inputs{
		Date:                jan1,
		Treasury:            l.Summary(6e10, 5),
		Economy:             economy.Reading{GDPGrowth: 3, Unemployment: 4, Inflation: 2},
		InflationTarget:     2,
		NaturalUnemployment: 4.5,
		Legislature:         legislature.Accumulation{PassedLaws: 4, EnactedPolicies: 5, PassRate: 100},
		Approval:            90,
	}
}

func TestRateThresholds(t *testing.T) {
	assert.Equal(t, RatingExcellent, Rate(80))
	assert.Equal(t, RatingGood, Rate(79.99))
	assert.Equal(t, RatingGood, Rate(60))
	assert.Equal(t, RatingFair, Rate(40))
	assert.Equal(t, RatingPoor, Rate(20))
	assert.Equal(t, RatingCritical, Rate(19.9))
}

func TestOverallIsMeanOfDepartments(t *testing.T) {
	s := Compute(healthyInputs())
	require.Len(t, s.Departments, 5)
	sum := 0.0
	for _, d := range s.Departments {
		assert.GreaterOrEqual(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 100.0)
		assert.Equal(t, Rate(d.Score), d.Rating)
		sum += d.Score
	}
	assert.InDelta(t, sum/5, s.Overall, 1e-9)
	assert.Equal(t, RatingExcellent, s.Rating)
	assert.Equal(t, economy.Local, s.Jurisdiction)
}

func TestHealthyDepartments(t *testing.T) {
	s := Compute(healthyInputs())
	labor, ok := s.Department(Labor)
	require.True(t, ok)
	assert.InDelta(t, 100, labor.Score, 1e-9)

	econ, _ := s.Department(Economy)
	assert.InDelta(t, 0.5*80+0.5*100, econ.Score, 1e-9)

	public, _ := s.Department(Public)
	assert.InDelta(t, 90, public.Score, 1e-9)
}

func TestFinanceFallsWithDebt(t *testing.T) {
	in := healthyInputs()
	good, _ := Compute(in).Department(Finance)

	l := treasury.New(economy.Local, decimal.Zero, jan1, 2025)
	_, err := l.ApplyBudget(decimal.NewFromInt(-60e9), "stimulus", 2025, jan1)
	require.NoError(t, err)
	in.Treasury = l.Summary(6e10, 5)
	bad, _ := Compute(in).Department(Finance)

	assert.Greater(t, good.Score, bad.Score)
	assert.InDelta(t, 0.6*(100*(1-100.0/150))+0.4*0, bad.Score, 1e-6)
}

func TestNoLegislativeRecordIsNeutral(t *testing.T) {
	in := healthyInputs()
	in.Legislature = legislature.Accumulation{}
	d, _ := Compute(in).Department(Legislative)
	assert.InDelta(t, 0.7*50, d.Score, 1e-9)
}

func TestAggregatorKeepsLastOnly(t *testing.T) {
	var a Aggregator
	assert.Nil(t, a.Last())

	first := a.Update(healthyInputs())
	in := healthyInputs()
	in.Approval = 10
	second := a.Update(in)

	got := a.Last()
	require.NotNil(t, got)
	assert.Equal(t, second.Overall, got.Overall)
	assert.NotEqual(t, first.Overall, got.Overall)
}
