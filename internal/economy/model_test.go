package economy

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/capitol/internal/entropy"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return start.AddDate(0, 0, n)
}

func TestTickAppendsOnePointPerIndicator(t *testing.T) {
	m := NewModel(DefaultParams(), entropy.New(1), start)

	for n := 1; n <= 60; n++ {
		before := m.Series(Federal).GDP.Len()
		snap, err := m.Tick(day(n))
		require.NoError(t, err)

		for _, j := range Jurisdictions {
			s := m.Series(j)
			for _, ind := range s.Indicators() {
				assert.Equal(t, before+1, ind.Len(), "%s %s", j, ind.Name)
				assert.Equal(t, ind.History[len(ind.History)-1].Value, ind.Current())
			}
			assert.Equal(t, s.GDP.Current(), snap.For(j).GDP)
		}
	}
	assert.Equal(t, 60, m.Day())
}

func TestTickStaysWithinBounds(t *testing.T) {
	p := DefaultParams()
	p.Volatility = 25
	m := NewModel(p, entropy.New(5), start)

	for n := 1; n <= 365; n++ {
		_, err := m.Tick(day(n))
		require.NoError(t, err)
	}
	for _, j := range Jurisdictions {
		s := m.Series(j)
		for _, pt := range s.Unemployment.History {
			assert.GreaterOrEqual(t, pt.Value, unemploymentFloor)
			assert.LessOrEqual(t, pt.Value, unemploymentCeiling)
		}
		for _, pt := range s.InterestRate.History {
			assert.GreaterOrEqual(t, pt.Value, rateFloor)
		}
		for _, pt := range s.GDP.History {
			assert.GreaterOrEqual(t, pt.Value, s.GDPFloor)
		}
	}
}

func TestTickDeterministicForSeed(t *testing.T) {
	a := NewModel(DefaultParams(), entropy.New(11), start)
	b := NewModel(DefaultParams(), entropy.New(11), start)
	for n := 1; n <= 30; n++ {
		sa, err := a.Tick(day(n))
		require.NoError(t, err)
		sb, err := b.Tick(day(n))
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestTickRejectsNonFiniteAndKeepsHistory(t *testing.T) {
	m := NewModel(DefaultParams(), entropy.New(2), start)
	_, err := m.Tick(day(1))
	require.NoError(t, err)

	m.Shock(State, Impact{GDPPercent: math.Inf(1)})
	before := m.Series(Federal).GDP.Len()
	prev := m.Series(State).GDP.Current()

	_, err = m.Tick(day(2))
	require.ErrorIs(t, err, ErrNonFinite)
	for _, j := range Jurisdictions {
		assert.Equal(t, before, m.Series(j).GDP.Len())
	}
	assert.Equal(t, prev, m.Series(State).GDP.Current())
	assert.Equal(t, 1, m.Day())
}

func TestTickRejectsStaleDate(t *testing.T) {
	m := NewModel(DefaultParams(), entropy.New(2), start)
	_, err := m.Tick(day(1))
	require.NoError(t, err)
	_, err = m.Tick(day(1))
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

func TestShockAppliesOnce(t *testing.T) {
	p := DefaultParams()
	p.Volatility = 0
	p.CycleAmplitude = 0
	m := NewModel(p, entropy.New(3), start)

	m.Shock(Local, Impact{GDPPercent: 1})
	_, err := m.Tick(day(1))
	require.NoError(t, err)
	g := m.Series(Local).GDP
	first := g.History[1].Value/g.History[0].Value - 1
	assert.InDelta(t, 0.01+0.02/365, first, 1e-9)

	_, err = m.Tick(day(2))
	require.NoError(t, err)
	second := g.History[2].Value/g.History[1].Value - 1
	assert.InDelta(t, 0.02/365, second, 1e-9)
}

func TestIndicatorAppendGuards(t *testing.T) {
	ind := NewIndicator("gdp", start, 100)
	assert.ErrorIs(t, ind.Append(day(1), math.NaN()), ErrNonFinite)
	assert.ErrorIs(t, ind.Append(start, 101), ErrNonMonotonic)
	require.NoError(t, ind.Append(day(1), 110))
	assert.InDelta(t, 0.1, ind.Change(1), 1e-12)
	assert.Equal(t, 2, ind.Len())
}

func TestRestoreModelRoundTrip(t *testing.T) {
	src := entropy.New(8)
	m := NewModel(DefaultParams(), src, start)
	for n := 1; n <= 10; n++ {
		_, err := m.Tick(day(n))
		require.NoError(t, err)
	}

	raw, err := json.Marshal(m.State())
	require.NoError(t, err)
	var st ModelState
	require.NoError(t, json.Unmarshal(raw, &st))

	restored, err := RestoreModel(st, entropy.Restore(src.State()))
	require.NoError(t, err)

	for n := 11; n <= 20; n++ {
		a, err := m.Tick(day(n))
		require.NoError(t, err)
		b, err := restored.Tick(day(n))
		require.NoError(t, err)
		assert.InDelta(t, a.For(Federal).GDP, b.For(Federal).GDP, 1e-3)
		assert.InDelta(t, a.For(Local).Unemployment, b.For(Local).Unemployment, 1e-9)
	}
}

func TestCorruptHistoryPanicsOnCommit(t *testing.T) {
	m := NewModel(DefaultParams(), entropy.New(1), start)
	infl := m.Series(State).Inflation
	infl.History = append(infl.History, Point{Date: day(1), Value: 2})

	assert.PanicsWithValue(t,
		"economy: state series integrity: inflation at 2025-01-02: indicator dates must increase",
		func() { _, _ = m.Tick(day(1)) })
}

func TestWorldRank(t *testing.T) {
	m := NewModel(DefaultParams(), entropy.New(1), start)
	assert.Equal(t, 1, m.WorldRank())
	rows := m.Compare()
	assert.Len(t, rows, len(DefaultCountries())+1)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].GDP, rows[i].GDP)
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$23 trillion", FormatGDP(2.3e13))
	assert.Equal(t, "$1.5 billion", FormatGDP(1.5e9))
	assert.Equal(t, "-$2.25 million", FormatGDP(-2.25e6))
	assert.Equal(t, "$12,345", FormatGDP(12345))
	assert.Equal(t, "335 million", FormatPopulation(3.35e8))
	assert.Equal(t, "851,204", FormatPopulation(851204))
	assert.Equal(t, "4.5%", FormatPercentage(4.5))
	assert.Equal(t, "n/a", FormatPercentage(math.NaN()))
	assert.Equal(t, "Jan 01, 2025", FormatDate(start))
	assert.Equal(t, FormatGDP(7.77e12), FormatGDP(7.77e12))
}
