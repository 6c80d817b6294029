package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksFollowSimulatedCalendar(t *testing.T) {
	e := NewEngine(newSim(1))

	var weekly, monthly []time.Time
	require.NoError(t, e.Every("weekly", "@weekly", func(d time.Time) error {
		weekly = append(weekly, d)
		return nil
	}))
	require.NoError(t, e.Every("monthly", "@monthly", func(d time.Time) error {
		monthly = append(monthly, d)
		return nil
	}))

	reports, err := e.Step(31)
	require.NoError(t, err)
	assert.Len(t, reports, 31)

	require.Len(t, weekly, 4)
	for _, d := range weekly {
		assert.Equal(t, time.Sunday, d.Weekday())
	}
	assert.Equal(t, []time.Time{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}, monthly)
}

func TestHookErrorDoesNotStopTheDay(t *testing.T) {
	e := NewEngine(newSim(1))
	calls := 0
	require.NoError(t, e.Every("flaky", "0 0 * * *", func(time.Time) error {
		calls++
		return errors.New("disk full")
	}))
	_, err := e.Step(3)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, e.Sim.Day)
}

func TestEveryRejectsBadSpec(t *testing.T) {
	e := NewEngine(newSim(1))
	assert.Error(t, e.Every("bad", "every tuesday", func(time.Time) error { return nil }))
	assert.Empty(t, e.Hooks())
}

func TestOnDayCalledPerDay(t *testing.T) {
	e := NewEngine(newSim(1))
	var days []int
	e.OnDay = func(rep DayReport) { days = append(days, rep.Day) }
	_, err := e.Step(3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, days)
}

func TestRunStopsOnContext(t *testing.T) {
	e := NewEngine(newSim(1))
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	e.OnDay = func(rep DayReport) {
		if rep.Day == 5 {
			cancel()
		}
	}
	require.NoError(t, e.Run(ctx))
	assert.False(t, e.Running)
	assert.GreaterOrEqual(t, e.Sim.Day, 5)
}
