// Package engine provides the day-based simulation loop and the driver that
// sequences every subsystem.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Hook is a calendar callback. Its schedule is a cron expression evaluated on
// the simulated calendar, not the wall clock.
type Hook struct {
	Name     string
	Schedule cron.Schedule
	Fn       func(date time.Time) error
}

// Engine drives a Simulation forward.
type Engine struct {
	Sim      *Simulation
	Speed    float64       // Multiplier: 1.0 = one day per Interval, 0 = paused
	Interval time.Duration // Wall time per simulated day when running
	Running  bool

	// OnDay is called after every simulated day.
	OnDay func(rep DayReport)

	hooks []Hook
}

// NewEngine creates an engine with default pacing.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:      sim,
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Every registers fn to run on simulated dates matching expr, a standard
// five-field cron expression or a descriptor such as "@weekly".
func (e *Engine) Every(name, expr string, fn func(date time.Time) error) error {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("hook %s: %w", name, err)
	}
	e.hooks = append(e.hooks, Hook{Name: name, Schedule: sched, Fn: fn})
	return nil
}

// Hooks returns the registered hooks in registration order.
func (e *Engine) Hooks() []Hook {
	return e.hooks
}

// Step advances the simulation by days. It stops at the first error and
// returns the reports of the days that completed.
func (e *Engine) Step(days int) ([]DayReport, error) {
	reports := make([]DayReport, 0, days)
	for i := 0; i < days; i++ {
		rep, err := e.step()
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Run advances one day per Interval/Speed until ctx is done or Stop is called.
// Blocks.
func (e *Engine) Run(ctx context.Context) error {
	e.Running = true
	slog.Info("simulation engine started", "day", e.Sim.Day, "speed", e.Speed)
	defer slog.Info("simulation engine stopped", "day", e.Sim.Day)

	for e.Running {
		if e.Speed <= 0 {
			// Paused.
			select {
			case <-ctx.Done():
				e.Running = false
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		if _, err := e.step(); err != nil {
			e.Running = false
			return err
		}

		wait := time.Duration(float64(e.Interval)/e.Speed) - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			e.Running = false
			return nil
		case <-time.After(wait):
		}
	}
	return nil
}

// Stop halts Run after the current day.
func (e *Engine) Stop() {
	e.Running = false
}

// step advances one day and fires every hook whose next activation after the
// previous date falls on or before the new one.
func (e *Engine) step() (DayReport, error) {
	prev := e.Sim.Date
	rep, err := e.Sim.AdvanceDay()
	if err != nil {
		slog.Error("simulation stopped", "day", rep.Day, "error", err)
		return rep, err
	}
	if e.OnDay != nil {
		e.OnDay(rep)
	}
	for _, h := range e.hooks {
		if h.Schedule.Next(prev).After(rep.Date) {
			continue
		}
		if err := h.Fn(rep.Date); err != nil {
			slog.Warn("calendar hook failed", "hook", h.Name, "date", rep.Date.Format(time.DateOnly), "error", err)
		}
	}
	return rep, nil
}

// WeeklySummary logs a one-line overview of the career. Registered on the
// weekly schedule by default.
func (s *Simulation) WeeklySummary(date time.Time) error {
	args := []any{
		"date", date.Format(time.DateOnly),
		"day", s.Day,
		"funds", s.Character.Funds,
		"approval", fmt.Sprintf("%.1f", s.Character.Approval),
		"reputation", fmt.Sprintf("%.1f", s.Character.Reputation),
	}
	if o, ok := s.Character.CurrentOffice(); ok {
		args = append(args, "office", o.Title)
	}
	if st := s.stats.Last(); st != nil {
		args = append(args, "score", fmt.Sprintf("%.1f", st.Overall), "rating", st.Rating)
	}
	sum := s.legislature.SessionSummary()
	args = append(args, "laws_passed", sum.Passed, "laws_active", sum.Active)
	slog.Info("weekly summary", args...)
	return nil
}
