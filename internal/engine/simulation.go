// Simulation ties together the character and every subsystem and advances them
// one day at a time.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/election"
	"github.com/talgya/capitol/internal/entropy"
	"github.com/talgya/capitol/internal/govstats"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/treasury"
)

// Sub-stream offsets from the game seed.
const (
	economySeedOffset     = 100
	legislatureSeedOffset = 200
	electionSeedOffset    = 300
)

// maxEvents bounds the event log.
const maxEvents = 500

// Settings configures a new game.
type Settings struct {
	Seed            int64
	Start           time.Time
	Character       character.State
	Economy         economy.Params
	Legislature     legislature.Config
	Openings        map[economy.Jurisdiction]decimal.Decimal
	FiscalYearStart time.Month
}

// DefaultSettings returns a new career starting out of office on start.
func DefaultSettings(seed int64, start time.Time) Settings {
	return Settings{
		Seed:  seed,
		Start: start,
		Character: character.State{
			Name:          "Alex Morgan",
			Age:           28,
			Funds:         100_000,
			CampaignFunds: 50_000,
			Approval:      50,
			Reputation:    30,
		},
		Economy:     economy.DefaultParams(),
		Legislature: legislature.DefaultConfig(),
		Openings: map[economy.Jurisdiction]decimal.Decimal{
			economy.Federal: decimal.NewFromInt(-25_000_000_000_000),
			economy.State:   decimal.NewFromInt(-150_000_000_000),
			economy.Local:   decimal.NewFromInt(250_000_000),
		},
		FiscalYearStart: time.October,
	}
}

// Event is a notable occurrence in the career.
type Event struct {
	Day         int       `json:"day"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"` // "economy", "treasury", "legislature", "election", "character"
}

// Simulation owns one instance of every subsystem. Not safe for concurrent
// use; the driver calls it from one goroutine.
type Simulation struct {
	Character character.State
	Date      time.Time
	Day       int
	Events    []Event

	seed            int64
	fiscalYearStart time.Month

	economy     *economy.Model
	book        *treasury.Book
	legislature *legislature.Pipeline
	elections   *election.Cycle
	stats       govstats.Aggregator

	economyRNG     *entropy.Source
	legislatureRNG *entropy.Source
	electionRNG    *entropy.Source
}

// NewSimulation starts a new game from settings.
func NewSimulation(cfg Settings) *Simulation {
	root := entropy.New(cfg.Seed)
	s := &Simulation{
		Character:       cfg.Character,
		Date:            cfg.Start,
		seed:            cfg.Seed,
		fiscalYearStart: cfg.FiscalYearStart,
		economyRNG:      root.Derive(economySeedOffset),
		legislatureRNG:  root.Derive(legislatureSeedOffset),
		electionRNG:     root.Derive(electionSeedOffset),
	}
	if s.fiscalYearStart == 0 {
		s.fiscalYearStart = time.January
	}
	s.economy = economy.NewModel(cfg.Economy, s.economyRNG, cfg.Start)
	s.book = treasury.NewBook(cfg.Openings, cfg.Start, s.fiscalYear(cfg.Start))
	s.legislature = legislature.NewPipeline(cfg.Legislature, s.legislatureRNG, cfg.Start)
	s.elections = election.NewCycle(s.electionRNG, cfg.Start)
	s.updateStats()

	slog.Info("new game", "seed", cfg.Seed, "start", economy.FormatDate(cfg.Start), "character", cfg.Character.Name)
	return s
}

// Seed returns the game seed.
func (s *Simulation) Seed() int64 {
	return s.seed
}

func (s *Simulation) fiscalYear(date time.Time) int {
	return treasury.FiscalYearOf(date, s.fiscalYearStart)
}

// jurisdiction returns the government the character serves, or the local one
// while out of office.
func (s *Simulation) jurisdiction() economy.Jurisdiction {
	o, ok := s.Character.CurrentOffice()
	if !ok {
		return economy.Local
	}
	switch o.Level {
	case character.LevelFederal:
		return economy.Federal
	case character.LevelState:
		return economy.State
	default:
		return economy.Local
	}
}

func (s *Simulation) record(category, format string, args ...any) {
	s.Events = append(s.Events, Event{
		Day:         s.Day,
		Date:        s.Date,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if over := len(s.Events) - maxEvents; over > 0 {
		s.Events = append(s.Events[:0], s.Events[over:]...)
	}
}

func (s *Simulation) apply(d character.Delta) {
	if d.IsZero() {
		return
	}
	before := s.Character.Position
	s.Character.Apply(d)
	if s.Character.Position != before {
		o, _ := s.Character.CurrentOffice()
		s.record("character", "%s took office as %s", s.Character.Name, o.Title)
	}
}

// DayReport is what one simulated day produced.
type DayReport struct {
	Date        time.Time                `json:"date"`
	Day         int                      `json:"day"`
	Economy     economy.Snapshot         `json:"economy"`
	Interest    []treasury.Entry         `json:"interest,omitempty"`
	Legislature legislature.TickReport   `json:"legislature"`
	Election    *election.ElectionResult `json:"election,omitempty"`
	Stats       *govstats.Stats          `json:"stats,omitempty"`
}

// AdvanceDay runs one day: economy, treasury interest, legislature, election,
// then scores. A data-integrity error stops the day and is returned; the
// character is not touched by a day that fails in the economy.
func (s *Simulation) AdvanceDay() (DayReport, error) {
	date := s.Date.AddDate(0, 0, 1)
	rep := DayReport{Date: date, Day: s.Day + 1}

	snap, err := s.economy.Tick(date)
	if err != nil {
		return rep, fmt.Errorf("day %d economy: %w", rep.Day, err)
	}
	rep.Economy = snap
	s.Date = date
	s.Day = rep.Day
	if isBirthday(s.Date, s.startDate()) {
		s.Character.Age++
	}

	fy := s.fiscalYear(date)
	booked := false
	for _, l := range s.book.Ledgers() {
		if err := l.Advance(date, fy); err != nil {
			return rep, fmt.Errorf("day %d treasury: %w", rep.Day, err)
		}
		rate := snap.For(l.Jurisdiction()).InterestRate / 100
		e, err := l.AccrueInterest(rate, s.interestPeriod(fy))
		if err != nil {
			return rep, fmt.Errorf("day %d treasury: %w", rep.Day, err)
		}
		if e != nil {
			booked = true
			rep.Interest = append(rep.Interest, *e)
			s.record("treasury", "%s (%s)", e.Description, economy.FormatGDP(e.CashChange.InexactFloat64()))
		}
	}

	rep.Legislature = s.legislature.Tick(date)
	s.apply(rep.Legislature.Delta)
	for _, r := range rep.Legislature.Resolved {
		s.record("legislature", "%s", r.Message)
	}
	for _, e := range rep.Legislature.Enactments {
		if err := s.enact(e); err != nil {
			return rep, fmt.Errorf("day %d legislature: %w", rep.Day, err)
		}
		booked = booked || e.BudgetImpact != 0
	}

	if res := s.elections.Tick(date, s.Character); res != nil {
		rep.Election = res
		s.apply(res.Delta)
		s.record("election", "%s", res.Message)
	}

	if booked || rep.Election != nil {
		s.updateStats()
	}
	rep.Stats = s.stats.Last()

	s.logDay(rep)
	return rep, nil
}

// interestPeriod is the share of fiscal year fy the game covers. The year the
// game opens in is charged only from the start date on.
func (s *Simulation) interestPeriod(fy int) float64 {
	start := s.startDate()
	if fy != s.fiscalYear(start) {
		return 1
	}
	return treasury.RemainingFraction(start, s.fiscalYearStart)
}

func (s *Simulation) startDate() time.Time {
	return s.Date.AddDate(0, 0, -s.Day)
}

func isBirthday(date, start time.Time) bool {
	return date.Month() == start.Month() && date.Day() == start.Day() && date.After(start)
}

// enact lands an enactment in the economy and the treasury.
func (s *Simulation) enact(e legislature.Enactment) error {
	if e.EconomicImpact != 0 {
		s.economy.Shock(e.Jurisdiction, economy.Impact{GDPPercent: e.EconomicImpact})
	}
	if e.BudgetImpact == 0 {
		return nil
	}
	l := s.book.Ledger(e.Jurisdiction)
	amount := decimal.NewFromFloat(e.BudgetImpact).Round(2)
	if _, err := l.ApplyBudget(amount, e.Title, s.fiscalYear(s.Date), s.Date); err != nil {
		slog.Error("budget booking failed", "source", e.Source, "error", err)
		return err
	}
	s.record("treasury", "%s booked %s to the %s budget", e.Title, economy.FormatGDP(e.BudgetImpact), e.Jurisdiction)
	return nil
}

// updateStats recomputes the scorecard for the government the character
// serves. Nothing is scored before the first office.
func (s *Simulation) updateStats() {
	if !s.Character.HoldsOffice() {
		return
	}
	j := s.jurisdiction()
	reading := s.economy.Snapshot().For(j)
	params := s.economy.Params()
	s.stats.Update(govstats.Inputs{
		Date:                s.Date,
		Treasury:            s.book.Ledger(j).Summary(reading.GDP, 5),
		Economy:             reading,
		InflationTarget:     params.InflationTarget,
		NaturalUnemployment: params.NaturalUnemployment,
		Legislature:         s.legislature.Accumulated(j),
		Approval:            s.Character.Approval,
	})
}

func (s *Simulation) logDay(rep DayReport) {
	r := rep.Economy.For(s.jurisdiction())
	args := []any{
		"day", rep.Day,
		"date", economy.FormatDate(rep.Date),
		"gdp", economy.FormatGDP(r.GDP),
		"unemployment", economy.FormatPercentage(r.Unemployment),
		"approval", fmt.Sprintf("%.1f", s.Character.Approval),
	}
	if c := s.elections.Campaign(); c != nil {
		days, _ := s.elections.DaysUntilElection()
		args = append(args, "poll", fmt.Sprintf("%.1f", c.PollPercentage), "days_to_election", days)
	}
	slog.Debug("daily report", args...)
}

// Economy returns the economic model for read-only queries.
func (s *Simulation) Economy() *economy.Model {
	return s.economy
}

// SessionSummary returns the legislative record.
func (s *Simulation) SessionSummary() legislature.SessionSummary {
	return s.legislature.SessionSummary()
}

// TreasurySummary returns the ledger summary for j against its current GDP.
func (s *Simulation) TreasurySummary(j economy.Jurisdiction, recent int) treasury.Summary {
	gdp := s.economy.Snapshot().For(j).GDP
	return s.book.Ledger(j).Summary(gdp, recent)
}

// StatsSummary returns the last scorecard, or nil before the first office.
func (s *Simulation) StatsSummary() *govstats.Stats {
	return s.stats.Last()
}

// Laws returns every law in creation order.
func (s *Simulation) Laws() []legislature.Law {
	return s.legislature.Laws()
}

// Policies returns the policy book.
func (s *Simulation) Policies() []legislature.Policy {
	return s.legislature.Policies()
}

// Campaign returns the active campaign, or nil.
func (s *Simulation) Campaign() *election.Campaign {
	return s.elections.Campaign()
}

// DaysUntilElection returns the countdown to the scheduled election, if any.
func (s *Simulation) DaysUntilElection() (int, bool) {
	return s.elections.DaysUntilElection()
}

// RecentActivities returns the latest campaign activities, newest first.
func (s *Simulation) RecentActivities(n int) []election.ActivityLog {
	return s.elections.RecentActivities(n)
}

// Elections returns every resolved election.
func (s *Simulation) Elections() []election.Election {
	return s.elections.History()
}

// Ledger returns the treasury ledger for j.
func (s *Simulation) Ledger(j economy.Jurisdiction) *treasury.Ledger {
	return s.book.Ledger(j)
}
