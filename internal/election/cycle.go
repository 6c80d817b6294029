// Package election runs the player's campaigns and the elections that end them.
// A campaign tracks polling and spending; the election draws each candidate's
// vote share around their standing and moves the winner into office.
package election

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/entropy"
	"github.com/talgya/capitol/internal/outcome"
)

var (
	ErrCampaignAlreadyActive = errors.New("campaign already active")
	ErrNoActiveCampaign      = errors.New("no active campaign")
	ErrUnknownActivity       = errors.New("unknown campaign activity")
	ErrInsufficientFunds     = errors.New("insufficient campaign funds")
	ErrAlreadyResolved       = errors.New("election already resolved")
	ErrUnknownOffice         = errors.New("unknown office")
)

// Election-day noise and share floor.
const (
	voteStdDev = 8.0
	minRawVote = 0.5
)

// Campaign is the player's active run for office.
type Campaign struct {
	ID             string             `json:"id"`
	Office         character.OfficeID `json:"office"`
	StartedOn      time.Time          `json:"started_on"`
	DaysRemaining  int                `json:"days_remaining"`
	PollPercentage float64            `json:"poll_percentage"` // 0–100
	Spent          float64            `json:"spent"`
	Activities     []ActivityLog      `json:"activities,omitempty"` // Full log, oldest first
}

// Candidate is one name on the ballot.
type Candidate struct {
	Name     string  `json:"name"`
	Player   bool    `json:"player"`
	Standing float64 `json:"standing"` // Rival poll standing; the player's comes from the campaign
}

// Share is a candidate's result.
type Share struct {
	Candidate string  `json:"candidate"`
	Percent   float64 `json:"percent"`
}

// Results are the outcome of a resolved election. Shares follow ballot order.
type Results struct {
	Date        time.Time `json:"date"`
	Shares      []Share   `json:"shares"`
	Winner      int       `json:"winner"` // Index into Shares
	PlayerWon   bool      `json:"player_won"`
	PlayerShare float64   `json:"player_share"`
}

// Election is a scheduled race. The roster is fixed when it is scheduled.
type Election struct {
	ID         string             `json:"id"`
	Office     character.OfficeID `json:"office"`
	Date       time.Time          `json:"date"`
	Candidates []Candidate        `json:"candidates"` // Player first
	Results    *Results           `json:"results,omitempty"`
}

// DaysUntil returns the whole days from today to election day, or 0 once it
// has come.
func (e Election) DaysUntil(today time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, e.Date.Location())
	days := int(math.Round(e.Date.Sub(from).Hours() / 24))
	return max(days, 0)
}

// CampaignResult is the outcome of a campaign command.
type CampaignResult struct {
	outcome.Result
	Campaign *Campaign `json:"campaign,omitempty"`
}

// ElectionResult is the outcome of resolving an election.
type ElectionResult struct {
	outcome.Result
	Election Election `json:"election"`
}

// Cycle owns the active campaign, its scheduled election, and past elections.
type Cycle struct {
	rng      *entropy.Source
	campaign *Campaign
	pending  *Election
	history  []Election
	today    time.Time
}

// NewCycle creates a cycle with no campaign.
func NewCycle(src *entropy.Source, today time.Time) *Cycle {
	return &Cycle{rng: src, today: today}
}

// Campaign returns a copy of the active campaign, or nil.
func (c *Cycle) Campaign() *Campaign {
	if c.campaign == nil {
		return nil
	}
	cp := *c.campaign
	cp.Activities = slices.Clone(c.campaign.Activities)
	return &cp
}

// Pending returns a copy of the scheduled election, or nil.
func (c *Cycle) Pending() *Election {
	if c.pending == nil {
		return nil
	}
	e := *c.pending
	e.Candidates = slices.Clone(c.pending.Candidates)
	return &e
}

// DaysUntilElection returns the countdown to the scheduled election, if any.
func (c *Cycle) DaysUntilElection() (int, bool) {
	if c.pending == nil {
		return 0, false
	}
	return c.pending.DaysUntil(c.today), true
}

// StartCampaign opens a run for office and schedules its election with the
// player and generated rivals on the ballot.
func (c *Cycle) StartCampaign(id character.OfficeID, who character.State, today time.Time) CampaignResult {
	if c.campaign != nil {
		return CampaignResult{Result: outcome.Fail(fmt.Errorf("%w: already running for %s", ErrCampaignAlreadyActive, c.campaign.Office))}
	}
	office, ok := character.LookupOffice(id)
	if !ok {
		return CampaignResult{Result: outcome.Fail(fmt.Errorf("%w: %s", ErrUnknownOffice, id))}
	}
	if err := who.Eligible(office); err != nil {
		return CampaignResult{Result: outcome.Fail(err)}
	}

	c.today = today
	lo, hi := baseline(office.Level)
	c.campaign = &Campaign{
		ID:             c.newID(),
		Office:         office.ID,
		StartedOn:      today,
		DaysRemaining:  office.CampaignDays,
		PollPercentage: c.rng.Range(lo, hi),
	}

	roster := []Candidate{{Name: who.Name, Player: true}}
	for i := 0; i < office.Rivals; i++ {
		roster = append(roster, Candidate{Name: c.rivalName(), Standing: c.rng.Range(25, 40)})
	}
	c.pending = &Election{
		ID:         c.newID(),
		Office:     office.ID,
		Date:       today.AddDate(0, 0, office.CampaignDays),
		Candidates: roster,
	}

	slog.Info("campaign started", "office", office.Title, "poll", c.campaign.PollPercentage,
		"rivals", office.Rivals, "election", c.pending.Date.Format(time.DateOnly))
	msg := fmt.Sprintf("Campaign for %s launched. Election day is in %d days.", office.Title, office.CampaignDays)
	return CampaignResult{Result: outcome.OK(msg, character.Delta{}), Campaign: c.Campaign()}
}

// baseline returns the opening poll range for a race at level. Bigger races
// start the player lower.
func baseline(level character.Level) (float64, float64) {
	switch level {
	case character.LevelState:
		return 37, 42
	case character.LevelFederal:
		return 35, 40
	default:
		return 40, 45
	}
}

// PerformCampaignActivity spends campaign funds to move the polls. On failure
// nothing changes.
func (c *Cycle) PerformCampaignActivity(t ActivityType, who character.State) CampaignResult {
	if c.campaign == nil {
		return CampaignResult{Result: outcome.Fail(ErrNoActiveCampaign)}
	}
	office, _ := character.LookupOffice(c.campaign.Office)
	act, err := LookupActivity(t, office.Level)
	if err != nil {
		return CampaignResult{Result: outcome.Fail(err)}
	}
	if who.CampaignFunds < act.Cost {
		return CampaignResult{Result: outcome.Fail(fmt.Errorf("%w: %s costs %.0f, have %.0f",
			ErrInsufficientFunds, act.Name, act.Cost, who.CampaignFunds))}
	}

	before := c.campaign.PollPercentage
	after := math.Max(0, math.Min(100, before+act.BasePollImpact+c.rng.Range(-0.5, 0.5)))
	c.campaign.PollPercentage = after
	c.campaign.Spent += act.Cost
	c.campaign.Activities = append(c.campaign.Activities, ActivityLog{
		Date:       c.today,
		Type:       act.Type,
		Cost:       act.Cost,
		PollChange: after - before,
		PollAfter:  after,
	})

	msg := fmt.Sprintf("%s: polls %+.1f to %.1f%%.", act.Name, after-before, after)
	return CampaignResult{
		Result:   outcome.OK(msg, character.Delta{CampaignFunds: act.Raises - act.Cost}),
		Campaign: c.Campaign(),
	}
}

// RecentActivities returns up to n of the latest activities, newest first. The
// full log is kept.
func (c *Cycle) RecentActivities(n int) []ActivityLog {
	if c.campaign == nil || n <= 0 {
		return nil
	}
	entries := c.campaign.Activities
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]ActivityLog, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}

// Tick moves the calendar to date and counts the campaign down. On election day
// the election is resolved and returned.
func (c *Cycle) Tick(date time.Time, who character.State) *ElectionResult {
	c.today = date
	if c.campaign == nil {
		return nil
	}
	if c.campaign.DaysRemaining > 0 {
		c.campaign.DaysRemaining--
	}
	if c.campaign.DaysRemaining > 0 {
		return nil
	}
	res := c.SimulateElection(who)
	return &res
}

// SimulateElection resolves the scheduled election. Each candidate draws
// max(standing + N(0, 8), 0.5) and the draws are normalized to 100. The
// highest share wins; ties go to the earliest name on the ballot, which is the
// player. Resolution ends the campaign.
func (c *Cycle) SimulateElection(who character.State) ElectionResult {
	if c.pending == nil {
		if len(c.history) > 0 {
			return ElectionResult{Result: outcome.Fail(ErrAlreadyResolved)}
		}
		return ElectionResult{Result: outcome.Fail(ErrNoActiveCampaign)}
	}

	e := c.pending
	raw := make([]float64, len(e.Candidates))
	total := 0.0
	for i, cand := range e.Candidates {
		standing := cand.Standing
		if cand.Player {
			standing = c.campaign.PollPercentage
		}
		raw[i] = math.Max(standing+c.rng.Normal(voteStdDev), minRawVote)
		total += raw[i]
	}

	res := &Results{Date: c.today, Shares: make([]Share, len(raw))}
	for i, r := range raw {
		res.Shares[i] = Share{Candidate: e.Candidates[i].Name, Percent: r / total * 100}
	}
	res.Winner = leader(res.Shares)
	res.PlayerWon = e.Candidates[res.Winner].Player
	res.PlayerShare = res.Shares[0].Percent
	e.Results = res

	c.history = append(c.history, *e)
	c.pending = nil
	c.campaign = nil

	office, _ := character.LookupOffice(e.Office)
	slog.Info("election resolved", "office", office.Title, "winner", res.Shares[res.Winner].Candidate,
		"share", res.Shares[res.Winner].Percent, "player_share", res.PlayerShare)

	if res.PlayerWon {
		pos := e.Office
		msg := fmt.Sprintf("%s wins the race for %s with %.1f%% of the vote.", who.Name, office.Title, res.PlayerShare)
		return ElectionResult{
			Result:   outcome.OK(msg, character.Delta{Position: &pos, Reputation: 5}),
			Election: c.history[len(c.history)-1],
		}
	}
	msg := fmt.Sprintf("%s loses the race for %s to %s, %.1f%% to %.1f%%.", who.Name, office.Title,
		res.Shares[res.Winner].Candidate, res.PlayerShare, res.Shares[res.Winner].Percent)
	return ElectionResult{
		Result:   outcome.OK(msg, character.Delta{Reputation: -3}),
		Election: c.history[len(c.history)-1],
	}
}

// leader returns the index of the highest share. Only a strictly higher share
// displaces an earlier one, so ties go to the earliest name on the ballot.
func leader(shares []Share) int {
	best := 0
	for i, sh := range shares {
		if sh.Percent > shares[best].Percent {
			best = i
		}
	}
	return best
}

// WonElection reports whether the player won the most recent election.
func (c *Cycle) WonElection() bool {
	if len(c.history) == 0 {
		return false
	}
	r := c.history[len(c.history)-1].Results
	return r != nil && r.PlayerWon
}

// History returns every resolved election, oldest first.
func (c *Cycle) History() []Election {
	return slices.Clone(c.history)
}

var (
	rivalFirst = []string{"Avery", "Jordan", "Morgan", "Casey", "Riley", "Quinn", "Harper", "Rowan", "Emerson", "Blake", "Sage", "Parker"}
	rivalLast  = []string{"Whitfield", "Okafor", "Lindqvist", "Castillo", "Brennan", "Nakamura", "Holloway", "Desai", "Mercer", "Abernathy"}
)

// newID draws a UUID from the game stream so replays name things the same.
func (c *Cycle) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(c.rng)).String()
}

func (c *Cycle) rivalName() string {
	return rivalFirst[c.rng.Intn(len(rivalFirst))] + " " + rivalLast[c.rng.Intn(len(rivalLast))]
}

// CycleState is the serializable form of a Cycle.
type CycleState struct {
	Campaign *Campaign  `json:"campaign,omitempty"`
	Pending  *Election  `json:"pending,omitempty"`
	History  []Election `json:"history,omitempty"`
	Today    time.Time  `json:"today"`
}

// State captures the cycle for a snapshot.
func (c *Cycle) State() CycleState {
	return CycleState{
		Campaign: c.Campaign(),
		Pending:  c.Pending(),
		History:  c.History(),
		Today:    c.today,
	}
}

// RestoreCycle rebuilds a cycle from a snapshot.
func RestoreCycle(st CycleState, src *entropy.Source) (*Cycle, error) {
	if (st.Campaign == nil) != (st.Pending == nil) {
		return nil, errors.New("restore election cycle: campaign and scheduled election must both be present or absent")
	}
	return &Cycle{
		rng:      src,
		campaign: st.Campaign,
		pending:  st.Pending,
		history:  st.History,
		today:    st.Today,
	}, nil
}
