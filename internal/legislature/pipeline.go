package legislature

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/entropy"
	"github.com/talgya/capitol/internal/outcome"
)

var (
	ErrLawNotFound            = errors.New("law not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInsufficientReputation = errors.New("insufficient reputation")
	ErrUnknownCategory        = errors.New("unknown law category")
	ErrPolicyNotFound         = errors.New("policy not found")
	ErrRequirementsNotMet     = errors.New("policy requirements not met")
	ErrInsufficientFunds      = errors.New("insufficient funds")
)

// Config tunes the pipeline.
type Config struct {
	ReferralDays  int  `yaml:"referral_days" json:"referral_days"`   // Proposed, waiting for committee
	CommitteeDays int  `yaml:"committee_days" json:"committee_days"` // In committee
	DebateDays    int  `yaml:"debate_days" json:"debate_days"`       // Under debate
	VotingDays    int  `yaml:"voting_days" json:"voting_days"`       // On the floor before the tally
	AutoAdvance   bool `yaml:"auto_advance" json:"auto_advance"`

	ProposalReputation float64 `yaml:"proposal_reputation" json:"proposal_reputation"` // Minimum to file a bill
	ProposalCost       float64 `yaml:"proposal_cost" json:"proposal_cost"`             // Reputation spent filing
	VoteNoise          float64 `yaml:"vote_noise" json:"vote_noise"`                   // Half-width of the floor swing
}

// DefaultConfig returns the standard pipeline timing and thresholds.
func DefaultConfig() Config {
	return Config{
		ReferralDays:       1,
		CommitteeDays:      5,
		DebateDays:         3,
		VotingDays:         1,
		AutoAdvance:        true,
		ProposalReputation: 20,
		ProposalCost:       5,
		VoteNoise:          0.15,
	}
}

func (c Config) stageDays(s Status) int {
	switch s {
	case StatusProposed:
		return c.ReferralDays
	case StatusInCommittee:
		return c.CommitteeDays
	case StatusUnderDebate:
		return c.DebateDays
	case StatusVoting:
		return c.VotingDays
	}
	return 0
}

// LawResult is the outcome of a law command.
type LawResult struct {
	outcome.Result
	Law Law `json:"law"`
	// Enactment is set only on the result that passes the law.
	Enactment *Enactment `json:"enactment,omitempty"`
}

func lawFail(err error) LawResult {
	return LawResult{Result: outcome.Fail(err)}
}

// Pipeline owns every law and policy of a game.
type Pipeline struct {
	cfg      Config
	rng      *entropy.Source
	laws     []*Law // Creation order
	policies []*Policy
	nextID   int
	today    time.Time
}

// NewPipeline creates an empty chamber calendar with the default policy book.
func NewPipeline(cfg Config, src *entropy.Source, today time.Time) *Pipeline {
	p := &Pipeline{cfg: cfg, rng: src, nextID: 1, today: today}
	for _, pol := range DefaultPolicies() {
		p.policies = append(p.policies, &pol)
	}
	return p
}

// Laws returns copies of every law in creation order.
func (p *Pipeline) Laws() []Law {
	out := make([]Law, 0, len(p.laws))
	for _, l := range p.laws {
		out = append(out, *l)
	}
	return out
}

// Law returns a copy of the law with id.
func (p *Pipeline) Law(id string) (Law, bool) {
	l := p.find(id)
	if l == nil {
		return Law{}, false
	}
	return *l, true
}

func (p *Pipeline) find(id string) *Law {
	for _, l := range p.laws {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// CreateLaw drafts a bill from the category template. The sponsor's office
// picks the chamber.
func (p *Pipeline) CreateLaw(cat Category, sponsor character.State) LawResult {
	tmpl, ok := lawTemplates[cat]
	if !ok {
		return lawFail(fmt.Errorf("%w: %d", ErrUnknownCategory, cat))
	}
	body := bodyFor(sponsor)
	l := &Law{
		ID:            fmt.Sprintf("law-%04d", p.nextID),
		Title:         tmpl.title,
		Category:      cat,
		Status:        StatusDraft,
		Sponsor:       sponsor.Name,
		Body:          body,
		PublicSupport: tmpl.support,
		Effects:       tmpl.effects.scaled(body.scale()),
		CreatedOn:     p.today,
	}
	if tmpl.cost > 0 {
		c := tmpl.cost * body.scale()
		l.ImplementationCost = &c
	}
	p.nextID++
	p.laws = append(p.laws, l)

	msg := fmt.Sprintf("Drafted the %s for the %s.", l.Title, body)
	return LawResult{Result: outcome.OK(msg, character.Delta{}), Law: *l}
}

// ProposeLaw files a draft with its chamber. Filing spends reputation.
func (p *Pipeline) ProposeLaw(id string, sponsor character.State) LawResult {
	l := p.find(id)
	if l == nil {
		return lawFail(fmt.Errorf("%w: %s", ErrLawNotFound, id))
	}
	if l.Status != StatusDraft {
		return lawFail(fmt.Errorf("%w: cannot propose a %s law", ErrInvalidTransition, l.Status))
	}
	if sponsor.Reputation < p.cfg.ProposalReputation {
		return lawFail(fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientReputation,
			p.cfg.ProposalReputation, sponsor.Reputation))
	}

	on := p.today
	l.Status = StatusProposed
	l.ProposedOn = &on
	l.StageDaysLeft = p.cfg.stageDays(StatusProposed)

	msg := fmt.Sprintf("%s has been proposed to the %s.", l.Title, l.Body)
	return LawResult{
		Result: outcome.OK(msg, character.Delta{Reputation: -p.cfg.ProposalCost}),
		Law:    *l,
	}
}

// AdvanceLaw moves a law to its next stage. Advancing out of voting holds the
// floor vote; a passed law's effects are returned on that result only.
func (p *Pipeline) AdvanceLaw(id string) LawResult {
	l := p.find(id)
	if l == nil {
		return lawFail(fmt.Errorf("%w: %s", ErrLawNotFound, id))
	}
	if !l.Status.Active() {
		return lawFail(fmt.Errorf("%w: cannot advance a %s law", ErrInvalidTransition, l.Status))
	}

	if l.Status == StatusVoting {
		return p.resolve(l)
	}
	next, _ := l.Status.next()
	l.Status = next
	l.StageDaysLeft = p.cfg.stageDays(next)

	msg := fmt.Sprintf("%s is now %s.", l.Title, stageLabel(next))
	return LawResult{Result: outcome.OK(msg, character.Delta{}), Law: *l}
}

// resolve tallies the floor vote: each seat votes for with probability close to
// public support, shifted by a uniform swing.
func (p *Pipeline) resolve(l *Law) LawResult {
	swing := p.rng.Range(-p.cfg.VoteNoise, p.cfg.VoteNoise)
	share := math.Max(0, math.Min(1, l.PublicSupport/100+swing))
	seats := l.Body.Seats()
	l.VotesFor = int(math.Round(float64(seats) * share))
	l.VotesAgainst = seats - l.VotesFor

	on := p.today
	l.ResolvedOn = &on
	l.StageDaysLeft = 0

	if l.VotesFor*2 <= l.VotesFor+l.VotesAgainst {
		l.Status = StatusRejected
		slog.Info("law rejected", "law", l.ID, "for", l.VotesFor, "against", l.VotesAgainst)
		msg := fmt.Sprintf("%s was rejected %d-%d.", l.Title, l.VotesFor, l.VotesAgainst)
		return LawResult{Result: outcome.OK(msg, character.Delta{}), Law: *l}
	}

	l.Status = StatusPassed
	slog.Info("law passed", "law", l.ID, "for", l.VotesFor, "against", l.VotesAgainst)
	msg := fmt.Sprintf("%s passed %d-%d.", l.Title, l.VotesFor, l.VotesAgainst)
	return LawResult{
		Result: outcome.OK(msg, character.Delta{Approval: l.Effects.ApprovalChange}),
		Law:    *l,
		Enactment: &Enactment{
			Source:         l.ID,
			Title:          l.Title,
			Jurisdiction:   l.Body.Jurisdiction(),
			EconomicImpact: l.Effects.EconomicImpact,
			BudgetImpact:   l.NetBudget(),
		},
	}
}

func stageLabel(s Status) string {
	switch s {
	case StatusInCommittee:
		return "in committee"
	case StatusUnderDebate:
		return "under debate"
	case StatusVoting:
		return "up for a vote"
	}
	return s.String()
}

// WithdrawLaw pulls a law from consideration at any stage before resolution.
func (p *Pipeline) WithdrawLaw(id string) LawResult {
	l := p.find(id)
	if l == nil {
		return lawFail(fmt.Errorf("%w: %s", ErrLawNotFound, id))
	}
	if l.Status.Terminal() {
		return lawFail(fmt.Errorf("%w: cannot withdraw a %s law", ErrInvalidTransition, l.Status))
	}
	on := p.today
	l.Status = StatusWithdrawn
	l.ResolvedOn = &on
	l.StageDaysLeft = 0

	msg := fmt.Sprintf("Law '%s' has been withdrawn from consideration.", l.Title)
	return LawResult{Result: outcome.OK(msg, character.Delta{}), Law: *l}
}

// DeleteDraftLaw discards a law that was never proposed.
func (p *Pipeline) DeleteDraftLaw(id string) LawResult {
	i := slices.IndexFunc(p.laws, func(l *Law) bool { return l.ID == id })
	if i < 0 {
		return lawFail(fmt.Errorf("%w: %s", ErrLawNotFound, id))
	}
	l := p.laws[i]
	if l.Status != StatusDraft {
		return lawFail(fmt.Errorf("%w: only drafts can be deleted, %s is %s", ErrInvalidTransition, l.ID, l.Status))
	}
	p.laws = slices.Delete(p.laws, i, i+1)
	return LawResult{Result: outcome.OK(fmt.Sprintf("Draft '%s' deleted.", l.Title), character.Delta{}), Law: *l}
}

// TickReport is what a day in the chamber produced.
type TickReport struct {
	Advanced   []Law           `json:"advanced,omitempty"`
	Resolved   []LawResult     `json:"resolved,omitempty"`
	Enactments []Enactment     `json:"enactments,omitempty"`
	Delta      character.Delta `json:"delta"`
}

// Tick moves the calendar to date and counts down every active law's stage.
// With auto-advance on, expired stages move forward and votes are held.
func (p *Pipeline) Tick(date time.Time) TickReport {
	p.today = date
	var rep TickReport
	for _, l := range p.laws {
		if !l.Status.Active() {
			continue
		}
		if l.StageDaysLeft > 0 {
			l.StageDaysLeft--
		}
		if l.StageDaysLeft > 0 || !p.cfg.AutoAdvance {
			continue
		}

		res := p.AdvanceLaw(l.ID)
		if !res.Success {
			continue
		}
		if res.Law.Status.Terminal() {
			rep.Resolved = append(rep.Resolved, res)
			rep.Delta = rep.Delta.Plus(res.Delta)
			if res.Enactment != nil {
				rep.Enactments = append(rep.Enactments, *res.Enactment)
			}
		} else {
			rep.Advanced = append(rep.Advanced, res.Law)
		}
	}
	return rep
}

// Today returns the pipeline's calendar date.
func (p *Pipeline) Today() time.Time {
	return p.today
}
