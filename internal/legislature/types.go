// Package legislature runs the lifecycle of laws and policies. Laws move
// through committee, debate, and a floor vote; policies are enacted directly
// once their requirements are met. Aggregate counts are always derived from the
// collections, never stored.
package legislature

import (
	"fmt"
	"time"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
)

// Status is the lifecycle stage of a law.
type Status uint8

const (
	StatusDraft Status = iota
	StatusProposed
	StatusInCommittee
	StatusUnderDebate
	StatusVoting
	StatusPassed
	StatusRejected
	StatusWithdrawn
)

var statusNames = [...]string{
	"draft", "proposed", "in_committee", "under_debate", "voting", "passed", "rejected", "withdrawn",
}

// String returns the status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for i, n := range statusNames {
		if n == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown law status %q", b)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusRejected || s == StatusWithdrawn
}

// Active reports whether the law is moving through the chamber.
func (s Status) Active() bool {
	return s >= StatusProposed && s <= StatusVoting
}

// next returns the stage after s for the deterministic part of the pipeline.
func (s Status) next() (Status, bool) {
	switch s {
	case StatusProposed:
		return StatusInCommittee, true
	case StatusInCommittee:
		return StatusUnderDebate, true
	case StatusUnderDebate:
		return StatusVoting, true
	}
	return s, false
}

// Category is the subject area of a law or policy.
type Category uint8

const (
	CategoryEconomic Category = iota
	CategoryTax
	CategoryHealthcare
	CategoryEducation
	CategoryEnvironment
	CategoryInfrastructure
	CategoryPublicSafety
	CategoryJustice
	CategorySocial
)

var categoryNames = [...]string{
	"economic", "tax", "healthcare", "education", "environment", "infrastructure", "public_safety", "justice", "social",
}

// String returns the category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory maps a name back to a Category.
func ParseCategory(s string) (Category, error) {
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Body is the chamber a law is filed in.
type Body uint8

const (
	BodyCityCouncil Body = iota
	BodyStateLegislature
	BodyCongress
)

var bodyNames = [...]string{"city_council", "state_legislature", "congress"}

// String returns the body name.
func (b Body) String() string {
	if int(b) < len(bodyNames) {
		return bodyNames[b]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (b Body) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Body) UnmarshalText(raw []byte) error {
	for i, n := range bodyNames {
		if n == string(raw) {
			*b = Body(i)
			return nil
		}
	}
	return fmt.Errorf("unknown legislative body %q", raw)
}

// Seats returns the number of voting members.
func (b Body) Seats() int {
	switch b {
	case BodyStateLegislature:
		return 100
	case BodyCongress:
		return 535
	default:
		return 15
	}
}

// Jurisdiction returns the government whose treasury and economy the body's
// laws affect.
func (b Body) Jurisdiction() economy.Jurisdiction {
	switch b {
	case BodyStateLegislature:
		return economy.State
	case BodyCongress:
		return economy.Federal
	default:
		return economy.Local
	}
}

// bodyFor picks the chamber for a sponsor. A sponsor without office files with
// the city council.
func bodyFor(s character.State) Body {
	o, ok := s.CurrentOffice()
	if !ok {
		return BodyCityCouncil
	}
	switch o.Level {
	case character.LevelState:
		return BodyStateLegislature
	case character.LevelFederal:
		return BodyCongress
	default:
		return BodyCityCouncil
	}
}

// scale converts local-sized budget figures to the size of the body's
// government.
func (b Body) scale() float64 {
	switch b {
	case BodyStateLegislature:
		return 50
	case BodyCongress:
		return 1000
	default:
		return 1
	}
}

// Effects is what a law or policy does when it takes effect.
type Effects struct {
	ApprovalChange float64 `json:"approval_change"` // Points of character approval
	EconomicImpact float64 `json:"economic_impact"` // Percent change in GDP level
	BudgetImpact   float64 `json:"budget_impact"`   // Treasury cash change, negative for spending
}

func (e Effects) scaled(k float64) Effects {
	return Effects{
		ApprovalChange: e.ApprovalChange,
		EconomicImpact: e.EconomicImpact,
		BudgetImpact:   e.BudgetImpact * k,
	}
}

// Law is a bill moving through a chamber.
type Law struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Category           Category   `json:"category"`
	Status             Status     `json:"status"`
	Sponsor            string     `json:"sponsor"`
	Body               Body       `json:"body"`
	VotesFor           int        `json:"votes_for"`
	VotesAgainst       int        `json:"votes_against"`
	PublicSupport      float64    `json:"public_support"` // 0–100
	Effects            Effects    `json:"effects"`
	ImplementationCost *float64   `json:"implementation_cost,omitempty"`
	StageDaysLeft      int        `json:"stage_days_left"`
	CreatedOn          time.Time  `json:"created_on"`
	ProposedOn         *time.Time `json:"proposed_on,omitempty"`
	ResolvedOn         *time.Time `json:"resolved_on,omitempty"`
}

// NetBudget is the treasury change the law books when it passes: its budget
// effect less the implementation cost.
func (l Law) NetBudget() float64 {
	if l.ImplementationCost == nil {
		return l.Effects.BudgetImpact
	}
	return l.Effects.BudgetImpact - *l.ImplementationCost
}

// Enactment carries the parts of an effect set that land outside the
// character: the economy and the treasury. The driver applies it once.
type Enactment struct {
	Source         string               `json:"source"` // Law or policy ID
	Title          string               `json:"title"`
	Jurisdiction   economy.Jurisdiction `json:"jurisdiction"`
	EconomicImpact float64              `json:"economic_impact"`
	BudgetImpact   float64              `json:"budget_impact"`
}
