// Package character holds the player's scalar state and the offices they can
// run for. Simulation subsystems read a State by value and answer with a Delta;
// only the driver applies deltas.
package character

import (
	"errors"
	"fmt"
)

// ErrIneligible is returned when the character cannot run for an office.
var ErrIneligible = errors.New("not eligible for office")

// State is the player's attributes, funds, and position.
type State struct {
	Name          string   `json:"name"`
	Age           int      `json:"age"`
	Position      OfficeID `json:"position"`
	Funds         float64  `json:"funds"`
	CampaignFunds float64  `json:"campaign_funds"`
	Approval      float64  `json:"approval"`   // 0–100
	Reputation    float64  `json:"reputation"` // 0–100
	// Offices held over the career, oldest first.
	Record []OfficeID `json:"record,omitempty"`
}

// Delta is a proposed change to a State.
type Delta struct {
	Funds         float64   `json:"funds,omitempty"`
	CampaignFunds float64   `json:"campaign_funds,omitempty"`
	Approval      float64   `json:"approval,omitempty"`
	Reputation    float64   `json:"reputation,omitempty"`
	Position      *OfficeID `json:"position,omitempty"`
}

// IsZero reports whether the delta changes nothing.
func (d Delta) IsZero() bool {
	return d.Funds == 0 && d.CampaignFunds == 0 && d.Approval == 0 && d.Reputation == 0 && d.Position == nil
}

// Plus combines two deltas. A later position wins.
func (d Delta) Plus(o Delta) Delta {
	out := Delta{
		Funds:         d.Funds + o.Funds,
		CampaignFunds: d.CampaignFunds + o.CampaignFunds,
		Approval:      d.Approval + o.Approval,
		Reputation:    d.Reputation + o.Reputation,
		Position:      d.Position,
	}
	if o.Position != nil {
		out.Position = o.Position
	}
	return out
}

// Apply folds d into the state. Approval and reputation stay within [0, 100].
func (s *State) Apply(d Delta) {
	s.Funds += d.Funds
	s.CampaignFunds += d.CampaignFunds
	s.Approval = clampPercent(s.Approval + d.Approval)
	s.Reputation = clampPercent(s.Reputation + d.Reputation)
	if d.Position != nil && *d.Position != s.Position {
		s.Position = *d.Position
		if s.Position != OfficeNone {
			s.Record = append(s.Record, s.Position)
		}
	}
}

// HoldsOffice reports whether the character currently holds any position.
func (s State) HoldsOffice() bool {
	return s.Position != OfficeNone
}

// CurrentOffice returns the catalog entry for the held position.
func (s State) CurrentOffice() (Office, bool) {
	return LookupOffice(s.Position)
}

// HasHeld reports whether the character has ever held an office at level.
func (s State) HasHeld(level Level) bool {
	for _, id := range s.Record {
		if o, ok := LookupOffice(id); ok && o.Level >= level {
			return true
		}
	}
	return false
}

// Eligible checks the age and career gates for running for o.
func (s State) Eligible(o Office) error {
	if s.Age < o.MinAge {
		return fmt.Errorf("%w: %s requires age %d", ErrIneligible, o.Title, o.MinAge)
	}
	if s.Position == o.ID {
		return fmt.Errorf("%w: already serving as %s", ErrIneligible, o.Title)
	}
	if o.NeedsPrior && !s.HasHeld(o.Prerequisite) {
		return fmt.Errorf("%w: %s requires prior %s office", ErrIneligible, o.Title, o.Prerequisite)
	}
	return nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
