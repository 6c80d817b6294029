package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/election"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/outcome"
	"github.com/talgya/capitol/internal/treasury"
)

// ErrNotInOffice is returned by commands that need a seat in government.
var ErrNotInOffice = errors.New("not in office")

// Commands validate in their subsystem, then the simulation applies the
// returned delta and enactment once. A failed result changes nothing.

// CreateLaw drafts a bill in the character's chamber.
func (s *Simulation) CreateLaw(cat legislature.Category) legislature.LawResult {
	if !s.Character.HoldsOffice() {
		return legislature.LawResult{Result: outcome.Fail(fmt.Errorf("%w: only officeholders can draft laws", ErrNotInOffice))}
	}
	res := s.legislature.CreateLaw(cat, s.Character)
	if res.Success {
		s.record("legislature", "%s (%s)", res.Message, res.Law.ID)
	}
	return res
}

// ProposeLaw files a draft.
func (s *Simulation) ProposeLaw(id string) legislature.LawResult {
	res := s.legislature.ProposeLaw(id, s.Character)
	return s.settleLaw(res)
}

// AdvanceLaw moves a law one stage, holding the vote when it is on the floor.
func (s *Simulation) AdvanceLaw(id string) legislature.LawResult {
	return s.settleLaw(s.legislature.AdvanceLaw(id))
}

// WithdrawLaw pulls a law from consideration.
func (s *Simulation) WithdrawLaw(id string) legislature.LawResult {
	return s.settleLaw(s.legislature.WithdrawLaw(id))
}

// DeleteDraftLaw discards an unproposed draft.
func (s *Simulation) DeleteDraftLaw(id string) legislature.LawResult {
	return s.settleLaw(s.legislature.DeleteDraftLaw(id))
}

func (s *Simulation) settleLaw(res legislature.LawResult) legislature.LawResult {
	if !res.Success {
		return res
	}
	s.apply(res.Delta)
	s.record("legislature", "%s", res.Message)
	if res.Enactment != nil {
		if err := s.enact(*res.Enactment); err != nil {
			res.Result = outcome.Fail(err)
			return res
		}
		s.updateStats()
	}
	return res
}

// ProposePolicy puts a policy up for consideration.
func (s *Simulation) ProposePolicy(id string) legislature.PolicyResult {
	return s.settlePolicy(s.legislature.ProposePolicy(id))
}

// EnactPolicy puts a proposed policy into force.
func (s *Simulation) EnactPolicy(id string) legislature.PolicyResult {
	if !s.Character.HoldsOffice() {
		return legislature.PolicyResult{Result: outcome.Fail(fmt.Errorf("%w: only officeholders can enact policy", ErrNotInOffice))}
	}
	return s.settlePolicy(s.legislature.EnactPolicy(id, s.Character))
}

// RepealPolicy withdraws an enacted policy.
func (s *Simulation) RepealPolicy(id string) legislature.PolicyResult {
	return s.settlePolicy(s.legislature.RepealPolicy(id))
}

func (s *Simulation) settlePolicy(res legislature.PolicyResult) legislature.PolicyResult {
	if !res.Success {
		return res
	}
	s.apply(res.Delta)
	s.record("legislature", "%s", res.Message)
	if res.Enactment != nil {
		if err := s.enact(*res.Enactment); err != nil {
			res.Result = outcome.Fail(err)
			return res
		}
	}
	s.updateStats()
	return res
}

// StartCampaign opens a run for office.
func (s *Simulation) StartCampaign(id character.OfficeID) election.CampaignResult {
	res := s.elections.StartCampaign(id, s.Character, s.Date)
	if res.Success {
		s.record("election", "%s", res.Message)
	}
	return res
}

// PerformCampaignActivity spends campaign funds on an activity.
func (s *Simulation) PerformCampaignActivity(t election.ActivityType) election.CampaignResult {
	res := s.elections.PerformCampaignActivity(t, s.Character)
	if res.Success {
		s.apply(res.Delta)
	}
	return res
}

// ApplyBudget books a budget item to the character's government and rescores.
func (s *Simulation) ApplyBudget(amount decimal.Decimal, description string) outcome.Result {
	if !s.Character.HoldsOffice() {
		return outcome.Fail(fmt.Errorf("%w: only officeholders can set a budget", ErrNotInOffice))
	}
	j := s.jurisdiction()
	e, err := s.book.Ledger(j).ApplyBudget(amount, description, s.fiscalYear(s.Date), s.Date)
	if err != nil {
		if errors.Is(err, treasury.ErrOutOfOrder) {
			slog.Error("budget out of order", "jurisdiction", j, "error", err)
		}
		return outcome.Fail(err)
	}
	s.record("treasury", "%s: %s", description, economy.FormatGDP(e.CashChange.InexactFloat64()))
	s.updateStats()

	msg := fmt.Sprintf("Booked %s to the %s budget. Balance %s.", economy.FormatGDP(e.CashChange.InexactFloat64()),
		j, economy.FormatGDP(e.EndingBalance.InexactFloat64()))
	return outcome.OK(msg, character.Delta{})
}
