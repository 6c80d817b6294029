package legislature

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/entropy"
)

var today = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func councilMember() character.State {
	return character.State{
		Name:       "Dana Reyes",
		Age:        34,
		Position:   character.OfficeCityCouncil,
		Funds:      50_000,
		Approval:   50,
		Reputation: 40,
		Record:     []character.OfficeID{character.OfficeCityCouncil},
	}
}

func newPipeline(seed int64) *Pipeline {
	return NewPipeline(DefaultConfig(), entropy.New(seed), today)
}

func drafted(t *testing.T, p *Pipeline, cat Category) Law {
	t.Helper()
	res := p.CreateLaw(cat, councilMember())
	require.True(t, res.Success, res.Message)
	return res.Law
}

func TestCreateLawUsesCategoryDefaults(t *testing.T) {
	p := newPipeline(1)
	l := drafted(t, p, CategoryEducation)
	assert.Equal(t, StatusDraft, l.Status)
	assert.Equal(t, "Public Schools Modernization Act", l.Title)
	assert.Equal(t, 0, l.VotesFor+l.VotesAgainst)
	assert.Equal(t, BodyCityCouncil, l.Body)
	assert.Equal(t, "Dana Reyes", l.Sponsor)
	assert.InDelta(t, 65, l.PublicSupport, 1e-9)

	governor := councilMember()
	governor.Position = character.OfficeGovernor
	res := p.CreateLaw(CategoryEducation, governor)
	require.True(t, res.Success)
	assert.Equal(t, BodyStateLegislature, res.Law.Body)
	require.NotNil(t, res.Law.ImplementationCost)
	assert.InDelta(t, *l.ImplementationCost*50, *res.Law.ImplementationCost, 1e-6)
	assert.InDelta(t, -25e6*50, res.Law.NetBudget(), 1e-6)
	assert.NotEqual(t, l.ID, res.Law.ID)
}

func TestCreateLawUnknownCategory(t *testing.T) {
	res := newPipeline(1).CreateLaw(Category(99), councilMember())
	assert.False(t, res.Success)
	assert.True(t, res.Is(ErrUnknownCategory))
}

func TestProposeLawNeedsReputation(t *testing.T) {
	p := newPipeline(1)
	l := drafted(t, p, CategoryTax)

	weak := councilMember()
	weak.Reputation = 19.9
	res := p.ProposeLaw(l.ID, weak)
	assert.True(t, res.Is(ErrInsufficientReputation))
	got, _ := p.Law(l.ID)
	assert.Equal(t, StatusDraft, got.Status)

	res = p.ProposeLaw(l.ID, councilMember())
	require.True(t, res.Success, res.Message)
	assert.Equal(t, StatusProposed, res.Law.Status)
	assert.InDelta(t, -5, res.Delta.Reputation, 1e-9)
	require.NotNil(t, res.Law.ProposedOn)

	res = p.ProposeLaw(l.ID, councilMember())
	assert.True(t, res.Is(ErrInvalidTransition))
}

func TestAdvanceThroughStages(t *testing.T) {
	p := newPipeline(1)
	l := drafted(t, p, CategoryInfrastructure)
	assert.True(t, p.AdvanceLaw(l.ID).Is(ErrInvalidTransition), "drafts do not advance")
	require.True(t, p.ProposeLaw(l.ID, councilMember()).Success)

	for _, want := range []Status{StatusInCommittee, StatusUnderDebate, StatusVoting} {
		res := p.AdvanceLaw(l.ID)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, want, res.Law.Status)
		assert.Nil(t, res.Enactment)
		assert.Zero(t, res.Law.VotesFor, "no votes before the tally")
		assert.Zero(t, res.Law.VotesAgainst, "no votes before the tally")
	}
	res := p.AdvanceLaw(l.ID)
	require.True(t, res.Success)
	assert.True(t, res.Law.Status.Terminal())
	assert.Equal(t, BodyCityCouncil.Seats(), res.Law.VotesFor+res.Law.VotesAgainst)
	assert.True(t, p.AdvanceLaw(l.ID).Is(ErrInvalidTransition))
	assert.True(t, p.AdvanceLaw("law-9999").Is(ErrLawNotFound))
}

func toVoting(t *testing.T, p *Pipeline, id string) {
	t.Helper()
	require.True(t, p.ProposeLaw(id, councilMember()).Success)
	for range 3 {
		require.True(t, p.AdvanceLaw(id).Success)
	}
}

func TestStrongSupportAlwaysPasses(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		p := newPipeline(seed)
		l := drafted(t, p, CategoryEducation)
		p.laws[0].PublicSupport = 70
		toVoting(t, p, l.ID)

		res := p.AdvanceLaw(l.ID)
		require.True(t, res.Success)
		assert.Equal(t, StatusPassed, res.Law.Status, "seed %d", seed)
		assert.Equal(t, BodyCityCouncil.Seats(), res.Law.VotesFor+res.Law.VotesAgainst)
		assert.Greater(t, res.Law.VotesFor, res.Law.VotesAgainst)
		require.NotNil(t, res.Enactment)
		assert.Equal(t, economy.Local, res.Enactment.Jurisdiction)
		assert.InDelta(t, l.Effects.ApprovalChange, res.Delta.Approval, 1e-9)
	}
}

func TestWeakSupportAlwaysFails(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		p := newPipeline(seed)
		l := drafted(t, p, CategoryJustice)
		p.laws[0].PublicSupport = 30
		toVoting(t, p, l.ID)

		res := p.AdvanceLaw(l.ID)
		require.True(t, res.Success, "a rejection is a normal outcome")
		assert.Equal(t, StatusRejected, res.Law.Status)
		assert.Nil(t, res.Enactment)
		assert.True(t, res.Delta.IsZero())
	}
}

func TestVoteDeterministicForSeed(t *testing.T) {
	run := func() Law {
		p := newPipeline(77)
		l := drafted(t, p, CategoryTax)
		toVoting(t, p, l.ID)
		return p.AdvanceLaw(l.ID).Law
	}
	a, b := run(), run()
	assert.Equal(t, a.VotesFor, b.VotesFor)
	assert.Equal(t, a.Status, b.Status)
}

func TestWithdrawAndDelete(t *testing.T) {
	p := newPipeline(1)
	a := drafted(t, p, CategoryHealthcare)
	b := drafted(t, p, CategorySocial)
	require.True(t, p.ProposeLaw(a.ID, councilMember()).Success)

	res := p.DeleteDraftLaw(a.ID)
	assert.True(t, res.Is(ErrInvalidTransition))

	res = p.WithdrawLaw(a.ID)
	require.True(t, res.Success)
	assert.Equal(t, "Law 'Community Health Access Act' has been withdrawn from consideration.", res.Message)
	assert.True(t, p.WithdrawLaw(a.ID).Is(ErrInvalidTransition))

	require.True(t, p.DeleteDraftLaw(b.ID).Success)
	_, ok := p.Law(b.ID)
	assert.False(t, ok)
	assert.Len(t, p.Laws(), 1)
}

func TestTickAutoAdvancesToResolution(t *testing.T) {
	p := newPipeline(3)
	l := drafted(t, p, CategoryEducation)
	p.laws[0].PublicSupport = 80
	require.True(t, p.ProposeLaw(l.ID, councilMember()).Success)

	cfg := DefaultConfig()
	days := cfg.ReferralDays + cfg.CommitteeDays + cfg.DebateDays + cfg.VotingDays
	var resolved []LawResult
	var enacted []Enactment
	for n := 1; n <= days; n++ {
		rep := p.Tick(today.AddDate(0, 0, n))
		resolved = append(resolved, rep.Resolved...)
		enacted = append(enacted, rep.Enactments...)
		if n < days {
			assert.Empty(t, rep.Resolved, "day %d", n)
		}
	}
	require.Len(t, resolved, 1)
	require.Len(t, enacted, 1)
	assert.Equal(t, StatusPassed, resolved[0].Law.Status)

	rep := p.Tick(today.AddDate(0, 0, days+1))
	assert.Empty(t, rep.Resolved)
	assert.True(t, rep.Delta.IsZero())
}

func TestTickWithoutAutoAdvanceHolds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoAdvance = false
	p := NewPipeline(cfg, entropy.New(1), today)
	l := drafted(t, p, CategoryEducation)
	require.True(t, p.ProposeLaw(l.ID, councilMember()).Success)
	for n := 1; n <= 30; n++ {
		p.Tick(today.AddDate(0, 0, n))
	}
	got, _ := p.Law(l.ID)
	assert.Equal(t, StatusProposed, got.Status)
}

func TestSessionSummaryIsDerived(t *testing.T) {
	p := newPipeline(4)
	pass := drafted(t, p, CategoryEducation)
	fail := drafted(t, p, CategoryJustice)
	drafted(t, p, CategoryTax)
	gone := drafted(t, p, CategorySocial)
	p.laws[0].PublicSupport = 90
	p.laws[1].PublicSupport = 10

	toVoting(t, p, pass.ID)
	toVoting(t, p, fail.ID)
	p.AdvanceLaw(pass.ID)
	p.AdvanceLaw(fail.ID)
	require.True(t, p.ProposeLaw(gone.ID, councilMember()).Success)
	p.WithdrawLaw(gone.ID)

	s := p.SessionSummary()
	assert.Equal(t, 1, s.Drafts)
	assert.Equal(t, 3, s.Proposed)
	assert.Equal(t, 0, s.Active)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.Withdrawn)
	assert.InDelta(t, 50, s.PassRate, 1e-9)

	a := p.Accumulated(economy.Local)
	assert.Equal(t, 1, a.PassedLaws)
	assert.InDelta(t, p.laws[0].Effects.ApprovalChange, a.ApprovalChange, 1e-9)
	assert.Zero(t, p.Accumulated(economy.State).PassedLaws)
}

func TestPolicyLifecycle(t *testing.T) {
	p := newPipeline(1)
	who := councilMember()

	assert.True(t, p.EnactPolicy("small-biz-grants", who).Is(ErrInvalidTransition))
	require.True(t, p.ProposePolicy("small-biz-grants").Success)

	broke := who
	broke.Funds = 100
	res := p.EnactPolicy("small-biz-grants", broke)
	assert.True(t, res.Is(ErrInsufficientFunds))
	assert.Equal(t, PolicyProposed, p.policy("small-biz-grants").Status)

	res = p.EnactPolicy("small-biz-grants", who)
	require.True(t, res.Success, res.Message)
	assert.InDelta(t, -15_000, res.Delta.Funds, 1e-9)
	assert.InDelta(t, 2, res.Delta.Approval, 1e-9)
	require.NotNil(t, res.Enactment)
	assert.InDelta(t, -10e6, res.Enactment.BudgetImpact, 1e-6)
	assert.Equal(t, 1, p.SessionSummary().EnactedPolicies)

	res = p.RepealPolicy("small-biz-grants")
	require.True(t, res.Success)
	assert.InDelta(t, -1, res.Delta.Approval, 1e-9)
	assert.Equal(t, PolicyRepealed, res.Policy.Status)
	assert.True(t, p.ProposePolicy("nope").Is(ErrPolicyNotFound))
}

func TestPassedLawBooksNetOfImplementationCost(t *testing.T) {
	p := newPipeline(2)
	l := drafted(t, p, CategoryEconomic)
	p.laws[0].PublicSupport = 90
	toVoting(t, p, l.ID)

	res := p.AdvanceLaw(l.ID)
	require.Equal(t, StatusPassed, res.Law.Status)
	require.NotNil(t, res.Enactment)
	assert.InDelta(t, 5e6-20e6, res.Enactment.BudgetImpact, 1e-6)

	tax := Law{Effects: Effects{BudgetImpact: 30e6}}
	assert.InDelta(t, 30e6, tax.NetBudget(), 1e-9, "no cost tracked")
}

func TestRepealLandsWhereThePolicyWasEnacted(t *testing.T) {
	p := newPipeline(1)
	mayor := councilMember()
	mayor.Position = character.OfficeMayor
	mayor.Funds = 1e6

	require.True(t, p.ProposePolicy("green-energy").Success)
	enact := p.EnactPolicy("green-energy", mayor)
	require.True(t, enact.Success, enact.Message)
	require.NotNil(t, enact.Enactment)
	assert.Equal(t, economy.Local, enact.Enactment.Jurisdiction)
	assert.InDelta(t, -12e6, enact.Enactment.BudgetImpact, 1e-6)
	assert.Equal(t, BodyCityCouncil, enact.Policy.Body)
	assert.Equal(t, 1, p.Accumulated(economy.Local).EnactedPolicies)
	assert.Zero(t, p.Accumulated(economy.State).EnactedPolicies)

	// Repeal books to the enacting government whatever office is held now.
	repeal := p.RepealPolicy("green-energy")
	require.True(t, repeal.Success, repeal.Message)
	require.NotNil(t, repeal.Enactment)
	assert.Equal(t, economy.Local, repeal.Enactment.Jurisdiction)
	assert.InDelta(t, 4e6, repeal.Enactment.BudgetImpact, 1e-6)

	governor := mayor
	governor.Position = character.OfficeGovernor
	require.True(t, p.ProposePolicy("green-energy").Success)
	enact = p.EnactPolicy("green-energy", governor)
	require.True(t, enact.Success, enact.Message)
	assert.Equal(t, BodyStateLegislature, enact.Policy.Body)
	assert.Equal(t, economy.State, enact.Enactment.Jurisdiction)
	assert.InDelta(t, -12e6*50, enact.Enactment.BudgetImpact, 1e-6)
	assert.Equal(t, 1, p.Accumulated(economy.State).EnactedPolicies)
	assert.Zero(t, p.Accumulated(economy.Local).EnactedPolicies)
}

func TestPolicyPrerequisites(t *testing.T) {
	p := newPipeline(1)
	who := councilMember()
	require.True(t, p.ProposePolicy("enterprise-zones").Success)
	assert.ErrorIs(t, p.MeetsRequirements("enterprise-zones", who), ErrRequirementsNotMet)

	require.True(t, p.ProposePolicy("small-biz-grants").Success)
	require.True(t, p.EnactPolicy("small-biz-grants", who).Success)
	require.NoError(t, p.MeetsRequirements("enterprise-zones", who))
	require.True(t, p.EnactPolicy("enterprise-zones", who).Success)

	assert.True(t, p.RepealPolicy("small-biz-grants").Is(ErrRequirementsNotMet))
}

func TestRestorePipelineContinuesSequence(t *testing.T) {
	src := entropy.New(9)
	p := NewPipeline(DefaultConfig(), src, today)
	l := drafted(t, p, CategoryEconomic)
	toVoting(t, p, l.ID)

	raw, err := json.Marshal(p.State())
	require.NoError(t, err)
	var st PipelineState
	require.NoError(t, json.Unmarshal(raw, &st))

	restored, err := RestorePipeline(st, entropy.Restore(src.State()))
	require.NoError(t, err)

	a := p.AdvanceLaw(l.ID)
	b := restored.AdvanceLaw(l.ID)
	assert.Equal(t, a.Law.VotesFor, b.Law.VotesFor)
	assert.Equal(t, a.Law.Status, b.Law.Status)

	next := restored.CreateLaw(CategoryTax, councilMember())
	assert.Equal(t, "law-0002", next.Law.ID)
}
