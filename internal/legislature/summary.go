package legislature

import (
	"fmt"
	"time"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/entropy"
)

// SessionSummary is the chamber's record, recomputed from the laws on every call.
type SessionSummary struct {
	Drafts          int     `json:"drafts"`
	Proposed        int     `json:"proposed"` // Ever filed, whatever happened after
	Active          int     `json:"active"`
	Passed          int     `json:"passed"`
	Rejected        int     `json:"rejected"`
	Withdrawn       int     `json:"withdrawn"`
	PassRate        float64 `json:"pass_rate"` // Percent of voted laws that passed
	EnactedPolicies int     `json:"enacted_policies"`
	ActiveLaws      []Law   `json:"active_laws,omitempty"`
}

// SessionSummary counts laws by status.
func (p *Pipeline) SessionSummary() SessionSummary {
	var s SessionSummary
	for _, l := range p.laws {
		if l.ProposedOn != nil {
			s.Proposed++
		}
		switch {
		case l.Status == StatusDraft:
			s.Drafts++
		case l.Status.Active():
			s.Active++
			s.ActiveLaws = append(s.ActiveLaws, *l)
		case l.Status == StatusPassed:
			s.Passed++
		case l.Status == StatusRejected:
			s.Rejected++
		case l.Status == StatusWithdrawn:
			s.Withdrawn++
		}
	}
	s.PassRate = passRate(s.Passed, s.Rejected)
	for _, pol := range p.policies {
		if pol.Status == PolicyEnacted {
			s.EnactedPolicies++
		}
	}
	return s
}

func passRate(passed, rejected int) float64 {
	if passed+rejected == 0 {
		return 0
	}
	return float64(passed) / float64(passed+rejected) * 100
}

// Accumulation is the legislative record as the score aggregator sees it.
type Accumulation struct {
	PassedLaws      int     `json:"passed_laws"`
	RejectedLaws    int     `json:"rejected_laws"`
	EnactedPolicies int     `json:"enacted_policies"`
	PassRate        float64 `json:"pass_rate"`
	ApprovalChange  float64 `json:"approval_change"`
	EconomicImpact  float64 `json:"economic_impact"`
}

// Accumulated sums the effects of every passed law and enacted policy of the
// government j.
func (p *Pipeline) Accumulated(j economy.Jurisdiction) Accumulation {
	var a Accumulation
	for _, l := range p.laws {
		if l.Body.Jurisdiction() != j {
			continue
		}
		switch l.Status {
		case StatusPassed:
			a.PassedLaws++
			a.ApprovalChange += l.Effects.ApprovalChange
			a.EconomicImpact += l.Effects.EconomicImpact
		case StatusRejected:
			a.RejectedLaws++
		}
	}
	for _, pol := range p.policies {
		if pol.Status == PolicyEnacted && pol.Body.Jurisdiction() == j {
			a.EnactedPolicies++
			a.ApprovalChange += pol.Effects.ApprovalChange
			a.EconomicImpact += pol.Effects.EconomicImpact
		}
	}
	a.PassRate = passRate(a.PassedLaws, a.RejectedLaws)
	return a
}

// PipelineState is the serializable form of a Pipeline.
type PipelineState struct {
	Config   Config    `json:"config"`
	NextID   int       `json:"next_id"`
	Today    time.Time `json:"today"`
	Laws     []Law     `json:"laws"`
	Policies []Policy  `json:"policies"`
}

// State captures the pipeline for a snapshot.
func (p *Pipeline) State() PipelineState {
	return PipelineState{
		Config:   p.cfg,
		NextID:   p.nextID,
		Today:    p.today,
		Laws:     p.Laws(),
		Policies: p.Policies(),
	}
}

// RestorePipeline rebuilds a pipeline from a snapshot. src must be the stream
// restored to the position it had when the snapshot was taken.
func RestorePipeline(st PipelineState, src *entropy.Source) (*Pipeline, error) {
	p := &Pipeline{cfg: st.Config, rng: src, nextID: st.NextID, today: st.Today}
	seen := make(map[string]bool, len(st.Laws))
	for _, l := range st.Laws {
		if seen[l.ID] {
			return nil, fmt.Errorf("restore pipeline: duplicate law %s", l.ID)
		}
		seen[l.ID] = true
		p.laws = append(p.laws, &l)
	}
	for _, pol := range st.Policies {
		p.policies = append(p.policies, &pol)
	}
	if p.nextID <= len(p.laws) {
		p.nextID = len(p.laws) + 1
	}
	return p, nil
}
