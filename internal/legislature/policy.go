package legislature

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/outcome"
)

// PolicyStatus is where a policy stands.
type PolicyStatus uint8

const (
	PolicyAvailable PolicyStatus = iota
	PolicyProposed
	PolicyEnacted
	PolicyRepealed
)

var policyStatusNames = [...]string{"available", "proposed", "enacted", "repealed"}

// String returns the status name.
func (s PolicyStatus) String() string {
	if int(s) < len(policyStatusNames) {
		return policyStatusNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s PolicyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PolicyStatus) UnmarshalText(b []byte) error {
	for i, n := range policyStatusNames {
		if n == string(b) {
			*s = PolicyStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown policy status %q", b)
}

// Requirements gate enactment.
type Requirements struct {
	CostToEnact   float64  `json:"cost_to_enact"`
	Prerequisites []string `json:"prerequisites,omitempty"` // Policy IDs that must be enacted
}

// Policy is an executive program the character can put in place without a vote.
type Policy struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Category          Category     `json:"category"`
	SupportPercentage float64      `json:"support_percentage"`
	Status            PolicyStatus `json:"status"`
	Effects           Effects      `json:"effects"`
	RepealEffects     Effects      `json:"repeal_effects"`
	Requirements      Requirements `json:"requirements"`
	Body              Body         `json:"body"` // Chamber of the government that enacted it
	EnactedOn         *time.Time   `json:"enacted_on,omitempty"`
	RepealedOn        *time.Time   `json:"repealed_on,omitempty"`
}

// PolicyResult is the outcome of a policy command.
type PolicyResult struct {
	outcome.Result
	Policy    Policy     `json:"policy"`
	Enactment *Enactment `json:"enactment,omitempty"`
}

func policyFail(err error) PolicyResult {
	return PolicyResult{Result: outcome.Fail(err)}
}

// Policies returns copies of every policy in catalog order.
func (p *Pipeline) Policies() []Policy {
	out := make([]Policy, 0, len(p.policies))
	for _, pol := range p.policies {
		out = append(out, *pol)
	}
	return out
}

func (p *Pipeline) policy(id string) *Policy {
	for _, pol := range p.policies {
		if pol.ID == id {
			return pol
		}
	}
	return nil
}

// ProposePolicy puts an available policy forward for consideration.
func (p *Pipeline) ProposePolicy(id string) PolicyResult {
	pol := p.policy(id)
	if pol == nil {
		return policyFail(fmt.Errorf("%w: %s", ErrPolicyNotFound, id))
	}
	if pol.Status != PolicyAvailable && pol.Status != PolicyRepealed {
		return policyFail(fmt.Errorf("%w: cannot propose a %s policy", ErrInvalidTransition, pol.Status))
	}
	pol.Status = PolicyProposed
	msg := fmt.Sprintf("%s is under consideration.", pol.Title)
	return PolicyResult{Result: outcome.OK(msg, character.Delta{}), Policy: *pol}
}

// MeetsRequirements reports why who cannot enact the policy, or nil.
func (p *Pipeline) MeetsRequirements(id string, who character.State) error {
	pol := p.policy(id)
	if pol == nil {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, id)
	}
	return p.meets(pol, who)
}

func (p *Pipeline) meets(pol *Policy, who character.State) error {
	if who.Funds < pol.Requirements.CostToEnact {
		return fmt.Errorf("%w: %s costs %.0f, have %.0f", ErrInsufficientFunds,
			pol.Title, pol.Requirements.CostToEnact, who.Funds)
	}
	for _, pre := range pol.Requirements.Prerequisites {
		dep := p.policy(pre)
		if dep == nil || dep.Status != PolicyEnacted {
			return fmt.Errorf("%w: %s requires %s", ErrRequirementsNotMet, pol.Title, pre)
		}
	}
	return nil
}

// EnactPolicy puts a proposed policy into force in the government the
// character serves. The cost is deducted and the effects returned in the same
// result, or nothing happens.
func (p *Pipeline) EnactPolicy(id string, who character.State) PolicyResult {
	pol := p.policy(id)
	if pol == nil {
		return policyFail(fmt.Errorf("%w: %s", ErrPolicyNotFound, id))
	}
	if pol.Status != PolicyProposed {
		return policyFail(fmt.Errorf("%w: cannot enact a %s policy", ErrInvalidTransition, pol.Status))
	}
	if err := p.meets(pol, who); err != nil {
		return policyFail(err)
	}

	body := bodyFor(who)
	eff := pol.Effects.scaled(body.scale())
	on := p.today
	pol.Status = PolicyEnacted
	pol.Body = body
	pol.EnactedOn = &on
	pol.RepealedOn = nil
	slog.Info("policy enacted", "policy", pol.ID, "jurisdiction", body.Jurisdiction())

	return PolicyResult{
		Result: outcome.OK(fmt.Sprintf("%s has been enacted.", pol.Title), character.Delta{
			Funds:    -pol.Requirements.CostToEnact,
			Approval: eff.ApprovalChange,
		}),
		Policy:    *pol,
		Enactment: enactment(pol, body, eff),
	}
}

// RepealPolicy withdraws an enacted policy and applies its repeal effects to
// the government that enacted it, whatever office the character holds now.
// A policy that another enacted policy depends on cannot be repealed.
func (p *Pipeline) RepealPolicy(id string) PolicyResult {
	pol := p.policy(id)
	if pol == nil {
		return policyFail(fmt.Errorf("%w: %s", ErrPolicyNotFound, id))
	}
	if pol.Status != PolicyEnacted {
		return policyFail(fmt.Errorf("%w: cannot repeal a %s policy", ErrInvalidTransition, pol.Status))
	}
	for _, other := range p.policies {
		if other.Status == PolicyEnacted && slices.Contains(other.Requirements.Prerequisites, pol.ID) {
			return policyFail(fmt.Errorf("%w: %s depends on %s", ErrRequirementsNotMet, other.Title, pol.Title))
		}
	}

	body := pol.Body
	eff := pol.RepealEffects.scaled(body.scale())
	on := p.today
	pol.Status = PolicyRepealed
	pol.RepealedOn = &on
	slog.Info("policy repealed", "policy", pol.ID, "jurisdiction", body.Jurisdiction())

	return PolicyResult{
		Result:    outcome.OK(fmt.Sprintf("%s has been repealed.", pol.Title), character.Delta{Approval: eff.ApprovalChange}),
		Policy:    *pol,
		Enactment: enactment(pol, body, eff),
	}
}

func enactment(pol *Policy, body Body, eff Effects) *Enactment {
	if eff.EconomicImpact == 0 && eff.BudgetImpact == 0 {
		return nil
	}
	return &Enactment{
		Source:         pol.ID,
		Title:          pol.Title,
		Jurisdiction:   body.Jurisdiction(),
		EconomicImpact: eff.EconomicImpact,
		BudgetImpact:   eff.BudgetImpact,
	}
}
