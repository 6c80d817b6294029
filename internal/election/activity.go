package election

import (
	"fmt"
	"time"

	"github.com/talgya/capitol/internal/character"
)

// ActivityType names a campaign activity.
type ActivityType string

const (
	ActivityRally        ActivityType = "rally"
	ActivityTownHall     ActivityType = "town_hall"
	ActivityDoorKnocking ActivityType = "door_knocking"
	ActivityTVAd         ActivityType = "tv_ad"
	ActivitySocialMedia  ActivityType = "social_media"
	ActivityDebatePrep   ActivityType = "debate_prep"
	ActivityFundraiser   ActivityType = "fundraiser"
)

// Activity is a catalog entry. Costs and money raised are for a local race and
// scale with the office level.
type Activity struct {
	Type           ActivityType `json:"type"`
	Name           string       `json:"name"`
	Cost           float64      `json:"cost"`
	BasePollImpact float64      `json:"base_poll_impact"`
	Raises         float64      `json:"raises,omitempty"` // Campaign funds brought in
}

var activities = []Activity{
	{Type: ActivityRally, Name: "Hold a rally", Cost: 5_000, BasePollImpact: 1.5},
	{Type: ActivityTownHall, Name: "Town hall meeting", Cost: 2_000, BasePollImpact: 1.0},
	{Type: ActivityDoorKnocking, Name: "Door-to-door canvassing", Cost: 500, BasePollImpact: 0.5},
	{Type: ActivityTVAd, Name: "Television ad buy", Cost: 25_000, BasePollImpact: 3.0},
	{Type: ActivitySocialMedia, Name: "Social media push", Cost: 1_500, BasePollImpact: 0.8},
	{Type: ActivityDebatePrep, Name: "Debate preparation", Cost: 1_000, BasePollImpact: 1.2},
	{Type: ActivityFundraiser, Name: "Fundraising dinner", Cost: 1_000, BasePollImpact: 0.2, Raises: 10_000},
}

// Activities returns the catalog scaled for a race at level.
func Activities(level character.Level) []Activity {
	out := make([]Activity, len(activities))
	for i, a := range activities {
		out[i] = a.scaled(level)
	}
	return out
}

// LookupActivity returns the catalog entry for t scaled for level.
func LookupActivity(t ActivityType, level character.Level) (Activity, error) {
	for _, a := range activities {
		if a.Type == t {
			return a.scaled(level), nil
		}
	}
	return Activity{}, fmt.Errorf("%w: %q", ErrUnknownActivity, t)
}

func (a Activity) scaled(level character.Level) Activity {
	k := 1.0
	switch level {
	case character.LevelState:
		k = 5
	case character.LevelFederal:
		k = 20
	}
	a.Cost *= k
	a.Raises *= k
	return a
}

// ActivityLog records one performed activity.
type ActivityLog struct {
	Date       time.Time    `json:"date"`
	Type       ActivityType `json:"type"`
	Cost       float64      `json:"cost"`
	PollChange float64      `json:"poll_change"`
	PollAfter  float64      `json:"poll_after"`
}
