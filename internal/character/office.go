package character

// Level is the tier of government an office belongs to.
type Level uint8

const (
	LevelLocal Level = iota
	LevelState
	LevelFederal
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelLocal:
		return "local"
	case LevelState:
		return "state"
	case LevelFederal:
		return "federal"
	default:
		return "unknown"
	}
}

// OfficeID identifies an office in the catalog.
type OfficeID string

const (
	OfficeNone             OfficeID = ""
	OfficeCityCouncil      OfficeID = "city_council"
	OfficeMayor            OfficeID = "mayor"
	OfficeStateRep         OfficeID = "state_representative"
	OfficeStateSenator     OfficeID = "state_senator"
	OfficeGovernor         OfficeID = "governor"
	OfficeUSRepresentative OfficeID = "us_representative"
	OfficeUSSenator        OfficeID = "us_senator"
	OfficePresident        OfficeID = "president"
)

// Office describes an elected position and the gates for running for it.
type Office struct {
	ID           OfficeID `json:"id"`
	Title        string   `json:"title"`
	Level        Level    `json:"level"`
	MinAge       int      `json:"min_age"`
	CampaignDays int      `json:"campaign_days"` // Length of the campaign season
	Rivals       int      `json:"rivals"`        // NPC candidates on the ballot
	Prerequisite Level    `json:"prerequisite"`  // Level of office that must be held first
	NeedsPrior   bool     `json:"needs_prior"`   // Whether Prerequisite applies
}

var offices = []Office{
	{ID: OfficeCityCouncil, Title: "City Council Member", Level: LevelLocal, MinAge: 18, CampaignDays: 60, Rivals: 2},
	{ID: OfficeMayor, Title: "Mayor", Level: LevelLocal, MinAge: 21, CampaignDays: 90, Rivals: 2},
	{ID: OfficeStateRep, Title: "State Representative", Level: LevelState, MinAge: 21, CampaignDays: 90, Rivals: 2},
	{ID: OfficeStateSenator, Title: "State Senator", Level: LevelState, MinAge: 25, CampaignDays: 120, Rivals: 2, Prerequisite: LevelLocal, NeedsPrior: true},
	{ID: OfficeGovernor, Title: "Governor", Level: LevelState, MinAge: 30, CampaignDays: 150, Rivals: 3, Prerequisite: LevelState, NeedsPrior: true},
	{ID: OfficeUSRepresentative, Title: "U.S. Representative", Level: LevelFederal, MinAge: 25, CampaignDays: 120, Rivals: 2, Prerequisite: LevelLocal, NeedsPrior: true},
	{ID: OfficeUSSenator, Title: "U.S. Senator", Level: LevelFederal, MinAge: 30, CampaignDays: 180, Rivals: 3, Prerequisite: LevelState, NeedsPrior: true},
	{ID: OfficePresident, Title: "President", Level: LevelFederal, MinAge: 35, CampaignDays: 365, Rivals: 4, Prerequisite: LevelFederal, NeedsPrior: true},
}

// LookupOffice returns the catalog entry for id.
func LookupOffice(id OfficeID) (Office, bool) {
	for _, o := range offices {
		if o.ID == id {
			return o, true
		}
	}
	return Office{}, false
}

// Offices returns the full catalog, lowest office first.
func Offices() []Office {
	out := make([]Office, len(offices))
	copy(out, offices)
	return out
}
