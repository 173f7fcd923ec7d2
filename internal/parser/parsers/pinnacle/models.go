package pinnacle

// Minimal Pinnacle guest API models (Arcadia v0.1).

type Matchup struct {
	ID        int64  `json:"id"`
	ParentID  *int64 `json:"parentId,omitempty"`
	StartTime string `json:"startTime"` // RFC3339
	Type      string `json:"type"`      // "matchup" | "special"
	IsLive    bool   `json:"isLive"`

	League struct {
		Name string `json:"name"`
	} `json:"league"`

	Participants []Participant `json:"participants"`
}

type Participant struct {
	Alignment string `json:"alignment"` // "home" | "away" | "neutral"
	Name      string `json:"name"`
}

type Market struct {
	MatchupID   int64   `json:"matchupId"`
	Period      int     `json:"period"` // 0 = full game
	Type        string  `json:"type"`   // moneyline | spread | total | team_total
	IsAlternate bool    `json:"isAlternate"`
	Status      string  `json:"status"`
	Prices      []Price `json:"prices"`
}

type Price struct {
	Designation string `json:"designation"` // home | away | draw
	Price       int    `json:"price"`       // American odds
}
