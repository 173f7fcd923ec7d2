package greenluck

import "github.com/Vodeneev/openingalert/internal/pkg/parserutil"

// Minimal sbx.bet cache models.

type popularResponse struct {
	Events []Event `json:"events"`
}

type Event struct {
	TournamentName *string `json:"tournament_name"`
	DateStart      string  `json:"date_start"`
	MainOdds       struct {
		Main map[string]MainOdd `json:"main"`
	} `json:"main_odds"`
}

type MainOdd struct {
	TeamSide parserutil.FlexString `json:"team_side"`
	TeamName string                `json:"team_name"`
	OddValue parserutil.FlexString `json:"odd_value"`
}
