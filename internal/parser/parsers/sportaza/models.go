package sportaza

// Minimal Altenar widget API models.

type widgetResponse struct {
	Odds    []Odd    `json:"odds"`
	Champs  []Champ  `json:"champs"`
	Events  []Event  `json:"events"`
	Markets []Market `json:"markets"`
}

type Odd struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

type Champ struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ChampID       int64   `json:"champId"`
	StartDate     string  `json:"startDate"` // RFC3339, UTC
	CompetitorIDs []int64 `json:"competitorIds"`
	MarketIDs     []int64 `json:"marketIds"`
	SC            int     `json:"sc"` // competitor count
}

type Market struct {
	ID     int64   `json:"id"`
	OddIDs []int64 `json:"oddIds"`
}
