package models

type Duration struct {
	Text         string `json:"text"`
	TotalMinutes int    `json:"total_minutes,omitempty"`
}

type Price struct {
	Text      string  `json:"text"`
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Formatted string  `json:"formatted,omitempty"`
}

// FlightListing is one flight as extracted from the search page. Fields the
// page did not expose stay empty.
type FlightListing struct {
	Airline        string   `json:"airline"`
	FlightNumber   string   `json:"flight_number,omitempty"`
	DepartureTime  string   `json:"departure_time,omitempty"`
	ArrivalTime    string   `json:"arrival_time,omitempty"`
	Duration       Duration `json:"duration"`
	Stops          int      `json:"stops"`
	Layovers       []string `json:"layovers,omitempty"`
	Price          Price    `json:"price"`
	BestValueScore float64  `json:"best_value_score,omitempty"`
}

type RetrievalResult struct {
	SearchURL string          `json:"search_url"`
	Listings  []FlightListing `json:"listings"`
	Dropped   int             `json:"dropped,omitempty"`
}

type Recommendation struct {
	Text      string          `json:"text"`
	SearchURL string          `json:"search_url"`
	Model     string          `json:"model"`
	Listings  []FlightListing `json:"listings"`
}

type Credentials struct {
	ScraperAPIKey string
	LLMAPIKey     string
}

func (c Credentials) Complete() bool {
	return c.ScraperAPIKey != "" && c.LLMAPIKey != ""
}

// Merge fills blank fields of c from fallback.
func (c Credentials) Merge(fallback Credentials) Credentials {
	if c.ScraperAPIKey == "" {
		c.ScraperAPIKey = fallback.ScraperAPIKey
	}
	if c.LLMAPIKey == "" {
		c.LLMAPIKey = fallback.LLMAPIKey
	}
	return c
}
