package models

type RecommendationMetadata struct {
	RequestID    string `json:"request_id,omitempty"`
	Model        string `json:"model"`
	SearchURL    string `json:"search_url"`
	TotalResults int    `json:"total_results"`
	SearchTimeMs int64  `json:"search_time_ms"`
}

type RecommendationResponse struct {
	SearchQuery    SearchQuery            `json:"search_query"`
	Metadata       RecommendationMetadata `json:"metadata"`
	Recommendation string                 `json:"recommendation"`
	Flights        []FlightListing        `json:"flights"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	SearchURL string `json:"search_url,omitempty"`
}
