package models

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	MinAdults = 1
	MaxAdults = 10
)

var CabinClasses = []string{"economy", "premium_economy", "business", "first"}

type Preferences struct {
	MaxPrice *float64 `json:"max_price,omitempty"`
	MaxStops *int     `json:"max_stops,omitempty"`
	Airlines []string `json:"airlines,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

func (p *Preferences) IsZero() bool {
	return p == nil || (p.MaxPrice == nil && p.MaxStops == nil && len(p.Airlines) == 0 && p.Priority == "")
}

type SearchQuery struct {
	Origin        string       `json:"origin"`
	Destination   string       `json:"destination"`
	DepartureDate string       `json:"departure_date"`
	Adults        int          `json:"adults"`
	CabinClass    string       `json:"cabin_class"`
	Preferences   *Preferences `json:"preferences,omitempty"`
	Model         string       `json:"model,omitempty"`
}

func (q *SearchQuery) Validate() error {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	q.DepartureDate = strings.TrimSpace(q.DepartureDate)
	q.CabinClass = strings.ToLower(strings.TrimSpace(q.CabinClass))

	if q.Origin == "" {
		return ErrMissingOrigin
	}
	if q.Destination == "" {
		return ErrMissingDestination
	}
	if !isIATACode(q.Origin) || !isIATACode(q.Destination) {
		return ErrInvalidAirportCode
	}
	if q.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if _, err := time.Parse(DateLayout, q.DepartureDate); err != nil {
		return ErrInvalidDepartureDate
	}
	if q.Adults == 0 {
		q.Adults = MinAdults
	}
	if q.Adults < MinAdults || q.Adults > MaxAdults {
		return ErrInvalidAdults
	}
	if q.CabinClass == "" {
		q.CabinClass = "economy"
	}
	if !isCabinClass(q.CabinClass) {
		return ErrInvalidCabinClass
	}
	if q.Preferences != nil {
		switch q.Preferences.Priority {
		case "", PriorityPrice, PriorityDuration, PriorityStops, PriorityBestValue:
		default:
			return ErrInvalidPriority
		}
	}
	return nil
}

func (q SearchQuery) Date() time.Time {
	t, _ := time.Parse(DateLayout, q.DepartureDate)
	return t
}

const (
	PriorityPrice     = "price"
	PriorityDuration  = "duration"
	PriorityStops     = "stops"
	PriorityBestValue = "best_value"
)

func isIATACode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isCabinClass(class string) bool {
	for _, c := range CabinClasses {
		if c == class {
			return true
		}
	}
	return false
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrInvalidAirportCode   ValidationError = "origin and destination must be 3-letter IATA codes"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrInvalidDepartureDate ValidationError = "departure_date must be formatted as YYYY-MM-DD"
	ErrInvalidAdults        ValidationError = "adults must be between 1 and 10"
	ErrInvalidCabinClass    ValidationError = "cabin_class must be one of economy, premium_economy, business, first"
	ErrInvalidPriority      ValidationError = "priority must be one of price, duration, stops, best_value"
)
