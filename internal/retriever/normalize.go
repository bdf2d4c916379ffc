package retriever

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/pkg/currency"
)

type scrapedResponse struct {
	Flights []scrapedFlight `json:"flights"`
}

type scrapedFlight struct {
	Airline       flexString   `json:"airline"`
	FlightNumber  flexString   `json:"flight_number"`
	DepartureTime flexString   `json:"departure_time"`
	ArrivalTime   flexString   `json:"arrival_time"`
	Duration      flexString   `json:"duration"`
	Stops         *flexStops   `json:"stops"`
	Layovers      []flexString `json:"layovers"`
	Price         flexString   `json:"price"`
}

// flexString accepts a JSON string or number; extraction output does not
// always respect the schema types.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// flexStops accepts 1, "1", "1 stop", "non-stop" or "direct". Unreadable
// values decode as -1 and fall back to the layover count.
type flexStops int

var reDigits = regexp.MustCompile(`\d+`)

func (s *flexStops) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = flexStops(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = -1
		return nil
	}
	lower := strings.ToLower(str)
	if strings.Contains(lower, "non") || strings.Contains(lower, "direct") {
		*s = 0
		return nil
	}
	if m := reDigits.FindString(lower); m != "" {
		n, _ = strconv.Atoi(m)
		*s = flexStops(n)
		return nil
	}
	*s = -1
	return nil
}

// normalize converts one scraped record. Records without an airline or a
// readable price are rejected.
func normalize(f scrapedFlight) (models.FlightListing, bool) {
	airline := string(f.Airline)
	priceText := string(f.Price)
	if airline == "" || priceText == "" {
		return models.FlightListing{}, false
	}

	amount, code, err := currency.Parse(priceText)
	if err != nil || amount <= 0 {
		return models.FlightListing{}, false
	}

	layovers := make([]string, 0, len(f.Layovers))
	for _, l := range f.Layovers {
		if l != "" {
			layovers = append(layovers, string(l))
		}
	}

	stops := len(layovers)
	if f.Stops != nil && *f.Stops >= 0 {
		stops = int(*f.Stops)
	}

	return models.FlightListing{
		Airline:       airline,
		FlightNumber:  string(f.FlightNumber),
		DepartureTime: string(f.DepartureTime),
		ArrivalTime:   string(f.ArrivalTime),
		Duration: models.Duration{
			Text:         string(f.Duration),
			TotalMinutes: parseDurationMinutes(string(f.Duration)),
		},
		Stops:    stops,
		Layovers: layovers,
		Price: models.Price{
			Text:      priceText,
			Amount:    amount,
			Currency:  code,
			Formatted: currency.Format(amount, code),
		},
	}, true
}

var (
	reHours   = regexp.MustCompile(`(\d+)\s*h`)
	reMinutes = regexp.MustCompile(`(\d+)\s*m`)
	reClock   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// parseDurationMinutes reads "2h 30m", "2 hr 5 min", "45m" or "2:30".
// Zero means unknown.
func parseDurationMinutes(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if m := reClock.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return h*60 + mins
	}

	total := 0
	if m := reHours.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
	}
	return total
}
