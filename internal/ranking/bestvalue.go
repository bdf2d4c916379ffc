package ranking

import (
	"math"

	"github.com/dharmasatrya/flightadvisor/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

func CalculateScores(listings []models.FlightListing) []models.FlightListing {
	if len(listings) == 0 {
		return listings
	}

	maxPrice := findMaxPrice(listings)
	maxDuration := findMaxDuration(listings)

	result := make([]models.FlightListing, len(listings))
	for i, l := range listings {
		result[i] = l
		result[i].BestValueScore = CalculateBestValue(l, maxPrice, maxDuration)
	}

	return result
}

// Lower score = better value. A listing with an unknown duration is scored
// as the longest one.
func CalculateBestValue(listing models.FlightListing, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (listing.Price.Amount / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		dur := float64(listing.Duration.TotalMinutes)
		if dur == 0 {
			dur = maxDuration
		}
		durationScore = (dur / maxDuration) * 100
	}

	stopsScore := float64(listing.Stops) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func findMaxPrice(listings []models.FlightListing) float64 {
	maxPrice := 0.0
	for _, l := range listings {
		if l.Price.Amount > maxPrice {
			maxPrice = l.Price.Amount
		}
	}
	return maxPrice
}

func findMaxDuration(listings []models.FlightListing) float64 {
	maxDuration := 0.0
	for _, l := range listings {
		dur := float64(l.Duration.TotalMinutes)
		if dur > maxDuration {
			maxDuration = dur
		}
	}
	return maxDuration
}
