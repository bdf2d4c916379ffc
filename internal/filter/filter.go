package filter

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/ranking"
)

// Apply scores every listing, drops the ones outside prefs and orders the
// rest by prefs.Priority. Without a priority the source order is kept.
func Apply(listings []models.FlightListing, prefs *models.Preferences) []models.FlightListing {
	scored := ranking.CalculateScores(listings)
	if prefs == nil {
		return scored
	}

	filtered := applyFilters(scored, prefs)
	return applySort(filtered, prefs.Priority)
}

func applyFilters(listings []models.FlightListing, prefs *models.Preferences) []models.FlightListing {
	result := make([]models.FlightListing, 0, len(listings))

	for _, l := range listings {
		if matchesPreferences(l, prefs) {
			result = append(result, l)
		}
	}

	return result
}

func matchesPreferences(l models.FlightListing, prefs *models.Preferences) bool {
	if prefs.MaxPrice != nil && l.Price.Amount > *prefs.MaxPrice {
		return false
	}

	if prefs.MaxStops != nil && l.Stops > *prefs.MaxStops {
		return false
	}

	if len(prefs.Airlines) > 0 {
		found := false
		name := strings.ToLower(l.Airline)
		for _, airline := range prefs.Airlines {
			if airline = strings.ToLower(strings.TrimSpace(airline)); airline != "" && strings.Contains(name, airline) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func applySort(listings []models.FlightListing, priority string) []models.FlightListing {
	if len(listings) == 0 {
		return listings
	}

	switch strings.ToLower(priority) {
	case models.PriorityPrice:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price.Amount < listings[j].Price.Amount
		})

	case models.PriorityDuration:
		sort.SliceStable(listings, func(i, j int) bool {
			return durationKey(listings[i]) < durationKey(listings[j])
		})

	case models.PriorityStops:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Stops < listings[j].Stops
		})

	case models.PriorityBestValue:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].BestValueScore < listings[j].BestValueScore
		})
	}

	return listings
}

// unknown durations sort last
func durationKey(l models.FlightListing) int {
	if l.Duration.TotalMinutes == 0 {
		return int(^uint(0) >> 1)
	}
	return l.Duration.TotalMinutes
}
