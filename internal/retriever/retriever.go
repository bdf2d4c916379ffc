package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/scraper"
	"github.com/dharmasatrya/flightadvisor/internal/tracing"
)

const searchDateLayout = "020106"

type Extractor interface {
	Extract(ctx context.Context, req scraper.ExtractRequest) (json.RawMessage, error)
}

// Retriever fetches flight listings for a query from the search site
// through the scraping service. Every call re-fetches.
type Retriever struct {
	extractor     Extractor
	searchBaseURL string
	logger        *zap.Logger
}

func New(extractor Extractor, searchBaseURL string, log *zap.Logger) *Retriever {
	return &Retriever{
		extractor:     extractor,
		searchBaseURL: strings.TrimRight(searchBaseURL, "/"),
		logger:        log,
	}
}

// SearchURL builds the search page address, e.g.
// {base}/lko/del/250325/?adultsv2=1&cabinclass=economy.
func (r *Retriever) SearchURL(q models.SearchQuery) string {
	params := url.Values{}
	params.Set("adultsv2", fmt.Sprint(q.Adults))
	params.Set("cabinclass", strings.ToLower(q.CabinClass))

	return fmt.Sprintf("%s/%s/%s/%s/?%s",
		r.searchBaseURL,
		strings.ToLower(q.Origin),
		strings.ToLower(q.Destination),
		q.Date().Format(searchDateLayout),
		params.Encode(),
	)
}

func (r *Retriever) Retrieve(ctx context.Context, q models.SearchQuery) (*models.RetrievalResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "retriever.Retrieve")
	defer span.End()

	searchURL := r.SearchURL(q)
	span.SetAttributes(attribute.String("search.url", searchURL))

	data, err := r.extractor.Extract(ctx, scraper.ExtractRequest{
		URLs:   []string{searchURL},
		Prompt: extractionPrompt(q),
		Schema: flightsSchema,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp scrapedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		err = models.NewServiceError(models.ServiceScraper, 0, fmt.Errorf("decode flights: %w", err))
		span.RecordError(err)
		return nil, err
	}

	result := &models.RetrievalResult{
		SearchURL: searchURL,
		Listings:  make([]models.FlightListing, 0, len(resp.Flights)),
	}
	for _, f := range resp.Flights {
		listing, ok := normalize(f)
		if !ok {
			result.Dropped++
			continue
		}
		result.Listings = append(result.Listings, listing)
	}

	log := logger.WithTrace(ctx, r.logger)
	if result.Dropped > 0 {
		log.Warn("Dropped incomplete listings",
			zap.Int("dropped", result.Dropped),
			zap.Int("kept", len(result.Listings)),
		)
	}
	span.SetAttributes(
		attribute.Int("search.listings", len(result.Listings)),
		attribute.Int("search.dropped", result.Dropped),
	)

	if len(result.Listings) == 0 {
		return nil, &models.NoFlightsError{SearchURL: searchURL}
	}

	log.Info("Retrieved flight listings",
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.Int("count", len(result.Listings)),
	)
	return result, nil
}

func extractionPrompt(q models.SearchQuery) string {
	return fmt.Sprintf(`Extract flight details from %s to %s on %s.

**Requirements:**
- Only flights on %s
- Include airline name, flight number, departure/arrival times, duration, stops, layover airports, and ticket price.`,
		q.Origin, q.Destination, q.DepartureDate, q.DepartureDate)
}

var flightsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"flights": map[string]any{
			"type":        "array",
			"description": "List of available flights",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"airline":        map[string]any{"type": "string", "description": "Airline Name"},
					"flight_number":  map[string]any{"type": "string", "description": "Flight Number"},
					"departure_time": map[string]any{"type": "string", "description": "Departure Time"},
					"arrival_time":   map[string]any{"type": "string", "description": "Arrival Time"},
					"duration":       map[string]any{"type": "string", "description": "Total Duration of the flight"},
					"stops":          map[string]any{"type": "integer", "description": "Number of stops (0 = direct flight)"},
					"layovers": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Layover airports in travel order",
					},
					"price": map[string]any{"type": "string", "description": "Ticket price in the local currency"},
				},
				"required": []string{"airline", "price"},
			},
		},
	},
	"required": []string{"flights"},
}
