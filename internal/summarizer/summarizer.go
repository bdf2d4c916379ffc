package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/llm"
	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/tracing"
	"github.com/dharmasatrya/flightadvisor/pkg/currency"
)

// Summarizer asks the language model to rank retrieved flights and returns
// its answer verbatim.
type Summarizer struct {
	completer llm.Completer
	logger    *zap.Logger
}

func New(completer llm.Completer, log *zap.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		logger:    log,
	}
}

type promptData struct {
	Origin      string
	Destination string
	Date        string
	Adults      int
	CabinClass  string
	Listings    []models.FlightListing
	Preferences []string
	SearchURL   string
}

func (s *Summarizer) Summarize(ctx context.Context, q models.SearchQuery, result *models.RetrievalResult) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "summarizer.Summarize")
	defer span.End()

	prompt, err := BuildPrompt(q, result)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(
		attribute.Int("summarizer.listings", len(result.Listings)),
		attribute.Int("summarizer.prompt_length", len(prompt)),
	)

	text, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		span.RecordError(models.ErrEmptyRecommendation)
		return "", models.ErrEmptyRecommendation
	}

	logger.WithTrace(ctx, s.logger).Info("Recommendation generated",
		zap.Int("listings", len(result.Listings)),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("response_length", len(text)),
	)
	return text, nil
}

func BuildPrompt(q models.SearchQuery, result *models.RetrievalResult) (string, error) {
	data := promptData{
		Origin:      strings.ToUpper(q.Origin),
		Destination: strings.ToUpper(q.Destination),
		Date:        q.DepartureDate,
		Adults:      q.Adults,
		CabinClass:  strings.ReplaceAll(q.CabinClass, "_", " "),
		Listings:    result.Listings,
		Preferences: describePreferences(q.Preferences, currencyOf(result.Listings)),
		SearchURL:   result.SearchURL,
	}

	var buf bytes.Buffer
	if err := analysisPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func describePreferences(prefs *models.Preferences, code string) []string {
	if prefs.IsZero() {
		return nil
	}

	var out []string
	if prefs.MaxPrice != nil {
		out = append(out, "Budget: at most "+currency.Format(*prefs.MaxPrice, code))
	}
	if prefs.MaxStops != nil {
		if *prefs.MaxStops == 0 {
			out = append(out, "Direct flights only")
		} else {
			out = append(out, fmt.Sprintf("At most %d stop(s)", *prefs.MaxStops))
		}
	}
	if len(prefs.Airlines) > 0 {
		out = append(out, "Preferred airlines: "+strings.Join(prefs.Airlines, ", "))
	}
	switch prefs.Priority {
	case models.PriorityPrice:
		out = append(out, "Cares most about the lowest price")
	case models.PriorityDuration:
		out = append(out, "Cares most about the shortest travel time")
	case models.PriorityStops:
		out = append(out, "Cares most about the fewest layovers")
	case models.PriorityBestValue:
		out = append(out, "Cares most about overall value")
	}
	return out
}

func currencyOf(listings []models.FlightListing) string {
	for _, l := range listings {
		if l.Price.Currency != "" {
			return l.Price.Currency
		}
	}
	return ""
}
