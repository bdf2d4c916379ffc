package advisor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/filter"
	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/tracing"
)

type Retriever interface {
	Retrieve(ctx context.Context, q models.SearchQuery) (*models.RetrievalResult, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, q models.SearchQuery, result *models.RetrievalResult) (string, error)
}

// Advisor runs one retrieval followed by one summarization. It keeps no
// state between calls.
type Advisor struct {
	retriever  Retriever
	summarizer Summarizer
	model      string
	logger     *zap.Logger
}

func New(r Retriever, s Summarizer, model string, log *zap.Logger) *Advisor {
	return &Advisor{
		retriever:  r,
		summarizer: s,
		model:      model,
		logger:     log,
	}
}

// Recommend validates q, retrieves listings, applies the query's
// preferences and summarizes what is left. Errors from either remote
// service are returned unmodified; the model is never called without
// listings.
func (a *Advisor) Recommend(ctx context.Context, q models.SearchQuery) (*models.Recommendation, error) {
	ctx, span := tracing.Tracer().Start(ctx, "advisor.Recommend")
	defer span.End()

	rec, err := a.recommend(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rec, nil
}

func (a *Advisor) recommend(ctx context.Context, q models.SearchQuery) (*models.Recommendation, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log := logger.WithTrace(ctx, a.logger).With(
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.String("departure_date", q.DepartureDate),
	)
	span := trace.SpanFromContext(ctx)

	start := time.Now()
	result, err := a.retriever.Retrieve(ctx, q)
	if err != nil {
		log.Warn("Retrieval failed", zap.Error(err))
		return nil, err
	}
	log.Debug("Retrieval finished", zap.Duration("elapsed", time.Since(start)))

	listings := filter.Apply(result.Listings, q.Preferences)
	span.SetAttributes(
		attribute.Int("listings.retrieved", len(result.Listings)),
		attribute.Int("listings.kept", len(listings)),
	)
	if len(listings) == 0 {
		log.Info("No listings match preferences", zap.Int("retrieved", len(result.Listings)))
		return nil, &models.NoFlightsError{SearchURL: result.SearchURL}
	}

	filtered := &models.RetrievalResult{
		SearchURL: result.SearchURL,
		Listings:  listings,
		Dropped:   result.Dropped,
	}

	start = time.Now()
	text, err := a.summarizer.Summarize(ctx, q, filtered)
	if err != nil {
		log.Warn("Summarization failed", zap.Error(err))
		return nil, err
	}
	log.Debug("Summarization finished", zap.Duration("elapsed", time.Since(start)))

	return &models.Recommendation{
		Text:      text,
		SearchURL: result.SearchURL,
		Model:     a.model,
		Listings:  listings,
	}, nil
}
