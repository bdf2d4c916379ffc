package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
)

const (
	HeaderScraperAPIKey = "X-Scraper-Api-Key"
	HeaderLLMAPIKey     = "X-LLM-Api-Key"
)

type Recommender interface {
	Recommend(ctx context.Context, q models.SearchQuery) (*models.Recommendation, error)
}

// BuildFunc returns a Recommender for the credentials supplied with a
// request. Blank fields fall back to the configured credentials.
type BuildFunc func(creds models.Credentials, model string) (Recommender, error)

type RecommendHandler struct {
	build  BuildFunc
	logger *zap.Logger
}

func NewRecommendHandler(build BuildFunc, log *zap.Logger) *RecommendHandler {
	return &RecommendHandler{
		build:  build,
		logger: log,
	}
}

func (h *RecommendHandler) Recommend(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var q models.SearchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := q.Validate(); err != nil {
		return writeError(c, err)
	}

	creds := models.Credentials{
		ScraperAPIKey: strings.TrimSpace(c.Request().Header.Get(HeaderScraperAPIKey)),
		LLMAPIKey:     strings.TrimSpace(c.Request().Header.Get(HeaderLLMAPIKey)),
	}
	recommender, err := h.build(creds, q.Model)
	if err != nil {
		return writeError(c, err)
	}

	rec, err := recommender.Recommend(ctx, q)
	if err != nil {
		logger.WithTrace(ctx, h.logger).Warn("Recommendation failed",
			zap.String("origin", q.Origin),
			zap.String("destination", q.Destination),
			zap.Error(err),
		)
		return writeError(c, err)
	}

	q.Model = rec.Model
	return c.JSON(http.StatusOK, models.RecommendationResponse{
		SearchQuery: q,
		Metadata: models.RecommendationMetadata{
			RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
			Model:        rec.Model,
			SearchURL:    rec.SearchURL,
			TotalResults: len(rec.Listings),
			SearchTimeMs: time.Since(startTime).Milliseconds(),
		},
		Recommendation: rec.Text,
		Flights:        rec.Listings,
	})
}

func writeError(c echo.Context, err error) error {
	var (
		validationErr models.ValidationError
		noFlightsErr  *models.NoFlightsError
		serviceErr    *models.ServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})

	case errors.Is(err, models.ErrMissingCredentials):
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "missing_credentials",
			Message: err.Error(),
			Code:    http.StatusUnauthorized,
		})

	case errors.Is(err, models.ErrUnsupportedModel):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported_model",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})

	case errors.As(err, &noFlightsErr):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "no_flights_found",
			Message:   "No flights found. Check the search page directly.",
			Code:      http.StatusNotFound,
			SearchURL: noFlightsErr.SearchURL,
		})

	case errors.Is(err, models.ErrEmptyRecommendation):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "empty_recommendation",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})

	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:   "timeout",
			Message: err.Error(),
			Code:    http.StatusGatewayTimeout,
		})

	case errors.As(err, &serviceErr):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
