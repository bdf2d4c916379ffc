package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/models"
)

type fakeRecommender struct {
	rec *models.Recommendation
	err error
	got models.SearchQuery
}

func (f *fakeRecommender) Recommend(_ context.Context, q models.SearchQuery) (*models.Recommendation, error) {
	f.got = q
	return f.rec, f.err
}

type buildCall struct {
	creds models.Credentials
	model string
}

func newHandler(r Recommender, buildErr error, calls *[]buildCall) *RecommendHandler {
	return NewRecommendHandler(func(creds models.Credentials, model string) (Recommender, error) {
		if calls != nil {
			*calls = append(*calls, buildCall{creds, model})
		}
		if buildErr != nil {
			return nil, buildErr
		}
		return r, nil
	}, zap.NewNop())
}

func serve(t *testing.T, h *RecommendHandler, body string, headers map[string]string) (*httptest.ResponseRecorder, models.ErrorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/recommend", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()

	require.NoError(t, h.Recommend(e.NewContext(req, rec)))

	var errResp models.ErrorResponse
	if rec.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	}
	return rec, errResp
}

const validBody = `{"origin":"lko","destination":"del","departure_date":"2025-03-25","adults":2,"cabin_class":"business","model":"gpt-4o"}`

func TestRecommendSuccess(t *testing.T) {
	fr := &fakeRecommender{rec: &models.Recommendation{
		Text:      "Cheapest fare: 100",
		SearchURL: "https://search.test/lko/del/250325/",
		Model:     "gpt-4o",
		Listings:  []models.FlightListing{{Airline: "IndiGo", Price: models.Price{Amount: 100}}},
	}}
	var calls []buildCall
	h := newHandler(fr, nil, &calls)

	rec, _ := serve(t, h, validBody, map[string]string{
		HeaderScraperAPIKey: " fc-user ",
		HeaderLLMAPIKey:     "sk-user",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Cheapest fare: 100", resp.Recommendation)
	assert.Equal(t, "gpt-4o", resp.Metadata.Model)
	assert.Equal(t, 1, resp.Metadata.TotalResults)
	assert.Equal(t, "https://search.test/lko/del/250325/", resp.Metadata.SearchURL)
	assert.Equal(t, "LKO", resp.SearchQuery.Origin)
	require.Len(t, resp.Flights, 1)

	require.Len(t, calls, 1)
	assert.Equal(t, models.Credentials{ScraperAPIKey: "fc-user", LLMAPIKey: "sk-user"}, calls[0].creds)
	assert.Equal(t, "gpt-4o", calls[0].model)
	assert.Equal(t, "DEL", fr.got.Destination)
	assert.Equal(t, 2, fr.got.Adults)
}

func TestRecommendBadJSON(t *testing.T) {
	rec, errResp := serve(t, newHandler(&fakeRecommender{}, nil, nil), `{"origin":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errResp.Error)
}

func TestRecommendValidationError(t *testing.T) {
	var calls []buildCall
	rec, errResp := serve(t, newHandler(&fakeRecommender{}, nil, &calls), `{"origin":"LKO","departure_date":"2025-03-25"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errResp.Error)
	assert.Equal(t, models.ErrMissingDestination.Error(), errResp.Message)
	assert.Empty(t, calls)
}

func TestRecommendErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		buildErr error
		recErr   error
		status   int
		code     string
	}{
		{"missing credentials", models.ErrMissingCredentials, nil, http.StatusUnauthorized, "missing_credentials"},
		{"unsupported model", fmt.Errorf("%w: gpt-2", models.ErrUnsupportedModel), nil, http.StatusBadRequest, "unsupported_model"},
		{"rejected key upstream", nil, models.NewServiceError(models.ServiceLLM, 401, models.ErrMissingCredentials), http.StatusUnauthorized, "missing_credentials"},
		{"no flights", nil, &models.NoFlightsError{SearchURL: "https://search.test"}, http.StatusNotFound, "no_flights_found"},
		{"empty recommendation", nil, models.ErrEmptyRecommendation, http.StatusBadGateway, "empty_recommendation"},
		{"scraper failure", nil, models.NewServiceError(models.ServiceScraper, 500, errors.New("boom")), http.StatusBadGateway, "upstream_error"},
		{"timeout", nil, context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"upstream timeout", nil, models.NewServiceError(models.ServiceScraper, 0, context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unexpected", nil, errors.New("???"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(&fakeRecommender{err: tc.recErr}, tc.buildErr, nil)

			rec, errResp := serve(t, h, validBody, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errResp.Error)
			assert.Equal(t, tc.status, errResp.Code)
		})
	}
}

func TestRecommendNoFlightsCarriesSearchURL(t *testing.T) {
	h := newHandler(&fakeRecommender{err: &models.NoFlightsError{SearchURL: "https://search.test/lko/del"}}, nil, nil)

	_, errResp := serve(t, h, validBody, nil)
	assert.Equal(t, "https://search.test/lko/del", errResp.SearchURL)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()

	require.NoError(t, HealthHandler(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
