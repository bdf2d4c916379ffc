package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/ratelimit"
	"github.com/dharmasatrya/flightadvisor/internal/tracing"
)

const maxErrorBody = 4 * 1024

var (
	errEmptyContent = errors.New("extraction returned no content")
	errJobFailed    = errors.New("extraction job failed")
)

type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	Limiter      *ratelimit.ServiceLimiter
	HTTPClient   *http.Client
}

// Client talks to the Firecrawl extract API.
type Client struct {
	apiKey       string
	baseURL      string
	timeout      time.Duration
	pollInterval time.Duration
	limiter      *ratelimit.ServiceLimiter
	httpClient   *http.Client
	logger       *zap.Logger
}

type ExtractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

type extractResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

const (
	statusCompleted  = "completed"
	statusProcessing = "processing"
	statusFailed     = "failed"
	statusCancelled  = "cancelled"
)

func NewClient(cfg Config, log *zap.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		pollInterval: pollInterval,
		limiter:      cfg.Limiter,
		httpClient:   httpClient,
		logger:       log,
	}
}

// Extract submits an extraction job and returns its data once the job has
// completed. Jobs that are still processing are polled until they finish,
// ctx is done or the client timeout has passed since submission.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (json.RawMessage, error) {
	ctx, span := tracing.Tracer().Start(ctx, "scraper.Extract")
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	span.SetAttributes(attribute.StringSlice("scraper.urls", req.URLs))

	data, err := c.extract(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

func (c *Client) extract(ctx context.Context, req ExtractRequest) (json.RawMessage, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, models.ErrMissingCredentials
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, models.NewServiceError(models.ServiceScraper, 0, err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/extract", payload)
	if err != nil {
		return nil, err
	}

	jobID := resp.ID
	log := logger.WithTrace(ctx, c.logger)
	for polls := 0; ; polls++ {
		switch resp.Status {
		case statusFailed, statusCancelled:
			return nil, models.NewServiceError(models.ServiceScraper, 0, jobError(resp))
		case statusProcessing:
		default:
			if !isEmpty(resp.Data) {
				log.Debug("Extraction completed", zap.String("job_id", jobID), zap.Int("polls", polls))
				return resp.Data, nil
			}
			if resp.Status == statusCompleted || jobID == "" {
				return nil, models.NewServiceError(models.ServiceScraper, 0, errEmptyContent)
			}
		}

		if jobID == "" {
			return nil, models.NewServiceError(models.ServiceScraper, 0, fmt.Errorf("job status %q without job id", resp.Status))
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, models.NewServiceError(models.ServiceScraper, 0, ctx.Err())
		}

		resp, err = c.do(ctx, http.MethodGet, c.baseURL+"/v1/extract/"+jobID, nil)
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*extractResponse, error) {
	if err := c.limiter.Wait(ctx, models.ServiceScraper); err != nil {
		return nil, models.NewServiceError(models.ServiceScraper, 0, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, models.NewServiceError(models.ServiceScraper, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewServiceError(models.ServiceScraper, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, models.NewServiceError(models.ServiceScraper, resp.StatusCode, models.ErrMissingCredentials)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, models.NewServiceError(models.ServiceScraper, resp.StatusCode, errors.New(errorMessage(msg)))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, models.NewServiceError(models.ServiceScraper, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if !out.Success {
		return nil, models.NewServiceError(models.ServiceScraper, resp.StatusCode, jobError(&out))
	}
	return &out, nil
}

func jobError(resp *extractResponse) error {
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", errJobFailed, resp.Error)
	}
	return errJobFailed
}

func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "empty response body"
}

func isEmpty(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}
