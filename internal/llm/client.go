package llm

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

var errNoChoices = errors.New("response has no choices")

// Completer turns a system and user prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Limiter    *ratelimit.ServiceLimiter
	HTTPClient *http.Client
}

// Client calls an OpenAI compatible chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	limiter    *ratelimit.ServiceLimiter
	httpClient *http.Client
	logger     *zap.Logger
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    completionsURL(cfg.BaseURL),
		model:      cfg.Model,
		limiter:    cfg.Limiter,
		httpClient: httpClient,
		logger:     log,
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_length", len(userPrompt)),
	)

	text, err := c.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", models.ErrMissingCredentials
	}

	reqBody := chatRequest{Model: c.model}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, message{Role: "system", Content: systemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, message{Role: "user", Content: userPrompt})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", models.NewServiceError(models.ServiceLLM, 0, err)
	}

	if err := c.limiter.Wait(ctx, models.ServiceLLM); err != nil {
		return "", models.NewServiceError(models.ServiceLLM, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", models.NewServiceError(models.ServiceLLM, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewServiceError(models.ServiceLLM, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", models.NewServiceError(models.ServiceLLM, resp.StatusCode, models.ErrMissingCredentials)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", models.NewServiceError(models.ServiceLLM, resp.StatusCode, errors.New(errorMessage(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", models.NewServiceError(models.ServiceLLM, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", models.NewServiceError(models.ServiceLLM, resp.StatusCode, errNoChoices)
	}

	logger.WithTrace(ctx, c.logger).Debug("Completion received",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.String("finish_reason", out.Choices[0].FinishReason),
	)

	return out.Choices[0].Message.Content, nil
}

// completionsURL appends /v1/chat/completions unless base already names the
// endpoint or ends in /v1.
func completionsURL(base string) string {
	url := strings.TrimRight(base, "/")
	if strings.HasSuffix(url, "/chat/completions") {
		return url
	}
	if !strings.HasSuffix(url, "/v1") {
		url += "/v1"
	}
	return url + "/chat/completions"
}

func errorMessage(body []byte) string {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "empty response body"
}
