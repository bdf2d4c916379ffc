package advisor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/config"
	"github.com/dharmasatrya/flightadvisor/internal/llm"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/ratelimit"
	"github.com/dharmasatrya/flightadvisor/internal/retriever"
	"github.com/dharmasatrya/flightadvisor/internal/scraper"
	"github.com/dharmasatrya/flightadvisor/internal/summarizer"
)

// Builder wires an Advisor for a credential pair. Credentials supplied at
// runtime take precedence over the configured ones.
type Builder struct {
	cfg     config.Config
	limiter *ratelimit.ServiceLimiter
	logger  *zap.Logger
}

func NewBuilder(cfg config.Config, limiter *ratelimit.ServiceLimiter, log *zap.Logger) *Builder {
	return &Builder{
		cfg:     cfg,
		limiter: limiter,
		logger:  log,
	}
}

// NewLimiter returns the outbound limiter configured for both services.
func NewLimiter(cfg config.Config) *ratelimit.ServiceLimiter {
	limiter := ratelimit.NewServiceLimiterWithDefaults()
	limiter.SetServiceLimit(models.ServiceScraper, cfg.ScraperRPS, cfg.ScraperBurst)
	limiter.SetServiceLimit(models.ServiceLLM, cfg.LLMRPS, cfg.LLMBurst)
	return limiter
}

func (b *Builder) Build(creds models.Credentials, model string) (*Advisor, error) {
	creds = creds.Merge(models.Credentials{
		ScraperAPIKey: b.cfg.ScraperAPIKey,
		LLMAPIKey:     b.cfg.LLMAPIKey,
	})
	if !creds.Complete() {
		return nil, models.ErrMissingCredentials
	}

	if model == "" {
		model = b.cfg.DefaultModel
	}
	if !b.cfg.ModelAllowed(model) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedModel, model)
	}

	scraperClient := scraper.NewClient(scraper.Config{
		APIKey:       creds.ScraperAPIKey,
		BaseURL:      b.cfg.ScraperBaseURL,
		Timeout:      b.cfg.ScraperTimeout,
		PollInterval: b.cfg.ExtractPollInterval,
		Limiter:      b.limiter,
	}, b.logger.Named("scraper"))

	llmClient := llm.NewClient(llm.Config{
		APIKey:  creds.LLMAPIKey,
		BaseURL: b.cfg.LLMBaseURL,
		Model:   model,
		Timeout: b.cfg.LLMTimeout,
		Limiter: b.limiter,
	}, b.logger.Named("llm"))

	return New(
		retriever.New(scraperClient, b.cfg.SearchBaseURL, b.logger.Named("retriever")),
		summarizer.New(llmClient, b.logger.Named("summarizer")),
		model,
		b.logger.Named("advisor"),
	), nil
}
