package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials  = errors.New("scraper and language model API keys are required")
	ErrUnsupportedModel    = errors.New("unsupported model")
	ErrNoFlightsFound      = errors.New("no flights found")
	ErrEmptyRecommendation = errors.New("language model returned no recommendation")
)

const (
	ServiceScraper = "scraper"
	ServiceLLM     = "llm"
)

// ServiceError reports a failed call to one of the remote services.
// StatusCode is zero when the failure happened before a response arrived.
type ServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return e.Service + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(service string, statusCode int, err error) *ServiceError {
	return &ServiceError{
		Service:    service,
		StatusCode: statusCode,
		Err:        err,
	}
}

type NoFlightsError struct {
	SearchURL string
}

func (e *NoFlightsError) Error() string {
	return "no flights found, check " + e.SearchURL
}

func (e *NoFlightsError) Is(target error) bool {
	return target == ErrNoFlightsFound
}
