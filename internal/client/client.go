// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/validation"
)

// maxErrorBodySize limits how much of a non-JSON error body is kept.
const maxErrorBodySize = 64 * 1024

// ErrUnavailable reports that the service could not answer and no fallback
// was produced.
var ErrUnavailable = errors.New("prediction service unavailable")

// APIError is an error envelope returned by the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL string `validate:"required,url"`

	// Token is sent as a bearer token when set.
	Token string

	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls. 0 disables throttling.
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`

	// MaxRetries bounds retries after HTTP 429.
	MaxRetries     int           `validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration

	// Fallback returns heuristic predictions when the service is unavailable.
	Fallback bool

	Breaker BreakerConfig
}

// DefaultConfig returns a configuration for baseURL with throttling,
// retries and fallback enabled.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 20,
		Burst:             40,
		MaxRetries:        3,
		RetryBaseDelay:    time.Second,
		Fallback:          true,
		Breaker:           DefaultBreakerConfig(),
	}
}

// Client calls the EventPulse API. It is safe for concurrent use.
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[interface{}]
	name           string
	maxRetries     int
	retryBaseDelay time.Duration
	fallback       bool
	logger         zerolog.Logger
}

// New creates a client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if verr := validation.ValidateStruct(&cfg); verr != nil {
		return nil, fmt.Errorf("invalid client config: %w", verr)
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = DefaultBreakerConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	logger = logger.With().Str("component", "client").Logger()
	name := "eventpulse-api"

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		http:           &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, burst),
		cb:             newBreaker(name, cfg.Breaker, logger),
		name:           name,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		fallback:       cfg.Fallback,
		logger:         logger,
	}, nil
}

// Predict scores one event.
func (c *Client) Predict(ctx context.Context, event models.EventRecord) (*models.PredictionResult, error) {
	if verr := validation.ValidateStruct(&event); verr != nil {
		return nil, verr
	}

	var result models.PredictionResult
	err := c.call(ctx, http.MethodPost, "/api/v1/predict", &event, &result)
	if err == nil {
		return &result, nil
	}
	if !c.canFallback(ctx, err) {
		return nil, c.wrapUnavailable(err)
	}

	c.logger.Warn().Err(err).Msg("prediction service unavailable, using heuristic prediction")
	fb := Heuristic(&event, time.Now())
	return &fb, nil
}

// PredictBatch scores several events in one request.
func (c *Client) PredictBatch(ctx context.Context, events []models.EventRecord) (*models.BatchPredictionResult, error) {
	req := models.BatchPredictionRequest{Events: events}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, verr
	}

	var result models.BatchPredictionResult
	err := c.call(ctx, http.MethodPost, "/api/v1/predict/batch", &req, &result)
	if err == nil {
		return &result, nil
	}
	if !c.canFallback(ctx, err) {
		return nil, c.wrapUnavailable(err)
	}

	c.logger.Warn().Err(err).Int("events", len(events)).Msg("prediction service unavailable, using heuristic predictions")
	return heuristicBatch(events, time.Now()), nil
}

// Train starts a background training run.
func (c *Client) Train(ctx context.Context, req models.TrainingRequest) (*models.TrainingAccepted, error) {
	var accepted models.TrainingAccepted
	if err := c.call(ctx, http.MethodPost, "/api/v1/train", &req, &accepted); err != nil {
		return nil, c.wrapUnavailable(err)
	}
	return &accepted, nil
}

// TrainingStatus reports the current or last training run.
func (c *Client) TrainingStatus(ctx context.Context) (*models.TrainingStatus, error) {
	var status models.TrainingStatus
	if err := c.call(ctx, http.MethodGet, "/api/v1/training/status", nil, &status); err != nil {
		return nil, c.wrapUnavailable(err)
	}
	return &status, nil
}

// ModelInfo describes the serving model. top limits feature importances;
// 0 uses the server default.
func (c *Client) ModelInfo(ctx context.Context, top int) (*models.ModelInfo, error) {
	path := "/api/v1/model/info"
	if top > 0 {
		path += "?top=" + strconv.Itoa(top)
	}
	var info models.ModelInfo
	if err := c.call(ctx, http.MethodGet, path, nil, &info); err != nil {
		return nil, c.wrapUnavailable(err)
	}
	return &info, nil
}

// Health returns the service health report.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.call(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, c.wrapUnavailable(err)
	}
	return &health, nil
}

// canFallback reports whether err means the service could not answer.
// A canceled caller context never falls back.
func (c *Client) canFallback(ctx context.Context, err error) bool {
	return c.fallback && ctx.Err() == nil && unavailable(err)
}

func (c *Client) wrapUnavailable(err error) error {
	if unavailable(err) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func unavailable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// call throttles, then runs one request through the circuit breaker.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, payload, out)
	})
	metrics.RecordCircuitBreakerRequest(c.name, breakerResult(err))
	return err
}

// roundTrip performs the request with backoff on HTTP 429 and decodes the
// envelope into out.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	resp, err := c.doWithRetry(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}
		_ = resp.Body.Close()

		// 1x, 2x, 4x ... the base delay unless the server says otherwise.
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Str("path", path).Msg("rate limited, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			if len(raw) > maxErrorBodySize {
				raw = raw[:maxErrorBodySize]
			}
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Error != nil {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
