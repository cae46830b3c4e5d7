package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	generateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_generate_requests_total",
		Help: "Calls to the text-generation endpoint by outcome.",
	}, []string{"outcome"})
	generateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "llm_generate_duration_seconds",
		Help:    "Latency of calls to the text-generation endpoint.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// Config holds connection details for the generation endpoint.
type Config struct {
	BaseURL string
	Model   string
	// Timeout of zero keeps the transport default.
	Timeout time.Duration
}

// Client calls the /api/generate endpoint once per invocation.
type Client struct {
	httpClient  *http.Client
	model       string
	logger      zerolog.Logger
	generateURL string
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		model:       model,
		logger:      logger.With().Str("component", "llm_client").Logger(),
		generateURL: base + "/api/generate",
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Generate sends prompt upstream and returns the JSON document embedded in the
// reply's "response" field.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.generate(ctx, prompt)
	generateDuration.Observe(time.Since(start).Seconds())
	generateRequests.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		c.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("generation failed")
		return nil, err
	}
	c.logger.Debug().Int("bytes", len(raw)).Dur("elapsed", time.Since(start)).Msg("generation completed")
	return raw, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &MalformedResponseError{Reason: "decode envelope", Err: err}
	}
	if envelope.Response == nil {
		return nil, &MalformedResponseError{Reason: `missing "response" field`}
	}

	payload := json.RawMessage(strings.TrimSpace(*envelope.Response))
	if !json.Valid(payload) {
		return nil, &MalformedResponseError{Reason: "response is not valid JSON"}
	}
	return payload, nil
}

func outcome(err error) string {
	var upstream *UpstreamError
	var malformed *MalformedResponseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "error"
	}
}
