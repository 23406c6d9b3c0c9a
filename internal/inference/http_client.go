package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crypto-predict/internal/domain"
)

// DefaultTimeout bounds a single model call. There is no retry: a slow or
// failing model call propagates as a request failure.
const DefaultTimeout = 30 * time.Second

// HTTPEngine implements Engine against a model served over HTTP JSON.
type HTTPEngine struct {
	endpoint string
	client   *http.Client
}

// EngineOption configures HTTPEngine.
type EngineOption func(*HTTPEngine)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *HTTPEngine) {
		e.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(e *HTTPEngine) {
		e.client = client
	}
}

// NewHTTPEngine creates an HTTP model client.
func NewHTTPEngine(endpoint string, opts ...EngineOption) *HTTPEngine {
	e := &HTTPEngine{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile-time interface check.
var _ Engine = (*HTTPEngine)(nil)

// predictRequest is the wire form of one inference call.
type predictRequest struct {
	Columns  []string           `json:"columns"`
	Features []domain.FeatureRow `json:"features"`
}

// predictResponse is the wire form of the model's reply. A populated Error
// takes precedence over the prediction fields.
type predictResponse struct {
	PredictedReturn float64 `json:"predicted_return"`
	Confidence      any     `json:"confidence"`
	Trend           string  `json:"trend"`
	Error           string  `json:"error"`
}

// Predict posts the feature window and decodes the model's point prediction.
func (e *HTTPEngine) Predict(ctx context.Context, window *domain.FeatureWindow) (*Result, error) {
	body, err := json.Marshal(predictRequest{
		Columns:  domain.FeatureColumns,
		Features: window.Rows,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: model returned HTTP %d", ErrModel, resp.StatusCode)
	}

	var decoded predictResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrModel, decoded.Error)
	}

	return &Result{
		PredictedReturn: decoded.PredictedReturn,
		Confidence:      decoded.Confidence,
		Trend:           decoded.Trend,
	}, nil
}
