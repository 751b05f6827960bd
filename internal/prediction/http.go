package prediction

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

	"github.com/gmlima14/irf/internal/orders"
)

const (
	defaultHTTPTimeout          = 60 * time.Second
	responseBodyReadLimit int64 = 1024
)

// DefaultFeatures is the feature set of the delivery model served over HTTP
// when the deployment does not list one.
var DefaultFeatures = []string{
	orders.ColVendor,
	orders.ColMaterialGroup,
	orders.ColNetValue,
	orders.FeatureOrderMonth,
	orders.FeatureOrderAge,
	orders.FeatureLeadTime,
	orders.FeatureVendorLoad,
}

var errEndpointRequired = errors.New("classifier endpoint is required")

// HTTPClassifier calls a model-serving endpoint with the whole batch.
type HTTPClassifier struct {
	httpClient *http.Client
	endpoint   string
	features   []string
}

type HTTPOption func(*HTTPClassifier)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClassifier) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithFeatures overrides DefaultFeatures.
func WithFeatures(features []string) HTTPOption {
	return func(c *HTTPClassifier) {
		if len(features) > 0 {
			c.features = append([]string(nil), features...)
		}
	}
}

func NewHTTPClassifier(endpoint string, opts ...HTTPOption) (*HTTPClassifier, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}
	c := &HTTPClassifier{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		features:   append([]string(nil), DefaultFeatures...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *HTTPClassifier) RequiredFeatures() []string {
	return append([]string(nil), c.features...)
}

type predictRequest struct {
	Rows []FeatureRow `json:"rows"`
}

type predictResponse struct {
	Predictions []predictionDTO `json:"predictions" validate:"required,dive"`
}

type predictionDTO struct {
	Label         *int      `json:"label" validate:"required,oneof=0 1"`
	Score         *float64  `json:"score" validate:"omitempty,gte=0,lte=1"`
	Probabilities []float64 `json:"probabilities" validate:"omitempty,min=2,dive,gte=0,lte=1"`
}

func (c *HTTPClassifier) Predict(ctx context.Context, rows []FeatureRow) ([]Output, error) {
	payload, err := json.Marshal(predictRequest{Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute predict request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, fmt.Errorf("predict request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if err := validate.Struct(&body); err != nil {
		return nil, fmt.Errorf("invalid predict response: %w", err)
	}

	out := make([]Output, len(body.Predictions))
	for i, p := range body.Predictions {
		out[i] = Output{Label: *p.Label, Score: p.Score, Probabilities: p.Probabilities}
	}
	return out, nil
}
