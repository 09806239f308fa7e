package predictor

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mikey/email-threat-widget/internal/core"
	"go.uber.org/zap"
)

const (
	predictPath = "/predict"
	healthPath  = "/health"
)

var validate = validator.New()

type endpoint struct {
	BaseURL string `validate:"required,http_url"`
}

// Client talks to the phishing prediction service over HTTP. It implements
// core.Classifier and core.HealthChecker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// predictResponse is the wire shape of a successful /predict response
type predictResponse struct {
	Prediction int             `json:"prediction"`
	Confidence core.Confidence `json:"confidence"`
	RiskLevel  core.RiskLevel  `json:"risk_level"`
}

// NewClient creates a new prediction service client. A zero timeout means
// no timeout, matching the original widget's behavior.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if err := validate.Struct(endpoint{BaseURL: baseURL}); err != nil {
		return nil, fmt.Errorf("invalid prediction service base URL %q: %w", baseURL, err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Classify sends the email text to POST {base_url}/predict. The text goes
// into the request body verbatim. A request that never gets an answer is a
// TransportError; a non-success status or malformed body is a ServiceError.
func (c *Client) Classify(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
	payload, err := json.Marshal(core.AnalysisRequest{EmailText: emailText})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: "predict", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &core.ServiceError{
			Op:         "predict",
			StatusCode: resp.StatusCode,
			Err:        errors.New(readBodySnippet(resp.Body)),
		}
	}

	var prediction predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, &core.ServiceError{Op: "predict", StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("Received prediction",
		zap.Int("prediction", prediction.Prediction),
		zap.String("risk_level", string(prediction.RiskLevel)))

	return &core.AnalysisResult{
		Prediction:   prediction.Prediction,
		Confidence:   prediction.Confidence,
		RiskLevel:    prediction.RiskLevel,
		Source:       core.SourceRemote,
		Model:        c.baseURL + predictPath,
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}, nil
}

// CheckHealth performs one GET {base_url}/health probe
func (c *Client) CheckHealth(ctx context.Context) (*core.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: "health", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &core.ServiceError{
			Op:         "health",
			StatusCode: resp.StatusCode,
			Err:        errors.New(readBodySnippet(resp.Body)),
		}
	}

	var status core.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &core.ServiceError{Op: "health", StatusCode: resp.StatusCode, Err: err}
	}

	return &status, nil
}

// readBodySnippet returns the beginning of an error response body for
// inclusion in error messages
func readBodySnippet(r io.Reader) string {
	snippet, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(snippet) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(snippet))
}
