package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassifySuccess(t *testing.T) {
	const emailText = "  Dear customer, your account needs attention.\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req core.AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The text is sent verbatim, whitespace included
		assert.Equal(t, emailText, req.EmailText)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"prediction": 1,
			"confidence": map[string]float64{"phishing": 0.876, "safe": 0.124},
			"risk_level": "HIGH",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	result, err := client.Classify(context.Background(), emailText)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Prediction)
	assert.Equal(t, 0.876, result.Confidence.Phishing)
	assert.Equal(t, 0.124, result.Confidence.Safe)
	assert.Equal(t, core.RiskHigh, result.RiskLevel)
	assert.Equal(t, core.SourceRemote, result.Source)
	assert.NotEmpty(t, result.ProcessingID)
}

func TestClassifyNonSuccessStatusIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, core.IsServiceError(err))
	assert.False(t, core.IsTransportError(err))
	assert.Contains(t, err.Error(), "500")
}

func TestClassifyMalformedBodyIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, core.IsServiceError(err))
	assert.False(t, core.IsTransportError(err))
}

func TestClassifyUnreachableServiceIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(baseURL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
	assert.False(t, core.IsServiceError(err))
}

func TestCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	status, err := client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy())
}

func TestCheckHealthUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(baseURL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = client.CheckHealth(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", 0, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient("", 0, zap.NewNop())
	assert.Error(t, err)
}
