package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// RiskLevel is the coarse three-tier classification returned by the
// prediction service, independent of the binary prediction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ThreatLevel is the three-way classification used by the offline heuristic
// and by the threat indicator.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
)

func (t ThreatLevel) String() string {
	switch t {
	case ThreatLow:
		return "low"
	case ThreatMedium:
		return "medium"
	case ThreatHigh:
		return "high"
	default:
		return "unknown"
	}
}

// AnalysisRequest is the request body sent to the prediction service. The
// text is sent verbatim, untrimmed.
type AnalysisRequest struct {
	EmailText string `json:"email_text"`
}

// Confidence carries the phishing/safe probability pair from a classification
type Confidence struct {
	Phishing float64 `json:"phishing"`
	Safe     float64 `json:"safe"`
}

// Analysis result sources
const (
	SourceRemote  = "remote"
	SourceOpenAI  = "openai"
	SourceGemini  = "gemini"
	SourceBedrock = "bedrock"
	SourceOffline = "offline"
	SourceCache   = "cache"
)

// AnalysisResult represents the outcome of a single classification
type AnalysisResult struct {
	Prediction   int
	Confidence   Confidence
	RiskLevel    RiskLevel
	Source       string
	Model        string
	AnalyzedAt   time.Time
	ProcessingID string
}

// IsPhishing reports whether the classifier flagged the text as phishing
func (r *AnalysisResult) IsPhishing() bool {
	return r.Prediction == 1
}

// HealthStatus is the advisory health report from the prediction service
type HealthStatus struct {
	Status string `json:"status"`
}

// Healthy reports whether the service considers itself healthy
func (h *HealthStatus) Healthy() bool {
	switch strings.ToLower(h.Status) {
	case "healthy", "ok", "up":
		return true
	}
	return false
}

// CacheEntry is a cached verdict for a previously analyzed text
type CacheEntry struct {
	TextHash           string
	Prediction         int
	PhishingConfidence float64
	SafeConfidence     float64
	RiskLevel          RiskLevel
	LastSeen           time.Time
	ExpiresAt          time.Time
}

// AnalysisEvent is published to the notifier after a completed analysis.
// It carries the hash of the text, never the text itself.
type AnalysisEvent struct {
	TextHash     string    `json:"text_hash"`
	Prediction   int       `json:"prediction"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Source       string    `json:"source"`
	ProcessingID string    `json:"processing_id"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// TextHash returns the cache key for a piece of email text
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
