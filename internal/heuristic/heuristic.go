package heuristic

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
)

// Keyword lists for the offline classification. Matching is a plain
// substring check on the lower-cased text.
var (
	highThreatKeywords = []string{"click here", "verify", "urgent"}
	lowThreatKeywords  = []string{"meeting", "schedule", "lunch"}
)

// Classifier is the offline keyword heuristic used when the prediction
// service cannot be reached. It is a pure function of the lower-cased text.
type Classifier struct {
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewClassifier creates a new offline heuristic classifier
func NewClassifier(textProcessor *utils.TextProcessor, logger *zap.Logger) *Classifier {
	return &Classifier{
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// ThreatLevel classifies email text into a three-way threat level
func (c *Classifier) ThreatLevel(emailText string) core.ThreatLevel {
	lowered := strings.ToLower(c.textProcessor.Normalize(emailText))

	for _, keyword := range highThreatKeywords {
		if strings.Contains(lowered, keyword) {
			return core.ThreatHigh
		}
	}
	for _, keyword := range lowThreatKeywords {
		if strings.Contains(lowered, keyword) {
			return core.ThreatLow
		}
	}
	return core.ThreatMedium
}

// Classify implements core.Classifier so the heuristic can also serve as the
// configured provider when no remote service is deployed. Offline verdicts
// carry no confidence figures.
func (c *Classifier) Classify(_ context.Context, emailText string) (*core.AnalysisResult, error) {
	level := c.ThreatLevel(emailText)

	result := &core.AnalysisResult{
		Source:       core.SourceOffline,
		Model:        "keyword-heuristic",
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}
	switch level {
	case core.ThreatHigh:
		result.Prediction = 1
		result.RiskLevel = core.RiskHigh
	case core.ThreatLow:
		result.RiskLevel = core.RiskLow
	default:
		result.RiskLevel = core.RiskMedium
	}

	c.logger.Debug("Offline heuristic classification",
		zap.String("threat_level", level.String()))

	return result, nil
}
