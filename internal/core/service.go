package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService is the core pipeline for email threat analysis
type AnalysisService struct {
	classifier   Classifier
	cache        CacheRepository
	notifier     ResultNotifier
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	classifier Classifier,
	cache CacheRepository,
	notifier ResultNotifier,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *AnalysisService {
	return &AnalysisService{
		classifier:   classifier,
		cache:        cache,
		notifier:     notifier,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// Analyze classifies a piece of email text. The text is passed to the
// classifier verbatim; cache entries are keyed by its hash. Cache and
// notifier failures never fail the analysis.
func (s *AnalysisService) Analyze(ctx context.Context, emailText string) (*AnalysisResult, error) {
	textHash := TextHash(emailText)

	// Check cache if enabled
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, textHash); err == nil {
			s.logger.Debug("Cache hit for text", zap.String("text_hash", textHash))
			return &AnalysisResult{
				Prediction: entry.Prediction,
				Confidence: Confidence{
					Phishing: entry.PhishingConfidence,
					Safe:     entry.SafeConfidence,
				},
				RiskLevel:    entry.RiskLevel,
				Source:       SourceCache,
				AnalyzedAt:   time.Now(),
				ProcessingID: uuid.NewString(),
			}, nil
		}
	}

	// Call the classifier
	result, err := s.classifier.Classify(ctx, emailText)
	if err != nil {
		return nil, err
	}
	if result.ProcessingID == "" {
		result.ProcessingID = uuid.NewString()
	}

	// Update cache with result if enabled
	if s.cacheEnabled {
		entry := &CacheEntry{
			TextHash:           textHash,
			Prediction:         result.Prediction,
			PhishingConfidence: result.Confidence.Phishing,
			SafeConfidence:     result.Confidence.Safe,
			RiskLevel:          result.RiskLevel,
			LastSeen:           time.Now(),
			ExpiresAt:          time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	// Publish the analysis event
	if s.notifier != nil {
		event := &AnalysisEvent{
			TextHash:     textHash,
			Prediction:   result.Prediction,
			RiskLevel:    result.RiskLevel,
			Source:       result.Source,
			ProcessingID: result.ProcessingID,
			AnalyzedAt:   result.AnalyzedAt,
		}
		if err := s.notifier.NotifyAnalyzed(ctx, event); err != nil {
			s.logger.Error("Failed to publish analysis event", zap.Error(err))
		}
	}

	return result, nil
}
