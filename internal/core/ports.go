package core

import (
	"context"
)

// Classifier defines the interface for phishing classification backends
type Classifier interface {
	// Classify analyzes a piece of email text and returns a verdict
	Classify(ctx context.Context, emailText string) (*AnalysisResult, error)
}

// HealthChecker defines the interface for the advisory service health probe
type HealthChecker interface {
	// CheckHealth performs one best-effort health probe
	CheckHealth(ctx context.Context) (*HealthStatus, error)
}

// CacheRepository defines the interface for caching analysis verdicts
type CacheRepository interface {
	// Get retrieves a cached entry for a text hash
	Get(ctx context.Context, textHash string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, textHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// ResultNotifier defines the interface for publishing analysis events
type ResultNotifier interface {
	// NotifyAnalyzed publishes one event for a completed analysis
	NotifyAnalyzed(ctx context.Context, event *AnalysisEvent) error
}
