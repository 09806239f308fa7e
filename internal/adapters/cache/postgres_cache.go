package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikey/email-threat-widget/internal/core"
	"go.uber.org/zap"
)

// PostgresCache is a Postgres implementation of the CacheRepository
// interface, backed by a pgx connection pool
type PostgresCache struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewPostgresCache creates a new Postgres cache
func NewPostgresCache(ctx context.Context, connString string, logger *zap.Logger, cleanupFreq time.Duration) (*PostgresCache, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS threat_cache (
			text_hash TEXT PRIMARY KEY,
			prediction INTEGER,
			phishing_confidence DOUBLE PRECISION,
			safe_confidence DOUBLE PRECISION,
			risk_level TEXT,
			last_seen TIMESTAMPTZ,
			expires_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_threat_cache_expires_at ON threat_cache(expires_at)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &PostgresCache{
		pool:        pool,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached entry for a text hash
func (c *PostgresCache) Get(ctx context.Context, textHash string) (*core.CacheEntry, error) {
	entry := &core.CacheEntry{TextHash: textHash}
	var riskLevel string

	err := c.pool.QueryRow(ctx, `
		SELECT prediction, phishing_confidence, safe_confidence, risk_level, last_seen, expires_at
		FROM threat_cache
		WHERE text_hash = $1 AND expires_at > now()
	`, textHash).Scan(&entry.Prediction, &entry.PhishingConfidence, &entry.SafeConfidence,
		&riskLevel, &entry.LastSeen, &entry.ExpiresAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.RiskLevel = core.RiskLevel(riskLevel)
	return entry, nil
}

// Set stores a cache entry
func (c *PostgresCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO threat_cache
			(text_hash, prediction, phishing_confidence, safe_confidence, risk_level, last_seen, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (text_hash) DO UPDATE SET
			prediction = EXCLUDED.prediction,
			phishing_confidence = EXCLUDED.phishing_confidence,
			safe_confidence = EXCLUDED.safe_confidence,
			risk_level = EXCLUDED.risk_level,
			last_seen = EXCLUDED.last_seen,
			expires_at = EXCLUDED.expires_at
	`, entry.TextHash, entry.Prediction, entry.PhishingConfidence, entry.SafeConfidence,
		string(entry.RiskLevel), entry.LastSeen, entry.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *PostgresCache) Delete(ctx context.Context, textHash string) error {
	_, err := c.pool.Exec(ctx, `
		DELETE FROM threat_cache
		WHERE text_hash = $1
	`, textHash)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *PostgresCache) Cleanup(ctx context.Context) error {
	tag, err := c.pool.Exec(ctx, `
		DELETE FROM threat_cache
		WHERE expires_at <= now()
	`)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", tag.RowsAffected()))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *PostgresCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the pool
func (c *PostgresCache) Stop() {
	close(c.stopCh)
	c.pool.Close()
}
