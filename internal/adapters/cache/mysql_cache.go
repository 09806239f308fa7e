package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/email-threat-widget/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	// Timestamps scan directly into time.Time
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS threat_cache (
			text_hash VARCHAR(64) PRIMARY KEY,
			prediction INT,
			phishing_confidence DOUBLE,
			safe_confidence DOUBLE,
			risk_level VARCHAR(16),
			last_seen TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached entry for a text hash
func (c *MySQLCache) Get(ctx context.Context, textHash string) (*core.CacheEntry, error) {
	entry := &core.CacheEntry{TextHash: textHash}
	var riskLevel string

	err := c.db.QueryRowContext(ctx, `
		SELECT prediction, phishing_confidence, safe_confidence, risk_level, last_seen, expires_at
		FROM threat_cache
		WHERE text_hash = ? AND expires_at > NOW()
	`, textHash).Scan(&entry.Prediction, &entry.PhishingConfidence, &entry.SafeConfidence,
		&riskLevel, &entry.LastSeen, &entry.ExpiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.RiskLevel = core.RiskLevel(riskLevel)
	return entry, nil
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO threat_cache
			(text_hash, prediction, phishing_confidence, safe_confidence, risk_level, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			prediction = VALUES(prediction),
			phishing_confidence = VALUES(phishing_confidence),
			safe_confidence = VALUES(safe_confidence),
			risk_level = VALUES(risk_level),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`, entry.TextHash, entry.Prediction, entry.PhishingConfidence, entry.SafeConfidence,
		string(entry.RiskLevel), entry.LastSeen, entry.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, textHash string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM threat_cache
		WHERE text_hash = ?
	`, textHash)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM threat_cache
		WHERE expires_at <= NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the connection
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
