// Package main provides the EduBot chat server entry point.
package main

import (
	"context"
	"time"

	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/logger"
	"github.com/edubot/edubot-go/internal/metrics"
	"github.com/edubot/edubot-go/internal/storage"
)

// pruneConversations periodically deletes conversations idle longer than the
// retention window. Messages cascade with their conversation.
func pruneConversations(ctx context.Context, db *storage.DB, retention time.Duration, m *metrics.Metrics, log *logger.Logger) {
	// Let startup traffic settle before the first sweep
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.RetentionInitialDelay):
		performRetentionSweep(ctx, db, retention, m, log)
	}

	ticker := time.NewTicker(config.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performRetentionSweep(ctx, db, retention, m, log)
		}
	}
}

// performRetentionSweep executes one retention pass
func performRetentionSweep(ctx context.Context, db *storage.DB, retention time.Duration, m *metrics.Metrics, log *logger.Logger) {
	start := time.Now()
	cutoff := time.Now().Add(-retention).Unix()

	deleted, err := db.DeleteConversationsBefore(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Retention sweep failed")
		return
	}

	remaining, err := db.CountConversations(ctx)
	if err == nil {
		m.SetConversations(remaining)
	}

	log.WithField("deleted", deleted).
		WithField("remaining", remaining).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Retention sweep complete")
}

// refreshDataMetrics periodically updates the data size gauges.
func refreshDataMetrics(ctx context.Context, db *storage.DB, matcher *knowledge.Matcher, m *metrics.Metrics, log *logger.Logger) {
	ticker := time.NewTicker(config.MetricsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count, err := db.CountConversations(ctx); err != nil {
				log.WithError(err).Debug("Failed to count conversations for metrics")
			} else {
				m.SetConversations(count)
			}

			m.SetKnowledgeEntries(matcher.Count())
		}
	}
}
