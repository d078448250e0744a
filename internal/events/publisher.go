package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"duel/internal/models"
)

const (
	// MatchesChannel carries lifecycle events for external collaborators
	// (statistics, leaderboard).
	MatchesChannel = "duel:matches"

	publishTimeout = 2 * time.Second
)

// Event types
const (
	EventMatchCreated   = "match_created"
	EventMatchStarted   = "match_started"
	EventMatchCompleted = "match_completed"
	EventMatchCancelled = "match_cancelled"
)

type MatchEvent struct {
	Type      string       `json:"type"`
	Match     models.Match `json:"match"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher hands match events to whatever is listening. Publish must not block.
type Publisher interface {
	Publish(eventType string, m models.Match)
}

// NopPublisher drops every event. Used when no redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, models.Match) {}

type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

// Publish sends the event in the background; failures are only logged.
func (p *RedisPublisher) Publish(eventType string, m models.Match) {
	data, err := json.Marshal(MatchEvent{Type: eventType, Match: m, Timestamp: time.Now()})
	if err != nil {
		p.logger.Error("Failed to marshal match event", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.rdb.Publish(ctx, MatchesChannel, data).Err(); err != nil {
			p.logger.Warn("Failed to publish match event",
				zap.String("type", eventType),
				zap.String("matchId", m.MatchID),
				zap.Error(err))
		}
	}()
}
