// AngelaMos | 2026
// alerts.go

package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/roadassist-api/internal/config"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Alert is one entry in the dashboard's system-alert feed.
type Alert struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is the fire-and-forget side of the feed. Emitting packages
// depend on this instead of the concrete redis feed.
type Publisher interface {
	Publish(ctx context.Context, severity Severity, source, message string)
}

// Feed keeps the alert stream on redis: a capped list for the recent view
// and a pub/sub channel for live fanout.
type Feed struct {
	redis  *redis.Client
	cfg    config.AlertsConfig
	logger *slog.Logger
}

func NewFeed(
	redisClient *redis.Client,
	cfg config.AlertsConfig,
	logger *slog.Logger,
) *Feed {
	return &Feed{redis: redisClient, cfg: cfg, logger: logger}
}

// Publish appends to the capped feed and fans out to subscribers. Failures
// are logged, never returned: alerting must not fail the operation that
// raised the alert.
func (f *Feed) Publish(
	ctx context.Context,
	severity Severity,
	source, message string,
) {
	if !severity.IsValid() {
		severity = SeverityInfo
	}

	alert := Alert{
		ID:        uuid.New().String(),
		Severity:  severity,
		Source:    source,
		Message:   message,
		CreatedAt: time.Now(),
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		f.logger.Error("marshal alert", "error", err)
		return
	}

	pipe := f.redis.Pipeline()
	pipe.LPush(ctx, f.cfg.FeedKey, payload)
	pipe.LTrim(ctx, f.cfg.FeedKey, 0, int64(f.cfg.MaxRecent-1))
	pipe.Publish(ctx, f.cfg.Channel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		f.logger.Error("publish alert",
			"error", err,
			"severity", severity,
			"source", source,
		)
	}
}

// Recent returns up to limit alerts, newest first. limit values outside
// (0, MaxRecent] clamp to MaxRecent.
func (f *Feed) Recent(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 || limit > f.cfg.MaxRecent {
		limit = f.cfg.MaxRecent
	}

	raw, err := f.redis.LRange(ctx, f.cfg.FeedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read alert feed: %w", err)
	}

	out := make([]Alert, 0, len(raw))
	for _, item := range raw {
		var alert Alert
		if err := json.Unmarshal([]byte(item), &alert); err != nil {
			// Skip entries an older build may have written.
			f.logger.Warn("skip malformed alert entry", "error", err)
			continue
		}
		out = append(out, alert)
	}

	return out, nil
}

// Subscribe opens a live pub/sub subscription on the alert channel. The
// caller owns the returned subscription and must close it.
func (f *Feed) Subscribe(ctx context.Context) *redis.PubSub {
	return f.redis.Subscribe(ctx, f.cfg.Channel)
}
