package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	attmodels "gatherly/internal/attendance/models"
	platformredis "gatherly/internal/platform/redis"
)

// SnapshotChannel is the global channel carrying every occupancy snapshot.
// Each snapshot is additionally published to SnapshotChannel.<eventID> so
// dashboards can subscribe per event.
const SnapshotChannel = "attendance.checkin"

// RedisSnapshotPublisher pushes occupancy snapshots over Redis pub/sub.
type RedisSnapshotPublisher struct {
	client *platformredis.Client
}

// NewRedisSnapshotPublisher creates a publisher on the given client.
func NewRedisSnapshotPublisher(client *platformredis.Client) *RedisSnapshotPublisher {
	return &RedisSnapshotPublisher{client: client}
}

// Publish sends the snapshot to the global channel and the per-event
// channel. One successful mutation produces exactly one call here.
func (p *RedisSnapshotPublisher) Publish(ctx context.Context, snapshot attmodels.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, SnapshotChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	perEvent := fmt.Sprintf("%s.%s", SnapshotChannel, snapshot.EventID)
	if err := p.client.Publish(ctx, perEvent, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot to event channel: %w", err)
	}
	return nil
}

// LogSnapshotPublisher logs snapshots instead of pushing them. Used when
// Redis is not configured.
type LogSnapshotPublisher struct {
	logger *slog.Logger
}

// NewLogSnapshotPublisher creates a publisher that only logs.
func NewLogSnapshotPublisher(logger *slog.Logger) *LogSnapshotPublisher {
	return &LogSnapshotPublisher{logger: logger}
}

func (p *LogSnapshotPublisher) Publish(ctx context.Context, snapshot attmodels.Snapshot) error {
	p.logger.InfoContext(ctx, "occupancy snapshot",
		"event_id", snapshot.EventID,
		"registered_count", snapshot.RegisteredCount,
		"checked_in_count", snapshot.CheckedInCount,
	)
	return nil
}
