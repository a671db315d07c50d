package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// SeenRecord is what gets stored per published alert, for diagnostics
type SeenRecord struct {
	DeviceID    string             `json:"device_id"`
	Severity    telemetry.Severity `json:"severity"`
	PublishedAt time.Time          `json:"published_at"`
}

// RedisClient is the subset of redis commands the state manager issues.
// *redis.Client satisfies it.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// StateManager tracks which alerts have already been published, keyed by
// alert ID. Alerts are recomputed on every pass, so without this state
// an unchanged condition would be re-announced each time. Entries expire
// after the configured TTL; a condition still active past expiry gets
// announced again.
type StateManager struct {
	redis RedisClient
	ttl   time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient RedisClient, ttl time.Duration) *StateManager {
	return &StateManager{redis: redisClient, ttl: ttl}
}

// MarkIfNew records the alert as published and reports whether it was
// unseen. The SetNX write and the check are a single atomic step, so
// concurrent evaluators cannot both claim the same alert.
func (sm *StateManager) MarkIfNew(ctx context.Context, alert telemetry.Alert) (bool, error) {
	key := fmt.Sprintf("alert_seen:%s", alert.ID)

	record := SeenRecord{
		DeviceID:    alert.DeviceID,
		Severity:    alert.Severity,
		PublishedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to marshal seen record: %w", err)
	}

	isNew, err := sm.redis.SetNX(ctx, key, data, sm.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record alert state in Redis: %w", err)
	}
	return isNew, nil
}

// FilterNew returns the alerts not published before, recording each as
// it is claimed. Alerts keep their input order.
func (sm *StateManager) FilterNew(ctx context.Context, alerts []telemetry.Alert) ([]telemetry.Alert, error) {
	fresh := make([]telemetry.Alert, 0, len(alerts))
	for _, alert := range alerts {
		isNew, err := sm.MarkIfNew(ctx, alert)
		if err != nil {
			return fresh, err
		}
		if isNew {
			fresh = append(fresh, alert)
		}
	}
	return fresh, nil
}

// Forget removes the record for an alert so it can be announced again
func (sm *StateManager) Forget(ctx context.Context, alertID string) error {
	key := fmt.Sprintf("alert_seen:%s", alertID)
	return sm.redis.Del(ctx, key).Err()
}

// SeenAlerts returns all currently-recorded alerts (for monitoring)
func (sm *StateManager) SeenAlerts(ctx context.Context) (map[string]*SeenRecord, error) {
	keys, err := sm.redis.Keys(ctx, "alert_seen:*").Result()
	if err != nil {
		return nil, err
	}

	records := make(map[string]*SeenRecord)
	for _, key := range keys {
		data, err := sm.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var record SeenRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}

		records[key] = &record
	}

	return records, nil
}
