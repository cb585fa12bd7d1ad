package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache"
)

var _ cache.ZoneStateStore = (*ZoneStateStore)(nil)

const (
	insideValue      = "1"
	outsideValue     = "0"
	evaluatedAtField = "evaluated_at"
	zoneFieldPrefix  = "zone:"
)

// ZoneStateStore keeps one hash per vehicle: a field per zone holding
// "1"/"0" and an evaluated_at field holding unix nanoseconds.
type ZoneStateStore struct {
	client redis.Cmdable
}

func NewZoneStateStore(client redis.Cmdable) *ZoneStateStore {
	return &ZoneStateStore{client: client}
}

func zoneStateKey(vehicleID string) string {
	return "zone_state:" + vehicleID
}

func (s *ZoneStateStore) Load(ctx context.Context, vehicleID string) (*cache.VehicleZoneState, error) {
	fields, err := s.client.HGetAll(ctx, zoneStateKey(vehicleID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load zone state: %w", err)
	}

	state := &cache.VehicleZoneState{Inside: make(map[string]bool, len(fields))}
	for field, val := range fields {
		if field == evaluatedAtField {
			ns, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("load zone state: bad %s %q: %w", evaluatedAtField, val, err)
			}
			state.EvaluatedAt = time.Unix(0, ns)
			continue
		}
		if zoneID, ok := strings.CutPrefix(field, zoneFieldPrefix); ok {
			state.Inside[zoneID] = val == insideValue
		}
	}
	return state, nil
}

func (s *ZoneStateStore) SetZone(ctx context.Context, vehicleID, zoneID string, inside bool) error {
	val := outsideValue
	if inside {
		val = insideValue
	}
	if err := s.client.HSet(ctx, zoneStateKey(vehicleID), zoneFieldPrefix+zoneID, val).Err(); err != nil {
		return fmt.Errorf("set zone state: %w", err)
	}
	return nil
}

func (s *ZoneStateStore) MarkEvaluated(ctx context.Context, vehicleID string, at time.Time) error {
	ns := strconv.FormatInt(at.UnixNano(), 10)
	if err := s.client.HSet(ctx, zoneStateKey(vehicleID), evaluatedAtField, ns).Err(); err != nil {
		return fmt.Errorf("mark evaluated: %w", err)
	}
	return nil
}
