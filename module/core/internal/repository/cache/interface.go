package cache

import (
	"context"
	"errors"
	"time"
)

var ErrLockNotObtained = errors.New("vehicle lock not obtained")

// VehicleZoneState is what is known about one vehicle's position relative to
// the zones: the timestamp of the last fully evaluated report and the
// inside/outside state committed for each zone.
type VehicleZoneState struct {
	EvaluatedAt time.Time
	Inside      map[string]bool
}

// Zone reports the committed state for zoneID. known is false when nothing
// has been committed for the pair.
func (s *VehicleZoneState) Zone(zoneID string) (inside, known bool) {
	if s == nil {
		return false, false
	}
	inside, known = s.Inside[zoneID]
	return inside, known
}

// ZoneStateStore holds the per-vehicle zone state. Writers are expected to
// hold the vehicle lock.
type ZoneStateStore interface {
	Load(ctx context.Context, vehicleID string) (*VehicleZoneState, error)
	SetZone(ctx context.Context, vehicleID, zoneID string, inside bool) error
	MarkEvaluated(ctx context.Context, vehicleID string, at time.Time) error
}

type VehicleLocker interface {
	Lock(ctx context.Context, vehicleID string) (unlock func(context.Context) error, err error)
}
