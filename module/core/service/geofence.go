package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

// Transition applies the per-(vehicle, zone) state machine. It reports the
// event to emit, if any.
func Transition(z *domain.Zone, wasInside, isInside bool) (domain.TransitionKind, bool) {
	switch {
	case !wasInside && isInside && z.AlertOnEnter:
		return domain.TransitionEnter, true
	case wasInside && !isInside && z.AlertOnExit:
		return domain.TransitionExit, true
	}
	return "", false
}

// PreviousFunc returns whether the vehicle was inside z before this report.
type PreviousFunc func(z *domain.Zone) (bool, error)

// ZoneChange is a zone whose inside/outside state a report changes. Event is
// nil when the zone does not alert on that change.
type ZoneChange struct {
	Zone   *domain.Zone
	Inside bool
	Event  *domain.ZoneTransitionEvent
}

// Evaluate runs every active zone against one report and returns the zones
// whose state changes.
func Evaluate(report *domain.PositionReport, zones []domain.Zone, previous PreviousFunc) ([]ZoneChange, error) {
	var changes []ZoneChange
	for i := range zones {
		z := &zones[i]
		if !z.Active {
			continue
		}
		isInside := geometry.Contains(z.Shape, report.Location)
		wasInside, err := previous(z)
		if err != nil {
			return nil, err
		}
		if wasInside == isInside {
			continue
		}

		change := ZoneChange{Zone: z, Inside: isInside}
		if kind, ok := Transition(z, wasInside, isInside); ok {
			change.Event = &domain.ZoneTransitionEvent{
				VehicleID:  report.VehicleID,
				ShipmentID: report.ShipmentID,
				ZoneID:     z.ID,
				Kind:       kind,
				Location:   report.Location,
				Timestamp:  report.Timestamp,
			}
		}
		changes = append(changes, change)
	}
	return changes, nil
}

type crossingHandler interface {
	CurrentState(ctx context.Context, shipmentID string) (string, error)
	HandleStateCrossing(ctx context.Context, in *domain.CrossingInput) ([]domain.ComplianceCheckItem, error)
}

type transitionBroadcaster interface {
	BroadcastTransition(ev domain.ZoneTransitionEvent)
}

type GeofenceService struct {
	zones       database.ZoneRepository
	transitions database.TransitionRepository
	states      cache.ZoneStateStore
	crossings   crossingHandler
	broadcaster transitionBroadcaster
	log         logrus.FieldLogger
}

func NewGeofenceService(
	zones database.ZoneRepository,
	transitions database.TransitionRepository,
	states cache.ZoneStateStore,
	crossings crossingHandler,
	broadcaster transitionBroadcaster,
	log logrus.FieldLogger,
) *GeofenceService {
	return &GeofenceService{
		zones:       zones,
		transitions: transitions,
		states:      states,
		crossings:   crossings,
		broadcaster: broadcaster,
		log:         log,
	}
}

// CheckAndAlert evaluates one report against all active zones, persists and
// broadcasts the resulting events, and hands state-line entries to the
// crossing handler. Callers must hold the vehicle lock.
//
// A report that is not newer than the vehicle's last evaluated report is
// ignored. A zone's state is committed only after its crossing and event have
// been stored, so a failed report is evaluated again by the next one.
func (s *GeofenceService) CheckAndAlert(ctx context.Context, report *domain.PositionReport) ([]domain.ZoneTransitionEvent, error) {
	entry := s.log.WithField("vehicle_id", report.VehicleID)

	state, err := s.states.Load(ctx, report.VehicleID)
	if err != nil {
		entry.WithError(err).Warn("zone state unavailable, using event log")
	}
	if state != nil && !state.EvaluatedAt.IsZero() && !report.Timestamp.After(state.EvaluatedAt) {
		entry.WithFields(logrus.Fields{
			"timestamp":    report.Timestamp,
			"evaluated_at": state.EvaluatedAt,
		}).Debug("report not newer than last evaluation")
		return nil, nil
	}

	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active zones: %w", err)
	}

	changes, err := Evaluate(report, zones, func(z *domain.Zone) (bool, error) {
		return s.previousState(ctx, state, report.VehicleID, z.ID)
	})
	if err != nil {
		return nil, err
	}

	var events []domain.ZoneTransitionEvent
	for _, c := range changes {
		if c.Inside && c.Zone.IsStateBoundary() && report.ShipmentID != "" {
			if err := s.crossState(ctx, report, c.Zone.StateCode); err != nil {
				return events, err
			}
		}

		if c.Event != nil {
			c.Event.ID = uuid.NewString()
			if err := s.transitions.Insert(ctx, c.Event); err != nil {
				return events, fmt.Errorf("insert transition: %w", err)
			}
		}

		if err := s.states.SetZone(ctx, report.VehicleID, c.Zone.ID, c.Inside); err != nil {
			entry.WithField("zone_id", c.Zone.ID).WithError(err).Warn("commit zone state")
		}

		if c.Event != nil {
			entry.WithFields(logrus.Fields{"zone_id": c.Event.ZoneID, "kind": c.Event.Kind}).Info("zone transition")
			s.broadcaster.BroadcastTransition(*c.Event)
			events = append(events, *c.Event)
		}
	}

	if err := s.states.MarkEvaluated(ctx, report.VehicleID, report.Timestamp); err != nil {
		entry.WithError(err).Warn("mark report evaluated")
	}
	return events, nil
}

// previousState reads the committed state for the zone. When nothing is
// committed, or the store is unreachable, the latest stored event decides.
func (s *GeofenceService) previousState(ctx context.Context, state *cache.VehicleZoneState, vehicleID, zoneID string) (bool, error) {
	if inside, known := state.Zone(zoneID); known {
		return inside, nil
	}

	last, err := s.transitions.GetLatest(ctx, vehicleID, zoneID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("latest transition: %w", err)
	}
	return last.Kind == domain.TransitionEnter, nil
}

func (s *GeofenceService) crossState(ctx context.Context, report *domain.PositionReport, toState string) error {
	fromState, err := s.crossings.CurrentState(ctx, report.ShipmentID)
	if err != nil {
		return fmt.Errorf("current state: %w", err)
	}
	if fromState == toState {
		return nil
	}

	_, err = s.crossings.HandleStateCrossing(ctx, &domain.CrossingInput{
		LoadID:    report.ShipmentID,
		DriverID:  report.DriverID,
		VehicleID: report.VehicleID,
		FromState: fromState,
		ToState:   toState,
		Location:  report.Location,
		Timestamp: report.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("handle state crossing: %w", err)
	}
	return nil
}
