package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

const metersPerMile = 1609.344

type crossingBroadcaster interface {
	BroadcastCrossing(alert domain.CrossingAlert)
}

type CrossingService struct {
	shipments   database.ShipmentRepository
	mileage     database.MileageRepository
	events      database.ComplianceEventRepository
	engine      *compliance.Engine
	broadcaster crossingBroadcaster
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewCrossingService(
	shipments database.ShipmentRepository,
	mileage database.MileageRepository,
	events database.ComplianceEventRepository,
	engine *compliance.Engine,
	broadcaster crossingBroadcaster,
	log logrus.FieldLogger,
) *CrossingService {
	return &CrossingService{
		shipments:   shipments,
		mileage:     mileage,
		events:      events,
		engine:      engine,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// HandleStateCrossing evaluates the entered state and records the crossing.
// Every write is idempotent, so a crossing that was already recorded repeats
// them to finish whatever an earlier attempt left undone; only the broadcast
// is limited to the first attempt.
func (s *CrossingService) HandleStateCrossing(ctx context.Context, in *domain.CrossingInput) ([]domain.ComplianceCheckItem, error) {
	toState := compliance.NormalizeState(in.ToState)
	fromState := compliance.NormalizeState(in.FromState)
	if in.LoadID == "" {
		return nil, fmt.Errorf("load id is required: %w", domain.ErrInvalidInput)
	}
	if !compliance.IsKnownState(toState) {
		return nil, fmt.Errorf("unknown state %q: %w", in.ToState, domain.ErrInvalidInput)
	}

	shipment, err := s.shipments.Get(ctx, in.LoadID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in.LoadID, err)
	}

	if fromState == "" {
		if fromState, err = s.CurrentState(ctx, shipment.ID); err != nil {
			return nil, err
		}
	}

	cargo := shipment.Cargo
	if in.WeightLbs != nil {
		cargo.WeightLbs = *in.WeightLbs
	}
	if in.IsHazmat != nil {
		cargo.IsHazmat = *in.IsHazmat
	}
	if in.IsOversized != nil {
		cargo.IsOversized = *in.IsOversized
	}

	driverID := in.DriverID
	if driverID == "" {
		driverID = shipment.DriverID
	}
	vehicleID := in.VehicleID
	if vehicleID == "" {
		vehicleID = shipment.VehicleID
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	items := s.engine.CheckState(toState, cargo)

	entry := s.log.WithFields(logrus.Fields{
		"load_id":    shipment.ID,
		"from_state": fromState,
		"to_state":   toState,
	})

	exit := &domain.StateCrossingEvent{
		ShipmentID: shipment.ID,
		DriverID:   driverID,
		VehicleID:  vehicleID,
		Direction:  domain.CrossingExit,
		FromState:  fromState,
		ToState:    toState,
		Location:   in.Location,
		Timestamp:  ts,
	}
	enter := *exit
	enter.Direction = domain.CrossingEntry

	recorded, err := s.shipments.RecordCrossing(ctx, exit, &enter)
	if err != nil {
		return nil, err
	}
	if !recorded {
		entry.Info("crossing already recorded, completing bookkeeping")
	}

	if fromState != "" {
		if _, err := s.mileage.Close(ctx, shipment.ID, fromState, ts); err != nil {
			return nil, err
		}
	}

	err = s.mileage.Open(ctx, &domain.StateMileageRecord{
		ShipmentID:          shipment.ID,
		VehicleID:           vehicleID,
		StateCode:           toState,
		WeightTaxApplicable: weightTaxApplies(items),
		Status:              domain.MileageOpen,
		EntryTime:           ts,
	})
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !item.Actionable || item.Status == domain.StatusPass {
			continue
		}
		err := s.events.Insert(ctx, &domain.ComplianceEvent{
			ID:             complianceEventID(shipment.ID, fromState, toState, item.Type, ts),
			ShipmentID:     shipment.ID,
			DriverID:       driverID,
			VehicleID:      vehicleID,
			StateCode:      toState,
			Type:           item.Type,
			Label:          item.Label,
			Status:         item.Status,
			Detail:         item.Detail,
			ActionURL:      item.ActionURL,
			RequiresAction: true,
			CreatedAt:      ts,
		})
		if err != nil {
			return nil, err
		}
	}

	if !recorded {
		return items, nil
	}

	alerts := make([]domain.ComplianceCheckItem, 0, len(items))
	for _, item := range items {
		if item.Status != domain.StatusPass {
			alerts = append(alerts, item)
		}
	}
	s.broadcaster.BroadcastCrossing(domain.CrossingAlert{
		LoadID:    shipment.ID,
		FromState: fromState,
		ToState:   toState,
		StateName: compliance.StateName(toState),
		Lat:       in.Location.Lat,
		Lng:       in.Location.Lon,
		Alerts:    alerts,
		Timestamp: ts.UnixMilli(),
	})

	entry.WithField("alerts", len(alerts)).Info("state crossing recorded")
	return items, nil
}

// complianceEventID is stable for one check of one crossing so a repeated
// insert is a no-op.
func complianceEventID(shipmentID, fromState, toState string, typ domain.CheckType, ts time.Time) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%d", shipmentID, fromState, toState, typ, ts.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func weightTaxApplies(items []domain.ComplianceCheckItem) bool {
	for _, item := range items {
		if item.Type == domain.CheckWeightTax && item.Status != domain.StatusPass {
			return true
		}
	}
	return false
}

// CurrentState is the state a shipment is in: its open mileage record, else
// the last state it crossed into, else its origin.
func (s *CrossingService) CurrentState(ctx context.Context, shipmentID string) (string, error) {
	state, err := s.mileage.CurrentState(ctx, shipmentID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	entered, err := s.shipments.ListEnteredStates(ctx, shipmentID)
	if err != nil {
		return "", err
	}
	if len(entered) > 0 {
		return entered[len(entered)-1], nil
	}

	shipment, err := s.shipments.Get(ctx, shipmentID)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", shipmentID, err)
	}
	return compliance.NormalizeState(shipment.OriginState), nil
}

// AccrueMiles adds the distance between two consecutive reports of a
// shipment to the state it is currently in.
func (s *CrossingService) AccrueMiles(ctx context.Context, prev, cur *domain.PositionReport) error {
	if cur.ShipmentID == "" || prev.ShipmentID != cur.ShipmentID || !cur.Timestamp.After(prev.Timestamp) {
		return nil
	}
	miles := geometry.DistanceMeters(prev.Location, cur.Location) / metersPerMile
	if miles <= 0 {
		return nil
	}

	state, err := s.CurrentState(ctx, cur.ShipmentID)
	if err != nil {
		return err
	}
	if state == "" {
		return nil
	}

	return s.mileage.AddMiles(ctx, &domain.StateMileageRecord{
		ShipmentID:   cur.ShipmentID,
		VehicleID:    cur.VehicleID,
		StateCode:    state,
		MilesAccrued: miles,
		Status:       domain.MileageOpen,
		EntryTime:    cur.Timestamp,
	})
}

// AddFuel records a fuel purchase and tolls against the shipment's open
// record for state.
func (s *CrossingService) AddFuel(ctx context.Context, shipmentID, state string, gallons float64, toll decimal.Decimal) error {
	state = compliance.NormalizeState(state)
	if !compliance.IsKnownState(state) {
		return fmt.Errorf("unknown state %q: %w", state, domain.ErrInvalidInput)
	}
	if gallons < 0 || toll.IsNegative() {
		return fmt.Errorf("fuel and toll must not be negative: %w", domain.ErrInvalidInput)
	}
	return s.mileage.AddFuel(ctx, shipmentID, state, gallons, toll)
}
