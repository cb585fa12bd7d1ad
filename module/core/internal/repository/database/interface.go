package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

type LocationRepository interface {
	// Insert appends a report. It returns false when the same
	// (vehicle, timestamp) report was already stored.
	Insert(ctx context.Context, r *domain.PositionReport) (bool, error)
	UpdateVehicleLocation(ctx context.Context, r *domain.PositionReport) error
	GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error)
	GetDriverHistory(ctx context.Context, query *domain.DriverHistoryQuery) ([]domain.PositionReport, error)
	GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

type ZoneRepository interface {
	Create(ctx context.Context, z *domain.Zone) error
	List(ctx context.Context) ([]domain.Zone, error)
	ListActive(ctx context.Context) ([]domain.Zone, error)
}

type TransitionRepository interface {
	Insert(ctx context.Context, ev *domain.ZoneTransitionEvent) error
	GetLatest(ctx context.Context, vehicleID, zoneID string) (*domain.ZoneTransitionEvent, error)
	MarkNotified(ctx context.Context, id string) error
}

type ShipmentRepository interface {
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	// RecordCrossing stores the exit/entry pair. It returns false when the
	// pair was already recorded.
	RecordCrossing(ctx context.Context, exit, entry *domain.StateCrossingEvent) (bool, error)
	ListEnteredStates(ctx context.Context, shipmentID string) ([]string, error)
}

type MileageRepository interface {
	// Open creates the open record for (shipment, state) unless one exists.
	Open(ctx context.Context, rec *domain.StateMileageRecord) error
	// Close closes the open record for (shipment, state). Closing a state
	// with no open record is not an error; it returns false.
	Close(ctx context.Context, shipmentID, stateCode string, exitTime time.Time) (bool, error)
	// AddMiles accrues miles on the open record, opening it if needed.
	AddMiles(ctx context.Context, rec *domain.StateMileageRecord) error
	AddFuel(ctx context.Context, shipmentID, stateCode string, gallons float64, toll decimal.Decimal) error
	CurrentState(ctx context.Context, shipmentID string) (string, error)
	IFTAReport(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error)
}

type ComplianceEventRepository interface {
	Insert(ctx context.Context, ev *domain.ComplianceEvent) error
	ListByShipment(ctx context.Context, shipmentID string) ([]domain.ComplianceEvent, error)
}
