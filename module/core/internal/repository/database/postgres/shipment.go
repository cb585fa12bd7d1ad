package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.ShipmentRepository = (*ShipmentRepo)(nil)

type ShipmentRepo struct {
	db *sql.DB
}

func NewShipmentRepo(db *sql.DB) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

func (r *ShipmentRepo) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, driver_id, vehicle_id, origin_state, dest_state, weight_lbs, is_hazmat, is_oversized FROM shipments WHERE id = $1`,
		id,
	)

	var (
		s         domain.Shipment
		vehicleID sql.NullString
	)
	if err := row.Scan(&s.ID, &s.DriverID, &vehicleID, &s.OriginState, &s.DestState,
		&s.Cargo.WeightLbs, &s.Cargo.IsHazmat, &s.Cargo.IsOversized); err != nil {
		return nil, wrapErr("get shipment", err)
	}
	s.VehicleID = vehicleID.String
	return &s, nil
}

// RecordCrossing writes both halves of a crossing in one statement. The
// unique key on (shipment_id, direction, from_state, to_state, crossed_at)
// turns a replayed crossing into a no-op.
func (r *ShipmentRepo) RecordCrossing(ctx context.Context, exit, entry *domain.StateCrossingEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO state_crossings (shipment_id, driver_id, vehicle_id, direction, from_state, to_state, latitude, longitude, crossed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9), ($10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (shipment_id, direction, from_state, to_state, crossed_at) DO NOTHING`,
		exit.ShipmentID, exit.DriverID, nullString(exit.VehicleID), string(exit.Direction), exit.FromState, exit.ToState, exit.Location.Lat, exit.Location.Lon, exit.Timestamp,
		entry.ShipmentID, entry.DriverID, nullString(entry.VehicleID), string(entry.Direction), entry.FromState, entry.ToState, entry.Location.Lat, entry.Location.Lon, entry.Timestamp,
	)
	if err != nil {
		return false, wrapErr("record crossing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("record crossing", err)
	}
	return n > 0, nil
}

func (r *ShipmentRepo) ListEnteredStates(ctx context.Context, shipmentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_state FROM state_crossings WHERE shipment_id = $1 AND direction = 'entry' ORDER BY crossed_at ASC`,
		shipmentID,
	)
	if err != nil {
		return nil, wrapErr("list entered states", err)
	}
	defer func() { _ = rows.Close() }()

	var states []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, wrapErr("list entered states", err)
		}
		states = append(states, s)
	}
	return states, wrapErr("list entered states", rows.Err())
}
