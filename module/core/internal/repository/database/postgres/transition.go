package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.TransitionRepository = (*TransitionRepo)(nil)

type TransitionRepo struct {
	db *sql.DB
}

func NewTransitionRepo(db *sql.DB) *TransitionRepo {
	return &TransitionRepo{db: db}
}

func (r *TransitionRepo) Insert(ctx context.Context, ev *domain.ZoneTransitionEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zone_transitions (id, vehicle_id, shipment_id, zone_id, kind, latitude, longitude, timestamp, notified) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ev.ID, ev.VehicleID, nullString(ev.ShipmentID), ev.ZoneID, string(ev.Kind),
		ev.Location.Lat, ev.Location.Lon, ev.Timestamp, ev.Notified,
	)
	return wrapErr("insert zone transition", err)
}

func (r *TransitionRepo) GetLatest(ctx context.Context, vehicleID, zoneID string) (*domain.ZoneTransitionEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, shipment_id, zone_id, kind, latitude, longitude, timestamp, notified FROM zone_transitions WHERE vehicle_id = $1 AND zone_id = $2 ORDER BY timestamp DESC LIMIT 1`,
		vehicleID, zoneID,
	)

	var (
		ev         domain.ZoneTransitionEvent
		shipmentID sql.NullString
		kind       string
	)
	if err := row.Scan(&ev.ID, &ev.VehicleID, &shipmentID, &ev.ZoneID, &kind,
		&ev.Location.Lat, &ev.Location.Lon, &ev.Timestamp, &ev.Notified); err != nil {
		return nil, wrapErr("get latest zone transition", err)
	}
	ev.ShipmentID = shipmentID.String
	ev.Kind = domain.TransitionKind(kind)
	return &ev, nil
}

func (r *TransitionRepo) MarkNotified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE zone_transitions SET notified = true WHERE id = $1`, id)
	return wrapErr("mark transition notified", err)
}
