package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.ComplianceEventRepository = (*ComplianceEventRepo)(nil)

type ComplianceEventRepo struct {
	db *sql.DB
}

func NewComplianceEventRepo(db *sql.DB) *ComplianceEventRepo {
	return &ComplianceEventRepo{db: db}
}

func (r *ComplianceEventRepo) Insert(ctx context.Context, ev *domain.ComplianceEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO compliance_events (id, shipment_id, driver_id, vehicle_id, state_code, check_type, label, status, detail, action_url, requires_action, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.ShipmentID, ev.DriverID, nullString(ev.VehicleID), ev.StateCode, string(ev.Type),
		ev.Label, string(ev.Status), ev.Detail, nullString(ev.ActionURL), ev.RequiresAction, ev.CreatedAt,
	)
	return wrapErr("insert compliance event", err)
}

func (r *ComplianceEventRepo) ListByShipment(ctx context.Context, shipmentID string) ([]domain.ComplianceEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, shipment_id, driver_id, vehicle_id, state_code, check_type, label, status, detail, action_url, requires_action, created_at
		 FROM compliance_events WHERE shipment_id = $1 ORDER BY created_at ASC`,
		shipmentID,
	)
	if err != nil {
		return nil, wrapErr("list compliance events", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.ComplianceEvent
	for rows.Next() {
		var (
			ev                   domain.ComplianceEvent
			vehicleID, actionURL sql.NullString
			typ, status          string
		)
		if err := rows.Scan(&ev.ID, &ev.ShipmentID, &ev.DriverID, &vehicleID, &ev.StateCode, &typ,
			&ev.Label, &status, &ev.Detail, &actionURL, &ev.RequiresAction, &ev.CreatedAt); err != nil {
			return nil, wrapErr("list compliance events", err)
		}
		ev.VehicleID = vehicleID.String
		ev.ActionURL = actionURL.String
		ev.Type = domain.CheckType(typ)
		ev.Status = domain.CheckStatus(status)
		results = append(results, ev)
	}
	return results, wrapErr("list compliance events", rows.Err())
}
