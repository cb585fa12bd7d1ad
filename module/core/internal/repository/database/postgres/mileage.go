package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.MileageRepository = (*MileageRepo)(nil)

// At most one open record exists per (shipment_id, state_code); the partial
// unique index state_mileage_open_idx enforces it and every write below
// targets it.
type MileageRepo struct {
	db *sql.DB
}

func NewMileageRepo(db *sql.DB) *MileageRepo {
	return &MileageRepo{db: db}
}

func (r *MileageRepo) Open(ctx context.Context, rec *domain.StateMileageRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state_mileage (shipment_id, vehicle_id, state_code, miles_accrued, fuel_gallons, toll_cost, weight_tax_applicable, status, entry_time)
		 VALUES ($1, $2, $3, 0, 0, 0, $4, 'open', $5)
		 ON CONFLICT (shipment_id, state_code) WHERE status = 'open'
		 DO UPDATE SET weight_tax_applicable = state_mileage.weight_tax_applicable OR EXCLUDED.weight_tax_applicable`,
		rec.ShipmentID, nullString(rec.VehicleID), rec.StateCode, rec.WeightTaxApplicable, rec.EntryTime,
	)
	return wrapErr("open mileage record", err)
}

func (r *MileageRepo) Close(ctx context.Context, shipmentID, stateCode string, exitTime time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE state_mileage SET status = 'closed', exit_time = $3 WHERE shipment_id = $1 AND state_code = $2 AND status = 'open'`,
		shipmentID, stateCode, exitTime,
	)
	if err != nil {
		return false, wrapErr("close mileage record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("close mileage record", err)
	}
	return n > 0, nil
}

func (r *MileageRepo) AddMiles(ctx context.Context, rec *domain.StateMileageRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state_mileage (shipment_id, vehicle_id, state_code, miles_accrued, fuel_gallons, toll_cost, weight_tax_applicable, status, entry_time)
		 VALUES ($1, $2, $3, $4, 0, 0, false, 'open', $5)
		 ON CONFLICT (shipment_id, state_code) WHERE status = 'open'
		 DO UPDATE SET miles_accrued = state_mileage.miles_accrued + EXCLUDED.miles_accrued`,
		rec.ShipmentID, nullString(rec.VehicleID), rec.StateCode, rec.MilesAccrued, rec.EntryTime,
	)
	return wrapErr("add miles", err)
}

func (r *MileageRepo) AddFuel(ctx context.Context, shipmentID, stateCode string, gallons float64, toll decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE state_mileage SET fuel_gallons = fuel_gallons + $3, toll_cost = toll_cost + $4 WHERE shipment_id = $1 AND state_code = $2 AND status = 'open'`,
		shipmentID, stateCode, gallons, toll,
	)
	if err != nil {
		return wrapErr("add fuel", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("add fuel", err)
	}
	if n == 0 {
		return fmt.Errorf("add fuel: no open record for %s in %s: %w", shipmentID, stateCode, domain.ErrNotFound)
	}
	return nil
}

func (r *MileageRepo) CurrentState(ctx context.Context, shipmentID string) (string, error) {
	var state string
	err := r.db.QueryRowContext(ctx,
		`SELECT state_code FROM state_mileage WHERE shipment_id = $1 AND status = 'open' ORDER BY entry_time DESC LIMIT 1`,
		shipmentID,
	).Scan(&state)
	if err != nil {
		return "", wrapErr("current state", err)
	}
	return state, nil
}

// IFTAReport aggregates records whose entry falls inside the window. Open
// records are included with whatever they have accrued so far.
// IFTAReport sums miles, fuel and tolls per state in the query itself. Open
// records are included; a missing exit time is not an error.
func (r *MileageRepo) IFTAReport(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error) {
	q := `SELECT state_code, COALESCE(SUM(miles_accrued), 0), COALESCE(SUM(fuel_gallons), 0), COALESCE(SUM(toll_cost), 0), COUNT(DISTINCT shipment_id)
		FROM state_mileage WHERE entry_time >= $1 AND entry_time <= $2`
	args := []any{query.Start, query.End}
	if query.VehicleID != "" {
		q += ` AND vehicle_id = $3`
		args = append(args, query.VehicleID)
	}
	q += ` GROUP BY state_code ORDER BY state_code`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr("ifta report", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.IFTARow
	for rows.Next() {
		var row domain.IFTARow
		if err := rows.Scan(&row.StateCode, &row.TotalMiles, &row.TotalFuel, &row.TotalTolls, &row.Trips); err != nil {
			return nil, wrapErr("ifta report", err)
		}
		results = append(results, row)
	}
	return results, wrapErr("ifta report", rows.Err())
}
