package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

const positionColumns = `vehicle_id, driver_id, shipment_id, latitude, longitude, speed, heading, accuracy, altitude, timestamp`

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, p *domain.PositionReport) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicle_positions (`+positionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT (vehicle_id, timestamp) DO NOTHING`,
		p.VehicleID, p.DriverID, nullString(p.ShipmentID), p.Location.Lat, p.Location.Lon,
		nullFloat(p.Speed), nullFloat(p.Heading), nullFloat(p.Accuracy), nullFloat(p.Altitude), p.Timestamp,
	)
	if err != nil {
		return false, wrapErr("insert position", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("insert position", err)
	}
	return n > 0, nil
}

func (r *LocationRepo) UpdateVehicleLocation(ctx context.Context, p *domain.PositionReport) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (vehicle_id, driver_id, latitude, longitude, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vehicle_id) DO UPDATE SET driver_id = EXCLUDED.driver_id, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = EXCLUDED.updated_at
		 WHERE vehicles.updated_at IS NULL OR vehicles.updated_at < EXCLUDED.updated_at`,
		p.VehicleID, p.DriverID, p.Location.Lat, p.Location.Lon, p.Timestamp,
	)
	return wrapErr("update vehicle location", err)
}

func (r *LocationRepo) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM vehicle_positions WHERE vehicle_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		vehicleID,
	)
	p, err := scanPosition(row)
	if err != nil {
		return nil, wrapErr("get latest position", err)
	}
	return p, nil
}

func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error) {
	return r.queryPositions(ctx, "get history",
		`SELECT `+positionColumns+` FROM vehicle_positions WHERE vehicle_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.VehicleID, query.Start, query.End,
	)
}

func (r *LocationRepo) GetDriverHistory(ctx context.Context, query *domain.DriverHistoryQuery) ([]domain.PositionReport, error) {
	return r.queryPositions(ctx, "get driver history",
		`SELECT `+positionColumns+` FROM vehicle_positions WHERE driver_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.DriverID, query.Start, query.End,
	)
}

func (r *LocationRepo) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT vehicle_id, driver_id, latitude, longitude, updated_at FROM vehicles ORDER BY vehicle_id`,
	)
	if err != nil {
		return nil, wrapErr("get vehicles", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Vehicle
	for rows.Next() {
		var (
			v         domain.Vehicle
			driverID  sql.NullString
			lat, lon  sql.NullFloat64
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&v.VehicleID, &driverID, &lat, &lon, &updatedAt); err != nil {
			return nil, wrapErr("scan vehicle", err)
		}
		v.DriverID = driverID.String
		if lat.Valid && lon.Valid {
			v.Location = &geometry.Point{Lat: lat.Float64, Lon: lon.Float64}
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			v.UpdatedAt = &t
		}
		results = append(results, v)
	}
	return results, wrapErr("get vehicles", rows.Err())
}

func (r *LocationRepo) queryPositions(ctx context.Context, op, query string, args ...any) ([]domain.PositionReport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PositionReport
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		results = append(results, *p)
	}
	return results, wrapErr(op, rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(s scanner) (*domain.PositionReport, error) {
	var (
		p                                  domain.PositionReport
		shipmentID                         sql.NullString
		speed, heading, accuracy, altitude sql.NullFloat64
	)
	err := s.Scan(&p.VehicleID, &p.DriverID, &shipmentID, &p.Location.Lat, &p.Location.Lon,
		&speed, &heading, &accuracy, &altitude, &p.Timestamp)
	if err != nil {
		return nil, err
	}
	p.ShipmentID = shipmentID.String
	p.Speed = floatPtr(speed)
	p.Heading = floatPtr(heading)
	p.Accuracy = floatPtr(accuracy)
	p.Altitude = floatPtr(altitude)
	return &p, nil
}
