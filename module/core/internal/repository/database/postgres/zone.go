package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

var _ database.ZoneRepository = (*ZoneRepo)(nil)

const zoneColumns = `id, name, kind, center_lat, center_lon, radius_m, vertices, state_code, alert_on_enter, alert_on_exit, active`

type ZoneRepo struct {
	db *sql.DB
}

func NewZoneRepo(db *sql.DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

func (r *ZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	var (
		centerLat, centerLon, radius sql.NullFloat64
		vertices                     []byte
	)
	switch s := z.Shape.(type) {
	case geometry.Circle:
		centerLat = sql.NullFloat64{Float64: s.Center.Lat, Valid: true}
		centerLon = sql.NullFloat64{Float64: s.Center.Lon, Valid: true}
		radius = sql.NullFloat64{Float64: s.RadiusMeters, Valid: true}
	case geometry.Polygon:
		b, err := json.Marshal(s.Vertices)
		if err != nil {
			return fmt.Errorf("marshal vertices: %w", err)
		}
		vertices = b
	default:
		return fmt.Errorf("create zone: %w", geometry.ErrInvalidShape)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zones (`+zoneColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		z.ID, z.Name, string(z.Shape.Kind()), centerLat, centerLon, radius, vertices,
		nullString(z.StateCode), z.AlertOnEnter, z.AlertOnExit, z.Active,
	)
	return wrapErr("create zone", err)
}

func (r *ZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	return r.query(ctx, "list zones", `SELECT `+zoneColumns+` FROM zones ORDER BY name`)
}

func (r *ZoneRepo) ListActive(ctx context.Context) ([]domain.Zone, error) {
	return r.query(ctx, "list active zones", `SELECT `+zoneColumns+` FROM zones WHERE active = true ORDER BY name`)
}

func (r *ZoneRepo) query(ctx context.Context, op, query string) ([]domain.Zone, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Zone
	for rows.Next() {
		var (
			z                            domain.Zone
			kind                         string
			centerLat, centerLon, radius sql.NullFloat64
			vertices                     []byte
			stateCode                    sql.NullString
		)
		if err := rows.Scan(&z.ID, &z.Name, &kind, &centerLat, &centerLon, &radius, &vertices,
			&stateCode, &z.AlertOnEnter, &z.AlertOnExit, &z.Active); err != nil {
			return nil, wrapErr(op, err)
		}
		z.StateCode = stateCode.String
		z.Shape = decodeShape(geometry.ShapeKind(kind), centerLat, centerLon, radius, vertices)
		results = append(results, z)
	}
	return results, wrapErr(op, rows.Err())
}

// decodeShape leaves Shape nil for rows it cannot decode; a nil shape never
// contains anything.
func decodeShape(kind geometry.ShapeKind, lat, lon, radius sql.NullFloat64, vertices []byte) geometry.Shape {
	switch kind {
	case geometry.KindCircle:
		if !lat.Valid || !lon.Valid || !radius.Valid {
			return nil
		}
		return geometry.Circle{
			Center:       geometry.Point{Lat: lat.Float64, Lon: lon.Float64},
			RadiusMeters: radius.Float64,
		}
	case geometry.KindPolygon:
		var pts []geometry.Point
		if err := json.Unmarshal(vertices, &pts); err != nil {
			return nil
		}
		return geometry.Polygon{Vertices: pts}
	default:
		return nil
	}
}
