package geometry

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

const EarthRadiusMeters = 6371000

type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

func PointInCircle(p, center Point, radiusMeters float64) bool {
	if radiusMeters <= 0 {
		return false
	}
	return DistanceMeters(p, center) <= radiusMeters
}

// PointInPolygon runs a ray-casting parity test over the ring formed by
// vertices. The ring is closed implicitly. Fewer than 3 vertices is never
// a polygon and always reports false.
func PointInPolygon(p Point, vertices []Point) bool {
	if len(vertices) < 3 {
		return false
	}
	if !bounds(vertices).ContainsPoint(r2.Point{X: p.Lon, Y: p.Lat}) {
		return false
	}

	inside := false
	j := len(vertices) - 1
	for i := range vertices {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			crossLon := (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
			if p.Lon < crossLon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func bounds(vertices []Point) r2.Rect {
	pts := make([]r2.Point, len(vertices))
	for i, v := range vertices {
		pts[i] = r2.Point{X: v.Lon, Y: v.Lat}
	}
	return r2.RectFromPoints(pts...)
}
