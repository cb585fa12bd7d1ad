package geometry

import (
	"errors"
	"fmt"
)

type ShapeKind string

const (
	KindCircle  ShapeKind = "circle"
	KindPolygon ShapeKind = "polygon"
)

var ErrInvalidShape = errors.New("invalid shape")

// Shape is implemented only by Circle and Polygon.
type Shape interface {
	Kind() ShapeKind
	shape()
}

type Circle struct {
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
}

func (Circle) Kind() ShapeKind { return KindCircle }
func (Circle) shape()          {}

type Polygon struct {
	Vertices []Point `json:"vertices"`
}

func (Polygon) Kind() ShapeKind { return KindPolygon }
func (Polygon) shape()          {}

// Contains reports whether p lies inside s. Malformed or unknown shapes
// report false.
func Contains(s Shape, p Point) bool {
	switch g := s.(type) {
	case Circle:
		return PointInCircle(p, g.Center, g.RadiusMeters)
	case Polygon:
		return PointInPolygon(p, g.Vertices)
	default:
		return false
	}
}

func Validate(s Shape) error {
	switch g := s.(type) {
	case Circle:
		if g.RadiusMeters <= 0 {
			return fmt.Errorf("%w: circle radius must be positive", ErrInvalidShape)
		}
		return validPoint(g.Center)
	case Polygon:
		if len(g.Vertices) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, len(g.Vertices))
		}
		for _, v := range g.Vertices {
			if err := validPoint(v); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: missing geometry", ErrInvalidShape)
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidShape, s.Kind())
	}
}

func validPoint(p Point) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidShape, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidShape, p.Lon)
	}
	return nil
}
