package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
)

// Point converts a vector into a geom.Point.
func Point(v core.Vector2) (geom.Point, error) {
	pt, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: v.X, Y: v.Y},
			Type: geom.DimXY,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("point %s: %w", v, err)
	}
	return pt, nil
}

// Center is the intersection point all roads meet at.
var Center = core.Vector2{}

// TouchesCenter reports whether the car's path runs through the center point.
func TouchesCenter(car core.Car) (bool, error) {
	ls, err := PathLineString(car)
	if err != nil {
		return false, err
	}
	center, err := Point(Center)
	if err != nil {
		return false, err
	}
	return geom.Intersects(ls.AsGeometry(), center.AsGeometry()), nil
}

// Conflict is a pair of cars whose paths cross or share a stretch of road.
// A and B index into Sign.Cars with A < B.
type Conflict struct {
	A  int          `json:"a"`
	B  int          `json:"b"`
	At core.Vector2 `json:"at"`
}

// Conflicts returns every pair of cars whose paths intersect. At is the
// centroid of the shared geometry: the crossing point, or the middle of a
// shared stretch.
func Conflicts(sign *core.Sign) ([]Conflict, error) {
	paths := make([]geom.Geometry, len(sign.Cars))
	for i, car := range sign.Cars {
		ls, err := PathLineString(car)
		if err != nil {
			return nil, err
		}
		paths[i] = ls.AsGeometry()
	}

	var conflicts []Conflict
	for a := 0; a < len(paths); a++ {
		for b := a + 1; b < len(paths); b++ {
			if !geom.Intersects(paths[a], paths[b]) {
				continue
			}
			shared, err := geom.Intersection(paths[a], paths[b])
			if err != nil {
				return nil, fmt.Errorf("intersecting cars %d and %d: %w", a, b, err)
			}
			c := Conflict{A: a, B: b}
			if xy, ok := shared.Centroid().XY(); ok {
				c.At = core.Vector2{X: xy.X, Y: xy.Y}
			}
			conflicts = append(conflicts, c)
		}
	}
	return conflicts, nil
}
