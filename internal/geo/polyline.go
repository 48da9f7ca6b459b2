package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
)

// LineString converts waypoints into a geom.LineString.
func LineString(points []core.Vector2) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(points))
	}

	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid polyline: %w", err)
	}
	return ls, nil
}

// PathLineString returns the car's path as a geom.LineString.
func PathLineString(car core.Car) (geom.LineString, error) {
	ls, err := LineString(car.Path)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("path of %s car: %w", car.Color.Name, err)
	}
	return ls, nil
}

// PathWKT returns the car's path in WKT, e.g. "LINESTRING(-0.1 1,...)".
func PathWKT(car core.Car) (string, error) {
	ls, err := PathLineString(car)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

// PathLength returns the length of the car's path in intersection units.
func PathLength(car core.Car) (float64, error) {
	ls, err := PathLineString(car)
	if err != nil {
		return 0, err
	}
	return ls.Length(), nil
}
