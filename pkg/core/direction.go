// pkg/core/direction.go
package core

import "fmt"

// Direction is a road stub entering the intersection.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// AllDirections returns the four compass directions in a fixed order.
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Vector returns the unit vector pointing from the center toward the road.
func (d Direction) Vector() Vector2 {
	switch d {
	case North:
		return Vector2{X: 0, Y: 1}
	case East:
		return Vector2{X: 1, Y: 0}
	case South:
		return Vector2{X: 0, Y: -1}
	case West:
		return Vector2{X: -1, Y: 0}
	default:
		return Vector2{}
	}
}

// String returns the name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// IsValid returns true for the four compass directions.
func (d Direction) IsValid() bool {
	return d >= North && d <= West
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name as written by MarshalText.
func (d *Direction) UnmarshalText(text []byte) error {
	for _, candidate := range AllDirections() {
		if candidate.String() == string(text) {
			*d = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}
