// pkg/core/car.go
package core

// Path geometry constants. Paths keep PathOffset to the right of the road
// axis and turn PathInset away from the center.
const (
	PathOffset = 0.1
	PathInset  = 0.2
)

// entryLegs holds the two waypoints a car drives through when coming from a direction.
var entryLegs = map[Direction][2]Vector2{
	North: {{X: -PathOffset, Y: 1}, {X: -PathOffset, Y: PathInset}},
	East:  {{X: 1, Y: PathOffset}, {X: PathInset, Y: PathOffset}},
	South: {{X: PathOffset, Y: -1}, {X: PathOffset, Y: -PathInset}},
	West:  {{X: -1, Y: -PathOffset}, {X: -PathInset, Y: -PathOffset}},
}

// exitLegs holds the two waypoints a car drives through when leaving toward a direction.
var exitLegs = map[Direction][2]Vector2{
	North: {{X: PathOffset, Y: PathInset}, {X: PathOffset, Y: 1}},
	East:  {{X: PathInset, Y: -PathOffset}, {X: 1, Y: -PathOffset}},
	South: {{X: -PathOffset, Y: -PathInset}, {X: -PathOffset, Y: -1}},
	West:  {{X: -PathInset, Y: PathOffset}, {X: -1, Y: PathOffset}},
}

// Car approaches the intersection from Origin and leaves toward Destination.
// Path is derived from the two directions only.
type Car struct {
	Origin      Direction `json:"origin"`
	Destination Direction `json:"destination"`
	Color       Color     `json:"color"`
	Path        []Vector2 `json:"path"`
}

// NewCar builds a car and derives its path.
func NewCar(color Color, origin, destination Direction) Car {
	return Car{
		Origin:      origin,
		Destination: destination,
		Color:       color,
		Path:        PathFor(origin, destination),
	}
}

// PathFor returns the 4-point polyline from origin to destination.
// Unknown directions fall back to West, matching the table's last row.
func PathFor(origin, destination Direction) []Vector2 {
	in, ok := entryLegs[origin]
	if !ok {
		in = entryLegs[West]
	}
	out, ok := exitLegs[destination]
	if !ok {
		out = exitLegs[West]
	}
	return []Vector2{in[0], in[1], out[0], out[1]}
}

// Start returns the first waypoint of the path.
func (c Car) Start() Vector2 {
	if len(c.Path) == 0 {
		return c.Origin.Vector()
	}
	return c.Path[0]
}
