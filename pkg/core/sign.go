// pkg/core/sign.go
package core

import "fmt"

// Sign is one generated puzzle: the active roads, the right-of-way pair and
// the cars waiting at the intersection. Cars keep the order they were drawn in.
type Sign struct {
	Sides    []Direction  `json:"sides"`
	Vorfahrt [2]Direction `json:"vorfahrt"`
	Cars     []Car        `json:"cars"`
}

// HasSide reports whether d is one of the active roads.
func (s *Sign) HasSide(d Direction) bool {
	for _, side := range s.Sides {
		if side == d {
			return true
		}
	}
	return false
}

// HasVorfahrt reports whether d belongs to the right-of-way pair.
func (s *Sign) HasVorfahrt(d Direction) bool {
	return s.Vorfahrt[0] == d || s.Vorfahrt[1] == d
}

// Validate checks that a sign is well formed.
func (s *Sign) Validate() error {
	seen := make(map[Direction]bool, len(s.Sides))
	for _, d := range s.Sides {
		if !d.IsValid() {
			return fmt.Errorf("invalid side %d", int(d))
		}
		if seen[d] {
			return fmt.Errorf("duplicate side %s", d)
		}
		seen[d] = true
	}

	if s.Vorfahrt[0] == s.Vorfahrt[1] {
		return fmt.Errorf("vorfahrt pair repeats %s", s.Vorfahrt[0])
	}
	for _, d := range s.Vorfahrt {
		if !seen[d] {
			return fmt.Errorf("vorfahrt side %s is not active", d)
		}
	}

	if len(s.Cars) > len(s.Sides) {
		return fmt.Errorf("%d cars on %d sides", len(s.Cars), len(s.Sides))
	}
	origins := make(map[Direction]bool, len(s.Cars))
	for i, car := range s.Cars {
		switch {
		case !seen[car.Origin]:
			return fmt.Errorf("car %d: origin %s is not active", i, car.Origin)
		case !seen[car.Destination]:
			return fmt.Errorf("car %d: destination %s is not active", i, car.Destination)
		case car.Origin == car.Destination:
			return fmt.Errorf("car %d: destination equals origin %s", i, car.Origin)
		case origins[car.Origin]:
			return fmt.Errorf("car %d: origin %s already taken", i, car.Origin)
		}
		origins[car.Origin] = true
	}
	return nil
}

// String is meant for debug logging.
func (s *Sign) String() string {
	return fmt.Sprintf("sides=%v vorfahrt=%v cars=%d", s.Sides, s.Vorfahrt, len(s.Cars))
}
