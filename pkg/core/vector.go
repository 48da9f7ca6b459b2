// pkg/core/vector.go
package core

import "strconv"

// Vector2 is a 2D coordinate used for compass directions and path waypoints.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V2 is a convenience constructor for Vector2.
func V2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns v + w.
func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w.
func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns v scaled by k.
func (v Vector2) Mul(k float64) Vector2 {
	return Vector2{X: v.X * k, Y: v.Y * k}
}

// Div returns v with both coordinates divided by k.
func (v Vector2) Div(k float64) Vector2 {
	return Vector2{X: v.X / k, Y: v.Y / k}
}

// Equal reports whether both coordinates match exactly.
func (v Vector2) Equal(w Vector2) bool {
	return v.X == w.X && v.Y == w.Y
}

// String formats the vector as "x,y".
func (v Vector2) String() string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," + strconv.FormatFloat(v.Y, 'g', -1, 64)
}
