package game

import "math"

// Vec2 is a 2D vector in world pixels. Origin is top-left, y grows downward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// round rounds to a fixed number of decimal places for stable text output.
func round(n float64, places int) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(n*p) / p
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// LeftNormal is the vector rotated a quarter turn; for a radius vector it gives the
// direction of travel of a point spinning with positive angular velocity.
func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rounded returns a copy rounded to the given decimal places.
func (v Vec2) Rounded(places int) Vec2 {
	return Vec2{X: round(v.X, places), Y: round(v.Y, places)}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
