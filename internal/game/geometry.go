package game

import "math"

// contact is the penetration of a marble into an obstacle.
type contact struct {
	normal Vec2 // unit, pointing from the obstacle toward the marble
	depth  float64
}

// circleContact tests a marble (p, r) against a circle (c, cr).
func circleContact(p Vec2, r float64, c Vec2, cr float64) (contact, bool) {
	dx := p.X - c.X
	dy := p.Y - c.Y
	rr := r + cr
	if math.Abs(dx) >= rr || math.Abs(dy) >= rr {
		return contact{}, false
	}
	d2 := dx*dx + dy*dy
	if d2 >= rr*rr {
		return contact{}, false
	}
	if d2 == 0 {
		// Dead centre: push straight up.
		return contact{normal: Vec2{X: 0, Y: -1}, depth: rr}, true
	}
	d := math.Max(MinContactDist, math.Sqrt(d2))
	return contact{normal: Vec2{X: dx / d, Y: dy / d}, depth: rr - d}, true
}

// closestOnSegment returns the point of segment a-b nearest to p.
func closestOnSegment(p, a, b Vec2) Vec2 {
	ab := b.Minus(a)
	l2 := ab.MagnitudeSquared()
	if l2 == 0 {
		return a
	}
	t := clamp(p.Minus(a).Dot(ab)/l2, 0, 1)
	return a.Plus(ab.Times(t))
}

// segmentContact tests a marble against a thick segment and returns the touch point.
func segmentContact(p Vec2, r float64, a, b Vec2, halfWidth float64) (contact, Vec2, bool) {
	q := closestOnSegment(p, a, b)
	c, ok := circleContact(p, r, q, halfWidth)
	return c, q, ok
}

// bounce reflects the normal component of vel when it points into the surface and
// damps the tangential part. The second result reports whether anything changed.
func bounce(vel, n Vec2, restitution, tangentDamping float64) (Vec2, bool) {
	vn := vel.Dot(n)
	if vn >= 0 {
		return vel, false
	}
	vel = vel.Minus(n.Times((1 + restitution) * vn))
	if tangentDamping > 0 {
		vt := vel.Minus(n.Times(vel.Dot(n)))
		vel = vel.Minus(vt.Times(tangentDamping))
	}
	return vel, true
}

// spacing divides span into count-1 gaps, falling back to MinPegSpacing for degenerate input.
func spacing(span float64, count int) float64 {
	if count <= 1 {
		return MinPegSpacing
	}
	gap := span / float64(count-1)
	if math.IsNaN(gap) || math.IsInf(gap, 0) || gap <= 0 {
		return MinPegSpacing
	}
	return gap
}

// staggeredPegs lays out a triangular grid: odd rows shift by half a gap and hold one fewer peg.
func staggeredPegs(xMin, xMax, yTop, yBottom float64, rows, cols int, r float64) []Peg {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	gapX := spacing(xMax-xMin, cols)
	gapY := spacing(yBottom-yTop, rows)
	pegs := make([]Peg, 0, rows*cols)
	for row := 0; row < rows; row++ {
		y := yTop + float64(row)*gapY
		offset := float64(row%2) * (gapX / 2)
		count := cols
		if row%2 == 1 {
			count = cols - 1
		}
		for c := 0; c < count; c++ {
			pegs = append(pegs, Peg{X: xMin + float64(c)*gapX + offset, Y: y, R: r})
		}
	}
	return pegs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
