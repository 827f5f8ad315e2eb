package game

import (
	"math"
	"sort"
)

// Propeller is a kinematic cross of bars spinning about (X, Y).
type Propeller struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"` // arm length
	HalfWidth float64 `json:"half_width"`
	Phase     float64 `json:"phase"`
	Spin      float64 `json:"spin"` // rad/s, positive turns +x toward +y
}

// Angle is the rotation of the first bar at the given clock.
func (p Propeller) Angle(clock float64) float64 {
	return p.Phase + p.Spin*clock
}

// Blade returns the endpoints of bar k at the given clock.
func (p Propeller) Blade(clock float64, k int) (Vec2, Vec2) {
	a := p.Angle(clock) + float64(k)*math.Pi/PropellerBlades
	dir := Vec2{X: math.Cos(a), Y: math.Sin(a)}.Times(p.Radius)
	c := Vec2{X: p.X, Y: p.Y}
	return c.Minus(dir), c.Plus(dir)
}

// surfaceVelocity is the velocity of the rotating body at point q.
func (p Propeller) surfaceVelocity(q Vec2) Vec2 {
	return q.Minus(Vec2{X: p.X, Y: p.Y}).LeftNormal().Times(p.Spin)
}

type corridorKnot struct {
	y float64
	b Bounds
}

// Zigzag describes the corridor: piecewise-linear bounds over y plus propeller stations.
type Zigzag struct {
	CorridorWidth float64     `json:"corridor_width"`
	Sections      int         `json:"sections"`
	Propellers    []Propeller `json:"propellers"`

	knots []corridorKnot
	pegs  []Peg
}

// SpawnBoundsAtY maps a height to the playable left/right range.
func (z *Zigzag) SpawnBoundsAtY(y float64) Bounds {
	k := z.knots
	if len(k) == 0 {
		return Bounds{}
	}
	if y <= k[0].y {
		return k[0].b
	}
	i := sort.Search(len(k), func(i int) bool { return k[i].y >= y })
	if i >= len(k) {
		return k[len(k)-1].b
	}
	a, b := k[i-1], k[i]
	span := b.y - a.y
	if span <= 0 {
		return b.b
	}
	t := (y - a.y) / span
	return Bounds{
		Left:  lerp(a.b.Left, b.b.Left, t),
		Right: lerp(a.b.Right, b.b.Right, t),
	}
}

// buildZigzag lays the corridor sections from TopPad down, alternating either side of the
// centre line, then opens through a funnel into a staggered peg field above the slots.
func buildZigzag(b *Board) *Zigzag {
	w := b.WorldW
	finish := b.FinishY()
	top := b.TopPad
	if top <= 0 || top >= finish {
		top = finish * 0.1
	}

	corrW := w * ZigzagCorridorWidth
	shift := w * ZigzagShift
	corrBottom := top + (finish-top)*ZigzagCorridorShare

	sections := int(math.Round(3 * b.HeightMultiplier))
	if sections < 2 {
		sections = 2
	}
	unit := (corrBottom - top) / (float64(sections) + ZigzagTransition*float64(sections-1))
	transH := unit * ZigzagTransition

	z := &Zigzag{
		CorridorWidth: corrW,
		Sections:      sections,
		knots:         []corridorKnot{{y: 0, b: Bounds{Left: 0, Right: w}}},
	}

	arm := corrW * ZigzagPropellerArm * b.ElementScale
	for k := 0; k < sections; k++ {
		side := -1.0
		if k%2 == 1 {
			side = 1.0
		}
		cx := w/2 + side*shift
		y0 := top + float64(k)*(unit+transH)
		y1 := y0 + unit
		bnd := Bounds{Left: cx - corrW/2, Right: cx + corrW/2}
		z.knots = append(z.knots, corridorKnot{y: y0, b: bnd}, corridorKnot{y: y1, b: bnd})

		// Sit toward the centre line where marbles hug the wall, and turn so the upper
		// blade sweeps away from it.
		z.Propellers = append(z.Propellers, Propeller{
			X:         cx - side*corrW*ZigzagPropellerPull,
			Y:         (y0 + y1) / 2,
			Radius:    arm,
			HalfWidth: PropellerBladeWidth * b.ElementScale / 2,
			Phase:     float64(k) * math.Pi / 7,
			Spin:      side * PropellerSpin,
		})
	}

	fieldTop := corrBottom + ZigzagFunnel
	z.knots = append(z.knots, corridorKnot{y: fieldTop, b: Bounds{Left: 0, Right: w}})

	rows := int(math.Round(float64(b.Rows) * ZigzagFieldRows))
	if rows < 2 {
		rows = 2
	}
	yTop := fieldTop + 2*b.BallR
	yBottom := finish - PegBandBottom/2
	if yBottom <= yTop {
		rows = 1
	}
	z.pegs = staggeredPegs(b.SidePad, w-b.SidePad, yTop, yBottom, rows, b.Cols, b.PegR)

	return z
}

// zigzagLayout adapts Zigzag to the Layout interface.
type zigzagLayout struct {
	z *Zigzag
}

func (l *zigzagLayout) Kind() LayoutKind { return LayoutZigzag }

func (l *zigzagLayout) BoundsAtY(y float64) (Bounds, bool) {
	return l.z.SpawnBoundsAtY(y), true
}

// Collide treats each bar as a moving thick segment. Reflection happens in the blade's
// frame so a sweeping bar flings the marble along with it.
func (l *zigzagLayout) Collide(m *Marble, clock float64) int {
	hits := 0
	for i := range l.z.Propellers {
		p := l.z.Propellers[i]
		reach := p.Radius + p.HalfWidth + m.R
		if math.Abs(m.Pos.X-p.X) > reach || math.Abs(m.Pos.Y-p.Y) > reach {
			continue
		}
		for k := 0; k < PropellerBlades; k++ {
			a, b := p.Blade(clock, k)
			c, q, ok := segmentContact(m.Pos, m.R, a, b, p.HalfWidth)
			if !ok {
				continue
			}
			m.Pos = m.Pos.Plus(c.normal.Times(c.depth))

			surf := p.surfaceVelocity(q)
			rel, hit := bounce(m.Vel.Minus(surf), c.normal, PropellerRestitution, 0)
			if !hit {
				continue
			}
			m.Vel = rel.Plus(surf.Times(1 + PropellerBoost))
			hits++
		}
	}
	return hits
}
