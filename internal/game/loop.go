package game

import "math"

// Loop drives a Simulation with fixed 1/60 s steps regardless of frame timing.
type Loop struct {
	sim        *Simulation
	speed      float64
	paused     bool
	afterFrame []func()
}

// NewLoop wraps sim. The speed multiplier is clamped to [0.5, 3]; non-finite values mean 1.
func NewLoop(sim *Simulation, speed float64) *Loop {
	l := &Loop{sim: sim}
	l.SetSpeedMultiplier(speed)
	return l
}

// OnAfterFrame registers a callback run after every tick, in registration order.
func (l *Loop) OnAfterFrame(fn func()) {
	l.afterFrame = append(l.afterFrame, fn)
}

// TickFixed advances by round(ms / FixedDt) steps, at least one, then runs the
// after-frame callbacks. It returns the number of steps taken.
func (l *Loop) TickFixed(ms float64) int {
	steps := int(math.Round((ms / 1000) / FixedDt))
	if steps < 1 || math.IsNaN(ms) {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		l.sim.Step(FixedDt)
	}
	for _, fn := range l.afterFrame {
		fn()
	}
	return steps
}

// Frame handles one display frame of elapsedMs wall time. Long stalls are capped so the
// loop never runs away catching up. Nothing steps while paused or outside a run.
func (l *Loop) Frame(elapsedMs float64) int {
	if l.sim.Mode() != ModePlaying || l.paused {
		return 0
	}
	dt := math.Min(MaxFrameMs, elapsedMs)
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	return l.TickFixed(dt * l.speed)
}

// SetSpeedMultiplier stores and returns the clamped multiplier.
func (l *Loop) SetSpeedMultiplier(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 1
	}
	l.speed = clamp(v, MinSpeedMultiplier, MaxSpeedMultiplier)
	return l.speed
}

func (l *Loop) SpeedMultiplier() float64 { return l.speed }
func (l *Loop) Paused() bool { return l.paused }
func (l *Loop) SetPaused(p bool) { l.paused = p }
