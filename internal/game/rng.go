package game

// ShuffleSeedMix is XORed into the run seed to derive the queue shuffle stream.
const ShuffleSeedMix uint32 = 0x9e3779b9

// RNG is a xorshift32 stream. Two RNGs built from the same seed produce identical sequences.
type RNG struct {
	state uint32
	draws int64
}

// NewRNG creates a generator from a seed.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: seed}
}

// Float64 advances the state and returns a float in [0, 1).
func (r *RNG) Float64() float64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	r.draws++
	return float64(x) / 4294967296.0
}

// Draws returns the number of values produced since creation.
func (r *RNG) Draws() int64 {
	return r.draws
}

// MakeRNG returns the closure form of NewRNG.
func MakeRNG(seed uint32) func() float64 {
	r := NewRNG(seed)
	return r.Float64
}
