package game

// Physics constants are tuned for FixedDt. Changing the step size changes outcomes.
const (
	FixedDt         = 1.0 / 60.0
	Gravity         = 1400.0 // px/s^2
	AirDrag         = 0.995  // per step, both axes
	WallRestitution = 0.55
	PegRestitution  = 0.55
	TangentDamping  = 0.04
	MinContactDist  = 0.0001

	PropellerRestitution = 0.45
	PropellerBoost       = 0.35 // extra share of blade surface velocity handed to the marble
	PropellerBladeWidth  = 8.0  // px, scaled by ElementScale
	PropellerBlades      = 2    // crossed bars
	PropellerSpin        = 3.2  // rad/s

	SpawnY         = 60.0
	SpawnJitter    = 6.0
	SpawnVXSpread  = 20.0
	DropXMargin    = 2.0
	MaxBallCount   = 99
	MinPegSpacing  = 40.0
	PegBandBottom  = 120.0 // gap between the last classic peg row and the slot band
	SnapshotPlaces = 1
	ClockPlaces    = 3

	MaxFrameMs         = 40.0
	MinSpeedMultiplier = 0.5
	MaxSpeedMultiplier = 3.0
)

// Zigzag layout proportions, relative to world width unless noted.
const (
	ZigzagCorridorWidth = 0.40
	ZigzagShift         = 0.20
	ZigzagPropellerArm  = 0.30 // of corridor width
	ZigzagPropellerPull = 0.22 // propeller offset toward the centre line, of corridor width
	ZigzagTransition    = 0.35 // transition height, of section height
	ZigzagCorridorShare = 0.62 // share of the playfield taken by corridor sections
	ZigzagFunnel        = 80.0 // px
	ZigzagFieldRows     = 0.30 // share of configured rows used for the bottom field
)
