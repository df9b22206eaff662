package game

import (
	"math"
	"math/rand"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/terrain"
)

// Planner tuning constants
const (
	// arrivalRadius is the horizontal distance at which a waypoint counts
	// as reached
	arrivalRadius = 30.0

	// raySamples is the number of terrain probes along the lookahead ray
	raySamples = 12

	// exitForceWindow: with less than this much budget left, the next
	// waypoint becomes an exit point
	exitForceWindow = 10.0

	// speedDecay is the per-tick multiplicative slowdown on terrain hits
	speedDecay = 0.9

	// accelRate is how fast speed recovers toward max, units/s^2
	accelRate = 5.0

	// climbLerp pulls altitude toward the avoidance target on terrain hits;
	// cruiseLerp is the gentler everyday altitude correction
	climbLerp  = 0.2
	cruiseLerp = 0.1

	// rollSmoothing low-pass-filters the banking roll; rollFactor scales
	// yaw rate into bank angle. Roll is visual only and never affects the
	// path geometry.
	rollSmoothing = 0.1
	rollFactor    = -0.8

	// exitMargin places exit points this far beyond the map edge
	exitMargin = 20.0
)

// PlanOptions overrides planner limits for a single call
type PlanOptions struct {
	// MaxWaypoints caps intermediate destinations before an exit is forced.
	// Zero means use the configured default.
	MaxWaypoints int

	// MaxFlightTime (seconds) forces an exit regardless of waypoint count.
	// Zero means use the configured default.
	MaxFlightTime float64

	// ContinueUntilExit ignores the duration budget and keeps simulating
	// until an exit point is actually reached. Used for lazy path extension.
	ContinueUntilExit bool
}

// FlightPlanner procedurally generates time-stepped flight paths over the
// terrain. It is a pure path producer: it never retains entity identity.
// Not safe for concurrent use; callers serialize access.
type FlightPlanner struct {
	cfg     config.HelicopterConfig
	world   config.WorldConfig
	terrain terrain.HeightOracle
	rng     *rand.Rand
}

// NewFlightPlanner creates a planner over the given terrain
func NewFlightPlanner(cfg config.HelicopterConfig, world config.WorldConfig, oracle terrain.HeightOracle, rng *rand.Rand) *FlightPlanner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FlightPlanner{
		cfg:     cfg,
		world:   world,
		terrain: oracle,
		rng:     rng,
	}
}

type waypoint struct {
	position Vector3
	isExit   bool
}

// CalculateFlightPath simulates a flight from start for up to duration
// seconds of path time, at the configured fixed timestep. The returned
// path begins with start at time zero; times are strictly increasing. If
// the flight reached its exit destination the last point, and only the
// last point, carries IsExitPoint. A duration too short to reach an exit
// yields a path without one; callers detect that and extend lazily.
func (p *FlightPlanner) CalculateFlightPath(start PathPoint, duration float64, opts PlanOptions) []PathPoint {
	maxWaypoints := opts.MaxWaypoints
	if maxWaypoints <= 0 {
		maxWaypoints = p.cfg.MaxWaypoints
	}
	maxFlightTime := opts.MaxFlightTime
	if maxFlightTime <= 0 {
		maxFlightTime = p.cfg.MaxFlightTime
	}

	dt := p.cfg.TimeStep
	pos := start.Position
	yaw := start.Rotation.Y
	roll := start.Rotation.Z
	speed := p.cfg.MaxSpeed
	currentTime := 0.0
	waypointCount := 0
	routedToExit := false

	// Unbounded tails are not allowed: if steering somehow never satisfies
	// the arrival condition, flag the last point as the exit and stop.
	maxSteps := int(4 * maxFlightTime / dt)

	path := make([]PathPoint, 0, int(duration/dt)+2)
	path = append(path, PathPoint{
		Time:     0,
		Position: pos,
		Rotation: EulerRotation{Y: yaw, Z: roll},
	})

	target := waypoint{position: p.randomDestination()}

	for step := 0; ; step++ {
		// Steer toward the current target at a clamped yaw rate
		toTarget := Vector3{X: target.position.X - pos.X, Z: target.position.Z - pos.Z}
		dist := horizontalDistance(pos, target.position)
		if dist > 0 {
			desiredYaw := math.Atan2(toTarget.X, toTarget.Z)
			yawDiff := wrapAngle(desiredYaw - yaw)
			maxDelta := p.cfg.MaxYawRate * dt
			yawDelta := math.Max(-maxDelta, math.Min(maxDelta, yawDiff))
			yaw += yawDelta

			// Bank into the turn, smoothed for visual continuity
			targetRoll := rollFactor * (yawDelta / dt) / p.cfg.MaxYawRate
			roll += (targetRoll - roll) * rollSmoothing
		}

		// Terrain avoidance: ray-march a short lookahead along the forward
		// vector and flag the first sample that dips too close to ground
		forward := Vector3{X: math.Sin(yaw), Z: math.Cos(yaw)}
		hit := false
		hitTerrainHeight := 0.0
		for i := 1; i <= raySamples; i++ {
			sampleDist := p.cfg.RaycastDistance * float64(i) / raySamples
			sample := pos.add(forward.scale(sampleDist))
			th := p.terrain.HeightAt(sample.X, sample.Z)
			if pos.Y < th+0.5*p.cfg.MinHeight {
				hit = true
				hitTerrainHeight = th
				break
			}
		}

		// Speed control: back off multiplicatively on a hit, otherwise
		// recover toward max at a fixed rate
		if hit {
			speed = math.Max(speed*speedDecay, p.cfg.MinSpeed)
		} else {
			speed = math.Min(speed+accelRate*dt, p.cfg.MaxSpeed)
		}

		// Height control, applied before translating forward
		switch {
		case hit:
			targetY := hitTerrainHeight + 1.5*p.cfg.MinHeight
			pos.Y += (targetY - pos.Y) * climbLerp
		case routedToExit:
			pos.Y += (p.cfg.FixedHeight - pos.Y) * cruiseLerp
		default:
			targetY := p.terrain.HeightAt(pos.X, pos.Z) + p.cfg.MinHeight
			pos.Y += (targetY - pos.Y) * cruiseLerp
		}

		pos.X += forward.X * speed * dt
		pos.Z += forward.Z * speed * dt
		currentTime += dt

		path = append(path, PathPoint{
			Time:     currentTime,
			Position: pos,
			Rotation: EulerRotation{Y: yaw, Z: roll},
		})

		// Arrival check
		if horizontalDistance(pos, target.position) < arrivalRadius {
			if target.isExit {
				path[len(path)-1].IsExitPoint = true
				return path
			}

			waypointCount++
			budgetExhausted := !opts.ContinueUntilExit && duration-currentTime < exitForceWindow
			if waypointCount >= maxWaypoints || currentTime >= maxFlightTime || budgetExhausted {
				target = waypoint{position: p.exitPoint(), isExit: true}
				routedToExit = true
			} else {
				target = waypoint{position: p.randomDestination()}
			}
		}

		if opts.ContinueUntilExit {
			if step >= maxSteps {
				path[len(path)-1].IsExitPoint = true
				return path
			}
		} else if currentTime >= duration {
			return path
		}
	}
}

// randomDestination picks a uniform point inside map bounds, hovering
// minHeight above the terrain
func (p *FlightPlanner) randomDestination() Vector3 {
	half := p.world.MapSize / 2
	x := (p.rng.Float64()*2 - 1) * half
	z := (p.rng.Float64()*2 - 1) * half
	return Vector3{
		X: x,
		Y: p.terrain.HeightAt(x, z) + p.cfg.MinHeight,
		Z: z,
	}
}

// exitPoint generates a destination just outside the map bounds at the
// fixed exit height
func (p *FlightPlanner) exitPoint() Vector3 {
	half := p.world.MapSize / 2
	along := (p.rng.Float64()*2 - 1) * half
	beyond := half + exitMargin

	switch p.rng.Intn(4) {
	case 0: // north
		return Vector3{X: along, Y: p.cfg.FixedHeight, Z: -beyond}
	case 1: // south
		return Vector3{X: along, Y: p.cfg.FixedHeight, Z: beyond}
	case 2: // east
		return Vector3{X: beyond, Y: p.cfg.FixedHeight, Z: along}
	default: // west
		return Vector3{X: -beyond, Y: p.cfg.FixedHeight, Z: along}
	}
}
