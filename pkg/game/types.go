package game

import (
	"math"
)

// Vector3 is a position or velocity in world space
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EulerRotation holds Euler angles in radians. Y is yaw, Z is banking roll,
// X is unused and stays zero.
type EulerRotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PathPoint is one timestamped sample of an entity's movement. Time is in
// seconds relative to the entity's spawn. Exactly the last point of a
// terminated path carries IsExitPoint.
type PathPoint struct {
	Time        float64       `json:"time"`
	Position    Vector3       `json:"position"`
	Rotation    EulerRotation `json:"rotation"`
	IsExitPoint bool          `json:"isExitPoint,omitempty"`
}

// SpawnPoint is the initial pose of an entity
type SpawnPoint struct {
	Position Vector3       `json:"position"`
	Rotation EulerRotation `json:"rotation"`
}

// Helicopter is one AI-controlled flying obstacle. FlightPath is the
// full-fidelity server-side path; FilteredFlightPath is the down-sampled
// version sent to clients. The manager owns all mutation.
type Helicopter struct {
	ID                 int         `json:"id"`
	SpawnTime          int64       `json:"spawnTime"` // unix milliseconds
	SpawnPoint         SpawnPoint  `json:"spawnPoint"`
	FlightPath         []PathPoint `json:"-"`
	FilteredFlightPath []PathPoint `json:"flightPath"`
	Health             int         `json:"health"`
	Damaged            bool        `json:"damaged"`
}

// PathSample is the result of a position query: an interpolated pose plus
// whether the entity is parked on its terminal exit point.
type PathSample struct {
	Position    Vector3       `json:"position"`
	Rotation    EulerRotation `json:"rotation"`
	IsExitPoint bool          `json:"isExitPoint"`
}

// DamageResult reports the outcome of a damage application
type DamageResult struct {
	Health      int  `json:"health"`
	IsDestroyed bool `json:"isDestroyed"`
}

// TimelineEvent is one entry of a projectile's client-facing timeline.
// Type tags the variant; clients consume events in non-decreasing time
// order and interpolate between move samples.
type TimelineEvent struct {
	Type         string  `json:"type"`
	ProjectileID int     `json:"projectileId"`
	Time         float64 `json:"time"`
	Position     Vector3 `json:"position"`
}

// Timeline event variants
const (
	TimelineSpawn  = "spawn"
	TimelineMove   = "move"
	TimelineImpact = "impact"
)

func (v Vector3) add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// horizontalDistance returns the distance between two points ignoring Y
func horizontalDistance(a, b Vector3) float64 {
	dx := b.X - a.X
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

func distance3D(a, b Vector3) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVector(a, b Vector3, t float64) Vector3 {
	return Vector3{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t), Z: lerp(a.Z, b.Z, t)}
}

// lerpRotation interpolates Euler components linearly. Yaw is deliberately
// not wrapped to the shortest arc: a client crossing the 0/2π boundary sees
// the same snap the reference client does.
func lerpRotation(a, b EulerRotation, t float64) EulerRotation {
	return EulerRotation{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t), Z: lerp(a.Z, b.Z, t)}
}

// wrapAngle normalizes an angle difference into [-π, π]
func wrapAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
