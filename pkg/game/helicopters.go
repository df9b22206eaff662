package game

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/terrain"
)

// sweepInterval is how often the manager reaps helicopters parked on their
// exit points
const sweepInterval = time.Second

// maxPathExtensions bounds how many lazy extensions a single position query
// may trigger. On exhaustion the query clamps to the last known point
// instead of extending forever.
const maxPathExtensions = 4

// HelicopterManager owns the active helicopter population of one game
// session: it spawns helicopters up to the configured cap, answers
// authoritative position queries against their precomputed paths, applies
// damage, reaps helicopters that reached their exit point, and broadcasts
// every lifecycle event to the session's room.
type HelicopterManager struct {
	mu          sync.Mutex
	gameID      string
	cfg         config.HelicopterConfig
	world       config.WorldConfig
	planner     *FlightPlanner
	broadcaster Broadcaster
	log         logger.Logger
	rng         *rand.Rand
	now         func() time.Time

	helicopters map[int]*Helicopter
	nextID      int

	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	disposed bool
}

// ManagerOption customizes a HelicopterManager at construction
type ManagerOption func(*HelicopterManager)

// WithClock overrides the manager's time source. Used by scenarios and
// tests to drive simulated time.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *HelicopterManager) {
		m.now = now
	}
}

// WithRandSource seeds the manager's random source for deterministic runs
func WithRandSource(seed int64) ManagerOption {
	return func(m *HelicopterManager) {
		m.rng = rand.New(rand.NewSource(seed))
		m.planner = NewFlightPlanner(m.cfg, m.world, m.planner.terrain, m.rng)
	}
}

// NewHelicopterManager creates a manager for one game session
func NewHelicopterManager(gameID string, cfg config.HelicopterConfig, world config.WorldConfig, oracle terrain.HeightOracle, broadcaster Broadcaster, opts ...ManagerOption) *HelicopterManager {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	m := &HelicopterManager{
		gameID:      gameID,
		cfg:         cfg,
		world:       world,
		planner:     NewFlightPlanner(cfg, world, oracle, rng),
		broadcaster: broadcaster,
		log:         logger.WithPrefix("helicopters"),
		rng:         rng,
		now:         time.Now,
		helicopters: make(map[int]*Helicopter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start launches the spawn loop and the sweep loop. The spawn loop tops the
// population up to the cap on every tick; the sweep loop reaps helicopters
// parked on their exit point and replaces them immediately. Calling Start
// on a running or disposed manager is a no-op.
func (m *HelicopterManager) Start(spawnInterval time.Duration) {
	m.mu.Lock()
	if m.disposed || m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	m.wg.Add(2)

	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(spawnInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.spawnUpToCap()
			}
		}
	}()

	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Stop cancels both loops. Idempotent.
func (m *HelicopterManager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *HelicopterManager) spawnUpToCap() {
	for {
		m.mu.Lock()
		room := !m.disposed && len(m.helicopters) < m.cfg.MaxHelicopters
		m.mu.Unlock()
		if !room {
			return
		}
		if _, ok := m.Spawn(); !ok {
			return
		}
	}
}

// Spawn creates one helicopter at a random map-edge spawn point, plans its
// flight for the configured look-ahead horizon, stores both the full and
// the filtered path, and broadcasts the spawn with the filtered path only.
// Returns false when the population cap is reached or the manager is
// disposed.
func (m *HelicopterManager) Spawn() (int, bool) {
	m.mu.Lock()
	if m.disposed || len(m.helicopters) >= m.cfg.MaxHelicopters {
		m.mu.Unlock()
		return 0, false
	}

	m.nextID++
	id := m.nextID

	spawn := m.randomSpawnPoint()
	start := PathPoint{Position: spawn.Position, Rotation: spawn.Rotation}
	path := m.planner.CalculateFlightPath(start, m.cfg.SimAheadTime, PlanOptions{})
	filtered := FilterFlightPath(path, m.cfg.ClientDataReductionFactor)

	heli := &Helicopter{
		ID:                 id,
		SpawnTime:          m.now().UnixMilli(),
		SpawnPoint:         spawn,
		FlightPath:         path,
		FilteredFlightPath: filtered,
		Health:             m.cfg.BaseHealth,
	}
	m.helicopters[id] = heli

	payload := SpawnHelicopterPayload{
		ID:         id,
		SpawnTime:  heli.SpawnTime,
		SpawnPoint: spawn,
		FlightPath: filtered,
	}
	m.mu.Unlock()

	m.log.Debugf("spawned helicopter %d with %d path points (%d filtered)", id, len(path), len(filtered))
	m.broadcaster.Emit(m.gameID, EventSpawnHelicopter, payload)
	return id, true
}

// randomSpawnPoint picks a point on a random map edge, spawnDistance beyond
// it at the fixed height, facing inward. Yaw uses the client renderer's
// forward=-Z convention: facing direction d needs yaw atan2(d.x,d.z)+π.
func (m *HelicopterManager) randomSpawnPoint() SpawnPoint {
	return m.spawnPointOnEdge(m.rng.Intn(4), (m.rng.Float64()*2-1)*m.world.MapSize/2)
}

// Map edges for spawn placement
const (
	EdgeNorth = iota
	EdgeSouth
	EdgeEast
	EdgeWest
)

func (m *HelicopterManager) spawnPointOnEdge(edge int, along float64) SpawnPoint {
	beyond := m.world.MapSize/2 + m.cfg.SpawnDistance

	var pos, inward Vector3
	switch edge {
	case EdgeNorth:
		pos = Vector3{X: along, Y: m.cfg.FixedHeight, Z: -beyond}
		inward = Vector3{Z: 1}
	case EdgeSouth:
		pos = Vector3{X: along, Y: m.cfg.FixedHeight, Z: beyond}
		inward = Vector3{Z: -1}
	case EdgeEast:
		pos = Vector3{X: beyond, Y: m.cfg.FixedHeight, Z: along}
		inward = Vector3{X: -1}
	default:
		pos = Vector3{X: -beyond, Y: m.cfg.FixedHeight, Z: along}
		inward = Vector3{X: 1}
	}

	yaw := math.Atan2(inward.X, inward.Z) + math.Pi
	return SpawnPoint{Position: pos, Rotation: EulerRotation{Y: wrapAngle(yaw)}}
}

// Remove deletes a helicopter from the active set and broadcasts the
// removal. Unknown ids are a no-op: the helicopter may already have been
// reaped between a caller's snapshot and this call.
func (m *HelicopterManager) Remove(id int) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	_, ok := m.helicopters[id]
	if ok {
		delete(m.helicopters, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	m.log.Debugf("removed helicopter %d", id)
	m.broadcaster.Emit(m.gameID, EventRemoveHelicopter, RemoveHelicopterPayload{ID: id})
}

// Sweep queries every helicopter's position at the current time and reaps
// those parked on their exit point, spawning a replacement for each.
func (m *HelicopterManager) Sweep() {
	now := m.now()

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(m.helicopters))
	for id := range m.helicopters {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		sample, ok := m.PositionAt(id, now)
		if !ok || !sample.IsExitPoint {
			continue
		}
		m.Remove(id)
		m.Spawn()
	}
}

// PositionAt answers "where is helicopter id at absolute time at". It
// returns false for unknown ids and for times before the spawn. Beyond the
// stored path, a path already terminated by an exit point answers with that
// terminal point verbatim; otherwise the path is extended in place by a
// fresh planning call and the query is re-answered against the longer path.
//
// The bracketing index is computed by integer division of the elapsed time
// by the fixed timestep. This is only correct while paths step uniformly;
// introducing a variable timestep requires switching to a binary search
// over the Time fields.
func (m *HelicopterManager) PositionAt(id int, at time.Time) (PathSample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	heli, ok := m.helicopters[id]
	if !ok {
		return PathSample{}, false
	}

	elapsed := float64(at.UnixMilli()-heli.SpawnTime) / 1000
	if elapsed < 0 {
		return PathSample{}, false
	}

	for extensions := 0; ; extensions++ {
		path := heli.FlightPath
		idx := int(elapsed / m.cfg.TimeStep)

		if idx+1 < len(path) {
			p0 := path[idx]
			p1 := path[idx+1]
			span := p1.Time - p0.Time
			t := 0.0
			if span > 0 {
				t = (elapsed - p0.Time) / span
			}
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			return PathSample{
				Position: lerpVector(p0.Position, p1.Position, t),
				Rotation: lerpRotation(p0.Rotation, p1.Rotation, t),
			}, true
		}

		last := path[len(path)-1]
		if last.IsExitPoint || extensions >= maxPathExtensions {
			return PathSample{
				Position:    last.Position,
				Rotation:    last.Rotation,
				IsExitPoint: last.IsExitPoint,
			}, true
		}

		m.extendPathLocked(heli)
	}
}

// extendPathLocked continues a helicopter's path from its last point until
// an exit point is reached, splicing the continuation onto both the full
// and the filtered paths. The continuation's duplicate boundary point is
// dropped so times stay strictly increasing across the splice.
func (m *HelicopterManager) extendPathLocked(heli *Helicopter) {
	last := heli.FlightPath[len(heli.FlightPath)-1]

	segment := m.planner.CalculateFlightPath(PathPoint{
		Position: last.Position,
		Rotation: last.Rotation,
	}, m.cfg.SimAheadTime, PlanOptions{ContinueUntilExit: true})

	if len(segment) < 2 {
		return
	}

	continuation := segment[1:]
	for i := range continuation {
		continuation[i].Time += last.Time
	}

	heli.FlightPath = append(heli.FlightPath, continuation...)
	heli.FilteredFlightPath = append(heli.FilteredFlightPath,
		FilterFlightPath(continuation, m.cfg.ClientDataReductionFactor)...)

	m.log.Debugf("extended helicopter %d path by %d points to t=%.1fs",
		heli.ID, len(continuation), heli.FlightPath[len(heli.FlightPath)-1].Time)
}

// ApplyDamage subtracts damage from a helicopter's health, clamped at
// zero, marks it damaged, and broadcasts the new health. Destruction is
// the caller's responsibility: seeing IsDestroyed, the caller decides when
// to remove the helicopter from the simulation.
func (m *HelicopterManager) ApplyDamage(id, damage int) (DamageResult, bool) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return DamageResult{}, false
	}
	heli, ok := m.helicopters[id]
	if !ok {
		m.mu.Unlock()
		return DamageResult{}, false
	}

	heli.Health -= damage
	if heli.Health < 0 {
		heli.Health = 0
	}
	heli.Damaged = true

	result := DamageResult{Health: heli.Health, IsDestroyed: heli.Health == 0}
	payload := HelicopterDamagedPayload{ID: id, Health: heli.Health}
	m.mu.Unlock()

	m.broadcaster.Emit(m.gameID, EventHelicopterDamaged, payload)
	return result, true
}

// HelicoptersWithin returns the ids of helicopters within radius of center
// at the given absolute time. Used for authoritative blast checks.
func (m *HelicopterManager) HelicoptersWithin(at time.Time, center Vector3, radius float64) []int {
	m.mu.Lock()
	ids := make([]int, 0, len(m.helicopters))
	for id := range m.helicopters {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var hits []int
	for _, id := range ids {
		sample, ok := m.PositionAt(id, at)
		if !ok {
			continue
		}
		if distance3D(sample.Position, center) <= radius {
			hits = append(hits, id)
		}
	}
	return hits
}

// Count returns the current active population
func (m *HelicopterManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.helicopters)
}

// Snapshot builds the late-joiner payload: every active helicopter with
// its filtered path, plus the server time so clients can align timelines.
// The returned helicopters are detached copies; callers may marshal them
// while the manager keeps mutating the live entities under its lock.
func (m *HelicopterManager) Snapshot() ExistingHelicoptersPayload {
	m.mu.Lock()
	defer m.mu.Unlock()

	helis := make([]*Helicopter, 0, len(m.helicopters))
	for _, heli := range m.helicopters {
		clone := *heli
		clone.FlightPath = append([]PathPoint(nil), heli.FlightPath...)
		clone.FilteredFlightPath = append([]PathPoint(nil), heli.FilteredFlightPath...)
		helis = append(helis, &clone)
	}

	return ExistingHelicoptersPayload{
		ServerTime:  m.now().UnixMilli(),
		Helicopters: helis,
	}
}

// Dispose is the terminal operation: it stops both loops, force-removes
// every helicopter, and broadcasts the manager-disposed event. Safe to
// call from any state; every call after the first is a no-op.
func (m *HelicopterManager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	m.disposed = true
	ids := make([]int, 0, len(m.helicopters))
	for id := range m.helicopters {
		ids = append(ids, id)
	}
	m.helicopters = make(map[int]*Helicopter)
	m.mu.Unlock()

	m.Stop()

	for _, id := range ids {
		m.broadcaster.Emit(m.gameID, EventRemoveHelicopter, RemoveHelicopterPayload{ID: id})
	}

	m.log.Infof("disposed helicopter manager for game %s", m.gameID)
	m.broadcaster.Emit(m.gameID, EventManagerDisposed, ManagerDisposedPayload{GameID: m.gameID})
}
