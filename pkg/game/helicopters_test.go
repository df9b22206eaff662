package game

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/terrain"
)

type recordedEvent struct {
	GameID  string
	Event   string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingBroadcaster) Emit(gameID, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{GameID: gameID, Event: event, Payload: payload})
}

func (r *recordingBroadcaster) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

var testEpoch = time.Unix(1_700_000_000, 0)

func newTestManager(t *testing.T, mutate func(*config.GameConfig)) (*HelicopterManager, *recordingBroadcaster) {
	t.Helper()
	cfg := config.GetDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	rec := &recordingBroadcaster{}
	m := NewHelicopterManager("test-game", cfg.Helicopters, cfg.World, terrain.Flat{}, rec,
		WithClock(func() time.Time { return testEpoch }), WithRandSource(1))
	return m, rec
}

func TestSpawnPointFacesInward(t *testing.T) {
	m, _ := newTestManager(t, nil)

	// North edge, centered: 90 half size + 100 spawn distance beyond
	sp := m.spawnPointOnEdge(EdgeNorth, 0)

	if sp.Position.Z != -190 {
		t.Errorf("Expected north spawn at z=-190, got %f", sp.Position.Z)
	}
	if sp.Position.Y != 60 {
		t.Errorf("Expected spawn at fixed height 60, got %f", sp.Position.Y)
	}
	if math.Abs(math.Abs(sp.Rotation.Y)-math.Pi) > 1e-9 {
		t.Errorf("Expected inward-facing yaw of magnitude pi at north edge, got %f", sp.Rotation.Y)
	}

	south := m.spawnPointOnEdge(EdgeSouth, 10)
	if south.Position.Z != 190 {
		t.Errorf("Expected south spawn at z=190, got %f", south.Position.Z)
	}
	if math.Abs(south.Rotation.Y) > 1e-9 {
		t.Errorf("Expected inward-facing yaw 0 at south edge, got %f", south.Rotation.Y)
	}
}

func TestSpawnRespectsCap(t *testing.T) {
	m, rec := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.MaxHelicopters = 2
		c.Helicopters.SimAheadTime = 5
	})

	if _, ok := m.Spawn(); !ok {
		t.Fatal("First spawn failed")
	}
	if _, ok := m.Spawn(); !ok {
		t.Fatal("Second spawn failed")
	}
	if _, ok := m.Spawn(); ok {
		t.Error("Third spawn should fail at cap 2")
	}

	if got := rec.count(EventSpawnHelicopter); got != 2 {
		t.Errorf("Expected 2 spawn broadcasts, got %d", got)
	}
	if m.Count() != 2 {
		t.Errorf("Expected population 2, got %d", m.Count())
	}
}

func TestSpawnBroadcastCarriesFilteredPath(t *testing.T) {
	m, rec := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	id, ok := m.Spawn()
	if !ok {
		t.Fatal("Spawn failed")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	payload, ok := rec.events[0].Payload.(SpawnHelicopterPayload)
	if !ok {
		t.Fatalf("Unexpected payload type %T", rec.events[0].Payload)
	}

	if payload.ID != id {
		t.Errorf("Payload id %d does not match spawned id %d", payload.ID, id)
	}

	full := m.helicopters[id].FlightPath
	if len(payload.FlightPath) >= len(full) {
		t.Errorf("Broadcast path not down-sampled: %d of %d points", len(payload.FlightPath), len(full))
	}
	if payload.FlightPath[0] != full[0] {
		t.Error("Broadcast path lost the first point")
	}
	if payload.FlightPath[len(payload.FlightPath)-1] != full[len(full)-1] {
		t.Error("Broadcast path lost the last point")
	}
}

func TestPositionBeforeSpawnMisses(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	id, _ := m.Spawn()

	if _, ok := m.PositionAt(id, testEpoch.Add(-time.Second)); ok {
		t.Error("Query before spawn time should miss")
	}

	if _, ok := m.PositionAt(999, testEpoch); ok {
		t.Error("Query for unknown id should miss")
	}
}

func TestPositionInterpolates(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	id, _ := m.Spawn()
	path := m.helicopters[id].FlightPath

	sample, ok := m.PositionAt(id, testEpoch.Add(50*time.Millisecond))
	if !ok {
		t.Fatal("Query within the path missed")
	}

	want := lerpVector(path[0].Position, path[1].Position, 0.5)
	if math.Abs(sample.Position.X-want.X) > 1e-9 ||
		math.Abs(sample.Position.Y-want.Y) > 1e-9 ||
		math.Abs(sample.Position.Z-want.Z) > 1e-9 {
		t.Errorf("Expected midpoint %v, got %v", want, sample.Position)
	}
	if sample.IsExitPoint {
		t.Error("Mid-path sample should not be an exit point")
	}
}

func TestPositionBeyondExitReturnsTerminal(t *testing.T) {
	m, _ := newTestManager(t, nil)

	terminal := Vector3{X: 110, Y: 60, Z: 5}
	m.nextID = 1
	m.helicopters[1] = &Helicopter{
		ID:        1,
		SpawnTime: testEpoch.UnixMilli(),
		FlightPath: []PathPoint{
			{Time: 0, Position: Vector3{Y: 60}},
			{Time: 0.1, Position: terminal, IsExitPoint: true},
		},
		Health: 100,
	}

	sample, ok := m.PositionAt(1, testEpoch.Add(time.Hour))
	if !ok {
		t.Fatal("Query beyond an exit-terminated path missed")
	}
	if !sample.IsExitPoint {
		t.Error("Expected terminal sample to be flagged as exit point")
	}
	if sample.Position != terminal {
		t.Errorf("Expected terminal position %v returned verbatim, got %v", terminal, sample.Position)
	}
}

func TestPositionExtendsPathLazily(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	// A short path that has not reached an exit yet
	id := 1
	m.nextID = 1
	short := []PathPoint{
		{Time: 0, Position: Vector3{Y: 60}, Rotation: EulerRotation{Y: math.Pi}},
		{Time: 0.1, Position: Vector3{Y: 60, Z: 3}, Rotation: EulerRotation{Y: math.Pi}},
	}
	m.helicopters[id] = &Helicopter{
		ID:                 id,
		SpawnTime:          testEpoch.UnixMilli(),
		FlightPath:         short,
		FilteredFlightPath: FilterFlightPath(short, 2),
		Health:             100,
	}
	initialLen := len(short)

	if _, ok := m.PositionAt(id, testEpoch.Add(30*time.Second)); !ok {
		t.Fatal("Query beyond the planned horizon missed")
	}

	path := m.helicopters[id].FlightPath
	if len(path) <= initialLen {
		t.Fatalf("Path was not extended: still %d points", len(path))
	}

	for i := 1; i < len(path); i++ {
		if path[i].Time <= path[i-1].Time {
			t.Fatalf("Times not strictly increasing across the splice at index %d: %f then %f",
				i, path[i-1].Time, path[i].Time)
		}
	}

	// A continued path terminates with exactly one exit point, at the end
	exits := 0
	for i, point := range path {
		if point.IsExitPoint {
			exits++
			if i != len(path)-1 {
				t.Errorf("Exit point at index %d, not last", i)
			}
		}
	}
	if exits != 1 {
		t.Errorf("Expected exactly one exit point after extension, got %d", exits)
	}

	// Filtered path was extended too and keeps the new terminal point
	filtered := m.helicopters[id].FilteredFlightPath
	if filtered[len(filtered)-1] != path[len(path)-1] {
		t.Error("Filtered path does not end at the extended terminal point")
	}
}

func TestApplyDamage(t *testing.T) {
	m, rec := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	id, _ := m.Spawn()

	result, ok := m.ApplyDamage(id, 40)
	if !ok {
		t.Fatal("Damage to a live helicopter failed")
	}
	if result.Health != 60 || result.IsDestroyed {
		t.Errorf("Expected health 60 and not destroyed, got %+v", result)
	}
	if !m.helicopters[id].Damaged {
		t.Error("Damaged flag not set")
	}

	result, _ = m.ApplyDamage(id, 100)
	if result.Health != 0 {
		t.Errorf("Health should clamp at 0, got %d", result.Health)
	}
	if !result.IsDestroyed {
		t.Error("Zero health should report destroyed")
	}

	// Destruction does not remove the helicopter; that is the caller's call
	if m.Count() != 1 {
		t.Errorf("Destroyed helicopter should remain until removed, count %d", m.Count())
	}

	if got := rec.count(EventHelicopterDamaged); got != 2 {
		t.Errorf("Expected 2 damage broadcasts, got %d", got)
	}

	if _, ok := m.ApplyDamage(999, 10); ok {
		t.Error("Damage to unknown id should fail")
	}
}

func TestRemoveUnknownIsSilent(t *testing.T) {
	m, rec := newTestManager(t, nil)

	m.Remove(42)

	if got := rec.count(EventRemoveHelicopter); got != 0 {
		t.Errorf("Expected no removal broadcast for unknown id, got %d", got)
	}
}

func TestSweepReapsExitedHelicopters(t *testing.T) {
	m, rec := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.MaxHelicopters = 1
		c.Helicopters.SimAheadTime = 5
	})

	// Parked on its exit point one minute ago
	m.nextID = 1
	m.helicopters[1] = &Helicopter{
		ID:        1,
		SpawnTime: testEpoch.Add(-time.Minute).UnixMilli(),
		FlightPath: []PathPoint{
			{Time: 0, Position: Vector3{Y: 60}},
			{Time: 0.1, Position: Vector3{X: 110, Y: 60}, IsExitPoint: true},
		},
		Health: 100,
	}

	m.Sweep()

	if _, alive := m.helicopters[1]; alive {
		t.Error("Exited helicopter not reaped by sweep")
	}
	if m.Count() != 1 {
		t.Errorf("Expected a replacement spawn, count %d", m.Count())
	}
	if got := rec.count(EventRemoveHelicopter); got != 1 {
		t.Errorf("Expected 1 removal broadcast, got %d", got)
	}
	if got := rec.count(EventSpawnHelicopter); got != 1 {
		t.Errorf("Expected 1 spawn broadcast, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.MaxHelicopters = 2
		c.Helicopters.SimAheadTime = 5
	})

	m.Spawn()
	m.Spawn()

	snap := m.Snapshot()
	if len(snap.Helicopters) != 2 {
		t.Errorf("Expected 2 helicopters in snapshot, got %d", len(snap.Helicopters))
	}
	if snap.ServerTime != testEpoch.UnixMilli() {
		t.Errorf("Expected server time %d, got %d", testEpoch.UnixMilli(), snap.ServerTime)
	}
}

func TestSnapshotDetachedFromLiveEntities(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.SimAheadTime = 5
	})

	// A short path with no exit yet, so a far query is guaranteed to
	// extend it
	id := 1
	m.nextID = 1
	short := []PathPoint{
		{Time: 0, Position: Vector3{Y: 60}, Rotation: EulerRotation{Y: math.Pi}},
		{Time: 0.1, Position: Vector3{Y: 60, Z: 3}, Rotation: EulerRotation{Y: math.Pi}},
	}
	m.helicopters[id] = &Helicopter{
		ID:                 id,
		SpawnTime:          testEpoch.UnixMilli(),
		FlightPath:         short,
		FilteredFlightPath: FilterFlightPath(short, 2),
		Health:             100,
	}

	snap := m.Snapshot()
	if len(snap.Helicopters) != 1 {
		t.Fatalf("Expected 1 helicopter in snapshot, got %d", len(snap.Helicopters))
	}
	taken := snap.Helicopters[0]
	healthBefore := taken.Health
	filteredBefore := len(taken.FilteredFlightPath)

	// Mutate the live entity: damage plus a query beyond the horizon that
	// rewrites the filtered path
	m.ApplyDamage(id, 40)
	if _, ok := m.PositionAt(id, testEpoch.Add(30*time.Second)); !ok {
		t.Fatal("Query beyond the planned horizon missed")
	}
	if len(m.helicopters[id].FilteredFlightPath) <= filteredBefore {
		t.Fatal("Live filtered path was not extended")
	}

	if taken.Health != healthBefore {
		t.Errorf("Snapshot health changed from %d to %d after live damage", healthBefore, taken.Health)
	}
	if len(taken.FilteredFlightPath) != filteredBefore {
		t.Errorf("Snapshot filtered path grew from %d to %d after live extension",
			filteredBefore, len(taken.FilteredFlightPath))
	}

	// Writes through the snapshot must not reach the manager either
	taken.Health = 1
	taken.FilteredFlightPath[0].Position.X = 9999
	if m.helicopters[id].Health == 1 {
		t.Error("Snapshot write reached the live entity's health")
	}
	if m.helicopters[id].FilteredFlightPath[0].Position.X == 9999 {
		t.Error("Snapshot write reached the live entity's path")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	m, rec := newTestManager(t, func(c *config.GameConfig) {
		c.Helicopters.MaxHelicopters = 2
		c.Helicopters.SimAheadTime = 5
	})

	m.Spawn()
	m.Spawn()

	m.Dispose()
	m.Dispose()

	if got := rec.count(EventManagerDisposed); got != 1 {
		t.Errorf("Expected exactly 1 disposal broadcast, got %d", got)
	}
	if got := rec.count(EventRemoveHelicopter); got != 2 {
		t.Errorf("Expected 2 removal broadcasts, got %d", got)
	}

	if _, ok := m.Spawn(); ok {
		t.Error("Spawn after dispose should fail")
	}
	if _, ok := m.ApplyDamage(1, 10); ok {
		t.Error("Damage after dispose should fail")
	}
}
