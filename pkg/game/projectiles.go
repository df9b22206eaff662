package game

import (
	"sync"
	"time"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/terrain"
)

// boundsMargin is how far past the map edge a projectile may travel before
// its flight is cut off without an impact
const boundsMargin = 50.0

// ProjectileSimulator resolves shots server-side. A fired projectile is
// simulated to completion immediately: the full ballistic arc, terrain
// impact, and any helicopter hits are computed in one call, damage is
// applied, and clients receive the complete timeline to replay.
type ProjectileSimulator struct {
	mu          sync.Mutex
	gameID      string
	cfg         config.ProjectileConfig
	timeStep    float64
	world       config.WorldConfig
	terrain     terrain.HeightOracle
	manager     *HelicopterManager
	broadcaster Broadcaster
	log         logger.Logger
	now         func() time.Time
	nextID      int
}

// NewProjectileSimulator creates a simulator bound to one game's
// helicopter manager
func NewProjectileSimulator(gameID string, cfg config.ProjectileConfig, timeStep float64, world config.WorldConfig, oracle terrain.HeightOracle, manager *HelicopterManager, broadcaster Broadcaster) *ProjectileSimulator {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &ProjectileSimulator{
		gameID:      gameID,
		cfg:         cfg,
		timeStep:    timeStep,
		world:       world,
		terrain:     oracle,
		manager:     manager,
		broadcaster: broadcaster,
		log:         logger.WithPrefix("projectiles"),
		now:         time.Now,
	}
}

// ShotResult is the authoritative outcome of one shot
type ShotResult struct {
	ProjectileID int
	Impact       *Vector3 // nil when the projectile left the world
	HitIDs       []int
	Destroyed    []int
}

// Fire simulates one projectile from origin with the given initial
// velocity, applies blast damage to every helicopter inside the blast
// radius at impact time, and broadcasts the down-sampled timeline. The
// returned result reflects the state after damage was applied.
func (s *ProjectileSimulator) Fire(origin, velocity Vector3) ShotResult {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	firedAt := s.now()
	pos := origin
	vel := velocity
	dt := s.timeStep
	t := 0.0

	timeline := []TimelineEvent{{
		Type:         TimelineSpawn,
		ProjectileID: id,
		Time:         0,
		Position:     pos,
	}}

	var impact *Vector3
	half := s.world.MapSize / 2

	for t < s.cfg.MaxFlightTime {
		vel.Y -= s.cfg.Gravity * dt
		pos = pos.add(vel.scale(dt))
		t += dt

		if pos.Y <= s.terrain.HeightAt(pos.X, pos.Z) {
			pos.Y = s.terrain.HeightAt(pos.X, pos.Z)
			hit := pos
			impact = &hit
			timeline = append(timeline, TimelineEvent{
				Type:         TimelineImpact,
				ProjectileID: id,
				Time:         t,
				Position:     pos,
			})
			break
		}

		if pos.X < -half-boundsMargin || pos.X > half+boundsMargin ||
			pos.Z < -half-boundsMargin || pos.Z > half+boundsMargin {
			break
		}

		timeline = append(timeline, TimelineEvent{
			Type:         TimelineMove,
			ProjectileID: id,
			Time:         t,
			Position:     pos,
		})
	}

	result := ShotResult{ProjectileID: id, Impact: impact}

	if impact != nil && s.manager != nil {
		impactTime := firedAt.Add(time.Duration(t * float64(time.Second)))
		result.HitIDs = s.manager.HelicoptersWithin(impactTime, *impact, s.cfg.BlastRadius)
		for _, hitID := range result.HitIDs {
			dmg, ok := s.manager.ApplyDamage(hitID, s.cfg.ImpactDamage)
			if ok && dmg.IsDestroyed {
				result.Destroyed = append(result.Destroyed, hitID)
			}
		}
	}

	factor := 1
	if s.manager != nil {
		factor = s.manager.cfg.ClientDataReductionFactor
	}

	s.log.Debugf("projectile %d flew %.1fs, %d hits", id, t, len(result.HitIDs))
	s.broadcaster.Emit(s.gameID, EventProjectileFired, ProjectileFiredPayload{
		ProjectileID: id,
		FiredAt:      firedAt.UnixMilli(),
		Timeline:     FilterTimeline(timeline, factor),
	})

	return result
}
