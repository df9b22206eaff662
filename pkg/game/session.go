package game

import (
	"github.com/google/uuid"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/terrain"
)

// Session bundles everything one game room owns: its terrain, its
// helicopter population, and its projectile resolver. Sessions are
// identified by a generated UUID which doubles as the broadcast room id.
type Session struct {
	ID          string
	Config      *config.GameConfig
	Terrain     terrain.HeightOracle
	Helicopters *HelicopterManager
	Projectiles *ProjectileSimulator

	log logger.Logger
}

// NewSession creates a game session with a fresh room id
func NewSession(cfg *config.GameConfig, broadcaster Broadcaster, opts ...ManagerOption) *Session {
	id := uuid.NewString()
	oracle := terrain.NewHeightfield(cfg.World.TerrainSeed)

	manager := NewHelicopterManager(id, cfg.Helicopters, cfg.World, oracle, broadcaster, opts...)
	projectiles := NewProjectileSimulator(id, cfg.Projectiles, cfg.Helicopters.TimeStep, cfg.World, oracle, manager, broadcaster)

	return &Session{
		ID:          id,
		Config:      cfg,
		Terrain:     oracle,
		Helicopters: manager,
		Projectiles: projectiles,
		log:         logger.WithField("game", id),
	}
}

// Start begins helicopter spawning for this session
func (s *Session) Start() {
	s.log.Infof("session starting, spawn interval %v", s.Config.Server.SpawnInterval)
	s.Helicopters.Start(s.Config.Server.SpawnInterval)
}

// Close tears the session down, disposing the helicopter population
func (s *Session) Close() {
	s.Helicopters.Dispose()
	s.log.Info("session closed")
}
