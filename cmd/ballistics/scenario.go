package ballistics

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/shellstorm/server/pkg/game"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/scenario"
	"github.com/shellstorm/server/pkg/terrain"
)

// Scenario fires a volley of projectiles at random elevations and speeds
// against a full helicopter population and reports hit statistics. Useful
// for tuning gravity, blast radius, and damage values.
type Scenario struct {
	config   *Config
	mu       sync.Mutex
	stopChan chan struct{}
}

// NewScenario creates a new instance of the ballistics sweep
func NewScenario() scenario.Scenario {
	return &Scenario{
		stopChan: make(chan struct{}),
	}
}

// Name returns the scenario name
func (s *Scenario) Name() string {
	return "ballistics-sweep"
}

// Description returns the scenario description
func (s *Scenario) Description() string {
	return "Fires a volley of randomized shots against a helicopter population and reports hit rates"
}

// Parameters returns the configurable parameters
func (s *Scenario) Parameters() []scenario.Parameter {
	return []scenario.Parameter{
		{
			Name:        "shots",
			Type:        "integer",
			Description: "Number of projectiles to fire",
			Default:     100,
			Min:         1,
			Max:         100000,
		},
		{
			Name:        "min_speed",
			Type:        "float",
			Description: "Minimum muzzle speed",
			Default:     20.0,
		},
		{
			Name:        "max_speed",
			Type:        "float",
			Description: "Maximum muzzle speed",
			Default:     80.0,
		},
		{
			Name:        "seed",
			Type:        "integer",
			Description: "Random seed for deterministic runs",
			Default:     1,
		},
	}
}

// Configure sets up the scenario with provided parameters
func (s *Scenario) Configure(params map[string]interface{}) error {
	config, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	s.config = config
	return nil
}

// Run executes the scenario
func (s *Scenario) Run(ctx context.Context, env *scenario.Environment) error {
	logger.Infof("Starting %s: %d shots", s.Name(), s.config.Shots)

	cfg := env.Config
	oracle := terrain.NewHeightfield(cfg.World.TerrainSeed)
	manager := game.NewHelicopterManager("sweep", cfg.Helicopters, cfg.World, oracle, game.NopBroadcaster{},
		game.WithRandSource(int64(s.config.Seed)))
	defer manager.Dispose()

	for {
		if _, ok := manager.Spawn(); !ok {
			break
		}
	}

	sim := game.NewProjectileSimulator("sweep", cfg.Projectiles, cfg.Helicopters.TimeStep,
		cfg.World, oracle, manager, game.NopBroadcaster{})

	rng := rand.New(rand.NewSource(int64(s.config.Seed)))
	impacts := 0
	hits := 0
	destroyed := 0

	for i := 0; i < s.config.Shots; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopChan:
			logger.Info("Scenario stopped by user")
			return nil
		default:
		}

		// Random azimuth and elevation from the map center
		azimuth := rng.Float64() * 2 * math.Pi
		elevation := rng.Float64() * math.Pi / 3
		speed := s.config.MinSpeed + rng.Float64()*(s.config.MaxSpeed-s.config.MinSpeed)

		origin := game.Vector3{Y: oracle.HeightAt(0, 0) + 2}
		velocity := game.Vector3{
			X: speed * math.Cos(elevation) * math.Sin(azimuth),
			Y: speed * math.Sin(elevation),
			Z: speed * math.Cos(elevation) * math.Cos(azimuth),
		}

		result := sim.Fire(origin, velocity)
		if result.Impact != nil {
			impacts++
		}
		if len(result.HitIDs) > 0 {
			hits++
			env.Reporter.LogShot(result.ProjectileID, len(result.HitIDs))
		}
		for _, id := range result.Destroyed {
			destroyed++
			env.Reporter.LogDestruction(id)
			manager.Remove(id)
			manager.Spawn()
		}
	}

	env.Reporter.UpdateMetric("impact_rate", float64(impacts)/float64(s.config.Shots)*100, "%")
	env.Reporter.UpdateMetric("hit_rate", float64(hits)/float64(s.config.Shots)*100, "%")
	env.Reporter.UpdateMetric("destroyed", float64(destroyed), "helicopters")
	logger.Infof("Sweep complete: %d/%d shots hit, %d destroyed", hits, s.config.Shots, destroyed)
	return nil
}

// Stop gracefully shuts down the scenario
func (s *Scenario) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	return nil
}

// init registers the scenario
func init() {
	if err := scenario.DefaultRegistry.Register("ballistics-sweep", NewScenario); err != nil {
		logger.Errorf("Failed to register scenario: %v", err)
	}
}
