package helisoak

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shellstorm/server/pkg/game"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/scenario"
	"github.com/shellstorm/server/pkg/terrain"
)

// Scenario soaks the helicopter manager under simulated time: it spawns a
// full population, advances a fake clock far past the planning horizon,
// and queries every helicopter each tick so the lazy path extension and
// exit sweeping are exercised continuously.
type Scenario struct {
	config   *Config
	mu       sync.Mutex
	stopChan chan struct{}
}

// NewScenario creates a new instance of the soak scenario
func NewScenario() scenario.Scenario {
	return &Scenario{
		stopChan: make(chan struct{}),
	}
}

// Name returns the scenario name
func (s *Scenario) Name() string {
	return "helicopter-soak"
}

// Description returns the scenario description
func (s *Scenario) Description() string {
	return "Runs the helicopter population under accelerated simulated time, exercising path extension and exit sweeping"
}

// Parameters returns the configurable parameters
func (s *Scenario) Parameters() []scenario.Parameter {
	return []scenario.Parameter{
		{
			Name:        "duration",
			Type:        "duration",
			Description: "Simulated time to cover",
			Default:     "10m",
		},
		{
			Name:        "query_interval",
			Type:        "duration",
			Description: "Simulated time between position queries",
			Default:     "1s",
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
	logger.Infof("Starting %s for %v of simulated time", s.Name(), s.config.Duration)

	// Simulated clock, advanced manually each tick
	var clockMu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}

	cfg := env.Config
	oracle := terrain.NewHeightfield(cfg.World.TerrainSeed)
	manager := game.NewHelicopterManager("soak", cfg.Helicopters, cfg.World, oracle, game.NopBroadcaster{},
		game.WithClock(clock), game.WithRandSource(int64(s.config.Seed)))
	defer manager.Dispose()

	// Fill the population up front; the sweep replaces exits as we go
	for {
		if _, ok := manager.Spawn(); !ok {
			break
		}
	}
	for _, heli := range manager.Snapshot().Helicopters {
		env.Reporter.LogSpawn(heli.ID, len(heli.FilteredFlightPath))
	}

	queries := 0
	elapsed := time.Duration(0)

	for elapsed < s.config.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopChan:
			logger.Info("Scenario stopped by user")
			return nil
		default:
		}

		clockMu.Lock()
		now = now.Add(s.config.QueryInterval)
		at := now
		clockMu.Unlock()
		elapsed += s.config.QueryInterval

		manager.Sweep()

		for _, heli := range manager.Snapshot().Helicopters {
			if _, ok := manager.PositionAt(heli.ID, at); ok {
				queries++
			}
		}

		env.Reporter.UpdateMetric("population", float64(manager.Count()), "helicopters")
	}

	env.Reporter.UpdateMetric("queries", float64(queries), "total")
	logger.Infof("Soak complete: %d queries over %v simulated", queries, s.config.Duration)
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
	if err := scenario.DefaultRegistry.Register("helicopter-soak", NewScenario); err != nil {
		logger.Errorf("Failed to register scenario: %v", err)
	}
}
