package scenario

import (
	"context"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/reporting"
)

// Environment is what a scenario runs against: the game configuration to
// build sessions from and a reporter for events and metrics.
type Environment struct {
	Config   *config.GameConfig
	Reporter *reporting.ScenarioLogger
}

// Scenario defines the interface all offline scenarios implement
type Scenario interface {
	// Name returns the name of the scenario
	Name() string

	// Description returns a brief description of what the scenario does
	Description() string

	// Parameters returns the prompts the runner asks before Configure
	Parameters() []Parameter

	// Configure sets up the scenario with the provided parameters
	Configure(params map[string]interface{}) error

	// Run executes the scenario against the provided environment
	Run(ctx context.Context, env *Environment) error

	// Stop gracefully shuts down the scenario
	Stop() error
}
