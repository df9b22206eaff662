package config

import (
	"fmt"
	"time"
)

// GameConfig holds the complete configuration for one game session
type GameConfig struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// World geometry and terrain
	World WorldConfig `yaml:"world"`

	// Helicopter simulation parameters
	Helicopters HelicopterConfig `yaml:"helicopters"`

	// Projectile ballistics parameters
	Projectiles ProjectileConfig `yaml:"projectiles"`
}

// ServerConfig holds process-level settings
type ServerConfig struct {
	ListenAddr    string        `yaml:"listen_addr"`
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	LogLevel      string        `yaml:"log_level"`
}

// WorldConfig defines the playable area and terrain generation
type WorldConfig struct {
	// MapSize is the full side length of the square map. The playable
	// area spans [-MapSize/2, MapSize/2] on both horizontal axes.
	MapSize     float64 `yaml:"map_size"`
	TerrainSeed int64   `yaml:"terrain_seed"`
}

// HelicopterConfig defines flight planning and lifecycle parameters
type HelicopterConfig struct {
	MinHeight                 float64 `yaml:"min_height"`
	MaxSpeed                  float64 `yaml:"max_speed"`
	MinSpeed                  float64 `yaml:"min_speed"`
	MaxYawRate                float64 `yaml:"max_yaw_rate"` // rad/s
	TimeStep                  float64 `yaml:"time_step"`    // seconds
	ClientDataReductionFactor int     `yaml:"client_data_reduction_factor"`
	RaycastDistance           float64 `yaml:"raycast_distance"`
	MaxHelicopters            int     `yaml:"max_helicopters"`
	SimAheadTime              float64 `yaml:"sim_ahead_time"` // seconds
	BaseHealth                int     `yaml:"base_health"`
	SpawnDistance             float64 `yaml:"spawn_distance"`
	FixedHeight               float64 `yaml:"fixed_height"`
	MaxWaypoints              int     `yaml:"max_waypoints"`
	MaxFlightTime             float64 `yaml:"max_flight_time"` // seconds
}

// ProjectileConfig defines ballistic simulation parameters
type ProjectileConfig struct {
	Gravity       float64 `yaml:"gravity"` // units/s^2, applied downward
	BlastRadius   float64 `yaml:"blast_radius"`
	ImpactDamage  int     `yaml:"impact_damage"`
	MaxFlightTime float64 `yaml:"max_flight_time"` // seconds
}

// Validate checks if the configuration is valid
func (c *GameConfig) Validate() error {
	if c.Server.SpawnInterval <= 0 {
		return fmt.Errorf("spawn interval must be positive")
	}

	if c.World.MapSize <= 0 {
		return fmt.Errorf("map size must be positive")
	}

	h := c.Helicopters
	if h.TimeStep <= 0 {
		return fmt.Errorf("time step must be positive")
	}

	if h.MinHeight <= 0 {
		return fmt.Errorf("min height must be positive")
	}

	if h.MinSpeed <= 0 || h.MaxSpeed <= 0 {
		return fmt.Errorf("speeds must be positive")
	}

	if h.MinSpeed >= h.MaxSpeed {
		return fmt.Errorf("min speed must be less than max speed")
	}

	if h.MaxYawRate <= 0 {
		return fmt.Errorf("max yaw rate must be positive")
	}

	if h.ClientDataReductionFactor < 1 {
		return fmt.Errorf("client data reduction factor must be at least 1")
	}

	if h.MaxHelicopters < 1 {
		return fmt.Errorf("max helicopters must be at least 1")
	}

	if h.SimAheadTime <= 0 {
		return fmt.Errorf("sim ahead time must be positive")
	}

	if h.BaseHealth <= 0 {
		return fmt.Errorf("base health must be positive")
	}

	if h.MaxWaypoints < 1 {
		return fmt.Errorf("max waypoints must be at least 1")
	}

	if h.MaxFlightTime <= 0 {
		return fmt.Errorf("max flight time must be positive")
	}

	p := c.Projectiles
	if p.Gravity <= 0 {
		return fmt.Errorf("gravity must be positive")
	}

	if p.BlastRadius <= 0 {
		return fmt.Errorf("blast radius must be positive")
	}

	if p.ImpactDamage <= 0 {
		return fmt.Errorf("impact damage must be positive")
	}

	if p.MaxFlightTime <= 0 {
		return fmt.Errorf("projectile max flight time must be positive")
	}

	return nil
}

// String returns a human-readable representation of the configuration
func (c *GameConfig) String() string {
	return fmt.Sprintf(`Game Configuration:
  Listen Address: %s
  Spawn Interval: %v

World:
  Map Size: %.0f
  Terrain Seed: %d

Helicopters:
  Min Height: %.1f
  Speed Range: %.1f-%.1f
  Max Yaw Rate: %.2f rad/s
  Time Step: %.2fs
  Client Data Reduction: 1/%d
  Max Helicopters: %d
  Sim Ahead Time: %.0fs
  Base Health: %d
  Spawn Distance: %.0f
  Fixed Height: %.0f
  Max Waypoints: %d
  Max Flight Time: %.0fs

Projectiles:
  Gravity: %.1f
  Blast Radius: %.1f
  Impact Damage: %d`,
		c.Server.ListenAddr,
		c.Server.SpawnInterval,
		c.World.MapSize,
		c.World.TerrainSeed,
		c.Helicopters.MinHeight,
		c.Helicopters.MinSpeed,
		c.Helicopters.MaxSpeed,
		c.Helicopters.MaxYawRate,
		c.Helicopters.TimeStep,
		c.Helicopters.ClientDataReductionFactor,
		c.Helicopters.MaxHelicopters,
		c.Helicopters.SimAheadTime,
		c.Helicopters.BaseHealth,
		c.Helicopters.SpawnDistance,
		c.Helicopters.FixedHeight,
		c.Helicopters.MaxWaypoints,
		c.Helicopters.MaxFlightTime,
		c.Projectiles.Gravity,
		c.Projectiles.BlastRadius,
		c.Projectiles.ImpactDamage,
	)
}

// GetDefaultConfig returns the default game configuration
func GetDefaultConfig() *GameConfig {
	return &GameConfig{
		Server: ServerConfig{
			ListenAddr:    ":8090",
			SpawnInterval: 5 * time.Second,
			LogLevel:      "info",
		},

		World: WorldConfig{
			MapSize:     180,
			TerrainSeed: 1,
		},

		Helicopters: HelicopterConfig{
			MinHeight:                 20,
			MaxSpeed:                  30,
			MinSpeed:                  10,
			MaxYawRate:                0.5,
			TimeStep:                  0.1,
			ClientDataReductionFactor: 2,
			RaycastDistance:           30,
			MaxHelicopters:            3,
			SimAheadTime:              120,
			BaseHealth:                100,
			SpawnDistance:             100,
			FixedHeight:               60,
			MaxWaypoints:              5,
			MaxFlightTime:             300,
		},

		Projectiles: ProjectileConfig{
			Gravity:       20,
			BlastRadius:   10,
			ImpactDamage:  25,
			MaxFlightTime: 30,
		},
	}
}
