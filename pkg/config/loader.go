package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*GameConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Start from defaults so a partial file only overrides what it names
	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*GameConfig, error) {
	var config *GameConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			fmt.Printf("Warning: Could not load config from %s: %v\n", path, err)
			config = nil
		}
	}

	if config == nil {
		defaultPaths := []string{
			"shellstorm.yaml",
			"config.yaml",
			filepath.Join("cmd", "shellstorm", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				config, err = LoadConfig(p)
				if err == nil {
					fmt.Printf("Loaded config from: %s\n", p)
					break
				}
			}
		}
	}

	if config == nil {
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *GameConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithEnvironment merges config with environment variables
func MergeWithEnvironment(config *GameConfig) {
	if addr := os.Getenv("SHELLSTORM_LISTEN_ADDR"); addr != "" {
		config.Server.ListenAddr = addr
	}

	if interval := os.Getenv("SHELLSTORM_SPAWN_INTERVAL"); interval != "" {
		if duration, err := time.ParseDuration(interval); err == nil && duration > 0 {
			config.Server.SpawnInterval = duration
		}
	}

	if logLevel := os.Getenv("SHELLSTORM_LOG_LEVEL"); logLevel != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		for _, valid := range validLevels {
			if strings.ToLower(logLevel) == valid {
				config.Server.LogLevel = valid
				break
			}
		}
	}

	if mapSize := os.Getenv("SHELLSTORM_MAP_SIZE"); mapSize != "" {
		if size, err := strconv.ParseFloat(mapSize, 64); err == nil && size > 0 {
			config.World.MapSize = size
		}
	}

	if seed := os.Getenv("SHELLSTORM_TERRAIN_SEED"); seed != "" {
		if value, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.World.TerrainSeed = value
		}
	}

	if maxHelis := os.Getenv("SHELLSTORM_MAX_HELICOPTERS"); maxHelis != "" {
		if count, err := strconv.Atoi(maxHelis); err == nil && count > 0 {
			config.Helicopters.MaxHelicopters = count
		}
	}

	if simAhead := os.Getenv("SHELLSTORM_SIM_AHEAD_TIME"); simAhead != "" {
		if seconds, err := strconv.ParseFloat(simAhead, 64); err == nil && seconds > 0 {
			config.Helicopters.SimAheadTime = seconds
		}
	}

	if baseHealth := os.Getenv("SHELLSTORM_BASE_HEALTH"); baseHealth != "" {
		if health, err := strconv.Atoi(baseHealth); err == nil && health > 0 {
			config.Helicopters.BaseHealth = health
		}
	}

	if reduction := os.Getenv("SHELLSTORM_DATA_REDUCTION_FACTOR"); reduction != "" {
		if factor, err := strconv.Atoi(reduction); err == nil && factor >= 1 {
			config.Helicopters.ClientDataReductionFactor = factor
		}
	}
}
