package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	// Test validation
	if err := config.Validate(); err != nil {
		t.Fatalf("Default config validation failed: %v", err)
	}

	if config.Server.ListenAddr != ":8090" {
		t.Errorf("Expected listen address ':8090', got '%s'", config.Server.ListenAddr)
	}

	if config.Server.SpawnInterval != 5*time.Second {
		t.Errorf("Expected spawn interval 5s, got %v", config.Server.SpawnInterval)
	}

	if config.World.MapSize != 180 {
		t.Errorf("Expected map size 180, got %f", config.World.MapSize)
	}

	if config.Helicopters.TimeStep != 0.1 {
		t.Errorf("Expected time step 0.1, got %f", config.Helicopters.TimeStep)
	}

	if config.Helicopters.ClientDataReductionFactor != 2 {
		t.Errorf("Expected data reduction factor 2, got %d", config.Helicopters.ClientDataReductionFactor)
	}

	if config.Helicopters.MaxHelicopters != 3 {
		t.Errorf("Expected max helicopters 3, got %d", config.Helicopters.MaxHelicopters)
	}

	if config.Helicopters.SimAheadTime != 120 {
		t.Errorf("Expected sim ahead time 120s, got %f", config.Helicopters.SimAheadTime)
	}

	if config.Projectiles.ImpactDamage != 25 {
		t.Errorf("Expected impact damage 25, got %d", config.Projectiles.ImpactDamage)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameConfig)
	}{
		{"zero time step", func(c *GameConfig) { c.Helicopters.TimeStep = 0 }},
		{"negative min height", func(c *GameConfig) { c.Helicopters.MinHeight = -1 }},
		{"min speed above max", func(c *GameConfig) { c.Helicopters.MinSpeed = 50 }},
		{"zero max helicopters", func(c *GameConfig) { c.Helicopters.MaxHelicopters = 0 }},
		{"zero reduction factor", func(c *GameConfig) { c.Helicopters.ClientDataReductionFactor = 0 }},
		{"zero map size", func(c *GameConfig) { c.World.MapSize = 0 }},
		{"zero spawn interval", func(c *GameConfig) { c.Server.SpawnInterval = 0 }},
		{"zero gravity", func(c *GameConfig) { c.Projectiles.Gravity = 0 }},
		{"zero impact damage", func(c *GameConfig) { c.Projectiles.ImpactDamage = 0 }},
		{"negative impact damage", func(c *GameConfig) { c.Projectiles.ImpactDamage = -5 }},
		{"zero max waypoints", func(c *GameConfig) { c.Helicopters.MaxWaypoints = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := []byte(`
server:
  listen_addr: ":9999"
helicopters:
  max_helicopters: 7
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.ListenAddr != ":9999" {
		t.Errorf("Expected listen address ':9999', got '%s'", config.Server.ListenAddr)
	}

	if config.Helicopters.MaxHelicopters != 7 {
		t.Errorf("Expected max helicopters 7, got %d", config.Helicopters.MaxHelicopters)
	}

	// Unnamed fields keep their defaults
	if config.World.MapSize != 180 {
		t.Errorf("Expected default map size 180, got %f", config.World.MapSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	config := GetDefaultConfig()
	config.Helicopters.MaxSpeed = 45

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Helicopters.MaxSpeed != 45 {
		t.Errorf("Expected max speed 45 after reload, got %f", reloaded.Helicopters.MaxSpeed)
	}
}

func TestMergeWithEnvironment(t *testing.T) {
	t.Setenv("SHELLSTORM_LISTEN_ADDR", ":7777")
	t.Setenv("SHELLSTORM_MAX_HELICOPTERS", "9")
	t.Setenv("SHELLSTORM_SPAWN_INTERVAL", "30s")

	config := GetDefaultConfig()
	MergeWithEnvironment(config)

	if config.Server.ListenAddr != ":7777" {
		t.Errorf("Expected listen address ':7777', got '%s'", config.Server.ListenAddr)
	}

	if config.Helicopters.MaxHelicopters != 9 {
		t.Errorf("Expected max helicopters 9, got %d", config.Helicopters.MaxHelicopters)
	}

	if config.Server.SpawnInterval != 30*time.Second {
		t.Errorf("Expected spawn interval 30s, got %v", config.Server.SpawnInterval)
	}
}
