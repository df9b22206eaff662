package helisoak

import (
	"fmt"
	"time"
)

// Config holds the configuration for the helicopter soak scenario
type Config struct {
	Duration      time.Duration
	QueryInterval time.Duration
	Seed          int
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	config := &Config{
		Duration:      10 * time.Minute,
		QueryInterval: time.Second,
		Seed:          1,
	}

	if v, ok := params["duration"]; ok {
		switch val := v.(type) {
		case time.Duration:
			config.Duration = val
		case string:
			duration, err := time.ParseDuration(val)
			if err != nil {
				return nil, fmt.Errorf("invalid duration format: %w", err)
			}
			config.Duration = duration
		default:
			return nil, fmt.Errorf("duration must be a duration string")
		}
	}
	if config.Duration < time.Second {
		return nil, fmt.Errorf("duration must be at least 1 second")
	}

	if v, ok := params["query_interval"]; ok {
		switch val := v.(type) {
		case time.Duration:
			config.QueryInterval = val
		case string:
			interval, err := time.ParseDuration(val)
			if err != nil {
				return nil, fmt.Errorf("invalid query_interval format: %w", err)
			}
			config.QueryInterval = interval
		default:
			return nil, fmt.Errorf("query_interval must be a duration string")
		}
	}
	if config.QueryInterval < 100*time.Millisecond {
		return nil, fmt.Errorf("query_interval must be at least 100ms")
	}

	if v, ok := params["seed"]; ok {
		switch val := v.(type) {
		case int:
			config.Seed = val
		case float64:
			config.Seed = int(val)
		default:
			return nil, fmt.Errorf("seed must be an integer")
		}
	}

	return config, nil
}
