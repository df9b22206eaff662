package ballistics

import (
	"fmt"
)

// Config holds the configuration for the ballistics sweep scenario
type Config struct {
	Shots    int
	MinSpeed float64
	MaxSpeed float64
	Seed     int
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	config := &Config{
		Shots:    100,
		MinSpeed: 20,
		MaxSpeed: 80,
		Seed:     1,
	}

	if v, ok := params["shots"]; ok {
		switch val := v.(type) {
		case int:
			config.Shots = val
		case float64:
			config.Shots = int(val)
		default:
			return nil, fmt.Errorf("shots must be an integer")
		}
	}
	if config.Shots < 1 || config.Shots > 100000 {
		return nil, fmt.Errorf("shots must be between 1 and 100000")
	}

	if v, ok := params["min_speed"]; ok {
		switch val := v.(type) {
		case float64:
			config.MinSpeed = val
		case int:
			config.MinSpeed = float64(val)
		default:
			return nil, fmt.Errorf("min_speed must be a number")
		}
	}

	if v, ok := params["max_speed"]; ok {
		switch val := v.(type) {
		case float64:
			config.MaxSpeed = val
		case int:
			config.MaxSpeed = float64(val)
		default:
			return nil, fmt.Errorf("max_speed must be a number")
		}
	}
	if config.MinSpeed <= 0 || config.MaxSpeed <= config.MinSpeed {
		return nil, fmt.Errorf("speed range must be positive with min below max")
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
