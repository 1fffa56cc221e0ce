package supervisor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

// Config is the top-level shape of the supervisor's JSON config file:
// general, hardware, nats.
type Config struct {
	General  GeneralConfig         `json:"general"`
	Hardware HardwareConfig        `json:"hardware"`
	NATS     NATSConfig            `json:"nats"`
}

type GeneralConfig struct {
	BreweryName string `json:"brewery_name"`
	LogLevel    string `json:"log_level"`
}

type HardwareConfig struct {
	Sensors []model.SensorConfig   `json:"sensors"`
	Actors  []model.ActuatorConfig `json:"actors"`
}

type NATSConfig struct {
	BinPath    string          `json:"bin_path"`
	ServerName string          `json:"server_name"`
	Host       string          `json:"host"`
	Port       int             `json:"port"`
	HTTPPort   int             `json:"http_port"`
	User       string          `json:"user"`
	Pass       string          `json:"pass"`
	WebSocket  WebSocketConfig `json:"websocket"`
}

type WebSocketConfig struct {
	Port  int  `json:"port"`
	NoTLS bool `json:"no_tls"`
}

// Debug is derived, not read from the file: true iff log_level is "debug".
func (c *Config) Debug() bool {
	return c.General.LogLevel == "debug"
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field invariants from the external-interfaces
// design: no duplicate ids across sensors and actuators, and the broker
// binary must exist on disk.
func (c *Config) Validate() error {
	seen := make(map[model.ClientID]struct{})
	for _, s := range c.Hardware.Sensors {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("config: duplicate client id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	for _, a := range c.Hardware.Actors {
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("config: duplicate client id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	if c.NATS.BinPath == "" {
		return fmt.Errorf("config: nats.bin_path is required")
	}
	if _, err := os.Stat(c.NATS.BinPath); err != nil {
		return fmt.Errorf("config: nats binary %q not found: %w", c.NATS.BinPath, err)
	}

	return nil
}
