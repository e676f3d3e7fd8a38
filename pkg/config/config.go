// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// GameConfig contains configuration for a game
type GameConfig struct {
	Physics physics.Params   `json:"physics" yaml:"physics"`
	Car     entity.CarTuning `json:"car" yaml:"car"`
	Ball    BallConfig       `json:"ball" yaml:"ball"`
	Frame   FrameConfig      `json:"frame" yaml:"frame"`
	Network NetworkConfig    `json:"network" yaml:"network"`
	Levels  []LevelConfig    `json:"levels" yaml:"levels"`
}

// BallConfig holds the defaults for balls that do not set their own values.
type BallConfig struct {
	Radius     float64 `json:"radius" yaml:"radius"`
	Mass       float64 `json:"mass" yaml:"mass"`
	Elasticity float64 `json:"elasticity" yaml:"elasticity"`
}

// FrameConfig contains frame loop timing
type FrameConfig struct {
	// TimeStepMS is the wall-clock length of one frame.
	TimeStepMS float64 `json:"timeStepMs" yaml:"timeStepMs"`
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	ServerAddress string `json:"serverAddress" yaml:"serverAddress"`
	ServerPort    int    `json:"serverPort" yaml:"serverPort"`
	// MaxInputBytes bounds a single input message.
	MaxInputBytes int `json:"maxInputBytes" yaml:"maxInputBytes"`
	// InputRate is the number of input messages accepted per second per
	// connection.
	InputRate int `json:"inputRate" yaml:"inputRate"`
}

// Address returns host:port for the server listener.
func (n NetworkConfig) Address() string {
	return fmt.Sprintf("%s:%d", n.ServerAddress, n.ServerPort)
}

// LoadConfig loads a configuration from a file. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON. Settings missing from the
// file keep their default values.
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Levels = nil
	if err := unmarshal(path, data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(config.Levels) == 0 {
		config.Levels = DefaultLevels()
	}

	return config, nil
}

// SaveConfig saves a configuration to a file in the format its extension
// names.
func SaveConfig(config *GameConfig, path string) error {
	data, err := marshal(path, config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadLevels reads a level file holding a top-level "levels" list.
func LoadLevels(path string) ([]LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	var file struct {
		Levels []LevelConfig `json:"levels" yaml:"levels"`
	}
	if err := unmarshal(path, data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse level file: %w", err)
	}
	if len(file.Levels) == 0 {
		return nil, fmt.Errorf("%w: %s has no levels", ErrInvalidGeometry, path)
	}
	return file.Levels, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func unmarshal(path string, data []byte, v any) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func marshal(path string, v any) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// Validate checks ranges that would otherwise surface as odd physics.
func (c *GameConfig) Validate() error {
	switch {
	case c.Frame.TimeStepMS <= 0:
		return fmt.Errorf("%w: frame time step must be positive, got %v", ErrInvalidConfig, c.Frame.TimeStepMS)
	case c.Physics.TimeScale <= 0:
		return fmt.Errorf("%w: time scale must be positive, got %v", ErrInvalidConfig, c.Physics.TimeScale)
	case c.Physics.LinearDrag < 0 || c.Physics.AngularDrag < 0:
		return fmt.Errorf("%w: drag must not be negative", ErrInvalidConfig)
	case c.Ball.Radius <= 0 || c.Ball.Mass <= 0:
		return fmt.Errorf("%w: ball radius and mass must be positive", ErrInvalidConfig)
	case c.Car.Width <= 0 || c.Car.Height <= 0 || c.Car.Mass <= 0:
		return fmt.Errorf("%w: car size and mass must be positive", ErrInvalidConfig)
	}
	if err := checkElasticity("ball", c.Ball.Elasticity); err != nil {
		return err
	}
	if err := checkElasticity("car", c.Car.Elasticity); err != nil {
		return err
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidConfig)
	}
	for _, level := range c.Levels {
		if err := level.Validate(); err != nil {
			return err
		}
	}
	if c.Network.ServerPort < 0 || c.Network.ServerPort > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Network.ServerPort)
	}
	return nil
}

func checkElasticity(what string, e float64) error {
	if e < 0 || e > 1 {
		return fmt.Errorf("%w: %s elasticity %v outside [0,1]", ErrInvalidConfig, what, e)
	}
	return nil
}

// DefaultConfig returns a default game configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Physics: physics.DefaultParams(),
		Car:     entity.DefaultCarTuning(),
		Ball: BallConfig{
			Radius:     15,
			Mass:       20,
			Elasticity: 0.8,
		},
		Frame: FrameConfig{
			TimeStepMS: 25,
		},
		Network: NetworkConfig{
			ServerAddress: "localhost",
			ServerPort:    4566,
			MaxInputBytes: 1024,
			InputRate:     120,
		},
		Levels: DefaultLevels(),
	}
}
