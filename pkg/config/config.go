// Package config loads and saves engine configuration: solver
// iteration counts, broadphase cell size, timing defaults, gravity,
// and the starting scene, mirroring the teacher's JSON-file load/save
// pattern.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

// EngineConfig holds everything Engine.New needs plus a starting scene
// description consumed by cmd/simulate.
type EngineConfig struct {
	PositionIterations   int             `json:"positionIterations"`
	VelocityIterations   int             `json:"velocityIterations"`
	ConstraintIterations int             `json:"constraintIterations"`
	EnableSleeping       bool            `json:"enableSleeping"`
	Timing               TimingConfig    `json:"timing"`
	Broadphase           GridConfig      `json:"broadphase"`
	Gravity              vector.Vector2D `json:"gravity"`
	GravityScale         float64         `json:"gravityScale"`
	WorldBounds          BoundsConfig    `json:"worldBounds"`
	Bodies               []BodyConfig    `json:"bodies"`
}

// TimingConfig is the engine's time-scale state.
type TimingConfig struct {
	TimeScale float64 `json:"timeScale"`
}

// GridConfig configures the broadphase uniform grid's cell size.
type GridConfig struct {
	BucketWidth  float64 `json:"bucketWidth"`
	BucketHeight float64 `json:"bucketHeight"`
}

// BoundsConfig describes the world's outer AABB.
type BoundsConfig struct {
	MinX, MinY, MaxX, MaxY float64
}

// BodyConfig describes one body to seed into the world at startup.
type BodyConfig struct {
	Position    vector.Vector2D   `json:"position"`
	Vertices    []vector.Vector2D `json:"vertices"`
	Density     float64           `json:"density"`
	Friction    float64           `json:"friction"`
	Restitution float64           `json:"restitution"`
	IsStatic    bool              `json:"isStatic"`
}

// Load reads an EngineConfig from a JSON file.
func Load(path string) (*EngineConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg EngineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(cfg *EngineConfig, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Default returns the engine's documented defaults: 6 position
// iterations, 4 velocity iterations, 2 constraint iterations, sleeping
// disabled, a 48x48 broadphase grid, and downward gravity.
func Default() *EngineConfig {
	return &EngineConfig{
		PositionIterations:   6,
		VelocityIterations:   4,
		ConstraintIterations: 2,
		EnableSleeping:       false,
		Timing:               TimingConfig{TimeScale: 1},
		Broadphase:           GridConfig{BucketWidth: 48, BucketHeight: 48},
		Gravity:              vector.Vector2D{X: 0, Y: 1},
		GravityScale:         0.001,
		WorldBounds:          BoundsConfig{MinX: -10000, MinY: -10000, MaxX: 10000, MaxY: 10000},
	}
}
