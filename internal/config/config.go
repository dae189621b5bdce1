// Package config holds the immutable tuning values for a ballroom simulation.
// A Config is built once (Default or Load) and passed by value into constructors.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Backend names accepted in Config.Backend.
const (
	BackendCPU = "cpu"
	BackendGPU = "gpu"
)

type Config struct {
	Room    RoomConfig   `toml:"room"`
	Step    StepConfig   `toml:"step"`
	Spawn   SpawnConfig  `toml:"spawn"`
	Octree  OctreeConfig `toml:"octree"`
	Backend string       `toml:"backend"`
}

type RoomConfig struct {
	HalfSize float32 `toml:"half_size"` // walls sit at ±HalfSize on every axis
	Gravity  float32 `toml:"gravity"`   // magnitude, applied along -Y
}

type StepConfig struct {
	SubStep         float32 `toml:"sub_step"`         // seconds per physics update
	ApproachEpsilon float32 `toml:"approach_epsilon"` // dot(dv, dp) must be below this to resolve
	MaxFrameTime    float32 `toml:"max_frame_time"`   // clamp for a single Advance call
}

type SpawnConfig struct {
	Count          int     `toml:"count"`
	RadiusMin      float32 `toml:"radius_min"`
	RadiusMax      float32 `toml:"radius_max"`
	MassMin        float32 `toml:"mass_min"`
	MassMax        float32 `toml:"mass_max"`
	RestitutionMin float32 `toml:"restitution_min"`
	RestitutionMax float32 `toml:"restitution_max"`
	SpeedMin       float32 `toml:"speed_min"`
	SpeedMax       float32 `toml:"speed_max"`
	Seed           uint64  `toml:"seed"`
}

type OctreeConfig struct {
	SplitThreshold    int `toml:"split_threshold"`    // leaf subdivides above this
	CollapseThreshold int `toml:"collapse_threshold"` // internal node collapses below this
	MaxDepth          int `toml:"max_depth"`
}

// Default returns the stock room: 64 balls in a 12-unit cube.
func Default() Config {
	return Config{
		Room: RoomConfig{
			HalfSize: 6.0,
			Gravity:  6.0,
		},
		Step: StepConfig{
			SubStep:         0.01,
			ApproachEpsilon: 1e-3,
			MaxFrameTime:    0.25,
		},
		Spawn: SpawnConfig{
			Count:          64,
			RadiusMin:      0.6,
			RadiusMax:      0.8,
			MassMin:        1.0,
			MassMax:        5.0,
			RestitutionMin: 0.5,
			RestitutionMax: 1.0,
			SpeedMin:       0.3,
			SpeedMax:       1.0,
			Seed:           1,
		},
		Octree: OctreeConfig{
			SplitThreshold:    6,
			CollapseThreshold: 3,
			MaxDepth:          6,
		},
		Backend: BackendCPU,
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Keys missing from the file keep their default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every invariant the simulation relies on.
func (c Config) Validate() error {
	if !positive(c.Room.HalfSize) {
		return invalid("room.half_size must be positive, got %v", c.Room.HalfSize)
	}
	if !finite(c.Room.Gravity) || c.Room.Gravity < 0 {
		return invalid("room.gravity must be a non-negative magnitude, got %v", c.Room.Gravity)
	}

	if !positive(c.Step.SubStep) {
		return invalid("step.sub_step must be positive, got %v", c.Step.SubStep)
	}
	if !finite(c.Step.ApproachEpsilon) {
		return invalid("step.approach_epsilon must be finite")
	}
	if c.Step.MaxFrameTime < c.Step.SubStep {
		return invalid("step.max_frame_time (%v) must be at least one sub-step (%v)", c.Step.MaxFrameTime, c.Step.SubStep)
	}

	s := c.Spawn
	if s.Count < 0 {
		return invalid("spawn.count must not be negative, got %d", s.Count)
	}
	if !positive(s.RadiusMin) || s.RadiusMax < s.RadiusMin {
		return invalid("spawn radius range [%v, %v] is not valid", s.RadiusMin, s.RadiusMax)
	}
	if !positive(s.MassMin) || s.MassMax < s.MassMin {
		return invalid("spawn mass range [%v, %v] is not valid", s.MassMin, s.MassMax)
	}
	if s.RestitutionMin < 0 || s.RestitutionMax > 1 || s.RestitutionMax < s.RestitutionMin {
		return invalid("spawn restitution range [%v, %v] must lie within [0, 1]", s.RestitutionMin, s.RestitutionMax)
	}
	if s.SpeedMin < 0 || s.SpeedMax < s.SpeedMin {
		return invalid("spawn speed range [%v, %v] is not valid", s.SpeedMin, s.SpeedMax)
	}
	if span := float32(c.GridDim()) * c.GridSpacing(); s.Count > 0 && span > 2*c.Room.HalfSize {
		return invalid("%d spheres need a %.2f-unit grid, room is only %.2f", s.Count, span, 2*c.Room.HalfSize)
	}

	o := c.Octree
	if o.MaxDepth < 0 {
		return invalid("octree.max_depth must not be negative, got %d", o.MaxDepth)
	}
	if o.CollapseThreshold < 0 || o.CollapseThreshold >= o.SplitThreshold {
		return invalid("octree.collapse_threshold (%d) must be below split_threshold (%d)", o.CollapseThreshold, o.SplitThreshold)
	}

	switch c.Backend {
	case BackendCPU, BackendGPU:
	default:
		return invalid("backend must be %q or %q, got %q", BackendCPU, BackendGPU, c.Backend)
	}
	return nil
}

// GridDim is the number of spawn cells per axis: the smallest n with n³ >= Count.
func (c Config) GridDim() int {
	n := 0
	for n*n*n < c.Spawn.Count {
		n++
	}
	return n
}

// spawnGap keeps neighbouring spawn cells from touching at the largest radius.
const spawnGap = 1e-3

// GridSpacing is the distance between neighbouring spawn cells.
func (c Config) GridSpacing() float32 {
	return 2*c.Spawn.RadiusMax + spawnGap
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func positive(v float32) bool {
	return finite(v) && v > 0
}
