package physics

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrInvalidSphere is wrapped by every sphere validation failure.
var ErrInvalidSphere = errors.New("invalid sphere")

// SphereID is a stable handle into the world's sphere arena.
// It is assigned once by AddSphere and never reused.
type SphereID int32

// Sphere is one rigid ball. The world owns the storage; the spatial index
// and every pair type refer to spheres by ID only.
type Sphere struct {
	ID          SphereID
	Position    rl.Vector3
	Velocity    rl.Vector3
	Radius      float32
	Mass        float32
	Restitution float32  // 0 = perfectly inelastic, 1 = perfectly elastic
	Color       rl.Color // render-only

	alive bool
}

// Alive reports whether the sphere is still part of the simulation.
func (s Sphere) Alive() bool {
	return s.alive
}

// SphereSpec describes a sphere to be added to a world.
type SphereSpec struct {
	Position    rl.Vector3
	Velocity    rl.Vector3
	Radius      float32
	Mass        float32
	Restitution float32
	Color       rl.Color
}

// Validate rejects specs that would poison the simulation with NaNs later.
func (s SphereSpec) Validate() error {
	if !finiteVec(s.Position) {
		return fmt.Errorf("%w: position %v is not finite", ErrInvalidSphere, s.Position)
	}
	if !finiteVec(s.Velocity) {
		return fmt.Errorf("%w: velocity %v is not finite", ErrInvalidSphere, s.Velocity)
	}
	if !(s.Radius > 0) || !finite(s.Radius) {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidSphere, s.Radius)
	}
	if !(s.Mass > 0) || !finite(s.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidSphere, s.Mass)
	}
	if !(s.Restitution >= 0 && s.Restitution <= 1) {
		return fmt.Errorf("%w: restitution must be in [0, 1], got %v", ErrInvalidSphere, s.Restitution)
	}
	return nil
}
