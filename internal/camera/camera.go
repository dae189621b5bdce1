package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OrbitCamera circles a fixed target. Right-drag rotates, the wheel zooms.
type OrbitCamera struct {
	Target   rl.Vector3
	Yaw      float32 // degrees around +Y
	Pitch    float32 // degrees above the horizon
	Distance float32

	LookSpeed   float32
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32
}

func New(target rl.Vector3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Target:      target,
		Yaw:         45.0,
		Pitch:       25.0,
		Distance:    distance,
		LookSpeed:   0.3,
		ZoomSpeed:   1.5, // units per wheel notch
		MinDistance: 2.0,
		MaxDistance: distance * 3,
	}
}

func (c *OrbitCamera) Update() {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		mouseDelta := rl.GetMouseDelta()
		c.Yaw += mouseDelta.X * c.LookSpeed
		c.Pitch += mouseDelta.Y * c.LookSpeed
	}

	// Keyboard orbit for trackpads
	if rl.IsKeyDown(rl.KeyLeft) {
		c.Yaw -= 1
	}
	if rl.IsKeyDown(rl.KeyRight) {
		c.Yaw += 1
	}
	if rl.IsKeyDown(rl.KeyUp) {
		c.Pitch += 1
	}
	if rl.IsKeyDown(rl.KeyDown) {
		c.Pitch -= 1
	}

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}

	c.Distance -= rl.GetMouseWheelMove() * c.ZoomSpeed
	c.Distance = rl.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// Position is the eye point on the orbit sphere.
func (c *OrbitCamera) Position() rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	d := float64(c.Distance)

	return rl.Vector3{
		X: c.Target.X + float32(d*math.Cos(pitchRad)*math.Cos(yawRad)),
		Y: c.Target.Y + float32(d*math.Sin(pitchRad)),
		Z: c.Target.Z + float32(d*math.Cos(pitchRad)*math.Sin(yawRad)),
	}
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
