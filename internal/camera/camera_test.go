package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestPositionKeepsDistance(t *testing.T) {
	target := rl.Vector3{X: 1, Y: 2, Z: 3}
	c := New(target, 20)

	for _, yaw := range []float32{0, 45, 170, -90} {
		for _, pitch := range []float32{-80, 0, 30, 89} {
			c.Yaw, c.Pitch = yaw, pitch
			d := rl.Vector3Distance(c.Position(), target)
			if d < 19.999 || d > 20.001 {
				t.Errorf("Expected distance 20 at yaw %v pitch %v, got %v", yaw, pitch, d)
			}
		}
	}
}

func TestPositionAxes(t *testing.T) {
	c := New(rl.Vector3{}, 10)

	c.Yaw, c.Pitch = 0, 0
	p := c.Position()
	assert.InDelta(t, 10, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-4)

	c.Pitch = 89
	assert.Greater(t, c.Position().Y, float32(9.99))

	cam := c.GetRaylibCamera()
	assert.Equal(t, c.Target, cam.Target)
	assert.Equal(t, rl.CameraPerspective, cam.Projection)
}
