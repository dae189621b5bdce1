package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// component returns the X, Y or Z component of v.
func component(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// lengthSqr is |v|².
func lengthSqr(v rl.Vector3) float32 {
	return rl.Vector3DotProduct(v, v)
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func finiteVec(v rl.Vector3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// lerp maps t in [0, 1) onto [lo, hi).
func lerp(lo, hi, t float32) float32 {
	return lo + (hi-lo)*t
}
