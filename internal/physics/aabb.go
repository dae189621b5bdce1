package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// AABB is an axis-aligned box. Octree nodes use it for their cubical region.
type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3Scale(size, 0.5)
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// Center is the geometric middle of the box; octree children split here.
func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

// Octant returns the child box for octant index o.
// Bit 0 selects the upper X half, bit 1 upper Y, bit 2 upper Z.
func (a AABB) Octant(o int) AABB {
	c := a.Center()
	child := AABB{Min: a.Min, Max: c}
	if o&1 != 0 {
		child.Min.X, child.Max.X = c.X, a.Max.X
	}
	if o&2 != 0 {
		child.Min.Y, child.Max.Y = c.Y, a.Max.Y
	}
	if o&4 != 0 {
		child.Min.Z, child.Max.Z = c.Z, a.Max.Z
	}
	return child
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}
