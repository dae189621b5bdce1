package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Sphere   SphereID
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest live sphere hit by the ray within maxDistance.
func (w *CollisionWorld) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	if lengthSqr(direction) == 0 {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)

	var closestHit RaycastHit
	closestHit.Distance = maxDistance
	hit := false

	for i := range w.spheres {
		s := &w.spheres[i]
		if !s.alive {
			continue
		}
		if hitInfo, ok := raycastSphere(origin, direction, s, maxDistance); ok {
			if hitInfo.Distance < closestHit.Distance {
				closestHit = hitInfo
				hit = true
			}
		}
	}

	return closestHit, hit
}

func raycastSphere(origin, direction rl.Vector3, s *Sphere, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, s.Position)
	a := rl.Vector3DotProduct(direction, direction)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	t := (-b - math32.Sqrt(discriminant)) / (2 * a)
	if t < 0 {
		t = (-b + math32.Sqrt(discriminant)) / (2 * a)
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, s.Position))

	return RaycastHit{Sphere: s.ID, Point: point, Normal: normal, Distance: t}, true
}
