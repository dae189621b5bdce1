package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Resolver is the narrow phase. Both methods are pure functions over a frozen
// snapshot: every candidate is evaluated against the snapshot velocities, never
// against another candidate's result, and the return value is a complete
// replacement velocity array indexed by SphereID.
type Resolver interface {
	Name() string
	ResolvePairs(spheres []Sphere, pairs []CandidatePair) ([]rl.Vector3, error)
	ResolveWallPairs(spheres []Sphere, pairs []CandidateWallPair) ([]rl.Vector3, error)
}

// SpherePairImpulse returns the velocity changes for a and b, or ok=false if
// they are not overlapping and approaching. epsilon gates "approaching":
// dot(va-vb, pa-pb) must be below it.
func SpherePairImpulse(a, b *Sphere, epsilon float32) (dva, dvb rl.Vector3, ok bool) {
	dp := rl.Vector3Subtract(a.Position, b.Position)
	distSq := lengthSqr(dp)
	r := a.Radius + b.Radius
	if distSq >= r*r || distSq == 0 {
		return dva, dvb, false
	}
	dv := rl.Vector3Subtract(a.Velocity, b.Velocity)
	if rl.Vector3DotProduct(dv, dp) >= epsilon {
		return dva, dvb, false
	}

	n := rl.Vector3Scale(dp, 1/math32.Sqrt(distSq))
	ua := rl.Vector3DotProduct(a.Velocity, n)
	ub := rl.Vector3DotProduct(b.Velocity, n)
	e := min(a.Restitution, b.Restitution)
	total := a.Mass + b.Mass

	dva = rl.Vector3Scale(n, (1+e)*b.Mass*(ub-ua)/total)
	dvb = rl.Vector3Scale(n, (1+e)*a.Mass*(ua-ub)/total)
	return dva, dvb, true
}

// WallImpulse returns the velocity change for s bouncing off w in a room whose
// walls sit at ±halfSize, or ok=false if s is not touching w or is moving away.
func WallImpulse(s *Sphere, w Wall, halfSize float32) (dv rl.Vector3, ok bool) {
	n := w.Normal()
	if rl.Vector3DotProduct(s.Position, n)+s.Radius <= halfSize {
		return dv, false
	}
	vn := rl.Vector3DotProduct(s.Velocity, n)
	if vn <= 0 {
		return dv, false
	}
	return rl.Vector3Scale(n, -(1+s.Restitution)*vn), true
}

// CPUResolver runs the narrow phase sequentially on the calling goroutine.
type CPUResolver struct {
	HalfSize float32
	Epsilon  float32
}

func NewCPUResolver(halfSize, epsilon float32) *CPUResolver {
	return &CPUResolver{HalfSize: halfSize, Epsilon: epsilon}
}

func (c *CPUResolver) Name() string {
	return "CPU"
}

func (c *CPUResolver) ResolvePairs(spheres []Sphere, pairs []CandidatePair) ([]rl.Vector3, error) {
	out := velocities(spheres)
	for _, p := range pairs {
		dva, dvb, ok := SpherePairImpulse(&spheres[p.A], &spheres[p.B], c.Epsilon)
		if !ok {
			continue
		}
		out[p.A] = rl.Vector3Add(out[p.A], dva)
		out[p.B] = rl.Vector3Add(out[p.B], dvb)
	}
	return out, nil
}

func (c *CPUResolver) ResolveWallPairs(spheres []Sphere, pairs []CandidateWallPair) ([]rl.Vector3, error) {
	out := velocities(spheres)
	for _, p := range pairs {
		dv, ok := WallImpulse(&spheres[p.Sphere], p.Wall, c.HalfSize)
		if !ok {
			continue
		}
		out[p.Sphere] = rl.Vector3Add(out[p.Sphere], dv)
	}
	return out, nil
}

func velocities(spheres []Sphere) []rl.Vector3 {
	out := make([]rl.Vector3, len(spheres))
	for i := range spheres {
		out[i] = spheres[i].Velocity
	}
	return out
}
