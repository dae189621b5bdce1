package physics

import (
	"ballroom/internal/compute"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// GPUResolver runs the narrow phase as WebGPU compute kernels. The kernels only
// produce per-candidate deltas; summing them onto the snapshot happens here so
// the result matches CPUResolver.
type GPUResolver struct {
	np       *compute.NarrowPhase
	halfSize float32
	epsilon  float32

	bodies    []compute.Body
	pairs     []compute.Pair
	wallPairs []compute.WallPair
}

// NewGPUResolver needs compute.Initialize to have succeeded.
func NewGPUResolver(halfSize, epsilon float32) (*GPUResolver, error) {
	np, err := compute.NewNarrowPhase()
	if err != nil {
		return nil, err
	}
	return &GPUResolver{np: np, halfSize: halfSize, epsilon: epsilon}, nil
}

func (g *GPUResolver) Name() string {
	return "GPU"
}

func (g *GPUResolver) ResolvePairs(spheres []Sphere, pairs []CandidatePair) ([]rl.Vector3, error) {
	out := velocities(spheres)
	if len(pairs) == 0 {
		return out, nil
	}

	g.pack(spheres)
	g.pairs = g.pairs[:0]
	for _, p := range pairs {
		g.pairs = append(g.pairs, compute.Pair{A: uint32(p.A), B: uint32(p.B)})
	}

	deltas, err := g.np.SpherePairs(g.bodies, g.pairs, g.epsilon)
	if err != nil {
		return nil, err
	}
	for i, d := range deltas {
		if d.A.Hit == 0 {
			continue
		}
		p := pairs[i]
		out[p.A] = rl.Vector3Add(out[p.A], toVector(d.A))
		out[p.B] = rl.Vector3Add(out[p.B], toVector(d.B))
	}
	return out, nil
}

func (g *GPUResolver) ResolveWallPairs(spheres []Sphere, pairs []CandidateWallPair) ([]rl.Vector3, error) {
	out := velocities(spheres)
	if len(pairs) == 0 {
		return out, nil
	}

	g.pack(spheres)
	g.wallPairs = g.wallPairs[:0]
	for _, p := range pairs {
		g.wallPairs = append(g.wallPairs, compute.WallPair{Body: uint32(p.Sphere), Wall: uint32(p.Wall)})
	}

	deltas, err := g.np.WallPairs(g.bodies, g.wallPairs, g.halfSize)
	if err != nil {
		return nil, err
	}
	for i, d := range deltas {
		if d.Hit == 0 {
			continue
		}
		id := pairs[i].Sphere
		out[id] = rl.Vector3Add(out[id], toVector(d))
	}
	return out, nil
}

// Release frees the GPU buffers.
func (g *GPUResolver) Release() {
	g.np.Release()
}

func (g *GPUResolver) pack(spheres []Sphere) {
	g.bodies = g.bodies[:0]
	for i := range spheres {
		s := &spheres[i]
		g.bodies = append(g.bodies, compute.Body{
			X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z,
			Radius: s.Radius,
			VX:     s.Velocity.X, VY: s.Velocity.Y, VZ: s.Velocity.Z,
			Mass:        s.Mass,
			Restitution: s.Restitution,
		})
	}
}

func toVector(d compute.Delta) rl.Vector3 {
	return rl.Vector3{X: d.X, Y: d.Y, Z: d.Z}
}
