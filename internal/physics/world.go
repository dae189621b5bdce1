package physics

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"ballroom/internal/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Stats summarizes the most recent full sub-step.
type Stats struct {
	Steps              int     // full sub-steps since creation
	CandidatePairs     int
	CandidateWallPairs int
	Fallbacks          int     // sub-steps where the resolver failed and the CPU path ran instead
	Bounces            int     // velocity changes applied by the narrow phase since creation
	Impact             float32 // summed |Δv| of the last full sub-step
	Leaves             int
	Depth              int
	Resolver           string
}

// CollisionWorld owns the spheres and advances them in fixed sub-steps.
//
// Each full sub-step runs: move every sphere and re-file it in the index,
// apply gravity, query candidates, resolve sphere pairs and then wall pairs.
// Time that does not fill a sub-step only moves the spheres and is carried
// into the next Advance call.
type CollisionWorld struct {
	cfg      config.Config
	spheres  []Sphere
	live     int
	index    *SpatialIndex
	resolver Resolver
	cpu      *CPUResolver
	pending  float32 // time left in the current sub-step
	stats    Stats

	lastLogTime time.Time // rate-limit fallback logs
}

// NewCollisionWorld creates an empty room. A nil resolver selects the CPU path.
func NewCollisionWorld(cfg config.Config, resolver Resolver) (*CollisionWorld, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cpu := NewCPUResolver(cfg.Room.HalfSize, cfg.Step.ApproachEpsilon)
	if resolver == nil {
		resolver = cpu
	}

	w := &CollisionWorld{
		cfg:      cfg,
		resolver: resolver,
		cpu:      cpu,
		pending:  cfg.Step.SubStep,
	}
	h := cfg.Room.HalfSize
	room := AABB{Min: rl.Vector3{X: -h, Y: -h, Z: -h}, Max: rl.Vector3{X: h, Y: h, Z: h}}
	w.index = NewSpatialIndex(room, cfg.Octree, w)
	return w, nil
}

// Config returns the configuration the world was built with.
func (w *CollisionWorld) Config() config.Config {
	return w.cfg
}

// Bounds implements BoundsSource for the world's own index.
func (w *CollisionWorld) Bounds(id SphereID) (rl.Vector3, float32) {
	s := &w.spheres[id]
	return s.Position, s.Radius
}

// AddSphere validates spec, stores the sphere and indexes it.
func (w *CollisionWorld) AddSphere(spec SphereSpec) (SphereID, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	id := SphereID(len(w.spheres))
	w.spheres = append(w.spheres, Sphere{
		ID:          id,
		Position:    spec.Position,
		Velocity:    spec.Velocity,
		Radius:      spec.Radius,
		Mass:        spec.Mass,
		Restitution: spec.Restitution,
		Color:       spec.Color,
		alive:       true,
	})
	w.live++
	w.index.Insert(id)
	return id, nil
}

// RemoveSphere takes a sphere out of the simulation. Its ID is not reused.
func (w *CollisionWorld) RemoveSphere(id SphereID) bool {
	if id < 0 || int(id) >= len(w.spheres) || !w.spheres[id].alive {
		return false
	}
	s := &w.spheres[id]
	w.index.Remove(id, s.Position)
	s.alive = false
	s.Velocity = rl.Vector3Zero()
	w.live--
	return true
}

// Populate spawns Spawn.Count spheres on a grid centered in the room, with
// radius, mass, restitution and per-axis speed drawn from the configured ranges.
func (w *CollisionWorld) Populate(rng *rand.Rand) error {
	s := w.cfg.Spawn
	dim := w.cfg.GridDim()
	spacing := w.cfg.GridSpacing()
	origin := -float32(dim-1) * spacing / 2

	for i := 0; i < s.Count; i++ {
		ix, iy, iz := i/(dim*dim), (i/dim)%dim, i%dim
		spec := SphereSpec{
			Position: rl.Vector3{
				X: origin + float32(ix)*spacing,
				Y: origin + float32(iy)*spacing,
				Z: origin + float32(iz)*spacing,
			},
			Velocity: rl.Vector3{
				X: randomSpeed(rng, s.SpeedMin, s.SpeedMax),
				Y: randomSpeed(rng, s.SpeedMin, s.SpeedMax),
				Z: randomSpeed(rng, s.SpeedMin, s.SpeedMax),
			},
			Radius:      lerp(s.RadiusMin, s.RadiusMax, rng.Float32()),
			Mass:        lerp(s.MassMin, s.MassMax, rng.Float32()),
			Restitution: lerp(s.RestitutionMin, s.RestitutionMax, rng.Float32()),
			Color: rl.NewColor(
				uint8(255*lerp(0.2, 0.8, rng.Float32())),
				uint8(255*lerp(0.2, 0.8, rng.Float32())),
				uint8(255*lerp(0.2, 0.8, rng.Float32())),
				255,
			),
		}
		if _, err := w.AddSphere(spec); err != nil {
			return err
		}
	}

	log.Printf("Physics: spawned %d spheres (%dx%dx%d grid)", s.Count, dim, dim, dim)
	return nil
}

func randomSpeed(rng *rand.Rand, lo, hi float32) float32 {
	v := lerp(lo, hi, rng.Float32())
	if rng.IntN(2) == 0 {
		return -v
	}
	return v
}

// Len is the number of live spheres.
func (w *CollisionWorld) Len() int {
	return w.live
}

// Spheres returns a copy of every live sphere for rendering.
func (w *CollisionWorld) Spheres() []Sphere {
	out := make([]Sphere, 0, w.live)
	for _, s := range w.spheres {
		if s.alive {
			out = append(out, s)
		}
	}
	return out
}

// Sphere returns a copy of one sphere.
func (w *CollisionWorld) Sphere(id SphereID) (Sphere, bool) {
	if id < 0 || int(id) >= len(w.spheres) || !w.spheres[id].alive {
		return Sphere{}, false
	}
	return w.spheres[id], true
}

// SetResolver swaps the narrow-phase backend. nil restores the CPU path.
func (w *CollisionWorld) SetResolver(r Resolver) {
	if r == nil {
		r = w.cpu
	}
	w.resolver = r
}

// Stats reports counters from the last full sub-step plus current index shape.
func (w *CollisionWorld) Stats() Stats {
	st := w.stats
	st.Leaves = w.index.LeafCount()
	st.Depth = w.index.Depth()
	st.Resolver = w.resolver.Name()
	return st
}

// Pending is the time left before the next full sub-step resolves collisions.
func (w *CollisionWorld) Pending() float32 {
	return w.pending
}

// Advance moves the simulation forward by elapsed wall-clock seconds.
func (w *CollisionWorld) Advance(elapsed float32) {
	if !(elapsed > 0) {
		return
	}
	elapsed = min(elapsed, w.cfg.Step.MaxFrameTime)

	// Absorbs float32 drift when a caller's increments sum to exactly one sub-step.
	slack := w.cfg.Step.SubStep * 1e-4

	for elapsed > 0 {
		if w.pending <= elapsed+slack {
			elapsed -= w.pending
			w.step(w.pending)
			w.pending = w.cfg.Step.SubStep
		} else {
			w.move(elapsed)
			w.pending -= elapsed
			elapsed = 0
		}
	}
}

// step finishes the current sub-step: the last dt of motion, then forces and collisions.
func (w *CollisionWorld) step(dt float32) {
	w.move(dt)
	w.applyGravity()

	pairs := w.index.CandidatePairs()
	walls := w.index.CandidateWallPairs()
	w.stats.Steps++
	w.stats.CandidatePairs = len(pairs)
	w.stats.CandidateWallPairs = len(walls)

	n1, dv1 := w.apply(w.resolvePairs(pairs))
	n2, dv2 := w.apply(w.resolveWallPairs(walls))
	w.stats.Bounces += n1 + n2
	w.stats.Impact = dv1 + dv2
}

func (w *CollisionWorld) move(dt float32) {
	for i := range w.spheres {
		s := &w.spheres[i]
		if !s.alive {
			continue
		}
		prev := s.Position
		s.Position = rl.Vector3Add(s.Position, rl.Vector3Scale(s.Velocity, dt))
		w.index.Update(s.ID, prev)
	}
}

func (w *CollisionWorld) applyGravity() {
	dv := w.cfg.Room.Gravity * w.cfg.Step.SubStep
	for i := range w.spheres {
		if w.spheres[i].alive {
			w.spheres[i].Velocity.Y -= dv
		}
	}
}

func (w *CollisionWorld) resolvePairs(pairs []CandidatePair) []rl.Vector3 {
	v, err := w.resolver.ResolvePairs(w.spheres, pairs)
	if err = w.check(v, err); err == nil {
		return v
	}
	w.fallback(err)
	v, _ = w.cpu.ResolvePairs(w.spheres, pairs)
	return v
}

func (w *CollisionWorld) resolveWallPairs(pairs []CandidateWallPair) []rl.Vector3 {
	v, err := w.resolver.ResolveWallPairs(w.spheres, pairs)
	if err = w.check(v, err); err == nil {
		return v
	}
	w.fallback(err)
	v, _ = w.cpu.ResolveWallPairs(w.spheres, pairs)
	return v
}

func (w *CollisionWorld) check(v []rl.Vector3, err error) error {
	if err != nil {
		return err
	}
	if len(v) != len(w.spheres) {
		return fmt.Errorf("got %d velocities for %d spheres", len(v), len(w.spheres))
	}
	return nil
}

func (w *CollisionWorld) fallback(err error) {
	w.stats.Fallbacks++
	if time.Since(w.lastLogTime) >= time.Second {
		w.lastLogTime = time.Now()
		log.Printf("Physics: %s resolver failed, using CPU for this step: %v", w.resolver.Name(), err)
	}
}

// apply installs a resolver's velocity array in one pass and reports how
// many spheres it changed and by how much in total.
func (w *CollisionWorld) apply(v []rl.Vector3) (changed int, impact float32) {
	for i := range w.spheres {
		s := &w.spheres[i]
		if !s.alive || s.Velocity == v[i] {
			continue
		}
		changed++
		impact += rl.Vector3Distance(s.Velocity, v[i])
		s.Velocity = v[i]
	}
	return changed, impact
}
