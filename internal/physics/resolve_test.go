package physics

import (
	"math/rand/v2"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEpsilon = 1e-3

func ball(id SphereID, pos, vel rl.Vector3, radius, mass, e float32) Sphere {
	return Sphere{ID: id, Position: pos, Velocity: vel, Radius: radius, Mass: mass, Restitution: e, alive: true}
}

func momentum(spheres []Sphere, v []rl.Vector3) rl.Vector3 {
	var p rl.Vector3
	for i := range spheres {
		p = rl.Vector3Add(p, rl.Vector3Scale(v[i], spheres[i].Mass))
	}
	return p
}

func kinetic(spheres []Sphere, v []rl.Vector3) float32 {
	var e float32
	for i := range spheres {
		e += 0.5 * spheres[i].Mass * lengthSqr(v[i])
	}
	return e
}

func assertVector(t *testing.T, want, got rl.Vector3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-4, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-4, msgAndArgs...)
}

func TestHeadOnEqualMassSwapsVelocities(t *testing.T) {
	a := ball(0, rl.Vector3{X: -0.95}, rl.Vector3{X: 1}, 1, 2, 1)
	b := ball(1, rl.Vector3{X: 0.95}, rl.Vector3{X: -1}, 1, 2, 1)

	dva, dvb, ok := SpherePairImpulse(&a, &b, testEpsilon)
	if !ok {
		t.Fatal("Expected a genuine collision")
	}
	assertVector(t, rl.Vector3{X: -1}, rl.Vector3Add(a.Velocity, dva))
	assertVector(t, rl.Vector3{X: 1}, rl.Vector3Add(b.Velocity, dvb))
}

func TestPairImpulseUsesLowerRestitution(t *testing.T) {
	a := ball(0, rl.Vector3{X: -0.95}, rl.Vector3{X: 1}, 1, 1, 1)
	b := ball(1, rl.Vector3{X: 0.95}, rl.Vector3{X: -1}, 1, 1, 0)

	dva, dvb, ok := SpherePairImpulse(&a, &b, testEpsilon)
	require.True(t, ok)
	// Perfectly inelastic: both end at the common velocity.
	assertVector(t, rl.Vector3{}, rl.Vector3Add(a.Velocity, dva))
	assertVector(t, rl.Vector3{}, rl.Vector3Add(b.Velocity, dvb))
}

func TestPairImpulseRejects(t *testing.T) {
	tests := []struct {
		name string
		a, b Sphere
	}{
		{
			name: "separated",
			a:    ball(0, rl.Vector3{X: -2}, rl.Vector3{X: 1}, 0.5, 1, 1),
			b:    ball(1, rl.Vector3{X: 2}, rl.Vector3{X: -1}, 0.5, 1, 1),
		},
		{
			name: "just touching",
			a:    ball(0, rl.Vector3{X: -1}, rl.Vector3{X: 1}, 1, 1, 1),
			b:    ball(1, rl.Vector3{X: 1}, rl.Vector3{X: -1}, 1, 1, 1),
		},
		{
			name: "overlapping but separating",
			a:    ball(0, rl.Vector3{X: -0.5}, rl.Vector3{X: -1}, 1, 1, 1),
			b:    ball(1, rl.Vector3{X: 0.5}, rl.Vector3{X: 1}, 1, 1, 1),
		},
		{
			name: "coincident centers",
			a:    ball(0, rl.Vector3{}, rl.Vector3{X: 1}, 1, 1, 1),
			b:    ball(1, rl.Vector3{}, rl.Vector3{X: -1}, 1, 1, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := SpherePairImpulse(&tt.a, &tt.b, testEpsilon); ok {
				t.Errorf("Expected no collision for %s", tt.name)
			}
		})
	}
}

func TestPairImpulseConservesMomentum(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 34))
	for i := 0; i < 200; i++ {
		a := ball(0, rl.Vector3{}, randomVector(rng, 2), 1, lerp(1, 5, rng.Float32()), rng.Float32())
		b := ball(1, rl.Vector3Scale(randomUnit(rng), 1.5), randomVector(rng, 2), 1, lerp(1, 5, rng.Float32()), rng.Float32())

		dva, dvb, ok := SpherePairImpulse(&a, &b, testEpsilon)
		if !ok {
			continue
		}
		spheres := []Sphere{a, b}
		before := velocities(spheres)
		after := []rl.Vector3{rl.Vector3Add(a.Velocity, dva), rl.Vector3Add(b.Velocity, dvb)}

		assertVector(t, momentum(spheres, before), momentum(spheres, after))
		assert.LessOrEqual(t, kinetic(spheres, after), kinetic(spheres, before)+1e-3)
	}
}

func TestElasticPairConservesEnergy(t *testing.T) {
	a := ball(0, rl.Vector3{X: -0.7, Y: 0.3}, rl.Vector3{X: 2, Z: 0.5}, 0.8, 3, 1)
	b := ball(1, rl.Vector3{X: 0.7}, rl.Vector3{X: -1, Y: 0.2}, 0.8, 1, 1)
	spheres := []Sphere{a, b}

	v, err := NewCPUResolver(6, testEpsilon).ResolvePairs(spheres, []CandidatePair{{A: 0, B: 1}})
	require.NoError(t, err)

	assert.InDelta(t, kinetic(spheres, velocities(spheres)), kinetic(spheres, v), 1e-4)
	assertVector(t, momentum(spheres, velocities(spheres)), momentum(spheres, v))
}

func TestResolvePairsUsesSnapshot(t *testing.T) {
	// Middle sphere is hit from both sides in the same step.
	spheres := []Sphere{
		ball(0, rl.Vector3{X: -1.9}, rl.Vector3{X: 1}, 1, 1, 1),
		ball(1, rl.Vector3{}, rl.Vector3{}, 1, 1, 1),
		ball(2, rl.Vector3{X: 1.9}, rl.Vector3{X: -1}, 1, 1, 1),
		ball(3, rl.Vector3{Y: 4}, rl.Vector3{Z: 3}, 1, 1, 1),
	}
	pairs := []CandidatePair{{A: 0, B: 1}, {A: 1, B: 2}}

	v, err := NewCPUResolver(6, testEpsilon).ResolvePairs(spheres, pairs)
	require.NoError(t, err)
	require.Len(t, v, len(spheres))

	assertVector(t, rl.Vector3{}, v[0])
	assertVector(t, rl.Vector3{}, v[1], "opposite impulses should cancel")
	assertVector(t, rl.Vector3{}, v[2])
	assertVector(t, rl.Vector3{Z: 3}, v[3], "uninvolved sphere keeps its velocity")

	// Reversed pair order gives the same answer.
	rv, err := NewCPUResolver(6, testEpsilon).ResolvePairs(spheres, []CandidatePair{pairs[1], pairs[0]})
	require.NoError(t, err)
	assert.Equal(t, v, rv)
}

func TestWallImpulse(t *testing.T) {
	tests := []struct {
		name string
		s    Sphere
		wall Wall
		want rl.Vector3
		ok   bool
	}{
		{
			name: "elastic bounce off right wall",
			s:    ball(0, rl.Vector3{X: 5.5}, rl.Vector3{X: 2, Y: 1}, 0.6, 1, 1),
			wall: WallRight,
			want: rl.Vector3{X: -4},
			ok:   true,
		},
		{
			name: "inelastic floor stops normal motion",
			s:    ball(0, rl.Vector3{Y: -5.6}, rl.Vector3{X: 1, Y: -3}, 0.6, 1, 0),
			wall: WallBottom,
			want: rl.Vector3{Y: 3},
			ok:   true,
		},
		{
			name: "moving away",
			s:    ball(0, rl.Vector3{Z: 5.8}, rl.Vector3{Z: -1}, 0.6, 1, 1),
			wall: WallFront,
		},
		{
			name: "motionless against the wall",
			s:    ball(0, rl.Vector3{Z: -5.8}, rl.Vector3{}, 0.6, 1, 1),
			wall: WallBack,
		},
		{
			name: "not touching",
			s:    ball(0, rl.Vector3{X: -4}, rl.Vector3{X: -5}, 0.6, 1, 1),
			wall: WallLeft,
		},
		{
			name: "exactly touching",
			s:    ball(0, rl.Vector3{Y: 5.5}, rl.Vector3{Y: 1}, 0.5, 1, 1),
			wall: WallTop,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dv, ok := WallImpulse(&tt.s, tt.wall, 6)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			assertVector(t, tt.want, dv)
		})
	}
}

func TestResolveWallPairsCorner(t *testing.T) {
	// A sphere in a corner bounces off both walls in one step.
	spheres := []Sphere{ball(0, rl.Vector3{X: 5.7, Y: 5.7}, rl.Vector3{X: 1, Y: 2, Z: 0.5}, 0.5, 1, 1)}
	pairs := []CandidateWallPair{{Sphere: 0, Wall: WallRight}, {Sphere: 0, Wall: WallTop}, {Sphere: 0, Wall: WallFront}}

	v, err := NewCPUResolver(6, testEpsilon).ResolveWallPairs(spheres, pairs)
	require.NoError(t, err)
	assertVector(t, rl.Vector3{X: -1, Y: -2, Z: 0.5}, v[0])
}

func TestWallNormals(t *testing.T) {
	for _, w := range Walls {
		n := w.Normal()
		if lengthSqr(n) != 1 {
			t.Errorf("Expected unit normal for %s, got %v", w, n)
		}
		if got := component(n, w.Axis()); (got > 0) != w.Positive() {
			t.Errorf("Expected %s normal to point %v along axis %d", w, w.Positive(), w.Axis())
		}
	}
	assert.Equal(t, "unknown", Wall(9).String())
}

func TestSphereSpecValidate(t *testing.T) {
	good := SphereSpec{Radius: 1, Mass: 1, Restitution: 0.5}
	require.NoError(t, good.Validate())

	nan := float32(0)
	nan = nan / nan

	bad := map[string]SphereSpec{
		"zero radius":     {Radius: 0, Mass: 1},
		"negative mass":   {Radius: 1, Mass: -1},
		"restitution > 1": {Radius: 1, Mass: 1, Restitution: 1.5},
		"restitution < 0": {Radius: 1, Mass: 1, Restitution: -0.1},
		"nan position":    {Position: rl.Vector3{X: nan}, Radius: 1, Mass: 1},
		"nan velocity":    {Velocity: rl.Vector3{Y: nan}, Radius: 1, Mass: 1},
		"nan radius":      {Radius: nan, Mass: 1},
	}
	for name, spec := range bad {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, spec.Validate(), ErrInvalidSphere)
		})
	}
}

func randomVector(rng *rand.Rand, scale float32) rl.Vector3 {
	return rl.Vector3{
		X: lerp(-scale, scale, rng.Float32()),
		Y: lerp(-scale, scale, rng.Float32()),
		Z: lerp(-scale, scale, rng.Float32()),
	}
}

func randomUnit(rng *rand.Rand) rl.Vector3 {
	for {
		v := randomVector(rng, 1)
		if l := lengthSqr(v); l > 0.01 && l <= 1 {
			return rl.Vector3Normalize(v)
		}
	}
}
