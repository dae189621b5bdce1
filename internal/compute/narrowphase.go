// GPU narrow phase: one invocation per candidate, writing a velocity delta per candidate.
package compute

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnavailable is returned when no compute device was initialized.
var ErrUnavailable = errors.New("compute: GPU not initialized")

// Body is one sphere as the kernels see it. Layout matches the WGSL struct:
// vec3 fields are 16-byte aligned and the struct is padded to 48 bytes.
type Body struct {
	X, Y, Z     float32
	Radius      float32
	VX, VY, VZ  float32
	Mass        float32
	Restitution float32
	_           [3]float32
}

// Pair indexes two bodies.
type Pair struct {
	A, B uint32
}

// WallPair indexes a body and a wall: 0 -X, 1 +X, 2 -Y, 3 +Y, 4 -Z, 5 +Z.
type WallPair struct {
	Body, Wall uint32
}

// Delta is a velocity change. Hit is 1 when the candidate was a genuine collision.
type Delta struct {
	X, Y, Z float32
	Hit     float32
}

// PairDelta holds the changes for both bodies of a Pair.
type PairDelta struct {
	A, B Delta
}

// Params is the uniform block shared by both kernels.
type Params struct {
	HalfSize float32
	Epsilon  float32
	Count    uint32
	_        uint32
}

const (
	bodySize   = uint64(unsafe.Sizeof(Body{}))
	paramsSize = uint64(unsafe.Sizeof(Params{}))

	workgroupSize = 64
	minCapacity   = 64
)

const narrowPhaseCommon = `
struct Body {
    pos: vec3<f32>,
    radius: f32,
    vel: vec3<f32>,
    mass: f32,
    restitution: f32,
    _pad0: f32,
    _pad1: f32,
    _pad2: f32,
}

struct Params {
    halfSize: f32,
    epsilon: f32,
    count: u32,
    _pad: u32,
}
`

const spherePairShader = narrowPhaseCommon + `
struct Pair {
    a: u32,
    b: u32,
}

struct PairDelta {
    a: vec4<f32>,
    b: vec4<f32>,
}

@group(0) @binding(0) var<storage, read> bodies: array<Body>;
@group(0) @binding(1) var<storage, read> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> deltas: array<PairDelta>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= params.count) {
        return;
    }

    let p = pairs[i];
    let a = bodies[p.a];
    let b = bodies[p.b];
    var out = PairDelta(vec4<f32>(0.0), vec4<f32>(0.0));

    let dp = a.pos - b.pos;
    let distSq = dot(dp, dp);
    let r = a.radius + b.radius;
    if (distSq < r * r && distSq > 0.0 && dot(a.vel - b.vel, dp) < params.epsilon) {
        let n = dp / sqrt(distSq);
        let ua = dot(a.vel, n);
        let ub = dot(b.vel, n);
        let e = min(a.restitution, b.restitution);
        let total = a.mass + b.mass;
        out.a = vec4<f32>(n * ((1.0 + e) * b.mass * (ub - ua) / total), 1.0);
        out.b = vec4<f32>(n * ((1.0 + e) * a.mass * (ua - ub) / total), 1.0);
    }
    deltas[i] = out;
}
`

const wallPairShader = narrowPhaseCommon + `
struct WallPair {
    body: u32,
    wall: u32,
}

@group(0) @binding(0) var<storage, read> bodies: array<Body>;
@group(0) @binding(1) var<storage, read> pairs: array<WallPair>;
@group(0) @binding(2) var<storage, read_write> deltas: array<vec4<f32>>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= params.count) {
        return;
    }

    let p = pairs[i];
    let s = bodies[p.body];

    var n = vec3<f32>(0.0);
    var side = -1.0;
    if (p.wall % 2u == 1u) {
        side = 1.0;
    }
    n[p.wall / 2u] = side;

    var out = vec4<f32>(0.0);
    let vn = dot(s.vel, n);
    if (dot(s.pos, n) + s.radius > params.halfSize && vn > 0.0) {
        out = vec4<f32>(n * (-(1.0 + s.restitution) * vn), 1.0);
    }
    deltas[i] = out;
}
`

var kernelBindings = []wgpu.BufferBindingType{
	wgpu.BufferBindingTypeReadOnlyStorage,
	wgpu.BufferBindingTypeReadOnlyStorage,
	wgpu.BufferBindingTypeStorage,
	wgpu.BufferBindingTypeUniform,
}

// kernel is one compiled shader with its own buffer set.
type kernel struct {
	pipeline *Pipeline
	name     string

	pairs  *Buffer
	deltas *Buffer
	params *Buffer

	pairSize  uint64
	deltaSize uint64
}

// NarrowPhase resolves candidate pairs on the GPU. Not safe for concurrent use.
type NarrowPhase struct {
	system *System
	bodies *Buffer

	spheres kernel
	walls   kernel
}

// NewNarrowPhase compiles both kernels. Returns ErrUnavailable if Initialize
// has not succeeded.
func NewNarrowPhase() (*NarrowPhase, error) {
	sys := Get()
	if sys == nil {
		return nil, ErrUnavailable
	}

	np := &NarrowPhase{
		system: sys,
		spheres: kernel{
			name:      "sphere_pairs",
			pairSize:  uint64(unsafe.Sizeof(Pair{})),
			deltaSize: uint64(unsafe.Sizeof(PairDelta{})),
		},
		walls: kernel{
			name:      "wall_pairs",
			pairSize:  uint64(unsafe.Sizeof(WallPair{})),
			deltaSize: uint64(unsafe.Sizeof(Delta{})),
		},
	}

	var err error
	if np.spheres.pipeline, err = sys.CreatePipeline(np.spheres.name, spherePairShader, "main", kernelBindings); err != nil {
		return nil, err
	}
	if np.walls.pipeline, err = sys.CreatePipeline(np.walls.name, wallPairShader, "main", kernelBindings); err != nil {
		return nil, err
	}
	for _, k := range []*kernel{&np.spheres, &np.walls} {
		k.params, err = sys.CreateBuffer(k.name+"_params", paramsSize,
			wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
		if err != nil {
			np.Release()
			return nil, err
		}
	}
	return np, nil
}

// SpherePairs returns one PairDelta per pair, in pair order.
func (np *NarrowPhase) SpherePairs(bodies []Body, pairs []Pair, epsilon float32) ([]PairDelta, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := Params{Epsilon: epsilon, Count: uint32(len(pairs))}
	data, err := np.run(&np.spheres, bodies, ToBytes(pairs), len(pairs), params)
	if err != nil {
		return nil, err
	}
	return fromBytes[PairDelta](data), nil
}

// WallPairs returns one Delta per wall pair, in pair order.
func (np *NarrowPhase) WallPairs(bodies []Body, pairs []WallPair, halfSize float32) ([]Delta, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := Params{HalfSize: halfSize, Count: uint32(len(pairs))}
	data, err := np.run(&np.walls, bodies, ToBytes(pairs), len(pairs), params)
	if err != nil {
		return nil, err
	}
	return fromBytes[Delta](data), nil
}

func (np *NarrowPhase) run(k *kernel, bodies []Body, pairData []byte, count int, params Params) ([]byte, error) {
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%s: no bodies for %d pairs", k.name, count)
	}

	sys := np.system
	if err := np.ensure(&np.bodies, "bodies", uint64(len(bodies))*bodySize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if err := np.ensure(&k.pairs, k.name, uint64(count)*k.pairSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if err := np.ensure(&k.deltas, k.name+"_deltas", uint64(count)*k.deltaSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc); err != nil {
		return nil, err
	}

	sys.WriteBuffer(np.bodies, 0, ToBytes(bodies))
	sys.WriteBuffer(k.pairs, 0, pairData)
	sys.WriteBuffer(k.params, 0, ToBytes([]Params{params}))

	err := sys.Dispatch(DispatchParams{
		Pipeline:    k.pipeline,
		Buffers:     []*Buffer{np.bodies, k.pairs, k.deltas, k.params},
		WorkgroupsX: (uint32(count) + workgroupSize - 1) / workgroupSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.name, err)
	}

	data, err := sys.ReadBuffer(k.deltas, uint64(count)*k.deltaSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.name, err)
	}
	return data, nil
}

// ensure grows *buf to hold at least size bytes, doubling so repeated
// small growth does not reallocate every step.
func (np *NarrowPhase) ensure(buf **Buffer, label string, size uint64, usage wgpu.BufferUsage) error {
	if *buf != nil && (*buf).size >= size {
		return nil
	}
	capacity := uint64(minCapacity * 16)
	if *buf != nil {
		capacity = (*buf).size
	}
	for capacity < size {
		capacity *= 2
	}

	b, err := np.system.CreateBuffer(label, capacity, usage)
	if err != nil {
		return err
	}
	if *buf != nil {
		(*buf).Release()
	}
	*buf = b
	return nil
}

// Release frees the buffers. Pipelines stay cached on the System.
func (np *NarrowPhase) Release() {
	for _, b := range []*Buffer{np.bodies, np.spheres.pairs, np.spheres.deltas, np.spheres.params,
		np.walls.pairs, np.walls.deltas, np.walls.params} {
		if b != nil {
			b.Release()
		}
	}
	np.bodies = nil
	np.spheres = kernel{}
	np.walls = kernel{}
}
