package compute

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedLayout(t *testing.T) {
	// Must match the WGSL structs byte for byte.
	if s := unsafe.Sizeof(Body{}); s != 48 {
		t.Errorf("Expected Body to be 48 bytes, got %d", s)
	}
	assert.Equal(t, uintptr(16), unsafe.Offsetof(Body{}.VX))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(Body{}.Restitution))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(Pair{}))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(WallPair{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(Delta{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(PairDelta{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(Params{}))
}

func TestNewNarrowPhaseWithoutDevice(t *testing.T) {
	if Get() != nil {
		t.Skip("compute system already initialized")
	}
	_, err := NewNarrowPhase()
	assert.ErrorIs(t, err, ErrUnavailable)
}

// newTestNarrowPhase skips when the machine has no usable adapter.
func newTestNarrowPhase(t *testing.T) *NarrowPhase {
	t.Helper()
	if _, err := Initialize(); err != nil {
		t.Skipf("no GPU adapter: %v", err)
	}
	np, err := NewNarrowPhase()
	require.NoError(t, err)
	t.Cleanup(np.Release)
	return np
}

func TestSpherePairsHeadOn(t *testing.T) {
	np := newTestNarrowPhase(t)

	bodies := []Body{
		{X: -0.9, Radius: 1, VX: 1, Mass: 1, Restitution: 1},
		{X: 0.9, Radius: 1, VX: -1, Mass: 1, Restitution: 1},
		{X: 5, Radius: 1, Mass: 1, Restitution: 1},
	}
	pairs := []Pair{{A: 0, B: 1}, {A: 0, B: 2}}

	deltas, err := np.SpherePairs(bodies, pairs, 1e-3)
	require.NoError(t, err)
	require.Len(t, deltas, 2)

	assert.Equal(t, float32(1), deltas[0].A.Hit)
	assert.InDelta(t, -2, deltas[0].A.X, 1e-5)
	assert.InDelta(t, 2, deltas[0].B.X, 1e-5)
	assert.Equal(t, float32(0), deltas[1].A.Hit)
}

func TestWallPairs(t *testing.T) {
	np := newTestNarrowPhase(t)

	bodies := []Body{
		{X: 5.5, Radius: 1, VX: 2, Mass: 1, Restitution: 0.5},
		{Y: -5.5, Radius: 1, VY: 1, Mass: 1, Restitution: 1},
	}
	pairs := []WallPair{{Body: 0, Wall: 1}, {Body: 1, Wall: 2}}

	deltas, err := np.WallPairs(bodies, pairs, 6)
	require.NoError(t, err)
	require.Len(t, deltas, 2)

	assert.Equal(t, float32(1), deltas[0].Hit)
	assert.InDelta(t, -3, deltas[0].X, 1e-5)
	// moving away from the floor
	assert.Equal(t, float32(0), deltas[1].Hit)
}

func TestBuffersGrow(t *testing.T) {
	np := newTestNarrowPhase(t)

	bodies := make([]Body, 200)
	pairs := make([]Pair, 0, 199)
	for i := range bodies {
		bodies[i] = Body{X: float32(i) * 10, Radius: 1, Mass: 1}
		if i > 0 {
			pairs = append(pairs, Pair{A: uint32(i - 1), B: uint32(i)})
		}
	}

	deltas, err := np.SpherePairs(bodies, pairs, 1e-3)
	require.NoError(t, err)
	assert.Len(t, deltas, len(pairs))
	for i, d := range deltas {
		if d.A.Hit != 0 {
			t.Errorf("Expected no hit for separated pair %d", i)
		}
	}
}
