package physics

import (
	"slices"

	"ballroom/internal/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// nodeID addresses a node in the octree arena. The root is always node 0.
type nodeID int32

const (
	rootNode nodeID = 0
	noNode   nodeID = -1
)

var leafChildren = [8]nodeID{noNode, noNode, noNode, noNode, noNode, noNode, noNode, noNode}

type node struct {
	bounds   AABB
	center   rl.Vector3
	depth    int
	count    int        // distinct spheres in this subtree
	children [8]nodeID  // all noNode for a leaf
	spheres  []SphereID // sorted, leaves only
}

func (n *node) leaf() bool {
	return n.children[0] == noNode
}

// BoundsSource resolves a sphere handle to its current center and radius.
// The index never stores sphere data itself.
type BoundsSource interface {
	Bounds(id SphereID) (center rl.Vector3, radius float32)
}

// SpatialIndex is an occupancy-driven octree over a fixed cubic domain.
//
// Leaves split into eight octants once they hold more than SplitThreshold
// spheres (unless already at MaxDepth) and internal nodes collapse back into a
// leaf once their subtree drops below CollapseThreshold. A sphere whose
// bounding box straddles a split plane is referenced by every leaf it overlaps.
type SpatialIndex struct {
	cfg    config.OctreeConfig
	source BoundsSource

	nodes []node
	free  []nodeID // first node of each released 8-node block

	members map[SphereID]struct{}

	// query scratch
	pairSeen map[uint64]struct{}
	wallSeen map[SphereID]struct{}
	gathered []SphereID
}

// NewSpatialIndex creates an empty index covering bounds.
func NewSpatialIndex(bounds AABB, cfg config.OctreeConfig, source BoundsSource) *SpatialIndex {
	t := &SpatialIndex{
		cfg:      cfg,
		source:   source,
		members:  make(map[SphereID]struct{}),
		pairSeen: make(map[uint64]struct{}),
		wallSeen: make(map[SphereID]struct{}),
	}
	t.nodes = append(t.nodes, node{
		bounds:   bounds,
		center:   bounds.Center(),
		children: leafChildren,
	})
	return t
}

// Len is the number of spheres currently indexed.
func (t *SpatialIndex) Len() int {
	return len(t.members)
}

// Contains reports whether id is indexed.
func (t *SpatialIndex) Contains(id SphereID) bool {
	_, ok := t.members[id]
	return ok
}

// Insert adds a sphere at its current position. Inserting an indexed sphere is a no-op.
func (t *SpatialIndex) Insert(id SphereID) bool {
	if t.Contains(id) {
		return false
	}
	t.members[id] = struct{}{}
	pos, r := t.source.Bounds(id)
	t.insert(rootNode, id, pos, r)
	return true
}

// Remove takes a sphere out of every leaf it overlapped at lastKnown, which
// must be the position it was inserted or last updated at.
func (t *SpatialIndex) Remove(id SphereID, lastKnown rl.Vector3) bool {
	if !t.Contains(id) {
		return false
	}
	delete(t.members, id)
	_, r := t.source.Bounds(id)
	t.remove(rootNode, id, lastKnown, r)
	return true
}

// Update re-files a sphere that moved away from previous.
func (t *SpatialIndex) Update(id SphereID, previous rl.Vector3) {
	t.Remove(id, previous)
	t.Insert(id)
}

// overlapMask returns a bit per octant of a node centered at c that the
// sphere's bounding box touches.
func overlapMask(c, pos rl.Vector3, r float32) uint8 {
	mask := uint8(0xff)
	for axis := 0; axis < 3; axis++ {
		p, m := component(pos, axis), component(c, axis)
		bit := 1 << axis
		for o := 0; o < 8; o++ {
			upper := o&bit != 0
			if (!upper && p > m+r) || (upper && p < m-r) {
				mask &^= 1 << o
			}
		}
	}
	return mask
}

func (t *SpatialIndex) insert(n nodeID, id SphereID, pos rl.Vector3, r float32) {
	nd := &t.nodes[n]
	nd.count++
	if nd.leaf() && nd.depth < t.cfg.MaxDepth && nd.count > t.cfg.SplitThreshold {
		t.split(n)
		nd = &t.nodes[n]
	}
	if nd.leaf() {
		nd.spheres = insertSorted(nd.spheres, id)
		return
	}

	children, mask := nd.children, overlapMask(nd.center, pos, r)
	for o, c := range children {
		if mask&(1<<o) != 0 {
			t.insert(c, id, pos, r)
		}
	}
}

func (t *SpatialIndex) remove(n nodeID, id SphereID, pos rl.Vector3, r float32) {
	nd := &t.nodes[n]
	nd.count--
	if nd.leaf() {
		nd.spheres = removeSorted(nd.spheres, id)
		return
	}
	if nd.count < t.cfg.CollapseThreshold {
		t.collapse(n)
		nd = &t.nodes[n]
		nd.spheres = removeSorted(nd.spheres, id)
		return
	}

	children, mask := nd.children, overlapMask(nd.center, pos, r)
	for o, c := range children {
		if mask&(1<<o) != 0 {
			t.remove(c, id, pos, r)
		}
	}
}

// split turns leaf n into an internal node and redistributes its spheres.
func (t *SpatialIndex) split(n nodeID) {
	first := t.allocBlock()

	nd := &t.nodes[n]
	for o := range nd.children {
		c := first + nodeID(o)
		b := nd.bounds.Octant(o)
		t.nodes[c] = node{
			bounds:   b,
			center:   b.Center(),
			depth:    nd.depth + 1,
			children: leafChildren,
		}
		nd.children[o] = c
	}

	held := nd.spheres
	nd.spheres = nil
	children, center := nd.children, nd.center
	for _, id := range held {
		pos, r := t.source.Bounds(id)
		mask := overlapMask(center, pos, r)
		for o, c := range children {
			if mask&(1<<o) != 0 {
				t.insert(c, id, pos, r)
			}
		}
	}
}

// collapse pulls every sphere below n into n and releases its children.
func (t *SpatialIndex) collapse(n nodeID) {
	t.gathered = t.gathered[:0]
	t.gather(n)
	slices.Sort(t.gathered)
	ids := slices.Clone(slices.Compact(t.gathered))

	children := t.nodes[n].children
	t.releaseBlock(children[0])

	nd := &t.nodes[n]
	nd.children = leafChildren
	nd.spheres = ids
}

func (t *SpatialIndex) gather(n nodeID) {
	nd := &t.nodes[n]
	if nd.leaf() {
		t.gathered = append(t.gathered, nd.spheres...)
		return
	}
	for _, c := range nd.children {
		t.gather(c)
	}
}

// allocBlock hands out eight consecutive nodes, reusing released blocks first.
func (t *SpatialIndex) allocBlock() nodeID {
	if k := len(t.free); k > 0 {
		first := t.free[k-1]
		t.free = t.free[:k-1]
		return first
	}
	first := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, make([]node, 8)...)
	return first
}

func (t *SpatialIndex) releaseBlock(first nodeID) {
	for o := nodeID(0); o < 8; o++ {
		nd := &t.nodes[first+o]
		if !nd.leaf() {
			t.releaseBlock(nd.children[0])
		}
		t.nodes[first+o] = node{children: leafChildren}
	}
	t.free = append(t.free, first)
}

// CandidatePairs returns every unordered pair of spheres sharing a leaf.
// Each pair appears once even when both spheres straddle several leaves.
func (t *SpatialIndex) CandidatePairs() []CandidatePair {
	clear(t.pairSeen)
	var pairs []CandidatePair
	t.collectPairs(rootNode, &pairs)
	return pairs
}

func (t *SpatialIndex) collectPairs(n nodeID, out *[]CandidatePair) {
	nd := &t.nodes[n]
	if !nd.leaf() {
		for _, c := range nd.children {
			t.collectPairs(c, out)
		}
		return
	}

	for i, a := range nd.spheres {
		for _, b := range nd.spheres[i+1:] {
			p := makePair(a, b)
			k := p.key()
			if _, dup := t.pairSeen[k]; dup {
				continue
			}
			t.pairSeen[k] = struct{}{}
			*out = append(*out, p)
		}
	}
}

// CandidateWallPairs returns, for each wall, every sphere filed in a leaf
// that touches that wall's plane. A sphere appears at most once per wall.
func (t *SpatialIndex) CandidateWallPairs() []CandidateWallPair {
	var pairs []CandidateWallPair
	for _, w := range Walls {
		clear(t.wallSeen)
		t.collectWall(rootNode, w, &pairs)
	}
	return pairs
}

func (t *SpatialIndex) collectWall(n nodeID, w Wall, out *[]CandidateWallPair) {
	nd := &t.nodes[n]
	if nd.leaf() {
		for _, id := range nd.spheres {
			if _, dup := t.wallSeen[id]; dup {
				continue
			}
			t.wallSeen[id] = struct{}{}
			*out = append(*out, CandidateWallPair{Sphere: id, Wall: w})
		}
		return
	}

	bit, upper := 1<<w.Axis(), w.Positive()
	for o, c := range nd.children {
		if (o&bit != 0) == upper {
			t.collectWall(c, w, out)
		}
	}
}

// LeafCount is the number of leaves in the tree.
func (t *SpatialIndex) LeafCount() int {
	return t.countLeaves(rootNode)
}

func (t *SpatialIndex) countLeaves(n nodeID) int {
	nd := &t.nodes[n]
	if nd.leaf() {
		return 1
	}
	total := 0
	for _, c := range nd.children {
		total += t.countLeaves(c)
	}
	return total
}

// Depth is the depth of the deepest leaf; a lone root has depth 0.
func (t *SpatialIndex) Depth() int {
	return t.maxDepth(rootNode)
}

func (t *SpatialIndex) maxDepth(n nodeID) int {
	nd := &t.nodes[n]
	if nd.leaf() {
		return nd.depth
	}
	deepest := 0
	for _, c := range nd.children {
		deepest = max(deepest, t.maxDepth(c))
	}
	return deepest
}

func insertSorted(ids []SphereID, id SphereID) []SphereID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

func removeSorted(ids []SphereID, id SphereID) []SphereID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
