package physics

// CandidatePair is two spheres the broad phase thinks might be touching.
// A is always the smaller ID.
type CandidatePair struct {
	A, B SphereID
}

// makePair orders the IDs so each unordered pair has exactly one representation.
func makePair(a, b SphereID) CandidatePair {
	if a > b {
		return CandidatePair{A: b, B: a}
	}
	return CandidatePair{A: a, B: b}
}

func (p CandidatePair) key() uint64 {
	return uint64(uint32(p.A))<<32 | uint64(uint32(p.B))
}

// CandidateWallPair is a sphere that might be touching a wall.
type CandidateWallPair struct {
	Sphere SphereID
	Wall   Wall
}
