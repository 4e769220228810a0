package matching

// pairKey is the direction-independent identity of an employee pair.
type pairKey struct {
	lo, hi string
}

func normalize(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// PairSet indexes already-confirmed pairs for O(1) duplicate lookups. Keys
// are normalized to (min, max) so (a, b) and (b, a) resolve to the same
// entry. The set is cheap to build and is rebuilt from the store on every
// matching run; it must never be cached across requests.
type PairSet struct {
	keys map[pairKey]struct{}
}

// NewPairSet builds an index from existing (employee1, employee2) pairs.
func NewPairSet(pairs [][2]string) *PairSet {
	s := &PairSet{keys: make(map[pairKey]struct{}, len(pairs))}
	for _, p := range pairs {
		s.Add(p[0], p[1])
	}
	return s
}

// Add records a pair regardless of direction.
func (s *PairSet) Add(a, b string) {
	s.keys[normalize(a, b)] = struct{}{}
}

// Contains reports whether the pair exists in either direction.
func (s *PairSet) Contains(a, b string) bool {
	_, ok := s.keys[normalize(a, b)]
	return ok
}

// Len returns the number of distinct pairs in the set.
func (s *PairSet) Len() int {
	return len(s.keys)
}
