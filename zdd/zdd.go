// Package zdd implements zero-suppressed decision diagrams: canonical
// representations of families of sets over a fixed universe of variables,
// with the usual family algebra. Nodes are hash-consed in a unique table, so
// two identifiers are equal if and only if they denote the same family.
package zdd

import "github.com/sirupsen/logrus"

// NodeID identifies a family of sets within a Base. IDs are stable for the
// lifetime of the Base.
type NodeID uint32

const (
	// bottom is the empty family.
	bottom NodeID = 0

	// top is the family containing only the empty set.
	top NodeID = 1
)

// node is a ZDD node: sets containing vr (continued in hi) plus sets without
// it (lo). The two terminals use the number of variables as their vr so that
// recursions on the minimum top variable handle them without special cases.
type node struct {
	vr uint32
	hi NodeID
	lo NodeID
}

type op uint8

const (
	opUnion op = iota
	opIntersection
	opDifference
	opJoin
	opMeet
	opChoose
	opNonSubsets
	opNonSupersets
)

type cacheKey struct {
	op   op
	a, b NodeID
}

// cacheCapacity bounds the apply caches. When a cache grows past it, the
// cache is dropped wholesale; results are recomputed on demand.
const cacheCapacity = 1 << 20

// Base owns a universe of variables, the unique table and the operation
// caches. It must be used from a single goroutine.
type Base struct {
	numVars uint32
	nodes   []node
	unique  map[node]NodeID
	cache   map[cacheKey]NodeID

	// tauts[v] is the power set of the variables >= v.
	tauts []NodeID
}

// New returns a base over numVars variables, with the two terminals, one
// elementary node per variable and the tautology chain pre-built.
func New(numVars int) *Base {
	if numVars < 0 {
		numVars = 0
	}
	b := &Base{
		numVars: uint32(numVars),
		unique:  make(map[node]NodeID),
		cache:   make(map[cacheKey]NodeID),
	}
	b.nodes = append(b.nodes,
		node{vr: b.numVars, hi: bottom, lo: bottom},
		node{vr: b.numVars, hi: top, lo: top},
	)
	for v := uint32(0); v < b.numVars; v++ {
		b.makeNode(v, top, bottom)
	}
	b.tauts = make([]NodeID, numVars+1)
	b.tauts[numVars] = top
	for v := numVars - 1; v >= 0; v-- {
		b.tauts[v] = b.makeNode(uint32(v), b.tauts[v+1], b.tauts[v+1])
	}
	return b
}

// makeNode interns the node (v, hi, lo), applying the zero-suppression rule:
// a node whose then-child is the empty family is its else-child.
func (b *Base) makeNode(v uint32, hi, lo NodeID) NodeID {
	if hi == bottom {
		return lo
	}
	key := node{vr: v, hi: hi, lo: lo}
	if id, ok := b.unique[key]; ok {
		return id
	}
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, key)
	b.unique[key] = id
	return id
}

// NumVariables returns the size of the universe.
func (b *Base) NumVariables() int {
	return int(b.numVars)
}

// NumNodes returns the number of non-terminal nodes created so far.
func (b *Base) NumNodes() int {
	return len(b.nodes) - 2
}

// Bottom returns the empty family.
func (b *Base) Bottom() NodeID {
	return bottom
}

// Top returns the family containing only the empty set.
func (b *Base) Top() NodeID {
	return top
}

// Elementary returns the family containing only the singleton {v}.
func (b *Base) Elementary(v int) NodeID {
	if v < 0 || uint32(v) >= b.numVars {
		logrus.Fatalf("zdd: Elementary(%d) out of range [0, %d)", v, b.numVars)
	}
	return NodeID(v + 2)
}

// Tautology returns the power set of all declared variables.
func (b *Base) Tautology() NodeID {
	return b.tauts[0]
}

func (b *Base) cached(key cacheKey) (NodeID, bool) {
	id, ok := b.cache[key]
	return id, ok
}

func (b *Base) memoize(key cacheKey, id NodeID) NodeID {
	if len(b.cache) >= cacheCapacity {
		b.cache = make(map[cacheKey]NodeID)
	}
	b.cache[key] = id
	return id
}

// commute orders the operands of a commutative operation so that both
// argument orders hit the same cache entry.
func commute(x, y NodeID) (NodeID, NodeID) {
	if x > y {
		return y, x
	}
	return x, y
}

// Union returns the family of sets belonging to a or to c.
func (b *Base) Union(a, c NodeID) NodeID {
	if a == bottom {
		return c
	}
	if c == bottom || a == c {
		return a
	}
	x, y := commute(a, c)
	key := cacheKey{opUnion, x, y}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[x], b.nodes[y]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.makeNode(na.vr, na.hi, b.Union(na.lo, y))
	case na.vr > nc.vr:
		r = b.makeNode(nc.vr, nc.hi, b.Union(x, nc.lo))
	default:
		r = b.makeNode(na.vr, b.Union(na.hi, nc.hi), b.Union(na.lo, nc.lo))
	}
	return b.memoize(key, r)
}

// Intersection returns the family of sets belonging to both a and c.
func (b *Base) Intersection(a, c NodeID) NodeID {
	if a == bottom || c == bottom {
		return bottom
	}
	if a == c {
		return a
	}
	x, y := commute(a, c)
	key := cacheKey{opIntersection, x, y}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[x], b.nodes[y]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.Intersection(na.lo, y)
	case na.vr > nc.vr:
		r = b.Intersection(x, nc.lo)
	default:
		r = b.makeNode(na.vr, b.Intersection(na.hi, nc.hi), b.Intersection(na.lo, nc.lo))
	}
	return b.memoize(key, r)
}

// Difference returns the family of sets belonging to a but not to c.
func (b *Base) Difference(a, c NodeID) NodeID {
	if a == bottom || a == c {
		return bottom
	}
	if c == bottom {
		return a
	}
	key := cacheKey{opDifference, a, c}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[a], b.nodes[c]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.makeNode(na.vr, na.hi, b.Difference(na.lo, c))
	case na.vr > nc.vr:
		r = b.Difference(a, nc.lo)
	default:
		r = b.makeNode(na.vr, b.Difference(na.hi, nc.hi), b.Difference(na.lo, nc.lo))
	}
	return b.memoize(key, r)
}

// Join returns the family of pairwise unions { x U y | x in a, y in c }.
func (b *Base) Join(a, c NodeID) NodeID {
	if a == bottom || c == bottom {
		return bottom
	}
	if a == top {
		return c
	}
	if c == top {
		return a
	}
	x, y := commute(a, c)
	key := cacheKey{opJoin, x, y}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[x], b.nodes[y]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.makeNode(na.vr, b.Join(na.hi, y), b.Join(na.lo, y))
	case na.vr > nc.vr:
		r = b.makeNode(nc.vr, b.Join(x, nc.hi), b.Join(x, nc.lo))
	default:
		hi := b.Union(b.Join(na.hi, nc.hi), b.Union(b.Join(na.hi, nc.lo), b.Join(na.lo, nc.hi)))
		r = b.makeNode(na.vr, hi, b.Join(na.lo, nc.lo))
	}
	return b.memoize(key, r)
}

// Meet returns the family of pairwise intersections { x ^ y | x in a, y in c }.
func (b *Base) Meet(a, c NodeID) NodeID {
	if a == bottom || c == bottom {
		return bottom
	}
	if a == top || c == top {
		return top
	}
	x, y := commute(a, c)
	key := cacheKey{opMeet, x, y}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[x], b.nodes[y]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.Meet(b.Union(na.hi, na.lo), y)
	case na.vr > nc.vr:
		r = b.Meet(x, b.Union(nc.hi, nc.lo))
	default:
		lo := b.Union(b.Meet(na.hi, nc.lo), b.Union(b.Meet(na.lo, nc.hi), b.Meet(na.lo, nc.lo)))
		r = b.makeNode(na.vr, b.Meet(na.hi, nc.hi), lo)
	}
	return b.memoize(key, r)
}

// Choose returns the ways of picking exactly k elements along the family's
// else-chain: for a union of elementaries this is the family of all
// k-element subsets of the involved variables.
func (b *Base) Choose(a NodeID, k int) NodeID {
	if k == 0 {
		return top
	}
	if a <= top {
		return bottom
	}
	key := cacheKey{opChoose, a, NodeID(k)}
	if id, ok := b.cached(key); ok {
		return id
	}
	n := b.nodes[a]
	r := b.makeNode(n.vr, b.Choose(n.lo, k-1), b.Choose(n.lo, k))
	return b.memoize(key, r)
}

// NonSubsets returns the sets of a that are not a subset of any set of c.
func (b *Base) NonSubsets(a, c NodeID) NodeID {
	if c == bottom {
		return a
	}
	if a == bottom || a == c || a == top {
		// The empty set is a subset of every set, and c is not empty here.
		return bottom
	}
	key := cacheKey{opNonSubsets, a, c}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[a], b.nodes[c]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		// No set of c contains na.vr, so every set of a that does survives.
		r = b.makeNode(na.vr, na.hi, b.NonSubsets(na.lo, c))
	case na.vr > nc.vr:
		r = b.NonSubsets(a, b.Union(nc.hi, nc.lo))
	default:
		hi := b.NonSubsets(na.hi, nc.hi)
		lo := b.NonSubsets(na.lo, b.Union(nc.hi, nc.lo))
		r = b.makeNode(na.vr, hi, lo)
	}
	return b.memoize(key, r)
}

// NonSupersets returns the sets of a that are not a superset of any set of c.
func (b *Base) NonSupersets(a, c NodeID) NodeID {
	if c == bottom {
		return a
	}
	if a == bottom || a == c || c == top {
		// Every set is a superset of the empty set.
		return bottom
	}
	key := cacheKey{opNonSupersets, a, c}
	if id, ok := b.cached(key); ok {
		return id
	}
	na, nc := b.nodes[a], b.nodes[c]
	var r NodeID
	switch {
	case na.vr < nc.vr:
		r = b.makeNode(na.vr, b.NonSupersets(na.hi, c), b.NonSupersets(na.lo, c))
	case na.vr > nc.vr:
		// Sets of c containing nc.vr cannot be contained in any set of a,
		// so only c's else-branch constrains a.
		r = b.NonSupersets(a, nc.lo)
	default:
		// Sets containing the variable must avoid supersets of both
		// branches of c; sets without it only compete with c's else-branch.
		hi := b.Intersection(b.NonSupersets(na.hi, nc.hi), b.NonSupersets(na.hi, nc.lo))
		r = b.makeNode(na.vr, hi, b.NonSupersets(na.lo, nc.lo))
	}
	return b.memoize(key, r)
}
