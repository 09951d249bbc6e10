package zdd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CountSets returns the number of sets in the family.
func (b *Base) CountSets(a NodeID) uint64 {
	memo := make(map[NodeID]uint64)
	var count func(NodeID) uint64
	count = func(id NodeID) uint64 {
		switch id {
		case bottom:
			return 0
		case top:
			return 1
		}
		if c, ok := memo[id]; ok {
			return c
		}
		n := b.nodes[id]
		c := count(n.hi) + count(n.lo)
		memo[id] = c
		return c
	}
	return count(a)
}

// CountNodes returns the number of non-terminal nodes reachable from a.
func (b *Base) CountNodes(a NodeID) int {
	visited := make(map[NodeID]struct{})
	var visit func(NodeID)
	visit = func(id NodeID) {
		if id <= top {
			return
		}
		if _, ok := visited[id]; ok {
			return
		}
		visited[id] = struct{}{}
		visit(b.nodes[id].hi)
		visit(b.nodes[id].lo)
	}
	visit(a)
	return len(visited)
}

// forEachSet visits every set of the family, else-branch first, handing each
// visit a scratch slice valid only for the duration of the call.
func (b *Base) forEachSet(a NodeID, fn func(set []uint32)) {
	var prefix []uint32
	var walk func(NodeID)
	walk = func(id NodeID) {
		switch id {
		case bottom:
			return
		case top:
			fn(prefix)
			return
		}
		n := b.nodes[id]
		walk(n.lo)
		prefix = append(prefix, n.vr)
		walk(n.hi)
		prefix = prefix[:len(prefix)-1]
	}
	walk(a)
}

// Sets returns every set of the family, in the same order as PrintSets.
func (b *Base) Sets(a NodeID) [][]uint32 {
	var out [][]uint32
	b.forEachSet(a, func(set []uint32) {
		out = append(out, append([]uint32(nil), set...))
	})
	return out
}

// PrintSets writes the family one set per line, e.g. "{ 1, 2 }".
func (b *Base) PrintSets(a NodeID, w io.Writer) error {
	var err error
	b.forEachSet(a, func(set []uint32) {
		if err != nil {
			return
		}
		elems := make([]string, len(set))
		for i, v := range set {
			elems[i] = strconv.FormatUint(uint64(v), 10)
		}
		_, err = fmt.Fprintf(w, "{ %s }\n", strings.Join(elems, ", "))
	})
	return err
}
