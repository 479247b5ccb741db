package tables

import (
	"container/heap"

	"github.com/matzehuels/coalesce/pkg/errors"
)

// CheckOrder verifies the index precondition of the simplification sweep:
// every edge's child index is strictly larger than its parent index.
// Returns INVALID_ORDER naming the first offending edge.
//
// Edges must already be valid (see [ValidateEdges]).
func CheckOrder(edges []Edge) error {
	for i, e := range edges {
		if e.Child <= e.Parent {
			return errors.New(errors.ErrCodeInvalidOrder,
				"edge %d (%s): child index must be greater than parent index", i, e)
		}
	}
	return nil
}

// Reorder computes a node permutation under which every parent precedes all of
// its children. perm[old] is the new index of node old.
//
// Among nodes whose parents are all placed, older nodes (larger Time) come
// first, then smaller original indices. Tables that already satisfy
// [CheckOrder] with times non-increasing by index are left unchanged.
//
// Reorder uses Kahn's algorithm in O((N+E) log N) time and returns
// INVALID_ORDER if the edges contain a directed cycle.
func Reorder(nodes []Node, edges []Edge) ([]int, error) {
	n := len(nodes)
	pending := make([]int, n)
	children := make([][]int, n)
	for _, e := range edges {
		pending[e.Child]++
		children[e.Parent] = append(children[e.Parent], e.Child)
	}

	ready := &readyHeap{nodes: nodes}
	for u := range n {
		if pending[u] == 0 {
			ready.ids = append(ready.ids, u)
		}
	}
	heap.Init(ready)

	perm := make([]int, n)
	placed := 0
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		perm[u] = placed
		placed++
		for _, c := range children[u] {
			pending[c]--
			if pending[c] == 0 {
				heap.Push(ready, c)
			}
		}
	}

	if placed != n {
		return nil, errors.New(errors.ErrCodeInvalidOrder,
			"edges contain a cycle (%d of %d nodes orderable)", placed, n)
	}
	return perm, nil
}

// Permute returns a new collection with node i moved to index perm[i] and all
// edge endpoints rewritten accordingly. Edge row order is preserved.
//
// perm must be a permutation of [0, len(tc.Nodes)) such as one returned by
// [Reorder]; otherwise INVALID_INPUT is returned.
func Permute(tc *TableCollection, perm []int) (*TableCollection, error) {
	if len(perm) != len(tc.Nodes) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"permutation has %d entries, want %d", len(perm), len(tc.Nodes))
	}
	out := &TableCollection{
		GenomeLength: tc.GenomeLength,
		Nodes:        make([]Node, len(tc.Nodes)),
		Edges:        make([]Edge, len(tc.Edges)),
	}
	seen := make([]bool, len(perm))
	for old, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"perm[%d] = %d is not a permutation entry", old, p)
		}
		seen[p] = true
		out.Nodes[p] = tc.Nodes[old]
	}
	for i, e := range tc.Edges {
		e.Parent = perm[e.Parent]
		e.Child = perm[e.Child]
		out.Edges[i] = e
	}
	return out, nil
}

// Inverse returns the inverse of a permutation: inv[perm[i]] = i.
func Inverse(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

type readyHeap struct {
	nodes []Node
	ids   []int
}

func (h *readyHeap) Len() int { return len(h.ids) }
func (h *readyHeap) Less(i, j int) bool {
	a, b := h.ids[i], h.ids[j]
	if h.nodes[a].Time != h.nodes[b].Time {
		return h.nodes[a].Time > h.nodes[b].Time
	}
	return a < b
}
func (h *readyHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *readyHeap) Push(x any)   { h.ids = append(h.ids, x.(int)) }
func (h *readyHeap) Pop() any {
	old := h.ids
	n := len(old)
	x := old[n-1]
	h.ids = old[:n-1]
	return x
}
