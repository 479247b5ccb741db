package tables

import (
	"cmp"
	"slices"
)

// CompareEdges orders edges by (parent, child, right, left) ascending.
func CompareEdges(a, b Edge) int {
	if c := cmp.Compare(a.Parent, b.Parent); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Child, b.Child); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Right, b.Right); c != 0 {
		return c
	}
	return cmp.Compare(a.Left, b.Left)
}

// SortEdges sorts edges in place by (parent, child, right, left).
// This is the canonical order of simplified output.
func SortEdges(edges []Edge) {
	slices.SortFunc(edges, CompareEdges)
}

// Squash merges runs of edges that share parent and child and whose intervals
// touch (previous Right == next Left) into single edges. The input is not
// modified. Edges are sorted with [SortEdges] first, so the result is in
// canonical order.
//
// Squash is a post-processing step; simplification itself never squashes.
func Squash(edges []Edge) []Edge {
	if len(edges) == 0 {
		return nil
	}
	sorted := slices.Clone(edges)
	SortEdges(sorted)

	out := make([]Edge, 0, len(sorted))
	cur := sorted[0]
	for _, e := range sorted[1:] {
		if e.Parent == cur.Parent && e.Child == cur.Child && e.Left == cur.Right {
			cur.Right = e.Right
			continue
		}
		out = append(out, cur)
		cur = e
	}
	return append(out, cur)
}
