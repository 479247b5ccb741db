package nodelink

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/coalesce/pkg/tables"
)

// Options configures diagram generation.
type Options struct {
	// Intervals labels every arrow with the intervals of its edges.
	Intervals bool

	// Times adds the node time to every node label.
	Times bool

	// RankByTime places nodes with equal time on the same row.
	RankByTime bool
}

type pair struct{ parent, child int }

// ToDOT converts a node and edge table to Graphviz DOT source.
func ToDOT(nodes []tables.Node, edges []tables.Edge, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=18];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("\n")

	for id, n := range nodes {
		fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(nodeAttrs(id, n, opts), ", "))
	}

	if opts.RankByTime {
		buf.WriteString("\n")
		for _, ids := range rankGroups(nodes) {
			if len(ids) < 2 {
				continue
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprint(id)
			}
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(parts, "; "))
		}
	}

	buf.WriteString("\n")
	intervals := groupIntervals(edges)
	for _, p := range slices.SortedFunc(maps.Keys(intervals), comparePairs) {
		if opts.Intervals {
			fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", p.parent, p.child, strings.Join(intervals[p], " "))
		} else {
			fmt.Fprintf(&buf, "  %d -> %d;\n", p.parent, p.child)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id int, n tables.Node, opts Options) []string {
	label := fmt.Sprint(id)
	if opts.Times {
		label = fmt.Sprintf("%d\nt=%d", id, n.Time)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Flags&tables.FlagSample != 0 {
		attrs = append(attrs, "shape=box", "fillcolor=lightblue")
	}
	return attrs
}

// groupIntervals collects "[l, r)" labels per parent/child pair, ordered by
// left coordinate.
func groupIntervals(edges []tables.Edge) map[pair][]string {
	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, func(a, b tables.Edge) int { return cmp.Compare(a.Left, b.Left) })

	out := make(map[pair][]string)
	for _, e := range sorted {
		p := pair{e.Parent, e.Child}
		out[p] = append(out[p], fmt.Sprintf("[%d, %d)", e.Left, e.Right))
	}
	return out
}

func comparePairs(a, b pair) int {
	if c := cmp.Compare(a.parent, b.parent); c != 0 {
		return c
	}
	return cmp.Compare(a.child, b.child)
}

// rankGroups returns node ids grouped by time, oldest first.
func rankGroups(nodes []tables.Node) [][]int {
	byTime := make(map[int64][]int)
	for id, n := range nodes {
		byTime[n.Time] = append(byTime[n.Time], id)
	}
	times := slices.Sorted(maps.Keys(byTime))
	slices.Reverse(times)

	groups := make([][]int, len(times))
	for i, t := range times {
		groups[i] = byTime[t]
	}
	return groups
}
