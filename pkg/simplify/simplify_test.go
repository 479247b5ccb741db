package simplify

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/coalesce/pkg/errors"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// referenceTables is the six-node genealogy used throughout the docs:
// samples 4 and 5 coalesce in node 3 over [60, 100) and in node 1 over [50, 60).
func referenceTables() ([]tables.Node, []tables.Edge) {
	nodes := []tables.Node{{Time: 2}, {Time: 2}, {Time: 1}, {Time: 1}, {Time: 0}, {Time: 0}}
	edges := []tables.Edge{
		{Left: 0, Right: 50, Parent: 0, Child: 2},
		{Left: 50, Right: 100, Parent: 1, Child: 2},
		{Left: 0, Right: 100, Parent: 1, Child: 3},
		{Left: 0, Right: 60, Parent: 2, Child: 5},
		{Left: 0, Right: 100, Parent: 3, Child: 4},
		{Left: 60, Right: 100, Parent: 3, Child: 5},
	}
	return nodes, edges
}

func TestSimplifyReference(t *testing.T) {
	nodes, edges := referenceTables()
	res, err := Simplify([]int{4, 5}, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	wantNodes := []tables.Node{
		{Time: 0, Flags: tables.FlagSample},
		{Time: 0, Flags: tables.FlagSample},
		{Time: 1},
		{Time: 2},
	}
	if !slices.Equal(res.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", res.Nodes, wantNodes)
	}

	wantEdges := []tables.Edge{
		{Left: 60, Right: 100, Parent: 2, Child: 0},
		{Left: 60, Right: 100, Parent: 2, Child: 1},
		{Left: 50, Right: 60, Parent: 3, Child: 0},
		{Left: 50, Right: 60, Parent: 3, Child: 1},
	}
	if !slices.Equal(res.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", res.Edges, wantEdges)
	}

	wantIDMap := []int{tables.NullNode, 3, tables.NullNode, 2, 0, 1}
	if !slices.Equal(res.IDMap, wantIDMap) {
		t.Errorf("IDMap = %v, want %v", res.IDMap, wantIDMap)
	}

	wantAncestry := [][]Segment{
		{{0, 50, 1}},
		{{0, 50, 0}, {50, 60, 3}, {60, 100, 2}},
		{{0, 60, 1}},
		{{0, 60, 0}, {60, 100, 2}},
		{{0, 100, 0}},
		{{0, 100, 1}},
	}
	for u, want := range wantAncestry {
		if !slices.Equal(res.Ancestry[u], want) {
			t.Errorf("Ancestry[%d] = %v, want %v", u, res.Ancestry[u], want)
		}
	}

	st := res.Stats()
	if st != (Stats{Nodes: 4, Edges: 4, Samples: 2, Coalescences: 2}) {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestSimplifySampleOrder(t *testing.T) {
	nodes, edges := referenceTables()
	res, err := Simplify([]int{5, 4}, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.IDMap[5] != 0 || res.IDMap[4] != 1 {
		t.Errorf("IDMap = %v, want sample 5 -> 0 and 4 -> 1", res.IDMap)
	}
	if len(res.Edges) != 4 {
		t.Errorf("len(Edges) = %d, want 4", len(res.Edges))
	}
}

func TestSimplifyNoEdges(t *testing.T) {
	nodes, _ := referenceTables()
	res, err := Simplify([]int{4, 5}, nodes, nil, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	want := []tables.Node{{Time: 0, Flags: tables.FlagSample}, {Time: 0, Flags: tables.FlagSample}}
	if !slices.Equal(res.Nodes, want) {
		t.Errorf("Nodes = %+v, want %+v", res.Nodes, want)
	}
	if len(res.Edges) != 0 {
		t.Errorf("Edges = %v, want none", res.Edges)
	}
	for u := range 4 {
		if len(res.Ancestry[u]) != 0 {
			t.Errorf("Ancestry[%d] = %v, want empty", u, res.Ancestry[u])
		}
	}
}

func TestSimplifyNoSamples(t *testing.T) {
	nodes, edges := referenceTables()
	res, err := Simplify(nil, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("Simplify(no samples) = %d nodes, %d edges, want none", len(res.Nodes), len(res.Edges))
	}
}

func TestSimplifySingleLineage(t *testing.T) {
	// A chain 0 -> 1 -> 2 never coalesces.
	nodes := []tables.Node{{Time: 2}, {Time: 1}, {Time: 0}}
	edges := []tables.Edge{{Left: 0, Right: 10, Parent: 0, Child: 1}, {Left: 0, Right: 10, Parent: 1, Child: 2}}

	res, err := Simplify([]int{2}, nodes, edges, 10)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if len(res.Nodes) != 1 || len(res.Edges) != 0 {
		t.Errorf("got %d nodes, %d edges, want 1 and 0", len(res.Nodes), len(res.Edges))
	}
	for u := range 3 {
		if want := []Segment{{0, 10, 0}}; !slices.Equal(res.Ancestry[u], want) {
			t.Errorf("Ancestry[%d] = %v, want %v", u, res.Ancestry[u], want)
		}
	}
}

func TestSimplifyPartialOverlap(t *testing.T) {
	// Two samples inherit from node 0 over [0, 70) and [30, 100).
	nodes := []tables.Node{{Time: 1}, {Time: 0}, {Time: 0}}
	edges := []tables.Edge{
		{Left: 0, Right: 70, Parent: 0, Child: 1},
		{Left: 30, Right: 100, Parent: 0, Child: 2},
	}

	res, err := Simplify([]int{1, 2}, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	wantEdges := []tables.Edge{
		{Left: 30, Right: 70, Parent: 2, Child: 0},
		{Left: 30, Right: 70, Parent: 2, Child: 1},
	}
	if !slices.Equal(res.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", res.Edges, wantEdges)
	}
	wantAncestry := []Segment{{0, 30, 0}, {30, 70, 2}, {70, 100, 1}}
	if !slices.Equal(res.Ancestry[0], wantAncestry) {
		t.Errorf("Ancestry[0] = %v, want %v", res.Ancestry[0], wantAncestry)
	}
}

func TestSimplifySplitCoalescence(t *testing.T) {
	// Three samples overlapping with staggered ends force remainders back
	// onto the queue.
	nodes := []tables.Node{{Time: 1}, {Time: 0}, {Time: 0}, {Time: 0}}
	edges := []tables.Edge{
		{Left: 0, Right: 100, Parent: 0, Child: 1},
		{Left: 0, Right: 40, Parent: 0, Child: 2},
		{Left: 0, Right: 80, Parent: 0, Child: 3},
	}

	res, err := Simplify([]int{1, 2, 3}, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	wantEdges := []tables.Edge{
		{Left: 0, Right: 40, Parent: 3, Child: 0},
		{Left: 40, Right: 80, Parent: 3, Child: 0},
		{Left: 0, Right: 40, Parent: 3, Child: 1},
		{Left: 0, Right: 40, Parent: 3, Child: 2},
		{Left: 40, Right: 80, Parent: 3, Child: 2},
	}
	if !slices.Equal(res.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", res.Edges, wantEdges)
	}
	wantAncestry := []Segment{{0, 40, 3}, {40, 80, 3}, {80, 100, 0}}
	if !slices.Equal(res.Ancestry[0], wantAncestry) {
		t.Errorf("Ancestry[0] = %v, want %v", res.Ancestry[0], wantAncestry)
	}
	if squashed := tables.Squash(res.Edges); len(squashed) != 3 {
		t.Errorf("Squash(Edges) = %v, want 3 edges", squashed)
	}
}

func TestSimplifySampleAncestor(t *testing.T) {
	// Node 1 is a sample and the parent of sample 2 over [0, 5).
	nodes := []tables.Node{{Time: 2}, {Time: 1}, {Time: 0}}
	edges := []tables.Edge{{Left: 0, Right: 5, Parent: 1, Child: 2}}

	res, err := Simplify([]int{1, 2}, nodes, edges, 10)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	if len(res.Nodes) != 2 {
		t.Errorf("Nodes = %+v, want only the two samples", res.Nodes)
	}
	wantEdges := []tables.Edge{{Left: 0, Right: 5, Parent: 0, Child: 1}}
	if !slices.Equal(res.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", res.Edges, wantEdges)
	}
	wantAncestry := []Segment{{0, 5, 0}, {5, 10, 0}}
	if !slices.Equal(res.Ancestry[1], wantAncestry) {
		t.Errorf("Ancestry[1] = %v, want %v", res.Ancestry[1], wantAncestry)
	}
}

func TestSimplifyErrors(t *testing.T) {
	nodes, edges := referenceTables()

	tests := []struct {
		name     string
		samples  []int
		edges    []tables.Edge
		length   int64
		opts     []Option
		wantCode errors.Code
	}{
		{"zero genome", []int{4, 5}, edges, 0, nil, errors.ErrCodeInvalidGenomeLength},
		{"negative genome", []int{4, 5}, edges, -1, nil, errors.ErrCodeInvalidGenomeLength},
		{"sample out of range", []int{4, 6}, edges, 100, nil, errors.ErrCodeInvalidSampleIndex},
		{"negative sample", []int{-1}, edges, 100, nil, errors.ErrCodeInvalidSampleIndex},
		{"duplicate sample", []int{4, 4}, edges, 100, nil, errors.ErrCodeInvalidSampleIndex},
		{"empty edge", []int{4}, []tables.Edge{{Left: 5, Right: 5, Parent: 0, Child: 2}}, 100, nil, errors.ErrCodeInvalidInterval},
		{"edge past genome", []int{4}, []tables.Edge{{Left: 0, Right: 101, Parent: 0, Child: 2}}, 100, nil, errors.ErrCodeInvalidInterval},
		{"unknown child", []int{4}, []tables.Edge{{Left: 0, Right: 10, Parent: 0, Child: 9}}, 100, nil, errors.ErrCodeInvalidNodeIndex},
		{"order check", []int{4}, []tables.Edge{{Left: 0, Right: 10, Parent: 3, Child: 2}}, 100, []Option{WithOrderCheck()}, errors.ErrCodeInvalidOrder},
		{"reorder cycle", []int{4}, []tables.Edge{
			{Left: 0, Right: 10, Parent: 2, Child: 3},
			{Left: 0, Right: 10, Parent: 3, Child: 2},
		}, 100, []Option{WithReorder()}, errors.ErrCodeInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Simplify(tt.samples, nodes, tt.edges, tt.length, tt.opts...)
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("Simplify() code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
			if res != nil {
				t.Error("Simplify() returned a partial result alongside an error")
			}
		})
	}
}

func TestProcessQueueNotDrained(t *testing.T) {
	nodes, edges := referenceTables()
	s := newState(nodes, edges, 100)
	s.queue.push(Segment{Left: 0, Right: 10, Node: 0})

	if err := s.process(3); !errors.Is(err, errors.ErrCodeQueueNotDrained) {
		t.Errorf("process() = %v, want QUEUE_NOT_DRAINED", err)
	}
}

func TestSimplifyReorder(t *testing.T) {
	nodes, edges := referenceTables()
	want, err := Simplify([]int{4, 5}, nodes, edges, 100)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	// Reverse the node indices so that children come first.
	n := len(nodes)
	rev := func(u int) int { return n - 1 - u }
	revNodes := make([]tables.Node, n)
	for u, nd := range nodes {
		revNodes[rev(u)] = nd
	}
	revEdges := make([]tables.Edge, len(edges))
	for i, e := range edges {
		revEdges[i] = tables.Edge{Left: e.Left, Right: e.Right, Parent: rev(e.Parent), Child: rev(e.Child)}
	}

	if _, err := Simplify([]int{1, 0}, revNodes, revEdges, 100, WithOrderCheck()); !errors.Is(err, errors.ErrCodeInvalidOrder) {
		t.Fatalf("WithOrderCheck on reversed input = %v, want INVALID_ORDER", err)
	}

	got, err := Simplify([]int{1, 0}, revNodes, revEdges, 100, WithReorder())
	if err != nil {
		t.Fatalf("Simplify(WithReorder): %v", err)
	}
	if !slices.Equal(got.Nodes, want.Nodes) {
		t.Errorf("Nodes = %+v, want %+v", got.Nodes, want.Nodes)
	}
	if !slices.Equal(got.Edges, want.Edges) {
		t.Errorf("Edges = %v, want %v", got.Edges, want.Edges)
	}
	for u := range n {
		if got.IDMap[rev(u)] != want.IDMap[u] {
			t.Errorf("IDMap[%d] = %d, want %d", rev(u), got.IDMap[rev(u)], want.IDMap[u])
		}
		if !slices.Equal(got.Ancestry[rev(u)], want.Ancestry[u]) {
			t.Errorf("Ancestry[%d] = %v, want %v", rev(u), got.Ancestry[rev(u)], want.Ancestry[u])
		}
	}
}

func TestRemapSamples(t *testing.T) {
	idmap := []int{tables.NullNode, 3, tables.NullNode, 2, 0, 1}

	got, err := RemapSamples(idmap, []int{5, 3})
	if err != nil {
		t.Fatalf("RemapSamples: %v", err)
	}
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("RemapSamples() = %v, want [1 2]", got)
	}

	for _, bad := range [][]int{{0}, {6}, {-1}} {
		if _, err := RemapSamples(idmap, bad); !errors.Is(err, errors.ErrCodeInvalidSampleIndex) {
			t.Errorf("RemapSamples(%v) = %v, want INVALID_SAMPLE_INDEX", bad, err)
		}
	}
}

// randomTables builds a Wright-Fisher style genealogy: generations of popSize
// nodes, oldest first, where every child inherits [0, b) from one parent and
// [b, L) from another.
func randomTables(rng *rand.Rand, generations, popSize int, genomeLength int64) ([]tables.Node, []tables.Edge, []int) {
	var nodes []tables.Node
	var edges []tables.Edge
	for g := range generations {
		for range popSize {
			nodes = append(nodes, tables.Node{Time: int64(generations - 1 - g)})
		}
		if g == 0 {
			continue
		}
		first := g * popSize
		prev := first - popSize
		for c := first; c < first+popSize; c++ {
			p1 := prev + rng.IntN(popSize)
			p2 := prev + rng.IntN(popSize)
			if p1 == p2 {
				edges = append(edges, tables.Edge{Left: 0, Right: genomeLength, Parent: p1, Child: c})
				continue
			}
			b := 1 + rng.Int64N(genomeLength-1)
			edges = append(edges,
				tables.Edge{Left: 0, Right: b, Parent: p1, Child: c},
				tables.Edge{Left: b, Right: genomeLength, Parent: p2, Child: c})
		}
	}
	samples := make([]int, popSize)
	for i := range samples {
		samples[i] = (generations-1)*popSize + i
	}
	return nodes, edges, samples
}

func checkInvariants(t *testing.T, res *Result, samples []int, genomeLength int64) {
	t.Helper()

	for u, segs := range res.Ancestry {
		for i, x := range segs {
			if x.Left >= x.Right || x.Left < 0 || x.Right > genomeLength {
				t.Fatalf("Ancestry[%d][%d] = %v is not a valid interval", u, i, x)
			}
			if x.Node < 0 || x.Node >= len(res.Nodes) {
				t.Fatalf("Ancestry[%d][%d] = %v references unknown output node", u, i, x)
			}
			if i > 0 && segs[i-1].Right > x.Left {
				t.Fatalf("Ancestry[%d] overlaps or is unsorted at %d: %v", u, i, segs)
			}
		}
	}

	for _, s := range samples {
		var covered int64
		for _, x := range res.Ancestry[s] {
			covered += x.Right - x.Left
		}
		if covered != genomeLength {
			t.Fatalf("sample %d ancestry covers %d of %d", s, covered, genomeLength)
		}
	}

	if !slices.IsSortedFunc(res.Edges, tables.CompareEdges) {
		t.Fatal("output edges are not sorted by (parent, child, right, left)")
	}

	type span struct {
		parent      int
		left, right int64
	}
	lineages := make(map[span]int)
	for _, e := range res.Edges {
		if e.Parent == e.Child {
			t.Fatalf("self edge %v", e)
		}
		if res.Nodes[e.Parent].IsSample() {
			t.Fatalf("edge %v has a sample parent without sample ancestors", e)
		}
		lineages[span{e.Parent, e.Left, e.Right}]++
	}
	for sp, n := range lineages {
		if n < 2 {
			t.Fatalf("coalescence at node %d over [%d, %d) has %d lineages", sp.parent, sp.left, sp.right, n)
		}
	}
}

func TestSimplifyRandomInvariants(t *testing.T) {
	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(seed, 42))
		nodes, edges, samples := randomTables(rng, 12, 8, 1000)

		res, err := Simplify(samples, nodes, edges, 1000, WithOrderCheck())
		if err != nil {
			t.Fatalf("seed %d: Simplify: %v", seed, err)
		}
		checkInvariants(t, res, samples, 1000)
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	for seed := range uint64(10) {
		rng := rand.New(rand.NewPCG(seed, 7))
		nodes, edges, samples := randomTables(rng, 10, 6, 500)

		first, err := Simplify(samples, nodes, edges, 500)
		if err != nil {
			t.Fatalf("seed %d: Simplify: %v", seed, err)
		}
		remapped, err := RemapSamples(first.IDMap, samples)
		if err != nil {
			t.Fatalf("seed %d: RemapSamples: %v", seed, err)
		}

		second, err := Simplify(remapped, first.Nodes, first.Edges, 500, WithReorder())
		if err != nil {
			t.Fatalf("seed %d: re-Simplify: %v", seed, err)
		}

		if len(second.Nodes) != len(first.Nodes) {
			t.Fatalf("seed %d: re-simplified to %d nodes, want %d", seed, len(second.Nodes), len(first.Nodes))
		}
		relabeled := make([]tables.Edge, len(first.Edges))
		for i, e := range first.Edges {
			p, c := second.IDMap[e.Parent], second.IDMap[e.Child]
			if p == tables.NullNode || c == tables.NullNode {
				t.Fatalf("seed %d: edge %v lost its endpoints on re-simplification", seed, e)
			}
			relabeled[i] = tables.Edge{Left: e.Left, Right: e.Right, Parent: p, Child: c}
		}
		if got, want := tables.Squash(second.Edges), tables.Squash(relabeled); !slices.Equal(got, want) {
			t.Fatalf("seed %d: re-simplified edges\n%v\nwant\n%v", seed, got, want)
		}
	}
}
