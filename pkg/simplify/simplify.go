package simplify

import (
	"github.com/matzehuels/coalesce/pkg/errors"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// Simplify reduces nodes and edges to the genealogy of samples over
// [0, genomeLength).
//
// The order of samples defines the ids of the sample output nodes: sample i
// becomes output node i. Input is validated eagerly; the call fails without
// partial results on:
//
//   - genomeLength <= 0 (INVALID_GENOME_LENGTH)
//   - a sample out of range or listed twice (INVALID_SAMPLE_INDEX)
//   - an edge with left >= right or outside the genome (INVALID_INTERVAL)
//   - an edge referencing an unknown node or itself (INVALID_NODE_INDEX)
//
// Nodes must be ordered so that every child has a larger index than its
// parents; see [WithOrderCheck] and [WithReorder].
//
// A sample that is also an ancestor of other nodes keeps covering the whole
// genome with its own output id. Where its descendants' lineages overlap it,
// it gains output edges to them instead of a new output node.
func Simplify(samples []int, nodes []tables.Node, edges []tables.Edge, genomeLength int64, opts ...Option) (*Result, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	if genomeLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidGenomeLength,
			"genome length must be positive, got %d", genomeLength)
	}
	if err := validateSamples(samples, len(nodes)); err != nil {
		return nil, err
	}
	if err := tables.ValidateEdges(edges, len(nodes), genomeLength); err != nil {
		return nil, err
	}

	if cfg.reorder {
		return simplifyReordered(samples, nodes, edges, genomeLength, &cfg)
	}
	if cfg.checkOrder {
		if err := tables.CheckOrder(edges); err != nil {
			return nil, err
		}
	}
	return run(samples, nodes, edges, genomeLength, &cfg)
}

func validateSamples(samples []int, numNodes int) error {
	seen := make([]bool, numNodes)
	for i, s := range samples {
		if s < 0 || s >= numNodes {
			return errors.New(errors.ErrCodeInvalidSampleIndex,
				"sample %d (position %d) out of range [0, %d)", s, i, numNodes)
		}
		if seen[s] {
			return errors.New(errors.ErrCodeInvalidSampleIndex,
				"sample %d (position %d) listed more than once", s, i)
		}
		seen[s] = true
	}
	return nil
}

// simplifyReordered runs the sweep on a topologically reordered copy and maps
// input-indexed results back to the caller's ids.
func simplifyReordered(samples []int, nodes []tables.Node, edges []tables.Edge, genomeLength int64, cfg *config) (*Result, error) {
	perm, err := tables.Reorder(nodes, edges)
	if err != nil {
		return nil, err
	}
	tc, err := tables.Permute(&tables.TableCollection{GenomeLength: genomeLength, Nodes: nodes, Edges: edges}, perm)
	if err != nil {
		return nil, err
	}
	mapped := make([]int, len(samples))
	for i, s := range samples {
		mapped[i] = perm[s]
	}

	res, err := run(mapped, tc.Nodes, tc.Edges, genomeLength, cfg)
	if err != nil {
		return nil, err
	}

	idmap := make([]int, len(nodes))
	ancestry := make([][]Segment, len(nodes))
	for old, p := range perm {
		idmap[old] = res.IDMap[p]
		ancestry[old] = res.Ancestry[p]
	}
	res.IDMap = idmap
	res.Ancestry = ancestry
	return res, nil
}

// state is the working memory of one Simplify call.
type state struct {
	genomeLength int64
	nodes        []tables.Node
	edges        []tables.Edge
	byParent     [][]int // input node -> indices into edges
	isSample     []bool

	ancestry [][]Segment
	queue    segmentQueue
	batch    []Segment

	outNodes []tables.Node
	outEdges []tables.Edge
	idmap    []int
}

func run(samples []int, nodes []tables.Node, edges []tables.Edge, genomeLength int64, cfg *config) (*Result, error) {
	s := newState(nodes, edges, genomeLength)
	s.seed(samples)

	for u := len(nodes) - 1; u >= 0; u-- {
		if err := s.process(u); err != nil {
			return nil, err
		}
	}

	tables.SortEdges(s.outEdges)

	res := &Result{
		Nodes:    s.outNodes,
		Edges:    s.outEdges,
		Ancestry: s.ancestry,
		IDMap:    s.idmap,
	}
	if cfg.logger != nil {
		st := res.Stats()
		cfg.logger.Debug("simplified",
			"input_nodes", len(nodes),
			"input_edges", len(edges),
			"nodes", st.Nodes,
			"edges", st.Edges,
			"coalescences", st.Coalescences)
	}
	return res, nil
}

func newState(nodes []tables.Node, edges []tables.Edge, genomeLength int64) *state {
	byParent := make([][]int, len(nodes))
	for i, e := range edges {
		byParent[e.Parent] = append(byParent[e.Parent], i)
	}
	idmap := make([]int, len(nodes))
	for i := range idmap {
		idmap[i] = tables.NullNode
	}
	return &state{
		genomeLength: genomeLength,
		nodes:        nodes,
		edges:        edges,
		byParent:     byParent,
		isSample:     make([]bool, len(nodes)),
		ancestry:     make([][]Segment, len(nodes)),
		idmap:        idmap,
	}
}

// seed creates one output node and one full-genome segment per sample.
func (s *state) seed(samples []int) {
	for _, u := range samples {
		id := s.addNode(s.nodes[u].Time, tables.FlagSample)
		s.idmap[u] = id
		s.isSample[u] = true
		s.ancestry[u] = []Segment{{Left: 0, Right: s.genomeLength, Node: id}}
	}
}

func (s *state) addNode(time int64, flags tables.NodeFlags) int {
	s.outNodes = append(s.outNodes, tables.Node{Time: time, Flags: flags})
	return len(s.outNodes) - 1
}

// process computes the ancestry of input node u from its children's ancestry.
func (s *state) process(u int) error {
	if s.queue.Len() != 0 {
		return errors.New(errors.ErrCodeQueueNotDrained,
			"segment queue holds %d segments before node %d", s.queue.Len(), u)
	}

	outputNode := tables.NullNode
	if s.isSample[u] {
		// The sample's own lineage competes with its children's.
		outputNode = s.idmap[u]
		if len(s.byParent[u]) == 0 {
			return nil
		}
		for _, x := range s.ancestry[u] {
			s.queue.push(x)
		}
		s.ancestry[u] = s.ancestry[u][:0]
	}

	s.collect(u)

	for s.queue.Len() > 0 {
		left := s.queue.peek().Left
		right := s.genomeLength
		s.batch = s.batch[:0]
		for s.queue.Len() > 0 && s.queue.peek().Left == left {
			x := s.queue.pop()
			s.batch = append(s.batch, x)
			right = min(right, x.Right)
		}
		if s.queue.Len() > 0 {
			right = min(right, s.queue.peek().Left)
		}

		var alpha Segment
		if len(s.batch) == 1 {
			x := s.batch[0]
			alpha = x
			if s.queue.Len() > 0 && s.queue.peek().Left < x.Right {
				next := s.queue.peek().Left
				alpha = Segment{Left: x.Left, Right: next, Node: x.Node}
				s.queue.push(Segment{Left: next, Right: x.Right, Node: x.Node})
			}
		} else {
			if outputNode == tables.NullNode {
				outputNode = s.addNode(s.nodes[u].Time, 0)
				s.idmap[u] = outputNode
			}
			var err error
			if alpha, err = NewSegment(left, right, outputNode); err != nil {
				return err
			}
			for _, x := range s.batch {
				if x.Node != outputNode {
					s.outEdges = append(s.outEdges, tables.Edge{
						Left: left, Right: right, Parent: outputNode, Child: x.Node,
					})
				}
				if x.Right > right {
					s.queue.push(Segment{Left: right, Right: x.Right, Node: x.Node})
				}
			}
		}
		s.ancestry[u] = append(s.ancestry[u], alpha)
	}
	return nil
}

// collect pushes every child segment overlapping an edge of u, clipped to it.
func (s *state) collect(u int) {
	for _, i := range s.byParent[u] {
		e := s.edges[i]
		for _, x := range s.ancestry[e.Child] {
			if x.Overlaps(e.Left, e.Right) {
				s.queue.push(x.Clip(e.Left, e.Right))
			}
		}
	}
}
