package simplify

import (
	"github.com/matzehuels/coalesce/pkg/errors"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// Result is the output of [Simplify].
type Result struct {
	// Nodes is the output node table. Samples come first, in sample order,
	// followed by coalescence nodes in the order they were found.
	Nodes []tables.Node

	// Edges is the output edge table sorted by (parent, child, right, left).
	Edges []tables.Edge

	// Ancestry holds, for every input node, its non-overlapping segments
	// sorted by Left. Segment nodes are output node ids.
	Ancestry [][]Segment

	// IDMap maps input node ids to output node ids, or tables.NullNode.
	IDMap []int
}

// Stats summarizes a simplification result.
type Stats struct {
	Nodes        int // output nodes
	Edges        int // output edges
	Samples      int // output nodes flagged as samples
	Coalescences int // output nodes created at coalescence points
}

// Stats returns summary counts for r.
func (r *Result) Stats() Stats {
	st := Stats{Nodes: len(r.Nodes), Edges: len(r.Edges)}
	for _, n := range r.Nodes {
		if n.IsSample() {
			st.Samples++
		}
	}
	st.Coalescences = st.Nodes - st.Samples
	return st
}

// Tables returns the output as a table collection over the given genome length.
func (r *Result) Tables(genomeLength int64) *tables.TableCollection {
	return &tables.TableCollection{
		GenomeLength: genomeLength,
		Nodes:        r.Nodes,
		Edges:        r.Edges,
	}
}

// RemapSamples translates input sample ids through idmap into output ids,
// e.g. to simplify the output of a previous call again. A sample without an
// output node fails with INVALID_SAMPLE_INDEX.
func RemapSamples(idmap []int, samples []int) ([]int, error) {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s < 0 || s >= len(idmap) || idmap[s] == tables.NullNode {
			return nil, errors.New(errors.ErrCodeInvalidSampleIndex,
				"sample %d has no output node", s)
		}
		out[i] = idmap[s]
	}
	return out, nil
}
