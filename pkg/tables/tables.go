package tables

import (
	"fmt"

	"github.com/matzehuels/coalesce/pkg/errors"
)

// NullNode marks the absence of a node, e.g. an input node without an output
// representation in an id map.
const NullNode = -1

// NodeFlags is a bitmask of node properties.
type NodeFlags uint32

// FlagSample marks a node as a sample.
const FlagSample NodeFlags = 1 << 0

// IsSample reports whether the sample bit is set.
func (f NodeFlags) IsSample() bool { return f&FlagSample != 0 }

// Node is one row of the node table.
//
// Time never decreases along a child→parent edge. The simplification sweep
// only copies it; processing order comes from node indices.
type Node struct {
	Time  int64     `json:"time" toml:"time"`
	Flags NodeFlags `json:"flags,omitempty" toml:"flags,omitempty"`
}

// IsSample reports whether the node is flagged as a sample.
func (n Node) IsSample() bool { return n.Flags.IsSample() }

// Edge is one row of the edge table: over [Left, Right) Child inherits from Parent.
type Edge struct {
	Left   int64 `json:"left" toml:"left"`
	Right  int64 `json:"right" toml:"right"`
	Parent int   `json:"parent" toml:"parent"`
	Child  int   `json:"child" toml:"child"`
}

// NewEdge returns an edge after checking that left < right.
// It returns an INVALID_INTERVAL error otherwise.
func NewEdge(left, right int64, parent, child int) (Edge, error) {
	if left >= right {
		return Edge{}, errors.New(errors.ErrCodeInvalidInterval,
			"edge parent %d child %d: left %d >= right %d", parent, child, left, right)
	}
	return Edge{Left: left, Right: right, Parent: parent, Child: child}, nil
}

// Span returns Right - Left.
func (e Edge) Span() int64 { return e.Right - e.Left }

// String formats the edge as "[left, right) parent -> child".
func (e Edge) String() string {
	return fmt.Sprintf("[%d, %d) %d -> %d", e.Left, e.Right, e.Parent, e.Child)
}

// TableCollection bundles a node table and an edge table over one genome.
//
// The zero value is not usable - GenomeLength must be positive. Use New.
// TableCollection is not safe for concurrent use without external synchronization.
type TableCollection struct {
	GenomeLength int64
	Nodes        []Node
	Edges        []Edge
}

// New creates an empty collection for a genome of the given length.
// Returns INVALID_GENOME_LENGTH if genomeLength <= 0.
func New(genomeLength int64) (*TableCollection, error) {
	if genomeLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidGenomeLength,
			"genome length must be positive, got %d", genomeLength)
	}
	return &TableCollection{GenomeLength: genomeLength}, nil
}

// AddNode appends a node and returns its index.
func (tc *TableCollection) AddNode(time int64, flags NodeFlags) int {
	tc.Nodes = append(tc.Nodes, Node{Time: time, Flags: flags})
	return len(tc.Nodes) - 1
}

// AddEdge appends an edge after validating its interval and endpoints
// against the current tables.
func (tc *TableCollection) AddEdge(left, right int64, parent, child int) error {
	e, err := NewEdge(left, right, parent, child)
	if err != nil {
		return err
	}
	if err := validateEdge(len(tc.Edges), e, len(tc.Nodes), tc.GenomeLength); err != nil {
		return err
	}
	tc.Edges = append(tc.Edges, e)
	return nil
}

// NumNodes returns the number of rows in the node table.
func (tc *TableCollection) NumNodes() int { return len(tc.Nodes) }

// NumEdges returns the number of rows in the edge table.
func (tc *TableCollection) NumEdges() int { return len(tc.Edges) }

// Samples returns the indices of all nodes flagged as samples, ascending.
func (tc *TableCollection) Samples() []int { return SampleIDs(tc.Nodes) }

// SampleIDs returns the indices of all nodes flagged as samples, ascending.
func SampleIDs(nodes []Node) []int {
	var out []int
	for i, n := range nodes {
		if n.IsSample() {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy of the collection.
func (tc *TableCollection) Clone() *TableCollection {
	return &TableCollection{
		GenomeLength: tc.GenomeLength,
		Nodes:        append([]Node(nil), tc.Nodes...),
		Edges:        append([]Edge(nil), tc.Edges...),
	}
}

// Validate checks the collection and returns nil if valid.
// See [ValidateEdges] for the edge rules.
func (tc *TableCollection) Validate() error {
	if tc.GenomeLength <= 0 {
		return errors.New(errors.ErrCodeInvalidGenomeLength,
			"genome length must be positive, got %d", tc.GenomeLength)
	}
	return ValidateEdges(tc.Edges, len(tc.Nodes), tc.GenomeLength)
}

// ValidateEdges checks every edge and returns the first violation:
//
//  1. Left < Right (INVALID_INTERVAL)
//  2. 0 <= Left and Right <= genomeLength (INVALID_INTERVAL)
//  3. Parent and Child are valid node indices (INVALID_NODE_INDEX)
//  4. Parent != Child (INVALID_NODE_INDEX)
//
// It does not check index order; see [CheckOrder].
func ValidateEdges(edges []Edge, numNodes int, genomeLength int64) error {
	for i, e := range edges {
		if err := validateEdge(i, e, numNodes, genomeLength); err != nil {
			return err
		}
	}
	return nil
}

func validateEdge(i int, e Edge, numNodes int, genomeLength int64) error {
	if e.Left >= e.Right {
		return errors.New(errors.ErrCodeInvalidInterval,
			"edge %d (%s): left >= right", i, e)
	}
	if e.Left < 0 || e.Right > genomeLength {
		return errors.New(errors.ErrCodeInvalidInterval,
			"edge %d (%s): interval outside [0, %d)", i, e, genomeLength)
	}
	if e.Parent < 0 || e.Parent >= numNodes {
		return errors.New(errors.ErrCodeInvalidNodeIndex,
			"edge %d (%s): parent out of range [0, %d)", i, e, numNodes)
	}
	if e.Child < 0 || e.Child >= numNodes {
		return errors.New(errors.ErrCodeInvalidNodeIndex,
			"edge %d (%s): child out of range [0, %d)", i, e, numNodes)
	}
	if e.Parent == e.Child {
		return errors.New(errors.ErrCodeInvalidNodeIndex,
			"edge %d (%s): parent equals child", i, e)
	}
	return nil
}
