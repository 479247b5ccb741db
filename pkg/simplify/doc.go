// Package simplify reduces a genealogy to the part that is ancestral to a set
// of sample nodes.
//
// [Simplify] takes node and edge tables (see package tables), a genome length
// and a list of samples. It returns a new, minimal node table, a sorted edge
// table, the per-node ancestry computed along the way and a map from input
// node ids to output node ids.
//
// # Algorithm
//
// Every sample starts with one [Segment] covering the whole genome and
// pointing at a new output node. Input nodes are then visited from the highest
// index to zero. For each node the segments of its children, clipped to the
// intervals of the connecting edges, are pushed on a min-heap ordered by left
// coordinate and swept left to right:
//
//   - where only one segment covers an interval, the node just passes that
//     lineage up; nothing is emitted
//   - where two or more segments overlap, the node is a coalescence point; an
//     output node is created (once per input node) and an output edge to each
//     overlapping lineage is emitted
//
// The resulting segments form the node's ancestry, which its own parents read
// later in the sweep.
//
// # Preconditions
//
// Children must have larger indices than their parents. This is not checked
// unless [WithOrderCheck] is given; [WithReorder] fixes the order instead.
// Violations otherwise produce wrong output, not errors.
//
// # Output
//
// Output edges are sorted by (parent, child, right, left) and never squashed;
// use tables.Squash for that.
package simplify
