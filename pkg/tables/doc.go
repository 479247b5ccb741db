// Package tables defines the node and edge tables that describe a genealogy.
//
// A genealogy is a set of [Node] values (one per ancestor or sample, indexed
// by position in the node slice) connected by [Edge] values. Every edge says
// that over the half-open genome interval [Left, Right) the Child node
// inherited its genetic material from the Parent node.
//
// # Index Order
//
// The simplification sweep in package simplify visits nodes from the highest
// index down to zero, so callers must present tables in which every parent has
// a smaller index than each of its children. [CheckOrder] verifies this cheaply;
// [Reorder] and [Permute] rewrite arbitrary acyclic tables into that order.
//
// # Edge Order
//
// Output edges are sorted with [SortEdges] by (parent, child, right, left).
// Adjacent edges for the same pair are not merged unless [Squash] is called.
package tables
