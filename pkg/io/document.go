package io

import (
	"github.com/matzehuels/coalesce/pkg/simplify"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// Document is the on-disk form of a genealogy or of a simplification result.
type Document struct {
	GenomeLength int64         `json:"genome_length" toml:"genome_length"`
	Samples      []int         `json:"samples,omitempty" toml:"samples,omitempty"`
	Nodes        []tables.Node `json:"nodes" toml:"nodes"`
	Edges        []tables.Edge `json:"edges" toml:"edges"`

	// Result-only fields.
	IDMap    []int                `json:"idmap,omitempty" toml:"idmap,omitempty"`
	Ancestry [][]simplify.Segment `json:"ancestry,omitempty" toml:"-"`
}

// FromTables creates a document from a table collection and samples.
func FromTables(tc *tables.TableCollection, samples []int) *Document {
	return &Document{
		GenomeLength: tc.GenomeLength,
		Samples:      samples,
		Nodes:        tc.Nodes,
		Edges:        tc.Edges,
	}
}

// FromResult creates a result document. The samples of the output are the
// sample output nodes 0..k-1. The ancestry table is included only if
// withAncestry is set.
func FromResult(res *simplify.Result, genomeLength int64, withAncestry bool) *Document {
	doc := FromTables(res.Tables(genomeLength), tables.SampleIDs(res.Nodes))
	doc.IDMap = res.IDMap
	if withAncestry {
		doc.Ancestry = res.Ancestry
	}
	return doc
}

// Tables returns the document's node and edge tables.
func (d *Document) Tables() *tables.TableCollection {
	return &tables.TableCollection{
		GenomeLength: d.GenomeLength,
		Nodes:        d.Nodes,
		Edges:        d.Edges,
	}
}

// SampleList returns the explicit samples, or the flagged sample nodes if
// none are listed.
func (d *Document) SampleList() []int {
	if len(d.Samples) > 0 {
		return d.Samples
	}
	return tables.SampleIDs(d.Nodes)
}

// Validate checks the genome length and every edge.
func (d *Document) Validate() error {
	return d.Tables().Validate()
}
