// Package io reads and writes genealogy tables as JSON or TOML documents.
//
// # Format
//
// A [Document] holds the genome length, optional samples and the node and edge
// tables. In JSON:
//
//	{
//	  "genome_length": 100,
//	  "samples": [4, 5],
//	  "nodes": [{"time": 2}, {"time": 2}, {"time": 1}, {"time": 1}, {"time": 0}, {"time": 0}],
//	  "edges": [
//	    {"left": 0, "right": 50, "parent": 0, "child": 2},
//	    {"left": 50, "right": 100, "parent": 1, "child": 2}
//	  ]
//	}
//
// The same document in TOML uses arrays of tables:
//
//	genome_length = 100
//	samples = [4, 5]
//
//	[[nodes]]
//	time = 2
//
//	[[edges]]
//	left = 0
//	right = 50
//	parent = 0
//	child = 2
//
// Node flags default to zero. Samples listed in "samples" are used as the
// simplification samples; when the list is empty, nodes with the sample flag
// (bit 0 of "flags") are used instead.
//
// Result documents additionally carry "idmap" and, in JSON only, "ancestry".
//
// # Import and Export
//
// [Import] and [Export] choose the codec from the file extension (.json or
// .toml). [ReadJSON], [WriteJSON], [ReadTOML] and [WriteTOML] work on streams.
// Decoded documents are validated with tables.ValidateEdges; decoding
// failures are reported as INVALID_FORMAT errors.
package io
