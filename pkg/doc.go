// Package pkg provides the core libraries of coalesce.
//
// # Overview
//
// Coalesce works on genealogies recorded as two tables. A node is an
// individual with a birth time; an edge says that over the genome interval
// [left, right) the child inherited its genome from the parent. Simplifying
// such tables with respect to a set of samples keeps only the ancestors in
// which sample lineages merge, and only the intervals along which they do.
// The pkg directory is organized as:
//
//  1. [tables] and [simplify] - the data model and the simplification sweep
//  2. [forward] - forward-time simulation producing tables
//  3. [io] and [render/nodelink] - table files and diagrams
//  4. [cache], [pipeline] and [api] - cached workflows and their HTTP surface
//  5. [errors], [observability] and [buildinfo] - shared infrastructure
//
// # Architecture
//
// The typical data flow through coalesce:
//
//	Table file (JSON/TOML) or [forward] simulation
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [simplify] package (sample genealogy)
//	         ↓
//	    [tables] package (optional squash)
//	         ↓
//	    JSON/TOML/DOT/SVG/PNG output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/coalesce/pkg/render/nodelink"
//	    "github.com/matzehuels/coalesce/pkg/simplify"
//	    "github.com/matzehuels/coalesce/pkg/tables"
//	)
//
//	res, err := simplify.Simplify([]int{4, 5}, nodes, edges, 100)
//	if err != nil {
//	    return err
//	}
//	edges := tables.Squash(res.Edges)
//	dot := nodelink.ToDOT(res.Nodes, edges, nodelink.Options{Intervals: true})
//
// Node indices must follow the parent-before-child order; pass
// [simplify.WithReorder] for tables that do not.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/simplify/...           # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// Redis cache tests run when COALESCE_REDIS_ADDR is set.
//
// [tables]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/tables
// [simplify]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/simplify
// [simplify.WithReorder]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/simplify#WithReorder
// [forward]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/forward
// [io]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/coalesce/pkg/buildinfo
package pkg
