package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalesce/pkg/cache"
	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/simplify"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// Simplify runs the simplify stage without caching. opts must have been
// validated.
func Simplify(opts Options) (*coio.Document, error) {
	doc := opts.Document
	res, err := simplify.Simplify(opts.Samples, doc.Nodes, doc.Edges, doc.GenomeLength, simplifyOptions(opts)...)
	if err != nil {
		return nil, err
	}

	out := coio.FromResult(res, doc.GenomeLength, opts.Ancestry)
	if opts.Squash {
		out.Edges = tables.Squash(out.Edges)
	}
	return out, nil
}

func simplifyOptions(opts Options) []simplify.Option {
	var so []simplify.Option
	if opts.Reorder {
		so = append(so, simplify.WithReorder())
	}
	if opts.CheckOrder {
		so = append(so, simplify.WithOrderCheck())
	}
	if opts.Logger != nil && opts.Logger.GetLevel() <= log.DebugLevel {
		so = append(so, simplify.WithLogger(opts.Logger))
	}
	return so
}

// inputHash hashes the tables and samples of the input document.
func inputHash(doc *coio.Document) (string, error) {
	return cache.HashJSON(coio.Document{
		GenomeLength: doc.GenomeLength,
		Nodes:        doc.Nodes,
		Edges:        doc.Edges,
	})
}
