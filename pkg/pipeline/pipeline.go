// Package pipeline runs the load → simplify → render workflow shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Simplify: reduce the input tables to the genealogy of the samples,
//     optionally reordering, order-checking and squashing
//  2. Render: encode the simplified tables in the requested formats
//     (JSON, TOML, DOT, SVG, PNG)
//
// Both stages are cached through a [cache.Cache]; the cache key of a stage
// covers its full input, so a hit is always equivalent to recomputation.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Document: doc,
//	    Squash:   true,
//	    Formats:  []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// The runner also runs cached forward simulations, see [Runner.Simulate].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalesce/pkg/cache"
	"github.com/matzehuels/coalesce/pkg/errors"
	coio "github.com/matzehuels/coalesce/pkg/io"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatTOML: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is also the body of API requests.
type Options struct {
	// Document holds the input tables.
	Document *coio.Document `json:"document"`

	// Samples overrides Document.SampleList() when non-empty.
	Samples []int `json:"samples,omitempty"`

	Reorder    bool `json:"reorder,omitempty"`
	CheckOrder bool `json:"check_order,omitempty"`
	Squash     bool `json:"squash,omitempty"`
	Ancestry   bool `json:"ancestry,omitempty"` // include the ancestry table in the output

	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the input document and the formats, and
// fills in samples, formats and logger. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Document == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := o.Document.Validate(); err != nil {
		return err
	}
	if len(o.Samples) == 0 {
		o.Samples = o.Document.SampleList()
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// KeyOpts returns the simplify cache key options.
func (o *Options) KeyOpts() cache.SimplifyKeyOpts {
	return cache.SimplifyKeyOpts{
		Samples:    o.Samples,
		Reorder:    o.Reorder,
		CheckOrder: o.CheckOrder,
		Squash:     o.Squash,
		Ancestry:   o.Ancestry,
	}
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, toml, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// InputHash is the content hash of the input tables.
	InputHash string

	// Output is the simplified document.
	Output *coio.Document

	// Artifacts holds the rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains sizes and timings of a run.
type Stats struct {
	InputNodes   int
	InputEdges   int
	Nodes        int
	Edges        int
	Samples      int
	Coalescences int
	SimplifyTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	SimplifyHit bool
	RenderHit   bool // all cacheable artifacts came from the cache
}

func (s *Stats) setOutput(doc *coio.Document) {
	s.Nodes = len(doc.Nodes)
	s.Edges = len(doc.Edges)
	s.Samples = 0
	for _, n := range doc.Nodes {
		if n.IsSample() {
			s.Samples++
		}
	}
	s.Coalescences = s.Nodes - s.Samples
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges (%d coalescences)", s.Nodes, s.Edges, s.Coalescences)
}
