package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/coalesce/pkg/cache"
	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/observability"
)

// Runner executes pipeline stages with caching.
// It holds no per-run state; one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer becomes a DefaultKeyer, a nil
// cache a NullCache and a nil logger log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the simplify and render stages.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	result.Stats.InputNodes = len(opts.Document.Nodes)
	result.Stats.InputEdges = len(opts.Document.Edges)

	// Stage 1: Simplify
	start := time.Now()
	out, hash, hit, err := r.SimplifyWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Output = out
	result.InputHash = hash
	result.Stats.setOutput(out)
	result.Stats.SimplifyTime = time.Since(start)
	result.CacheInfo.SimplifyHit = hit

	logger.Info("simplified tables",
		"samples", result.Stats.Samples,
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"cached", hit,
		"duration", result.Stats.SimplifyTime)

	// Stage 2: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, out, opts.Formats, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SimplifyWithCacheInfo runs the simplify stage through the cache. It returns
// the output document, the input hash and whether the output came from the
// cache.
func (r *Runner) SimplifyWithCacheInfo(ctx context.Context, opts Options) (*coio.Document, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	hash, err := inputHash(opts.Document)
	if err != nil {
		return nil, "", false, err
	}
	key := r.Keyer.SimplifyKey(hash, opts.KeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := coio.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "simplify")
				return doc, hash, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "simplify")
	}

	doc := opts.Document
	observability.Simplify().OnSimplifyStart(ctx, len(doc.Nodes), len(doc.Edges), len(opts.Samples))
	start := time.Now()
	out, err := Simplify(opts)
	if err != nil {
		observability.Simplify().OnSimplifyComplete(ctx, 0, 0, time.Since(start), err)
		return nil, "", false, err
	}
	observability.Simplify().OnSimplifyComplete(ctx, len(out.Nodes), len(out.Edges), time.Since(start), nil)

	var buf bytes.Buffer
	if err := coio.WriteJSON(out, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLSimplify); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "simplify", buf.Len())
		}
	}
	return out, hash, false, nil
}

// Simplify is SimplifyWithCacheInfo without the cache details.
func (r *Runner) Simplify(ctx context.Context, opts Options) (*coio.Document, error) {
	doc, _, _, err := r.SimplifyWithCacheInfo(ctx, opts)
	return doc, err
}

// RenderWithCacheInfo renders doc in every format. SVG and PNG artifacts are
// cached by document hash; the boolean reports whether there was at least one
// of them and all of them were hits.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *coio.Document, formats []string, refresh bool) (map[string][]byte, bool, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, false, err
	}
	docHash, err := cache.HashJSON(doc)
	if err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(formats))
	cacheable, hits := 0, 0
	for _, format := range formats {
		if !cacheableFormats[format] {
			data, err := renderFormat(ctx, doc, format)
			if err != nil {
				return nil, false, fmt.Errorf("render %s: %w", format, err)
			}
			artifacts[format] = data
			continue
		}

		cacheable++
		key := r.Keyer.RenderKey(docHash, format)
		if !refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "render")
				artifacts[format] = data
				hits++
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "render")
		}

		data, err := renderFormat(ctx, doc, format)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
	}
	return artifacts, cacheable > 0 && hits == cacheable, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
