package simplify

import "github.com/charmbracelet/log"

// Option configures a [Simplify] call.
type Option func(*config)

type config struct {
	checkOrder bool
	reorder    bool
	logger     *log.Logger
}

// WithOrderCheck makes Simplify fail with INVALID_ORDER when any edge's child
// index is not larger than its parent index, instead of silently producing
// wrong output.
func WithOrderCheck() Option { return func(c *config) { c.checkOrder = true } }

// WithReorder topologically reorders the input (parents first, older nodes
// first) before the sweep. Sample indices, [Result.IDMap] and [Result.Ancestry]
// stay in terms of the caller's original node indices. Cyclic input fails
// with INVALID_ORDER.
func WithReorder() Option { return func(c *config) { c.reorder = true } }

// WithLogger reports per-call totals at debug level.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }
