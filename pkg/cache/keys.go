package cache

import "slices"

// Keyer builds cache keys for each kind of cached result.
type Keyer interface {
	// SimplifyKey keys a simplification of the document with the given hash.
	SimplifyKey(inputHash string, opts SimplifyKeyOpts) string

	// RenderKey keys a rendered artifact of the document with the given hash.
	RenderKey(docHash, format string) string

	// SimulationKey keys a forward simulation by its parameters.
	SimulationKey(params any) string
}

// SimplifyKeyOpts lists everything besides the input tables that changes a
// simplification result.
type SimplifyKeyOpts struct {
	Samples    []int `json:"samples"`
	Reorder    bool  `json:"reorder"`
	CheckOrder bool  `json:"check_order"`
	Squash     bool  `json:"squash"`
	Ancestry   bool  `json:"ancestry"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SimplifyKey hashes the input hash together with opts.
func (DefaultKeyer) SimplifyKey(inputHash string, opts SimplifyKeyOpts) string {
	opts.Samples = slices.Clone(opts.Samples)
	return hashKey("simplify", inputHash, opts)
}

// RenderKey hashes the document hash together with the output format.
func (DefaultKeyer) RenderKey(docHash, format string) string {
	return hashKey("render", docHash, format)
}

// SimulationKey hashes the JSON encoding of params.
func (DefaultKeyer) SimulationKey(params any) string {
	return hashKey("simulate", params)
}

var _ Keyer = DefaultKeyer{}
