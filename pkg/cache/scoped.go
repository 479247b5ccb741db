package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// deployments can share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// If inner is nil, a DefaultKeyer is used.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SimplifyKey generates a prefixed simplification key.
func (k *ScopedKeyer) SimplifyKey(inputHash string, opts SimplifyKeyOpts) string {
	return k.prefix + k.inner.SimplifyKey(inputHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(docHash, format string) string {
	return k.prefix + k.inner.RenderKey(docHash, format)
}

// SimulationKey generates a prefixed simulation key.
func (k *ScopedKeyer) SimulationKey(params any) string {
	return k.prefix + k.inner.SimulationKey(params)
}
