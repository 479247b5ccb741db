// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; nothing is recorded
// unless the application registers its own implementations at startup:
//
//	func main() {
//	    observability.SetSimplifyHooks(&mySimplifyHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Emitting an event:
//
//	observability.Simplify().OnSimplifyStart(ctx, len(nodes), len(edges), len(samples))
//	// ... simplify ...
//	observability.Simplify().OnSimplifyComplete(ctx, outNodes, outEdges, time.Since(start), err)
//
// Hooks are registered by main, so the core packages never depend on a
// metrics backend.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Simplify Hooks
// =============================================================================

// SimplifyHooks receives events from simplification runs.
type SimplifyHooks interface {
	OnSimplifyStart(ctx context.Context, nodes, edges, samples int)
	OnSimplifyComplete(ctx context.Context, nodes, edges int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from forward simulations.
type SimulationHooks interface {
	// OnGeneration is called after every simulated generation.
	OnGeneration(ctx context.Context, step, births int)

	// OnSimplify is called after every periodic simplification.
	OnSimplify(ctx context.Context, step, nodesBefore, nodesAfter int, duration time.Duration)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSimplifyHooks is a no-op implementation of SimplifyHooks.
type NoopSimplifyHooks struct{}

func (NoopSimplifyHooks) OnSimplifyStart(context.Context, int, int, int)                     {}
func (NoopSimplifyHooks) OnSimplifyComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnGeneration(context.Context, int, int)                   {}
func (NoopSimulationHooks) OnSimplify(context.Context, int, int, int, time.Duration) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	simplifyHooks   SimplifyHooks   = NoopSimplifyHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	simulationHooks SimulationHooks = NoopSimulationHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetSimplifyHooks registers custom simplify hooks. Nil is ignored.
func SetSimplifyHooks(h SimplifyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simplifyHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSimulationHooks registers custom simulation hooks. Nil is ignored.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulationHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Simplify returns the registered simplify hooks.
func Simplify() SimplifyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simplifyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulationHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	simplifyHooks = NoopSimplifyHooks{}
	cacheHooks = NoopCacheHooks{}
	simulationHooks = NoopSimulationHooks{}
	httpHooks = NoopHTTPHooks{}
}
