package forward

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalesce/pkg/errors"
	"github.com/matzehuels/coalesce/pkg/observability"
	"github.com/matzehuels/coalesce/pkg/simplify"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// Result is the outcome of a simulation.
type Result struct {
	// Tables is the simplified genealogy of the final population.
	Tables *tables.TableCollection

	// Alive lists the final population's node ids in Tables. After the final
	// simplification these are 0..PopulationSize-1 and flagged as samples.
	Alive []int

	Stats Stats
}

// Stats summarizes a simulation run.
type Stats struct {
	Births          int           `json:"births"`
	Simplifications int           `json:"simplifications"`
	PeakNodes       int           `json:"peak_nodes"`
	PeakEdges       int           `json:"peak_edges"`
	SimplifyTime    time.Duration `json:"simplify_time"`
}

// Option configures Run.
type Option func(*simulator)

// WithLogger reports every simplification at debug level.
func WithLogger(l *log.Logger) Option {
	return func(s *simulator) { s.logger = l }
}

// WithProgress calls fn after every step.
func WithProgress(fn func(step, total int64)) Option {
	return func(s *simulator) { s.progress = fn }
}

type simulator struct {
	params   Parameters
	rng      *rand.Rand
	logger   *log.Logger
	progress func(step, total int64)

	tables         *tables.TableCollection
	alive          []int
	replacements   []int
	births         []int
	lastSimplified int64

	crossovers    []int64
	transmissions []Transmission
	stats         Stats
}

// Run simulates params.Steps steps and returns the simplified genealogy of
// the surviving population. Node times count steps before the end of the
// simulation, so the founders have time params.Steps and the last births
// time 0.
//
// Run returns ctx.Err() if ctx is cancelled between steps.
func Run(ctx context.Context, params Parameters, opts ...Option) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := newSimulator(params)
	for _, o := range opts {
		o(s)
	}

	for step := int64(1); step <= params.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.step(ctx, step); err != nil {
			return nil, err
		}
		if step%params.SimplifyInterval == 0 {
			if err := s.simplify(ctx, step); err != nil {
				return nil, err
			}
		}
		if s.progress != nil {
			s.progress(step, params.Steps)
		}
	}
	if s.lastSimplified != params.Steps {
		if err := s.simplify(ctx, params.Steps); err != nil {
			return nil, err
		}
	}

	return &Result{Tables: s.tables, Alive: s.alive, Stats: s.stats}, nil
}

func newSimulator(p Parameters) *simulator {
	tc := &tables.TableCollection{GenomeLength: p.GenomeLength}
	alive := make([]int, p.PopulationSize)
	for i := range alive {
		alive[i] = tc.AddNode(p.Steps, 0)
	}
	return &simulator{
		params: p,
		rng:    rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)),
		tables: tc,
		alive:  alive,
	}
}

// step replaces the individuals that die in this step with new offspring.
// Parents are drawn from the population as it was at the start of the step.
func (s *simulator) step(ctx context.Context, step int64) error {
	s.replacements = s.replacements[:0]
	for i := range s.alive {
		if s.rng.Float64() < s.params.DeathProbability {
			s.replacements = append(s.replacements, i)
		}
	}

	s.births = s.births[:0]
	for range s.replacements {
		child, err := s.birth(step)
		if err != nil {
			return err
		}
		s.births = append(s.births, child)
	}
	for i, r := range s.replacements {
		s.alive[r] = s.births[i]
	}

	s.stats.Births += len(s.births)
	s.stats.PeakNodes = max(s.stats.PeakNodes, s.tables.NumNodes())
	s.stats.PeakEdges = max(s.stats.PeakEdges, s.tables.NumEdges())
	observability.Simulation().OnGeneration(ctx, int(step), len(s.births))
	return nil
}

func (s *simulator) birth(step int64) (int, error) {
	n := len(s.alive)
	p1, p2 := s.rng.IntN(n), s.rng.IntN(n)
	if s.rng.IntN(2) == 1 {
		p1, p2 = p2, p1
	}

	k := poisson(s.rng, s.params.MeanCrossovers)
	s.crossovers = crossoverPositions(s.rng, s.params.GenomeLength, k, s.crossovers)
	s.transmissions = fillTransmissions(p1, p2, s.crossovers, s.transmissions)

	child := s.tables.AddNode(s.params.Steps-step, 0)
	for _, t := range s.transmissions {
		if err := s.tables.AddEdge(t.Left, t.Right, s.alive[t.Parent], child); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "record birth at step %d", step)
		}
	}
	return child, nil
}

// simplify reduces the tables to the genealogy of the living population.
// The sweep emits ancestors after samples, so the input is reordered first.
func (s *simulator) simplify(ctx context.Context, step int64) error {
	start := time.Now()
	before := s.tables.NumNodes()

	opts := []simplify.Option{simplify.WithReorder()}
	if s.logger != nil {
		opts = append(opts, simplify.WithLogger(s.logger))
	}
	res, err := simplify.Simplify(s.alive, s.tables.Nodes, s.tables.Edges, s.params.GenomeLength, opts...)
	if err != nil {
		return fmt.Errorf("simplify at step %d: %w", step, err)
	}
	alive, err := simplify.RemapSamples(res.IDMap, s.alive)
	if err != nil {
		return err
	}

	s.tables = res.Tables(s.params.GenomeLength)
	s.alive = alive
	s.lastSimplified = step

	elapsed := time.Since(start)
	s.stats.Simplifications++
	s.stats.SimplifyTime += elapsed
	if s.logger != nil {
		s.logger.Debug("simplified population",
			"step", step,
			"nodes_before", before,
			"nodes", s.tables.NumNodes(),
			"edges", s.tables.NumEdges(),
			"duration", elapsed)
	}
	observability.Simulation().OnSimplify(ctx, int(step), before, s.tables.NumNodes(), elapsed)
	return nil
}
