package forward

import (
	"math"

	"github.com/matzehuels/coalesce/pkg/errors"
)

// Parameters configures a simulation.
type Parameters struct {
	PopulationSize   int     `json:"population_size" toml:"population_size"`
	GenomeLength     int64   `json:"genome_length" toml:"genome_length"`
	Steps            int64   `json:"steps" toml:"steps"`
	DeathProbability float64 `json:"death_probability" toml:"death_probability"`
	MeanCrossovers   float64 `json:"mean_crossovers" toml:"mean_crossovers"`
	SimplifyInterval int64   `json:"simplify_interval" toml:"simplify_interval"`
	Seed             uint64  `json:"seed" toml:"seed"`
}

// DefaultParameters returns a small non-overlapping-generations setup.
func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:   100,
		GenomeLength:     1_000_000,
		Steps:            1000,
		DeathProbability: 1.0,
		MeanCrossovers:   1.0,
		SimplifyInterval: 100,
		Seed:             1,
	}
}

// Validate reports the first invalid parameter as INVALID_INPUT.
func (p Parameters) Validate() error {
	switch {
	case p.PopulationSize < 1:
		return invalid("population size must be >= 1, got %d", p.PopulationSize)
	case p.GenomeLength < 1:
		return errors.New(errors.ErrCodeInvalidGenomeLength,
			"genome length must be positive, got %d", p.GenomeLength)
	case p.Steps < 1:
		return invalid("steps must be >= 1, got %d", p.Steps)
	case math.IsNaN(p.DeathProbability) || math.IsInf(p.DeathProbability, 0):
		return invalid("death probability must be finite")
	case p.DeathProbability <= 0 || p.DeathProbability > 1:
		return invalid("death probability must satisfy 0 < d <= 1, got %g", p.DeathProbability)
	case math.IsNaN(p.MeanCrossovers) || math.IsInf(p.MeanCrossovers, 0):
		return invalid("mean crossovers must be finite")
	case p.MeanCrossovers < 0:
		return invalid("mean crossovers must be >= 0, got %g", p.MeanCrossovers)
	case p.SimplifyInterval < 1:
		return invalid("simplify interval must be >= 1, got %d", p.SimplifyInterval)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}
