package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coalesce/pkg/forward"
	coio "github.com/matzehuels/coalesce/pkg/io"
)

// simulateFlags holds flags for the simulate command that are not simulation
// parameters.
type simulateFlags struct {
	output  string
	noCache bool
	refresh bool
}

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		flags  simulateFlags
		params forward.Parameters
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a forward-time simulation and write its genealogy",
		Long: `Simulate evolves a population of fixed size forward in time, recording every
birth and the genome intervals inherited from each parent. The tables are
simplified periodically with the living population as samples; the result is
the genealogy of the final generation.

Unset flags take their values from the [simulate] section of the config file.`,
		Example: `  coalesce simulate -N 500 --steps 2000 -o sim.json
  coalesce simulate --seed 7 --death-probability 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd.Context(), c.simulationParams(params, cmd.Flags().Changed), flags)
		},
	}

	defaults := forward.DefaultParameters()
	cmd.Flags().IntVarP(&params.PopulationSize, "population-size", "N", defaults.PopulationSize, "number of individuals")
	cmd.Flags().Int64VarP(&params.GenomeLength, "genome-length", "L", defaults.GenomeLength, "genome length")
	cmd.Flags().Int64Var(&params.Steps, "steps", defaults.Steps, "number of time steps")
	cmd.Flags().Float64Var(&params.DeathProbability, "death-probability", defaults.DeathProbability, "per-step death probability (1 = non-overlapping generations)")
	cmd.Flags().Float64Var(&params.MeanCrossovers, "crossovers", defaults.MeanCrossovers, "mean number of crossovers per transmission")
	cmd.Flags().Int64Var(&params.SimplifyInterval, "simplify-interval", defaults.SimplifyInterval, "steps between simplifications")
	cmd.Flags().Uint64Var(&params.Seed, "seed", defaults.Seed, "random seed")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "simulation.json", "output file (.json or .toml)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-run even if cached")

	return cmd
}

// simulationParams merges flag values over the config file's [simulate] section.
func (c *CLI) simulationParams(fromFlags forward.Parameters, changed func(string) bool) forward.Parameters {
	p := c.Config.Simulate
	if changed("population-size") {
		p.PopulationSize = fromFlags.PopulationSize
	}
	if changed("genome-length") {
		p.GenomeLength = fromFlags.GenomeLength
	}
	if changed("steps") {
		p.Steps = fromFlags.Steps
	}
	if changed("death-probability") {
		p.DeathProbability = fromFlags.DeathProbability
	}
	if changed("crossovers") {
		p.MeanCrossovers = fromFlags.MeanCrossovers
	}
	if changed("simplify-interval") {
		p.SimplifyInterval = fromFlags.SimplifyInterval
	}
	if changed("seed") {
		p.Seed = fromFlags.Seed
	}
	return p
}

// runSimulate runs the simulation behind a spinner and exports the tables.
func (c *CLI) runSimulate(ctx context.Context, params forward.Parameters, flags simulateFlags) error {
	if _, err := coio.FormatFromPath(flags.output); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Debug("simulating",
		"population_size", params.PopulationSize,
		"genome_length", params.GenomeLength,
		"steps", params.Steps,
		"seed", params.Seed)

	spinner := newSpinnerWithContext(ctx, "Simulating...")
	spinner.Start()
	progressEvery := max(params.Steps/100, 1)
	result, err := runner.Simulate(ctx, params, flags.refresh, forward.WithProgress(func(step, total int64) {
		if step%progressEvery == 0 || step == total {
			spinner.SetMessage(fmt.Sprintf("Simulating... step %s/%s",
				humanize.Comma(step), humanize.Comma(total)))
		}
	}))
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Simulation failed")
		return err
	}
	spinner.Stop()

	if err := coio.Export(result.Document, flags.output); err != nil {
		return err
	}

	if result.Cached {
		printSuccess("Loaded simulation of %s steps", humanize.Comma(params.Steps))
	} else {
		printSuccess("Simulated %s steps in %s", humanize.Comma(params.Steps), result.Duration.Round(time.Millisecond))
	}
	printStats(len(result.Document.Nodes), len(result.Document.Edges), result.Cached)
	printDetail("%s births · %s simplifications · peak %s nodes",
		humanize.Comma(int64(result.Stats.Births)),
		humanize.Comma(int64(result.Stats.Simplifications)),
		humanize.Comma(int64(result.Stats.PeakNodes)))
	printFile(flags.output)
	printNewline()
	printNextStep("Simplify a subset", fmt.Sprintf("%s simplify %s --samples 0,1", appName, flags.output))
	return nil
}
