package cli

import (
	"context"

	"github.com/spf13/cobra"

	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/pipeline"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// exampleDocument is a six-node genealogy over a genome of length 100:
// founders 0 and 1 (time 2), their offspring 2 and 3 (time 1) and the
// samples 4 and 5 (time 0). Sample 5 inherits [0, 60) from 2 and [60, 100)
// from 3; sample 4 inherits everything from 3.
func exampleDocument() *coio.Document {
	return &coio.Document{
		GenomeLength: 100,
		Samples:      []int{4, 5},
		Nodes: []tables.Node{
			{Time: 2}, {Time: 2},
			{Time: 1}, {Time: 1},
			{Time: 0}, {Time: 0},
		},
		Edges: []tables.Edge{
			{Left: 0, Right: 50, Parent: 0, Child: 2},
			{Left: 50, Right: 100, Parent: 1, Child: 2},
			{Left: 0, Right: 100, Parent: 1, Child: 3},
			{Left: 0, Right: 60, Parent: 2, Child: 5},
			{Left: 0, Right: 100, Parent: 3, Child: 4},
			{Left: 60, Right: 100, Parent: 3, Child: 5},
		},
	}
}

// exampleCommand creates the example command.
func (c *CLI) exampleCommand() *cobra.Command {
	var (
		output string
		squash bool
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Simplify a small built-in genealogy and print the result",
		Long: `Example simplifies a six-node genealogy with samples 4 and 5 and prints the
input and output tables. Use --output to save the input tables as a starting
point for your own files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExample(cmd.Context(), output, squash)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the input tables to this file (.json or .toml)")
	cmd.Flags().BoolVar(&squash, "squash", false, "merge adjacent output edges")

	return cmd
}

func (c *CLI) runExample(ctx context.Context, output string, squash bool) error {
	doc := exampleDocument()

	if output != "" {
		if err := coio.Export(doc, output); err != nil {
			return err
		}
		printSuccess("Wrote example tables")
		printFile(output)
		printNewline()
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{Document: doc, Squash: squash})
	if err != nil {
		return err
	}

	printInfo("Input (samples %v)", doc.Samples)
	printTables(doc)
	printNewline()
	printInfo("Simplified (idmap %v)", result.Output.IDMap)
	printTables(result.Output)
	printStats(result.Stats.Nodes, result.Stats.Edges, false)
	return nil
}
