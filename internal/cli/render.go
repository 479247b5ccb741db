package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/pipeline"
)

// renderFlags holds flags for the render command.
type renderFlags struct {
	output  string
	formats string
	noCache bool
	refresh bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render INPUT",
		Short: "Draw a table file as DOT, SVG or PNG",
		Long: `Render draws the nodes and edges of a table file as a node-link diagram.
Nodes are ranked by time, samples are drawn as filled boxes and every arrow
lists the genome intervals it carries. The tables are drawn as they are; run
simplify first to draw a sample genealogy.`,
		Example: `  coalesce render tables.simplified.json
  coalesce render tables.json -f dot,png -o figures/tables`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output path without extension (default: INPUT without extension)")
	cmd.Flags().StringVarP(&flags.formats, "formats", "f", pipeline.FormatSVG, "output formats: dot,svg,png,json,toml")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	doc, err := coio.Import(input)
	if err != nil {
		return err
	}
	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, doc, formats, flags.refresh)
	if err != nil {
		return err
	}
	prog.done("Rendered " + filepath.Base(input))

	base := flags.output
	if base == "" {
		base = defaultOutputBase(input, "")
	}
	paths, err := writeArtifacts(base, artifacts, formats)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printStats(len(doc.Nodes), len(doc.Edges), hit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
