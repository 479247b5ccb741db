package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/pipeline"
	"github.com/matzehuels/coalesce/pkg/tables"
)

// simplifyFlags holds flags for the simplify command.
type simplifyFlags struct {
	output     string
	formats    string
	samples    string
	reorder    bool
	checkOrder bool
	squash     bool
	ancestry   bool
	noCache    bool
	refresh    bool
	show       bool
}

// simplifyCommand creates the simplify command.
func (c *CLI) simplifyCommand() *cobra.Command {
	var flags simplifyFlags

	cmd := &cobra.Command{
		Use:   "simplify INPUT",
		Short: "Reduce a table file to the genealogy of its samples",
		Long: `Simplify reads node and edge tables (JSON or TOML) and writes the minimal
genealogy of the sample nodes.

Samples are taken from --samples, else from the document's "samples" list,
else from the nodes flagged as samples. Sample i becomes output node i.`,
		Example: `  coalesce simplify tables.json
  coalesce simplify tables.toml --samples 4,5 --squash --show
  coalesce simplify tables.json -f json,svg -o out/genealogy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimplify(cmd.Context(), args[0], flags, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output path without extension (default: INPUT name + .simplified)")
	cmd.Flags().StringVarP(&flags.formats, "formats", "f", "", "output formats: json,toml,dot,svg,png (default: json)")
	cmd.Flags().StringVarP(&flags.samples, "samples", "s", "", "comma-separated sample node ids")
	cmd.Flags().BoolVar(&flags.reorder, "reorder", false, "topologically reorder nodes before simplifying")
	cmd.Flags().BoolVar(&flags.checkOrder, "check-order", false, "fail on edges whose child does not follow its parent")
	cmd.Flags().BoolVar(&flags.squash, "squash", false, "merge adjacent output edges")
	cmd.Flags().BoolVar(&flags.ancestry, "ancestry", false, "include per-node ancestry segments in JSON output")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&flags.show, "show", false, "print the output tables")

	return cmd
}

// runSimplify loads INPUT, runs the pipeline and writes one file per format.
// Config file defaults apply to the flags the user did not set.
func (c *CLI) runSimplify(ctx context.Context, input string, flags simplifyFlags, changed func(string) bool) error {
	doc, err := coio.Import(input)
	if err != nil {
		return err
	}
	samples, err := parseSamples(flags.samples)
	if err != nil {
		return err
	}
	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}

	defaults := c.Config.Simplify
	if !changed("reorder") {
		flags.reorder = defaults.Reorder
	}
	if !changed("check-order") {
		flags.checkOrder = defaults.CheckOrder
	}
	if !changed("squash") {
		flags.squash = defaults.Squash
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Document:   doc,
		Samples:    samples,
		Reorder:    flags.reorder,
		CheckOrder: flags.checkOrder,
		Squash:     flags.squash,
		Ancestry:   flags.ancestry,
		Formats:    formats,
		Refresh:    flags.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Simplified %s nodes to %s",
		humanize.Comma(int64(result.Stats.InputNodes)), humanize.Comma(int64(result.Stats.Nodes))))

	base := flags.output
	if base == "" {
		base = defaultOutputBase(input, ".simplified")
	}
	paths, err := writeArtifacts(base, result.Artifacts, formats)
	if err != nil {
		return err
	}

	printSuccess("Simplified %s", filepath.Base(input))
	printStats(result.Stats.Nodes, result.Stats.Edges, result.CacheInfo.SimplifyHit)
	printDetail("%s samples · %s coalescences · %s input edges",
		humanize.Comma(int64(result.Stats.Samples)),
		humanize.Comma(int64(result.Stats.Coalescences)),
		humanize.Comma(int64(result.Stats.InputEdges)))
	for _, p := range paths {
		printFile(p)
	}

	if flags.show {
		printNewline()
		printTables(result.Output)
	}
	if i := slices.Index(formats, pipeline.FormatJSON); i >= 0 && !slices.Contains(formats, pipeline.FormatSVG) {
		printNewline()
		printNextStep("Draw it", fmt.Sprintf("%s render %s", appName, paths[i]))
	}
	return nil
}

// defaultOutputBase strips the extension from input and appends suffix.
func defaultOutputBase(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// writeArtifacts writes artifacts[f] to base.f for every format, in order.
func writeArtifacts(base string, artifacts map[string][]byte, formats []string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return nil, fmt.Errorf("no %s output produced", f)
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// printTables prints the node and edge tables of doc.
func printTables(doc *coio.Document) {
	fmt.Println(StyleTitle.Render("Nodes"))
	printTable([]string{"id", "time", "flags"}, nodeRows(doc.Nodes))
	fmt.Println(StyleTitle.Render("Edges"))
	printTable([]string{"left", "right", "parent", "child"}, edgeRows(doc.Edges))
}

func nodeRows(nodes []tables.Node) [][]string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		flags := ""
		if n.IsSample() {
			flags = "sample"
		}
		rows[i] = []string{strconv.Itoa(i), strconv.FormatInt(n.Time, 10), flags}
	}
	return rows
}

func edgeRows(edges []tables.Edge) [][]string {
	rows := make([][]string, len(edges))
	for i, e := range edges {
		rows[i] = []string{
			strconv.FormatInt(e.Left, 10),
			strconv.FormatInt(e.Right, 10),
			strconv.Itoa(e.Parent),
			strconv.Itoa(e.Child),
		}
	}
	return rows
}
