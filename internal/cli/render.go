package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/planfile"
	"github.com/eduplan/seatplan/pkg/seating"
)

// renderOpts holds the flags shared by render and room.
type renderOpts struct {
	output        string
	formats       string
	title         string
	maxSeatSize   float64
	scale         float64
	establishment string
	noCache       bool
	refresh       bool
}

func (o *renderOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): pdf (default), svg, png, json, xlsx (comma-separated)")
	cmd.Flags().StringVar(&o.title, "title", "", "plan title (default \"Seating plan\")")
	cmd.Flags().Float64Var(&o.maxSeatSize, "max-seat-size", 0, "largest seat side in millimetres")
	cmd.Flags().Float64Var(&o.scale, "scale", 0, "PNG pixels per millimetre")
	cmd.Flags().StringVarP(&o.establishment, "establishment", "e", "", "establishment id")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-render even when cached")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// completeFormats offers the remaining formats after any already typed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, typed := "", map[string]bool{}
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		for _, f := range strings.Split(toComplete[:i], ",") {
			typed[f] = true
		}
	}
	var out []string
	for _, f := range pipeline.FormatNames() {
		if !typed[f] {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (o *renderOpts) pipelineOptions(policy seating.Policy) pipeline.Options {
	return pipeline.Options{
		Formats:     parseFormats(o.formats),
		Title:       o.title,
		MaxSeatSize: o.maxSeatSize,
		Scale:       o.scale,
		Policy:      &policy,
		Refresh:     o.refresh,
	}
}

// renderCommand creates the render command for plan files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [plan.toml|plan.json]",
		Short: "Render a plan file",
		Long: `Render a seating plan file to one or more documents.

A plan file holds the column configuration, the board position, the
occupants and the seat assignment (see 'eduplan export' for an example).
The plan is checked against the configured limits before anything is
rendered.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p, err := planfile.Import(args[0])
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), p, basePath(opts.output, args[0]), &opts, cfg.Policy)
		},
	}
	opts.register(cmd)
	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, p seating.Plan, base string, opts *renderOpts, policy seating.Policy) error {
	pipeOpts := opts.pipelineOptions(policy)
	if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	return c.withRunner(ctx, opts.noCache, func(runner *pipeline.Runner) error {
		prog := newProgress(c.Logger)
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", p.Metadata.Room))
		spinner.Start()

		res, err := runner.Execute(ctx, localScope(opts.establishment), p, pipeOpts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()

		paths, err := writeArtifacts(res.Artifacts, base, opts.output)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Rendered %d document(s)", len(paths)))

		printSuccess("Plan rendered")
		for _, path := range paths {
			printFile(path)
		}
		printStats(res.Stats.Seats, res.Stats.Occupied, res.CacheInfo.RenderHit)
		return nil
	})
}

// writeArtifacts writes each artifact to base.<format>. A single artifact
// goes to output verbatim when one was given.
func writeArtifacts(artifacts map[string][]byte, base, output string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
			path = output
		}
		if err := writeFile(path, artifacts[f]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
