package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/recipe"
	"github.com/matzehuels/relief/pkg/render"
)

// applyOpts holds the command-line flags for the apply command.
type applyOpts struct {
	inputs  []string // name=path pairs, or a bare path for single-input recipes
	output  string   // output grid path; render artifacts share its base name
	formats string   // comma-separated render formats
	render  render.Options
	noCache bool
	refresh bool
	watch   bool
}

// applyCommand creates the apply command for running recipe files.
func (c *CLI) applyCommand() *cobra.Command {
	var opts applyOpts

	cmd := &cobra.Command{
		Use:   "apply <recipe>",
		Short: "Run a recipe over input grids",
		Long: `Run a recipe file (.toml, .yaml or .json) over the grids it declares.

Each declared input is supplied with --input name=path. A recipe with a
single input also accepts a bare path. Every step is cached, so re-running
after editing one step only recomputes that step and the ones after it.`,
		Example: `  relief apply island.toml --input base=base.json --input detail=detail.csv -o island.json
  relief apply island.toml --input base.json --render png,svg
  relief apply island.toml --input base.json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !opts.watch {
				return c.runApply(ctx, args[0], &opts)
			}
			return c.watchApply(ctx, args[0], &opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, "input grid as name=path (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output grid file (.json or .csv; default <recipe>.json)")
	cmd.Flags().StringVar(&opts.formats, "render", "", "also render the result: png, svg, pdf (comma-separated)")
	addRenderFlags(cmd, &opts.render)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute every step and overwrite cached results")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run whenever the recipe or an input file changes")

	return cmd
}

// addRenderFlags registers the shared heatmap options.
func addRenderFlags(cmd *cobra.Command, opts *render.Options) {
	cmd.Flags().StringVar(&opts.Mode, "mode", render.DefaultMode, "render mode: heatmap, gray")
	cmd.Flags().StringVar(&opts.Palette, "palette", render.DefaultPalette, "heatmap palette: "+strings.Join(render.Palettes, ", "))
	cmd.Flags().StringVar(&opts.Title, "title", "", "heatmap title")
	cmd.Flags().Float64Var(&opts.Width, "width", render.DefaultSize, "heatmap width in inches")
	cmd.Flags().Float64Var(&opts.Height, "height", render.DefaultSize, "heatmap height in inches")
}

// runApply loads the recipe and its inputs, executes it, and writes the
// result grid and any requested renders.
func (c *CLI) runApply(ctx context.Context, path string, opts *applyOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	rec, err := recipe.Load(path)
	if err != nil {
		return err
	}
	paths, err := parseInputs(opts.inputs, rec.Inputs)
	if err != nil {
		return err
	}

	runOpts := pipeline.Options{
		Refresh: opts.refresh,
		Formats: parseFormats(opts.formats),
		Render:  opts.render,
		Logger:  logger,
	}
	if err := runOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	inputs, err := pipeline.LoadInputs(ctx, paths, runOpts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Applying %s (%d steps)", rec.Name, len(rec.Steps)))
	spinner.Start()
	result, err := runner.Execute(ctx, rec, inputs, runOpts)
	spinner.Stop()
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = basePath("", path) + ".json"
	}
	if err := gridio.ExportFile(result.Output, output); err != nil {
		return err
	}

	printSuccess("Applied %s", StyleHighlight.Render(rec.Name))
	fmt.Println(formatRunStats(result.Stats.Steps, result.CacheInfo.Hits, result.CacheInfo.Misses, result.Stats.Duration))
	printFile(output)
	if len(runOpts.Formats) > 0 {
		if err := writeArtifacts(basePath(output, path), result.Artifacts, runOpts.Formats); err != nil {
			return err
		}
	} else if !opts.watch {
		printNextStep("Render it", "relief render "+output)
	}
	prog.done(fmt.Sprintf("Applied %d steps", result.Stats.Steps))
	return nil
}

// watchApply runs the recipe once, then again whenever the recipe or one
// of its input files changes. Failed runs are reported and watching
// continues. It returns when ctx is cancelled.
func (c *CLI) watchApply(ctx context.Context, path string, opts *applyOpts) error {
	logger := loggerFromContext(ctx)

	rec, err := recipe.Load(path)
	if err != nil {
		return err
	}
	paths, err := parseInputs(opts.inputs, rec.Inputs)
	if err != nil {
		return err
	}
	files := []string{path}
	for _, p := range paths {
		files = append(files, p)
	}

	w, err := newFileWatcher(files, logger)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) {
		if err := c.runApply(ctx, path, opts); err != nil {
			printError("%v", err)
		}
	}
	run(ctx)
	printInfo("Watching %d files (ctrl+c to stop)", len(files))
	return w.Run(ctx, run)
}

// parseInputs maps --input flags to the recipe's declared inputs.
// Every declared input must be supplied exactly once.
func parseInputs(flags, declared []string) (map[string]string, error) {
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}

	paths := make(map[string]string, len(flags))
	for _, f := range flags {
		name, path, ok := strings.Cut(f, "=")
		if !ok {
			if len(declared) != 1 || len(flags) != 1 {
				return nil, fmt.Errorf("--input %s: use name=path (recipe declares %s)", f, strings.Join(declared, ", "))
			}
			name, path = declared[0], f
		}
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		switch {
		case !known[name]:
			return nil, fmt.Errorf("--input %s: recipe declares no input %q", f, name)
		case path == "":
			return nil, fmt.Errorf("--input %s: empty path", f)
		case paths[name] != "":
			return nil, fmt.Errorf("--input %s: input %q given twice", f, name)
		}
		paths[name] = filepath.Clean(path)
	}

	var missing []string
	for _, name := range declared {
		if paths[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing --input for %s", strings.Join(missing, ", "))
	}
	return paths, nil
}
