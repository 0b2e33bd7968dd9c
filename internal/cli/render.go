package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	render  render.Options
	noCache bool
}

// renderCommand creates the render command for drawing grid files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <grid>",
		Short: "Render a grid as a heatmap or grayscale image",
		Long: `Render a grid file as a heatmap (png, svg, pdf) or as an exact
16-bit grayscale PNG (--mode gray). Output files are named after the grid
unless -o is given.`,
		Example: `  relief render island.json
  relief render island.json --format png,pdf --palette heat
  relief render island.json --mode gray -o island-height.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", render.FormatPNG, "output format(s): png, svg, pdf (comma-separated)")
	addRenderFlags(cmd, &opts.render)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the grid and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		return fmt.Errorf("no output format given")
	}
	runOpts := pipeline.Options{Formats: formats, Render: opts.render, Logger: logger}
	if err := runOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	g, err := gridio.ImportFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Rendering %s (%s)", input, g)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, g, formats, runOpts)
	if err != nil {
		return err
	}
	if cached {
		logger.Debug("render served from cache")
	}

	printSuccess("Rendered %s", StyleHighlight.Render(input))
	return writeArtifacts(basePath(opts.output, input), artifacts, formats)
}
