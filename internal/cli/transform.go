package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/relief/pkg/heightmap"
	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/recipe"
)

// transformOpts holds the command-line flags for the transform command.
type transformOpts struct {
	params  map[string]*float64
	output  string
	noCache bool
	refresh bool
}

// paramFlags lists the operation parameters exposed as flags.
var paramFlags = []string{
	recipe.ParamWeight,
	recipe.ParamMin,
	recipe.ParamMax,
	recipe.ParamPower,
	recipe.ParamStrength,
	recipe.ParamOffset,
}

// transformCommand creates the transform command for single operations.
func (c *CLI) transformCommand() *cobra.Command {
	opts := transformOpts{params: make(map[string]*float64)}

	cmd := &cobra.Command{
		Use:   "transform <op> <grid> [with]",
		Short: "Apply one operation to a grid file",
		Long: `Apply a single operation to a grid file and write the result.

merge reads a second grid as its third argument. Parameters not given as
flags take their defaults; see "relief ops". The result is written as JSON
to stdout unless -o is given.`,
		Example: `  relief transform map base.json --min 0 --max 100 -o scaled.json
  relief transform merge base.json detail.json --weight 0.7
  relief transform circular-falloff-absolute base.json --strength 1.5`,
		Args:      cobra.RangeArgs(2, 3),
		ValidArgs: operationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTransform(cmd.Context(), cmd.Flags(), args, &opts)
		},
	}

	for _, name := range paramFlags {
		opts.params[name] = new(float64)
		cmd.Flags().Float64Var(opts.params[name], name, 0, name+" parameter")
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output grid file (.json or .csv; default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite the cached result")

	return cmd
}

func (c *CLI) runTransform(ctx context.Context, flags *pflag.FlagSet, args []string, opts *transformOpts) error {
	logger := loggerFromContext(ctx)

	op, ok := recipe.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown operation %q (available: %s)", args[0], strings.Join(operationNames(), ", "))
	}
	if want := op.Arity + 1; len(args) != want {
		return fmt.Errorf("%s takes %d grid argument(s), got %d", op.Name, op.Arity, len(args)-1)
	}

	params := make(map[string]float64)
	for name, v := range opts.params {
		if flags.Changed(name) {
			params[name] = *v
		}
	}
	step, err := recipe.NewStep(op.Name, params)
	if err != nil {
		return err
	}

	a, err := gridio.ImportFile(args[1])
	if err != nil {
		return err
	}
	var b *heightmap.Grid
	if op.Arity == 2 {
		if b, err = gridio.ImportFile(args[2]); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	out, cached, err := runner.ApplyWithCacheInfo(ctx, step, a, b, pipeline.Options{
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	logger.Debug("applied", "op", step.Key(), "shape", out.String(), "cached", cached)

	if opts.output == "" {
		return gridio.WriteJSON(out, os.Stdout)
	}
	if err := gridio.ExportFile(out, opts.output); err != nil {
		return err
	}
	printSuccess("Applied %s", StyleHighlight.Render(step.Key()))
	printFile(opts.output)
	return nil
}

func operationNames() []string {
	ops := recipe.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}
