package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relief/pkg/recipe"
)

// opsCommand creates the ops command listing the registered operations.
func (c *CLI) opsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the available operations and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := recipe.Operations()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(ops)
			}
			for _, op := range ops {
				fmt.Println(StyleHighlight.Render(op.Name) + " " + StyleDim.Render(formatParams(op)))
				printDetail("%s", op.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print operations as JSON")
	return cmd
}

// formatParams renders an operation's grid arity and parameter defaults,
// e.g. "(2 grids) weight=0.5".
func formatParams(op recipe.Operation) string {
	parts := []string{"(1 grid)"}
	if op.Arity == 2 {
		parts[0] = "(2 grids)"
	}
	for _, p := range op.Params {
		parts = append(parts, p.Name+"="+strconv.FormatFloat(p.Default, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}
