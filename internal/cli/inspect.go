package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/stats"
)

// inspectCommand creates the inspect command for grid statistics.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		bins    int
		asJSON  bool
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <grid>",
		Short: "Print grid statistics and a value histogram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gridio.ImportFile(args[0])
			if err != nil {
				return err
			}
			s := stats.Summarize(g, bins)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			fmt.Println(StyleTitle.Render(args[0]))
			fmt.Println(formatSummary(s, 40))
			if s.NonFinite > 0 {
				printWarning("%d non-finite cells excluded from statistics", s.NonFinite)
			}
			if preview {
				fmt.Println()
				for _, line := range shadeGrid(g, 64, 24) {
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&bins, "bins", stats.DefaultBins, "histogram bins")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&preview, "preview", false, "also print a shaded preview")

	return cmd
}
