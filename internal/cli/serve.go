package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/relief/pkg/api"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		dataDir string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve transforms and recipe runs over HTTP",
		Long: `Start the HTTP API. The listen address and data directory default to
server.listen and server.data_dir from the config file. Recipe inputs may
reference grid files by relative path under the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("listen") {
				listen = c.Settings.Server.Listen
			}
			if !cmd.Flags().Changed("data-dir") {
				dataDir = expandHome(c.Settings.Server.DataDir)
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.NewServer(api.Config{
				Runner:  runner,
				Logger:  c.Logger,
				DataDir: dataDir,
			})
			backend := c.Settings.Cache.Backend
			if noCache {
				backend = backendNone
			}
			if dataDir == "" {
				dataDir = "(path references disabled)"
			}
			printKeyValue("Listen", listen)
			printKeyValue("Cache", backend)
			printKeyValue("Data dir", dataDir)
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", defaultListen, "listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for grid path references (default server.data_dir)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
