package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relief/pkg/heightmap"
	gridio "github.com/matzehuels/relief/pkg/io"
)

// LoadInputs reads the grid files named in paths concurrently, keyed by
// input name. The first failure cancels the remaining loads.
func LoadInputs(ctx context.Context, paths map[string]string, opts Options) (map[string]*heightmap.Grid, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	grids := make(map[string]*heightmap.Grid, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for name, path := range paths {
		name, path := name, path
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g, err := gridio.ImportFile(path)
			if err != nil {
				return fmt.Errorf("input %s: %w", name, err)
			}
			opts.Logger.Debug("loaded input", "name", name, "path", path, "shape", g.String())
			mu.Lock()
			grids[name] = g
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}
