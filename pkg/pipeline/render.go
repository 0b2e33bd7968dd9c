package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relief/pkg/cache"
	"github.com/matzehuels/relief/pkg/heightmap"
	"github.com/matzehuels/relief/pkg/observability"
	"github.com/matzehuels/relief/pkg/render"
)

// RenderWithCacheInfo renders g in every format, rendering uncached formats
// concurrently. The bool reports whether every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *heightmap.Grid, formats []string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	gridHash := cache.HashGrid(g)
	artifacts := make(map[string][]byte, len(formats))
	var missing []string
	for _, format := range formats {
		key := r.Keyer.RenderKey(gridHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "render")
				artifacts[format] = data
				continue
			}
		}
		cacheHooks.OnCacheMiss(ctx, "render")
		missing = append(missing, format)
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for _, format := range missing {
		format := format
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := render.Render(g, format, opts.Render)
			if err != nil {
				return err
			}
			key := r.Keyer.RenderKey(gridHash, opts.RenderKeyOpts(format))
			if err := r.Cache.Set(egCtx, key, data, cache.TTLRender); err != nil {
				opts.Logger.Warn("cache write failed", "format", format, "err", err)
			} else {
				cacheHooks.OnCacheSet(egCtx, "render", len(data))
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := eg.Wait()
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	opts.Logger.Debug("rendered outputs",
		"formats", formats,
		"cached", len(formats)-len(missing),
		"duration", time.Since(start))
	return artifacts, len(missing) == 0, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *heightmap.Grid, formats []string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, formats, opts)
	return artifacts, err
}
