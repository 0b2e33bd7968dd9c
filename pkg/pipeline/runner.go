package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relief/pkg/cache"
	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/observability"
	"github.com/matzehuels/relief/pkg/recipe"
)

// Runner executes recipes with caching.
//
// The Runner holds no per-run state. Multiple goroutines can safely use
// the same Runner with different recipes and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs every step of rec against inputs, which must contain a grid
// for each declared input. The inputs map is not modified.
//
// Step errors keep their code and are prefixed with the step index and
// operation. Cancelling ctx stops the run between steps.
func (r *Runner) Execute(ctx context.Context, rec *recipe.Recipe, inputs map[string]*heightmap.Grid, opts Options) (_ *Result, err error) {
	if rec == nil {
		return nil, errors.New(errors.ErrCodeInvalidRecipe, "recipe is required")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	named := make(map[string]*heightmap.Grid, len(rec.Inputs)+len(rec.Steps))
	for _, name := range rec.Inputs {
		g := inputs[name]
		if g == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "input %q not provided", name)
		}
		named[name] = g
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Recipe: rec.Name,
		Named:  named,
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, result.RunID, rec.Name, len(rec.Steps))
	start := time.Now()
	defer func() {
		hooks.OnRunComplete(ctx, result.RunID, time.Since(start), err)
	}()

	var current *heightmap.Grid
	for i, step := range rec.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		src := current
		if name := rec.Source(i); name != "" {
			src = named[name]
		}
		var with *heightmap.Grid
		if step.With != "" {
			with = named[step.With]
		}

		stepStart := time.Now()
		hooks.OnStepStart(ctx, result.RunID, step.Op)
		out, hit, err := r.ApplyWithCacheInfo(ctx, step, src, with, opts)
		elapsed := time.Since(stepStart)
		hooks.OnStepComplete(ctx, result.RunID, step.Op, hit, elapsed, err)
		if err != nil {
			return nil, recipe.WrapStep(i, step.Op, err)
		}

		logger.Debug("applied step",
			"step", i,
			"op", step.Op,
			"min", out.MinValue(),
			"max", out.MaxValue(),
			"cached", hit,
			"duration", elapsed)

		if hit {
			result.CacheInfo.Hits++
		} else {
			result.CacheInfo.Misses++
		}
		if step.As != "" {
			named[step.As] = out
		}
		if opts.Stages {
			result.Stages = append(result.Stages, Stage{
				Index:    i,
				Op:       step.Op,
				Name:     step.As,
				Grid:     out,
				Cached:   hit,
				Duration: elapsed,
			})
		}
		result.Stats.StepTimes = append(result.Stats.StepTimes, elapsed)
		current = out
	}

	result.Output = current
	result.Stats.Steps = len(rec.Steps)

	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, current, opts.Formats, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.CacheInfo.RenderHit = hit
		result.Stats.RenderTime = time.Since(renderStart)
	}
	result.Stats.Duration = time.Since(start)

	logger.Info("recipe complete",
		"recipe", rec.Name,
		"steps", result.Stats.Steps,
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.Duration)
	return result, nil
}

// ApplyWithCacheInfo applies a single step and reports whether the result
// came from the cache. b is only read by two-grid operations.
func (r *Runner) ApplyWithCacheInfo(ctx context.Context, step recipe.Step, a, b *heightmap.Grid, opts Options) (*heightmap.Grid, bool, error) {
	r.applyLogger(&opts)
	op, ok := recipe.Lookup(step.Op)
	if !ok {
		return nil, false, errors.New(errors.ErrCodeInvalidOperation, "unknown operation %q", step.Op)
	}
	if err := op.Check(step); err != nil {
		return nil, false, err
	}
	grids := []*heightmap.Grid{a}
	if op.Arity == 2 {
		grids = append(grids, b)
	}
	for _, g := range grids {
		if g == nil {
			return nil, false, errors.New(errors.ErrCodeInvalidInput, "%s needs %d grid(s)", op.Name, op.Arity)
		}
	}

	cacheHooks := observability.Cache()
	cacheKey := r.Keyer.StepKey(cache.HashGrids(grids...), step.Op, step.Key())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			opts.Logger.Warn("cache read failed", "op", step.Op, "err", err)
		}
		if hit {
			if g, err := gridio.UnmarshalGrid(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "step")
				return g, true, nil
			}
			// Undecodable entry: recompute and overwrite.
		}
	}
	cacheHooks.OnCacheMiss(ctx, "step")

	out, err := op.Apply(step, a, b)
	if err != nil {
		return nil, false, err
	}

	if data, err := gridio.MarshalGrid(out); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLStep); err != nil {
			opts.Logger.Warn("cache write failed", "op", step.Op, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "step", len(data))
		}
	}
	return out, false, nil
}

// Apply is a convenience wrapper that calls ApplyWithCacheInfo and discards the cache hit info.
func (r *Runner) Apply(ctx context.Context, step recipe.Step, a, b *heightmap.Grid, opts Options) (*heightmap.Grid, error) {
	g, _, err := r.ApplyWithCacheInfo(ctx, step, a, b, opts)
	return g, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
