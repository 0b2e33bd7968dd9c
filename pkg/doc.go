// Package pkg provides the core libraries for Relief heightmap processing.
//
// # Overview
//
// Relief turns rectangular grids of elevation values into terrain-like
// heightmaps by chaining pure transforms: blending, rescaling, curving,
// ridging and radial or vertical falloff. The pkg directory is organized
// into three areas:
//
//  1. [heightmap] - The immutable grid value type and its [heightmap/transform] operations
//  2. [recipe] and [pipeline] - Declarative step chains and their cached execution
//  3. [cache], [io], [render], [stats] and [api] - Infrastructure around the pipeline
//
// # Architecture
//
// The typical data flow through Relief:
//
//	Grid files (JSON / CSV)
//	         ↓
//	    [io] package (decode and validate)
//	         ↓
//	    [recipe] package (parse steps from TOML, YAML or JSON)
//	         ↓
//	    [pipeline] package (run steps, consult [cache] per step)
//	         ↓
//	    [render] package (PNG, SVG or PDF heatmaps)
//
// # Quick Start
//
// Apply transforms directly:
//
//	import (
//	    "github.com/matzehuels/relief/pkg/heightmap"
//	    "github.com/matzehuels/relief/pkg/heightmap/transform"
//	)
//
//	g, _ := heightmap.New([][]float32{{0, 1}, {2, 3}})
//	g, _ = transform.Map(g, 0, 100)
//	g = transform.CircularFalloffAbsolute(g, 1.5)
//
// Run a recipe with caching:
//
//	rec, _ := recipe.Load("island.toml")
//	fc, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(fc, cache.NewDefaultKeyer(), logger)
//	defer runner.Close()
//	result, _ := runner.Execute(ctx, rec, map[string]*heightmap.Grid{"base": g}, pipeline.Options{})
//
// # Main Packages
//
// [heightmap] - The Grid type. Grids are rectangular, immutable after
// construction and safe for concurrent reads.
//
// [heightmap/transform] - Pure grid operations. Each returns a new grid and
// never mutates its inputs.
//
// [recipe] - Recipe files and the operation registry used by the CLI and API
// to validate steps and their parameters.
//
// [pipeline] - Executes recipes. Every step result is cached under a key
// derived from its input grids and parameters, so editing one step only
// recomputes that step and those after it.
//
// [cache] - Cache backends: [cache.NullCache], [cache.FileCache] for the CLI
// and [cache.RedisCache] for shared servers.
//
// [render] - Heatmap and grayscale images, plus ASCII shading for terminals.
//
// [stats] - Summary statistics and histograms.
//
// [api] - HTTP handlers exposing transforms and recipe runs.
//
// [errors] - Coded errors shared by the CLI and API.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
//	go test ./pkg/...                         # All tests
//	go test ./pkg/heightmap/transform/...     # Specific package
//	go test -run Example ./pkg/...            # Examples only
//
// [heightmap]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/heightmap
// [heightmap/transform]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/heightmap/transform
// [recipe]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/recipe
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/render
// [stats]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/stats
// [api]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/relief/pkg/observability
package pkg
