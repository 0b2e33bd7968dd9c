// Package pipeline runs recipes against heightmaps with caching.
//
// The CLI and the API server both execute recipes through a [Runner], so
// caching, logging and hook behavior are the same at every entry point.
//
// # Execution
//
// A run validates the recipe, resolves its declared inputs, and applies
// each step in order. Every step result is cached under a key built from
// the content hash of the grids it reads, the operation, and the step's
// effective parameters, so editing one step of a long recipe only
// recomputes that step and the ones after it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, rec, inputs, pipeline.Options{
//	    Formats: []string{"png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Single steps and renders can be run on their own:
//
//	g, err := runner.Apply(ctx, step, a, nil, opts)
//	images, err := runner.Render(ctx, g, []string{"png", "svg"}, opts)
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relief/pkg/cache"
	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
	"github.com/matzehuels/relief/pkg/render"
)

// Options configures a pipeline run.
type Options struct {
	// Refresh recomputes every step and overwrites cached results.
	Refresh bool `json:"refresh,omitempty"`

	// Stages keeps every intermediate grid in Result.Stages.
	Stages bool `json:"stages,omitempty"`

	// Formats to render the final grid in. Empty means no rendering.
	Formats []string `json:"formats,omitempty"`

	// Render controls how Formats are drawn.
	Render render.Options `json:"-"`

	// Concurrency bounds parallel file loads and renders.
	// Zero uses GOMAXPROCS.
	Concurrency int `json:"-"`

	// Logger receives run and step logs. Nil uses the runner's logger.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the render settings and fills defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateFormats(o.Formats, o.Render); err != nil {
		return err
	}
	o.Render = o.Render.WithDefaults()
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateFormats checks every format against the render options.
func ValidateFormats(formats []string, opts render.Options) error {
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidInput, "format %q requested twice", f)
		}
		seen[f] = true
		if err := opts.Validate(f); err != nil {
			return err
		}
	}
	return nil
}

// RenderKeyOpts returns the cache key options for one format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	r := o.Render.WithDefaults()
	return cache.RenderKeyOpts{
		Format:  format,
		Mode:    r.Mode,
		Palette: r.Palette,
		Width:   r.Width,
		Height:  r.Height,
	}
}

// Stage is one step's output, recorded when Options.Stages is set.
type Stage struct {
	Index    int
	Op       string
	Name     string // As name, if any
	Grid     *heightmap.Grid
	Cached   bool
	Duration time.Duration
}

// Result contains the outputs of a recipe run.
type Result struct {
	// RunID identifies the run in logs and hooks.
	RunID string

	// Recipe is the name of the recipe that ran.
	Recipe string

	// Output is the last step's grid.
	Output *heightmap.Grid

	// Named holds the inputs and every output stored with As.
	Named map[string]*heightmap.Grid

	// Stages holds every step's output when Options.Stages is set.
	Stages []Stage

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo counts step cache hits and misses.
	CacheInfo CacheInfo
}

// Stats contains execution statistics.
type Stats struct {
	Steps      int
	Duration   time.Duration
	StepTimes  []time.Duration
	RenderTime time.Duration
}

// CacheInfo counts step cache lookups.
type CacheInfo struct {
	Hits      int
	Misses    int
	RenderHit bool // whether every artifact came from cache
}
