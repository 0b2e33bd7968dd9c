package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relief/pkg/buildinfo"
	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/recipe"
	"github.com/matzehuels/relief/pkg/stats"
)

// TransformRequest is the body of POST /v1/transform/{op}.
type TransformRequest struct {
	Grid    json.RawMessage    `json:"grid"`
	With    json.RawMessage    `json:"with,omitempty"`
	Params  map[string]float64 `json:"params,omitempty"`
	Refresh bool               `json:"refresh,omitempty"`
}

// TransformResponse is the result of a single transform.
type TransformResponse struct {
	Grid   json.RawMessage `json:"grid"`
	Cached bool            `json:"cached"`
}

// RunRequest is the body of POST /v1/recipes/run.
type RunRequest struct {
	Recipe  json.RawMessage            `json:"recipe"`
	Inputs  map[string]json.RawMessage `json:"inputs"`
	Formats []string                   `json:"formats,omitempty"`
	Refresh bool                       `json:"refresh,omitempty"`
}

// RunResponse is the result of a recipe run. Artifacts are base64 encoded.
type RunResponse struct {
	RunID     string                     `json:"run_id"`
	Recipe    string                     `json:"recipe,omitempty"`
	Output    json.RawMessage            `json:"output"`
	Named     map[string]json.RawMessage `json:"named,omitempty"`
	Artifacts map[string][]byte          `json:"artifacts,omitempty"`
	Stats     RunStats                   `json:"stats"`
}

// RunStats summarizes a run.
type RunStats struct {
	Steps       int     `json:"steps"`
	DurationMS  float64 `json:"duration_ms"`
	CacheHits   int     `json:"cache_hits"`
	CacheMisses int     `json:"cache_misses"`
}

// StatsRequest is the body of POST /v1/stats.
type StatsRequest struct {
	Grid json.RawMessage `json:"grid"`
	Bins int             `json:"bins,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) listOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"operations": recipe.Operations()})
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	op := chi.URLParam(r, "op")
	step, err := recipe.NewStep(op, req.Params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := decodeGrid(req.Grid, "grid")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var b *heightmap.Grid
	if len(req.With) > 0 {
		if b, err = decodeGrid(req.With, "with"); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	out, hit, err := s.runner.ApplyWithCacheInfo(r.Context(), step, a, b, pipeline.Options{
		Refresh: req.Refresh,
		Logger:  s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := gridio.MarshalGrid(out)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{Grid: data, Cached: hit})
}

func (s *Server) runRecipe(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Recipe) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidRecipe, "recipe is required"))
		return
	}
	rec, err := recipe.Parse(req.Recipe, recipe.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inputs := make(map[string]*heightmap.Grid, len(req.Inputs))
	for name, raw := range req.Inputs {
		g, err := s.resolveInput(name, raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		inputs[name] = g
	}

	result, err := s.runner.Execute(r.Context(), rec, inputs, pipeline.Options{
		Refresh: req.Refresh,
		Formats: req.Formats,
		Logger:  s.logger.With("request", RequestID(r.Context())),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := RunResponse{
		RunID:     result.RunID,
		Recipe:    result.Recipe,
		Artifacts: result.Artifacts,
		Stats: RunStats{
			Steps:       result.Stats.Steps,
			DurationMS:  float64(result.Stats.Duration.Microseconds()) / 1000,
			CacheHits:   result.CacheInfo.Hits,
			CacheMisses: result.CacheInfo.Misses,
		},
	}
	if resp.Output, err = gridio.MarshalGrid(result.Output); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, step := range rec.Steps {
		if step.As == "" {
			continue
		}
		if resp.Named == nil {
			resp.Named = make(map[string]json.RawMessage)
		}
		if resp.Named[step.As], err = gridio.MarshalGrid(result.Named[step.As]); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := decodeGrid(req.Grid, "grid")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Summarize(g, req.Bins))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body: %v", err)
	}
	return nil
}

func decodeGrid(raw json.RawMessage, field string) (*heightmap.Grid, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is required", field)
	}
	g, err := gridio.UnmarshalGrid(raw)
	if err != nil {
		return nil, &errors.Error{
			Code:    errors.GetCode(err),
			Message: field + ": " + errors.UserMessage(err),
			Cause:   stderrors.Unwrap(err),
		}
	}
	return g, nil
}

// resolveInput decodes an inline grid or loads a {"path": ...} reference
// from the data directory.
func (s *Server) resolveInput(name string, raw json.RawMessage) (*heightmap.Grid, error) {
	var ref struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil || ref.Path == "" {
		return decodeGrid(raw, "inputs."+name)
	}
	if s.dataDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "inputs.%s: path references are disabled", name)
	}
	if err := errors.ValidatePath(ref.Path); err != nil {
		return nil, err
	}
	return gridio.ImportFile(filepath.Join(s.dataDir, filepath.FromSlash(ref.Path)))
}
