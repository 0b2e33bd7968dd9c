package cache

// Keyer builds cache keys for the pipeline.
type Keyer interface {
	// StepKey identifies the output of one transform step. inputHash covers
	// every grid the step reads; params is the step's parameter fingerprint.
	StepKey(inputHash, op, params string) string

	// RenderKey identifies an image rendered from a grid.
	RenderKey(gridHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts holds the render options that change the output bytes.
type RenderKeyOpts struct {
	Format  string  `json:"format"`
	Mode    string  `json:"mode"`
	Palette string  `json:"palette,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StepKey returns "step:<sha256>".
func (DefaultKeyer) StepKey(inputHash, op, params string) string {
	return hashKey("step", inputHash, op, params)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(gridHash string, opts RenderKeyOpts) string {
	return hashKey("render", gridHash, opts)
}
