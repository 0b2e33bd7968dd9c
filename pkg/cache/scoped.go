package cache

// ScopedKeyer wraps a Keyer with a prefix so that several namespaces can
// share one backend, for example one per API tenant:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StepKey generates a prefixed key for a step result.
func (k *ScopedKeyer) StepKey(inputHash, op, params string) string {
	return k.prefix + k.inner.StepKey(inputHash, op, params)
}

// RenderKey generates a prefixed key for a rendered image.
func (k *ScopedKeyer) RenderKey(gridHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(gridHash, opts)
}
