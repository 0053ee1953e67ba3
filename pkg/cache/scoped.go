package cache

// ScopedKeyer wraps a Keyer with a prefix.
// The HTTP server scopes keys by Graphviz version so that an upgrade does
// not serve layouts produced by the previous build:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "gv:2.44.1:")
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

// PipeKey generates a prefixed key for layout output.
func (k *ScopedKeyer) PipeKey(argv []string, input []byte) string {
	return k.prefix + k.inner.PipeKey(argv, input)
}

// VersionKey generates a prefixed key for a version banner.
func (k *ScopedKeyer) VersionKey(binary string) string {
	return k.prefix + k.inner.VersionKey(binary)
}
