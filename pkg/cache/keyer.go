package cache

// Keyer derives cache keys for artifacts.
type Keyer interface {
	// ArtifactKey returns the key of the artifact in format produced from
	// the machine whose canonical document hashes to machineHash.
	ArtifactKey(machineHash, format string) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(machineHash, format string) string {
	return hashKey("artifact", machineHash, format)
}

// ScopedKeyer wraps a Keyer with a prefix so that separate namespaces (for
// example different tool versions) never share entries.
//
//	k := cache.NewScopedKeyer(nil, "v1.2.0:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(machineHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(machineHash, format)
}
