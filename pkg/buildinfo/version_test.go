package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestCacheScope(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "dev", "abc123"
	if got := CacheScope(); got != "dev-abc123:" {
		t.Errorf("CacheScope() = %q, want %q", got, "dev-abc123:")
	}

	Version = "v1.2.3"
	if got := CacheScope(); got != "v1.2.3:" {
		t.Errorf("CacheScope() = %q, want %q", got, "v1.2.3:")
	}
}
