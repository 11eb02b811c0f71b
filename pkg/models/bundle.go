package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Bundle is a deployable unit of user code: named source files plus the
// entrypoint that performs trigger registration when loaded.
type Bundle struct {
	Files      map[string]string `json:"files"      validate:"required"`
	Entrypoint string            `json:"entrypoint" validate:"required"`
}

// EntrypointSource returns the entrypoint file's contents.
func (b Bundle) EntrypointSource() (string, bool) {
	src, ok := b.Files[b.Entrypoint]

	return src, ok
}

// Key returns a stable content hash of the bundle, used as the registry
// cache key. Two bundles with identical files and entrypoint share one
// loaded trigger set.
func (b Bundle) Key() string {
	names := make([]string, 0, len(b.Files))
	for name := range b.Files {
		names = append(names, name)
	}

	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(b.Entrypoint))

	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(b.Files[name]))
	}

	return hex.EncodeToString(h.Sum(nil))
}
