package urid

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/plugkit/atom"
	"github.com/plugkit/atom/errors"
)

// Registry assigns dense, stable integer ids to URI strings. The first
// URI ever mapped gets id 1; mapping the same URI again returns the
// same id for the registry's lifetime. Id 0 is never assigned, so it
// can mean "absent" on the wire.
//
// A Registry is safe for concurrent use. Map takes the write lock only
// on first sight of a URI; Unmap and repeat Maps run under the read
// lock.
type Registry struct {
	mu    sync.RWMutex
	byURI map[string]atom.URID
	byID  []string // byID[id-1] is the URI for id
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byURI: make(map[string]atom.URID)}
}

// Map returns the id for uri, assigning the next free id on first
// sight. Empty URIs and URIs containing NUL bytes are rejected.
func (r *Registry) Map(uri string) (atom.URID, error) {
	if uri == "" {
		return 0, errors.InvalidInput(errors.PhaseRegistry, "empty URI")
	}
	if strings.IndexByte(uri, 0) >= 0 {
		return 0, errors.InvalidInput(errors.PhaseRegistry, "URI contains NUL byte")
	}

	r.mu.RLock()
	id, ok := r.byURI[uri]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byURI[uri]; ok {
		return id, nil
	}
	id = atom.URID(len(r.byID) + 1)
	r.byURI[uri] = id
	r.byID = append(r.byID, uri)
	Logger().Debug("mapped URI", zap.String("uri", uri), zap.Uint32("urid", uint32(id)))
	return id, nil
}

// Unmap returns the URI for id, or false if the id was never assigned.
func (r *Registry) Unmap(id atom.URID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) > len(r.byID) {
		return "", false
	}
	return r.byID[id-1], true
}

// Len returns the number of distinct URIs mapped so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

var (
	_ atom.Mapper   = (*Registry)(nil)
	_ atom.Unmapper = (*Registry)(nil)
)
