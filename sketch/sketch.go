// Package sketch holds paths that are being drawn point by point, so
// that they can be generalized while they are still growing.
package sketch

import (
	"sort"
	"sync"

	"github.com/paulhankin/pathgen/paths"
)

// A Buffer is a path that points are appended to. It is safe for
// concurrent use; readers work on snapshots, so generalizing a buffer
// never blocks appends for longer than a copy.
type Buffer struct {
	mu sync.Mutex
	v  []paths.Vec2
}

// Append adds points to the end of the buffer and returns the new length.
func (b *Buffer) Append(v ...paths.Vec2) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.v = append(b.v, v...)
	return len(b.v)
}

// Len returns the number of points in the buffer.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.v)
}

// Snapshot returns a copy of the points in the buffer.
func (b *Buffer) Snapshot() []paths.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := make([]paths.Vec2, len(b.v))
	copy(r, b.v)
	return r
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.v = nil
}

// Generalize runs paths.Generalize on a snapshot of the buffer.
func (b *Buffer) Generalize(opts *paths.Options) (*paths.Report, error) {
	return paths.Generalize(b.Snapshot(), opts)
}

// A Registry is a set of named buffers.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*Buffer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: map[string]*Buffer{}}
}

// Get returns the buffer called id, creating it if it doesn't exist.
func (r *Registry) Get(id string) *Buffer {
	r.mu.RLock()
	b, ok := r.m[id]
	r.mu.RUnlock()
	if ok {
		return b
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.m[id]; ok {
		return b
	}
	b = &Buffer{}
	r.m[id] = b
	return b
}

// Lookup returns the buffer called id, if there is one.
func (r *Registry) Lookup(id string) (*Buffer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.m[id]
	return b, ok
}

// Delete removes the buffer called id, reporting whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[id]
	delete(r.m, id)
	return ok
}

// IDs returns the names of all buffers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.m))
	for id := range r.m {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
