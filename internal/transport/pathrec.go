package transport

import (
	"sync"

	"github.com/fwordingham/arctorus/internal/vecmat"
)

// PathArchive collects per-packet position histories when path recording
// is enabled. Appends happen once per packet, at termination, under the
// archive lock; recording during flight is lock-free because the path
// belongs to the packet.
type PathArchive struct {
	mu    sync.Mutex
	paths [][]vecmat.Vec3
}

func (a *PathArchive) add(path []vecmat.Vec3) {
	if len(path) == 0 {
		return
	}
	a.mu.Lock()
	a.paths = append(a.paths, path)
	a.mu.Unlock()
}

// Paths copies the archive.
func (a *PathArchive) Paths() [][]vecmat.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]vecmat.Vec3, len(a.paths))
	for i, p := range a.paths {
		out[i] = append([]vecmat.Vec3(nil), p...)
	}
	return out
}

// Len reports the number of recorded paths.
func (a *PathArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.paths)
}
