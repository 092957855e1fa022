// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"sort"
	"sync"

	"github.com/gogpu/camstudio"
)

// Backend is a GPU grading path. The engine always keeps the software
// pipeline as the reference path; a backend accelerates the same shader
// on real hardware and may refuse any frame with ErrFallbackToCPU.
type Backend interface {
	// Name identifies the backend ("wgpu", "noop").
	Name() string

	// Init compiles the grading shader for the device. A compilation
	// failure is fatal to engine construction and is reported as a
	// *ShaderCompileError.
	Init(dev DeviceHandle, prog *Program) error

	// Grade renders one frame into dst. Returning ErrFallbackToCPU makes
	// the engine shade the frame in software instead.
	Grade(dst *camstudio.Pixmap, src *camstudio.Pixmap, u *Uniforms, b *Bindings) error

	// Invalidate drops all device resources after a context loss.
	Invalidate()

	// Restore recreates device resources after a context restore.
	Restore() error

	// Destroy releases all resources. The backend is not used afterwards.
	Destroy()
}

// BackendFactory creates a backend instance.
type BackendFactory func() (Backend, error)

type backendEntry struct {
	name      string
	priority  int
	factory   BackendFactory
	available func() bool
}

var (
	backendMu sync.RWMutex
	backends  []backendEntry
)

// RegisterBackend adds a backend to the global registry. Higher priority
// wins during auto-selection. available may be nil, meaning always
// available. Typically called from a backend package's init.
func RegisterBackend(name string, priority int, factory BackendFactory, available func() bool) {
	backendMu.Lock()
	defer backendMu.Unlock()

	for i := range backends {
		if backends[i].name == name {
			backends[i] = backendEntry{name, priority, factory, available}
			return
		}
	}
	backends = append(backends, backendEntry{name, priority, factory, available})
	sort.SliceStable(backends, func(i, j int) bool {
		return backends[i].priority > backends[j].priority
	})
}

// BackendNames lists registered backends in priority order.
func BackendNames() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()

	names := make([]string, len(backends))
	for i, e := range backends {
		names[i] = e.name
	}
	return names
}

// newBestBackend instantiates the highest-priority available backend, or
// returns nil when none is registered or available. Factory errors are
// logged and the next candidate is tried.
func newBestBackend() Backend {
	backendMu.RLock()
	entries := make([]backendEntry, len(backends))
	copy(entries, backends)
	backendMu.RUnlock()

	for _, e := range entries {
		if e.available != nil && !e.available() {
			continue
		}
		b, err := e.factory()
		if err != nil {
			camstudio.Logger().Warn("render: backend unavailable", "backend", e.name, "err", err)
			continue
		}
		return b
	}
	return nil
}
