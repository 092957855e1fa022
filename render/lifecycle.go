// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"log/slog"
	"sync"
)

// State is the GPU context state tracked by the Lifecycle.
//
// Transitions: StateValid → StateLost → StateValid (restore), and
// StateValid/StateLost → StateDisposed (terminal).
type State uint8

const (
	// StateValid means GPU resources are usable.
	StateValid State = iota

	// StateLost means the GPU context was lost; every handle is invalid
	// and frames are dropped, not queued.
	StateLost

	// StateDisposed is terminal.
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateLost:
		return "lost"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// ContextEvent is delivered to the telemetry collaborator once per state
// transition.
type ContextEvent uint8

const (
	// EventContextLost fires on the Valid → Lost transition.
	EventContextLost ContextEvent = iota

	// EventContextRestored fires after resources are recreated on the
	// Lost → Valid transition.
	EventContextRestored
)

// Handle is an opaque reference to one logical GPU resource (texture,
// buffer, or program). At most one valid Handle exists per logical
// resource; all handles owned by a Lifecycle become invalid atomically on
// context loss.
type Handle struct {
	label string
	lc    *Lifecycle
	valid bool // guarded by lc.mu
}

// Label returns the debug label the handle was created with.
func (h *Handle) Label() string {
	return h.label
}

// Valid reports whether the underlying resource is usable.
func (h *Handle) Valid() bool {
	if h == nil {
		return false
	}
	h.lc.mu.Lock()
	defer h.lc.mu.Unlock()
	return h.valid
}

// Lifecycle owns the context state machine and the registry of resource
// handles. Event delivery mechanisms (WebGPU device-lost callbacks, window
// system signals) call OnContextLost and OnContextRestored directly, which
// keeps the logic testable by plain invocation.
//
// Lifecycle is safe for concurrent use; loss and restore may arrive from
// any goroutine, including mid-frame.
type Lifecycle struct {
	mu      sync.Mutex
	state   State
	handles map[*Handle]struct{}

	// restore recreates the owner's resources on Lost → Valid.
	restore func() error

	onEvent func(ContextEvent)
	log     *slog.Logger
}

// NewLifecycle creates a Lifecycle in StateValid. onEvent may be nil.
func NewLifecycle(onEvent func(ContextEvent), log *slog.Logger) *Lifecycle {
	return &Lifecycle{
		state:   StateValid,
		handles: make(map[*Handle]struct{}),
		onEvent: onEvent,
		log:     log,
	}
}

// SetRestoreFunc installs the resource recreation hook invoked on restore.
func (l *Lifecycle) SetRestoreFunc(fn func() error) {
	l.mu.Lock()
	l.restore = fn
	l.mu.Unlock()
}

// State returns the current context state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Usable reports whether rendering may proceed.
func (l *Lifecycle) Usable() bool {
	return l.State() == StateValid
}

// NewHandle registers a new resource handle. Handles created while the
// context is lost or disposed start invalid.
func (l *Lifecycle) NewHandle(label string) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := &Handle{label: label, lc: l, valid: l.state == StateValid}
	l.handles[h] = struct{}{}
	return h
}

// Release invalidates the handle and removes it from the registry.
// Releasing nil or an already-released handle is a no-op.
func (l *Lifecycle) Release(h *Handle) {
	if h == nil {
		return
	}
	l.mu.Lock()
	h.valid = false
	delete(l.handles, h)
	l.mu.Unlock()
}

// ValidHandles returns the number of currently valid handles.
func (l *Lifecycle) ValidHandles() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for h := range l.handles {
		if h.valid {
			n++
		}
	}
	return n
}

// OnContextLost transitions Valid → Lost: every handle is invalidated
// atomically and the event is delivered once. Repeated calls while
// already lost, and calls after dispose, are no-ops.
//
// Loss may arrive at any point, including between the upload and draw of
// a single frame; the in-flight frame is abandoned by the render loop.
func (l *Lifecycle) OnContextLost() {
	l.mu.Lock()
	if l.state != StateValid {
		l.mu.Unlock()
		return
	}
	l.state = StateLost
	for h := range l.handles {
		h.valid = false
	}
	n := len(l.handles)
	l.mu.Unlock()

	if l.log != nil {
		l.log.Warn("render: gpu context lost", "invalidated", n)
	}
	l.notify(EventContextLost)
}

// OnContextRestored transitions Lost → Valid and runs the restore hook
// exactly once per transition. If restore fails the state reverts to Lost
// and the error is returned; callers retry on the next restore signal.
// Calls in any other state are no-ops, so repeated restore signals never
// duplicate resources.
func (l *Lifecycle) OnContextRestored() error {
	l.mu.Lock()
	if l.state != StateLost {
		l.mu.Unlock()
		return nil
	}
	l.state = StateValid
	restore := l.restore
	l.mu.Unlock()

	if restore != nil {
		if err := restore(); err != nil {
			l.mu.Lock()
			if l.state == StateValid {
				l.state = StateLost
			}
			l.mu.Unlock()
			if l.log != nil {
				l.log.Warn("render: context restore failed", "err", err)
			}
			return err
		}
	}

	if l.log != nil {
		l.log.Info("render: gpu context restored")
	}
	l.notify(EventContextRestored)
	return nil
}

// Dispose transitions to the terminal state and invalidates every handle.
// Idempotent.
func (l *Lifecycle) Dispose() {
	l.mu.Lock()
	if l.state == StateDisposed {
		l.mu.Unlock()
		return
	}
	l.state = StateDisposed
	for h := range l.handles {
		h.valid = false
	}
	l.handles = make(map[*Handle]struct{})
	l.mu.Unlock()
}

func (l *Lifecycle) notify(ev ContextEvent) {
	if l.onEvent != nil {
		l.onEvent(ev)
	}
}
