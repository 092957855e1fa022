// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned by engine operations after Dispose.
// It is the only precondition failure Render surfaces; every per-frame
// condition (context loss, allocation pressure) degrades to a dropped
// frame instead.
var ErrDisposed = errors.New("render: engine disposed")

// ErrResourceExhausted indicates texture or buffer allocation failed even
// after the engine degraded to a lower resolution and retried once.
var ErrResourceExhausted = errors.New("render: resource allocation failed")

// ErrFallbackToCPU indicates a GPU backend cannot handle this frame.
// The engine transparently falls back to the CPU pipeline.
var ErrFallbackToCPU = errors.New("render: falling back to CPU rendering")

// ShaderCompileError is fatal at construction time: the engine is unusable
// until reconstructed with a working backend.
type ShaderCompileError struct {
	// Backend names the backend whose compilation failed.
	Backend string

	// Err is the underlying compiler error.
	Err error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("render: %s: shader compilation failed: %v", e.Backend, e.Err)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}
