// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu accelerates the grading pipeline with WebGPU compute.
//
// The package compiles the engine's WGSL grading shader to SPIR-V with
// naga, builds the compute pipeline and bind group layouts against the
// HAL device provided by the host, and registers itself as the
// highest-priority render backend. Importing the package for its side
// effect is enough:
//
//	import _ "github.com/gogpu/camstudio/backend/wgpu"
//
// Frame dispatch through texture bind groups requires HAL buffer-binding
// extensions that are not exposed yet, so Grade currently hands finished
// pipelines back to the engine's software path per frame. Shader
// compilation, module creation, and texture management run against the
// real device, which keeps the GPU contract validated end to end.
package wgpu
