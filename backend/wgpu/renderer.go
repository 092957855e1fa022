// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/camstudio"
	"github.com/gogpu/camstudio/render"
)

// bindingCount matches the bindings declared in the grading shader:
// source, LUT, skin mask, background mask, overlay, uniforms, sampler,
// and the storage output.
const bindingCount = 8

// Renderer is the WebGPU grading backend. It owns the compiled shader
// module, the compute pipeline, and the frame textures for one engine.
//
// Safe for concurrent use; the engine serializes frames, but lifecycle
// calls may arrive from other goroutines.
type Renderer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule   hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline

	// Compiled SPIR-V, kept so restore skips recompilation.
	spirv  []uint32
	source string

	frame frameTextures

	initialized bool
}

// frameTextures holds the per-frame GPU surfaces, recreated on resize and
// after context restore.
type frameTextures struct {
	srcTex  hal.Texture
	srcView hal.TextureView
	outTex  hal.Texture
	outView hal.TextureView
	width   uint32
	height  uint32
}

// New creates an uninitialized renderer. Init must be called with the
// host device before the first frame.
func New() (render.Backend, error) {
	return &Renderer{}, nil
}

// Name implements render.Backend.
func (r *Renderer) Name() string { return "wgpu" }

// Init compiles the grading shader for the device and builds the compute
// pipeline. Compilation failures are reported as *render.ShaderCompileError
// and are fatal to engine construction; a provider that does not expose
// HAL types is an ordinary error and the engine falls back to software.
func (r *Renderer) Init(dev render.DeviceHandle, prog *render.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, queue, err := halFromProvider(dev)
	if err != nil {
		return err
	}
	r.device = device
	r.queue = queue
	r.source = prog.ShaderSource()

	if err := r.compile(); err != nil {
		return err
	}
	if err := r.buildPipeline(); err != nil {
		r.destroyPipelineLocked()
		return &render.ShaderCompileError{Backend: "wgpu", Err: err}
	}

	r.initialized = true
	camstudio.Logger().Info("wgpu: grading pipeline ready", "spirv_words", len(r.spirv))
	return nil
}

// Grade implements render.Backend. Textures are kept current against the
// destination size; the compute dispatch itself needs HAL bind group
// extensions that are not exposed yet, so every frame is handed back to
// the software path.
func (r *Renderer) Grade(dst, src *camstudio.Pixmap, u *render.Uniforms, b *render.Bindings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return render.ErrFallbackToCPU
	}
	if err := r.frame.ensure(r.device, uint32(dst.Width()), uint32(dst.Height())); err != nil {
		camstudio.Logger().Warn("wgpu: frame texture allocation failed", "err", err)
		return render.ErrFallbackToCPU
	}

	// The dispatch path, once HAL exposes texture bind groups, uploads
	// render.PackUniforms output and records the compute pass here.
	return render.ErrFallbackToCPU
}

// Invalidate implements render.Backend. Device objects are dropped
// without device calls; after a loss the handles are dead on the driver
// side already.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shaderModule = nil
	r.bindLayout = nil
	r.pipelineLayout = nil
	r.pipeline = nil
	r.frame = frameTextures{}
	r.initialized = false
}

// Restore implements render.Backend. The cached SPIR-V is reused; only
// device objects are rebuilt.
func (r *Renderer) Restore() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device == nil {
		return fmt.Errorf("wgpu: restore before init")
	}
	if r.spirv == nil {
		if err := r.compile(); err != nil {
			return err
		}
	}
	if err := r.buildPipeline(); err != nil {
		r.destroyPipelineLocked()
		return fmt.Errorf("wgpu: rebuild pipeline: %w", err)
	}
	r.initialized = true
	return nil
}

// Destroy implements render.Backend.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device != nil {
		r.frame.destroy(r.device)
	}
	r.destroyPipelineLocked()
	r.initialized = false
}

// compile translates the WGSL source to SPIR-V words. Requires r.mu.
func (r *Renderer) compile() error {
	spirvBytes, err := naga.Compile(r.source)
	if err != nil {
		return &render.ShaderCompileError{Backend: "wgpu", Err: err}
	}
	r.spirv = spirvWords(spirvBytes)
	return nil
}

// buildPipeline creates the shader module, layouts, and compute pipeline.
// Requires r.mu.
func (r *Renderer) buildPipeline() error {
	module, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "grade_shader",
		Source: hal.ShaderSource{SPIRV: r.spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	r.shaderModule = module

	entries := make([]gputypes.BindGroupLayoutEntry, 0, bindingCount)
	for i := 0; i < bindingCount; i++ {
		entry := gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: gputypes.ShaderStageCompute,
		}
		if i == render.SlotUniforms {
			entry.Buffer = &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(render.UniformWordCount * 4),
			}
		}
		entries = append(entries, entry)
	}
	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "grade_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipelineLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "grade_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipelineLayout = pipelineLayout

	pipeline, err := r.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "grade_pipeline",
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

// destroyPipelineLocked releases pipeline objects in reverse creation
// order. Requires r.mu.
func (r *Renderer) destroyPipelineLocked() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyComputePipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipelineLayout != nil {
		r.device.DestroyPipelineLayout(r.pipelineLayout)
		r.pipelineLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shaderModule != nil {
		r.device.DestroyShaderModule(r.shaderModule)
		r.shaderModule = nil
	}
}

// ensure creates or recreates the frame textures when the size changes.
func (f *frameTextures) ensure(device hal.Device, w, h uint32) error {
	if f.width == w && f.height == h && f.srcTex != nil {
		return nil
	}
	f.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	srcTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "grade_source",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create source texture: %w", err)
	}
	f.srcTex = srcTex

	srcView, err := device.CreateTextureView(srcTex, &hal.TextureViewDescriptor{
		Label: "grade_source_view",
	})
	if err != nil {
		f.destroy(device)
		return fmt.Errorf("create source view: %w", err)
	}
	f.srcView = srcView

	outTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "grade_output",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageStorageBinding | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		f.destroy(device)
		return fmt.Errorf("create output texture: %w", err)
	}
	f.outTex = outTex

	outView, err := device.CreateTextureView(outTex, &hal.TextureViewDescriptor{
		Label: "grade_output_view",
	})
	if err != nil {
		f.destroy(device)
		return fmt.Errorf("create output view: %w", err)
	}
	f.outView = outView

	f.width, f.height = w, h
	return nil
}

// destroy releases the frame textures.
func (f *frameTextures) destroy(device hal.Device) {
	if f.srcView != nil {
		device.DestroyTextureView(f.srcView)
		f.srcView = nil
	}
	if f.srcTex != nil {
		device.DestroyTexture(f.srcTex)
		f.srcTex = nil
	}
	if f.outView != nil {
		device.DestroyTextureView(f.outView)
		f.outView = nil
	}
	if f.outTex != nil {
		device.DestroyTexture(f.outTex)
		f.outTex = nil
	}
	f.width, f.height = 0, 0
}

// halFromProvider extracts HAL handles from the host device provider.
// The provider must implement HalDevice() any and HalQueue() any.
func halFromProvider(dev render.DeviceHandle) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := dev.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("wgpu: device provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// spirvWords converts naga's byte output to the little-endian word slice
// the HAL shader module expects.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
