// Package compute runs collision kernels on the GPU via WebGPU.
// It is independent of raylib's OpenGL context.
package compute

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// System owns the WebGPU device. Initialize once at startup.
type System struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// compiled pipelines by name
	pipelines map[string]*Pipeline
	mu        sync.Mutex
}

// Pipeline is a compiled compute shader with an explicit bind group layout.
type Pipeline struct {
	shader   *wgpu.ShaderModule
	layout   *wgpu.BindGroupLayout
	pl       *wgpu.PipelineLayout
	pipeline *wgpu.ComputePipeline
}

// Buffer wraps a GPU buffer.
type Buffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

var (
	globalSystem *System
	initOnce     sync.Once
	initErr      error
)

// AdapterInfo describes the selected GPU.
type AdapterInfo struct {
	Name       string
	Vendor     string
	Backend    string
	DeviceType string
	Driver     string
}

// Initialize sets up the compute system. Safe to call multiple times.
func Initialize() (info AdapterInfo, err error) {
	initOnce.Do(func() {
		globalSystem, initErr = newSystem()
	})
	if initErr != nil {
		return AdapterInfo{}, initErr
	}
	adapterInfo := globalSystem.adapter.GetInfo()
	return AdapterInfo{
		Name:       adapterInfo.Name,
		Vendor:     adapterInfo.VendorName,
		Backend:    adapterInfo.BackendType.String(),
		DeviceType: adapterInfo.AdapterType.String(),
		Driver:     adapterInfo.DriverDescription,
	}, nil
}

// Get returns the global compute system, or nil before a successful Initialize.
func Get() *System {
	return globalSystem
}

func newSystem() (*System, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("failed to get GPU adapter: %w", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("failed to get GPU device: %w", err)
	}

	return &System{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     device.GetQueue(),
		pipelines: make(map[string]*Pipeline),
	}, nil
}

// CreatePipeline compiles a compute shader whose bindings 0..n-1 have the given
// buffer types, and caches it by name.
func (s *System) CreatePipeline(name, wgslCode, entryPoint string, bindings []wgpu.BufferBindingType) (*Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pipelines[name]; ok {
		return p, nil
	}

	entries := make([]wgpu.BindGroupLayoutEntry, len(bindings))
	for i, t := range bindings {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: t},
		}
	}
	layout, err := s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   name + "_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout: %w", err)
	}

	pl, err := s.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name + "_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	shaderModule, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgslCode},
	})
	if err != nil {
		pl.Release()
		layout.Release()
		return nil, fmt.Errorf("failed to create shader module: %w", err)
	}

	pipeline, err := s.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  name,
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shaderModule,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		shaderModule.Release()
		pl.Release()
		layout.Release()
		return nil, fmt.Errorf("failed to create compute pipeline: %w", err)
	}

	p := &Pipeline{shader: shaderModule, layout: layout, pl: pl, pipeline: pipeline}
	s.pipelines[name] = p
	return p, nil
}

// CreateBuffer creates a GPU buffer of size bytes.
func (s *System) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*Buffer, error) {
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %s: %w", label, err)
	}
	return &Buffer{buffer: buf, size: size, usage: usage}, nil
}

// WriteBuffer uploads data to a GPU buffer.
func (s *System) WriteBuffer(buf *Buffer, offset uint64, data []byte) {
	s.queue.WriteBuffer(buf.buffer, offset, data)
}

type DispatchParams struct {
	Pipeline    *Pipeline
	Buffers     []*Buffer // in @binding order
	WorkgroupsX uint32
}

// Dispatch records and submits one compute pass.
func (s *System) Dispatch(params DispatchParams) error {
	entries := make([]wgpu.BindGroupEntry, len(params.Buffers))
	for i, buf := range params.Buffers {
		entries[i] = wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  buf.buffer,
			Size:    buf.size,
		}
	}

	bindGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "compute_bind_group",
		Layout:  params.Pipeline.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(params.Pipeline.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(params.WorkgroupsX, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commands.Release()

	s.queue.Submit(commands)
	return nil
}

// ReadBuffer copies the first size bytes of a GPU buffer back to the CPU.
// The buffer must have been created with BufferUsageCopySrc.
func (s *System) ReadBuffer(buf *Buffer, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	size = min(size, buf.size)

	staging, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "staging_read",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(buf.buffer, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish encoder: %w", err)
	}
	s.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("failed to map buffer: %v", status)
		} else {
			done <- nil
		}
	})
	if err != nil {
		return nil, err
	}

	s.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	result := make([]byte, len(mapped))
	copy(result, mapped)
	staging.Unmap()

	return result, nil
}

// Release frees all GPU resources.
func (s *System) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pipelines {
		p.pipeline.Release()
		p.pl.Release()
		p.layout.Release()
		p.shader.Release()
	}
	s.pipelines = nil

	s.queue.Release()
	s.device.Release()
	s.adapter.Release()
	s.instance.Release()
}

// Release frees the buffer's GPU memory.
func (b *Buffer) Release() {
	b.buffer.Release()
}


// ToBytes views a slice of plain structs as bytes for upload.
func ToBytes[T any](data []T) []byte {
	return wgpu.ToBytes(data)
}

func fromBytes[T any](data []byte) []T {
	return wgpu.FromBytes[T](data)
}
