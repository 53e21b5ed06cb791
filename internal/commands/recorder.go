package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("commands")

// DefaultClearColor is opaque black.
var DefaultClearColor = gpu.ClearColor{0, 0, 0, 1}

// Geometry is the indexed mesh every command buffer draws.
type Geometry struct {
	// One buffer per vertex stream, bound starting at binding 0.
	VertexBuffers []gpu.Buffer
	IndexBuffer   gpu.Buffer
	IndexType     gpu.IndexType
	IndexCount    int
}

// Target is everything a recording depends on that is rebuilt with the chain.
type Target struct {
	RenderPass   gpu.RenderPass
	Framebuffers []gpu.Framebuffer
	Extent       gpu.Extent2D
	Pipeline     gpu.Pipeline
	// Per framebuffer. May be nil when the pipeline reads no descriptors.
	DescriptorSets []gpu.DescriptorSet
}

// Recorder owns a command pool and the command buffers recorded from it, one
// per framebuffer. The pool lives as long as the device; the buffers are
// freed and re-recorded on every chain rebuild.
type Recorder struct {
	pool       gpu.CommandPool
	clearColor gpu.ClearColor
	buffers    []gpu.CommandBuffer
}

func NewRecorder(dev gpu.Device, clearColor gpu.ClearColor) (*Recorder, error) {
	indices := dev.QueueFamilies()
	if indices.GraphicsFamily == nil {
		return nil, errors.Mark(errors.New("no graphics queue family"), gpu.ErrFatalInit)
	}

	pool, err := dev.CreateCommandPool(*indices.GraphicsFamily)
	if err != nil {
		return nil, gpu.InitError(err, "create command pool")
	}

	return &Recorder{pool: pool, clearColor: clearColor}, nil
}

// Record allocates one command buffer per framebuffer of target and records
// the draw of geometry into each. Buffers from a previous Record must have
// been released with Free.
func (r *Recorder) Record(target Target, geometry Geometry) error {
	if len(r.buffers) > 0 {
		return errors.AssertionFailedf("%d command buffers still recorded", len(r.buffers))
	}
	if target.DescriptorSets != nil && len(target.DescriptorSets) != len(target.Framebuffers) {
		return errors.AssertionFailedf("%d descriptor sets for %d framebuffers",
			len(target.DescriptorSets), len(target.Framebuffers))
	}

	buffers, err := r.pool.Allocate(len(target.Framebuffers))
	if err != nil {
		return gpu.InitError(err, "allocate command buffers")
	}
	r.buffers = buffers

	offsets := make([]int, len(geometry.VertexBuffers))

	for bufferIdx, buffer := range buffers {
		err = buffer.Begin()
		if err != nil {
			r.Free()
			return gpu.InitErrorf(err, "begin command buffer %d", bufferIdx)
		}

		err = buffer.BeginRenderPass(gpu.RenderPassBeginInfo{
			RenderPass:  target.RenderPass,
			Framebuffer: target.Framebuffers[bufferIdx],
			RenderArea:  target.Extent,
			ClearColors: []gpu.ClearColor{r.clearColor},
		})
		if err != nil {
			r.Free()
			return gpu.InitErrorf(err, "begin render pass in command buffer %d", bufferIdx)
		}

		buffer.BindPipeline(target.Pipeline)
		if target.DescriptorSets != nil {
			buffer.BindDescriptorSets(target.Pipeline, []gpu.DescriptorSet{target.DescriptorSets[bufferIdx]})
		}
		buffer.BindVertexBuffers(0, geometry.VertexBuffers, offsets)
		buffer.BindIndexBuffer(geometry.IndexBuffer, 0, geometry.IndexType)
		buffer.DrawIndexed(geometry.IndexCount, 1, 0, 0, 0)
		buffer.EndRenderPass()

		err = buffer.End()
		if err != nil {
			r.Free()
			return gpu.InitErrorf(err, "end command buffer %d", bufferIdx)
		}
	}

	logger.Debugf("recorded %d command buffers drawing %d indices", len(buffers), geometry.IndexCount)
	return nil
}

func (r *Recorder) Len() int {
	return len(r.buffers)
}

// Buffer returns the command buffer recorded against framebuffer index.
func (r *Recorder) Buffer(index int) gpu.CommandBuffer {
	return r.buffers[index]
}

// Free releases the recorded command buffers back to the pool.
func (r *Recorder) Free() {
	if len(r.buffers) > 0 {
		r.pool.Free(r.buffers)
	}
	r.buffers = nil
}

func (r *Recorder) Destroy() {
	r.Free()
	if r.pool != nil {
		r.pool.Destroy()
		r.pool = nil
	}
}
