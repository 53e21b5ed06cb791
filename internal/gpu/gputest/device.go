package gputest

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
)

// Device is a fake logical device. Objects it creates complete GPU work
// instantly: a submission signals its fence and timeline semaphore as soon as
// Submit returns.
type Device struct {
	Journal *Journal

	Families gpu.QueueFamilyIndices
	Support  gpu.SurfaceSupport
	// Images returned by each new chain. Zero means the requested minimum.
	ImageCount int

	// Acquire results consumed in order by every chain; Success once drained.
	AcquireResults []gpu.Result
	// Present results consumed in order; Success once drained.
	PresentResults []gpu.Result
	// Image indices handed out by acquires in order; round-robin once drained.
	AcquireOrder []int

	// Errors injected by method name, e.g. "CreateSwapchain" or "Present".
	// Fence waits also look up "FenceWait <fence>", e.g. "FenceWait fence0".
	Fail map[string]error

	// OnWaitIdle runs inside WaitIdle, after it has been journaled.
	OnWaitIdle func()

	graphics *Queue
	present  *Queue
	counters map[string]int
	live     map[string]bool
}

func NewDevice() *Device {
	graphics, present := 0, 0
	d := &Device{
		Journal:  &Journal{},
		Families: gpu.QueueFamilyIndices{GraphicsFamily: &graphics, PresentFamily: &present},
		Support: gpu.SurfaceSupport{
			Capabilities: gpu.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  3,
				CurrentExtent:  gpu.Extent2D{Width: 800, Height: 600},
				MinImageExtent: gpu.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: gpu.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []gpu.SurfaceFormat{
				{Format: gpu.FormatB8G8R8A8SRGB, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
			},
			PresentModes: []gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeMailbox},
		},
		Fail:     map[string]error{},
		counters: map[string]int{},
		live:     map[string]bool{},
	}
	d.graphics = &Queue{device: d, name: "graphics"}
	d.present = &Queue{device: d, name: "present"}
	return d
}

func (d *Device) name(kind string) string {
	n := d.counters[kind]
	d.counters[kind]++
	return fmt.Sprintf("%s%d", kind, n)
}

func (d *Device) created(name string) {
	d.live[name] = true
	d.Journal.Record("create %s", name)
}

func (d *Device) destroyed(name string) {
	if !d.live[name] {
		d.Journal.Record("destroy %s (not live)", name)
		return
	}
	delete(d.live, name)
	d.Journal.Record("destroy %s", name)
}

func (d *Device) fail(method string) error {
	if err, ok := d.Fail[method]; ok && err != nil {
		return err
	}
	return nil
}

// Live returns the names of objects created and not yet destroyed.
func (d *Device) Live() []string {
	names := make([]string, 0, len(d.live))
	for name := range d.live {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Submissions returns every graphics-queue submission so far.
func (d *Device) Submissions() []gpu.SubmitInfo {
	return d.graphics.Submits
}

// Presentations returns every present call that reached the present queue.
func (d *Device) Presentations() []gpu.PresentInfo {
	return d.present.Presents
}

func (d *Device) QueueFamilies() gpu.QueueFamilyIndices { return d.Families }
func (d *Device) GraphicsQueue() gpu.Queue               { return d.graphics }
func (d *Device) PresentQueue() gpu.Queue                { return d.present }

func (d *Device) SurfaceSupport() (gpu.SurfaceSupport, error) {
	if err := d.fail("SurfaceSupport"); err != nil {
		return gpu.SurfaceSupport{}, err
	}
	return d.Support, nil
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	if err := d.fail("CreateSwapchain"); err != nil {
		return nil, err
	}

	count := d.ImageCount
	if count == 0 {
		count = info.MinImageCount
	}

	chain := &Swapchain{device: d, Name: d.name("chain"), Info: info}
	for i := 0; i < count; i++ {
		chain.images = append(chain.images, &Image{Name: fmt.Sprintf("%s/image%d", chain.Name, i)})
	}
	d.created(chain.Name)
	return chain, nil
}

func (d *Device) CreateImageView(image gpu.Image, format gpu.Format) (gpu.ImageView, error) {
	if err := d.fail("CreateImageView"); err != nil {
		return nil, err
	}
	view := &Object{device: d, Name: d.name("view")}
	d.created(view.Name)
	return view, nil
}

func (d *Device) CreateRenderPass(format gpu.Format) (gpu.RenderPass, error) {
	if err := d.fail("CreateRenderPass"); err != nil {
		return nil, err
	}
	pass := &Object{device: d, Name: d.name("renderpass")}
	d.created(pass.Name)
	return pass, nil
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	if err := d.fail("CreateFramebuffer"); err != nil {
		return nil, err
	}
	fb := &Framebuffer{Object: Object{device: d, Name: d.name("framebuffer")}, Info: info}
	d.created(fb.Name)
	return fb, nil
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	if err := d.fail("CreateFence"); err != nil {
		return nil, err
	}
	fence := &Fence{device: d, Name: d.name("fence"), Signaled: signaled}
	d.created(fence.Name)
	return fence, nil
}

func (d *Device) CreateSemaphore(info gpu.SemaphoreCreateInfo) (gpu.Semaphore, error) {
	if err := d.fail("CreateSemaphore"); err != nil {
		return nil, err
	}
	kind := "binary"
	if info.Type == gpu.SemaphoreTimeline {
		kind = "timeline"
	}
	sem := &Semaphore{device: d, Name: d.name(kind), Kind: info.Type, Counter: info.InitialValue}
	d.created(sem.Name)
	return sem, nil
}

func (d *Device) CreateCommandPool(family int) (gpu.CommandPool, error) {
	if err := d.fail("CreateCommandPool"); err != nil {
		return nil, err
	}
	pool := &CommandPool{device: d, Name: d.name("pool")}
	d.created(pool.Name)
	return pool, nil
}

// CreatePipeline lets tests build pipelines that are tracked like device objects.
func (d *Device) CreatePipeline() (gpu.Pipeline, error) {
	if err := d.fail("CreatePipeline"); err != nil {
		return nil, err
	}
	pipeline := &Object{device: d, Name: d.name("pipeline")}
	d.created(pipeline.Name)
	return pipeline, nil
}

func (d *Device) WaitIdle() error {
	d.Journal.Record("waitIdle")
	if d.OnWaitIdle != nil {
		d.OnWaitIdle()
	}
	return d.fail("WaitIdle")
}

func (d *Device) Destroy() {
	d.Journal.Record("destroy device")
}

// Object is a fake handle with nothing but a lifetime.
type Object struct {
	device *Device
	Name   string
}

func (o *Object) Destroy()       { o.device.destroyed(o.Name) }
func (o *Object) String() string { return o.Name }

type Image struct {
	Name string
}

func (i *Image) String() string { return i.Name }

type Framebuffer struct {
	Object
	Info gpu.FramebufferCreateInfo
}

type Swapchain struct {
	device *Device
	Name   string
	Info   gpu.SwapchainCreateInfo
	images []*Image
	next   int
}

func (s *Swapchain) Images() ([]gpu.Image, error) {
	if err := s.device.fail("Images"); err != nil {
		return nil, err
	}
	images := make([]gpu.Image, len(s.images))
	for i, image := range s.images {
		images[i] = image
	}
	return images, nil
}

func (s *Swapchain) AcquireNextImage(signal gpu.Semaphore) (int, gpu.Result, error) {
	d := s.device
	if err := d.fail("AcquireNextImage"); err != nil {
		d.Journal.Record("acquire %s failed", s.Name)
		return 0, gpu.Failure, err
	}

	result := gpu.Success
	if len(d.AcquireResults) > 0 {
		result = d.AcquireResults[0]
		d.AcquireResults = d.AcquireResults[1:]
	}
	if result == gpu.OutOfDate {
		d.Journal.Record("acquire %s %s", s.Name, result)
		return 0, result, nil
	}

	index := s.next
	if len(d.AcquireOrder) > 0 {
		index = d.AcquireOrder[0]
		d.AcquireOrder = d.AcquireOrder[1:]
	}
	s.next = (index + 1) % len(s.images)
	d.Journal.Record("acquire %s image%d %s signal %s", s.Name, index, result, signal)
	return index, result, nil
}

func (s *Swapchain) Destroy()       { s.device.destroyed(s.Name) }
func (s *Swapchain) String() string { return s.Name }

type Fence struct {
	device   *Device
	Name     string
	Signaled bool
}

// Wait fails instead of blocking when nothing will ever signal the fence.
func (f *Fence) Wait() error {
	f.device.Journal.Record("wait %s", f.Name)
	if !f.Signaled {
		return errors.Newf("wait on unsignaled %s would never return", f.Name)
	}
	if err := f.device.fail("FenceWait " + f.Name); err != nil {
		return err
	}
	return f.device.fail("FenceWait")
}

func (f *Fence) Reset() error {
	f.device.Journal.Record("reset %s", f.Name)
	f.Signaled = false
	return f.device.fail("FenceReset")
}

func (f *Fence) Destroy()       { f.device.destroyed(f.Name) }
func (f *Fence) String() string { return f.Name }

type Semaphore struct {
	device  *Device
	Name    string
	Kind    gpu.SemaphoreType
	Counter uint64
}

func (s *Semaphore) Type() gpu.SemaphoreType { return s.Kind }

func (s *Semaphore) Wait(value uint64) error {
	s.device.Journal.Record("wait %s>=%d", s.Name, value)
	if s.Kind != gpu.SemaphoreTimeline {
		return errors.Newf("%s is not a timeline semaphore", s.Name)
	}
	if s.Counter < value {
		return errors.Newf("wait on %s for %d would never return (at %d)", s.Name, value, s.Counter)
	}
	return nil
}

func (s *Semaphore) Value() (uint64, error) {
	if s.Kind != gpu.SemaphoreTimeline {
		return 0, errors.Newf("%s is not a timeline semaphore", s.Name)
	}
	return s.Counter, nil
}

func (s *Semaphore) Destroy()       { s.device.destroyed(s.Name) }
func (s *Semaphore) String() string { return s.Name }

type Queue struct {
	device   *Device
	name     string
	Submits  []gpu.SubmitInfo
	Presents []gpu.PresentInfo
}

// Submit validates the usage rules a driver would enforce and then completes
// the work immediately.
func (q *Queue) Submit(info gpu.SubmitInfo) error {
	d := q.device
	d.Journal.Record("submit %s wait %s signal %s=%d fence %s",
		info.CommandBuffer, info.WaitSemaphore, info.SignalSemaphore, info.SignalValue, info.Fence)
	if err := d.fail("Submit"); err != nil {
		return err
	}

	fence, _ := info.Fence.(*Fence)
	if fence != nil && fence.Signaled {
		return errors.Newf("%s submitted while still signaled", fence.Name)
	}
	sem, _ := info.SignalSemaphore.(*Semaphore)
	if sem != nil && sem.Kind == gpu.SemaphoreTimeline && info.SignalValue <= sem.Counter {
		return errors.Newf("%s signal value %d does not exceed %d", sem.Name, info.SignalValue, sem.Counter)
	}
	if cb, ok := info.CommandBuffer.(*CommandBuffer); ok && cb.freed {
		return errors.Newf("%s submitted after being freed", cb.Name)
	}

	if fence != nil {
		fence.Signaled = true
	}
	if sem != nil && sem.Kind == gpu.SemaphoreTimeline {
		sem.Counter = info.SignalValue
	}
	q.Submits = append(q.Submits, info)
	return nil
}

func (q *Queue) Present(info gpu.PresentInfo) (gpu.Result, error) {
	d := q.device
	d.Journal.Record("present %s image%d wait %s=%d", info.Swapchain, info.ImageIndex, info.WaitSemaphore, info.WaitValue)
	if err := d.fail("Present"); err != nil {
		return gpu.Failure, err
	}

	q.Presents = append(q.Presents, info)

	result := gpu.Success
	if len(d.PresentResults) > 0 {
		result = d.PresentResults[0]
		d.PresentResults = d.PresentResults[1:]
	}
	return result, nil
}

func (q *Queue) String() string { return q.name }

type CommandPool struct {
	device *Device
	Name   string
}

func (p *CommandPool) Allocate(count int) ([]gpu.CommandBuffer, error) {
	if err := p.device.fail("Allocate"); err != nil {
		return nil, err
	}
	buffers := make([]gpu.CommandBuffer, count)
	for i := range buffers {
		cb := &CommandBuffer{device: p.device, Name: p.device.name("cmd")}
		p.device.created(cb.Name)
		buffers[i] = cb
	}
	return buffers, nil
}

func (p *CommandPool) Free(buffers []gpu.CommandBuffer) {
	for _, buffer := range buffers {
		cb := buffer.(*CommandBuffer)
		cb.freed = true
		p.device.destroyed(cb.Name)
	}
}

func (p *CommandPool) Destroy()       { p.device.destroyed(p.Name) }
func (p *CommandPool) String() string { return p.Name }

// CommandBuffer records the commands encoded into it, with handles rendered
// by name.
type CommandBuffer struct {
	device   *Device
	Name     string
	Commands []string
	freed    bool
}

func (c *CommandBuffer) record(format string, args ...interface{}) {
	c.Commands = append(c.Commands, fmt.Sprintf(format, args...))
}

func (c *CommandBuffer) Begin() error {
	c.Commands = nil
	c.record("begin")
	return c.device.fail("Begin")
}

func (c *CommandBuffer) BeginRenderPass(info gpu.RenderPassBeginInfo) error {
	c.record("beginRenderPass %s %s %s clear %v", info.RenderPass, info.Framebuffer, info.RenderArea, info.ClearColors)
	return c.device.fail("BeginRenderPass")
}

func (c *CommandBuffer) BindPipeline(pipeline gpu.Pipeline) {
	c.record("bindPipeline %s", pipeline)
}

func (c *CommandBuffer) BindDescriptorSets(pipeline gpu.Pipeline, sets []gpu.DescriptorSet) {
	c.record("bindDescriptorSets %s %v", pipeline, sets)
}

func (c *CommandBuffer) BindVertexBuffers(firstBinding int, buffers []gpu.Buffer, offsets []int) {
	c.record("bindVertexBuffers %d %v %v", firstBinding, buffers, offsets)
}

func (c *CommandBuffer) BindIndexBuffer(buffer gpu.Buffer, offset int, indexType gpu.IndexType) {
	c.record("bindIndexBuffer %v %d %d", buffer, offset, indexType)
}

func (c *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	c.record("drawIndexed %d %d %d %d %d", indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (c *CommandBuffer) EndRenderPass() {
	c.record("endRenderPass")
}

func (c *CommandBuffer) End() error {
	c.record("end")
	return c.device.fail("End")
}

func (c *CommandBuffer) String() string { return c.Name }
