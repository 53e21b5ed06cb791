// Package gpu declares the handle interfaces the rendering core drives. A
// backend (see internal/vulkan) implements them on top of a real driver; tests
// implement them with fakes.
package gpu

// Instance enumerates adapters and opens logical devices on them.
type Instance interface {
	Adapters() ([]Adapter, error)
	CreateDevice(adapter Adapter, info DeviceCreateInfo) (Device, error)
}

// Adapter is one physical accelerator candidate, already bound to the
// presentation surface so presentation support can be queried.
type Adapter interface {
	Properties() AdapterProperties
	Features() Features
	QueueFamilies() []QueueFamilyProperties
	SupportsPresent(family int) (bool, error)
}

// Device is a logical device. Every object it creates borrows it and must be
// destroyed before Destroy is called.
type Device interface {
	QueueFamilies() QueueFamilyIndices
	GraphicsQueue() Queue
	PresentQueue() Queue

	SurfaceSupport() (SurfaceSupport, error)
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error)
	CreateImageView(image Image, format Format) (ImageView, error)
	CreateRenderPass(format Format) (RenderPass, error)
	CreateFramebuffer(info FramebufferCreateInfo) (Framebuffer, error)

	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore(info SemaphoreCreateInfo) (Semaphore, error)
	CreateCommandPool(family int) (CommandPool, error)

	WaitIdle() error
	Destroy()
}

type Queue interface {
	Submit(info SubmitInfo) error
	Present(info PresentInfo) (Result, error)
}

// Swapchain owns the driver-allocated presentable images. Destroy never
// destroys the images themselves.
type Swapchain interface {
	Images() ([]Image, error)
	// AcquireNextImage blocks without timeout. OutOfDate and Suboptimal are
	// reported through Result with a nil error.
	AcquireNextImage(signal Semaphore) (int, Result, error)
	Destroy()
}

// Image is a driver-owned image handle.
type Image interface{}

type ImageView interface {
	Destroy()
}

type RenderPass interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

// Pipeline is a graphics pipeline together with its layout.
type Pipeline interface {
	Destroy()
}

type Buffer interface{}

type DescriptorSet interface{}

// Fence is a GPU-to-CPU signal. Wait blocks without timeout.
type Fence interface {
	Wait() error
	Reset() error
	Destroy()
}

// Semaphore is either binary or timeline. Wait and Value are only valid on a
// timeline semaphore.
type Semaphore interface {
	Type() SemaphoreType
	Wait(value uint64) error
	Value() (uint64, error)
	Destroy()
}

type CommandPool interface {
	Allocate(count int) ([]CommandBuffer, error)
	Free(buffers []CommandBuffer)
	Destroy()
}

type CommandBuffer interface {
	Begin() error
	BeginRenderPass(info RenderPassBeginInfo) error
	BindPipeline(pipeline Pipeline)
	BindDescriptorSets(pipeline Pipeline, sets []DescriptorSet)
	BindVertexBuffers(firstBinding int, buffers []Buffer, offsets []int)
	BindIndexBuffer(buffer Buffer, offset int, indexType IndexType)
	DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int)
	EndRenderPass()
	End() error
}
