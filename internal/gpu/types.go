package gpu

import (
	"fmt"

	"github.com/google/uuid"
)

// Result classifies the outcome of acquire and present calls.
type Result int

const (
	Success Result = iota
	Suboptimal
	OutOfDate
	Timeout
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Suboptimal:
		return "Suboptimal"
	case OutOfDate:
		return "OutOfDate"
	case Timeout:
		return "Timeout"
	default:
		return "Failure"
	}
}

// Format values match the Vulkan enumerants so backends can convert by cast.
type Format int

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "Undefined"
	case FormatR8G8B8A8UNorm:
		return "R8G8B8A8UNorm"
	case FormatR8G8B8A8SRGB:
		return "R8G8B8A8SRGB"
	case FormatB8G8R8A8UNorm:
		return "B8G8R8A8UNorm"
	case FormatB8G8R8A8SRGB:
		return "B8G8R8A8SRGB"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

type ColorSpace int

const (
	ColorSpaceSRGBNonlinear ColorSpace = 0
)

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

func (f SurfaceFormat) String() string {
	return fmt.Sprintf("%s/%d", f.Format, f.ColorSpace)
}

// PresentMode values match the Vulkan enumerants.
type PresentMode int

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeFIFO:
		return "FIFO"
	case PresentModeFIFORelaxed:
		return "FIFORelaxed"
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// ExtentSentinel in SurfaceCapabilities.CurrentExtent means the surface size is
// determined by the window's framebuffer. Vulkan reports it as 0xFFFFFFFF; backends
// normalize that to -1.
const ExtentSentinel = -1

type Extent2D struct {
	Width  int
	Height int
}

func (e Extent2D) IsSentinel() bool {
	return e.Width == ExtentSentinel
}

func (e Extent2D) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

type SurfaceCapabilities struct {
	MinImageCount  int
	MaxImageCount  int // 0 means unbounded
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
}

type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type AdapterType int

const (
	AdapterOther AdapterType = iota
	AdapterIntegrated
	AdapterDiscrete
	AdapterVirtual
	AdapterCPU
)

func (t AdapterType) String() string {
	switch t {
	case AdapterIntegrated:
		return "integrated"
	case AdapterDiscrete:
		return "discrete"
	case AdapterVirtual:
		return "virtual"
	case AdapterCPU:
		return "cpu"
	}
	return "other"
}

// SampleCounts is a bitmask of supported sample counts (bit n = 2^n samples).
type SampleCounts uint32

const (
	Samples1  SampleCounts = 1 << 0
	Samples2  SampleCounts = 1 << 1
	Samples4  SampleCounts = 1 << 2
	Samples8  SampleCounts = 1 << 3
	Samples16 SampleCounts = 1 << 4
	Samples32 SampleCounts = 1 << 5
	Samples64 SampleCounts = 1 << 6
)

type AdapterProperties struct {
	Name                 string
	Type                 AdapterType
	VendorID             uint32
	DeviceID             uint32
	PipelineCacheUUID    uuid.UUID
	MaxImageDimension2D  int
	MaxSamplerAnisotropy float32
	ColorSampleCounts    SampleCounts
	DepthSampleCounts    SampleCounts
}

type QueueFamilyProperties struct {
	Graphics   bool
	Compute    bool
	Transfer   bool
	QueueCount int
}

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Shared reports whether graphics and presentation use the same family.
func (i *QueueFamilyIndices) Shared() bool {
	return i.IsComplete() && *i.GraphicsFamily == *i.PresentFamily
}

// Unique returns the distinct family indices, graphics first.
func (i *QueueFamilyIndices) Unique() []int {
	if !i.IsComplete() {
		return nil
	}
	families := []int{*i.GraphicsFamily}
	if *i.PresentFamily != *i.GraphicsFamily {
		families = append(families, *i.PresentFamily)
	}
	return families
}

type SharingMode int

const (
	SharingExclusive SharingMode = iota
	SharingConcurrent
)

type SwapchainCreateInfo struct {
	MinImageCount      int
	Format             SurfaceFormat
	Extent             Extent2D
	PresentMode        PresentMode
	SharingMode        SharingMode
	QueueFamilyIndices []int
}

type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

type SemaphoreType int

const (
	SemaphoreBinary SemaphoreType = iota
	SemaphoreTimeline
)

type SemaphoreCreateInfo struct {
	Type         SemaphoreType
	InitialValue uint64
}

type PipelineStage uint32

const (
	StageTopOfPipe             PipelineStage = 0x00000001
	StageColorAttachmentOutput PipelineStage = 0x00000400
)

// SubmitInfo describes one graphics-queue submission. SignalValue applies only
// to a timeline SignalSemaphore.
type SubmitInfo struct {
	WaitSemaphore   Semaphore
	WaitStage       PipelineStage
	CommandBuffer   CommandBuffer
	SignalSemaphore Semaphore
	SignalValue     uint64
	Fence           Fence
}

// PresentInfo describes one present call. WaitValue applies only to a timeline
// WaitSemaphore.
type PresentInfo struct {
	WaitSemaphore Semaphore
	WaitValue     uint64
	Swapchain     Swapchain
	ImageIndex    int
}

type ClearColor [4]float32

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  Extent2D
	ClearColors []ClearColor
}

type IndexType int

const (
	IndexTypeUInt16 IndexType = iota
	IndexTypeUInt32
)

type DeviceCreateInfo struct {
	QueueFamilies QueueFamilyIndices
	Features      Features
	Extensions    []string
}
