// Package frame drives the render loop: it throttles on per-slot fences,
// acquires, submits the pre-recorded command buffer, presents, and rebuilds
// every chain-dependent resource when the surface goes out of date or the
// window is resized.
package frame

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/framecore/internal/commands"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
	"github.com/vkngwrapper/framecore/internal/swapchain"
	"github.com/vkngwrapper/framecore/internal/syncset"
	"github.com/vkngwrapper/framecore/internal/window"
)

var logger = log.New("frame")

var ErrClosed = errors.New("frame loop closed")

// PipelineBuilder creates the graphics pipeline for a render pass. It is
// called again after every rebuild since the pipeline bakes in the extent.
type PipelineBuilder interface {
	Build(renderPass gpu.RenderPass, extent gpu.Extent2D) (gpu.Pipeline, error)
}

// Uniforms manages per-image uniform storage and the descriptor sets that
// expose it.
type Uniforms interface {
	// Allocate creates storage for count images and returns one descriptor
	// set per image.
	Allocate(count int) ([]gpu.DescriptorSet, error)
	// Update refreshes the uniforms read when rendering into image index.
	// The previous submission reading them has completed.
	Update(index int, extent gpu.Extent2D) error
	Release()
}

type Config struct {
	Device    gpu.Device
	Window    window.Window
	Pipelines PipelineBuilder
	// Optional.
	Uniforms Uniforms
	Geometry commands.Geometry

	Surface    swapchain.Options
	ClearColor gpu.ClearColor

	// How often frame statistics are logged. Zero disables logging.
	StatsInterval time.Duration
}

type State int

const (
	Idle State = iota
	Acquiring
	Submitting
	Presenting
	Resizing
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Submitting:
		return "submitting"
	case Presenting:
		return "presenting"
	case Resizing:
		return "resizing"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Orchestrator owns every chain-dependent resource and the loop that uses
// them. It is not safe for concurrent use.
type Orchestrator struct {
	cfg Config
	dev gpu.Device
	win window.Window

	recorder       *commands.Recorder
	chain          *swapchain.Chain
	renderPass     gpu.RenderPass
	pipeline       gpu.Pipeline
	descriptorSets []gpu.DescriptorSet
	sync           *syncset.SyncSet

	// Survives rebuilds so timeline values never repeat.
	counter syncset.Counter
	// Last value signaled by a submission the queue accepted.
	submitted uint64

	slot         int
	state        State
	needsRebuild bool
	stats        statsTracker
}

// New builds the chain and every resource that depends on it. Errors are
// fatal initialization errors.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Device == nil || cfg.Window == nil || cfg.Pipelines == nil {
		return nil, errors.AssertionFailedf("frame: device, window and pipeline builder are required")
	}
	if cfg.ClearColor == (gpu.ClearColor{}) {
		cfg.ClearColor = commands.DefaultClearColor
	}

	recorder, err := commands.NewRecorder(cfg.Device, cfg.ClearColor)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:      cfg,
		dev:      cfg.Device,
		win:      cfg.Window,
		recorder: recorder,
		stats:    newStatsTracker(cfg.StatsInterval),
	}

	if !o.waitForDrawable() {
		o.recorder.Destroy()
		return nil, errors.Mark(errors.New("window closed before it could be drawn to"), gpu.ErrFatalInit)
	}

	if err := o.build(); err != nil {
		o.teardown()
		o.recorder.Destroy()
		return nil, err
	}

	return o, nil
}

func (o *Orchestrator) build() error {
	chain, err := swapchain.New(o.dev, o.win, o.cfg.Surface)
	if err != nil {
		return err
	}
	o.chain = chain

	o.renderPass, err = o.dev.CreateRenderPass(chain.Format().Format)
	if err != nil {
		return gpu.InitError(err, "create render pass")
	}

	err = chain.CreateFramebuffers(o.renderPass)
	if err != nil {
		return err
	}

	o.pipeline, err = o.cfg.Pipelines.Build(o.renderPass, chain.Extent())
	if err != nil {
		return gpu.InitError(err, "build graphics pipeline")
	}

	if o.cfg.Uniforms != nil {
		o.descriptorSets, err = o.cfg.Uniforms.Allocate(chain.ImageCount())
		if err != nil {
			return gpu.InitError(err, "allocate uniforms")
		}
	}

	err = o.recorder.Record(commands.Target{
		RenderPass:     o.renderPass,
		Framebuffers:   chain.Framebuffers(),
		Extent:         chain.Extent(),
		Pipeline:       o.pipeline,
		DescriptorSets: o.descriptorSets,
	}, o.cfg.Geometry)
	if err != nil {
		return err
	}

	o.sync, err = syncset.New(o.dev, chain.ImageCount(), o.submitted)
	if err != nil {
		return err
	}

	o.slot = 0
	return nil
}

// teardown destroys command buffers, then per-frame sync and uniform state,
// then the chain, then the pipeline and the render pass it was built for.
// It is safe on a partially built set of resources.
func (o *Orchestrator) teardown() {
	o.recorder.Free()

	if o.sync != nil {
		o.sync.Destroy()
		o.sync = nil
	}

	if o.descriptorSets != nil {
		o.cfg.Uniforms.Release()
		o.descriptorSets = nil
	}

	if o.chain != nil {
		o.chain.Destroy()
		o.chain = nil
	}

	if o.pipeline != nil {
		o.pipeline.Destroy()
		o.pipeline = nil
	}

	if o.renderPass != nil {
		o.renderPass.Destroy()
		o.renderPass = nil
	}
}

// waitForDrawable blocks on window events while the window has no drawable
// area. It returns false if the window was closed meanwhile.
func (o *Orchestrator) waitForDrawable() bool {
	width, height := o.win.FramebufferSize()
	for width == 0 || height == 0 {
		if o.win.ShouldClose() {
			return false
		}
		o.win.WaitEvents()
		width, height = o.win.FramebufferSize()
	}
	return true
}

func (o *Orchestrator) rebuild(reason string) error {
	o.state = Resizing
	o.needsRebuild = true

	if !o.waitForDrawable() {
		o.state = Idle
		return nil
	}

	logger.Noticef("rebuilding swapchain (%s), generation %d", reason, o.stats.rebuilds+1)

	if err := o.dev.WaitIdle(); err != nil {
		return gpu.RuntimeError(err, "wait for device idle before rebuild")
	}

	o.teardown()
	if err := o.build(); err != nil {
		return err
	}

	o.win.ClearResized()
	o.needsRebuild = false
	o.stats.rebuilds++
	o.state = Idle

	logger.Noticef("swapchain rebuilt: %d images at %s", o.chain.ImageCount(), o.chain.Extent())
	return nil
}

// Step renders one frame. It reports whether the chain was rebuilt during the
// call. Out-of-date and suboptimal surfaces are handled internally; the
// returned errors are fatal.
func (o *Orchestrator) Step() (bool, error) {
	if o.state == Closed {
		return false, ErrClosed
	}

	if o.needsRebuild {
		return true, o.fail(o.rebuild("pending"))
	}

	start := hrtime.Now()
	slot := o.slot
	fence := o.sync.Fence(slot)

	o.state = Acquiring
	err := fence.Wait()
	if err != nil {
		return false, o.fail(gpu.RuntimeError(err, "wait for frame fence"))
	}

	imageIndex, result, err := o.chain.Swapchain().AcquireNextImage(o.sync.ImageAvailable())
	if err != nil {
		return false, o.fail(gpu.RuntimeError(err, "acquire swapchain image"))
	}
	switch result {
	case gpu.OutOfDate:
		return true, o.fail(o.rebuild("acquire out of date"))
	case gpu.Success, gpu.Suboptimal:
	default:
		return false, o.fail(errors.Mark(errors.Newf("acquire swapchain image: %s", result), gpu.ErrFatalRuntime))
	}

	if previous := o.sync.ClaimImage(imageIndex, slot); previous != nil {
		err = previous.Wait()
		if err != nil {
			return false, o.fail(gpu.RuntimeError(err, "wait for image in flight"))
		}
	}

	if o.cfg.Uniforms != nil {
		err = o.cfg.Uniforms.Update(imageIndex, o.chain.Extent())
		if err != nil {
			return false, o.fail(gpu.RuntimeError(err, "update uniforms"))
		}
	}

	err = fence.Reset()
	if err != nil {
		return false, o.fail(gpu.RuntimeError(err, "reset frame fence"))
	}

	o.state = Submitting
	value := o.counter.Next()
	err = o.dev.GraphicsQueue().Submit(gpu.SubmitInfo{
		WaitSemaphore:   o.sync.ImageAvailable(),
		WaitStage:       gpu.StageColorAttachmentOutput,
		CommandBuffer:   o.recorder.Buffer(imageIndex),
		SignalSemaphore: o.sync.RenderFinished(),
		SignalValue:     value,
		Fence:           fence,
	})
	if err != nil {
		return false, o.fail(gpu.RuntimeError(err, "submit frame"))
	}
	o.submitted = value
	o.stats.submitted(value)

	o.state = Presenting
	result, err = o.dev.PresentQueue().Present(gpu.PresentInfo{
		WaitSemaphore: o.sync.RenderFinished(),
		WaitValue:     value,
		Swapchain:     o.chain.Swapchain(),
		ImageIndex:    imageIndex,
	})
	if err != nil {
		return false, o.fail(gpu.RuntimeError(err, "present frame"))
	}

	o.slot = (slot + 1) % o.sync.Slots()
	o.state = Idle

	// An out-of-date present never reached the display.
	if result == gpu.Success || result == gpu.Suboptimal {
		o.stats.frame(hrtime.Since(start))
	}

	switch result {
	case gpu.OutOfDate, gpu.Suboptimal:
		return true, o.fail(o.rebuild("present " + result.String()))
	case gpu.Success:
		if o.win.Resized() {
			return true, o.fail(o.rebuild("window resized"))
		}
	default:
		return false, o.fail(errors.Mark(errors.Newf("present frame: %s", result), gpu.ErrFatalRuntime))
	}

	return false, nil
}

func (o *Orchestrator) fail(err error) error {
	if err != nil {
		logger.Errorf("frame %d: %v", o.counter.Last(), err)
	}
	return err
}

// Run steps until the window asks to close, a fatal error occurs, or
// maxFrames frames have been presented. Zero means no frame limit.
func (o *Orchestrator) Run(maxFrames uint64) error {
	for {
		o.win.PollEvents()
		if o.win.ShouldClose() {
			return nil
		}

		if _, err := o.Step(); err != nil {
			return err
		}

		if maxFrames > 0 && o.stats.frames >= maxFrames {
			return nil
		}
	}
}

// Close waits for the last submission and for the device to go idle, then
// destroys everything the orchestrator created.
func (o *Orchestrator) Close() error {
	if o.state == Closed {
		return nil
	}
	o.state = Closed

	var err error
	if o.sync != nil {
		err = errors.Wrap(o.sync.WaitFor(o.submitted), "wait for last submission")
	}
	err = errors.CombineErrors(err, errors.Wrap(o.dev.WaitIdle(), "wait for device idle"))

	o.teardown()
	o.recorder.Destroy()

	logger.Infof("frame loop closed after %d frames and %d rebuilds", o.stats.frames, o.stats.rebuilds)
	return err
}

func (o *Orchestrator) State() State {
	return o.state
}

// Chain exposes the current chain; it is replaced by every rebuild.
func (o *Orchestrator) Chain() *swapchain.Chain {
	return o.chain
}

func (o *Orchestrator) Stats() Stats {
	return o.stats.snapshot()
}
