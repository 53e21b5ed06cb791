package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("swapchain")

// SizeSource reports the drawable size of the window backing the surface.
type SizeSource interface {
	FramebufferSize() (width, height int)
}

type Options struct {
	Preferred     gpu.SurfaceFormat
	PreferMailbox bool
}

// Chain is one negotiated set of presentable images with a view per image and,
// once CreateFramebuffers has been called, a framebuffer per view. Its format,
// extent and image count never change; a new surface configuration needs a
// new Chain.
type Chain struct {
	dev gpu.Device

	swapchain    gpu.Swapchain
	format       gpu.SurfaceFormat
	presentMode  gpu.PresentMode
	extent       gpu.Extent2D
	images       []gpu.Image
	views        []gpu.ImageView
	framebuffers []gpu.Framebuffer
}

// New negotiates the chain parameters against the surface and creates the
// chain and its image views. Failures are fatal initialization errors; objects
// created before the failure are released.
func New(dev gpu.Device, window SizeSource, opts Options) (*Chain, error) {
	support, err := dev.SurfaceSupport()
	if err != nil {
		return nil, gpu.InitError(err, "query surface support")
	}

	surfaceFormat, err := ChooseSurfaceFormat(support.Formats, opts.Preferred)
	if err != nil {
		return nil, errors.Mark(err, gpu.ErrFatalInit)
	}
	presentMode := ChoosePresentMode(support.PresentModes, opts.PreferMailbox)

	width, height := window.FramebufferSize()
	extent := ChooseExtent(support.Capabilities, width, height)
	imageCount := ImageCount(support.Capabilities)

	sharingMode := gpu.SharingExclusive
	var queueFamilyIndices []int

	indices := dev.QueueFamilies()
	if !indices.Shared() {
		sharingMode = gpu.SharingConcurrent
		queueFamilyIndices = indices.Unique()
	}

	swapchain, err := dev.CreateSwapchain(gpu.SwapchainCreateInfo{
		MinImageCount:      imageCount,
		Format:             surfaceFormat,
		Extent:             extent,
		PresentMode:        presentMode,
		SharingMode:        sharingMode,
		QueueFamilyIndices: queueFamilyIndices,
	})
	if err != nil {
		return nil, gpu.InitError(err, "create swapchain")
	}

	chain := &Chain{
		dev:         dev,
		swapchain:   swapchain,
		format:      surfaceFormat,
		presentMode: presentMode,
		extent:      extent,
	}

	if err := chain.createImageViews(); err != nil {
		chain.Destroy()
		return nil, err
	}

	logger.Infof("swapchain created: %d images (%d requested), %s, %s, %s",
		len(chain.images), imageCount, surfaceFormat, presentMode, extent)
	return chain, nil
}

func (c *Chain) createImageViews() error {
	images, err := c.swapchain.Images()
	if err != nil {
		return gpu.InitError(err, "get swapchain images")
	}
	c.images = images

	for i, image := range images {
		view, err := c.dev.CreateImageView(image, c.format.Format)
		if err != nil {
			return gpu.InitErrorf(err, "create view for swapchain image %d", i)
		}

		c.views = append(c.views, view)
	}

	return nil
}

// CreateFramebuffers binds every image view as the sole color attachment of a
// framebuffer compatible with renderPass.
func (c *Chain) CreateFramebuffers(renderPass gpu.RenderPass) error {
	if len(c.framebuffers) > 0 {
		return errors.AssertionFailedf("framebuffers already created")
	}

	for i, view := range c.views {
		framebuffer, err := c.dev.CreateFramebuffer(gpu.FramebufferCreateInfo{
			RenderPass:  renderPass,
			Attachments: []gpu.ImageView{view},
			Extent:      c.extent,
		})
		if err != nil {
			return gpu.InitErrorf(err, "create framebuffer %d", i)
		}

		c.framebuffers = append(c.framebuffers, framebuffer)
	}

	return nil
}

func (c *Chain) Swapchain() gpu.Swapchain        { return c.swapchain }
func (c *Chain) Format() gpu.SurfaceFormat       { return c.format }
func (c *Chain) PresentMode() gpu.PresentMode    { return c.presentMode }
func (c *Chain) Extent() gpu.Extent2D            { return c.extent }
func (c *Chain) ImageCount() int                 { return len(c.images) }
func (c *Chain) Framebuffers() []gpu.Framebuffer { return c.framebuffers }

func (c *Chain) Framebuffer(index int) gpu.Framebuffer {
	return c.framebuffers[index]
}

// Destroy releases the views, then the framebuffers, then the chain handle.
// The images belong to the driver and are only forgotten.
func (c *Chain) Destroy() {
	for _, view := range c.views {
		view.Destroy()
	}
	c.views = nil

	for _, framebuffer := range c.framebuffers {
		framebuffer.Destroy()
	}
	c.framebuffers = nil

	if c.swapchain != nil {
		c.swapchain.Destroy()
		c.swapchain = nil
	}
	c.images = nil
}
