package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

type Swapchain struct {
	device *Device
	handle khr_swapchain.Swapchain
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	capabilities, _, err := d.instance.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(d.instance.surface, d.adapter.physicalDevice)
	if err != nil {
		return nil, err
	}

	sharingMode := core1_0.SharingModeExclusive
	if info.SharingMode == gpu.SharingConcurrent {
		sharingMode = core1_0.SharingModeConcurrent
	}

	swapchain, _, err := d.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.instance.surface,

		MinImageCount:    info.MinImageCount,
		ImageFormat:      core1_0.Format(info.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: info.QueueFamilyIndices,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        true,
	})
	if err != nil {
		return nil, err
	}

	return &Swapchain{device: d, handle: swapchain}, nil
}

func (s *Swapchain) Images() ([]gpu.Image, error) {
	images, _, err := s.device.swapchainExtension.GetSwapchainImages(s.handle)
	if err != nil {
		return nil, err
	}

	result := make([]gpu.Image, 0, len(images))
	for _, image := range images {
		result = append(result, image)
	}
	return result, nil
}

func (s *Swapchain) AcquireNextImage(signal gpu.Semaphore) (int, gpu.Result, error) {
	semaphore := signal.(*Semaphore).handle

	imageIndex, res, err := s.device.swapchainExtension.AcquireNextImage(s.handle, common.NoTimeout, &semaphore, nil)
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return -1, gpu.OutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return imageIndex, gpu.Suboptimal, nil
	}
	if err != nil {
		return -1, gpu.Failure, err
	}

	return imageIndex, gpu.Success, nil
}

// Destroy also releases the present semaphores of the chain's images. Chains
// are only destroyed after the device has gone idle.
func (s *Swapchain) Destroy() {
	if s.handle.Initialized() {
		s.device.present.presentSemaphores.release()
		s.device.swapchainExtension.DestroySwapchain(s.handle, nil)
		s.handle = khr_swapchain.Swapchain{}
	}
}

type ImageView struct {
	device *Device
	handle core1_0.ImageView
}

// CreateImageView creates a single-level color view of a chain image.
func (d *Device) CreateImageView(image gpu.Image, format gpu.Format) (gpu.ImageView, error) {
	handle, ok := image.(core1_0.Image)
	if !ok {
		return nil, errors.AssertionFailedf("image %T was not created by this device", image)
	}

	view, err := d.createImageView(handle, core1_0.Format(format), 1)
	if err != nil {
		return nil, err
	}
	return &ImageView{device: d, handle: view}, nil
}

func (d *Device) createImageView(image core1_0.Image, format core1_0.Format, mipLevels int) (core1_0.ImageView, error) {
	imageView, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func (v *ImageView) Destroy() {
	if v.handle.Initialized() {
		v.device.driver.DestroyImageView(v.handle, nil)
		v.handle = core1_0.ImageView{}
	}
}

type RenderPass struct {
	device *Device
	handle core1_0.RenderPass
}

// CreateRenderPass creates a single-subpass pass that clears one color
// attachment and leaves it ready for presentation.
func (d *Device) CreateRenderPass(format gpu.Format) (gpu.RenderPass, error) {
	renderPass, _, err := d.driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         core1_0.Format(format),
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &RenderPass{device: d, handle: renderPass}, nil
}

func (p *RenderPass) Destroy() {
	if p.handle.Initialized() {
		p.device.driver.DestroyRenderPass(p.handle, nil)
		p.handle = core1_0.RenderPass{}
	}
}

type Framebuffer struct {
	device *Device
	handle core1_0.Framebuffer
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	renderPass, ok := info.RenderPass.(*RenderPass)
	if !ok {
		return nil, errors.AssertionFailedf("render pass %T was not created by this device", info.RenderPass)
	}

	attachments := make([]core1_0.ImageView, 0, len(info.Attachments))
	for _, attachment := range info.Attachments {
		attachments = append(attachments, attachment.(*ImageView).handle)
	}

	framebuffer, _, err := d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  renderPass.handle,
		Layers:      1,
		Attachments: attachments,
		Width:       info.Extent.Width,
		Height:      info.Extent.Height,
	})
	if err != nil {
		return nil, err
	}

	return &Framebuffer{device: d, handle: framebuffer}, nil
}

func (f *Framebuffer) Destroy() {
	if f.handle.Initialized() {
		f.device.driver.DestroyFramebuffer(f.handle, nil)
		f.handle = core1_0.Framebuffer{}
	}
}
