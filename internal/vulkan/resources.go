package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/framecore/internal/commands"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/scene"
)

// Mesh is a scene mesh resident in device-local buffers. Positions feed
// vertex binding 0 and texture coordinates binding 1.
type Mesh struct {
	Positions *Buffer
	UVs       *Buffer
	Indices   *Buffer

	indexCount int
}

func (d *Device) UploadMesh(mesh *scene.Mesh) (*Mesh, error) {
	if len(mesh.Indices) == 0 {
		return nil, errors.New("mesh has no triangles")
	}

	m := &Mesh{indexCount: len(mesh.Indices)}
	var err error

	m.Positions, err = d.uploadBuffer(mesh.Positions, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		m.Destroy()
		return nil, errors.Wrap(err, "upload positions")
	}

	m.UVs, err = d.uploadBuffer(mesh.UVs, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		m.Destroy()
		return nil, errors.Wrap(err, "upload texture coordinates")
	}

	m.Indices, err = d.uploadBuffer(mesh.Indices, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		m.Destroy()
		return nil, errors.Wrap(err, "upload indices")
	}

	return m, nil
}

// Geometry describes the mesh to the command recorder.
func (m *Mesh) Geometry() commands.Geometry {
	return commands.Geometry{
		VertexBuffers: []gpu.Buffer{m.Positions, m.UVs},
		IndexBuffer:   m.Indices,
		IndexType:     gpu.IndexTypeUInt32,
		IndexCount:    m.indexCount,
	}
}

func (m *Mesh) Destroy() {
	for _, buffer := range []*Buffer{m.Indices, m.UVs, m.Positions} {
		if buffer != nil {
			buffer.Destroy()
		}
	}
}

const textureFormat = core1_0.FormatR8G8B8A8SRGB

// Texture is a sampled RGBA image with its view and sampler.
type Texture struct {
	device  *Device
	image   core1_0.Image
	memory  core1_0.DeviceMemory
	view    core1_0.ImageView
	sampler core1_0.Sampler
}

func (d *Device) UploadTexture(texture *scene.Texture) (*Texture, error) {
	if texture.Size() == 0 || texture.Size() != texture.Width*texture.Height*4 {
		return nil, errors.Newf("texture %dx%d has %d bytes of pixel data", texture.Width, texture.Height, texture.Size())
	}

	staging, err := d.createBuffer(texture.Size(), core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	err = staging.Write(0, texture.Pixels)
	if err != nil {
		return nil, err
	}

	t := &Texture{device: d}

	err = t.createImage(texture.Width, texture.Height)
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "create texture image")
	}

	err = d.submitOnce(func(cmd core1_0.CommandBuffer) error {
		err := d.transitionImageLayout(cmd, t.image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
		if err != nil {
			return err
		}

		err = d.driver.CmdCopyBufferToImage(cmd, staging.handle, t.image, core1_0.ImageLayoutTransferDstOptimal,
			core1_0.BufferImageCopy{
				BufferOffset:      0,
				BufferRowLength:   0,
				BufferImageHeight: 0,

				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask:     core1_0.ImageAspectColor,
					MipLevel:       0,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
				ImageExtent: core1_0.Extent3D{Width: texture.Width, Height: texture.Height, Depth: 1},
			},
		)
		if err != nil {
			return err
		}

		return d.transitionImageLayout(cmd, t.image, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "copy texture")
	}

	t.view, err = d.createImageView(t.image, textureFormat, 1)
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "create texture view")
	}

	anisotropy := d.features.Has(gpu.SamplerAnisotropy)
	t.sampler, _, err = d.driver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		AnisotropyEnable: anisotropy,
		MaxAnisotropy:    d.adapter.properties.MaxSamplerAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
		MinLod:     0,
		MaxLod:     0,
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "create sampler")
	}

	return t, nil
}

func (t *Texture) createImage(width, height int) error {
	driver := t.device.driver

	var err error
	t.image, _, err = driver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        textureFormat,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         core1_0.ImageUsageTransferDst | core1_0.ImageUsageSampled,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return err
	}

	memReqs := driver.GetImageMemoryRequirements(t.image)
	memoryIndex, err := t.device.findMemoryType(memReqs.MemoryTypeBits, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	t.memory, _, err = driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		return err
	}

	_, err = driver.BindImageMemory(t.image, t.memory, 0)
	return err
}

func (d *Device) transitionImageLayout(cmd core1_0.CommandBuffer, image core1_0.Image, oldLayout core1_0.ImageLayout, newLayout core1_0.ImageLayout) error {
	var sourceStage, destStage core1_0.PipelineStageFlags
	var sourceAccess, destAccess core1_0.AccessFlags

	if oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal {
		sourceAccess = 0
		destAccess = core1_0.AccessTransferWrite
		sourceStage = core1_0.PipelineStageTopOfPipe
		destStage = core1_0.PipelineStageTransfer
	} else if oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal {
		sourceAccess = core1_0.AccessTransferWrite
		destAccess = core1_0.AccessShaderRead
		sourceStage = core1_0.PipelineStageTransfer
		destStage = core1_0.PipelineStageFragmentShader
	} else {
		return errors.Newf("unexpected layout transition: %s -> %s", oldLayout, newLayout)
	}

	return d.driver.CmdPipelineBarrier(cmd, sourceStage, destStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcAccessMask: sourceAccess,
			DstAccessMask: destAccess,
		},
	})
}

func (t *Texture) Destroy() {
	driver := t.device.driver

	if t.sampler.Initialized() {
		driver.DestroySampler(t.sampler, nil)
		t.sampler = core1_0.Sampler{}
	}

	if t.view.Initialized() {
		driver.DestroyImageView(t.view, nil)
		t.view = core1_0.ImageView{}
	}

	if t.image.Initialized() {
		driver.DestroyImage(t.image, nil)
		t.image = core1_0.Image{}
	}

	if t.memory.Initialized() {
		driver.FreeMemory(t.memory, nil)
		t.memory = core1_0.DeviceMemory{}
	}
}
