package vulkan

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/scene"
)

// Uniforms keeps one object and one view/projection uniform buffer per chain
// image, and one descriptor set per image binding them with the texture.
type Uniforms struct {
	device  *Device
	texture *Texture
	camera  scene.Camera
	start   time.Duration

	setLayout core1_0.DescriptorSetLayout
	pool      core1_0.DescriptorPool
	objects   []*Buffer
	views     []*Buffer
}

func NewUniforms(device *Device, texture *Texture, camera scene.Camera) (*Uniforms, error) {
	setLayout, _, err := device.driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
			{
				Binding:         1,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
			{
				Binding:         2,
				DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create descriptor set layout")
	}

	return &Uniforms{
		device:    device,
		texture:   texture,
		camera:    camera,
		start:     hrtime.Now(),
		setLayout: setLayout,
	}, nil
}

// SetLayout is the layout pipelines must be built against.
func (u *Uniforms) SetLayout() core1_0.DescriptorSetLayout {
	return u.setLayout
}

func (u *Uniforms) Allocate(count int) ([]gpu.DescriptorSet, error) {
	if u.pool.Initialized() {
		return nil, errors.AssertionFailedf("uniforms allocated twice without release")
	}

	driver := u.device.driver
	var err error

	for i := 0; i < count; i++ {
		object, err := u.device.createBuffer(scene.ObjectUniformSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			u.Release()
			return nil, err
		}
		u.objects = append(u.objects, object)

		view, err := u.device.createBuffer(scene.ViewProjectionSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			u.Release()
			return nil, err
		}
		u.views = append(u.views, view)
	}

	u.pool, _, err = driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: count,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 2 * count,
			},
			{
				Type:            core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: count,
			},
		},
	})
	if err != nil {
		u.Release()
		return nil, errors.Wrap(err, "create descriptor pool")
	}

	allocLayouts := make([]core1_0.DescriptorSetLayout, count)
	for i := range allocLayouts {
		allocLayouts[i] = u.setLayout
	}

	sets, _, err := driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: u.pool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		u.Release()
		return nil, errors.Wrap(err, "allocate descriptor sets")
	}

	result := make([]gpu.DescriptorSet, 0, count)
	for i, set := range sets {
		err = driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          set,
				DstBinding:      0,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: u.objects[i].handle,
						Offset: 0,
						Range:  scene.ObjectUniformSize,
					},
				},
			},
			{
				DstSet:          set,
				DstBinding:      1,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: u.views[i].handle,
						Offset: 0,
						Range:  scene.ViewProjectionSize,
					},
				},
			},
			{
				DstSet:          set,
				DstBinding:      2,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

				ImageInfo: []core1_0.DescriptorImageInfo{
					{
						ImageView:   u.texture.view,
						Sampler:     u.texture.sampler,
						ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
			},
		}, nil)
		if err != nil {
			u.Release()
			return nil, errors.Wrap(err, "write descriptor sets")
		}
		result = append(result, set)
	}

	return result, nil
}

// Update writes the current model rotation and the camera for extent into
// image index's buffers.
func (u *Uniforms) Update(index int, extent gpu.Extent2D) error {
	if index < 0 || index >= len(u.objects) {
		return errors.Newf("uniform index %d out of range [0, %d)", index, len(u.objects))
	}

	object, err := scene.Encode(u.camera.Object(hrtime.Since(u.start)))
	if err != nil {
		return err
	}

	view, err := scene.Encode(u.camera.ViewProjection(extent.Width, extent.Height))
	if err != nil {
		return err
	}

	err = u.objects[index].Write(0, object)
	if err != nil {
		return err
	}

	return u.views[index].Write(0, view)
}

// Release frees the buffers and the descriptor pool with its sets.
func (u *Uniforms) Release() {
	if u.pool.Initialized() {
		u.device.driver.DestroyDescriptorPool(u.pool, nil)
		u.pool = core1_0.DescriptorPool{}
	}

	for _, buffer := range u.objects {
		buffer.Destroy()
	}
	u.objects = nil

	for _, buffer := range u.views {
		buffer.Destroy()
	}
	u.views = nil
}

func (u *Uniforms) Destroy() {
	u.Release()

	if u.setLayout.Initialized() {
		u.device.driver.DestroyDescriptorSetLayout(u.setLayout, nil)
		u.setLayout = core1_0.DescriptorSetLayout{}
	}
}
