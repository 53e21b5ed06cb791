package vulkan

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/pipelinecache"
)

type Pipeline struct {
	device *Device
	handle core1_0.Pipeline
	layout core1_0.PipelineLayout
}

func (p *Pipeline) Destroy() {
	if p.handle.Initialized() {
		p.device.driver.DestroyPipeline(p.handle, nil)
		p.handle = core1_0.Pipeline{}
	}
	if p.layout.Initialized() {
		p.device.driver.DestroyPipelineLayout(p.layout, nil)
		p.layout = core1_0.PipelineLayout{}
	}
}

type PipelineOptions struct {
	VertexShaderPath   string
	FragmentShaderPath string

	SetLayout core1_0.DescriptorSetLayout

	// Optional. When set, the cache is seeded from this file and written
	// back by SaveCache.
	CachePath string
}

// PipelineBuilder builds the mesh pipeline for a render pass and extent. The
// shader modules and the pipeline cache outlive individual pipelines.
type PipelineBuilder struct {
	device *Device
	opts   PipelineOptions

	vertShader core1_0.ShaderModule
	fragShader core1_0.ShaderModule
	cache      core1_0.PipelineCache
}

func NewPipelineBuilder(device *Device, opts PipelineOptions) (*PipelineBuilder, error) {
	b := &PipelineBuilder{device: device, opts: opts}
	var err error

	b.vertShader, err = b.loadShader(opts.VertexShaderPath)
	if err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "load vertex shader")
	}

	b.fragShader, err = b.loadShader(opts.FragmentShaderPath)
	if err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "load fragment shader")
	}

	var initialData []byte
	if opts.CachePath != "" {
		initialData, err = pipelinecache.Load(opts.CachePath, device.cacheIdentity())
		if err != nil {
			b.Destroy()
			return nil, err
		}
	}

	b.cache, _, err = device.driver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "create pipeline cache")
	}
	logger.Debugf("pipeline cache seeded with %d bytes", len(initialData))

	return b, nil
}

func (d *Device) cacheIdentity() pipelinecache.Identity {
	return pipelinecache.Identity{
		VendorID: d.adapter.properties.VendorID,
		DeviceID: d.adapter.properties.DeviceID,
		UUID:     d.adapter.properties.PipelineCacheUUID,
	}
}

func (b *PipelineBuilder) loadShader(path string) (core1_0.ShaderModule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return core1_0.ShaderModule{}, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return core1_0.ShaderModule{}, errors.Newf("%s is not SPIR-V: %d bytes", path, len(code))
	}

	module, _, err := b.device.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: bytesToBytecode(code),
	})
	return module, err
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

var vertexBindings = []core1_0.VertexInputBindingDescription{
	{
		Binding:   0,
		Stride:    3 * 4,
		InputRate: core1_0.VertexInputRateVertex,
	},
	{
		Binding:   1,
		Stride:    2 * 4,
		InputRate: core1_0.VertexInputRateVertex,
	},
}

var vertexAttributes = []core1_0.VertexInputAttributeDescription{
	{
		Binding:  0,
		Location: 0,
		Format:   core1_0.FormatR32G32B32SignedFloat,
		Offset:   0,
	},
	{
		Binding:  1,
		Location: 1,
		Format:   core1_0.FormatR32G32SignedFloat,
		Offset:   0,
	},
}

func (b *PipelineBuilder) Build(renderPass gpu.RenderPass, extent gpu.Extent2D) (gpu.Pipeline, error) {
	driver := b.device.driver
	start := hrtime.Now()

	vkExtent := core1_0.Extent2D{Width: extent.Width, Height: extent.Height}

	layout, _, err := driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			b.opts.SetLayout,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline layout")
	}

	pipeline := &Pipeline{device: b.device, layout: layout}

	pipelines, _, err := driver.CreateGraphicsPipelines(&b.cache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: b.vertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: b.fragShader,
					Name:   "main",
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   vertexBindings,
				VertexAttributeDescriptions: vertexAttributes,
			},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               core1_0.PrimitiveTopologyTriangleList,
				PrimitiveRestartEnable: false,
			},
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{
					{
						X:        0,
						Y:        0,
						Width:    float32(extent.Width),
						Height:   float32(extent.Height),
						MinDepth: 0,
						MaxDepth: 1,
					},
				},
				Scissors: []core1_0.Rect2D{
					{
						Offset: core1_0.Offset2D{X: 0, Y: 0},
						Extent: vkExtent,
					},
				},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				DepthClampEnable:        false,
				RasterizerDiscardEnable: false,

				PolygonMode: core1_0.PolygonModeFill,
				CullMode:    core1_0.CullModeBack,
				FrontFace:   core1_0.FrontFaceCounterClockwise,

				DepthBiasEnable: false,

				LineWidth: 1.0,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				SampleShadingEnable:  false,
				RasterizationSamples: core1_0.Samples1,
				MinSampleShading:     1.0,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				LogicOpEnabled: false,
				LogicOp:        core1_0.LogicOpCopy,

				BlendConstants: [4]float32{0, 0, 0, 0},
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						BlendEnabled:   false,
						ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
					},
				},
			},
			Layout:            layout,
			RenderPass:        renderPass.(*RenderPass).handle,
			Subpass:           0,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		pipeline.Destroy()
		return nil, errors.Wrap(err, "create graphics pipeline")
	}
	pipeline.handle = pipelines[0]

	logger.Debugf("graphics pipeline for %s built in %v", extent, hrtime.Since(start))
	return pipeline, nil
}

// SaveCache writes the pipeline cache to the configured path.
func (b *PipelineBuilder) SaveCache() error {
	if b.opts.CachePath == "" || !b.cache.Initialized() {
		return nil
	}

	data, _, err := b.device.driver.GetPipelineCacheData(b.cache)
	if err != nil {
		return errors.Wrap(err, "read pipeline cache")
	}

	return pipelinecache.Store(b.opts.CachePath, data)
}

func (b *PipelineBuilder) Destroy() {
	driver := b.device.driver

	if b.cache.Initialized() {
		driver.DestroyPipelineCache(b.cache, nil)
		b.cache = core1_0.PipelineCache{}
	}

	if b.fragShader.Initialized() {
		driver.DestroyShaderModule(b.fragShader, nil)
		b.fragShader = core1_0.ShaderModule{}
	}

	if b.vertShader.Initialized() {
		driver.DestroyShaderModule(b.vertShader, nil)
		b.vertShader = core1_0.ShaderModule{}
	}
}
