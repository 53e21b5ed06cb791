package vulkan

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

type featureField struct {
	feature gpu.Feature
	field   func(f *core1_0.PhysicalDeviceFeatures) *bool
}

// Texture compression features are neither queried nor enabled.
var coreFeatureFields = []featureField{
	{gpu.RobustBufferAccess, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.RobustBufferAccess }},
	{gpu.FullDrawIndexUint32, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.FullDrawIndexUint32 }},
	{gpu.ImageCubeArray, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ImageCubeArray }},
	{gpu.IndependentBlend, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.IndependentBlend }},
	{gpu.GeometryShader, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.GeometryShader }},
	{gpu.TessellationShader, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.TessellationShader }},
	{gpu.SampleRateShading, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SampleRateShading }},
	{gpu.DualSrcBlend, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.DualSrcBlend }},
	{gpu.LogicOp, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.LogicOp }},
	{gpu.MultiDrawIndirect, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.MultiDrawIndirect }},
	{gpu.DrawIndirectFirstInstance, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.DrawIndirectFirstInstance }},
	{gpu.DepthClamp, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.DepthClamp }},
	{gpu.DepthBiasClamp, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.DepthBiasClamp }},
	{gpu.FillModeNonSolid, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.FillModeNonSolid }},
	{gpu.DepthBounds, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.DepthBounds }},
	{gpu.WideLines, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.WideLines }},
	{gpu.LargePoints, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.LargePoints }},
	{gpu.AlphaToOne, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.AlphaToOne }},
	{gpu.MultiViewport, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.MultiViewport }},
	{gpu.SamplerAnisotropy, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SamplerAnisotropy }},
	{gpu.OcclusionQueryPrecise, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.OcclusionQueryPrecise }},
	{gpu.PipelineStatisticsQuery, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.PipelineStatisticsQuery }},
	{gpu.VertexPipelineStoresAndAtomics, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.VertexPipelineStoresAndAtomics }},
	{gpu.FragmentStoresAndAtomics, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.FragmentStoresAndAtomics }},
	{gpu.ShaderTessellationAndGeometryPointSize, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderTessellationAndGeometryPointSize }},
	{gpu.ShaderImageGatherExtended, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderImageGatherExtended }},
	{gpu.ShaderStorageImageExtendedFormats, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageImageExtendedFormats }},
	{gpu.ShaderStorageImageMultisample, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageImageMultisample }},
	{gpu.ShaderStorageImageReadWithoutFormat, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageImageReadWithoutFormat }},
	{gpu.ShaderStorageImageWriteWithoutFormat, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageImageWriteWithoutFormat }},
	{gpu.ShaderUniformBufferArrayDynamicIndexing, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderUniformBufferArrayDynamicIndexing }},
	{gpu.ShaderSampledImageArrayDynamicIndexing, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderSampledImageArrayDynamicIndexing }},
	{gpu.ShaderStorageBufferArrayDynamicIndexing, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageBufferArrayDynamicIndexing }},
	{gpu.ShaderStorageImageArrayDynamicIndexing, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderStorageImageArrayDynamicIndexing }},
	{gpu.ShaderClipDistance, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderClipDistance }},
	{gpu.ShaderCullDistance, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderCullDistance }},
	{gpu.ShaderFloat64, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderFloat64 }},
	{gpu.ShaderInt64, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderInt64 }},
	{gpu.ShaderInt16, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderInt16 }},
	{gpu.ShaderResourceResidency, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderResourceResidency }},
	{gpu.ShaderResourceMinLod, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.ShaderResourceMinLod }},
	{gpu.SparseBinding, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseBinding }},
	{gpu.SparseResidencyBuffer, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidencyBuffer }},
	{gpu.SparseResidencyImage2D, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidencyImage2D }},
	{gpu.SparseResidencyImage3D, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidencyImage3D }},
	{gpu.SparseResidency2Samples, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidency2Samples }},
	{gpu.SparseResidency4Samples, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidency4Samples }},
	{gpu.SparseResidency8Samples, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidency8Samples }},
	{gpu.SparseResidency16Samples, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidency16Samples }},
	{gpu.SparseResidencyAliased, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.SparseResidencyAliased }},
	{gpu.VariableMultisampleRate, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.VariableMultisampleRate }},
	{gpu.InheritedQueries, func(f *core1_0.PhysicalDeviceFeatures) *bool { return &f.InheritedQueries }},
}

func featuresFromCore(core *core1_0.PhysicalDeviceFeatures) gpu.Features {
	var features gpu.Features
	if core == nil {
		return features
	}
	for _, entry := range coreFeatureFields {
		if *entry.field(core) {
			features = features.With(entry.feature)
		}
	}
	return features
}

func featuresToCore(features gpu.Features) *core1_0.PhysicalDeviceFeatures {
	core := &core1_0.PhysicalDeviceFeatures{}
	for _, entry := range coreFeatureFields {
		*entry.field(core) = features.Has(entry.feature)
	}
	return core
}

// Adapter is a physical device seen through the instance's surface.
type Adapter struct {
	instance       *Instance
	physicalDevice core1_0.PhysicalDevice

	properties gpu.AdapterProperties
	features   gpu.Features
	families   []gpu.QueueFamilyProperties
	extensions map[string]bool
}

func newAdapter(instance *Instance, physicalDevice core1_0.PhysicalDevice) (*Adapter, error) {
	driver := instance.instanceDriver

	properties, err := driver.GetPhysicalDeviceProperties(physicalDevice)
	if err != nil {
		return nil, err
	}

	extensionProperties, _, err := driver.EnumerateDeviceExtensionProperties(physicalDevice)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		instance:       instance,
		physicalDevice: physicalDevice,
		properties: gpu.AdapterProperties{
			Name:                 properties.DriverName,
			Type:                 adapterType(properties.DriverType),
			VendorID:             properties.VendorID,
			DeviceID:             properties.DeviceID,
			PipelineCacheUUID:    properties.PipelineCacheUUID,
			MaxImageDimension2D:  properties.Limits.MaxImageDimension2D,
			MaxSamplerAnisotropy: properties.Limits.MaxSamplerAnisotropy,
			ColorSampleCounts:    gpu.SampleCounts(properties.Limits.FramebufferColorSampleCounts),
			DepthSampleCounts:    gpu.SampleCounts(properties.Limits.FramebufferDepthSampleCounts),
		},
		features:   featuresFromCore(driver.GetPhysicalDeviceFeatures(physicalDevice)),
		extensions: make(map[string]bool, len(extensionProperties)),
	}

	// Timeline semaphores are mandatory in 1.2.
	if properties.APIVersion.IsAtLeast(common.Vulkan1_2) {
		a.features = a.features.With(gpu.TimelineSemaphore)
	}

	for name := range extensionProperties {
		a.extensions[name] = true
	}

	for _, family := range driver.GetPhysicalDeviceQueueFamilyProperties(physicalDevice) {
		a.families = append(a.families, gpu.QueueFamilyProperties{
			Graphics:   family.QueueFlags&core1_0.QueueGraphics != 0,
			Compute:    family.QueueFlags&core1_0.QueueCompute != 0,
			Transfer:   family.QueueFlags&core1_0.QueueTransfer != 0,
			QueueCount: family.QueueCount,
		})
	}

	return a, nil
}

func adapterType(t core1_0.PhysicalDeviceType) gpu.AdapterType {
	switch t {
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		return gpu.AdapterIntegrated
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		return gpu.AdapterDiscrete
	case core1_0.PhysicalDeviceTypeVirtualGPU:
		return gpu.AdapterVirtual
	case core1_0.PhysicalDeviceTypeCPU:
		return gpu.AdapterCPU
	}
	return gpu.AdapterOther
}

func (a *Adapter) Properties() gpu.AdapterProperties {
	return a.properties
}

// Features reports the adapter's capabilities. An adapter that cannot
// present to a swapchain reports none, so it never scores.
func (a *Adapter) Features() gpu.Features {
	if !a.extensions[khr_swapchain.ExtensionName] {
		return gpu.Features{}
	}
	return a.features
}

func (a *Adapter) QueueFamilies() []gpu.QueueFamilyProperties {
	return a.families
}

func (a *Adapter) SupportsPresent(family int) (bool, error) {
	supported, _, err := a.instance.surfaceExtension.GetPhysicalDeviceSurfaceSupport(a.instance.surface, a.physicalDevice, family)
	return supported, err
}

func (a *Adapter) hasExtension(name string) bool {
	return a.extensions[name]
}
