package gpu

import (
	"strings"
)

// Feature names one boolean device capability.
type Feature int

const (
	RobustBufferAccess Feature = iota
	FullDrawIndexUint32
	ImageCubeArray
	IndependentBlend
	GeometryShader
	TessellationShader
	SampleRateShading
	DualSrcBlend
	LogicOp
	MultiDrawIndirect
	DrawIndirectFirstInstance
	DepthClamp
	DepthBiasClamp
	FillModeNonSolid
	DepthBounds
	WideLines
	LargePoints
	AlphaToOne
	MultiViewport
	SamplerAnisotropy
	TextureCompressionETC2
	TextureCompressionASTCLDR
	TextureCompressionBC
	OcclusionQueryPrecise
	PipelineStatisticsQuery
	VertexPipelineStoresAndAtomics
	FragmentStoresAndAtomics
	ShaderTessellationAndGeometryPointSize
	ShaderImageGatherExtended
	ShaderStorageImageExtendedFormats
	ShaderStorageImageMultisample
	ShaderStorageImageReadWithoutFormat
	ShaderStorageImageWriteWithoutFormat
	ShaderUniformBufferArrayDynamicIndexing
	ShaderSampledImageArrayDynamicIndexing
	ShaderStorageBufferArrayDynamicIndexing
	ShaderStorageImageArrayDynamicIndexing
	ShaderClipDistance
	ShaderCullDistance
	ShaderFloat64
	ShaderInt64
	ShaderInt16
	ShaderResourceResidency
	ShaderResourceMinLod
	SparseBinding
	SparseResidencyBuffer
	SparseResidencyImage2D
	SparseResidencyImage3D
	SparseResidency2Samples
	SparseResidency4Samples
	SparseResidency8Samples
	SparseResidency16Samples
	SparseResidencyAliased
	VariableMultisampleRate
	InheritedQueries

	// Vulkan 1.2
	TimelineSemaphore
	DescriptorIndexing
	BufferDeviceAddress
	ScalarBlockLayout

	featureCount
)

var featureNames = [featureCount]string{
	"RobustBufferAccess",
	"FullDrawIndexUint32",
	"ImageCubeArray",
	"IndependentBlend",
	"GeometryShader",
	"TessellationShader",
	"SampleRateShading",
	"DualSrcBlend",
	"LogicOp",
	"MultiDrawIndirect",
	"DrawIndirectFirstInstance",
	"DepthClamp",
	"DepthBiasClamp",
	"FillModeNonSolid",
	"DepthBounds",
	"WideLines",
	"LargePoints",
	"AlphaToOne",
	"MultiViewport",
	"SamplerAnisotropy",
	"TextureCompressionETC2",
	"TextureCompressionASTCLDR",
	"TextureCompressionBC",
	"OcclusionQueryPrecise",
	"PipelineStatisticsQuery",
	"VertexPipelineStoresAndAtomics",
	"FragmentStoresAndAtomics",
	"ShaderTessellationAndGeometryPointSize",
	"ShaderImageGatherExtended",
	"ShaderStorageImageExtendedFormats",
	"ShaderStorageImageMultisample",
	"ShaderStorageImageReadWithoutFormat",
	"ShaderStorageImageWriteWithoutFormat",
	"ShaderUniformBufferArrayDynamicIndexing",
	"ShaderSampledImageArrayDynamicIndexing",
	"ShaderStorageBufferArrayDynamicIndexing",
	"ShaderStorageImageArrayDynamicIndexing",
	"ShaderClipDistance",
	"ShaderCullDistance",
	"ShaderFloat64",
	"ShaderInt64",
	"ShaderInt16",
	"ShaderResourceResidency",
	"ShaderResourceMinLod",
	"SparseBinding",
	"SparseResidencyBuffer",
	"SparseResidencyImage2D",
	"SparseResidencyImage3D",
	"SparseResidency2Samples",
	"SparseResidency4Samples",
	"SparseResidency8Samples",
	"SparseResidency16Samples",
	"SparseResidencyAliased",
	"VariableMultisampleRate",
	"InheritedQueries",
	"TimelineSemaphore",
	"DescriptorIndexing",
	"BufferDeviceAddress",
	"ScalarBlockLayout",
}

func (f Feature) String() string {
	if f < 0 || f >= featureCount {
		return "Feature(?)"
	}
	return featureNames[f]
}

const featureWords = (int(featureCount) + 63) / 64

// Features is a fixed-size set of capabilities. The zero value is the empty set.
type Features struct {
	bits [featureWords]uint64
}

// NewFeatures returns a set containing the given features.
func NewFeatures(features ...Feature) Features {
	var f Features
	for _, feature := range features {
		f = f.With(feature)
	}
	return f
}

func (f Features) With(feature Feature) Features {
	if feature >= 0 && feature < featureCount {
		f.bits[feature/64] |= 1 << (uint(feature) % 64)
	}
	return f
}

func (f Features) Has(feature Feature) bool {
	if feature < 0 || feature >= featureCount {
		return false
	}
	return f.bits[feature/64]&(1<<(uint(feature)%64)) != 0
}

// And returns the intersection of both sets.
func (f Features) And(other Features) Features {
	for i := range f.bits {
		f.bits[i] &= other.bits[i]
	}
	return f
}

// Or returns the union of both sets.
func (f Features) Or(other Features) Features {
	for i := range f.bits {
		f.bits[i] |= other.bits[i]
	}
	return f
}

// Contains reports whether every feature of required is present in f.
func (f Features) Contains(required Features) bool {
	return required.And(f) == required
}

// Missing lists the features of required that f lacks.
func (f Features) Missing(required Features) []Feature {
	var missing []Feature
	for feature := Feature(0); feature < featureCount; feature++ {
		if required.Has(feature) && !f.Has(feature) {
			missing = append(missing, feature)
		}
	}
	return missing
}

// List returns the set members in declaration order.
func (f Features) List() []Feature {
	var list []Feature
	for feature := Feature(0); feature < featureCount; feature++ {
		if f.Has(feature) {
			list = append(list, feature)
		}
	}
	return list
}

func (f Features) IsEmpty() bool {
	return f == Features{}
}

func (f Features) String() string {
	list := f.List()
	names := make([]string, 0, len(list))
	for _, feature := range list {
		names = append(names, feature.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
