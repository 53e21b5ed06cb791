package vulkan

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

func TestFeatureTableRoundTrip(t *testing.T) {
	specs := []gpu.Features{
		{},
		gpu.NewFeatures(gpu.GeometryShader, gpu.SamplerAnisotropy),
		gpu.NewFeatures(gpu.RobustBufferAccess, gpu.InheritedQueries, gpu.ShaderInt16),
	}

	for specIndex, spec := range specs {
		core := featuresToCore(spec)
		if got := featuresFromCore(core); got != spec {
			t.Fatalf("[spec %d] expected %s; got %s", specIndex, spec, got)
		}
	}
}

func TestFeatureTableMapsFields(t *testing.T) {
	core := featuresToCore(gpu.NewFeatures(gpu.GeometryShader, gpu.SamplerAnisotropy))
	if !core.GeometryShader || !core.SamplerAnisotropy {
		t.Fatalf("expected geometry shader and anisotropy to be enabled; got %+v", core)
	}
	if core.TessellationShader || core.WideLines {
		t.Fatalf("expected unrequested features to stay disabled; got %+v", core)
	}

	// Core structs have no timeline semaphore field.
	core = featuresToCore(gpu.NewFeatures(gpu.TimelineSemaphore))
	if got := featuresFromCore(core); !got.IsEmpty() {
		t.Fatalf("expected no core features; got %s", got)
	}

	if got := featuresFromCore(nil); !got.IsEmpty() {
		t.Fatalf("expected nil features to map to the empty set; got %s", got)
	}
}

func TestFeatureTableHasNoDuplicates(t *testing.T) {
	seen := make(map[gpu.Feature]bool)
	for _, entry := range coreFeatureFields {
		if seen[entry.feature] {
			t.Fatalf("feature %s mapped twice", entry.feature)
		}
		seen[entry.feature] = true
	}
}

func TestExtentSentinel(t *testing.T) {
	maxExtent := math.MaxUint32
	specs := []struct {
		in  core1_0.Extent2D
		exp gpu.Extent2D
	}{
		{core1_0.Extent2D{Width: 800, Height: 600}, gpu.Extent2D{Width: 800, Height: 600}},
		{core1_0.Extent2D{Width: -1, Height: -1}, gpu.Extent2D{Width: gpu.ExtentSentinel, Height: gpu.ExtentSentinel}},
		{core1_0.Extent2D{Width: maxExtent, Height: maxExtent}, gpu.Extent2D{Width: gpu.ExtentSentinel, Height: gpu.ExtentSentinel}},
	}

	for specIndex, spec := range specs {
		if got := extent(spec.in); got != spec.exp {
			t.Fatalf("[spec %d] expected %s; got %s", specIndex, spec.exp, got)
		}
	}
}

func TestBytesToBytecode(t *testing.T) {
	code := bytesToBytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if len(code) != 2 {
		t.Fatalf("expected 2 words; got %d", len(code))
	}
	// SPIR-V magic number, little endian.
	if code[0] != 0x07230203 {
		t.Fatalf("expected magic 0x07230203; got %#x", code[0])
	}
	if code[1] != 0x00010000 {
		t.Fatalf("expected version word 0x00010000; got %#x", code[1])
	}
}

func TestAdapterType(t *testing.T) {
	specs := []struct {
		in  core1_0.PhysicalDeviceType
		exp gpu.AdapterType
	}{
		{core1_0.PhysicalDeviceTypeDiscreteGPU, gpu.AdapterDiscrete},
		{core1_0.PhysicalDeviceTypeIntegratedGPU, gpu.AdapterIntegrated},
		{core1_0.PhysicalDeviceTypeVirtualGPU, gpu.AdapterVirtual},
		{core1_0.PhysicalDeviceTypeCPU, gpu.AdapterCPU},
		{core1_0.PhysicalDeviceTypeOther, gpu.AdapterOther},
	}

	for specIndex, spec := range specs {
		if got := adapterType(spec.in); got != spec.exp {
			t.Fatalf("[spec %d] expected %s; got %s", specIndex, spec.exp, got)
		}
	}
}

func TestImageSemaphoresReleasedPerChain(t *testing.T) {
	var created, destroyed int
	semaphores := newImageSemaphores(
		func() (core1_0.Semaphore, error) {
			created++
			return core1_0.Semaphore{}, nil
		},
		func(core1_0.Semaphore) { destroyed++ },
	)

	for _, image := range []int{0, 1, 0, 2, 1} {
		if _, err := semaphores.get(image); err != nil {
			t.Fatal(err)
		}
	}
	if created != 3 {
		t.Fatalf("expected one semaphore per image; got %d created", created)
	}

	semaphores.release()
	if destroyed != 3 || len(semaphores.byImage) != 0 {
		t.Fatalf("expected every semaphore released; got %d destroyed, %d kept", destroyed, len(semaphores.byImage))
	}

	// A rebuilt chain starts from fresh semaphores.
	if _, err := semaphores.get(0); err != nil {
		t.Fatal(err)
	}
	if created != 4 {
		t.Fatalf("expected a new semaphore after release; got %d created", created)
	}

	semaphores.release()
	semaphores.release()
	if destroyed != 4 {
		t.Fatalf("expected release to be idempotent; got %d destroyed", destroyed)
	}
}

func TestImageSemaphoresCreateFailure(t *testing.T) {
	semaphores := newImageSemaphores(
		func() (core1_0.Semaphore, error) {
			return core1_0.Semaphore{}, errors.New("VK_ERROR_OUT_OF_HOST_MEMORY")
		},
		func(core1_0.Semaphore) { t.Fatal("nothing to destroy") },
	)

	if _, err := semaphores.get(0); err == nil {
		t.Fatal("expected create error")
	}
	if len(semaphores.byImage) != 0 {
		t.Fatalf("expected failed semaphore not to be kept; got %d", len(semaphores.byImage))
	}
	semaphores.release()
}
