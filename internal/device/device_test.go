package device

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/gpu/gputest"
)

var mandatory = gpu.NewFeatures(gpu.GeometryShader, gpu.SamplerAnisotropy)

func newAdapter(name string, kind gpu.AdapterType, maxDim int, features gpu.Features) *gputest.Adapter {
	return &gputest.Adapter{
		Props: gpu.AdapterProperties{Name: name, Type: kind, MaxImageDimension2D: maxDim},
		Feats: features,
		Families: []gpu.QueueFamilyProperties{
			{Graphics: true, Compute: true, Transfer: true, QueueCount: 1},
		},
		Present: map[int]bool{0: true},
	}
}

func TestScore(t *testing.T) {
	specs := []struct {
		kind     gpu.AdapterType
		maxDim   int
		features gpu.Features
		exp      int
	}{
		{gpu.AdapterDiscrete, 16384, mandatory, 17384},
		{gpu.AdapterIntegrated, 16384, mandatory, 16384},
		{gpu.AdapterDiscrete, 16384, gpu.NewFeatures(gpu.SamplerAnisotropy), 0},
		{gpu.AdapterIntegrated, 8192, mandatory.With(gpu.TimelineSemaphore), 8192},
		{gpu.AdapterCPU, 4096, gpu.Features{}, 0},
	}

	for specIndex, spec := range specs {
		props := gpu.AdapterProperties{Type: spec.kind, MaxImageDimension2D: spec.maxDim}
		if got := Score(props, spec.features, mandatory); got != spec.exp {
			t.Fatalf("[spec %d] expected score %d; got %d", specIndex, spec.exp, got)
		}
	}
}

func TestSelectAdapter(t *testing.T) {
	integrated := newAdapter("integrated", gpu.AdapterIntegrated, 16384, mandatory)
	discrete := newAdapter("discrete", gpu.AdapterDiscrete, 16384, mandatory)
	crippled := newAdapter("crippled", gpu.AdapterDiscrete, 32768, gpu.NewFeatures(gpu.GeometryShader))
	twin := newAdapter("twin", gpu.AdapterDiscrete, 16384, mandatory)

	specs := []struct {
		adapters []gpu.Adapter
		exp      gpu.Adapter
	}{
		{[]gpu.Adapter{integrated, discrete}, discrete},
		{[]gpu.Adapter{crippled, integrated}, integrated},
		// ties go to the first enumerated adapter
		{[]gpu.Adapter{discrete, twin}, discrete},
		{[]gpu.Adapter{twin, discrete}, twin},
	}

	for specIndex, spec := range specs {
		got, err := SelectAdapter(spec.adapters, mandatory)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}
		if got != spec.exp {
			t.Fatalf("[spec %d] expected %q; got %q", specIndex, spec.exp.Properties().Name, got.Properties().Name)
		}
	}
}

func TestSelectAdapterFailures(t *testing.T) {
	_, err := SelectAdapter(nil, mandatory)
	if !errors.Is(err, ErrNoAdapters) || !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected fatal ErrNoAdapters; got %v", err)
	}

	crippled := newAdapter("crippled", gpu.AdapterDiscrete, 32768, gpu.NewFeatures(gpu.GeometryShader))
	_, err = SelectAdapter([]gpu.Adapter{crippled}, mandatory)
	if !errors.Is(err, ErrNoSuitableAdapter) || !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected fatal ErrNoSuitableAdapter; got %v", err)
	}
}

func TestFindQueueFamilies(t *testing.T) {
	specs := []struct {
		families    []gpu.QueueFamilyProperties
		present     map[int]bool
		expGraphics int
		expPresent  int
		expQueries  int
	}{
		{
			families: []gpu.QueueFamilyProperties{
				{Graphics: true, QueueCount: 1},
				{Graphics: true, QueueCount: 1},
			},
			present:     map[int]bool{0: true, 1: true},
			expGraphics: 0, expPresent: 0, expQueries: 1,
		},
		{
			families: []gpu.QueueFamilyProperties{
				{Transfer: true, QueueCount: 2},
				{Graphics: true, QueueCount: 1},
				{Compute: true, QueueCount: 1},
				{Graphics: true, QueueCount: 1},
			},
			present:     map[int]bool{2: true, 3: true},
			expGraphics: 1, expPresent: 2, expQueries: 3,
		},
		{
			// a graphics family without queues is ignored
			families: []gpu.QueueFamilyProperties{
				{Graphics: true, QueueCount: 0},
				{Graphics: true, QueueCount: 4},
			},
			present:     map[int]bool{0: true},
			expGraphics: 1, expPresent: 0, expQueries: 1,
		},
	}

	for specIndex, spec := range specs {
		adapter := &gputest.Adapter{Families: spec.families, Present: spec.present}
		indices, err := FindQueueFamilies(adapter)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}
		if !indices.IsComplete() {
			t.Fatalf("[spec %d] expected complete indices", specIndex)
		}
		if *indices.GraphicsFamily != spec.expGraphics || *indices.PresentFamily != spec.expPresent {
			t.Fatalf("[spec %d] expected graphics %d present %d; got %d %d",
				specIndex, spec.expGraphics, spec.expPresent, *indices.GraphicsFamily, *indices.PresentFamily)
		}
		if adapter.PresentQueries != spec.expQueries {
			t.Fatalf("[spec %d] expected scan to stop after %d presentation queries; got %d",
				specIndex, spec.expQueries, adapter.PresentQueries)
		}
	}
}

func TestOpen(t *testing.T) {
	adapter := newAdapter("split", gpu.AdapterDiscrete, 16384, mandatory.With(gpu.TimelineSemaphore))
	adapter.Families = []gpu.QueueFamilyProperties{
		{Graphics: true, QueueCount: 1},
		{Transfer: true, QueueCount: 1},
	}
	adapter.Present = map[int]bool{1: true}

	instance := &gputest.Instance{List: []gpu.Adapter{adapter}}
	dev, selected, err := Open(instance, Options{
		Required:   mandatory,
		Extra:      gpu.NewFeatures(gpu.TimelineSemaphore, gpu.ScalarBlockLayout),
		Extensions: []string{"VK_KHR_swapchain"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if dev == nil || selected != adapter {
		t.Fatal("expected device on the only adapter")
	}

	info := instance.CreateInfo
	if got := info.QueueFamilies.Unique(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected one queue from each of families [0 1]; got %v", got)
	}

	exp := mandatory.With(gpu.TimelineSemaphore)
	if info.Features != exp {
		t.Fatalf("expected enabled features %s; got %s", exp, info.Features)
	}
	if len(info.Extensions) != 1 || info.Extensions[0] != "VK_KHR_swapchain" {
		t.Fatalf("unexpected extensions %v", info.Extensions)
	}
}

func TestOpenFailures(t *testing.T) {
	noPresent := newAdapter("headless", gpu.AdapterDiscrete, 16384, mandatory)
	noPresent.Present = nil

	_, _, err := Open(&gputest.Instance{List: []gpu.Adapter{noPresent}}, Options{Required: mandatory})
	if !errors.Is(err, ErrQueueFamiliesIncomplete) || !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected fatal ErrQueueFamiliesIncomplete; got %v", err)
	}

	rejected := errors.New("VK_ERROR_FEATURE_NOT_PRESENT")
	instance := &gputest.Instance{
		List:      []gpu.Adapter{newAdapter("gpu", gpu.AdapterDiscrete, 16384, mandatory)},
		CreateErr: rejected,
	}
	_, _, err = Open(instance, Options{Required: mandatory})
	if !errors.Is(err, rejected) || !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected fatal wrapped driver error; got %v", err)
	}
}

func TestMaxUsableSampleCount(t *testing.T) {
	specs := []struct {
		color, depth gpu.SampleCounts
		exp          gpu.SampleCounts
	}{
		{gpu.Samples1 | gpu.Samples4 | gpu.Samples8, gpu.Samples1 | gpu.Samples4, gpu.Samples4},
		{gpu.Samples1 | gpu.Samples64, gpu.Samples1 | gpu.Samples64, gpu.Samples64},
		{gpu.Samples1, gpu.Samples1 | gpu.Samples2, gpu.Samples1},
		{0, 0, gpu.Samples1},
	}

	for specIndex, spec := range specs {
		props := gpu.AdapterProperties{ColorSampleCounts: spec.color, DepthSampleCounts: spec.depth}
		if got := MaxUsableSampleCount(props); got != spec.exp {
			t.Fatalf("[spec %d] expected %d; got %d", specIndex, spec.exp, got)
		}
	}
}
