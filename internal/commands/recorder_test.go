package commands

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/gpu/gputest"
)

type namedBuffer string

func (b namedBuffer) String() string { return string(b) }

func newTarget(t *testing.T, dev *gputest.Device, count int) Target {
	renderPass, _ := dev.CreateRenderPass(gpu.FormatB8G8R8A8SRGB)
	pipeline, _ := dev.CreatePipeline()

	target := Target{
		RenderPass: renderPass,
		Extent:     gpu.Extent2D{Width: 640, Height: 480},
		Pipeline:   pipeline,
	}
	for i := 0; i < count; i++ {
		fb, err := dev.CreateFramebuffer(gpu.FramebufferCreateInfo{RenderPass: renderPass})
		if err != nil {
			t.Fatal(err)
		}
		target.Framebuffers = append(target.Framebuffers, fb)
		target.DescriptorSets = append(target.DescriptorSets, fmt.Sprintf("set%d", i))
	}
	return target
}

var geometry = Geometry{
	VertexBuffers: []gpu.Buffer{namedBuffer("positions"), namedBuffer("uvs")},
	IndexBuffer:   namedBuffer("indices"),
	IndexType:     gpu.IndexTypeUInt32,
	IndexCount:    36,
}

func TestRecordSequence(t *testing.T) {
	dev := gputest.NewDevice()
	rec, err := NewRecorder(dev, DefaultClearColor)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Destroy()

	target := newTarget(t, dev, 3)
	if err := rec.Record(target, geometry); err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 command buffers; got %d", rec.Len())
	}

	for i := 0; i < rec.Len(); i++ {
		exp := []string{
			"begin",
			fmt.Sprintf("beginRenderPass renderpass0 framebuffer%d 640x480 clear [[0 0 0 1]]", i),
			"bindPipeline pipeline0",
			fmt.Sprintf("bindDescriptorSets pipeline0 [set%d]", i),
			"bindVertexBuffers 0 [positions uvs] [0 0]",
			"bindIndexBuffer indices 0 1",
			"drawIndexed 36 1 0 0 0",
			"endRenderPass",
			"end",
		}
		got := rec.Buffer(i).(*gputest.CommandBuffer).Commands
		if !reflect.DeepEqual(got, exp) {
			t.Fatalf("buffer %d: expected\n%v\ngot\n%v", i, exp, got)
		}
	}
}

func TestRecordWithoutDescriptors(t *testing.T) {
	dev := gputest.NewDevice()
	rec, err := NewRecorder(dev, gpu.ClearColor{0.1, 0.2, 0.3, 1})
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Destroy()

	target := newTarget(t, dev, 2)
	target.DescriptorSets = nil
	if err := rec.Record(target, geometry); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < rec.Len(); i++ {
		for _, command := range rec.Buffer(i).(*gputest.CommandBuffer).Commands {
			if strings.HasPrefix(command, "bindDescriptorSets") {
				t.Fatalf("buffer %d: unexpected %q", i, command)
			}
		}
	}
}

func TestRerecordRequiresFree(t *testing.T) {
	dev := gputest.NewDevice()
	rec, err := NewRecorder(dev, DefaultClearColor)
	if err != nil {
		t.Fatal(err)
	}

	target := newTarget(t, dev, 2)
	if err := rec.Record(target, geometry); err != nil {
		t.Fatal(err)
	}
	if err := rec.Record(target, geometry); err == nil {
		t.Fatal("expected recording over live command buffers to fail")
	}

	first := rec.Buffer(0)
	rec.Free()
	if err := rec.Record(target, geometry); err != nil {
		t.Fatal(err)
	}
	if rec.Buffer(0) == first {
		t.Fatal("expected freshly allocated command buffers")
	}

	rec.Destroy()
	for _, name := range dev.Live() {
		if strings.HasPrefix(name, "cmd") || name == "pool0" {
			t.Fatalf("expected %s to be released", name)
		}
	}
}

func TestRecordFailures(t *testing.T) {
	for _, method := range []string{"Allocate", "Begin", "BeginRenderPass", "End"} {
		dev := gputest.NewDevice()
		rec, err := NewRecorder(dev, DefaultClearColor)
		if err != nil {
			t.Fatal(err)
		}

		target := newTarget(t, dev, 2)
		dev.Fail[method] = errors.New("VK_ERROR_DEVICE_LOST")
		if err := rec.Record(target, geometry); !errors.Is(err, gpu.ErrFatalInit) {
			t.Fatalf("%s: expected fatal init error; got %v", method, err)
		}
		if rec.Len() != 0 {
			t.Fatalf("%s: expected partial recording to be freed", method)
		}
		rec.Destroy()
	}

	dev := gputest.NewDevice()
	dev.Fail["CreateCommandPool"] = errors.New("VK_ERROR_OUT_OF_HOST_MEMORY")
	if _, err := NewRecorder(dev, DefaultClearColor); !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected fatal init error; got %v", err)
	}
}
