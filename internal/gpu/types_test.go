package gpu

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestQueueFamilyIndices(t *testing.T) {
	zero, one := 0, 1

	var indices QueueFamilyIndices
	if indices.IsComplete() || indices.Unique() != nil {
		t.Fatal("expected empty indices to be incomplete")
	}

	indices = QueueFamilyIndices{GraphicsFamily: &zero, PresentFamily: &zero}
	if !indices.Shared() {
		t.Fatal("expected identical families to be shared")
	}
	if got := indices.Unique(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected [0]; got %v", got)
	}

	indices = QueueFamilyIndices{GraphicsFamily: &one, PresentFamily: &zero}
	if indices.Shared() {
		t.Fatal("expected distinct families not to be shared")
	}
	if got := indices.Unique(); len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Fatalf("expected [1 0]; got %v", got)
	}
}

func TestExtentSentinel(t *testing.T) {
	if !(Extent2D{Width: ExtentSentinel, Height: ExtentSentinel}).IsSentinel() {
		t.Fatal("expected sentinel extent to be detected")
	}
	if (Extent2D{Width: 800, Height: 600}).IsSentinel() {
		t.Fatal("expected fixed extent not to be a sentinel")
	}
}

func TestErrorClasses(t *testing.T) {
	cause := errors.New("driver said no")

	initErr := InitError(cause, "create swapchain")
	if !errors.Is(initErr, ErrFatalInit) || errors.Is(initErr, ErrFatalRuntime) {
		t.Fatalf("expected init class only; got %v", initErr)
	}
	if !errors.Is(initErr, cause) {
		t.Fatal("expected cause to be preserved")
	}

	runErr := RuntimeError(cause, "present")
	if !errors.Is(runErr, ErrFatalRuntime) || errors.Is(runErr, ErrFatalInit) {
		t.Fatalf("expected runtime class only; got %v", runErr)
	}

	if InitError(nil, "noop") != nil || RuntimeError(nil, "noop") != nil {
		t.Fatal("expected nil errors to stay nil")
	}
}
