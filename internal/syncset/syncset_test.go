package syncset

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/gpu/gputest"
)

func TestNewSyncSet(t *testing.T) {
	dev := gputest.NewDevice()

	s, err := New(dev, 3, 41)
	if err != nil {
		t.Fatal(err)
	}

	if s.Slots() != 3 {
		t.Fatalf("expected 3 slots; got %d", s.Slots())
	}

	for slot := 0; slot < s.Slots(); slot++ {
		if err := s.Fence(slot).Wait(); err != nil {
			t.Fatalf("slot %d: expected pre-signaled fence; got %v", slot, err)
		}
	}

	if s.ImageAvailable().Type() != gpu.SemaphoreBinary {
		t.Fatal("expected a binary image available semaphore")
	}
	if s.RenderFinished().Type() != gpu.SemaphoreTimeline {
		t.Fatal("expected a timeline render finished semaphore")
	}
	if value, _ := s.RenderFinished().Value(); value != 41 {
		t.Fatalf("expected timeline to start at 41; got %d", value)
	}

	if err := s.WaitFor(41); err != nil {
		t.Fatalf("expected wait for the initial value to return; got %v", err)
	}

	s.Destroy()
	if live := dev.Live(); len(live) != 0 {
		t.Fatalf("expected no live objects; got %v", live)
	}
}

func TestWaitForSubmittedValue(t *testing.T) {
	dev := gputest.NewDevice()
	s, err := New(dev, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	var counter Counter
	fence := s.Fence(0)
	_ = fence.Wait()
	_ = fence.Reset()

	value := counter.Next()
	err = dev.GraphicsQueue().Submit(gpu.SubmitInfo{
		WaitSemaphore:   s.ImageAvailable(),
		SignalSemaphore: s.RenderFinished(),
		SignalValue:     value,
		Fence:           fence,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.WaitFor(counter.Last()); err != nil {
		t.Fatalf("expected wait for submitted value to return; got %v", err)
	}
	if err := s.WaitFor(counter.Last() + 1); err == nil {
		t.Fatal("expected wait for an unsubmitted value to block")
	}
}

func TestClaimImage(t *testing.T) {
	s, err := New(gputest.NewDevice(), 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	specs := []struct {
		image, slot int
		expSlot     int
	}{
		{0, 0, -1},
		{1, 1, -1},
		{0, 0, -1},
		// image 1 was last rendered by slot 1
		{1, 2, 1},
		{1, 2, -1},
		{2, 0, -1},
		{2, 1, 0},
	}

	for specIndex, spec := range specs {
		got := s.ClaimImage(spec.image, spec.slot)
		switch {
		case spec.expSlot < 0 && got != nil:
			t.Fatalf("[spec %d] expected no fence; got %v", specIndex, got)
		case spec.expSlot >= 0 && got != s.Fence(spec.expSlot):
			t.Fatalf("[spec %d] expected fence of slot %d; got %v", specIndex, spec.expSlot, got)
		}
	}

	if s.ClaimImage(7, 0) != nil {
		t.Fatal("expected out of range image to be ignored")
	}
}

func TestCreationFailures(t *testing.T) {
	for _, method := range []string{"CreateFence", "CreateSemaphore"} {
		dev := gputest.NewDevice()
		dev.Fail[method] = errors.New("VK_ERROR_OUT_OF_HOST_MEMORY")

		if _, err := New(dev, 2, 0); !errors.Is(err, gpu.ErrFatalInit) {
			t.Fatalf("%s: expected fatal init error; got %v", method, err)
		}
		if live := dev.Live(); len(live) != 0 {
			t.Fatalf("%s: expected partial set to be released; got %v", method, live)
		}
	}

	if _, err := New(gputest.NewDevice(), 0, 0); !errors.Is(err, gpu.ErrFatalInit) {
		t.Fatalf("expected zero slots to be rejected; got %v", err)
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	if c.Last() != 0 {
		t.Fatalf("expected zero counter; got %d", c.Last())
	}

	prev := uint64(0)
	for i := 0; i < 10; i++ {
		v := c.Next()
		if v <= prev {
			t.Fatalf("expected strictly increasing values; got %d after %d", v, prev)
		}
		prev = v
	}
	if c.Last() != 10 {
		t.Fatalf("expected last value 10; got %d", c.Last())
	}
}
