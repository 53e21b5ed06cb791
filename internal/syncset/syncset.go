// Package syncset owns the synchronization objects of the frame loop: one
// fence per frame slot, a binary semaphore ordering acquisition before
// rendering, and a timeline semaphore ordering rendering before presentation.
//
// The two semaphores are shared by every slot. Sharing the timeline semaphore
// is sound because each submission signals a unique, strictly larger value.
package syncset

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("syncset")

type SyncSet struct {
	fences         []gpu.Fence
	imagesInFlight []int
	imageAvailable gpu.Semaphore
	renderFinished gpu.Semaphore
}

// New creates slots pre-signaled fences so the first wait on each slot
// returns immediately. The timeline semaphore starts at timelineValue, which
// must be the last value signaled on any previous timeline so later signals
// keep increasing.
func New(dev gpu.Device, slots int, timelineValue uint64) (*SyncSet, error) {
	if slots <= 0 {
		return nil, errors.Mark(errors.Newf("invalid slot count %d", slots), gpu.ErrFatalInit)
	}

	s := &SyncSet{}

	for i := 0; i < slots; i++ {
		fence, err := dev.CreateFence(true)
		if err != nil {
			s.Destroy()
			return nil, gpu.InitErrorf(err, "create fence for slot %d", i)
		}

		s.fences = append(s.fences, fence)
		s.imagesInFlight = append(s.imagesInFlight, -1)
	}

	var err error
	s.imageAvailable, err = dev.CreateSemaphore(gpu.SemaphoreCreateInfo{Type: gpu.SemaphoreBinary})
	if err != nil {
		s.Destroy()
		return nil, gpu.InitError(err, "create image available semaphore")
	}

	s.renderFinished, err = dev.CreateSemaphore(gpu.SemaphoreCreateInfo{
		Type:         gpu.SemaphoreTimeline,
		InitialValue: timelineValue,
	})
	if err != nil {
		s.Destroy()
		return nil, gpu.InitError(err, "create render finished semaphore")
	}

	logger.Debugf("sync set created: %d slots, timeline at %d", slots, timelineValue)
	return s, nil
}

func (s *SyncSet) Slots() int {
	return len(s.fences)
}

func (s *SyncSet) Fence(slot int) gpu.Fence {
	return s.fences[slot]
}

func (s *SyncSet) ImageAvailable() gpu.Semaphore {
	return s.imageAvailable
}

func (s *SyncSet) RenderFinished() gpu.Semaphore {
	return s.renderFinished
}

// ClaimImage records that slot is about to render into image. It returns the
// fence of a different slot that last rendered into image, which must be
// waited on before the image's command buffer and descriptors are reused, or
// nil when there is no such slot.
func (s *SyncSet) ClaimImage(image, slot int) gpu.Fence {
	if image < 0 || image >= len(s.imagesInFlight) {
		return nil
	}

	previous := s.imagesInFlight[image]
	s.imagesInFlight[image] = slot

	if previous < 0 || previous == slot {
		return nil
	}
	return s.fences[previous]
}

// WaitFor blocks until the timeline semaphore reaches value.
func (s *SyncSet) WaitFor(value uint64) error {
	if s.renderFinished == nil {
		return nil
	}
	return s.renderFinished.Wait(value)
}

// Destroy releases every object created so far; it is safe on a partially
// built set.
func (s *SyncSet) Destroy() {
	for _, fence := range s.fences {
		fence.Destroy()
	}
	s.fences = nil
	s.imagesInFlight = nil

	if s.imageAvailable != nil {
		s.imageAvailable.Destroy()
		s.imageAvailable = nil
	}

	if s.renderFinished != nil {
		s.renderFinished.Destroy()
		s.renderFinished = nil
	}
}
