package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

type Fence struct {
	device *Device
	handle core1_0.Fence
}

func (f *Fence) Wait() error {
	_, err := f.device.driver.WaitForFences(true, common.NoTimeout, f.handle)
	return err
}

func (f *Fence) Reset() error {
	_, err := f.device.driver.ResetFences(f.handle)
	return err
}

func (f *Fence) Destroy() {
	if f.handle.Initialized() {
		f.device.driver.DestroyFence(f.handle, nil)
		f.handle = core1_0.Fence{}
	}
}

var errBinarySemaphore = errors.New("binary semaphores have no counter")

type Semaphore struct {
	device        *Device
	handle        core1_0.Semaphore
	semaphoreType gpu.SemaphoreType
}

func (s *Semaphore) Type() gpu.SemaphoreType {
	return s.semaphoreType
}

// Wait blocks until the counter reaches value.
func (s *Semaphore) Wait(value uint64) error {
	if s.semaphoreType != gpu.SemaphoreTimeline {
		return errBinarySemaphore
	}

	_, err := s.device.timelineDriver.WaitSemaphores(common.NoTimeout, core1_2.SemaphoreWaitInfo{
		Semaphores: []core1_0.Semaphore{s.handle},
		Values:     []uint64{value},
	})
	return err
}

func (s *Semaphore) Value() (uint64, error) {
	if s.semaphoreType != gpu.SemaphoreTimeline {
		return 0, errBinarySemaphore
	}

	value, _, err := s.device.timelineDriver.GetSemaphoreCounterValue(s.handle)
	return value, err
}

func (s *Semaphore) Destroy() {
	if s.handle.Initialized() {
		s.device.driver.DestroySemaphore(s.handle, nil)
		s.handle = core1_0.Semaphore{}
	}
}
