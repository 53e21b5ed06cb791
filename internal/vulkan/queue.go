package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

// Queue submits to and presents from one device queue. Presentation only
// waits on binary semaphores, so a timeline wait is forwarded through a
// per-image binary semaphore signaled by an empty submission.
type Queue struct {
	device *Device
	handle core1_0.Queue
	family int

	presentSemaphores *imageSemaphores
}

func newQueue(device *Device, family int) *Queue {
	return &Queue{
		device: device,
		handle: device.driver.GetQueue(family, 0),
		family: family,
		presentSemaphores: newImageSemaphores(
			func() (core1_0.Semaphore, error) {
				semaphore, _, err := device.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
				return semaphore, err
			},
			func(semaphore core1_0.Semaphore) {
				device.driver.DestroySemaphore(semaphore, nil)
			},
		),
	}
}

func (q *Queue) Submit(info gpu.SubmitInfo) error {
	submit := core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{info.CommandBuffer.(*CommandBuffer).handle},
	}

	if info.WaitSemaphore != nil {
		submit.WaitSemaphores = []core1_0.Semaphore{info.WaitSemaphore.(*Semaphore).handle}
		submit.WaitDstStageMask = []core1_0.PipelineStageFlags{core1_0.PipelineStageFlags(info.WaitStage)}
	}

	if info.SignalSemaphore != nil {
		submit.SignalSemaphores = []core1_0.Semaphore{info.SignalSemaphore.(*Semaphore).handle}
		if info.SignalSemaphore.Type() == gpu.SemaphoreTimeline {
			submit.Next = core1_2.TimelineSemaphoreSubmitInfo{
				WaitSemaphoreValues:   make([]uint64, len(submit.WaitSemaphores)),
				SignalSemaphoreValues: []uint64{info.SignalValue},
			}
		}
	}

	var fence *core1_0.Fence
	if info.Fence != nil {
		fence = &info.Fence.(*Fence).handle
	}

	_, err := q.device.driver.QueueSubmit(q.handle, fence, submit)
	return err
}

func (q *Queue) Present(info gpu.PresentInfo) (gpu.Result, error) {
	var waitSemaphores []core1_0.Semaphore
	if info.WaitSemaphore != nil {
		wait := info.WaitSemaphore.(*Semaphore)
		if wait.Type() == gpu.SemaphoreTimeline {
			binary, err := q.forwardTimeline(wait, info.WaitValue, info.ImageIndex)
			if err != nil {
				return gpu.Failure, err
			}
			waitSemaphores = append(waitSemaphores, binary)
		} else {
			waitSemaphores = append(waitSemaphores, wait.handle)
		}
	}

	res, err := q.device.swapchainExtension.QueuePresent(q.handle, khr_swapchain.PresentInfo{
		WaitSemaphores: waitSemaphores,
		Swapchains:     []khr_swapchain.Swapchain{info.Swapchain.(*Swapchain).handle},
		ImageIndices:   []int{info.ImageIndex},
	})
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return gpu.OutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return gpu.Suboptimal, nil
	}
	if err != nil {
		return gpu.Failure, err
	}

	return gpu.Success, nil
}

// forwardTimeline returns the binary semaphore of image, signaled once
// timeline reaches value. An image's semaphore is waited by its previous
// present before the image can be acquired again, so it is free for reuse.
func (q *Queue) forwardTimeline(timeline *Semaphore, value uint64, image int) (core1_0.Semaphore, error) {
	binary, err := q.presentSemaphores.get(image)
	if err != nil {
		return core1_0.Semaphore{}, err
	}

	submit := core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{timeline.handle},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageAllCommands},
		SignalSemaphores: []core1_0.Semaphore{binary},
	}
	submit.Next = core1_2.TimelineSemaphoreSubmitInfo{
		WaitSemaphoreValues:   []uint64{value},
		SignalSemaphoreValues: []uint64{0},
	}

	_, err = q.device.driver.QueueSubmit(q.handle, nil, submit)
	if err != nil {
		return core1_0.Semaphore{}, err
	}
	return binary, nil
}

func (q *Queue) destroy() {
	q.presentSemaphores.release()
}

// imageSemaphores holds one binary semaphore per chain image index. The
// semaphores belong to a single chain: release them when that chain is
// destroyed, which only happens once the device is idle.
type imageSemaphores struct {
	create  func() (core1_0.Semaphore, error)
	destroy func(core1_0.Semaphore)
	byImage map[int]core1_0.Semaphore
}

func newImageSemaphores(create func() (core1_0.Semaphore, error), destroy func(core1_0.Semaphore)) *imageSemaphores {
	return &imageSemaphores{
		create:  create,
		destroy: destroy,
		byImage: make(map[int]core1_0.Semaphore),
	}
}

func (s *imageSemaphores) get(image int) (core1_0.Semaphore, error) {
	if semaphore, ok := s.byImage[image]; ok {
		return semaphore, nil
	}

	semaphore, err := s.create()
	if err != nil {
		return core1_0.Semaphore{}, err
	}
	s.byImage[image] = semaphore
	return semaphore, nil
}

func (s *imageSemaphores) release() {
	for image, semaphore := range s.byImage {
		s.destroy(semaphore)
		delete(s.byImage, image)
	}
}
