package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

// Device is a logical device with its graphics and present queues.
type Device struct {
	instance *Instance
	adapter  *Adapter

	driver             core1_0.CoreDeviceDriver
	timelineDriver     core1_2.DeviceDriver
	swapchainExtension khr_swapchain.ExtensionDriver

	families gpu.QueueFamilyIndices
	features gpu.Features
	graphics *Queue
	present  *Queue

	memoryProperties *core1_0.PhysicalDeviceMemoryProperties
	// Transient pool for uploads, created on first use.
	uploadPool core1_0.CommandPool
}

func newDevice(instance *Instance, adapter *Adapter, info gpu.DeviceCreateInfo) (*Device, error) {
	if !info.QueueFamilies.IsComplete() {
		return nil, gpu.InitError(errors.New("queue families incomplete"), "create device")
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range info.QueueFamilies.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	extensionNames := []string{khr_swapchain.ExtensionName}
	extensionNames = append(extensionNames, info.Extensions...)

	// Required on portability implementations such as MoltenVK.
	if adapter.hasExtension(khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	createInfo := core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       featuresToCore(info.Features),
		EnabledExtensionNames: extensionNames,
	}
	if info.Features.Has(gpu.TimelineSemaphore) {
		createInfo.Next = core1_2.PhysicalDeviceTimelineSemaphoreFeatures{
			TimelineSemaphore: true,
		}
	}

	driver, _, err := instance.instanceDriver.CreateDevice(adapter.physicalDevice, nil, createInfo)
	if err != nil {
		return nil, gpu.InitErrorf(err, "create device on %s", adapter.properties.Name)
	}

	d := &Device{
		instance:           instance,
		adapter:            adapter,
		driver:             driver,
		swapchainExtension: khr_swapchain.CreateExtensionDriverFromCoreDriver(driver),
		families:           info.QueueFamilies,
		features:           info.Features,
		memoryProperties:   instance.instanceDriver.GetPhysicalDeviceMemoryProperties(adapter.physicalDevice),
	}

	if timelineDriver, ok := driver.(core1_2.DeviceDriver); ok {
		d.timelineDriver = timelineDriver
	} else if info.Features.Has(gpu.TimelineSemaphore) {
		driver.DestroyDevice(nil)
		return nil, gpu.InitError(errors.New("device driver does not expose Vulkan 1.2"), "create device")
	}

	d.graphics = newQueue(d, *info.QueueFamilies.GraphicsFamily)
	if info.QueueFamilies.Shared() {
		d.present = d.graphics
	} else {
		d.present = newQueue(d, *info.QueueFamilies.PresentFamily)
	}

	return d, nil
}

func (d *Device) QueueFamilies() gpu.QueueFamilyIndices {
	return d.families
}

func (d *Device) GraphicsQueue() gpu.Queue {
	return d.graphics
}

func (d *Device) PresentQueue() gpu.Queue {
	return d.present
}

// Adapter is the physical device this device was opened on.
func (d *Device) Adapter() *Adapter {
	return d.adapter
}

// SurfaceSupport queries the surface as the adapter sees it now. The
// "size follows the window" extent is reported as gpu.ExtentSentinel.
func (d *Device) SurfaceSupport() (gpu.SurfaceSupport, error) {
	var support gpu.SurfaceSupport
	surfaceExtension := d.instance.surfaceExtension
	surface := d.instance.surface
	physicalDevice := d.adapter.physicalDevice

	capabilities, _, err := surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(surface, physicalDevice)
	if err != nil {
		return support, err
	}

	formats, _, err := surfaceExtension.GetPhysicalDeviceSurfaceFormats(surface, physicalDevice)
	if err != nil {
		return support, err
	}

	presentModes, _, err := surfaceExtension.GetPhysicalDeviceSurfacePresentModes(surface, physicalDevice)
	if err != nil {
		return support, err
	}

	support.Capabilities = gpu.SurfaceCapabilities{
		MinImageCount:  capabilities.MinImageCount,
		MaxImageCount:  capabilities.MaxImageCount,
		CurrentExtent:  extent(capabilities.CurrentExtent),
		MinImageExtent: extent(capabilities.MinImageExtent),
		MaxImageExtent: extent(capabilities.MaxImageExtent),
	}

	for _, format := range formats {
		support.Formats = append(support.Formats, gpu.SurfaceFormat{
			Format:     gpu.Format(format.Format),
			ColorSpace: gpu.ColorSpace(format.ColorSpace),
		})
	}

	for _, mode := range presentModes {
		support.PresentModes = append(support.PresentModes, gpu.PresentMode(mode))
	}

	return support, nil
}

func extent(e core1_0.Extent2D) gpu.Extent2D {
	if uint32(e.Width) == math.MaxUint32 {
		return gpu.Extent2D{Width: gpu.ExtentSentinel, Height: gpu.ExtentSentinel}
	}
	return gpu.Extent2D{Width: e.Width, Height: e.Height}
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	var flags core1_0.FenceCreateFlags
	if signaled {
		flags = core1_0.FenceCreateSignaled
	}

	fence, _, err := d.driver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: flags,
	})
	if err != nil {
		return nil, err
	}

	return &Fence{device: d, handle: fence}, nil
}

func (d *Device) CreateSemaphore(info gpu.SemaphoreCreateInfo) (gpu.Semaphore, error) {
	createInfo := core1_0.SemaphoreCreateInfo{}
	if info.Type == gpu.SemaphoreTimeline {
		if d.timelineDriver == nil {
			return nil, errors.New("timeline semaphores require Vulkan 1.2")
		}
		createInfo.Next = core1_2.SemaphoreTypeCreateInfo{
			SemaphoreType: core1_2.SemaphoreTypeTimeline,
			InitialValue:  info.InitialValue,
		}
	}

	semaphore, _, err := d.driver.CreateSemaphore(nil, createInfo)
	if err != nil {
		return nil, err
	}

	return &Semaphore{device: d, handle: semaphore, semaphoreType: info.Type}, nil
}

func (d *Device) CreateCommandPool(family int) (gpu.CommandPool, error) {
	pool, _, err := d.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: family,
	})
	if err != nil {
		return nil, err
	}

	return &CommandPool{device: d, handle: pool}, nil
}

func (d *Device) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return err
}

// Destroy destroys the upload pool, the queues' present semaphores and the
// device.
func (d *Device) Destroy() {
	if d.driver == nil {
		return
	}

	if d.uploadPool.Initialized() {
		d.driver.DestroyCommandPool(d.uploadPool, nil)
		d.uploadPool = core1_0.CommandPool{}
	}

	d.graphics.destroy()
	if d.present != d.graphics {
		d.present.destroy()
	}

	d.driver.DestroyDevice(nil)
	d.driver = nil
}
