// Package vulkan implements the internal/gpu interfaces with vkngwrapper.
package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("vulkan")

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// SurfaceWindow is the window a surface is created for.
type SurfaceWindow interface {
	SDL() *sdl.Window
	InstanceExtensions() []string
}

type InstanceOptions struct {
	ApplicationName string
	Validation      bool
}

// Instance owns the Vulkan instance, the optional debug messenger and the
// presentation surface.
type Instance struct {
	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver

	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger

	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface
}

// NewInstance creates an instance with the extensions win needs and a surface
// for it. Validation requires the Khronos validation layer to be installed.
func NewInstance(win SurfaceWindow, opts InstanceOptions) (*Instance, error) {
	globalDriver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, gpu.InitError(err, "load vulkan")
	}

	inst := &Instance{globalDriver: globalDriver}

	err = inst.createInstance(win, opts)
	if err != nil {
		return nil, gpu.InitError(err, "create instance")
	}

	if opts.Validation {
		inst.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(inst.instanceDriver)
		inst.debugMessenger, _, err = inst.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions())
		if err != nil {
			inst.Destroy()
			return nil, gpu.InitError(err, "create debug messenger")
		}
	}

	inst.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(inst.instanceDriver)
	inst.surface, err = vkng_sdl2.CreateSurface(inst.instanceDriver.Instance(), inst.surfaceExtension, win.SDL())
	if err != nil {
		inst.Destroy()
		return nil, gpu.InitError(err, "create surface")
	}

	return inst, nil
}

func (i *Instance) createInstance(win SurfaceWindow, opts InstanceOptions) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "framecore",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := i.globalDriver.AvailableExtensions()
	if err != nil {
		return err
	}

	for _, ext := range win.InstanceExtensions() {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("missing window extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if opts.Validation {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if opts.Validation {
		layers, _, err := i.globalDriver.AvailableLayers()
		if err != nil {
			return err
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Newf("validation layer %s not available, install the LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Covers instance creation and destruction.
		instanceOptions.Next = debugMessengerOptions()
	}

	i.instanceDriver, _, err = i.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return err
	}

	logger.Infof("instance created with extensions %v", instanceOptions.EnabledExtensionNames)
	return nil
}

// Adapters lists every physical device, bound to this instance's surface.
func (i *Instance) Adapters() ([]gpu.Adapter, error) {
	physicalDevices, _, err := i.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, gpu.InitError(err, "enumerate physical devices")
	}

	adapters := make([]gpu.Adapter, 0, len(physicalDevices))
	for _, physicalDevice := range physicalDevices {
		adapter, err := newAdapter(i, physicalDevice)
		if err != nil {
			return nil, gpu.InitError(err, "query physical device")
		}
		adapters = append(adapters, adapter)
	}

	return adapters, nil
}

func (i *Instance) CreateDevice(adapter gpu.Adapter, info gpu.DeviceCreateInfo) (gpu.Device, error) {
	a, ok := adapter.(*Adapter)
	if !ok {
		return nil, errors.AssertionFailedf("adapter %T was not enumerated by this instance", adapter)
	}
	return newDevice(i, a, info)
}

// Destroy releases the surface, the debug messenger and the instance. Every
// device must be destroyed first.
func (i *Instance) Destroy() {
	if i.surface.Initialized() {
		i.surfaceExtension.DestroySurface(i.surface, nil)
		i.surface = khr_surface.Surface{}
	}

	if i.debugMessenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.debugMessenger, nil)
		i.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.instanceDriver != nil {
		i.instanceDriver.DestroyInstance(nil)
		i.instanceDriver = nil
	}
}
