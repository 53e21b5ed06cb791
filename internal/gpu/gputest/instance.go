package gputest

import (
	"github.com/vkngwrapper/framecore/internal/gpu"
)

type Adapter struct {
	Props    gpu.AdapterProperties
	Feats    gpu.Features
	Families []gpu.QueueFamilyProperties
	// Families that can present to the surface.
	Present    map[int]bool
	PresentErr error

	// PresentQueries counts SupportsPresent calls.
	PresentQueries int
}

func (a *Adapter) Properties() gpu.AdapterProperties          { return a.Props }
func (a *Adapter) Features() gpu.Features                     { return a.Feats }
func (a *Adapter) QueueFamilies() []gpu.QueueFamilyProperties { return a.Families }

func (a *Adapter) SupportsPresent(family int) (bool, error) {
	a.PresentQueries++
	if a.PresentErr != nil {
		return false, a.PresentErr
	}
	return a.Present[family], nil
}

type Instance struct {
	List       []gpu.Adapter
	ListErr    error
	CreateErr  error
	Device     *Device
	CreateInfo *gpu.DeviceCreateInfo
	CreatedOn  gpu.Adapter
}

func (i *Instance) Adapters() ([]gpu.Adapter, error) {
	return i.List, i.ListErr
}

func (i *Instance) CreateDevice(adapter gpu.Adapter, info gpu.DeviceCreateInfo) (gpu.Device, error) {
	if i.CreateErr != nil {
		return nil, i.CreateErr
	}
	i.CreateInfo = &info
	i.CreatedOn = adapter
	if i.Device == nil {
		i.Device = NewDevice()
	}
	i.Device.Families = info.QueueFamilies
	return i.Device, nil
}
