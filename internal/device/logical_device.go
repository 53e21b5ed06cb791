package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
)

// Options control device selection and creation.
type Options struct {
	// Features an adapter must expose to be considered.
	Required gpu.Features
	// Additional features enabled on the logical device when the adapter has
	// them. Typically the extended flags the renderer relies on (timeline
	// semaphores).
	Extra gpu.Features
	// Device extensions requested at creation.
	Extensions []string
}

// Open selects an adapter, discovers its queue families and creates the
// logical device. Any failure is a fatal initialization error.
func Open(instance gpu.Instance, opts Options) (gpu.Device, gpu.Adapter, error) {
	adapters, err := instance.Adapters()
	if err != nil {
		return nil, nil, gpu.InitError(err, "enumerate adapters")
	}

	adapter, err := SelectAdapter(adapters, opts.Required)
	if err != nil {
		return nil, nil, err
	}

	indices, err := FindQueueFamilies(adapter)
	if err != nil {
		return nil, nil, gpu.InitError(err, "find queue families")
	}
	if !indices.IsComplete() {
		return nil, nil, errors.Mark(
			errors.Wrapf(ErrQueueFamiliesIncomplete, "adapter %q", adapter.Properties().Name),
			gpu.ErrFatalInit)
	}

	available := adapter.Features()
	enabled := opts.Required.Or(opts.Extra.And(available))

	dev, err := instance.CreateDevice(adapter, gpu.DeviceCreateInfo{
		QueueFamilies: indices,
		Features:      enabled,
		Extensions:    opts.Extensions,
	})
	if err != nil {
		return nil, nil, gpu.InitError(err, "create logical device")
	}

	logger.Infof("logical device created: graphics family %d, present family %d, features %s",
		*indices.GraphicsFamily, *indices.PresentFamily, enabled)
	return dev, adapter, nil
}
