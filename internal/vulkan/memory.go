package vulkan

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Buffer is a buffer bound to its own allocation.
type Buffer struct {
	device *Device
	handle core1_0.Buffer
	memory core1_0.DeviceMemory
	size   int
}

func (d *Device) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	buffer, _, err := d.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}

	b := &Buffer{device: d, handle: buffer, size: size}

	memRequirements := d.driver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := d.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	b.memory, _, err = d.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		b.Destroy()
		return nil, err
	}

	_, err = d.driver.BindBufferMemory(buffer, b.memory, 0)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	return b, nil
}

// Write copies data into a host-visible buffer.
func (b *Buffer) Write(offset int, data any) error {
	if offset+binary.Size(data) > b.size {
		return errors.Newf("write of %d bytes at %d overflows %d byte buffer", binary.Size(data), offset, b.size)
	}
	return writeData(b.device.driver, b.memory, offset, data)
}

func (b *Buffer) Destroy() {
	if b.handle.Initialized() {
		b.device.driver.DestroyBuffer(b.handle, nil)
		b.handle = core1_0.Buffer{}
	}
	if b.memory.Initialized() {
		b.device.driver.FreeMemory(b.memory, nil)
		b.memory = core1_0.DeviceMemory{}
	}
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)

	memoryPtr, _, err := driver.MapMemory(memory, offset, bufferSize, 0)
	if err != nil {
		return err
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}

func (d *Device) findMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range d.memoryProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("no memory type matches filter %b with properties %s", typeFilter, properties)
}

// uploadBuffer copies data into a new device-local buffer through a staging
// buffer.
func (d *Device) uploadBuffer(data any, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := binary.Size(data)
	if bufferSize <= 0 {
		return nil, errors.Newf("cannot upload %T of size %d", data, bufferSize)
	}

	staging, err := d.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	err = staging.Write(0, data)
	if err != nil {
		return nil, err
	}

	buffer, err := d.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	err = d.submitOnce(func(cmd core1_0.CommandBuffer) error {
		return d.driver.CmdCopyBuffer(cmd, staging.handle, buffer.handle,
			core1_0.BufferCopy{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      bufferSize,
			},
		)
	})
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	return buffer, nil
}

// submitOnce records commands into a one-time buffer on the graphics queue
// and waits for the queue to drain.
func (d *Device) submitOnce(record func(cmd core1_0.CommandBuffer) error) error {
	if !d.uploadPool.Initialized() {
		pool, _, err := d.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
			Flags:            core1_0.CommandPoolCreateTransient,
			QueueFamilyIndex: d.graphics.family,
		})
		if err != nil {
			return err
		}
		d.uploadPool = pool
	}

	buffers, _, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.uploadPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return err
	}

	buffer := buffers[0]
	defer d.driver.FreeCommandBuffers(buffer)

	_, err = d.driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return err
	}

	err = record(buffer)
	if err != nil {
		return err
	}

	_, err = d.driver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = d.driver.QueueSubmit(d.graphics.handle, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return err
	}

	_, err = d.driver.QueueWaitIdle(d.graphics.handle)
	return err
}
