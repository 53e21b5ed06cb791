package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/framecore/internal/gpu"
)

type CommandPool struct {
	device *Device
	handle core1_0.CommandPool
}

func (p *CommandPool) Allocate(count int) ([]gpu.CommandBuffer, error) {
	buffers, _, err := p.device.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p.handle,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, err
	}

	result := make([]gpu.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		result = append(result, &CommandBuffer{device: p.device, handle: buffer})
	}
	return result, nil
}

func (p *CommandPool) Free(buffers []gpu.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	handles := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		handles = append(handles, buffer.(*CommandBuffer).handle)
	}
	p.device.driver.FreeCommandBuffers(handles...)
}

func (p *CommandPool) Destroy() {
	if p.handle.Initialized() {
		p.device.driver.DestroyCommandPool(p.handle, nil)
		p.handle = core1_0.CommandPool{}
	}
}

type CommandBuffer struct {
	device *Device
	handle core1_0.CommandBuffer
}

func (b *CommandBuffer) Begin() error {
	_, err := b.device.driver.BeginCommandBuffer(b.handle, core1_0.CommandBufferBeginInfo{})
	return err
}

func (b *CommandBuffer) BeginRenderPass(info gpu.RenderPassBeginInfo) error {
	var clearValues []core1_0.ClearValue
	for _, color := range info.ClearColors {
		clearValues = append(clearValues, core1_0.ClearValueFloat{color[0], color[1], color[2], color[3]})
	}

	return b.device.driver.CmdBeginRenderPass(b.handle, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  info.RenderPass.(*RenderPass).handle,
			Framebuffer: info.Framebuffer.(*Framebuffer).handle,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: core1_0.Extent2D{Width: info.RenderArea.Width, Height: info.RenderArea.Height},
			},
			ClearValues: clearValues,
		})
}

func (b *CommandBuffer) BindPipeline(pipeline gpu.Pipeline) {
	b.device.driver.CmdBindPipeline(b.handle, core1_0.PipelineBindPointGraphics, pipeline.(*Pipeline).handle)
}

func (b *CommandBuffer) BindDescriptorSets(pipeline gpu.Pipeline, sets []gpu.DescriptorSet) {
	handles := make([]core1_0.DescriptorSet, 0, len(sets))
	for _, set := range sets {
		handles = append(handles, set.(core1_0.DescriptorSet))
	}
	b.device.driver.CmdBindDescriptorSets(b.handle, core1_0.PipelineBindPointGraphics, pipeline.(*Pipeline).layout, 0, handles, nil)
}

func (b *CommandBuffer) BindVertexBuffers(firstBinding int, buffers []gpu.Buffer, offsets []int) {
	handles := make([]core1_0.Buffer, 0, len(buffers))
	for _, buffer := range buffers {
		handles = append(handles, buffer.(*Buffer).handle)
	}
	b.device.driver.CmdBindVertexBuffers(b.handle, firstBinding, handles, offsets)
}

func (b *CommandBuffer) BindIndexBuffer(buffer gpu.Buffer, offset int, indexType gpu.IndexType) {
	vkIndexType := core1_0.IndexTypeUInt32
	if indexType == gpu.IndexTypeUInt16 {
		vkIndexType = core1_0.IndexTypeUInt16
	}
	b.device.driver.CmdBindIndexBuffer(b.handle, buffer.(*Buffer).handle, offset, vkIndexType)
}

func (b *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	b.device.driver.CmdDrawIndexed(b.handle, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (b *CommandBuffer) EndRenderPass() {
	b.device.driver.CmdEndRenderPass(b.handle)
}

func (b *CommandBuffer) End() error {
	_, err := b.device.driver.EndCommandBuffer(b.handle)
	return err
}
