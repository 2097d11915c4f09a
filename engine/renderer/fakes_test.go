package renderer

import (
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

type fakeWindow struct {
	extent  vk.Extent2D
	resized bool
	waits   int
	// called from WaitEvents, lets a test restore the window
	onWait func(w *fakeWindow)
}

func (w *fakeWindow) Extent() vk.Extent2D { return w.extent }
func (w *fakeWindow) WasResized() bool    { return w.resized }
func (w *fakeWindow) ResetResizedFlag()   { w.resized = false }
func (w *fakeWindow) WaitEvents() {
	w.waits++
	if w.onWait != nil {
		w.onWait(w)
	}
}

// resize mimics the framebuffer size callback.
func (w *fakeWindow) resize(width, height uint32) {
	w.extent = vk.Extent2D{Width: width, Height: height}
	w.resized = true
}

type fakeDevice struct {
	idleCalls int
	allocated []*fakeCommandBuffer
	freed     int
}

func (d *fakeDevice) WaitIdle() error {
	d.idleCalls++
	return nil
}

func (d *fakeDevice) AllocateCommandBuffers(count uint32) ([]vulkan.CommandBuffer, error) {
	buffers := make([]vulkan.CommandBuffer, 0, count)
	for i := uint32(0); i < count; i++ {
		cb := &fakeCommandBuffer{}
		d.allocated = append(d.allocated, cb)
		buffers = append(buffers, cb)
	}
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers []vulkan.CommandBuffer) {
	d.freed += len(buffers)
}

// fakeCommandBuffer records the commands it is given.
type fakeCommandBuffer struct {
	recording bool
	ops       []string
	beginErr  error
}

func (c *fakeCommandBuffer) log(op string) { c.ops = append(c.ops, op) }

func (c *fakeCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	if c.beginErr != nil {
		return c.beginErr
	}
	c.recording = true
	c.log("begin")
	return nil
}

func (c *fakeCommandBuffer) End() error {
	c.recording = false
	c.log("end")
	return nil
}

func (c *fakeCommandBuffer) Reset() error {
	c.ops = nil
	return nil
}

func (c *fakeCommandBuffer) NativeHandle() vk.CommandBuffer { return nil }

func (c *fakeCommandBuffer) BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue) {
	c.log("begin-pass")
}
func (c *fakeCommandBuffer) EndRenderPass()                 { c.log("end-pass") }
func (c *fakeCommandBuffer) SetViewport(extent vk.Extent2D) { c.log("viewport") }
func (c *fakeCommandBuffer) SetScissor(extent vk.Extent2D)  { c.log("scissor") }

func (c *fakeCommandBuffer) BindPipeline(pipeline *vulkan.VulkanPipeline) {
	c.log("pipeline:" + pipeline.Name)
}

func (c *fakeCommandBuffer) BindDescriptorSet(layout vk.PipelineLayout, set vk.DescriptorSet, dynamicOffsets ...uint32) {
	c.log("set")
}

func (c *fakeCommandBuffer) PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte) {
	c.log("push")
}

func (c *fakeCommandBuffer) BindVertexBuffer(buffer vk.Buffer, offset vk.DeviceSize) {}
func (c *fakeCommandBuffer) BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize)  {}
func (c *fakeCommandBuffer) Draw(vertexCount, firstVertex uint32)                    { c.log("draw") }
func (c *fakeCommandBuffer) DrawIndexed(indexCount uint32)                           { c.log("draw") }

// draws keeps only the pipeline binds and draws.
func (c *fakeCommandBuffer) draws() []string {
	var out []string
	for _, op := range c.ops {
		if strings.HasPrefix(op, "draw:") || strings.HasPrefix(op, "pipeline:") {
			out = append(out, op)
		}
	}
	return out
}

type fakeDrawable struct {
	name      string
	destroyed bool
}

func (d *fakeDrawable) Bind(cb vulkan.CommandBuffer) {}

func (d *fakeDrawable) Draw(cb vulkan.CommandBuffer) {
	if rec, ok := cb.(*fakeCommandBuffer); ok {
		rec.log("draw:" + d.name)
	}
}

func (d *fakeDrawable) Destroy() { d.destroyed = true }

type fakeSwapChain struct {
	extent      vk.Extent2D
	imageFormat vk.Format
	depthFormat vk.Format
	samples     vk.SampleCountFlagBits
	msaa        bool

	// consumed one per call, nil once empty
	acquireErrs []error
	submitErrs  []error

	submitted [][]vulkan.CommandBuffer
	destroyed bool
}

func (s *fakeSwapChain) ImageFormat() vk.Format { return s.imageFormat }
func (s *fakeSwapChain) DepthFormat() vk.Format { return s.depthFormat }

func (s *fakeSwapChain) AcquireNextImage(frame uint32) (uint32, error) {
	if len(s.acquireErrs) > 0 {
		err := s.acquireErrs[0]
		s.acquireErrs = s.acquireErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	return frame, nil
}

func (s *fakeSwapChain) SubmitCommandBuffers(frame, imageIndex uint32, buffers []vulkan.CommandBuffer) error {
	s.submitted = append(s.submitted, buffers)
	if len(s.submitErrs) > 0 {
		err := s.submitErrs[0]
		s.submitErrs = s.submitErrs[1:]
		return err
	}
	return nil
}

func (s *fakeSwapChain) Extent() vk.Extent2D                     { return s.extent }
func (s *fakeSwapChain) ImageCount() uint32                      { return 3 }
func (s *fakeSwapChain) SampleCount() vk.SampleCountFlagBits     { return s.samples }
func (s *fakeSwapChain) Framebuffer(index uint32) vk.Framebuffer { return vk.NullFramebuffer }
func (s *fakeSwapChain) ImageViews() []vk.ImageView              { return make([]vk.ImageView, 3) }
func (s *fakeSwapChain) Destroy()                                { s.destroyed = true }

func (s *fakeSwapChain) RenderPass() *vulkan.VulkanRenderPass {
	return &vulkan.VulkanRenderPass{Samples: s.samples, ColorFormat: s.imageFormat}
}

func (s *fakeSwapChain) AspectRatio() float32 {
	return float32(s.extent.Width) / float32(s.extent.Height)
}

// swapChainRecorder is a SwapChainFactory that keeps every chain it built.
type swapChainRecorder struct {
	created []*fakeSwapChain
	// format handed to the next chain, zero keeps the default
	nextFormat vk.Format
}

func (r *swapChainRecorder) factory(extent vk.Extent2D, useMSAA bool, previous SwapChain) (SwapChain, error) {
	sc := &fakeSwapChain{
		extent:      extent,
		imageFormat: vk.FormatB8g8r8a8Srgb,
		depthFormat: vk.FormatD32Sfloat,
		samples:     vk.SampleCount1Bit,
		msaa:        useMSAA,
	}
	if useMSAA {
		sc.samples = vk.SampleCount4Bit
	}
	if r.nextFormat != 0 {
		sc.imageFormat = r.nextFormat
	}
	r.created = append(r.created, sc)
	return sc, nil
}

func (r *swapChainRecorder) last() *fakeSwapChain {
	return r.created[len(r.created)-1]
}

type fakeAllocator struct {
	capacity  vulkan.DescriptorCapacity
	destroyed bool
}

func (a *fakeAllocator) Allocate() (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	if err := a.capacity.Reserve(); err != nil {
		return set, err
	}
	return set, nil
}

func (a *fakeAllocator) Capacity() vulkan.DescriptorCapacity { return a.capacity }
func (a *fakeAllocator) Destroy()                            { a.destroyed = true }

type fakeUniform struct {
	writes    map[uint32]int
	destroyed bool
}

func (u *fakeUniform) WriteAt(frame uint32, data []byte) error {
	u.writes[frame]++
	return nil
}

func (u *fakeUniform) DynamicOffset(frame uint32) uint32 { return frame * 256 }

func (u *fakeUniform) DescriptorInfo() vk.DescriptorBufferInfo { return vk.DescriptorBufferInfo{} }

func (u *fakeUniform) Destroy() { u.destroyed = true }

// fakeFactory counts the GPU objects the render system holds.
type fakeFactory struct {
	livePipelines  int
	pipelineBuilds int
	lastConfigs    []*vulkan.PipelineConfig

	allocators []*fakeAllocator
	uniforms   []*fakeUniform
	setWrites  int

	setLayouts      int
	pipelineLayouts int
}

func (f *fakeFactory) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	f.setLayouts++
	return vk.NullDescriptorSetLayout, nil
}

func (f *fakeFactory) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {}

func (f *fakeFactory) CreatePipelineLayout(setLayouts []vk.DescriptorSetLayout, pushConstantSize uint32) (vk.PipelineLayout, error) {
	f.pipelineLayouts++
	return vk.NullPipelineLayout, nil
}

func (f *fakeFactory) DestroyPipelineLayout(layout vk.PipelineLayout) {}

func (f *fakeFactory) CreateGraphicsPipelines(renderPass *vulkan.VulkanRenderPass, layout vk.PipelineLayout, configs []*vulkan.PipelineConfig) ([]*vulkan.VulkanPipeline, error) {
	f.pipelineBuilds++
	f.lastConfigs = configs
	pipelines := make([]*vulkan.VulkanPipeline, 0, len(configs))
	for _, c := range configs {
		pipelines = append(pipelines, &vulkan.VulkanPipeline{Name: c.Name, Kind: c.Kind, PipelineLayout: layout})
	}
	f.livePipelines += len(pipelines)
	return pipelines, nil
}

func (f *fakeFactory) DestroyPipeline(pipeline *vulkan.VulkanPipeline) {
	f.livePipelines--
}

func (f *fakeFactory) NewDescriptorAllocator(layout vk.DescriptorSetLayout, bindings []vk.DescriptorSetLayoutBinding, maxSets uint32) (vulkan.DescriptorAllocator, error) {
	a := &fakeAllocator{capacity: vulkan.DescriptorCapacity{MaxSets: maxSets}}
	f.allocators = append(f.allocators, a)
	return a, nil
}

func (f *fakeFactory) NewUniformBuffer(dataSize, regions uint32) (vulkan.UniformBuffer, error) {
	u := &fakeUniform{writes: make(map[uint32]int)}
	f.uniforms = append(f.uniforms, u)
	return u, nil
}

func (f *fakeFactory) WriteSceneDescriptorSet(set vk.DescriptorSet, ubo vulkan.UniformBuffer, texture *vulkan.VulkanTexture) {
	f.setWrites++
}

func (f *fakeFactory) lastAllocator() *fakeAllocator {
	return f.allocators[len(f.allocators)-1]
}

var (
	_ Window                     = (*fakeWindow)(nil)
	_ Device                     = (*fakeDevice)(nil)
	_ SwapChain                  = (*fakeSwapChain)(nil)
	_ vulkan.CommandBuffer       = (*fakeCommandBuffer)(nil)
	_ vulkan.DescriptorAllocator = (*fakeAllocator)(nil)
	_ vulkan.UniformBuffer       = (*fakeUniform)(nil)
	_ ResourceFactory            = (*fakeFactory)(nil)
)
