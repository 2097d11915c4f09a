package renderer

import (
	"errors"
	"fmt"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, width, height uint32) (*Renderer, *fakeWindow, *fakeDevice, *swapChainRecorder) {
	t.Helper()
	window := &fakeWindow{extent: vk.Extent2D{Width: width, Height: height}}
	device := &fakeDevice{}
	recorder := &swapChainRecorder{}
	r, err := NewRenderer(window, device, recorder.factory, false)
	require.NoError(t, err)
	return r, window, device, recorder
}

func runFrame(t *testing.T, r *Renderer, extra ...vulkan.CommandBuffer) bool {
	t.Helper()
	cb, err := r.BeginFrame()
	require.NoError(t, err)
	require.NotNil(t, cb)
	r.BeginSwapChainRenderPass(cb)
	r.EndSwapChainRenderPass(cb)
	resized, err := r.EndFrame(extra)
	require.NoError(t, err)
	return resized
}

func TestNewRendererAllocatesOneBufferPerFrame(t *testing.T) {
	r, _, device, recorder := newTestRenderer(t, 800, 600)

	assert.Len(t, device.allocated, int(vulkan.MaxFramesInFlight))
	require.Len(t, recorder.created, 1)
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, r.SwapChain().Extent())
	assert.Equal(t, uint64(1), r.SwapChainGeneration())
	assert.False(t, r.IsFrameInProgress())
	assert.InDelta(t, 800.0/600.0, r.AspectRatio(), 1e-6)
}

func TestResizeRebuildsSwapChainOnce(t *testing.T) {
	r, window, _, recorder := newTestRenderer(t, 800, 600)
	first := recorder.last()

	cb, err := r.BeginFrame()
	require.NoError(t, err)
	require.NotNil(t, cb)
	window.resize(400, 300)

	resized, err := r.EndFrame(nil)
	require.NoError(t, err)
	assert.True(t, resized)
	assert.False(t, window.resized)
	assert.True(t, first.destroyed)
	assert.Equal(t, vk.Extent2D{Width: 400, Height: 300}, r.SwapChain().Extent())
	assert.Equal(t, uint64(2), r.SwapChainGeneration())

	assert.False(t, runFrame(t, r))
	assert.Len(t, recorder.created, 2)
}

func TestMinimizedWindowBlocksUntilRestored(t *testing.T) {
	window := &fakeWindow{
		onWait: func(w *fakeWindow) {
			if w.waits == 3 {
				w.extent = vk.Extent2D{Width: 640, Height: 480}
			}
		},
	}
	recorder := &swapChainRecorder{}
	r, err := NewRenderer(window, &fakeDevice{}, recorder.factory, false)
	require.NoError(t, err)

	assert.Equal(t, 3, window.waits)
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, r.SwapChain().Extent())
}

func TestOutOfDateOnAcquireSkipsFrame(t *testing.T) {
	r, _, _, recorder := newTestRenderer(t, 800, 600)
	first := recorder.last()
	first.acquireErrs = []error{fmt.Errorf("acquire: %w", core.ErrSurfaceOutOfDate)}

	cb, err := r.BeginFrame()
	require.NoError(t, err)
	assert.Nil(t, cb)
	assert.False(t, r.IsFrameInProgress())
	assert.True(t, first.destroyed)
	assert.Equal(t, uint64(2), r.SwapChainGeneration())

	// the next tick records normally on the new swapchain
	assert.False(t, runFrame(t, r))
	assert.Len(t, recorder.last().submitted, 1)
}

func TestAcquireFailureIsReturned(t *testing.T) {
	r, _, _, recorder := newTestRenderer(t, 800, 600)
	lost := errors.New("device lost")
	recorder.last().acquireErrs = []error{lost}

	cb, err := r.BeginFrame()
	assert.Nil(t, cb)
	assert.ErrorIs(t, err, lost)
	assert.False(t, r.IsFrameInProgress())
}

func TestBeginFailureLeavesNoFrameStarted(t *testing.T) {
	r, _, device, _ := newTestRenderer(t, 800, 600)
	broken := errors.New("out of host memory")
	device.allocated[0].beginErr = broken

	cb, err := r.BeginFrame()
	assert.Nil(t, cb)
	assert.ErrorIs(t, err, broken)
	assert.False(t, r.IsFrameInProgress())

	// the next attempt must not trip the frame-in-progress check
	device.allocated[0].beginErr = nil
	assert.NotPanics(t, func() {
		runFrame(t, r)
	})
}

func TestSuboptimalPresentRebuilds(t *testing.T) {
	r, _, _, recorder := newTestRenderer(t, 800, 600)
	recorder.last().submitErrs = []error{core.ErrSurfaceSuboptimal}

	assert.True(t, runFrame(t, r))
	assert.Len(t, recorder.created, 2)
}

func TestPresentFailureEndsFrame(t *testing.T) {
	r, _, _, recorder := newTestRenderer(t, 800, 600)
	recorder.last().submitErrs = []error{errors.New("device lost")}

	_, err := r.BeginFrame()
	require.NoError(t, err)
	resized, err := r.EndFrame(nil)
	assert.Error(t, err)
	assert.False(t, resized)
	assert.False(t, r.IsFrameInProgress())
	assert.Len(t, recorder.created, 1)
}

func TestFrameSlotsAlternate(t *testing.T) {
	r, _, device, _ := newTestRenderer(t, 800, 600)

	var slots []uint32
	var buffers []vulkan.CommandBuffer
	for i := 0; i < 3; i++ {
		cb, err := r.BeginFrame()
		require.NoError(t, err)
		slots = append(slots, r.FrameIndex())
		buffers = append(buffers, cb)
		_, err = r.EndFrame(nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []uint32{0, 1, 0}, slots)
	assert.Same(t, device.allocated[0], buffers[0])
	assert.Same(t, device.allocated[1], buffers[1])
	assert.Same(t, buffers[0], buffers[2])
}

func TestExtraBuffersSubmittedAfterPrimary(t *testing.T) {
	r, _, device, recorder := newTestRenderer(t, 800, 600)
	overlay := &fakeCommandBuffer{}

	runFrame(t, r, overlay)

	submitted := recorder.last().submitted
	require.Len(t, submitted, 1)
	require.Len(t, submitted[0], 2)
	assert.Same(t, device.allocated[0], submitted[0][0])
	assert.Same(t, overlay, submitted[0][1])
}

func TestSwapChainRenderPassRecording(t *testing.T) {
	r, _, device, _ := newTestRenderer(t, 800, 600)
	runFrame(t, r)

	assert.Equal(t, []string{"begin", "begin-pass", "viewport", "scissor", "end-pass", "end"}, device.allocated[0].ops)
}

func TestOutOfOrderCallsPanic(t *testing.T) {
	r, _, device, _ := newTestRenderer(t, 800, 600)

	assert.Panics(t, func() { _, _ = r.EndFrame(nil) })
	assert.Panics(t, func() { r.FrameIndex() })
	assert.Panics(t, func() { r.BeginSwapChainRenderPass(device.allocated[0]) })

	_, err := r.BeginFrame()
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = r.BeginFrame() })
	assert.Panics(t, func() { r.BeginSwapChainRenderPass(device.allocated[1]) })
	assert.Panics(t, func() { r.EndSwapChainRenderPass(&fakeCommandBuffer{}) })
}

func TestMSAAToggleRebuildsAtEndOfFrame(t *testing.T) {
	r, _, _, recorder := newTestRenderer(t, 800, 600)

	r.SetMSAA(false)
	assert.False(t, runFrame(t, r))

	r.SetMSAA(true)
	assert.True(t, r.MSAAEnabled())
	assert.Len(t, recorder.created, 1)
	assert.True(t, runFrame(t, r))

	require.Len(t, recorder.created, 2)
	assert.True(t, recorder.last().msaa)
	assert.Equal(t, vk.SampleCount4Bit, r.SwapChain().SampleCount())
	assert.False(t, runFrame(t, r))
}

func TestFormatChangeIsFatal(t *testing.T) {
	r, window, _, recorder := newTestRenderer(t, 800, 600)
	recorder.nextFormat = vk.FormatR8g8b8a8Unorm

	_, err := r.BeginFrame()
	require.NoError(t, err)
	window.resize(1024, 768)
	_, err = r.EndFrame(nil)
	assert.ErrorIs(t, err, core.ErrSwapchainFormatChanged)
}

func TestDestroyReleasesEverything(t *testing.T) {
	r, _, device, recorder := newTestRenderer(t, 800, 600)
	r.Destroy()

	assert.Equal(t, int(vulkan.MaxFramesInFlight), device.freed)
	assert.True(t, recorder.last().destroyed)
	assert.Nil(t, r.SwapChain())
}
