package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGPU completes submissions only when a fence is waited on, which lets
// the test observe exactly which submissions the host waited for.
type fakeGPU struct {
	completed map[int]bool
}

type fakeFence struct {
	gpu        *fakeGPU
	signaled   bool
	submission int
	waits      int
	resets     int
}

func (f *fakeFence) Wait(timeoutNs uint64) error {
	f.waits++
	if !f.signaled {
		f.gpu.completed[f.submission] = true
		f.signaled = true
	}
	return nil
}

func (f *fakeFence) Reset() error {
	f.resets++
	f.signaled = false
	return nil
}

func newFakeFences(gpu *fakeGPU, n int) ([]Fence, []*fakeFence) {
	fences := make([]Fence, n)
	fakes := make([]*fakeFence, n)
	for i := 0; i < n; i++ {
		fakes[i] = &fakeFence{gpu: gpu, signaled: true, submission: -1}
		fences[i] = fakes[i]
	}
	return fences, fakes
}

func TestFrameSyncSlotNeverReusedBeforeFenceSignals(t *testing.T) {
	gpu := &fakeGPU{completed: map[int]bool{}}
	fences, fakes := newFakeFences(gpu, int(MaxFramesInFlight))
	fs := NewFrameSync(fences, 3)

	const frames = 12
	for i := 0; i < frames; i++ {
		slot := uint32(i) % MaxFramesInFlight
		require.NoError(t, fs.WaitForSlot(slot))

		// submission i-K used this slot and must be complete now
		if prev := i - int(MaxFramesInFlight); prev >= 0 {
			assert.True(t, gpu.completed[prev], "submission %d not complete before frame %d", prev, i)
		}

		image := uint32(i) % 3
		require.NoError(t, fs.ClaimImage(slot, image))
		fakes[slot].submission = i
	}
}

func TestFrameSyncWaitsOnOtherSlotOwningImage(t *testing.T) {
	gpu := &fakeGPU{completed: map[int]bool{}}
	fences, fakes := newFakeFences(gpu, 2)
	fs := NewFrameSync(fences, 2)

	require.NoError(t, fs.ClaimImage(0, 1))
	fakes[0].submission = 0
	waitsBefore := fakes[0].waits

	// slot 1 acquires the image still owned by slot 0
	require.NoError(t, fs.ClaimImage(1, 1))
	assert.Equal(t, waitsBefore+1, fakes[0].waits)
	assert.True(t, gpu.completed[0])
	assert.Equal(t, 1, fakes[1].resets)
}

func TestFrameSyncDoesNotWaitOnOwnFence(t *testing.T) {
	gpu := &fakeGPU{completed: map[int]bool{}}
	fences, fakes := newFakeFences(gpu, 2)
	fs := NewFrameSync(fences, 2)

	require.NoError(t, fs.ClaimImage(0, 0))
	require.NoError(t, fs.ClaimImage(0, 0))
	assert.Equal(t, 0, fakes[0].waits)
	assert.Equal(t, 2, fakes[0].resets)
}

func TestFrameSyncRangeChecks(t *testing.T) {
	gpu := &fakeGPU{completed: map[int]bool{}}
	fences, _ := newFakeFences(gpu, 2)
	fs := NewFrameSync(fences, 2)

	assert.Error(t, fs.WaitForSlot(2))
	assert.Error(t, fs.ClaimImage(0, 5))
}
