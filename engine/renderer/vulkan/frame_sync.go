package vulkan

import "fmt"

// FrameSync tracks which frame slot last submitted work rendering into each
// swapchain image, so a slot never records into an image the GPU still reads.
type FrameSync struct {
	inFlight       []Fence
	imagesInFlight []Fence
}

func NewFrameSync(inFlight []Fence, imageCount uint32) *FrameSync {
	return &FrameSync{
		inFlight:       inFlight,
		imagesInFlight: make([]Fence, imageCount),
	}
}

func (fs *FrameSync) SlotCount() uint32 {
	return uint32(len(fs.inFlight))
}

func (fs *FrameSync) Fence(frame uint32) Fence {
	return fs.inFlight[frame]
}

// WaitForSlot blocks until the previous submission made from this slot completed.
func (fs *FrameSync) WaitForSlot(frame uint32) error {
	if frame >= uint32(len(fs.inFlight)) {
		return fmt.Errorf("frame slot %d out of range (%d slots)", frame, len(fs.inFlight))
	}
	return fs.inFlight[frame].Wait(InfiniteTimeout)
}

// ClaimImage waits for the slot that last used the image when it differs from
// frame, records frame as the new owner and resets its fence for submission.
func (fs *FrameSync) ClaimImage(frame, image uint32) error {
	if image >= uint32(len(fs.imagesInFlight)) {
		return fmt.Errorf("swapchain image %d out of range (%d images)", image, len(fs.imagesInFlight))
	}
	fence := fs.inFlight[frame]
	if owner := fs.imagesInFlight[image]; owner != nil && owner != fence {
		if err := owner.Wait(InfiniteTimeout); err != nil {
			return err
		}
	}
	fs.imagesInFlight[image] = fence
	return fence.Reset()
}

// Forget drops image ownership, used after the device went idle.
func (fs *FrameSync) Forget() {
	for i := range fs.imagesInFlight {
		fs.imagesInFlight[i] = nil
	}
}
