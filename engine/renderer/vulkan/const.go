package vulkan

import "math"

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight uint32 = 2

// InfiniteTimeout is used for every fence wait and image acquisition.
const InfiniteTimeout uint64 = math.MaxUint64

/**
 * @brief Size in bytes of the push constant block shared by the scene pipelines.
 * Holds a brightness scalar padded to 16 bytes.
 */
const PushConstantSize uint32 = 16
