package core

import (
	"sync"

	"github.com/spaghettifunk/vkr/engine/containers"
)

const AVG_COUNT uint8 = 30

type MetricsState struct {
	// last AVG_COUNT frame times in milliseconds
	MStimes            *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var metricsMu sync.Mutex
var metricsState = newMetricsState()

func newMetricsState() *MetricsState {
	return &MetricsState{MStimes: containers.NewRingQueue[float64](int(AVG_COUNT))}
}

func MetricsInitialize() error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	metricsState = newMetricsState()
	return nil
}

// MetricsUpdate records the duration of one frame, in seconds. The frame time
// average covers the last AVG_COUNT frames once that many were recorded.
func MetricsUpdate(frameElapsedTime float64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes.Push(frameMS)
	if metricsState.MStimes.IsFull() {
		sum := 0.0
		metricsState.MStimes.Each(func(ms float64) { sum += ms })
		metricsState.MSavg = sum / float64(AVG_COUNT)
	}

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
}

func MetricsFPS() float64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return metricsState.FPS, metricsState.MSavg
}
