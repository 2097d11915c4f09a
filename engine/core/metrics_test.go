package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsAverageFrameTime(t *testing.T) {
	assert.NoError(t, MetricsInitialize())

	for i := 0; i < int(AVG_COUNT); i++ {
		MetricsUpdate(0.016)
	}
	assert.InDelta(t, 16.0, MetricsFrameTime(), 1e-9)
}

func TestMetricsFPS(t *testing.T) {
	assert.NoError(t, MetricsInitialize())

	// 101 frames of 10ms cross the one second boundary once
	for i := 0; i < 101; i++ {
		MetricsUpdate(0.010)
	}
	fps, _ := MetricsFrame()
	assert.InDelta(t, 100.0, fps, 1.0)
}
