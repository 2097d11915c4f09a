package views

import "fmt"

// HUDStats is what the debug overlay shows.
type HUDStats struct {
	FPS         float64
	FrameTimeMs float64
	Width       uint32
	Height      uint32
	MSAA        bool
	Samples     uint32
	Entities    int
	Renderables int
	Skybox      bool
}

type RenderViewUI struct{}

// BuildPacket formats the stats into the overlay's text lines.
func (vu *RenderViewUI) BuildPacket(stats HUDStats) []string {
	msaa := "off"
	if stats.MSAA {
		msaa = fmt.Sprintf("%dx", stats.Samples)
	}
	skybox := "off"
	if stats.Skybox {
		skybox = "on"
	}
	return []string{
		fmt.Sprintf("FPS %.0f (%.2f ms)", stats.FPS, stats.FrameTimeMs),
		fmt.Sprintf("Extent %dx%d", stats.Width, stats.Height),
		fmt.Sprintf("MSAA %s", msaa),
		fmt.Sprintf("Entities %d (%d drawn)", stats.Entities, stats.Renderables),
		fmt.Sprintf("Skybox %s", skybox),
	}
}
