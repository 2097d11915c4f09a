package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief Strand geometry loaded from a cyHair file.
 * Strand i owns Segments[i]+1 consecutive points.
 */
type HairData struct {
	Name         string
	Segments     []uint16
	Points       []mgl32.Vec3
	Thickness    []float32
	Transparency []float32
	Colors       []mgl32.Vec3
	Directions   []mgl32.Vec3
	Info         string
}

func (h *HairData) StrandCount() int {
	return len(h.Segments)
}

func (h *HairData) PointCount() int {
	return len(h.Points)
}

// Vertices flattens the strands into a single vertex stream.
func (h *HairData) Vertices() []HairVertex {
	out := make([]HairVertex, len(h.Points))
	for i := range h.Points {
		out[i].Position = h.Points[i]
		if i < len(h.Colors) {
			out[i].Color = h.Colors[i]
		}
		if i < len(h.Directions) {
			out[i].Direction = h.Directions[i]
		}
	}
	return out
}

// VertexRange is a run of consecutive vertices drawn by one non-indexed call.
type VertexRange struct {
	First uint32
	Count uint32
}

// StrandRanges returns the vertex run of every strand. Strands running past
// the end of Points are truncated, empty ones are skipped.
func (h *HairData) StrandRanges() []VertexRange {
	out := make([]VertexRange, 0, len(h.Segments))
	total := uint32(len(h.Points))
	first := uint32(0)
	for _, s := range h.Segments {
		if first >= total {
			break
		}
		count := uint32(s) + 1
		if first+count > total {
			count = total - first
		}
		if count > 1 {
			out = append(out, VertexRange{First: first, Count: count})
		}
		first += uint32(s) + 1
	}
	return out
}
