package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

// Bits of HairHeader.Arrays telling which optional arrays follow the header.
const (
	HairHasSegments uint32 = 1 << iota
	HairHasPoints
	HairHasThickness
	HairHasTransparency
	HairHasColors
)

const hairHeaderSize = 128

var hairSignature = [4]byte{'H', 'A', 'I', 'R'}

/**
 * @brief The 128 byte header of a cyHair file. Values are little endian.
 * The defaults apply to every strand or point when the matching array is absent.
 */
type HairHeader struct {
	Signature           [4]byte
	HairCount           uint32
	PointCount          uint32
	Arrays              uint32
	DefaultSegments     uint32
	DefaultThickness    float32
	DefaultTransparency float32
	DefaultColor        [3]float32
	Info                [88]byte
}

// HairLoader reads cyHair .hair files.
type HairLoader struct{}

func (hl *HairLoader) Load(path string) (interface{}, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseHair(assetName(path), f)
}

// ParseHair reads the header and the arrays it announces, fills the absent
// ones from the defaults and computes a direction for every point.
func ParseHair(name string, r io.Reader) (*metadata.HairData, error) {
	var header HairHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, invalid(name, "cannot read header: %s", err)
	}
	if header.Signature != hairSignature {
		return nil, invalid(name, "wrong signature %q", header.Signature[:])
	}
	if header.Arrays&HairHasPoints == 0 {
		return nil, invalid(name, "file has no points array")
	}
	if header.HairCount > header.PointCount {
		return nil, invalid(name, "%d strands cannot share %d points", header.HairCount, header.PointCount)
	}
	if header.Arrays&HairHasSegments == 0 && header.DefaultSegments > stdmath.MaxUint16 {
		return nil, invalid(name, "default segment count %d does not fit 16 bits", header.DefaultSegments)
	}

	// the counts come from the file, check them against its size before allocating
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, invalid(name, "cannot read arrays: %s", err)
	}
	if need := hairArraysSize(&header); uint64(len(body)) < need {
		return nil, invalid(name, "header announces %d bytes of arrays, file has %d", need, len(body))
	}
	r = bytes.NewReader(body)

	hair := &metadata.HairData{
		Name:     name,
		Segments: make([]uint16, header.HairCount),
		Points:   make([]mgl32.Vec3, header.PointCount),
		Info:     string(bytes.TrimRight(header.Info[:], "\x00")),
	}

	if header.Arrays&HairHasSegments != 0 {
		if err := readArray(r, hair.Segments); err != nil {
			return nil, invalid(name, "cannot read segments: %s", err)
		}
	} else {
		for i := range hair.Segments {
			hair.Segments[i] = uint16(header.DefaultSegments)
		}
	}
	if err := readArray(r, hair.Points); err != nil {
		return nil, invalid(name, "cannot read points: %s", err)
	}

	hair.Thickness = make([]float32, header.PointCount)
	if header.Arrays&HairHasThickness != 0 {
		if err := readArray(r, hair.Thickness); err != nil {
			return nil, invalid(name, "cannot read thickness: %s", err)
		}
	} else {
		fill(hair.Thickness, header.DefaultThickness)
	}

	hair.Transparency = make([]float32, header.PointCount)
	if header.Arrays&HairHasTransparency != 0 {
		if err := readArray(r, hair.Transparency); err != nil {
			return nil, invalid(name, "cannot read transparency: %s", err)
		}
	} else {
		fill(hair.Transparency, header.DefaultTransparency)
	}

	hair.Colors = make([]mgl32.Vec3, header.PointCount)
	if header.Arrays&HairHasColors != 0 {
		if err := readArray(r, hair.Colors); err != nil {
			return nil, invalid(name, "cannot read colors: %s", err)
		}
	} else {
		fill(hair.Colors, mgl32.Vec3(header.DefaultColor))
	}

	if expected := expectedPoints(hair.Segments); expected != int(header.PointCount) {
		core.LogWarn("hair %s: strands describe %d points, file has %d", name, expected, header.PointCount)
	}
	hair.Directions = HairDirections(hair.Segments, hair.Points)

	core.LogDebug("Hair %s parsed: %d strands, %d points.", name, header.HairCount, header.PointCount)
	return hair, nil
}

// hairArraysSize is the number of bytes the arrays announced by h take.
func hairArraysSize(h *HairHeader) uint64 {
	points := uint64(h.PointCount)
	size := points * 12
	if h.Arrays&HairHasSegments != 0 {
		size += uint64(h.HairCount) * 2
	}
	if h.Arrays&HairHasThickness != 0 {
		size += points * 4
	}
	if h.Arrays&HairHasTransparency != 0 {
		size += points * 4
	}
	if h.Arrays&HairHasColors != 0 {
		size += points * 12
	}
	return size
}

func readArray(r io.Reader, data interface{}) error {
	err := binary.Read(r, binary.LittleEndian, data)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func fill[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}

func expectedPoints(segments []uint16) int {
	n := 0
	for _, s := range segments {
		n += int(s) + 1
	}
	return n
}

// HairDirections returns the normalized tangent at every point. Inner points
// blend both neighboring segments weighted by length; strand ends use their
// only segment.
func HairDirections(segments []uint16, points []mgl32.Vec3) []mgl32.Vec3 {
	dirs := make([]mgl32.Vec3, len(points))
	first := 0
	for _, s := range segments {
		count := int(s) + 1
		if first+count > len(points) {
			count = len(points) - first
		}
		if count <= 0 {
			break
		}
		if count == 1 {
			first++
			continue
		}
		p := points[first : first+count]
		d := dirs[first : first+count]

		d[0] = normalizeOrZero(p[1].Sub(p[0]))
		for i := 1; i < count-1; i++ {
			d0 := p[i].Sub(p[i-1])
			d1 := p[i+1].Sub(p[i])
			d0len, d1len := d0.Len(), d1.Len()
			if d0len > 0 {
				d0 = d0.Mul(d1len / d0len)
			}
			d[i] = normalizeOrZero(d0.Add(d1))
		}
		d[count-1] = normalizeOrZero(p[count-1].Sub(p[count-2]))
		first += count
	}
	return dirs
}

func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
