package views

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	emath "github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDrawable struct{}

func (nopDrawable) Bind(cb vulkan.CommandBuffer) {}
func (nopDrawable) Draw(cb vulkan.CommandBuffer) {}
func (nopDrawable) Destroy()                     {}

func flatten(m mgl32.Mat4) []float32 {
	return m[:]
}

func assertFloatsInDelta(t *testing.T, expected, actual []float32, delta float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "element %d", i)
	}
}

func TestEntityUniformLayout(t *testing.T) {
	assert.Equal(t, uint32(3*64+3*16), EntityUniformSize)

	u := EntityUniform{CameraPosition: mgl32.Vec4{1, 2, 3, 1}}
	b := u.Bytes()
	require.Len(t, b, int(EntityUniformSize))
	x := math.Float32frombits(binary.LittleEndian.Uint32(b[3*64:]))
	assert.Equal(t, float32(1), x)
}

func TestBrightnessPushConstant(t *testing.T) {
	b := BrightnessPushConstant(0.5)
	require.Len(t, b, 16)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b)))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[4:]))
}

func TestWorldPacketSplitsByPipeline(t *testing.T) {
	s := scene.New()
	camera := s.Camera()
	camera.SetPerspectiveProjection(mgl32.DegToRad(50), 4.0/3.0, 0.1, 100)
	camera.SetViewTarget(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, scene.DefaultUp)

	head := s.CreateEntity()
	e, _ := s.Entity(head)
	e.Name = "head"
	e.Transform = emath.TransformFromPosition(mgl32.Vec3{1, 2, 3})
	e.Brightness = 0.8
	e.Mesh = resources.NewMesh("head", nopDrawable{}, 3, 3)

	hair := s.CreateEntity()
	e, _ = s.Entity(hair)
	e.Name = "hair"
	e.Hair = resources.NewHair("wavy", nopDrawable{}, 1, 2)

	s.AddLight(scene.NewLight(2, mgl32.Vec3{1, 0.5, 0.25}), emath.TransformFromPosition(mgl32.Vec3{0, 2, 0}))

	var view RenderViewWorld
	packet := view.BuildPacket(s)

	require.Len(t, packet.Meshes, 1)
	require.Len(t, packet.Hair, 1)
	p := packet.Meshes[0]
	assert.Equal(t, head, p.Entity)
	assert.Equal(t, "head", p.Name)
	assert.Equal(t, float32(0.8), p.Brightness)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, p.Uniform.Model.Col(3))
	assertFloatsInDelta(t, flatten(camera.ProjectionView().Mul4(p.Uniform.Model)), flatten(p.Uniform.ModelViewProjection), 1e-5)
	assert.Equal(t, mgl32.Vec4{0, 2, 0, 1}, p.Uniform.LightPosition)
	assert.Equal(t, mgl32.Vec4{2, 1, 0.5, 2}, p.Uniform.LightColor)
	assertFloatsInDelta(t, []float32{0, 0, -5, 1}, p.Uniform.CameraPosition[:], 1e-4)

	assert.Equal(t, hair, packet.Hair[0].Entity)
}

func TestWorldPacketWithoutLightIsBlack(t *testing.T) {
	s := scene.New()
	h := s.CreateEntity()
	e, _ := s.Entity(h)
	e.Mesh = resources.NewMesh("cube", nopDrawable{}, 8, 36)

	var view RenderViewWorld
	packet := view.BuildPacket(s)

	require.Len(t, packet.Meshes, 1)
	assert.Equal(t, mgl32.Vec4{}, packet.Meshes[0].Uniform.LightColor)
	assert.Empty(t, packet.Hair)
}

func TestSkyboxPacketDropsViewTranslation(t *testing.T) {
	camera := scene.NewCamera()
	camera.SetPerspectiveProjection(mgl32.DegToRad(50), 1, 0.1, 100)
	camera.SetViewTarget(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{}, scene.DefaultUp)

	var view RenderViewSkybox
	_, ok := view.BuildPacket(camera)
	assert.False(t, ok)

	camera.SetSkybox(
		resources.NewMesh("cube", nopDrawable{}, 8, 36),
		resources.NewTexture("sky", metadata.TextureTypeCube, 1, 1, nil, nil),
	)
	p, ok := view.BuildPacket(camera)
	require.True(t, ok)
	assert.Equal(t, "cube", p.Name)
	// projection * view with a zero translation column keeps the projection's last column
	mvpColumn, projColumn := p.Uniform.ModelViewProjection.Col(3), camera.Projection().Col(3)
	assertFloatsInDelta(t, projColumn[:], mvpColumn[:], 1e-5)
	// the rotation part is unchanged
	mvpRotation, pvRotation := p.Uniform.ModelViewProjection.Mat3(), camera.ProjectionView().Mat3()
	assertFloatsInDelta(t, pvRotation[:], mvpRotation[:], 1e-5)

	camera.SetSkyboxEnabled(false)
	_, ok = view.BuildPacket(camera)
	assert.False(t, ok)
}

func TestUIPacketLines(t *testing.T) {
	var view RenderViewUI
	lines := view.BuildPacket(HUDStats{
		FPS:         59.6,
		FrameTimeMs: 16.78,
		Width:       1280,
		Height:      720,
		MSAA:        true,
		Samples:     4,
		Entities:    3,
		Renderables: 2,
		Skybox:      true,
	})
	assert.Equal(t, []string{
		"FPS 60 (16.78 ms)",
		"Extent 1280x720",
		"MSAA 4x",
		"Entities 3 (2 drawn)",
		"Skybox on",
	}, lines)

	lines = view.BuildPacket(HUDStats{})
	assert.Equal(t, "MSAA off", lines[2])
	assert.Equal(t, "Skybox off", lines[4])
}
