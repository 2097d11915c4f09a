package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/resources"
)

// DefaultUp points down the Y axis because Vulkan clip space has y pointing down.
var DefaultUp = mgl32.Vec3{0, -1, 0}

/**
 * @brief Holds the projection and view matrices of the scene camera and the
 * optional skybox drawn around it.
 */
type Camera struct {
	projection  mgl32.Mat4
	view        mgl32.Mat4
	inverseView mgl32.Mat4

	/** @brief Vertical field of view in radians, used by Update. */
	FovY float32
	Near float32
	Far  float32

	skybox        *Skybox
	skyboxEnabled bool
}

/** @brief A cube mesh sampled with a cubemap texture. */
type Skybox struct {
	Mesh    *resources.Mesh
	Texture *resources.Texture
}

func NewCamera() *Camera {
	c := &Camera{
		FovY: math.DegToRad(50),
		Near: 0.1,
		Far:  100,
	}
	c.Reset()
	return c
}

func (c *Camera) Reset() {
	c.projection = mgl32.Ident4()
	c.view = mgl32.Ident4()
	c.inverseView = mgl32.Ident4()
}

func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	c.projection = math.Orthographic(left, right, top, bottom, near, far)
}

func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) {
	c.projection = math.Perspective(fovy, aspect, near, far)
}

func (c *Camera) SetViewDirection(position, direction, up mgl32.Vec3) {
	c.setView(math.LookDirection(position, direction, up))
}

func (c *Camera) SetViewTarget(position, target, up mgl32.Vec3) {
	c.SetViewDirection(position, target.Sub(position), up)
}

func (c *Camera) SetViewYXZ(position, rotation mgl32.Vec3) {
	c.setView(math.LookYXZ(position, rotation))
}

func (c *Camera) setView(view mgl32.Mat4) {
	c.view = view
	c.inverseView = view.Inv()
}

// Update places the camera at the viewer and rebuilds the perspective
// projection for the given aspect ratio.
func (c *Camera) Update(viewer math.Transform, aspect float32) {
	c.SetViewYXZ(viewer.Translation, viewer.Rotation)
	c.SetPerspectiveProjection(c.FovY, aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

func (c *Camera) InverseView() mgl32.Mat4 {
	return c.inverseView
}

// ProjectionView is projection * view.
func (c *Camera) ProjectionView() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.inverseView.Col(3).Vec3()
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.inverseView.Col(2).Vec3()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.inverseView.Col(0).Vec3()
}

// SetSkybox takes over one reference of mesh and texture and enables the skybox.
func (c *Camera) SetSkybox(mesh *resources.Mesh, texture *resources.Texture) {
	c.ClearSkybox()
	c.skybox = &Skybox{Mesh: mesh, Texture: texture}
	c.skyboxEnabled = true
}

func (c *Camera) ClearSkybox() {
	if c.skybox == nil {
		return
	}
	if c.skybox.Mesh != nil {
		c.skybox.Mesh.Release()
	}
	if c.skybox.Texture != nil {
		c.skybox.Texture.Release()
	}
	c.skybox = nil
	c.skyboxEnabled = false
}

func (c *Camera) Skybox() *Skybox {
	return c.skybox
}

func (c *Camera) HasSkybox() bool {
	return c.skybox != nil
}

func (c *Camera) SkyboxEnabled() bool {
	return c.skybox != nil && c.skyboxEnabled
}

func (c *Camera) SetSkyboxEnabled(enabled bool) {
	c.skyboxEnabled = enabled
}

// ToggleSkybox flips the skybox and returns the new state.
func (c *Camera) ToggleSkybox() bool {
	c.skyboxEnabled = !c.skyboxEnabled
	return c.SkyboxEnabled()
}
