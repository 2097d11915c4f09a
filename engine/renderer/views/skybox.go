package views

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/scene"
)

type RenderViewSkybox struct{}

// BuildPacket returns the skybox draw, or false when the camera has no enabled
// skybox. The view translation is dropped so the box stays centered on the viewer.
func (vs *RenderViewSkybox) BuildPacket(camera *scene.Camera) (*Packet, bool) {
	if !camera.SkyboxEnabled() {
		return nil, false
	}
	skybox := camera.Skybox()
	if skybox.Mesh == nil {
		return nil, false
	}

	view := camera.View()
	view.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return &Packet{
		Name:     skybox.Mesh.Name,
		Drawable: skybox.Mesh.Geometry,
		Uniform: EntityUniform{
			ModelViewProjection: camera.Projection().Mul4(view),
			Model:               mgl32.Ident4(),
			Normal:              mgl32.Ident4(),
			CameraPosition:      camera.Position().Vec4(1),
		},
		Brightness: 1,
	}, true
}
