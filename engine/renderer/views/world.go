package views

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/scene"
)

// WorldPacket splits the renderable entities by the pipeline that draws them.
type WorldPacket struct {
	Meshes []Packet
	Hair   []Packet
}

type RenderViewWorld struct{}

// BuildPacket computes the uniform data of every renderable entity from the
// scene camera and the first light. An entity with both a mesh and hair shows
// up in both lists with the same uniform.
func (vw *RenderViewWorld) BuildPacket(s *scene.Scene) *WorldPacket {
	camera := s.Camera()
	projectionView := camera.ProjectionView()
	lightPosition, lightColor := sceneLight(s)
	cameraPosition := camera.Position().Vec4(1)

	packet := &WorldPacket{}
	for _, e := range s.Entities() {
		if !e.Renderable() {
			continue
		}
		model := e.Transform.Mat4()
		p := Packet{
			Entity: e.Handle,
			Name:   e.Name,
			Uniform: EntityUniform{
				ModelViewProjection: projectionView.Mul4(model),
				Model:               model,
				Normal:              e.Transform.NormalMatrix(),
				CameraPosition:      cameraPosition,
				LightPosition:       lightPosition,
				LightColor:          lightColor,
			},
			Brightness: e.Brightness,
		}
		if e.HasMesh() {
			p.Drawable = e.Mesh.Geometry
			packet.Meshes = append(packet.Meshes, p)
		}
		if e.HasHair() {
			p.Drawable = e.Hair.Geometry
			packet.Hair = append(packet.Hair, p)
		}
	}
	return packet
}

// sceneLight returns the first light, or a black one when the scene has none.
func sceneLight(s *scene.Scene) (position, color mgl32.Vec4) {
	lights := s.Lights()
	if len(lights) == 0 {
		return mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{}
	}
	l := lights[0]
	return l.Transform.Translation.Vec4(1), l.Light.Radiance().Vec4(l.Light.Intensity)
}
