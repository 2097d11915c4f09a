package scene

import "github.com/go-gl/mathgl/mgl32"

/** @brief A point light. Its position comes from the owning entity's transform. */
type Light struct {
	Intensity float32
	Color     mgl32.Vec3
}

func NewLight(intensity float32, color mgl32.Vec3) Light {
	return Light{Intensity: intensity, Color: color}
}

// Radiance is the color scaled by the intensity.
func (l Light) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}
