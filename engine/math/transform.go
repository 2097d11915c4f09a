package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a translation, a scale and Tait-Bryan rotation angles in radians.
// The composed matrix is Translate * Ry * Rx * Rz * Scale.
type Transform struct {
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Vec3
}

func TransformCreate() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

func TransformFromPosition(position mgl32.Vec3) Transform {
	t := TransformCreate()
	t.Translation = position
	return t
}

func TransformFromPositionRotationScale(position, rotation, scale mgl32.Vec3) Transform {
	return Transform{
		Translation: position,
		Rotation:    rotation,
		Scale:       scale,
	}
}

func (t *Transform) Translate(delta mgl32.Vec3) {
	t.Translation = t.Translation.Add(delta)
}

func (t *Transform) Rotate(delta mgl32.Vec3) {
	t.Rotation = t.Rotation.Add(delta)
}

func (t Transform) rotationMat4() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(t.Rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
}

// Mat4 returns the model matrix.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.rotationMat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix is the inverse transpose of the upper 3x3 of Mat4, which for a
// rotation and scale is R * S^-1. It is returned padded to a 4x4 matrix so it can
// be copied into std140 uniform blocks as is.
func (t Transform) NormalMatrix() mgl32.Mat4 {
	inv := mgl32.Vec3{1, 1, 1}
	for i := 0; i < 3; i++ {
		if t.Scale[i] != 0 {
			inv[i] = 1 / t.Scale[i]
		}
	}
	return t.rotationMat4().Mul4(mgl32.Scale3D(inv.X(), inv.Y(), inv.Z()))
}

// Decompose recovers translation, scale and rotation from a matrix built by Mat4.
// Scales are assumed positive.
func Decompose(m mgl32.Mat4) Transform {
	t := Transform{
		Translation: mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)},
	}
	var r mgl32.Mat3
	for col := 0; col < 3; col++ {
		c := mgl32.Vec3{m.At(0, col), m.At(1, col), m.At(2, col)}
		s := c.Len()
		t.Scale[col] = s
		if s != 0 {
			c = c.Mul(1 / s)
		}
		for row := 0; row < 3; row++ {
			r.Set(row, col, c[row])
		}
	}

	// R = Ry * Rx * Rz:
	//   r12 = -sin(x)
	//   r02 =  sin(y)cos(x), r22 = cos(y)cos(x)
	//   r10 =  cos(x)sin(z), r11 = cos(x)cos(z)
	t.Rotation[0] = math32.Asin(Clamp(-r.At(1, 2), -1, 1))
	if math32.Abs(r.At(1, 2)) < 0.99999 {
		t.Rotation[1] = math32.Atan2(r.At(0, 2), r.At(2, 2))
		t.Rotation[2] = math32.Atan2(r.At(1, 0), r.At(1, 1))
	} else {
		// gimbal lock, fold z into y
		t.Rotation[1] = math32.Atan2(-r.At(2, 0), r.At(0, 0))
		t.Rotation[2] = 0
	}
	return t
}
