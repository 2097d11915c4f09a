package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projections below target Vulkan clip space: depth in [0, 1] and y pointing down.

func Orthographic(left, right, top, bottom, near, far float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 0, 2/(right-left))
	m.Set(1, 1, 2/(bottom-top))
	m.Set(2, 2, 1/(far-near))
	m.Set(0, 3, -(right+left)/(right-left))
	m.Set(1, 3, -(bottom+top)/(bottom-top))
	m.Set(2, 3, -near/(far-near))
	return m
}

// Perspective expects a vertical field of view in radians.
func Perspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	tanHalf := math32.Tan(fovy / 2)
	var m mgl32.Mat4
	m.Set(0, 0, 1/(aspect*tanHalf))
	m.Set(1, 1, 1/tanHalf)
	m.Set(2, 2, far/(far-near))
	m.Set(3, 2, 1)
	m.Set(2, 3, -(far*near)/(far-near))
	return m
}

// LookDirection builds a view matrix from an orthonormal basis around direction.
func LookDirection(position, direction, up mgl32.Vec3) mgl32.Mat4 {
	w := direction.Normalize()
	u := w.Cross(up).Normalize()
	v := w.Cross(u)
	return viewFromBasis(position, u, v, w)
}

// LookYXZ builds a view matrix from Tait-Bryan angles applied in Y, X, Z order.
func LookYXZ(position, rotation mgl32.Vec3) mgl32.Mat4 {
	c3, s3 := math32.Cos(rotation.Z()), math32.Sin(rotation.Z())
	c2, s2 := math32.Cos(rotation.X()), math32.Sin(rotation.X())
	c1, s1 := math32.Cos(rotation.Y()), math32.Sin(rotation.Y())
	u := mgl32.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := mgl32.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := mgl32.Vec3{c2 * s1, -s2, c1 * c2}
	return viewFromBasis(position, u, v, w)
}

func viewFromBasis(position, u, v, w mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Ident4()
	for k := 0; k < 3; k++ {
		m.Set(0, k, u[k])
		m.Set(1, k, v[k])
		m.Set(2, k, w[k])
	}
	m.Set(0, 3, -u.Dot(position))
	m.Set(1, 3, -v.Dot(position))
	m.Set(2, 3, -w.Dot(position))
	return m
}
