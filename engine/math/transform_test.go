package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3InDelta(t *testing.T, expected, actual mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d", i)
	}
}

func assertMat4InDelta(t *testing.T, expected, actual mgl32.Mat4, delta float64) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "element %d", i)
	}
}

func TestTransformIdentity(t *testing.T) {
	tr := TransformCreate()
	assertMat4InDelta(t, mgl32.Ident4(), tr.Mat4(), 1e-6)
	assertMat4InDelta(t, mgl32.Ident4(), tr.NormalMatrix(), 1e-6)
}

func TestTransformTranslationColumn(t *testing.T) {
	tr := TransformFromPosition(mgl32.Vec3{1, 2, 3})
	p := tr.Mat4().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3InDelta(t, mgl32.Vec3{1, 2, 3}, p.Vec3(), 1e-6)
}

func TestTransformDecomposeRoundTrip(t *testing.T) {
	cases := []Transform{
		TransformFromPositionRotationScale(mgl32.Vec3{0, 2.2, 2.5}, mgl32.Vec3{0, Pi, 0}, mgl32.Vec3{3.1, 3.1, 3.1}),
		TransformFromPositionRotationScale(mgl32.Vec3{-1, 0.5, 4}, mgl32.Vec3{0.3, -1.2, 0.7}, mgl32.Vec3{1, 2, 0.5}),
		TransformFromPositionRotationScale(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{-0.4, 2.5, -2.9}, mgl32.Vec3{0.03, 0.03, 0.03}),
	}
	for _, c := range cases {
		d := Decompose(c.Mat4())
		assertVec3InDelta(t, c.Translation, d.Translation, 1e-4)
		assertVec3InDelta(t, c.Scale, d.Scale, 1e-4)
		// angles may come back in an equivalent form, compare the matrices
		assertMat4InDelta(t, c.Mat4(), d.Mat4(), 1e-4)
	}
}

func TestNormalMatrixKeepsNormalsPerpendicular(t *testing.T) {
	tr := TransformFromPositionRotationScale(mgl32.Vec3{}, mgl32.Vec3{0.2, 0.9, -0.3}, mgl32.Vec3{1, 4, 0.5})
	tangent := mgl32.Vec4{1, -1, 0, 0}
	normal := mgl32.Vec4{1, 1, 0, 0}
	tt := tr.Mat4().Mul4x1(tangent).Vec3()
	nn := tr.NormalMatrix().Mul4x1(normal).Vec3()
	assert.InDelta(t, 0, tt.Dot(nn), 1e-5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, Pi, WrapAngle(-Pi), 1e-5)
	assert.InDelta(t, 0.5, WrapAngle(TwoPi+0.5), 1e-5)
}
