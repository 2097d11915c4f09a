package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
)

// PitchLimit keeps the viewer just short of looking straight up or down.
const PitchLimit float32 = 1.5

type KeyMappings struct {
	MoveLeft     core.KeyCode
	MoveRight    core.KeyCode
	MoveForward  core.KeyCode
	MoveBackward core.KeyCode
	MoveUp       core.KeyCode
	MoveDown     core.KeyCode
	LookLeft     core.KeyCode
	LookRight    core.KeyCode
	LookUp       core.KeyCode
	LookDown     core.KeyCode
}

func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		MoveLeft:     core.KEY_A,
		MoveRight:    core.KEY_D,
		MoveForward:  core.KEY_W,
		MoveBackward: core.KEY_S,
		MoveUp:       core.KEY_E,
		MoveDown:     core.KEY_Q,
		LookLeft:     core.KEY_LEFT,
		LookRight:    core.KEY_RIGHT,
		LookUp:       core.KEY_UP,
		LookDown:     core.KEY_DOWN,
	}
}

/** @brief Flies a transform around with the keyboard, first person style. */
type KeyboardController struct {
	Keys      KeyMappings
	MoveSpeed float32
	LookSpeed float32
}

func NewKeyboardController(moveSpeed, lookSpeed float32) *KeyboardController {
	return &KeyboardController{
		Keys:      DefaultKeyMappings(),
		MoveSpeed: moveSpeed,
		LookSpeed: lookSpeed,
	}
}

// MoveInPlaneXZ rotates and moves transform for the keys currently held down.
// Movement is relative to the yaw only, so looking up does not lift the viewer.
func (k *KeyboardController) MoveInPlaneXZ(dt float32, isDown func(core.KeyCode) bool, transform *math.Transform) {
	var rotate mgl32.Vec3
	if isDown(k.Keys.LookRight) {
		rotate[1] += 1
	}
	if isDown(k.Keys.LookLeft) {
		rotate[1] -= 1
	}
	if isDown(k.Keys.LookUp) {
		rotate[0] += 1
	}
	if isDown(k.Keys.LookDown) {
		rotate[0] -= 1
	}
	if rotate.Dot(rotate) > mgl32.Epsilon {
		transform.Rotate(rotate.Normalize().Mul(k.LookSpeed * dt))
	}

	transform.Rotation[0] = math.Clamp(transform.Rotation[0], -PitchLimit, PitchLimit)
	transform.Rotation[1] = math.WrapAngle(transform.Rotation[1])

	yaw := transform.Rotation[1]
	forward := mgl32.Vec3{math32.Sin(yaw), 0, math32.Cos(yaw)}
	right := mgl32.Vec3{forward[2], 0, -forward[0]}

	var move mgl32.Vec3
	if isDown(k.Keys.MoveForward) {
		move = move.Add(forward)
	}
	if isDown(k.Keys.MoveBackward) {
		move = move.Sub(forward)
	}
	if isDown(k.Keys.MoveRight) {
		move = move.Add(right)
	}
	if isDown(k.Keys.MoveLeft) {
		move = move.Sub(right)
	}
	if isDown(k.Keys.MoveUp) {
		move = move.Add(DefaultUp)
	}
	if isDown(k.Keys.MoveDown) {
		move = move.Sub(DefaultUp)
	}
	if move.Dot(move) > mgl32.Epsilon {
		transform.Translate(move.Normalize().Mul(k.MoveSpeed * dt))
	}
}
