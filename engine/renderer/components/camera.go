package components

import (
	"github.com/spaghettifunk/qtk/engine/math"
)

/** @brief Camera axes in camera space. The camera looks down -Z. */
var (
	LocalForward = math.NewVec3(0, 0, -1)
	LocalUp      = math.NewVec3(0, 1, 0)
	LocalRight   = math.NewVec3(1, 0, 0)
)

/** @brief Maximum pitch in degrees, in either direction. */
const maxPitch float32 = 89.0

/**
 * @brief The eye a camera returns to on Reset.
 */
type CameraDefaults struct {
	Translation math.Vec3
	/** @brief Rotation angle in degrees around RotationAxis. */
	RotationAngle float32
	RotationAxis  math.Vec3
}

func DefaultCameraDefaults() CameraDefaults {
	return CameraDefaults{
		Translation:   math.NewVec3(0, 0, 20),
		RotationAngle: -5,
		RotationAxis:  math.NewVec3(0, 1, 0),
	}
}

/**
 * @brief A free-flying camera backed by a Transform. The view matrix is the
 * inverse of the camera's world transform.
 */
type Camera struct {
	transform *math.Transform
	defaults  CameraDefaults
	// accumulated pitch in degrees, used for clamping
	pitch float32
	// heading in degrees, kept in [0, 360)
	yaw float32
}

func NewCamera() *Camera {
	return NewCameraWithDefaults(DefaultCameraDefaults())
}

func NewCameraWithDefaults(defaults CameraDefaults) *Camera {
	c := &Camera{
		transform: math.NewTransform(),
		defaults:  defaults,
	}
	c.Reset()
	return c
}

// Reset moves the camera back to its default eye.
func (c *Camera) Reset() {
	c.transform = math.NewTransform()
	c.transform.SetTranslation(c.defaults.Translation)
	if c.defaults.RotationAxis.LengthSquared() > 0 {
		c.transform.SetRotationAxisAngle(c.defaults.RotationAngle, c.defaults.RotationAxis)
	}
	c.pitch = 0
	c.yaw = 0
}

func (c *Camera) Transform() *math.Transform {
	return c.transform
}

func (c *Camera) Forward() math.Vec3 {
	return c.transform.GetRotation().RotateVec3(LocalForward)
}

func (c *Camera) Up() math.Vec3 {
	return c.transform.GetRotation().RotateVec3(LocalUp)
}

func (c *Camera) Right() math.Vec3 {
	return c.transform.GetRotation().RotateVec3(LocalRight)
}

/**
 * @brief Builds the view matrix: translate by -translation, then rotate by
 * the conjugate of the rotation.
 */
func (c *Camera) ToMatrix() math.Mat4 {
	return math.NewMat4Translation(c.transform.GetTranslation().MulScalar(-1)).
		Mul(c.transform.GetRotation().Conjugate().ToMat4())
}

func (c *Camera) GetTranslation() math.Vec3 {
	return c.transform.GetTranslation()
}

func (c *Camera) GetRotation() math.Quaternion {
	return c.transform.GetRotation()
}

func (c *Camera) Translate(dt math.Vec3) {
	c.transform.Translate(dt)
}

func (c *Camera) Rotate(dr math.Quaternion) {
	c.transform.Rotate(dr)
}

func (c *Camera) SetTranslation(translation math.Vec3) {
	c.transform.SetTranslation(translation)
}

func (c *Camera) SetRotation(rotation math.Quaternion) {
	c.transform.SetRotation(rotation)
	c.pitch = 0
	c.yaw = 0
}

func (c *Camera) MoveForward(amount float32) {
	c.transform.Translate(c.Forward().MulScalar(amount))
}

func (c *Camera) MoveBackward(amount float32) {
	c.transform.Translate(c.Forward().MulScalar(-amount))
}

func (c *Camera) MoveLeft(amount float32) {
	c.transform.Translate(c.Right().MulScalar(-amount))
}

func (c *Camera) MoveRight(amount float32) {
	c.transform.Translate(c.Right().MulScalar(amount))
}

func (c *Camera) MoveUp(amount float32) {
	c.transform.Translate(c.Up().MulScalar(amount))
}

func (c *Camera) MoveDown(amount float32) {
	c.transform.Translate(c.Up().MulScalar(-amount))
}

// Yaw turns the camera around the world up axis.
func (c *Camera) Yaw(degrees float32) {
	c.transform.RotateAxisAngle(degrees, LocalUp)
	c.yaw = math.WrapDegrees(c.yaw + degrees)
}

// YawDegrees is the heading turned through Yaw since the last Reset or
// SetRotation.
func (c *Camera) YawDegrees() float32 {
	return c.yaw
}

// Pitch tilts the camera around its own right axis. The total pitch is
// clamped to avoid flipping over the poles.
func (c *Camera) Pitch(degrees float32) {
	target := math.Clamp(c.pitch+degrees, -maxPitch, maxPitch)
	delta := target - c.pitch
	if delta == 0 {
		return
	}
	c.pitch = target
	q := math.NewQuatFromAxisAngle(LocalRight, math.DegToRad(delta), true)
	c.transform.SetRotation(c.transform.GetRotation().Mul(q))
}

func (c *Camera) PitchDegrees() float32 {
	return c.pitch
}
