package components

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/qtk/engine/math"
)

const tolerance = 1e-4

func identityCamera() *Camera {
	return NewCameraWithDefaults(CameraDefaults{Translation: math.NewVec3Zero()})
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, math.NewVec3(0, 0, 20), c.GetTranslation())

	c.Translate(math.NewVec3(3, 3, 3))
	c.Yaw(40)
	c.Reset()
	assert.Equal(t, math.NewVec3(0, 0, 20), c.GetTranslation())
	want := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.DegToRad(-5), true)
	assert.InDelta(t, 1.0, gomath.Abs(float64(c.GetRotation().Dot(want))), tolerance)
}

func TestCameraViewIsInverseOfWorld(t *testing.T) {
	c := NewCamera()
	c.Translate(math.NewVec3(1, -2, 3))
	c.Yaw(30)
	c.Pitch(-20)

	world := c.Transform().ToMatrix()
	assert.True(t, world.Mul(c.ToMatrix()).Compare(math.NewMat4Identity(), tolerance))
	assert.True(t, c.ToMatrix().Compare(world.Inverse(), tolerance))
	assert.True(t, c.ToMatrix().Inverse().Compare(world, tolerance))

	eye := c.GetTranslation().Transform(c.ToMatrix())
	assert.True(t, eye.Compare(math.NewVec3Zero(), tolerance), "got %v", eye)

	// A point in front of the camera ends up on the -Z axis of view space.
	ahead := c.GetTranslation().Add(c.Forward().MulScalar(5)).Transform(c.ToMatrix())
	assert.True(t, ahead.Compare(math.NewVec3(0, 0, -5), tolerance), "got %v", ahead)
}

func TestCameraAxes(t *testing.T) {
	c := identityCamera()
	assert.True(t, c.Forward().Compare(LocalForward, tolerance))
	assert.True(t, c.Up().Compare(LocalUp, tolerance))
	assert.True(t, c.Right().Compare(LocalRight, tolerance))

	c.Yaw(90)
	assert.True(t, c.Forward().Compare(math.NewVec3(-1, 0, 0), tolerance), "got %v", c.Forward())
	assert.True(t, c.Up().Compare(LocalUp, tolerance))
}

func TestCameraYawWraps(t *testing.T) {
	c := identityCamera()
	c.Yaw(300)
	c.Yaw(90)
	assert.InDelta(t, 30, c.YawDegrees(), tolerance)
	c.Yaw(-60)
	assert.InDelta(t, 330, c.YawDegrees(), tolerance)
	assert.True(t, c.Forward().Compare(math.NewQuatFromAxisAngle(LocalUp, math.DegToRad(330), true).RotateVec3(LocalForward), tolerance))

	c.Reset()
	assert.Equal(t, float32(0), c.YawDegrees())
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := identityCamera()
	c.Pitch(60)
	c.Pitch(60)
	assert.Equal(t, float32(89), c.PitchDegrees())
	assert.InDelta(t, gomath.Sin(89*gomath.Pi/180), float64(c.Forward().Y), tolerance)

	// Already at the limit, further pitching does nothing.
	before := c.GetRotation()
	c.Pitch(10)
	assert.Equal(t, before, c.GetRotation())

	c.Pitch(-200)
	assert.Equal(t, float32(-89), c.PitchDegrees())
}

func TestCameraMovement(t *testing.T) {
	c := NewCameraWithDefaults(CameraDefaults{Translation: math.NewVec3(0, 0, 20)})
	c.MoveForward(5)
	assert.True(t, c.GetTranslation().Compare(math.NewVec3(0, 0, 15), tolerance))
	c.MoveRight(2)
	c.MoveUp(1)
	assert.True(t, c.GetTranslation().Compare(math.NewVec3(2, 1, 15), tolerance))
	c.MoveLeft(2)
	c.MoveDown(1)
	c.MoveBackward(5)
	assert.True(t, c.GetTranslation().Compare(math.NewVec3(0, 0, 20), tolerance))
}
