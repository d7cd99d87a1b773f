package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-4

func TestTransformIdentity(t *testing.T) {
	tr := NewTransform()

	assert.True(t, tr.IsDirty())
	assert.True(t, tr.ToMatrix().Compare(NewMat4Identity(), tolerance))
	assert.False(t, tr.IsDirty())
	assert.Equal(t, NewVec3One(), tr.GetScale())
	assert.Equal(t, NewVec3Zero(), tr.GetTranslation())
}

func TestTransformToMatrixAppliesScaleRotationTranslation(t *testing.T) {
	tr := NewTransform()
	tr.SetTranslation(NewVec3(1, 2, 3))
	tr.SetScale(NewVec3(2, 2, 2))
	tr.SetRotationAxisAngle(90, NewVec3(0, 0, 1))

	p := NewVec3(1, 0, 0).Transform(tr.ToMatrix())
	assert.True(t, p.Compare(NewVec3(1, 4, 3), tolerance), "got %v", p)

	trs := NewMat4Scale(tr.GetScale()).Mul(tr.GetRotation().ToMat4()).Mul(NewMat4Translation(tr.GetTranslation()))
	assert.True(t, trs.Compare(tr.ToMatrix(), tolerance))
}

func TestTransformCachesUntilMutated(t *testing.T) {
	tr := NewTransform()
	tr.Translate(NewVec3(5, 0, 0))

	first := tr.ToMatrix()
	require.False(t, tr.IsDirty())
	second := tr.ToMatrix()
	assert.Equal(t, first, second)

	tr.Translate(NewVec3(1, 0, 0))
	assert.True(t, tr.IsDirty())
	assert.InDelta(t, 6, tr.ToMatrix().Data[12], tolerance)
}

func TestTransformRelativeOperations(t *testing.T) {
	tr := NewTransform()

	tr.Translate(NewVec3(1, 1, 1))
	tr.Translate(NewVec3(1, 0, -1))
	assert.Equal(t, NewVec3(2, 1, 0), tr.GetTranslation())

	tr.Scale(NewVec3(2, 3, 4))
	assert.Equal(t, NewVec3(2, 3, 4), tr.GetScale())

	tr.Grow(NewVec3(1, 1, 1))
	assert.Equal(t, NewVec3(3, 4, 5), tr.GetScale())
}

func TestTransformRotatePreMultiplies(t *testing.T) {
	tr := NewTransform()
	tr.RotateAxisAngle(90, NewVec3(0, 1, 0))
	tr.RotateAxisAngle(90, NewVec3(1, 0, 0))

	// Yaw first, then pitch around the world X axis.
	forward := tr.GetForward()
	assert.True(t, forward.Compare(NewVec3(1, 0, 0), tolerance), "got %v", forward)

	up := tr.GetUp()
	assert.True(t, up.Compare(NewVec3(0, 0, 1), tolerance), "got %v", up)
}

func TestTransformAxesAreOrthonormal(t *testing.T) {
	tr := NewTransform()
	tr.SetRotationAxisAngle(33, NewVec3(1, 2, 3))

	f, u, r := tr.GetForward(), tr.GetUp(), tr.GetRight()
	assert.InDelta(t, 1, f.Length(), tolerance)
	assert.InDelta(t, 1, u.Length(), tolerance)
	assert.InDelta(t, 1, r.Length(), tolerance)
	assert.InDelta(t, 0, f.Dot(u), tolerance)
	assert.InDelta(t, 0, f.Dot(r), tolerance)
	assert.InDelta(t, 0, u.Dot(r), tolerance)
}

func TestMat4InverseRoundTrip(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(3, -2, 7),
		NewQuatFromAxisAngle(NewVec3(0, 1, 0), DegToRad(40), true),
		NewVec3(1, 2, 0.5),
	)
	m := tr.ToMatrix()
	assert.True(t, m.Mul(m.Inverse()).Compare(NewMat4Identity(), tolerance))
}

func TestNormalMatrixUndoesScale(t *testing.T) {
	tr := NewTransform()
	tr.SetTranslation(NewVec3(5, 0, 0))
	tr.SetScale(NewVec3(2, 1, 1))

	n := tr.ToMatrix().NormalMatrix()
	want := NewMat4Scale(NewVec3(0.5, 1, 1))
	assert.True(t, n.Compare(want, tolerance))
	assert.True(t, n.Transpose().Compare(n, tolerance))
}

func TestQuaternionConjugateUndoesRotation(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(1, 1, 0), DegToRad(75), true)
	v := NewVec3(0.3, -4, 2)

	back := q.Conjugate().RotateVec3(q.RotateVec3(v))
	assert.True(t, back.Compare(v, tolerance))
}

func TestFaceNormal(t *testing.T) {
	n := FaceNormal(NewVec3(0, 0, 0), NewVec3(1, 0, 0), NewVec3(0, 1, 0))
	assert.Equal(t, NewVec3(0, 0, 1), n)
}

func TestWrapDegrees(t *testing.T) {
	assert.InDelta(t, 350, WrapDegrees(-10), tolerance)
	assert.InDelta(t, 10, WrapDegrees(370), tolerance)
	assert.Equal(t, 5, Clamp(9, 0, 5))
}
