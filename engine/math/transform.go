package math

var (
	LocalForward = Vec3{0.0, 0.0, 1.0}
	LocalUp      = Vec3{0.0, 1.0, 0.0}
	LocalRight   = Vec3{1.0, 0.0, 0.0}
)

// NewTransform returns an identity transform: no translation,
// identity rotation and unit scale.
func NewTransform() *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.translation = position
	t.rotation = rotation.Normalize()
	t.scale = scale
	t.dirty = true
}

// Translate adds dt to the current translation.
func (t *Transform) Translate(dt Vec3) {
	t.translation = t.translation.Add(dt)
	t.dirty = true
}

// Scale multiplies the current scale component-wise by ds.
func (t *Transform) Scale(ds Vec3) {
	t.scale = t.scale.Mul(ds)
	t.dirty = true
}

// Grow adds ds to the current scale.
func (t *Transform) Grow(ds Vec3) {
	t.scale = t.scale.Add(ds)
	t.dirty = true
}

// Rotate applies dr on top of the current rotation (rotation = dr * rotation).
func (t *Transform) Rotate(dr Quaternion) {
	t.rotation = dr.Mul(t.rotation).Normalize()
	t.dirty = true
}

// RotateAxisAngle rotates by angle degrees around axis.
func (t *Transform) RotateAxisAngle(angle float32, axis Vec3) {
	t.Rotate(NewQuatFromAxisAngle(axis, DegToRad(angle), true))
}

func (t *Transform) SetTranslation(translation Vec3) {
	t.translation = translation
	t.dirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.scale = scale
	t.dirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.rotation = rotation.Normalize()
	t.dirty = true
}

// SetRotationAxisAngle replaces the rotation with angle degrees around axis.
func (t *Transform) SetRotationAxisAngle(angle float32, axis Vec3) {
	t.SetRotation(NewQuatFromAxisAngle(axis, DegToRad(angle), true))
}

func (t *Transform) GetTranslation() Vec3 {
	return t.translation
}

func (t *Transform) GetScale() Vec3 {
	return t.scale
}

func (t *Transform) GetRotation() Quaternion {
	return t.rotation
}

func (t *Transform) IsDirty() bool {
	return t.dirty
}

// ToMatrix returns the object-to-world matrix T * R * S. The matrix is
// only rebuilt after a mutation.
func (t *Transform) ToMatrix() Mat4 {
	if t.dirty {
		t.dirty = false
		t.world = NewMat4Scale(t.scale).Mul(t.rotation.ToMat4()).Mul(NewMat4Translation(t.translation))
	}
	return t.world
}

func (t *Transform) GetForward() Vec3 {
	return t.rotation.RotateVec3(LocalForward)
}

func (t *Transform) GetUp() Vec3 {
	return t.rotation.RotateVec3(LocalUp)
}

func (t *Transform) GetRight() Vec3 {
	return t.rotation.RotateVec3(LocalRight)
}
