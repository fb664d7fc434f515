package renderer

import "github.com/go-gl/mathgl/mgl32"

// Transform places an object in world space. The model matrix is rebuilt
// lazily after any setter ran.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	matrix   mgl32.Mat4
	dirty    bool
}

func NewTransform() Transform {
	return Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		matrix:   mgl32.Ident4(),
	}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.dirty = true
}

// SetRotationEuler sets the rotation from angles in degrees applied in X, Y, Z order.
func (t *Transform) SetRotationEuler(x, y, z float32) {
	t.rotation = eulerQuat(x, y, z)
	t.dirty = true
}

// Rotate adds a rotation given in degrees around the local axes.
func (t *Transform) Rotate(x, y, z float32) {
	t.rotation = t.rotation.Mul(eulerQuat(x, y, z)).Normalize()
	t.dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// ModelMatrix returns translation * rotation * scale.
func (t *Transform) ModelMatrix() mgl32.Mat4 {
	if t.dirty {
		scaleMatrix := mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2])
		translationMatrix := mgl32.Translate3D(t.position[0], t.position[1], t.position[2])
		t.matrix = translationMatrix.Mul4(t.rotation.Mat4()).Mul4(scaleMatrix)
		t.dirty = false
	}
	return t.matrix
}

// NormalMatrix is the inverse transpose of the model matrix' upper 3x3,
// correct under non-uniform scale.
func (t *Transform) NormalMatrix() mgl32.Mat3 {
	m := t.ModelMatrix().Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}

func eulerQuat(x, y, z float32) mgl32.Quat {
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(x), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(y), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(z), mgl32.Vec3{0, 0, 1})
	return rotationX.Mul(rotationY).Mul(rotationZ)
}
