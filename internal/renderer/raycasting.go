package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayIntersectSphere returns the distance to the nearest intersection in
// front of the ray origin. A ray starting inside the sphere hits its far side.
func RayIntersectSphere(ray Ray, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := ray.Origin.Sub(center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 || a == 0 {
		return 0, false
	}
	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	switch {
	case t1 > 0:
		return t1, true
	case t2 > 0:
		return t2, true
	}
	return 0, false
}

// ScreenRay converts a cursor position in window coordinates into a world
// space ray leaving the camera.
func (c *Camera) ScreenRay(screenX, screenY float32, windowWidth, windowHeight int) Ray {
	ndcX := 2.0*screenX/float32(windowWidth) - 1.0
	ndcY := 1.0 - 2.0*screenY/float32(windowHeight)

	eye := c.Projection.Inv().Mul4x1(mgl32.Vec4{ndcX, ndcY, -1.0, 1.0})
	eye = mgl32.Vec4{eye.X(), eye.Y(), -1.0, 0.0}
	world := c.GetViewMatrix().Inv().Mul4x1(eye).Vec3().Normalize()

	return Ray{Origin: c.Position, Direction: world}
}

// Pick returns the nearest object whose bounding sphere the ray hits, or nil.
func (rend *OpenGLRenderer) Pick(ray Ray) *Object3D {
	return pick(rend.objects, ray)
}

func pick(objects []*Object3D, ray Ray) *Object3D {
	var nearest *Object3D
	best := float32(math.MaxFloat32)
	for _, o := range objects {
		if o.IsDisposed() {
			continue
		}
		center, radius := o.WorldBounds()
		if t, ok := RayIntersectSphere(ray, center, radius); ok && t < best {
			best = t
			nearest = o
		}
	}
	return nearest
}
