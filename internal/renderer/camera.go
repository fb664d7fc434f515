package renderer

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	Position   mgl32.Vec3 // Camera position in world space
	Front      mgl32.Vec3 // Forward direction vector
	Up         mgl32.Vec3 // Up direction vector
	Right      mgl32.Vec3 // Right direction vector
	Projection mgl32.Mat4
	Pitch      float32 // Degrees
	Yaw        float32 // Degrees

	// Target is the point orbited by Orbit and the arrow keys.
	Target      mgl32.Vec3
	WorldUp     mgl32.Vec3
	Speed       float32
	OrbitSpeed  float32 // Degrees per second
	Fov         float32
	Near        float32
	Far         float32
	AspectRatio float32
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

type Frustum struct {
	Planes [6]Plane
}

func NewDefaultCamera(width, height int32) *Camera {
	camera := Camera{
		Position:    mgl32.Vec3{0, 2, 8},
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         -90.0,
		Speed:       5,
		OrbitSpeed:  60,
		Fov:         45.0,
		Near:        0.1,
		Far:         1000.0,
		AspectRatio: aspect(width, height),
	}
	camera.LookAt(mgl32.Vec3{})
	camera.UpdateProjection()
	return &camera
}

func aspect(width, height int32) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

// Resize keeps the projection in step with the framebuffer.
func (c *Camera) Resize(width, height int32) {
	c.AspectRatio = aspect(width, height)
	c.UpdateProjection()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

// LookAt turns the camera toward target and makes it the orbit center.
func (c *Camera) LookAt(target mgl32.Vec3) {
	c.Target = target
	direction := target.Sub(c.Position)
	if direction.Len() == 0 {
		return
	}
	direction = direction.Normalize()
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(direction.Z()), float64(direction.X()))))
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(direction.Y(), -1, 1)))))
	c.Pitch = mgl32.Clamp(c.Pitch, -89, 89)
	c.updateCameraVectors()
}

// Orbit moves the camera around Target by the given angles in degrees,
// keeping its distance.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}
	azimuth := mgl32.RadToDeg(float32(math.Atan2(float64(offset.Z()), float64(offset.X())))) + yaw
	elevation := mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))) + pitch
	elevation = mgl32.Clamp(elevation, -89, 89)

	az, el := float64(mgl32.DegToRad(azimuth)), float64(mgl32.DegToRad(elevation))
	c.Position = c.Target.Add(mgl32.Vec3{
		float32(math.Cos(az) * math.Cos(el)),
		float32(math.Sin(el)),
		float32(math.Sin(az) * math.Cos(el)),
	}.Mul(radius))
	c.LookAt(c.Target)
}

// ProcessKeyboard moves with WASD and orbits the target with the arrow keys.
func (c *Camera) ProcessKeyboard(window *glfw.Window, deltaTime float32) {
	velocity := c.Speed * deltaTime
	if window.GetKey(glfw.KeyLeftShift) == glfw.Press || window.GetKey(glfw.KeyRightShift) == glfw.Press {
		velocity *= 2.5
	}

	moved := mgl32.Vec3{}
	if window.GetKey(glfw.KeyW) == glfw.Press {
		moved = moved.Add(c.Front.Mul(velocity))
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		moved = moved.Sub(c.Front.Mul(velocity))
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		moved = moved.Sub(c.Right.Mul(velocity))
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		moved = moved.Add(c.Right.Mul(velocity))
	}
	c.Position = c.Position.Add(moved)
	c.Target = c.Target.Add(moved)

	turn := c.OrbitSpeed * deltaTime
	var yaw, pitch float32
	if window.GetKey(glfw.KeyLeft) == glfw.Press {
		yaw += turn
	}
	if window.GetKey(glfw.KeyRight) == glfw.Press {
		yaw -= turn
	}
	if window.GetKey(glfw.KeyUp) == glfw.Press {
		pitch += turn
	}
	if window.GetKey(glfw.KeyDown) == glfw.Press {
		pitch -= turn
	}
	if yaw != 0 || pitch != 0 {
		c.Orbit(yaw, pitch)
	}
}

func (c *Camera) updateCameraVectors() {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))

	front := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}

	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

func (c *Camera) CalculateFrustum() Frustum {
	var frustum Frustum
	vp := c.GetViewProjection()

	// Left Plane
	frustum.Planes[0] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[0], vp[7] + vp[4], vp[11] + vp[8]},
		Distance: vp[15] + vp[12],
	}

	// Right Plane
	frustum.Planes[1] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[0], vp[7] - vp[4], vp[11] - vp[8]},
		Distance: vp[15] - vp[12],
	}

	// Bottom Plane
	frustum.Planes[2] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[1], vp[7] + vp[5], vp[11] + vp[9]},
		Distance: vp[15] + vp[13],
	}

	// Top Plane
	frustum.Planes[3] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[1], vp[7] - vp[5], vp[11] - vp[9]},
		Distance: vp[15] - vp[13],
	}

	// Near Plane
	frustum.Planes[4] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[2], vp[7] + vp[6], vp[11] + vp[10]},
		Distance: vp[15] + vp[14],
	}

	// Far Plane
	frustum.Planes[5] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[2], vp[7] - vp[6], vp[11] - vp[10]},
		Distance: vp[15] - vp[14],
	}

	for i := 0; i < 6; i++ {
		length := frustum.Planes[i].Normal.Len()
		frustum.Planes[i].Normal = frustum.Planes[i].Normal.Mul(1.0 / length)
		frustum.Planes[i].Distance /= length
	}

	return frustum
}

func (p *Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
