package hittest

import (
	"cogentcore.org/core/math32"
)

// Viewport is the client-space rectangle the scene is drawn into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// NDC maps client coordinates to normalized device coordinates: x and y in
// [-1, 1] across the viewport, y up.
func (v Viewport) NDC(clientX, clientY float32) math32.Vector2 {
	if v.Width <= 0 || v.Height <= 0 {
		return math32.Vector2{}
	}
	return math32.Vec2(
		(clientX-v.X)/v.Width*2-1,
		-(clientY-v.Y)/v.Height*2+1,
	)
}

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position math32.Vector3
	Target   math32.Vector3
	Up       math32.Vector3
	FovY     float32 // vertical field of view, degrees
	Aspect   float32
	Near     float32
	Far      float32
}

// NewSceneCamera returns the sculpture camera: 75° fov at (0, 2, 10),
// looking at the origin.
func NewSceneCamera(aspect float32) *Camera {
	return &Camera{
		Position: math32.Vec3(0, 2, 10),
		Up:       math32.Vec3(0, 1, 0),
		FovY:     75,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

// NewHUDCamera returns the camera framing the HUD button: 50° fov, square
// aspect, 0.08 in front of the button.
func NewHUDCamera() *Camera {
	return &Camera{
		Position: math32.Vec3(0, 0, 0.08),
		Up:       math32.Vec3(0, 1, 0),
		FovY:     50,
		Aspect:   1,
		Near:     0.01,
		Far:      10,
	}
}

// basis returns the camera's right, up and forward unit vectors.
func (c *Camera) basis() (right, up, fwd math32.Vector3) {
	fwd = c.Target.Sub(c.Position).Normal()
	worldUp := c.Up
	if worldUp.LengthSquared() == 0 {
		worldUp = math32.Vec3(0, 1, 0)
	}
	right = fwd.Cross(worldUp).Normal()
	up = right.Cross(fwd)
	return right, up, fwd
}

func (c *Camera) halfExtents() (float32, float32) {
	ty := math32.Tan(math32.DegToRad(c.FovY) / 2)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return ty * aspect, ty
}

// Ray returns the world-space ray from the camera through ndc. Dir is unit
// length, so distances along it are world distances.
func (c *Camera) Ray(ndc math32.Vector2) math32.Ray {
	right, up, fwd := c.basis()
	tx, ty := c.halfExtents()
	dir := fwd.Add(right.MulScalar(ndc.X * tx)).Add(up.MulScalar(ndc.Y * ty))
	return math32.Ray{Origin: c.Position, Dir: dir.Normal()}
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (c *Camera) Project(p math32.Vector3) (ndc math32.Vector2, ok bool) {
	right, up, fwd := c.basis()
	d := p.Sub(c.Position)
	z := d.Dot(fwd)
	if z <= 0 {
		return math32.Vector2{}, false
	}
	tx, ty := c.halfExtents()
	return math32.Vec2(d.Dot(right)/(z*tx), d.Dot(up)/(z*ty)), true
}

// Orbit swings the camera around its target by azimuth (about the up axis)
// and elevation (toward the up axis) in radians, keeping its distance.
// Elevation stops just short of the poles.
func (c *Camera) Orbit(azimuth, elevation float32) {
	off := c.Position.Sub(c.Target)
	r := off.Length()
	if r == 0 {
		return
	}
	theta := math32.Atan2(off.X, off.Z) + azimuth
	phi := math32.Acos(math32.Clamp(off.Y/r, -1, 1)) - elevation
	phi = math32.Clamp(phi, 1e-3, math32.Pi-1e-3)
	s := math32.Sin(phi)
	c.Position = c.Target.Add(math32.Vec3(
		r*s*math32.Sin(theta),
		r*math32.Cos(phi),
		r*s*math32.Cos(theta),
	))
}

// Zoom scales the camera's distance to its target, clamped to [min, max].
func (c *Camera) Zoom(factor, minDist, maxDist float32) {
	off := c.Position.Sub(c.Target)
	r := off.Length()
	if r == 0 || factor <= 0 {
		return
	}
	nr := math32.Clamp(r*factor, minDist, maxDist)
	c.Position = c.Target.Add(off.MulScalar(nr / r))
}
