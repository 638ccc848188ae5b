// Package physics drives the sculpture's elements between their resting
// positions on the sphere and a scattered, bouncing configuration.
package physics

import (
	"math/rand"

	"cogentcore.org/core/math32"

	"github.com/cwbudde/algo-chime/geom"
)

// Mode is the driver's state.
type Mode int

const (
	Quiescent Mode = iota
	Exploded
)

func (m Mode) String() string {
	if m == Exploded {
		return "exploded"
	}
	return "quiescent"
}

// Tuning, per tick.
const (
	Bounds      = 7
	Restitution = 0.7
	Retract     = 0.12
	Jitter      = 0.35
	MinSpeed    = 0.7
	SpeedRange  = 1.2
)

var (
	Gravity = math32.Vec3(0, -0.012, 0)
	Spin    = geom.Euler{X: 0.02, Y: 0.025, Z: 0.018}
)

// Element is one particle. Rest never changes. Remnant is the free-flying
// position; it exists (HasRemnant) from the first exploded tick onward and
// is drawn back toward Rest while quiescent.
type Element struct {
	Rest       math32.Vector3
	Position   math32.Vector3
	Velocity   math32.Vector3
	Rotation   geom.Euler
	Remnant    math32.Vector3
	HasRemnant bool
}

// Driver owns the element arena. It is not safe for concurrent use.
type Driver struct {
	elems []Element
	mode  Mode
	spin  bool
	rng   *rand.Rand
}

// NewDriver places one element at each rest position with a random initial
// orientation in [0, π) per axis. A nil rng is seeded with 1.
func NewDriver(rest []math32.Vector3, rng *rand.Rand) *Driver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	d := &Driver{
		elems: make([]Element, len(rest)),
		spin:  true,
		rng:   rng,
	}
	for i, p := range rest {
		d.elems[i] = Element{
			Rest:     p,
			Position: p,
			Rotation: geom.Euler{
				X: rng.Float32() * math32.Pi,
				Y: rng.Float32() * math32.Pi,
				Z: rng.Float32() * math32.Pi,
			},
		}
	}
	return d
}

// Len returns the element count.
func (d *Driver) Len() int { return len(d.elems) }

// Mode returns the current state.
func (d *Driver) Mode() Mode { return d.mode }

// Element returns a copy of element i.
func (d *Driver) Element(i int) Element { return d.elems[i] }

// SpinEnabled reports whether Tick advances the simulation.
func (d *Driver) SpinEnabled() bool { return d.spin }

// SetSpinEnabled freezes or resumes both the per-element spin and the
// position integration.
func (d *Driver) SetSpinEnabled(on bool) { d.spin = on }

// Toggle flips the mode and returns the new one.
func (d *Driver) Toggle() Mode {
	if d.mode == Quiescent {
		d.Explode()
	} else {
		d.Reset()
	}
	return d.mode
}

// Explode gives every element an outward velocity: its rest direction
// jittered by up to ±Jitter per axis, renormalized, with speed in
// [MinSpeed, MinSpeed+SpeedRange).
func (d *Driver) Explode() {
	d.mode = Exploded
	for i := range d.elems {
		e := &d.elems[i]
		jitter := math32.Vec3(
			(d.rng.Float32()-0.5)*2*Jitter,
			(d.rng.Float32()-0.5)*2*Jitter,
			(d.rng.Float32()-0.5)*2*Jitter,
		)
		dir := e.Rest.Normal().Add(jitter).Normal()
		e.Velocity = dir.MulScalar(MinSpeed + d.rng.Float32()*SpeedRange)
	}
}

// Reset zeroes all velocities and starts the retraction.
func (d *Driver) Reset() {
	d.mode = Quiescent
	for i := range d.elems {
		d.elems[i].Velocity = math32.Vector3{}
	}
}

// Tick advances one frame. It reports whether any transform changed, which
// is false while spin is disabled.
func (d *Driver) Tick() bool {
	if !d.spin {
		return false
	}
	for i := range d.elems {
		e := &d.elems[i]
		e.Rotation = e.Rotation.Add(Spin)
		switch {
		case d.mode == Exploded:
			e.Velocity = e.Velocity.Add(Gravity)
			if !e.HasRemnant {
				e.Remnant = e.Rest
				e.HasRemnant = true
			}
			e.Remnant = e.Remnant.Add(e.Velocity)
			e.Remnant.X, e.Velocity.X = bounce(e.Remnant.X, e.Velocity.X)
			e.Remnant.Y, e.Velocity.Y = bounce(e.Remnant.Y, e.Velocity.Y)
			e.Remnant.Z, e.Velocity.Z = bounce(e.Remnant.Z, e.Velocity.Z)
			e.Position = e.Remnant
		case e.HasRemnant:
			e.Remnant = e.Remnant.Lerp(e.Rest, Retract)
			e.Position = e.Remnant
		default:
			e.Position = e.Rest
		}
	}
	return true
}

func bounce(p, v float32) (float32, float32) {
	switch {
	case p > Bounds:
		return Bounds, v * -Restitution
	case p < -Bounds:
		return -Bounds, v * -Restitution
	}
	return p, v
}

// Transforms writes each element's position and rotation into dst, growing
// it as needed, and returns it.
func (d *Driver) Transforms(dst []geom.Transform) []geom.Transform {
	if cap(dst) < len(d.elems) {
		dst = make([]geom.Transform, len(d.elems))
	}
	dst = dst[:len(d.elems)]
	for i := range d.elems {
		dst[i] = geom.Transform{Position: d.elems[i].Position, Rotation: d.elems[i].Rotation}
	}
	return dst
}
