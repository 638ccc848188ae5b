// Package hittest resolves a pointer position to the element and facet under
// it: a camera ray is cast into the scene and intersected with the instanced
// box mesh (or the HUD button's hull), nearest hit first.
package hittest

import (
	"cogentcore.org/core/math32"

	"github.com/cwbudde/algo-chime/geom"
)

// Hit is the nearest intersection of a pointer ray.
type Hit struct {
	Instance int
	Facet    int // first vertex index of the hit triangle
	Distance float32
	Point    math32.Vector3
}

// Target is anything a ray can be resolved against.
type Target interface {
	Intersect(r math32.Ray) (Hit, bool)
}

// TestHit casts a ray from cam through ndc and returns the nearest hit.
func TestHit(ndc math32.Vector2, cam *Camera, target Target) (Hit, bool) {
	if cam == nil || target == nil {
		return Hit{}, false
	}
	return target.Intersect(cam.Ray(ndc))
}

// Instanced is a mesh drawn once per transform, all under one group
// rotation. Only front faces are hit.
type Instanced struct {
	Mesh      *geom.Mesh
	Group     geom.Euler
	Instances []geom.Transform

	radius float32
}

// NewInstanced creates an instanced target sharing mesh.
func NewInstanced(mesh *geom.Mesh, instances []geom.Transform) *Instanced {
	return &Instanced{
		Mesh:      mesh,
		Instances: instances,
		radius:    mesh.BoundingRadius(),
	}
}

// Intersect implements Target.
func (in *Instanced) Intersect(r math32.Ray) (Hit, bool) {
	if in.Mesh == nil {
		return Hit{}, false
	}
	// Into group space; rotations preserve distance along the ray.
	gr := math32.Ray{Origin: in.Group.ApplyInverse(r.Origin), Dir: in.Group.ApplyInverse(r.Dir)}

	best := Hit{Distance: math32.Infinity}
	found := false
	for i, tr := range in.Instances {
		if _, ok := gr.IntersectSphere(math32.Sphere{Center: tr.Position, Radius: in.radius}); !ok {
			continue
		}
		q := tr.Rotation.Quat()
		inv := q.Inverse()
		lr := math32.Ray{
			Origin: gr.Origin.Sub(tr.Position).MulQuat(inv),
			Dir:    gr.Dir.MulQuat(inv),
		}
		for t := 0; t < in.Mesh.Triangles(); t++ {
			a, b, c, facet := in.Mesh.Triangle(t)
			p, ok := lr.IntersectTriangle(a, b, c, true)
			if !ok {
				continue
			}
			if d := p.DistanceTo(lr.Origin); d < best.Distance {
				best = Hit{Instance: i, Facet: facet, Distance: d}
				found = true
			}
		}
	}
	if !found {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

// Hull is a convex polyhedron given by its face planes, posed by a rotation
// about its center.
type Hull struct {
	Planes   []geom.Plane
	Position math32.Vector3
	Rotation geom.Euler
}

// Intersect implements Target. Facet is the index of the entry plane; a ray
// starting inside the hull hits at distance 0 with facet -1.
func (h *Hull) Intersect(r math32.Ray) (Hit, bool) {
	if len(h.Planes) == 0 {
		return Hit{}, false
	}
	q := h.Rotation.Quat()
	inv := q.Inverse()
	o := r.Origin.Sub(h.Position).MulQuat(inv)
	d := r.Dir.MulQuat(inv)

	tmin, tmax := float32(0), math32.Infinity
	entry := -1
	for i, p := range h.Planes {
		denom := p.Normal.Dot(d)
		dist := p.Offset - p.Normal.Dot(o)
		if denom == 0 {
			if dist < 0 {
				return Hit{}, false
			}
			continue
		}
		t := dist / denom
		if denom < 0 {
			if t > tmin {
				tmin = t
				entry = i
			}
		} else if t < tmax {
			tmax = t
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}
	return Hit{Instance: 0, Facet: entry, Distance: tmin, Point: r.At(tmin)}, true
}

// Tracker suppresses re-triggering while the pointer stays on one facet.
// A miss or a leave clears the memo so the next hit always triggers.
type Tracker struct {
	valid    bool
	instance int
	facet    int
}

// Move records a pointer-move result and reports whether it should trigger
// a note: true only for a hit on a different (instance, facet) pair than the
// previous move's.
func (t *Tracker) Move(h Hit, ok bool) bool {
	if !ok {
		t.valid = false
		return false
	}
	if t.valid && t.instance == h.Instance && t.facet == h.Facet {
		return false
	}
	t.valid = true
	t.instance = h.Instance
	t.facet = h.Facet
	return true
}

// Leave clears the memo.
func (t *Tracker) Leave() {
	t.valid = false
}

// Last returns the remembered (instance, facet) pair, if any.
func (t *Tracker) Last() (instance, facet int, ok bool) {
	return t.instance, t.facet, t.valid
}
