// Package geom builds the sculpture's geometry: the subdivided icosahedron
// whose vertices place the elements, the per-element box mesh, the HUD
// dodecahedron hull, and the rotations that pose them.
package geom

import (
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
)

// Euler is an XYZ-order rotation in radians.
type Euler struct {
	X, Y, Z float32
}

// Add returns the component-wise sum.
func (e Euler) Add(o Euler) Euler {
	return Euler{e.X + o.X, e.Y + o.Y, e.Z + o.Z}
}

// Vector returns the angles as a vector, the form math32 takes them in.
func (e Euler) Vector() math32.Vector3 {
	return math32.Vec3(e.X, e.Y, e.Z)
}

// Quat returns the rotation Rx·Ry·Rz as a unit quaternion.
func (e Euler) Quat() math32.Quat {
	return math32.NewQuatEuler(e.Vector())
}

// Apply rotates v.
func (e Euler) Apply(v math32.Vector3) math32.Vector3 {
	return v.MulQuat(e.Quat())
}

// ApplyInverse undoes the rotation on v.
func (e Euler) ApplyInverse(v math32.Vector3) math32.Vector3 {
	q := e.Quat()
	return v.MulQuat(q.Inverse())
}

// Transform places an element: rotate, then translate.
type Transform struct {
	Position math32.Vector3
	Rotation Euler
}

// VertexKey formats a vertex with three decimals per axis. Negative zero
// formats as zero.
func VertexKey(v math32.Vector3) string {
	var sb strings.Builder
	for i, c := range [3]float32{v.X, v.Y, v.Z} {
		if i > 0 {
			sb.WriteByte(',')
		}
		s := strconv.FormatFloat(float64(c), 'f', 3, 32)
		if s == "-0.000" {
			s = "0.000"
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Dedup returns the unique vertices in first-seen order.
func Dedup(verts []math32.Vector3) []math32.Vector3 {
	seen := make(map[string]struct{}, len(verts))
	out := make([]math32.Vector3, 0, len(verts)/4)
	for _, v := range verts {
		k := VertexKey(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
