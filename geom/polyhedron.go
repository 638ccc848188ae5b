package geom

import (
	"math"

	"cogentcore.org/core/math32"
)

type vec64 struct{ x, y, z float64 }

func (a vec64) lerp(b vec64, t float64) vec64 {
	return vec64{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t, a.z + (b.z-a.z)*t}
}

func (a vec64) scaleTo(r float64) vec64 {
	l := math.Sqrt(a.x*a.x + a.y*a.y + a.z*a.z)
	if l == 0 {
		return a
	}
	s := r / l
	return vec64{a.x * s, a.y * s, a.z * s}
}

var (
	icoT = (1 + math.Sqrt(5)) / 2

	icoVertices = []vec64{
		{-1, icoT, 0}, {1, icoT, 0}, {-1, -icoT, 0}, {1, -icoT, 0},
		{0, -1, icoT}, {0, 1, icoT}, {0, -1, -icoT}, {0, 1, -icoT},
		{icoT, 0, -1}, {icoT, 0, 1}, {-icoT, 0, -1}, {-icoT, 0, 1},
	}

	icoFaces = [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// Icosahedron returns the triangle soup (three vertices per face, not
// indexed) of an icosahedron of the given radius with each face subdivided
// into (detail+1)² triangles and every vertex pushed onto the sphere.
func Icosahedron(radius float32, detail int) []math32.Vector3 {
	if detail < 0 {
		detail = 0
	}
	var soup []vec64
	for _, f := range icoFaces {
		soup = subdivideFace(soup, icoVertices[f[0]], icoVertices[f[1]], icoVertices[f[2]], detail)
	}
	out := make([]math32.Vector3, len(soup))
	for i, v := range soup {
		v = v.scaleTo(float64(radius))
		out[i] = math32.Vec3(float32(v.x), float32(v.y), float32(v.z))
	}
	return out
}

func subdivideFace(soup []vec64, a, b, c vec64, detail int) []vec64 {
	cols := detail + 1
	grid := make([][]vec64, cols+1)
	for i := 0; i <= cols; i++ {
		aj := a.lerp(c, float64(i)/float64(cols))
		bj := b.lerp(c, float64(i)/float64(cols))
		rows := cols - i
		grid[i] = make([]vec64, rows+1)
		for j := 0; j <= rows; j++ {
			if j == 0 && i == cols {
				grid[i][j] = aj
			} else {
				grid[i][j] = aj.lerp(bj, float64(j)/float64(rows))
			}
		}
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < 2*(cols-i)-1; j++ {
			k := j / 2
			if j%2 == 0 {
				soup = append(soup, grid[i][k+1], grid[i+1][k], grid[i][k])
			} else {
				soup = append(soup, grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
			}
		}
	}
	return soup
}

// SculptureVertices returns the deduplicated vertices of the sculpture's
// icosahedron (radius 2.5, detail 2): one element per vertex.
func SculptureVertices() []math32.Vector3 {
	return Dedup(Icosahedron(2.5, 2))
}

// Plane is a half-space boundary: points p with Normal·p <= Offset are inside.
type Plane struct {
	Normal math32.Vector3
	Offset float32
}

// dodecahedron inradius / circumradius
const dodecaInRatio = 0.79465447229176612

// DodecahedronHull returns the 12 face planes of a dodecahedron with the
// given circumradius, centered at the origin. Face normals point at the
// vertices of the dual icosahedron.
func DodecahedronHull(radius float32) []Plane {
	planes := make([]Plane, len(icoVertices))
	for i, v := range icoVertices {
		n := v.scaleTo(1)
		planes[i] = Plane{
			Normal: math32.Vec3(float32(n.x), float32(n.y), float32(n.z)),
			Offset: radius * dodecaInRatio,
		}
	}
	return planes
}
