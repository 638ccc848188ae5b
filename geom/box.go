package geom

import "cogentcore.org/core/math32"

// Mesh is an indexed triangle mesh. Triangle t uses
// Indices[3t], Indices[3t+1], Indices[3t+2]; the first of those is the
// triangle's facet index.
type Mesh struct {
	Positions []math32.Vector3
	Indices   []int
}

// Triangles returns the triangle count.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners and facet index of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c math32.Vector3, facet int) {
	i := m.Indices[t*3:]
	return m.Positions[i[0]], m.Positions[i[1]], m.Positions[i[2]], i[0]
}

// BoundingRadius returns the largest vertex distance from the origin.
func (m *Mesh) BoundingRadius() float32 {
	var r2 float32
	for _, p := range m.Positions {
		r2 = max(r2, p.LengthSquared())
	}
	return math32.Sqrt(r2)
}

// Box builds an axis-aligned box centered at the origin with one quad per
// side, ordered +x, -x, +y, -y, +z, -z. Each quad contributes four
// vertices and two front-facing (counter-clockwise from outside)
// triangles, so facet indices are the even numbers 0..22.
func Box(width, height, depth float32) *Mesh {
	m := &Mesh{}
	m.plane(2, 1, 0, -1, -1, depth, height, width)
	m.plane(2, 1, 0, 1, -1, depth, height, -width)
	m.plane(0, 2, 1, 1, 1, width, depth, height)
	m.plane(0, 2, 1, 1, -1, width, depth, -height)
	m.plane(0, 1, 2, 1, -1, width, height, depth)
	m.plane(0, 1, 2, -1, -1, width, height, -depth)
	return m
}

// plane appends a quad spanning axes u and v at w = depth/2.
func (m *Mesh) plane(u, v, w int, udir, vdir, width, height, depth float32) {
	base := len(m.Positions)
	for iy := 0; iy < 2; iy++ {
		y := float32(iy)*height - height/2
		for ix := 0; ix < 2; ix++ {
			x := float32(ix)*width - width/2
			var c [3]float32
			c[u] = x * udir
			c[v] = y * vdir
			c[w] = depth / 2
			m.Positions = append(m.Positions, math32.Vec3(c[0], c[1], c[2]))
		}
	}
	m.Indices = append(m.Indices,
		base, base+2, base+1,
		base+2, base+3, base+1,
	)
}

// HSL converts hue, saturation and lightness in [0,1] to RGB in [0,1].
func HSL(h, s, l float32) (r, g, b float32) {
	h = h - math32.Floor(h)
	s = math32.Clamp(s, 0, 1)
	l = math32.Clamp(l, 0, 1)
	if s == 0 {
		return l, l, l
	}
	var p float32
	if l <= 0.5 {
		p = l * (1 + s)
	} else {
		p = l + s - l*s
	}
	q := 2*l - p
	return hue2rgb(q, p, h+1.0/3), hue2rgb(q, p, h), hue2rgb(q, p, h-1.0/3)
}

func hue2rgb(p, q, t float32) float32 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

// InstanceColors returns the per-element palette: evenly spaced hues at
// saturation 0.7 and lightness 0.6.
func InstanceColors(n int) [][3]float32 {
	out := make([][3]float32, n)
	for i := range out {
		r, g, b := HSL(float32(i)/float32(n), 0.7, 0.6)
		out[i] = [3]float32{r, g, b}
	}
	return out
}
