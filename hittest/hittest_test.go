package hittest

import (
	"math"
	"testing"

	"cogentcore.org/core/math32"

	"github.com/cwbudde/algo-chime/geom"
)

func frontCamera(z float32) *Camera {
	return &Camera{
		Position: math32.Vec3(0, 0, z),
		Up:       math32.Vec3(0, 1, 0),
		FovY:     60,
		Aspect:   1,
		Near:     0.1,
		Far:      100,
	}
}

// offCenter sits just off the screen center so the ray avoids the diagonal
// shared by a face's two triangles.
var offCenter = math32.Vec2(0.01, 0.02)

func TestViewportNDC(t *testing.T) {
	vp := Viewport{X: 10, Y: 20, Width: 200, Height: 100}
	for _, tc := range []struct {
		x, y float32
		want math32.Vector2
	}{
		{10, 20, math32.Vec2(-1, 1)},
		{210, 120, math32.Vec2(1, -1)},
		{110, 70, math32.Vec2(0, 0)},
	} {
		got := vp.NDC(tc.x, tc.y)
		if got != tc.want {
			t.Fatalf("NDC(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
	if got := (Viewport{}).NDC(5, 5); got != (math32.Vector2{}) {
		t.Fatalf("empty viewport NDC = %v", got)
	}
}

func TestCenterRayHitsFrontFace(t *testing.T) {
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{{}})
	hit, ok := TestHit(offCenter, frontCamera(5), target)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Instance != 0 {
		t.Fatalf("instance = %d", hit.Instance)
	}
	// +z is the fifth side: vertices 16..19.
	if hit.Facet != 16 && hit.Facet != 18 {
		t.Fatalf("facet = %d, want a +z facet", hit.Facet)
	}
	if math.Abs(float64(hit.Distance)-4.75) > 1e-3 {
		t.Fatalf("distance = %f, want 4.75", hit.Distance)
	}
	if math.Abs(float64(hit.Point.Z)-0.25) > 1e-4 {
		t.Fatalf("point = %v", hit.Point)
	}
}

func TestBackFacesCulled(t *testing.T) {
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{{}})
	r := math32.Ray{Origin: math32.Vec3(0, 0, 0), Dir: math32.Vec3(0, 0, -1)}
	if _, ok := target.Intersect(r); ok {
		t.Fatal("ray from inside the box should only see back faces")
	}
}

func TestNearestInstanceWins(t *testing.T) {
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{
		{Position: math32.Vec3(0, 0, 0)},
		{Position: math32.Vec3(0, 0, 2)},
		{Position: math32.Vec3(0, 0, -2)},
	})
	hit, ok := TestHit(offCenter, frontCamera(5), target)
	if !ok || hit.Instance != 1 {
		t.Fatalf("hit = %+v ok=%v, want instance 1", hit, ok)
	}
}

func TestMissReturnsNone(t *testing.T) {
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{{}})
	hit, ok := TestHit(math32.Vec2(0.9, 0.9), frontCamera(5), target)
	if ok {
		t.Fatalf("unexpected hit %+v", hit)
	}
	if hit != (Hit{}) {
		t.Fatalf("miss should return the zero hit, got %+v", hit)
	}
}

func TestGroupRotationHonored(t *testing.T) {
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{
		{Position: math32.Vec3(2, 0, 0)},
	})
	cam := frontCamera(5)
	if _, ok := TestHit(offCenter, cam, target); ok {
		t.Fatal("unrotated instance sits off-axis")
	}
	// A quarter turn about y carries (2,0,0) to (0,0,-2).
	target.Group = geom.Euler{Y: math.Pi / 2}
	hit, ok := TestHit(offCenter, cam, target)
	if !ok {
		t.Fatal("rotated instance should be on-axis")
	}
	if math.Abs(float64(hit.Distance)-6.75) > 1e-2 {
		t.Fatalf("distance = %f, want 6.75", hit.Distance)
	}
}

func TestElementRotationChangesFacet(t *testing.T) {
	mesh := geom.Box(0.5, 0.5, 0.5)
	target := NewInstanced(mesh, []geom.Transform{{}})
	cam := frontCamera(5)
	before, _ := TestHit(offCenter, cam, target)
	// Half turn about y shows the -z side to the camera.
	target.Instances[0].Rotation = geom.Euler{Y: math.Pi}
	after, ok := TestHit(offCenter, cam, target)
	if !ok {
		t.Fatal("expected a hit")
	}
	if after.Facet != 20 && after.Facet != 22 {
		t.Fatalf("facet after half turn = %d, want a -z facet (before %d)", after.Facet, before.Facet)
	}
}

func TestHitsLieOnRotatedBox(t *testing.T) {
	rot := geom.Euler{X: 0.3, Y: -1.1, Z: 2.0}
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), []geom.Transform{{Rotation: rot}})
	cam := frontCamera(5)
	hits := 0
	for i := 0; i <= 40; i++ {
		for j := 0; j <= 40; j++ {
			ndc := math32.Vec2(float32(i)/40*0.2-0.1, float32(j)/40*0.2-0.1)
			hit, ok := TestHit(ndc, cam, target)
			if !ok {
				continue
			}
			hits++
			r := cam.Ray(ndc)
			if d := r.Origin.DistanceTo(hit.Point); math.Abs(float64(d-hit.Distance)) > 1e-4 {
				t.Fatalf("ndc %v: distance %f but point is %f away", ndc, hit.Distance, d)
			}
			local := rot.ApplyInverse(hit.Point)
			face := max(math32.Abs(local.X), math32.Abs(local.Y), math32.Abs(local.Z))
			if math.Abs(float64(face)-0.25) > 1e-4 {
				t.Fatalf("ndc %v: hit %v is off the box surface", ndc, local)
			}
		}
	}
	if hits == 0 {
		t.Fatal("no ray hit the box")
	}
}

func TestProjectRayRoundTrip(t *testing.T) {
	cam := NewSceneCamera(16.0 / 9)
	p := math32.Vec3(1.2, -0.7, 0.4)
	ndc, ok := cam.Project(p)
	if !ok {
		t.Fatal("point should be in front of the camera")
	}
	r := cam.Ray(ndc)
	if miss := r.DistanceToPoint(p); miss > 1e-4 {
		t.Fatalf("ray passes %f from the projected point", miss)
	}
	if _, ok := cam.Project(math32.Vec3(0, 2, 20)); ok {
		t.Fatal("point behind the camera projected")
	}
}

func TestSculptureNearestElementHit(t *testing.T) {
	verts := geom.SculptureVertices()
	instances := make([]geom.Transform, len(verts))
	for i, v := range verts {
		instances[i] = geom.Transform{Position: v, Rotation: geom.Euler{X: 0.1 * float32(i), Y: 0.2, Z: 0.05 * float32(i)}}
	}
	target := NewInstanced(geom.Box(0.5, 0.5, 0.5), instances)
	cam := NewSceneCamera(1)

	nearest, best := -1, float32(math.MaxFloat32)
	for i, v := range verts {
		if d := v.Sub(cam.Position).LengthSquared(); d < best {
			nearest, best = i, d
		}
	}
	ndc, _ := cam.Project(verts[nearest])
	hit, ok := TestHit(ndc, cam, target)
	if !ok || hit.Instance != nearest {
		t.Fatalf("hit %+v ok=%v, want instance %d", hit, ok, nearest)
	}
	if hit.Facet%2 != 0 || hit.Facet > 22 {
		t.Fatalf("facet %d", hit.Facet)
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := NewSceneCamera(1)
	r0 := cam.Position.DistanceTo(cam.Target)
	cam.Orbit(0.7, 0.3)
	cam.Orbit(-2, -5)
	r1 := cam.Position.DistanceTo(cam.Target)
	if math.Abs(float64(r1-r0)) > 1e-3 {
		t.Fatalf("orbit changed distance %f -> %f", r0, r1)
	}
	cam.Zoom(10, 2, 20)
	if r := cam.Position.DistanceTo(cam.Target); math.Abs(float64(r)-20) > 1e-3 {
		t.Fatalf("zoom distance %f, want clamp to 20", r)
	}
}

func TestHUDHull(t *testing.T) {
	hull := &Hull{Planes: geom.DodecahedronHull(0.016)}
	cam := NewHUDCamera()
	hit, ok := TestHit(math32.Vec2(0, 0), cam, hull)
	if !ok {
		t.Fatal("center ray should hit the button")
	}
	if hit.Facet < 0 || hit.Distance <= 0 || hit.Distance > 0.08 {
		t.Fatalf("hit %+v", hit)
	}
	if _, ok := TestHit(math32.Vec2(0.9, 0.9), cam, hull); ok {
		t.Fatal("corner ray should miss the button")
	}
	hull.Rotation = geom.Euler{X: 0.4, Y: 1.3}
	if _, ok := TestHit(math32.Vec2(0, 0), cam, hull); !ok {
		t.Fatal("rotation should not move the button off-center")
	}
}

func TestTrackerDebounce(t *testing.T) {
	var tr Tracker
	h := Hit{Instance: 4, Facet: 6}
	if !tr.Move(h, true) {
		t.Fatal("first hit should trigger")
	}
	if tr.Move(h, true) {
		t.Fatal("identical consecutive hit should not trigger")
	}
	if !tr.Move(Hit{Instance: 4, Facet: 8}, true) {
		t.Fatal("new facet should trigger")
	}
	if !tr.Move(Hit{Instance: 5, Facet: 8}, true) {
		t.Fatal("new instance should trigger")
	}

	tr.Leave()
	if _, _, ok := tr.Last(); ok {
		t.Fatal("leave should clear the memo")
	}
	if !tr.Move(Hit{Instance: 5, Facet: 8}, true) {
		t.Fatal("re-entry after leave should trigger")
	}

	if tr.Move(Hit{}, false) {
		t.Fatal("miss should not trigger")
	}
	if !tr.Move(Hit{Instance: 5, Facet: 8}, true) {
		t.Fatal("hit after a miss should trigger")
	}
}
