package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestScreenToRayCenter(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(75), 16.0/9.0, 0.1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	inv := proj.Mul4(view).Inv()

	ray := ScreenToRay(640, 360, 1280, 720, inv)

	if !approx(ray.Direction[0], 0) || !approx(ray.Direction[1], 0) || !approx(ray.Direction[2], -1) {
		t.Errorf("center ray should look down -Z, got %v", ray.Direction)
	}
	if !approx(ray.Origin[0], 0) || !approx(ray.Origin[1], 0) {
		t.Errorf("center ray origin should be on the axis, got %v", ray.Origin)
	}
	if !approx(ray.Direction.Len(), 1) {
		t.Errorf("direction should be normalized, got length %v", ray.Direction.Len())
	}
}

func TestScreenToRayTopLeftPointsUpLeft(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(75), 1, 0.1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	ray := ScreenToRay(0, 0, 800, 800, proj.Mul4(view).Inv())

	if ray.Direction[0] >= 0 || ray.Direction[1] <= 0 {
		t.Errorf("top-left pixel should aim up-left, got %v", ray.Direction)
	}
}

func TestIntersectPlane(t *testing.T) {
	tests := []struct {
		name  string
		ray   Ray
		plane Plane
		want  mgl32.Vec3
		hit   bool
	}{
		{
			name:  "straight down onto ground",
			ray:   Ray{Origin: mgl32.Vec3{1, 5, 2}, Direction: mgl32.Vec3{0, -1, 0}},
			plane: PlaneFromNormalAndPoint(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}),
			want:  mgl32.Vec3{1, 0, 2},
			hit:   true,
		},
		{
			name:  "plane behind origin",
			ray:   Ray{Origin: mgl32.Vec3{0, 5, 0}, Direction: mgl32.Vec3{0, 1, 0}},
			plane: PlaneFromNormalAndPoint(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}),
			hit:   false,
		},
		{
			name:  "parallel miss",
			ray:   Ray{Origin: mgl32.Vec3{0, 5, 0}, Direction: mgl32.Vec3{1, 0, 0}},
			plane: PlaneFromNormalAndPoint(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}),
			hit:   false,
		},
		{
			name:  "ray inside plane",
			ray:   Ray{Origin: mgl32.Vec3{3, 0, 0}, Direction: mgl32.Vec3{1, 0, 0}},
			plane: PlaneFromNormalAndPoint(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}),
			want:  mgl32.Vec3{3, 0, 0},
			hit:   true,
		},
		{
			name:  "camera facing plane through point",
			ray:   Ray{Origin: mgl32.Vec3{0.5, 0.5, 10}, Direction: mgl32.Vec3{0, 0, -1}},
			plane: PlaneFromNormalAndPoint(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{2, 2, 1}),
			want:  mgl32.Vec3{0.5, 0.5, 1},
			hit:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectPlane(tt.plane)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && !got.ApproxEqualThreshold(tt.want, 1e-4) {
				t.Errorf("point = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := mgl32.Vec3{-1, -1, 0}
	b := mgl32.Vec3{1, -1, 0}
	c := mgl32.Vec3{0, 1, 0}

	front := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if d, ok := front.IntersectTriangle(a, b, c); !ok || !approx(d, 5) {
		t.Errorf("front hit = %v (%v), want 5", ok, d)
	}

	back := Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}}
	if _, ok := back.IntersectTriangle(a, b, c); !ok {
		t.Error("back face should also be hit")
	}

	outside := Ray{Origin: mgl32.Vec3{2, 2, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if _, ok := outside.IntersectTriangle(a, b, c); ok {
		t.Error("ray outside triangle should miss")
	}

	away := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}}
	if _, ok := away.IntersectTriangle(a, b, c); ok {
		t.Error("triangle behind origin should miss")
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, -1})

	tests := []struct {
		name string
		ray  Ray
		t    float32
		hit  bool
	}{
		{name: "hit from front", ray: Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}, t: 4, hit: true},
		{name: "inside returns exit", ray: Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{1, 0, 0}}, t: 1, hit: true},
		{name: "miss", ray: Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{0, 0, -1}}, hit: false},
		{name: "behind", ray: Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}}, hit: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectAABB(box)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && !approx(got, tt.t) {
				t.Errorf("t = %v, want %v", got, tt.t)
			}
		})
	}
}

func TestRayTransformKeepsParameter(t *testing.T) {
	world := mgl32.Translate3D(5, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	ray := Ray{Origin: mgl32.Vec3{5, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}

	local := ray.Transform(world.Inv())
	// Local unit triangle at z=0 maps to world z=0.
	d, ok := local.IntersectTriangle(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})
	if !ok {
		t.Fatal("expected hit in local space")
	}
	if !approx(d, 10) {
		t.Errorf("parameter should match world distance 10, got %v", d)
	}
}

func TestAABBTransformAndUnion(t *testing.T) {
	box := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	moved := box.Transform(mgl32.Translate3D(10, 0, 0))
	if !moved.Center().ApproxEqual(mgl32.Vec3{10, 0, 0}) {
		t.Errorf("center = %v", moved.Center())
	}

	u := EmptyAABB().Union(box).Union(moved)
	if !u.Size().ApproxEqual(mgl32.Vec3{12, 2, 2}) {
		t.Errorf("union size = %v", u.Size())
	}
	if !EmptyAABB().IsEmpty() {
		t.Error("empty box should report empty")
	}
	if !EmptyAABB().Size().ApproxEqual(mgl32.Vec3{}) {
		t.Error("empty box should have zero size")
	}
}
