package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// MockShape for testing
type MockShape struct {
	box     core.AABB
	bounded bool
	hitFn   func(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool)
}

func (m MockShape) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	return m.hitFn(ray, tMin, tMax)
}

func (m MockShape) BoundingBox(_, _ float64) (core.AABB, bool) {
	return m.box, m.bounded
}

func neverHit(core.Ray, float64, float64) (*core.HitRecord, bool) { return nil, false }

func TestBVH_EmptyListIsAnError(t *testing.T) {
	_, err := NewBVH(nil, 0, 1, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrEmptyBVH) {
		t.Errorf("Expected ErrEmptyBVH, got %v", err)
	}
}

func TestBVH_SingleObjectIsLeaf(t *testing.T) {
	sphere := NewSphere(core.Vec3{}, 1, testMaterial)
	root, err := NewBVH([]core.Hittable{sphere}, 0, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if root != core.Hittable(sphere) {
		t.Errorf("Expected the single object as the root, got %T", root)
	}
}

func TestBVH_UnboundedObjectsSitBesideTree(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, -1, -1), 1, testMaterial)
	spheres := []core.Hittable{
		NewSphere(core.NewVec3(-2, 0, 0), 0.5, testMaterial),
		NewSphere(core.NewVec3(2, 0, 0), 0.5, testMaterial),
		plane,
	}

	root, err := NewBVH(spheres, 0, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	list, ok := root.(*HittableList)
	if !ok {
		t.Fatalf("Expected a list root, got %T", root)
	}
	if len(list.Objects) != 2 {
		t.Fatalf("Expected tree plus plane, got %d objects", len(list.Objects))
	}
	if _, ok := list.Objects[0].(*BVHNode); !ok {
		t.Errorf("Expected first entry to be the tree, got %T", list.Objects[0])
	}

	// A ray that misses every sphere still finds the plane
	hit, ok := root.Hit(core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), 0), 0.001, math.Inf(1), nil)
	if !ok || math.Abs(hit.T-6) > 1e-9 {
		t.Errorf("Expected plane hit at t=6, got %v", hit)
	}

	stats := CollectBVHStats(root)
	if stats.Leaves != 3 || stats.Nodes != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestBVH_OnlyUnbounded(t *testing.T) {
	plane := NewPlane(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 0, -1), 1, testMaterial)
	root, err := NewBVH([]core.Hittable{plane}, 0, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := root.BoundingBox(0, 1); ok {
		t.Error("Expected an unbounded root")
	}
}

func TestBVH_BoxPruning(t *testing.T) {
	calls := 0
	counting := func(core.Ray, float64, float64) (*core.HitRecord, bool) {
		calls++
		return nil, false
	}

	var objects []core.Hittable
	for i := 0; i < 16; i++ {
		x := float64(i) * 3
		objects = append(objects, MockShape{
			box:     core.NewAABB(core.NewVec3(x, 0, 0), core.NewVec3(x+1, 1, 1)),
			bounded: true,
			hitFn:   counting,
		})
	}
	objects = append(objects, MockShape{box: core.AABB{}, bounded: true, hitFn: neverHit})

	root, err := NewBVH(objects, 0, 1, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Ray far above every box never reaches a leaf
	root.Hit(core.NewRay(core.NewVec3(0, 10, 0.5), core.NewVec3(1, 0, 0), 0), 0.001, math.Inf(1), nil)
	if calls != 0 {
		t.Errorf("Expected no leaf tests for a ray missing the root box, got %d", calls)
	}

	stats := CollectBVHStats(root)
	if stats.Leaves != 17 || stats.Nodes != 16 {
		t.Errorf("Expected 17 leaves and 16 internal nodes, got %+v", stats)
	}
	if stats.MaxDepth > 10 {
		t.Errorf("Median split should stay shallow, got depth %d", stats.MaxDepth)
	}
}

func TestBVH_MatchesLinearScan(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	var objects []core.Hittable
	for i := 0; i < 200; i++ {
		center := core.RandomVec3(random, -20, 20)
		switch i % 4 {
		case 0:
			objects = append(objects, NewSphere(center, core.RandomInRange(random, 0.2, 2), testMaterial))
		case 1:
			objects = append(objects, NewBlock(center, center.Add(core.RandomVec3(random, 0.1, 2)), testMaterial))
		case 2:
			objects = append(objects, NewTriangle(center, center.Add(core.RandomVec3(random, -2, 2)), center.Add(core.RandomVec3(random, -2, 2)), testMaterial))
		default:
			objects = append(objects, NewXZRect(center.X, center.X+1, center.Z, center.Z+1, center.Y, testMaterial, true))
		}
	}

	bvh, err := NewBVH(objects, 0, 1, random)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	linear := NewHittableList(objects...)

	for i := 0; i < 2000; i++ {
		origin := core.RandomVec3(random, -30, 30)
		target := core.RandomVec3(random, -10, 10)
		ray := core.NewRay(origin, target.Subtract(origin), 0)

		want, wantOK := linear.Hit(ray, 0.001, math.Inf(1), nil)
		got, gotOK := bvh.Hit(ray, 0.001, math.Inf(1), nil)
		if wantOK != gotOK {
			t.Fatalf("ray %d: linear hit=%v, bvh hit=%v", i, wantOK, gotOK)
		}
		if !wantOK {
			continue
		}
		if math.Abs(want.T-got.T) > 1e-9 || want.Point.Subtract(got.Point).Length() > 1e-6 {
			t.Fatalf("ray %d: linear t=%f, bvh t=%f", i, want.T, got.T)
		}
	}
}

func TestBVH_FlatBlocksMatchLinearScan(t *testing.T) {
	objects := []core.Hittable{
		NewBlock(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 1), testMaterial),
		NewBlock(core.NewVec3(2, 0, 0), core.NewVec3(3, 0, 1), testMaterial),
		NewBlock(core.NewVec3(4, 0, 0), core.NewVec3(5, 1, 1), testMaterial),
	}
	bvh, err := NewBVH(objects, 0, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	linear := NewHittableList(objects...)

	for _, x := range []float64{0.5, 2.5, 4.5} {
		ray := core.NewRay(core.NewVec3(x, 5, 0.5), core.NewVec3(0, -1, 0), 0)
		want, wantOK := linear.Hit(ray, 0.001, math.Inf(1), nil)
		got, gotOK := bvh.Hit(ray, 0.001, math.Inf(1), nil)
		if !wantOK || !gotOK {
			t.Fatalf("x=%v: linear hit=%v, bvh hit=%v", x, wantOK, gotOK)
		}
		if math.Abs(want.T-got.T) > 1e-9 {
			t.Errorf("x=%v: linear t=%f, bvh t=%f", x, want.T, got.T)
		}
	}
}
