package geometry

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ErrEmptyBVH is returned when a BVH is built from no objects
var ErrEmptyBVH = errors.New("cannot build a BVH from an empty object list")

// BVHNode is an internal node of the Bounding Volume Hierarchy.
// Children are either further nodes or the objects themselves.
type BVHNode struct {
	Left, Right core.Hittable
	Box         core.AABB
}

type boxedObject struct {
	object core.Hittable
	box    core.AABB
}

// NewBVH builds a hierarchy over objects for rays in [time0, time1].
// Each level splits along an axis chosen with random. Objects without a bounding
// box are kept beside the tree in a list and always tested.
func NewBVH(objects []core.Hittable, time0, time1 float64, random *rand.Rand) (core.Hittable, error) {
	if len(objects) == 0 {
		return nil, ErrEmptyBVH
	}

	var bounded []boxedObject
	var unbounded []core.Hittable
	for _, object := range objects {
		if box, ok := object.BoundingBox(time0, time1); ok {
			bounded = append(bounded, boxedObject{object: object, box: box})
		} else {
			unbounded = append(unbounded, object)
		}
	}

	if len(bounded) == 0 {
		return NewHittableList(unbounded...), nil
	}

	root, _ := buildBVH(bounded, random)
	if len(unbounded) == 0 {
		return root, nil
	}
	return NewHittableList(append([]core.Hittable{root}, unbounded...)...), nil
}

// buildBVH recursively builds the tree using a median split on a random axis
func buildBVH(objects []boxedObject, random *rand.Rand) (core.Hittable, core.AABB) {
	if len(objects) == 1 {
		return objects[0].object, objects[0].box
	}

	axis := random.Intn(3)
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].box.Min.Axis(axis) < objects[j].box.Min.Axis(axis)
	})

	mid := len(objects) / 2
	left, leftBox := buildBVH(objects[:mid], random)
	right, rightBox := buildBVH(objects[mid:], random)

	box := leftBox.Union(rightBox)
	return &BVHNode{Left: left, Right: right, Box: box}, box
}

// Hit returns the nearest hit in either subtree
func (n *BVHNode) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	if !n.Box.Hit(ray, tMin, tMax) {
		return nil, false
	}

	leftHit, hitLeft := n.Left.Hit(ray, tMin, tMax, random)
	if hitLeft {
		tMax = leftHit.T
	}
	if rightHit, hitRight := n.Right.Hit(ray, tMin, tMax, random); hitRight {
		return rightHit, true
	}
	return leftHit, hitLeft
}

// BoundingBox returns the union of the children's boxes
func (n *BVHNode) BoundingBox(_, _ float64) (core.AABB, bool) {
	return n.Box, true
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	Nodes    int // internal nodes
	Leaves   int // objects held by the tree
	MaxDepth int
}

// CollectBVHStats walks a hierarchy returned by NewBVH
func CollectBVHStats(root core.Hittable) BVHStats {
	var stats BVHStats
	collectStats(root, 0, &stats)
	return stats
}

func collectStats(h core.Hittable, depth int, stats *BVHStats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	switch node := h.(type) {
	case *BVHNode:
		stats.Nodes++
		collectStats(node.Left, depth+1, stats)
		collectStats(node.Right, depth+1, stats)
	case *HittableList:
		// Only the list NewBVH puts around the tree and unbounded objects
		for _, object := range node.Objects {
			collectStats(object, depth, stats)
		}
	default:
		stats.Leaves++
	}
}
