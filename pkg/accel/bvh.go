// Package accel implements the bounding volume hierarchy: SAH/Middle/
// EqualCounts top-down construction over PrimitiveInfo records, and a
// breadth-first traversal returning (offset, count) leaf ranges.
package accel

import (
	"sort"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/rtlog"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// SkyIndex is the sentinel object index CheckHit returns when a ray leaves
// the scene without striking any primitive (the Rust original's
// usize::MAX).
const SkyIndex = -1

// SplitType selects the partitioning policy used at each internal node.
type SplitType int

const (
	SplitSAH SplitType = iota
	SplitMiddle
	SplitEqualCounts
)

const (
	numBuckets = 12
	maxInNode  = 255
)

// PrimitiveInfo is the builder-time record for a single primitive: its
// index into the original (unordered) primitive slice, its bounds, and
// bounds center.
type PrimitiveInfo struct {
	Index      int
	Min, Max   Vec3
	Center     Vec3
}

// Node is an array-based BVH node. Leaves store a contiguous
// (PrimitiveOffset, PrimitiveCount) range into BVH.Prims; internal nodes
// store indices of their two children in BVH.Nodes.
type Node struct {
	Bounds         vecmath.AABB
	Children       [2]int // -1 if this is a leaf
	PrimitiveOffset int
	PrimitiveCount  int
}

func (n Node) IsLeaf() bool { return n.Children[0] < 0 }

// BuildConfig configures the builder.
type BuildConfig struct {
	Split   SplitType
	Verbose bool
	Logger  rtlog.Logger
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{Split: SplitSAH, Logger: rtlog.NewStdLogger("bvh")}
}

// BVH is the acceleration structure over a flattened, builder-reordered
// slice of primitives.
type BVH struct {
	Nodes            []Node
	Prims            []prim.Primitive
	SamplableIndices []int // indices into Prims eligible for direct light sampling
}

// Build constructs a BVH over prims, reordering a copy of the slice in
// place to group spatially coherent leaves.
func Build(prims []prim.Primitive, cfg BuildConfig) *BVH {
	if len(prims) == 0 {
		return &BVH{}
	}
	if cfg.Logger == nil {
		cfg.Logger = rtlog.NewStdLogger("bvh")
	}

	infos := make([]PrimitiveInfo, len(prims))
	for i, p := range prims {
		box := p.BoundingBox()
		infos[i] = PrimitiveInfo{Index: i, Min: box.Min, Max: box.Max, Center: box.Center()}
	}

	b := &builder{split: cfg.Split}
	rootOrder := make([]int, 0, len(prims))
	b.build(infos, &rootOrder)

	ordered := make([]prim.Primitive, len(rootOrder))
	for i, idx := range rootOrder {
		ordered[i] = prims[idx]
	}

	var samplable []int
	for i, p := range ordered {
		if p.MaterialIsLight() {
			samplable = append(samplable, i)
		}
	}

	if cfg.Verbose {
		cfg.Logger.Printf("bvh: built %d nodes over %d primitives (%d samplable lights)",
			len(b.nodes), len(ordered), len(samplable))
	}

	return &BVH{Nodes: b.nodes, Prims: ordered, SamplableIndices: samplable}
}

type builder struct {
	split SplitType
	nodes []Node
}

// build recursively partitions infos, appending Nodes and appending the
// final primitive order (as original, unordered indices) to *order. It
// returns the index of the node it created.
func (b *builder) build(infos []PrimitiveInfo, order *[]int) int {
	bounds := boundsOf(infos)

	if len(infos) == 1 {
		offset := len(*order)
		*order = append(*order, infos[0].Index)
		b.nodes = append(b.nodes, Node{
			Bounds:          bounds,
			Children:        [2]int{-1, -1},
			PrimitiveOffset: offset,
			PrimitiveCount:  1,
		})
		return len(b.nodes) - 1
	}

	centroidBounds := centroidBoundsOf(infos)
	axis := centroidBounds.LongestAxis()
	extent := centroidBounds.Size().Component(axis)

	if extent < 100*vecmath.Epsilon {
		return b.emitLeaf(infos, bounds, order)
	}

	mid := b.split0(infos, axis, centroidBounds)
	if mid == 0 {
		return b.emitLeaf(infos, bounds, order)
	}

	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Bounds: bounds, Children: [2]int{-1, -1}})

	left := b.build(infos[:mid], order)
	right := b.build(infos[mid:], order)
	b.nodes[nodeIdx].Children = [2]int{left, right}
	return nodeIdx
}

func (b *builder) emitLeaf(infos []PrimitiveInfo, bounds vecmath.AABB, order *[]int) int {
	offset := len(*order)
	for _, info := range infos {
		*order = append(*order, info.Index)
	}
	b.nodes = append(b.nodes, Node{
		Bounds:          bounds,
		Children:        [2]int{-1, -1},
		PrimitiveOffset: offset,
		PrimitiveCount:  len(infos),
	})
	return len(b.nodes) - 1
}

// split0 partitions infos in place along axis according to b.split,
// returning the split index, or 0 to decline splitting (caller emits a
// single leaf).
func (b *builder) split0(infos []PrimitiveInfo, axis int, centroidBounds vecmath.AABB) int {
	switch b.split {
	case SplitMiddle:
		return splitMiddle(infos, axis, centroidBounds)
	case SplitEqualCounts:
		return splitEqualCounts(infos, axis)
	default:
		return splitSAH(infos, axis, centroidBounds)
	}
}

func splitMiddle(infos []PrimitiveInfo, axis int, centroidBounds vecmath.AABB) int {
	pointMid := (centroidBounds.Min.Component(axis) + centroidBounds.Max.Component(axis)) / 2
	mid := partition(infos, func(info PrimitiveInfo) bool {
		return info.Center.Component(axis) < pointMid
	})
	if mid == 0 || mid == len(infos) {
		return splitEqualCounts(infos, axis)
	}
	return mid
}

func splitEqualCounts(infos []PrimitiveInfo, axis int) int {
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Center.Component(axis) < infos[j].Center.Component(axis)
	})
	return len(infos) / 2
}

func splitSAH(infos []PrimitiveInfo, axis int, centroidBounds vecmath.AABB) int {
	if len(infos) <= 4 {
		return splitEqualCounts(infos, axis)
	}

	type bucket struct {
		count  int
		bounds vecmath.AABB
		has    bool
	}
	var buckets [numBuckets]bucket

	extent := centroidBounds.Size().Component(axis)
	cMin := centroidBounds.Min.Component(axis)

	bucketOf := func(info PrimitiveInfo) int {
		if extent == 0 {
			return 0
		}
		bi := int(Float(numBuckets) * (info.Center.Component(axis) - cMin) / extent)
		if bi >= numBuckets {
			bi = numBuckets - 1
		}
		if bi < 0 {
			bi = 0
		}
		return bi
	}

	for _, info := range infos {
		bi := bucketOf(info)
		box := vecmath.NewAABB(info.Min, info.Max)
		if !buckets[bi].has {
			buckets[bi] = bucket{count: 1, bounds: box, has: true}
		} else {
			buckets[bi].count++
			buckets[bi].bounds = vecmath.Union(buckets[bi].bounds, box)
		}
	}

	totalArea := centroidBounds.SurfaceArea()
	if totalArea == 0 {
		totalArea = 1
	}

	bestCost := Float(-1)
	bestSplit := 0
	for splitBucket := 0; splitBucket < numBuckets-1; splitBucket++ {
		var leftCount, rightCount int
		var leftBox, rightBox vecmath.AABB
		var leftHas, rightHas bool
		for i := 0; i <= splitBucket; i++ {
			if !buckets[i].has {
				continue
			}
			leftCount += buckets[i].count
			if !leftHas {
				leftBox, leftHas = buckets[i].bounds, true
			} else {
				leftBox = vecmath.Union(leftBox, buckets[i].bounds)
			}
		}
		for i := splitBucket + 1; i < numBuckets; i++ {
			if !buckets[i].has {
				continue
			}
			rightCount += buckets[i].count
			if !rightHas {
				rightBox, rightHas = buckets[i].bounds, true
			} else {
				rightBox = vecmath.Union(rightBox, buckets[i].bounds)
			}
		}
		if leftCount == 0 || rightCount == 0 {
			continue
		}
		cost := 0.125 + (Float(leftCount)*leftBox.SurfaceArea()+Float(rightCount)*rightBox.SurfaceArea())/totalArea
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			bestSplit = splitBucket
		}
	}

	if bestCost < 0 {
		return splitEqualCounts(infos, axis)
	}

	if len(infos) > maxInNode || bestCost < Float(len(infos)) {
		return partition(infos, func(info PrimitiveInfo) bool {
			return bucketOf(info) <= bestSplit
		})
	}
	return 0
}

// partition reorders infos in place so every element for which keep
// returns true precedes every element for which it returns false,
// returning the split index.
func partition(infos []PrimitiveInfo, keep func(PrimitiveInfo) bool) int {
	i, j := 0, len(infos)-1
	for i <= j {
		for i <= j && keep(infos[i]) {
			i++
		}
		for i <= j && !keep(infos[j]) {
			j--
		}
		if i < j {
			infos[i], infos[j] = infos[j], infos[i]
			i++
			j--
		}
	}
	return i
}

func boundsOf(infos []PrimitiveInfo) vecmath.AABB {
	box := vecmath.NewAABB(infos[0].Min, infos[0].Max)
	for _, info := range infos[1:] {
		box = vecmath.Union(box, vecmath.NewAABB(info.Min, info.Max))
	}
	return box
}

func centroidBoundsOf(infos []PrimitiveInfo) vecmath.AABB {
	min, max := infos[0].Center, infos[0].Center
	for _, info := range infos[1:] {
		min = vecmath.MinVec(min, info.Center)
		max = vecmath.MaxVec(max, info.Center)
	}
	// Centroids frequently coincide on one or more axes (a flat grid of
	// spheres, say); pad imperceptibly so NewAABB's degenerate-box guard
	// only fires on a genuinely malformed box, not an axis-aligned one.
	pad := Vec3{X: 1e-12, Y: 1e-12, Z: 1e-12}
	return vecmath.NewAABB(min.Sub(pad), max.Add(pad))
}
