package accel

import (
	"math"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// leafRange is an (offset, count) pair into BVH.Prims produced by a BFS
// walk of the node tree, for every leaf whose bounds the ray intersects.
type leafRange struct {
	offset, count int
}

// candidateLeaves performs a breadth-first traversal (matching the
// original's VecDeque-based walk) collecting leaf ranges whose bounds the
// ray intersects.
func (b *BVH) candidateLeaves(ray vecmath.Ray, tMax Float) []leafRange {
	if len(b.Nodes) == 0 {
		return nil
	}
	var ranges []leafRange
	queue := []int{0}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		node := b.Nodes[idx]
		if !node.Bounds.Hit(ray, 0.001, tMax) {
			continue
		}
		if node.IsLeaf() {
			ranges = append(ranges, leafRange{node.PrimitiveOffset, node.PrimitiveCount})
			continue
		}
		queue = append(queue, node.Children[0], node.Children[1])
	}
	return ranges
}

// CheckHit returns the nearest positive-t intersection across the whole
// structure, and the Prims index of the primitive struck (SkyIndex if the
// ray escaped the scene).
func (b *BVH) CheckHit(ray vecmath.Ray) (prim.SurfaceIntersection, int) {
	bestT := math.MaxFloat64
	bestIdx := SkyIndex
	var best prim.SurfaceIntersection

	for _, lr := range b.candidateLeaves(ray, math.MaxFloat64) {
		for i := lr.offset; i < lr.offset+lr.count; i++ {
			si, ok := b.Prims[i].Intersect(ray, 0.001, bestT)
			if !ok {
				continue
			}
			if si.Hit.T < bestT {
				bestT = si.Hit.T
				bestIdx = i
				best = si
			}
		}
	}
	return best, bestIdx
}

// CheckHitIndex tests whether the primitive at index is visible along
// ray (i.e. nothing closer occludes it), returning its intersection if
// so.
func (b *BVH) CheckHitIndex(ray vecmath.Ray, index int) (prim.SurfaceIntersection, bool) {
	target, ok := b.Prims[index].Intersect(ray, 0.001, math.MaxFloat64)
	if !ok {
		return prim.SurfaceIntersection{}, false
	}
	for _, lr := range b.candidateLeaves(ray, target.Hit.T) {
		for i := lr.offset; i < lr.offset+lr.count; i++ {
			if i == index {
				continue
			}
			if si, ok := b.Prims[i].Intersect(ray, 0.001, target.Hit.T); ok && si.Hit.T < target.Hit.T {
				return prim.SurfaceIntersection{}, false
			}
		}
	}
	return target, true
}

// GetObject returns the primitive stored at index.
func (b *BVH) GetObject(index int) prim.Primitive { return b.Prims[index] }

// GetSamplable returns the indices of primitives eligible for direct
// light sampling.
func (b *BVH) GetSamplable() []int { return b.SamplableIndices }

// GetPdfFromIndex returns the combined probability (light-selection times
// solid-angle pdf) of having picked the primitive at index via the direct
// light sampling strategy, used to MIS-weight a BSDF-sampled ray that
// happened to strike a light.
func (b *BVH) GetPdfFromIndex(shadingHit prim.Hit, lightHit prim.Hit, wi vecmath.Vec3, index int, skyCanSample bool) Float {
	n := len(b.SamplableIndices)
	if skyCanSample {
		n++
	}
	if n == 0 {
		return 0
	}
	obj := b.Prims[index]
	pdf := obj.ScatteringPDF(shadingHit, wi, lightHit.Point)
	return pdf / Float(n)
}
