package bvh

import "sort"

// SAHConfig tunes the binned surface-area-heuristic builder.
type SAHConfig struct {
	MaxPrimsInNode int
	NBuckets       int
}

// DefaultSAHConfig matches the builder's default: up to 5 primitives per
// leaf, 64 SAH bins.
func DefaultSAHConfig() SAHConfig {
	return SAHConfig{MaxPrimsInNode: 5, NBuckets: 64}
}

// singlePrimSAHConfig is the variant the wide builder (4.D) requires: one
// primitive per leaf, so every binary leaf maps to exactly one triangle.
func singlePrimSAHConfig() SAHConfig {
	return SAHConfig{MaxPrimsInNode: 1, NBuckets: 64}
}

// BinaryNode is the builder-internal pointer-tree node (spec 4.3 "Binary BVH
// node"). Interior nodes have NPrimitives==0 and both children set; leaves
// have NPrimitives>0 and FirstPrimOffset pointing into the ordered-primitive
// output.
type BinaryNode struct {
	Bounds          Bounds
	Left, Right     *BinaryNode
	SplitAxis       int
	FirstPrimOffset int
	NPrimitives     int
}

func (n *BinaryNode) IsLeaf() bool { return n.NPrimitives > 0 }

type bucketInfo struct {
	count  int
	bounds Bounds
}

// BuildSAHTree recursively builds a binary BVH over prims using the binned
// SAH algorithm of spec 4.C. It returns the pointer-tree root and the
// permuted triangle-index order (orderedPrims[i] is the BuildPrimitive.Index
// of the primitive assigned to output position i); the caller is
// responsible for translating that into actual triangle array indices.
//
// prims is consumed (reordered in place) by the build; pass a copy if the
// caller needs the original order preserved.
func BuildSAHTree(prims []BuildPrimitive, cfg SAHConfig) (*BinaryNode, []int) {
	ordered := make([]int, 0, len(prims))
	if len(prims) == 0 {
		return nil, ordered
	}
	root := buildSAHRecursive(prims, cfg, &ordered)
	return root, ordered
}

func buildSAHRecursive(prims []BuildPrimitive, cfg SAHConfig, ordered *[]int) *BinaryNode {
	bounds := NewBounds()
	for _, p := range prims {
		bounds = bounds.Union(p.Bounds)
	}

	makeLeaf := func(ps []BuildPrimitive) *BinaryNode {
		first := len(*ordered)
		for _, p := range ps {
			*ordered = append(*ordered, p.Index)
		}
		return &BinaryNode{Bounds: bounds, FirstPrimOffset: first, NPrimitives: len(ps)}
	}

	if len(prims) == 1 {
		return makeLeaf(prims)
	}

	centroidBounds := NewBounds()
	for _, p := range prims {
		centroidBounds = centroidBounds.UnionPoint(p.Centroid)
	}
	dim := centroidBounds.MaximumExtent()

	if centroidBounds.Max[dim]-centroidBounds.Min[dim] < 0.01 {
		if len(prims) <= cfg.MaxPrimsInNode {
			return makeLeaf(prims)
		}
		return medianSplit(prims, dim, bounds, cfg, ordered)
	}

	if len(prims) <= 2 {
		return medianSplit(prims, dim, bounds, cfg, ordered)
	}

	return binnedSplit(prims, dim, bounds, centroidBounds, cfg, ordered)
}

func medianSplit(prims []BuildPrimitive, dim int, bounds Bounds, cfg SAHConfig, ordered *[]int) *BinaryNode {
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].Centroid[dim] < prims[j].Centroid[dim]
	})
	mid := len(prims) / 2
	left := buildSAHRecursive(prims[:mid], cfg, ordered)
	right := buildSAHRecursive(prims[mid:], cfg, ordered)
	return &BinaryNode{Bounds: bounds, Left: left, Right: right, SplitAxis: dim}
}

func binnedSplit(prims []BuildPrimitive, dim int, bounds, centroidBounds Bounds, cfg SAHConfig, ordered *[]int) *BinaryNode {
	n := cfg.NBuckets
	buckets := make([]bucketInfo, n)
	for i := range buckets {
		buckets[i].bounds = NewBounds()
	}

	bucketOf := func(p BuildPrimitive) int {
		b := int(float32(n) * centroidBounds.Offset(p.Centroid)[dim])
		if b == n {
			b = n - 1
		}
		if b < 0 {
			b = 0
		}
		return b
	}

	for _, p := range prims {
		b := bucketOf(p)
		buckets[b].count++
		buckets[b].bounds = buckets[b].bounds.Union(p.Bounds)
	}

	cost := make([]float32, n-1)
	totalSA := bounds.SurfaceArea()
	for i := 0; i < n-1; i++ {
		b0, b1 := NewBounds(), NewBounds()
		count0, count1 := 0, 0
		for j := 0; j <= i; j++ {
			b0 = b0.Union(buckets[j].bounds)
			count0 += buckets[j].count
		}
		for j := i + 1; j < n; j++ {
			b1 = b1.Union(buckets[j].bounds)
			count1 += buckets[j].count
		}
		sa := float32(0)
		if totalSA > 0 {
			sa = (float32(count0)*b0.SurfaceArea() + float32(count1)*b1.SurfaceArea()) / totalSA
		}
		cost[i] = 1 + sa
	}

	minCostSplit := 0
	minCost := cost[0]
	for i := 1; i < n-1; i++ {
		if cost[i] < minCost {
			minCost = cost[i]
			minCostSplit = i
		}
	}

	if minCost >= float32(len(prims)) && len(prims) <= cfg.MaxPrimsInNode {
		first := len(*ordered)
		for _, p := range prims {
			*ordered = append(*ordered, p.Index)
		}
		return &BinaryNode{Bounds: bounds, FirstPrimOffset: first, NPrimitives: len(prims)}
	}

	left, right := partitionByBucket(prims, bucketOf, minCostSplit)

	l := buildSAHRecursive(left, cfg, ordered)
	r := buildSAHRecursive(right, cfg, ordered)
	return &BinaryNode{Bounds: bounds, Left: l, Right: r, SplitAxis: dim}
}

// partitionByBucket reorders prims in place (Hoare-style) so that every
// primitive whose bucket is <= splitBucket comes first, and returns the two
// resulting slices (aliasing prims' backing array).
func partitionByBucket(prims []BuildPrimitive, bucketOf func(BuildPrimitive) int, splitBucket int) ([]BuildPrimitive, []BuildPrimitive) {
	i, j := 0, len(prims)-1
	for i <= j {
		for i <= j && bucketOf(prims[i]) <= splitBucket {
			i++
		}
		for i <= j && bucketOf(prims[j]) > splitBucket {
			j--
		}
		if i < j {
			prims[i], prims[j] = prims[j], prims[i]
			i++
			j--
		}
	}
	if i == 0 || i == len(prims) {
		// Degenerate: every primitive landed in the same half (can happen
		// with coincident centroids at the bucket boundary). Force an even
		// split so recursion still makes progress.
		i = len(prims) / 2
	}
	return prims[:i], prims[i:]
}
