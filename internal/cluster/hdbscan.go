package cluster

import (
	"math"
	"sort"
)

// Hierarchical density-based clustering with noise detection.
//
// The implementation follows the standard condensed-tree construction: core
// distances from the minSamples-th nearest neighbor, a minimum spanning tree
// over mutual-reachability distances, single-linkage agglomeration, tree
// condensing under minClusterSize, and excess-of-mass selection of the most
// stable flat partition. The hierarchy root is never selected, so a batch
// that forms one undivided dense blob comes back as all noise.
//
// Everything below is deterministic: neighbor search is brute force, and
// equal-weight MST edges break ties on point index.

// minSplitDistance guards the 1/distance lambda conversion against
// duplicate points merging at distance zero.
const minSplitDistance = 1e-10

type assignment struct {
	labels    []int
	probs     []float64
	outliers  []float64
	nClusters int
}

// runDensityClustering clusters the given points. Callers guarantee
// len(points) >= 2, minClusterSize >= 2 and 1 <= minSamples <= len(points).
func runDensityClustering(points [][]float64, minClusterSize, minSamples int, dist distanceFunc) assignment {
	n := len(points)
	if minClusterSize > n {
		minClusterSize = n
	}

	dists := pairwiseDistances(points, dist)
	core := coreDistances(dists, minSamples)
	edges := spanningTree(dists, core)
	tree := singleLinkage(edges, n)
	condensed := condenseTree(tree, n, minClusterSize)
	return selectAndLabel(condensed, n)
}

func pairwiseDistances(points [][]float64, dist distanceFunc) [][]float64 {
	n := len(points)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := dist(points[i], points[j])
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}

// coreDistances returns, per point, the distance to its minSamples-th
// nearest neighbor.
func coreDistances(dists [][]float64, minSamples int) []float64 {
	n := len(dists)
	k := minSamples
	if k > n-1 {
		k = n - 1
	}
	core := make([]float64, n)
	if k < 1 {
		return core
	}
	row := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		row = row[:0]
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, dists[i][j])
			}
		}
		sort.Float64s(row)
		core[i] = row[k-1]
	}
	return core
}

type edge struct {
	u, v int
	w    float64
}

// spanningTree builds the minimum spanning tree of the complete graph under
// mutual reachability: mreach(a,b) = max(core[a], core[b], dist(a,b)).
// Prim's algorithm over the dense matrix; ties go to the smaller index.
func spanningTree(dists [][]float64, core []float64) []edge {
	n := len(dists)
	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]edge, 0, n-1)
	current := 0
	inTree[0] = true
	for len(edges) < n-1 {
		next, nextW := -1, math.Inf(1)
		for v := 0; v < n; v++ {
			if inTree[v] {
				continue
			}
			w := dists[current][v]
			if core[current] > w {
				w = core[current]
			}
			if core[v] > w {
				w = core[v]
			}
			if w < best[v] {
				best[v] = w
				from[v] = current
			}
			if best[v] < nextW {
				nextW = best[v]
				next = v
			}
		}
		edges = append(edges, edge{u: from[next], v: next, w: nextW})
		inTree[next] = true
		current = next
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].w != edges[j].w {
			return edges[i].w < edges[j].w
		}
		if edges[i].u != edges[j].u {
			return edges[i].u < edges[j].u
		}
		return edges[i].v < edges[j].v
	})
	return edges
}

// linkageNode is one agglomeration in the single-linkage dendrogram.
// Leaves are point ids 0..n-1; internal nodes are n..2n-2 in merge order.
type linkageNode struct {
	left, right int
	dist        float64
	size        int
}

func singleLinkage(edges []edge, n int) []linkageNode {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	nodes := make([]linkageNode, n, 2*n-1)
	for i := 0; i < n; i++ {
		nodes[i] = linkageNode{left: -1, right: -1, size: 1}
	}
	// component root -> dendrogram node id
	top := make([]int, 2*n-1)
	for i := range top {
		top[i] = i
	}

	for _, e := range edges {
		ra, rb := find(e.u), find(e.v)
		id := len(nodes)
		nodes = append(nodes, linkageNode{
			left:  top[ra],
			right: top[rb],
			dist:  e.w,
			size:  nodes[top[ra]].size + nodes[top[rb]].size,
		})
		parent[ra] = rb
		top[find(rb)] = id
	}
	return nodes
}

// condensedTree holds the minClusterSize-condensed hierarchy. Point rows
// record where and at what density each point fell out; cluster rows record
// genuine splits into two sufficiently large children.
type condensedTree struct {
	// Per point: the cluster it fell out of and the lambda at that split.
	pointCluster []int
	pointLambda  []float64

	birth    []float64 // lambda at which each cluster appeared
	parents  []int     // cluster hierarchy; root has parent -1
	children [][]int
	// Accumulated (lambda - birth) * size over everything leaving each
	// cluster: the cluster's stability.
	stability []float64
}

func (t *condensedTree) newCluster(parent int, birth float64) int {
	id := len(t.birth)
	t.birth = append(t.birth, birth)
	t.parents = append(t.parents, parent)
	t.children = append(t.children, nil)
	t.stability = append(t.stability, 0)
	if parent >= 0 {
		t.children[parent] = append(t.children[parent], id)
	}
	return id
}

func condenseTree(nodes []linkageNode, n, minClusterSize int) *condensedTree {
	t := &condensedTree{
		pointCluster: make([]int, n),
		pointLambda:  make([]float64, n),
	}
	root := t.newCluster(-1, 0)

	// leavesOf collects the points under a dendrogram node.
	var leavesOf func(id int, out []int) []int
	leavesOf = func(id int, out []int) []int {
		if id < n {
			return append(out, id)
		}
		out = leavesOf(nodes[id].left, out)
		return leavesOf(nodes[id].right, out)
	}

	dropPoints := func(id, cluster int, lambda float64) {
		for _, p := range leavesOf(id, nil) {
			t.pointCluster[p] = cluster
			t.pointLambda[p] = lambda
			t.stability[cluster] += lambda - t.birth[cluster]
		}
	}

	type frame struct {
		node    int
		cluster int
	}
	stack := []frame{{node: len(nodes) - 1, cluster: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node < n {
			// Single point left in the cluster; it persists until the
			// density floor.
			dropPoints(f.node, f.cluster, t.birth[f.cluster])
			continue
		}

		node := nodes[f.node]
		d := node.dist
		if d < minSplitDistance {
			d = minSplitDistance
		}
		lambda := 1 / d

		leftSize := nodes[node.left].size
		rightSize := nodes[node.right].size
		switch {
		case leftSize >= minClusterSize && rightSize >= minClusterSize:
			// A true split: every point leaves the parent cluster here.
			lc := t.newCluster(f.cluster, lambda)
			rc := t.newCluster(f.cluster, lambda)
			t.stability[f.cluster] += (lambda - t.birth[f.cluster]) * float64(leftSize+rightSize)
			stack = append(stack, frame{node: node.left, cluster: lc}, frame{node: node.right, cluster: rc})
		case leftSize < minClusterSize && rightSize < minClusterSize:
			dropPoints(node.left, f.cluster, lambda)
			dropPoints(node.right, f.cluster, lambda)
		case leftSize < minClusterSize:
			dropPoints(node.left, f.cluster, lambda)
			stack = append(stack, frame{node: node.right, cluster: f.cluster})
		default:
			dropPoints(node.right, f.cluster, lambda)
			stack = append(stack, frame{node: node.left, cluster: f.cluster})
		}
	}
	return t
}
