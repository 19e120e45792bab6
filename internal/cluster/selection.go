package cluster

import "sort"

// selectAndLabel picks the most stable flat partition of the condensed tree
// (excess of mass, root excluded) and derives per-point labels, membership
// probabilities and outlier scores.
func selectAndLabel(t *condensedTree, n int) assignment {
	total := len(t.birth)
	selected := make([]bool, total)
	subtree := make([]float64, total)

	// Children always have larger ids than their parent, so reverse
	// creation order visits children first. A cluster is kept when its own
	// stability meets or beats the best its subtree can do; keeping it
	// dethrones everything below.
	for c := total - 1; c >= 1; c-- {
		var childSum float64
		for _, ch := range t.children[c] {
			childSum += subtree[ch]
		}
		if len(t.children[c]) == 0 || t.stability[c] >= childSum {
			selected[c] = true
			subtree[c] = t.stability[c]
			deselectDescendants(t, c, selected)
		} else {
			subtree[c] = childSum
		}
	}

	// Dense labels 0..K-1 in cluster-id order.
	labelOf := make(map[int]int)
	var ids []int
	for c := 1; c < total; c++ {
		if selected[c] {
			ids = append(ids, c)
		}
	}
	sort.Ints(ids)
	for i, c := range ids {
		labelOf[c] = i
	}

	// Maximum point fall-out lambda per cluster subtree: the density at
	// which each branch finally evaporates.
	subtreeMax := make([]float64, total)
	for p := 0; p < n; p++ {
		c := t.pointCluster[p]
		if t.pointLambda[p] > subtreeMax[c] {
			subtreeMax[c] = t.pointLambda[p]
		}
	}
	for c := total - 1; c >= 1; c-- {
		parent := t.parents[c]
		if subtreeMax[c] > subtreeMax[parent] {
			subtreeMax[parent] = subtreeMax[c]
		}
	}

	out := assignment{
		labels:    make([]int, n),
		probs:     make([]float64, n),
		outliers:  make([]float64, n),
		nClusters: len(ids),
	}
	for p := 0; p < n; p++ {
		fellFrom := t.pointCluster[p]

		// Membership: the nearest selected ancestor-or-self of the
		// cluster the point fell out of. Points that detached above every
		// selected cluster are noise.
		label := -1
		for c := fellFrom; c >= 0; c = t.parents[c] {
			if selected[c] {
				label = labelOf[c]
				// Probability is the point's density relative to the
				// density at which its cluster finally evaporates.
				if death := subtreeMax[c]; death > 0 {
					prob := t.pointLambda[p] / death
					if prob > 1 {
						prob = 1
					}
					out.probs[p] = prob
				} else {
					out.probs[p] = 1
				}
				break
			}
		}
		out.labels[p] = label

		// GLOSH-style outlier score against the branch the point last
		// belonged to: early fall-outs score near 1, core points near 0.
		if m := subtreeMax[fellFrom]; m > 0 {
			score := (m - t.pointLambda[p]) / m
			if score < 0 {
				score = 0
			}
			out.outliers[p] = score
		}
	}
	return out
}

func deselectDescendants(t *condensedTree, c int, selected []bool) {
	stack := append([]int(nil), t.children[c]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		selected[cur] = false
		stack = append(stack, t.children[cur]...)
	}
}
