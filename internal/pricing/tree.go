package pricing

import "sort"

// TreeNode is one node of a regression tree. Leaves have no children and
// carry the mean target of their training samples.
type TreeNode struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Value     float64   `json:"v"`
	Left      *TreeNode `json:"l,omitempty"`
	Right     *TreeNode `json:"r,omitempty"`
}

// IsLeaf reports whether the node has no children
func (n *TreeNode) IsLeaf() bool {
	return n.Left == nil
}

// PredictRow walks the tree for one feature row
func (n *TreeNode) PredictRow(row []float64) float64 {
	node := n
	for !node.IsLeaf() {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeBuilder grows one CART regression tree by greedy variance reduction.
type treeBuilder struct {
	rows           [][]float64
	target         []float64
	maxDepth       int
	minSamplesLeaf int

	// accumulated SSE decrease per feature, normalized by the caller
	importances []float64
}

func (b *treeBuilder) build(indices []int, depth int) *TreeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range indices {
		sum += b.target[i]
		sumSq += b.target[i] * b.target[i]
	}
	n := float64(len(indices))
	mean := sum / n
	sse := sumSq - sum*sum/n

	node := &TreeNode{Value: mean}
	if depth >= b.maxDepth || len(indices) < 2*b.minSamplesLeaf || sse <= 1e-9 {
		return node
	}

	feature, threshold, gain := b.bestSplit(indices, sse)
	if feature < 0 {
		return node
	}
	b.importances[feature] += gain

	var left, right []int
	for _, i := range indices {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = b.build(left, depth+1)
	node.Right = b.build(right, depth+1)
	return node
}

// bestSplit scans every feature for the split that maximizes the decrease
// in summed squared error, honoring the minimum leaf size. Returns feature
// -1 when no valid split exists.
func (b *treeBuilder) bestSplit(indices []int, parentSSE float64) (int, float64, float64) {
	numFeatures := len(b.rows[indices[0]])
	n := len(indices)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 1e-9

	order := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool {
			return b.rows[order[i]][f] < b.rows[order[j]][f]
		})

		leftSum, leftSumSq := 0.0, 0.0
		totalSum, totalSumSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.target[i]
			totalSumSq += b.target[i] * b.target[i]
		}

		for k := 0; k < n-1; k++ {
			y := b.target[order[k]]
			leftSum += y
			leftSumSq += y * y

			if k+1 < b.minSamplesLeaf || n-k-1 < b.minSamplesLeaf {
				continue
			}
			// Tied values cannot be separated
			if b.rows[order[k]][f] == b.rows[order[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := float64(n - k - 1)
			rightSum := totalSum - leftSum
			rightSumSq := totalSumSq - leftSumSq
			leftSSE := leftSumSq - leftSum*leftSum/nl
			rightSSE := rightSumSq - rightSum*rightSum/nr

			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (b.rows[order[k]][f] + b.rows[order[k+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, 0
	}
	return bestFeature, bestThreshold, bestGain
}
