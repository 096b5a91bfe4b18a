package ml

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
	"sort"
)

// TreeNode is one node of a flattened decision tree. Child fields index into
// the tree's node slice; leaves carry the positive-class fraction of the
// training samples that reached them.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	Positive   float64 `json:"positive"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree is a binary CART classifier over labels {0,1}, splitting on
// gini impurity.
type DecisionTree struct {
	MaxDepth int        `json:"max_depth"`
	Nodes    []TreeNode `json:"nodes"`
}

// NewDecisionTree creates an untrained tree with the given depth limit.
func NewDecisionTree(maxDepth int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return &DecisionTree{MaxDepth: maxDepth}
}

// Train fits the tree on the full feature set with a deterministic split
// search (no feature subsampling).
func (dt *DecisionTree) Train(features [][]float64, labels []int) error {
	return dt.fit(features, labels, nil, 0)
}

// fit grows the tree. When rng is non-nil, each split considers only mtry
// randomly chosen features; the RandomForest drives this path.
func (dt *DecisionTree) fit(features [][]float64, labels []int, rng *rand.Rand, mtry int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	for _, label := range labels {
		if label != 0 && label != 1 {
			return errors.New("labels must be binary (0 or 1)")
		}
	}

	dt.Nodes = nil
	dt.grow(features, labels, 0, rng, mtry)
	return nil
}

// Predict walks the tree and returns the leaf's majority label and
// positive-class fraction.
func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, 0, ErrNotTrained
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, node.Positive, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(dt.Nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
	}
}

// Save writes the tree as JSON.
func (dt *DecisionTree) Save(path string) error {
	if len(dt.Nodes) == 0 {
		return ErrNotTrained
	}
	payload, err := json.Marshal(dt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Load restores a tree saved with Save.
func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dt)
}

// grow appends the subtree for the given samples and returns its root index.
func (dt *DecisionTree) grow(features [][]float64, labels []int, depth int, rng *rand.Rand, mtry int) int {
	idx := len(dt.Nodes)
	dt.Nodes = append(dt.Nodes, TreeNode{})

	label, positive := summarize(labels)
	leaf := TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: label,
		Positive:   positive,
		IsLeaf:     true,
	}

	if depth >= dt.MaxDepth || isPure(labels) {
		dt.Nodes[idx] = leaf
		return idx
	}

	bestFeature, threshold, ok := findBestSplit(features, labels, rng, mtry)
	if !ok {
		dt.Nodes[idx] = leaf
		return idx
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		dt.Nodes[idx] = leaf
		return idx
	}

	left := dt.grow(leftFeatures, leftLabels, depth+1, rng, mtry)
	right := dt.grow(rightFeatures, rightLabels, depth+1, rng, mtry)

	dt.Nodes[idx] = TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  left,
		RightChild: right,
		ClassLabel: label,
		Positive:   positive,
		IsLeaf:     false,
	}
	return idx
}

// findBestSplit scans candidate features and thresholds for the lowest
// weighted gini impurity. Candidate thresholds are the quartiles of each
// feature's values, which keeps the scan cheap and deterministic.
func findBestSplit(features [][]float64, labels []int, rng *rand.Rand, mtry int) (int, float64, bool) {
	featureCount := len(features[0])
	candidates := candidateFeatures(featureCount, rng, mtry)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for _, featureIdx := range candidates {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		for _, threshold := range quartiles(values) {
			leftLabels, rightLabels := splitLabels(features, labels, featureIdx, threshold)
			if len(leftLabels) == 0 || len(rightLabels) == 0 {
				continue
			}
			impurity := weightedGini(leftLabels, rightLabels)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// candidateFeatures returns all feature indexes, or a random subset of size
// mtry when an rng is supplied.
func candidateFeatures(featureCount int, rng *rand.Rand, mtry int) []int {
	all := make([]int, featureCount)
	for i := range all {
		all[i] = i
	}
	if rng == nil || mtry <= 0 || mtry >= featureCount {
		return all
	}
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	subset := all[:mtry]
	sort.Ints(subset)
	return subset
}

// quartiles returns the 25th, 50th and 75th percentile of values, deduplicated.
func quartiles(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	for _, q := range []float64{0.25, 0.5, 0.75} {
		pos := int(q * float64(len(sorted)-1))
		v := sorted[pos]
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	var leftFeatures, rightFeatures [][]float64
	var leftLabels, rightLabels []int
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int, threshold float64) ([]int, []int) {
	var leftLabels, rightLabels []int
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int) float64 {
	leftWeight := float64(len(leftLabels))
	rightWeight := float64(len(rightLabels))
	total := leftWeight + rightWeight
	return (leftWeight/total)*gini(leftLabels) + (rightWeight/total)*gini(rightLabels)
}

func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	_, positive := summarize(labels)
	return 1 - positive*positive - (1-positive)*(1-positive)
}

// summarize returns the majority label and the positive-class fraction.
func summarize(labels []int) (int, float64) {
	if len(labels) == 0 {
		return 0, 0
	}
	ones := 0
	for _, label := range labels {
		if label == 1 {
			ones++
		}
	}
	positive := float64(ones) / float64(len(labels))
	if positive >= 0.5 {
		return 1, positive
	}
	return 0, positive
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
