package ml

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
)

// RandomForest is a bagged ensemble of decision trees. With a fixed Seed and
// fixed input data, training is fully deterministic: tree i draws its
// bootstrap sample and feature subsets from a source seeded with Seed+i.
type RandomForest struct {
	NumTrees int            `json:"num_trees"`
	MaxDepth int            `json:"max_depth"`
	Seed     int64          `json:"seed"`
	Trees    []DecisionTree `json:"trees"`
}

// NewRandomForest creates an untrained forest.
func NewRandomForest(numTrees, maxDepth int, seed int64) *RandomForest {
	if numTrees <= 0 {
		numTrees = 100
	}
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &RandomForest{NumTrees: numTrees, MaxDepth: maxDepth, Seed: seed}
}

// Train fits every tree on a bootstrap sample of the data, with sqrt(p)
// features considered per split.
func (rf *RandomForest) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}

	n := len(features)
	mtry := int(math.Ceil(math.Sqrt(float64(len(features[0])))))

	rf.Trees = make([]DecisionTree, rf.NumTrees)
	for i := 0; i < rf.NumTrees; i++ {
		rng := rand.New(rand.NewSource(rf.Seed + int64(i)))

		sampleFeatures := make([][]float64, n)
		sampleLabels := make([]int, n)
		for j := 0; j < n; j++ {
			pick := rng.Intn(n)
			sampleFeatures[j] = features[pick]
			sampleLabels[j] = labels[pick]
		}

		tree := DecisionTree{MaxDepth: rf.MaxDepth}
		if err := tree.fit(sampleFeatures, sampleLabels, rng, mtry); err != nil {
			return err
		}
		rf.Trees[i] = tree
	}
	return nil
}

// Predict averages the positive-class probability across all trees and
// thresholds it at 0.5 for the label.
func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	if len(rf.Trees) == 0 {
		return 0, 0, ErrNotTrained
	}
	sum := 0.0
	for i := range rf.Trees {
		_, positive, err := rf.Trees[i].Predict(features)
		if err != nil {
			return 0, 0, err
		}
		sum += positive
	}
	probability := sum / float64(len(rf.Trees))
	label := 0
	if probability >= 0.5 {
		label = 1
	}
	return label, probability, nil
}

// Save writes the forest as JSON.
func (rf *RandomForest) Save(path string) error {
	if len(rf.Trees) == 0 {
		return ErrNotTrained
	}
	payload, err := json.Marshal(rf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Load restores a forest saved with Save.
func (rf *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, rf)
}
