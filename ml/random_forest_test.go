package ml

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"
)

// syntheticDataset builds a separable two-cluster dataset with 13 features,
// matching the serving schema width.
func syntheticDataset(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, 13)
		base := 0.2
		if i%2 == 1 {
			base = 0.8
			labels[i] = 1
		}
		for j := range row {
			row[j] = base + rng.Float64()*0.1
		}
		features[i] = row
	}
	return features, labels
}

func TestRandomForestTrainPredict(t *testing.T) {
	features, labels := syntheticDataset(60, 7)

	forest := NewRandomForest(25, 5, 42)
	if err := forest.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low := make([]float64, 13)
	high := make([]float64, 13)
	for i := range low {
		low[i] = 0.2
		high[i] = 0.85
	}

	label, probability, err := forest.Predict(low)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if probability < 0 || probability > 1 {
		t.Fatalf("probability out of range: %v", probability)
	}

	label, probability, err = forest.Predict(high)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	if probability < 0.5 {
		t.Fatalf("expected probability >= 0.5, got %v", probability)
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	features, labels := syntheticDataset(40, 11)

	first := NewRandomForest(10, 4, 42)
	if err := first.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewRandomForest(10, 4, 42)
	if err := second.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical seeds and data produced different forests")
	}
}

func TestRandomForestPredictUntrained(t *testing.T) {
	forest := NewRandomForest(10, 4, 42)
	if _, _, err := forest.Predict(make([]float64, 13)); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}
