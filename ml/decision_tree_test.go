package ml

import (
	"path/filepath"
	"testing"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(2)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, positive, err := model.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if positive < 0 || positive > 1 {
		t.Fatalf("positive fraction out of range: %v", positive)
	}

	label, positive, err = model.Predict([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	if positive < 0.5 {
		t.Fatalf("expected positive fraction >= 0.5, got %v", positive)
	}
}

func TestDecisionTreeRejectsBadInput(t *testing.T) {
	model := NewDecisionTree(2)
	if err := model.Train(nil, nil); err == nil {
		t.Fatal("expected error for empty data")
	}
	if err := model.Train([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Fatal("expected error for size mismatch")
	}
	if err := model.Train([][]float64{{1}}, []int{2}); err == nil {
		t.Fatal("expected error for non-binary label")
	}
}

func TestDecisionTreePredictUntrained(t *testing.T) {
	model := &DecisionTree{}
	if _, _, err := model.Predict([]float64{1}); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	features := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tree.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := &DecisionTree{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want, wantProb, _ := model.Predict([]float64{0.85})
	got, gotProb, err := loaded.Predict([]float64{0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want || gotProb != wantProb {
		t.Fatalf("loaded model diverges: got (%d, %v), want (%d, %v)", got, gotProb, want, wantProb)
	}
}
