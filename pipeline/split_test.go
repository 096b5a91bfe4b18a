package pipeline

import "testing"

func makeSamples(zeros, ones int) []Sample {
	var samples []Sample
	for i := 0; i < zeros; i++ {
		samples = append(samples, Sample{Features: []float64{float64(i)}, Label: 0})
	}
	for i := 0; i < ones; i++ {
		samples = append(samples, Sample{Features: []float64{float64(100 + i)}, Label: 1})
	}
	return samples
}

func TestStratifiedSplitRatios(t *testing.T) {
	samples := makeSamples(60, 40)

	train, test := StratifiedSplit(samples, 0.2, 42)
	if len(train)+len(test) != len(samples) {
		t.Fatalf("split lost samples: %d + %d != %d", len(train), len(test), len(samples))
	}

	countOnes := func(set []Sample) int {
		n := 0
		for _, s := range set {
			if s.Label == 1 {
				n++
			}
		}
		return n
	}

	// 20% of each class goes to test: 12 zeros, 8 ones.
	if got := countOnes(test); got != 8 {
		t.Fatalf("expected 8 positives in test, got %d", got)
	}
	if got := countOnes(train); got != 32 {
		t.Fatalf("expected 32 positives in train, got %d", got)
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	samples := makeSamples(30, 20)

	trainA, testA := StratifiedSplit(samples, 0.2, 42)
	trainB, testB := StratifiedSplit(samples, 0.2, 42)

	if len(trainA) != len(trainB) || len(testA) != len(testB) {
		t.Fatal("same seed produced different split sizes")
	}
	for i := range trainA {
		if trainA[i].Features[0] != trainB[i].Features[0] {
			t.Fatal("same seed produced different train ordering")
		}
	}
	for i := range testA {
		if testA[i].Features[0] != testB[i].Features[0] {
			t.Fatal("same seed produced different test ordering")
		}
	}
}

func TestMatrices(t *testing.T) {
	samples := []Sample{
		{Features: []float64{1, 2}, Label: 0},
		{Features: []float64{3, 4}, Label: 1},
	}
	features, labels := Matrices(samples)
	if len(features) != 2 || len(labels) != 2 {
		t.Fatalf("unexpected sizes: %d, %d", len(features), len(labels))
	}
	if features[1][0] != 3 || labels[1] != 1 {
		t.Fatal("matrices do not match samples")
	}
}
