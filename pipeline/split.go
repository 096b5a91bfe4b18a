package pipeline

import "math/rand"

// StratifiedSplit partitions samples into train and test sets, shuffling and
// splitting each class separately so the class ratio carries over to both
// sides. The same seed over the same samples yields the same split.
func StratifiedSplit(samples []Sample, testRatio float64, seed int64) (train, test []Sample) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	byLabel := map[int][]Sample{}
	for _, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, label := range []int{0, 1} {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		cut := len(group) - int(float64(len(group))*testRatio)
		train = append(train, group[:cut]...)
		test = append(test, group[cut:]...)
	}
	return train, test
}

// Matrices unpacks samples into the feature matrix and label slice the model
// API takes.
func Matrices(samples []Sample) ([][]float64, []int) {
	features := make([][]float64, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		features[i] = s.Features
		labels[i] = s.Label
	}
	return features, labels
}
