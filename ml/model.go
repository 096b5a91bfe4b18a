package ml

import "errors"

// ErrNotTrained is returned when Predict is called before any training data
// or serialized state has been loaded into the model.
var ErrNotTrained = errors.New("model not trained")

// Model is the prediction surface the serving path depends on. Predict takes
// a feature vector in schema order and returns the predicted class label and
// the positive-class probability.
type Model interface {
	Predict(features []float64) (int, float64, error)
}
