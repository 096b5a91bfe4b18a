package http

import (
	"sync"

	"heartml/ml"
)

// ModelState is the single owned handle to the currently loaded model. It is
// constructed once, injected into the handlers, and replaced only by an
// explicit reload; request handling never mutates it.
type ModelState struct {
	mu       sync.RWMutex
	model    ml.Model
	version  string
	accuracy float64
}

// NewModelState returns an empty handle: the service is degraded until the
// first successful Swap.
func NewModelState() *ModelState {
	return &ModelState{version: "unknown"}
}

// Swap installs a new model under the single-writer lock.
func (s *ModelState) Swap(model ml.Model, version string, accuracy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.version = version
	s.accuracy = accuracy
}

// Current returns the loaded model and its version; ok is false in degraded
// mode.
func (s *ModelState) Current() (model ml.Model, version string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.version, s.model != nil
}

// Loaded reports whether a model is available.
func (s *ModelState) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Version returns the loaded model's version, or "unknown" when degraded.
func (s *ModelState) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Accuracy returns the loaded model's holdout accuracy.
func (s *ModelState) Accuracy() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accuracy
}
