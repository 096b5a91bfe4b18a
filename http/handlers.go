package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"heartml/ml"
	"heartml/monitoring"
	"heartml/registry"
)

// ServiceVersion labels the API surface, not the model.
const ServiceVersion = "1.0.0"

const predictionCacheSize = 1024

// ArtifactResolver finds the newest artifact for startup load and reload.
type ArtifactResolver interface {
	Resolve(ctx context.Context) (*registry.Artifact, error)
}

// API holds the handlers' collaborators. The model handle, metrics registry
// and event hub are injected at construction and shared for the process
// lifetime.
type API struct {
	state    *ModelState
	metrics  *monitoring.Metrics
	hub      *monitoring.Hub
	resolver ArtifactResolver
	log      *zap.Logger

	// cache memoizes predictions per model version. Inference is a pure
	// read over an immutable model, so identical vectors always agree.
	cache *lru.Cache[string, cachedPrediction]
}

type cachedPrediction struct {
	label       int
	probability float64
}

// NewAPI wires the handler set.
func NewAPI(state *ModelState, metrics *monitoring.Metrics, hub *monitoring.Hub, resolver ArtifactResolver, log *zap.Logger) *API {
	cache, _ := lru.New[string, cachedPrediction](predictionCacheSize)
	return &API{
		state:    state,
		metrics:  metrics,
		hub:      hub,
		resolver: resolver,
		log:      log,
		cache:    cache,
	}
}

// Register mounts all routes on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /predict", a.handlePredict)
	mux.HandleFunc("GET /model-info", a.handleModelInfo)
	mux.HandleFunc("POST /admin/reload", a.handleReload)
	mux.HandleFunc("GET /ui", a.handleUI)
	if a.hub != nil {
		mux.HandleFunc("GET /ws/events", a.hub.ServeWS)
	}
}

// ApplyArtifact decodes the artifact and installs it as the current model.
func (a *API) ApplyArtifact(artifact *registry.Artifact) error {
	model, err := artifact.Decode()
	if err != nil {
		return err
	}
	a.state.Swap(model, artifact.Meta.Version, artifact.Meta.Accuracy)
	a.metrics.SetAccuracy(artifact.Meta.Accuracy)
	a.log.Info("model loaded",
		zap.String("version", artifact.Meta.Version),
		zap.String("model_type", artifact.Meta.ModelType),
		zap.Float64("accuracy", artifact.Meta.Accuracy))
	return nil
}

// PredictionResponse is the /predict response body.
type PredictionResponse struct {
	Prediction   int     `json:"prediction"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
	Timestamp    string  `json:"timestamp"`
}

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Heart Disease Prediction API",
		"version": ServiceVersion,
		"health":  "/health",
		"metrics": "served on the metrics port",
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := a.state.Loaded()
	status := "healthy"
	if !loaded {
		status = "unhealthy"
	}
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:      status,
		ModelLoaded: loaded,
		Version:     a.state.Version(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	if fieldErrs := ml.ValidateMap(raw); len(fieldErrs) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "validation failed",
			"details": fieldErrs,
		})
		return
	}

	model, version, ok := a.state.Current()
	if !ok {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "model not loaded",
		})
		return
	}

	vector := ml.VectorFromMap(raw)
	key := cacheKey(version, vector)

	start := time.Now()
	result, hit := a.cache.Get(key)
	if !hit {
		label, probability, err := model.Predict(vector)
		if err != nil {
			a.log.Error("prediction failed",
				zap.Error(err),
				zap.Duration("elapsed", time.Since(start)))
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error": "prediction failed",
			})
			return
		}
		result = cachedPrediction{label: label, probability: probability}
		a.cache.Add(key, result)
	}
	latency := time.Since(start)

	now := time.Now().UTC()
	a.metrics.ObservePrediction(latency)
	if a.hub != nil {
		a.hub.Publish(monitoring.PredictionEvent{
			Prediction:   result.label,
			Probability:  result.probability,
			ModelVersion: version,
			Timestamp:    now,
		})
	}
	a.log.Info("prediction",
		zap.Int("label", result.label),
		zap.Float64("probability", result.probability),
		zap.Duration("latency", latency),
		zap.Bool("cached", hit))

	respondJSON(w, http.StatusOK, PredictionResponse{
		Prediction:   result.label,
		Probability:  result.probability,
		ModelVersion: version,
		Timestamp:    now.Format(time.RFC3339),
	})
}

func (a *API) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	_, version, ok := a.state.Current()
	if !ok {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "model not loaded",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model_type": "random_forest",
		"version":    version,
		"accuracy":   a.state.Accuracy(),
		"features":   ml.FeatureNames(),
		"target":     "heart_disease (0: no disease, 1: disease)",
	})
}

func (a *API) handleReload(w http.ResponseWriter, r *http.Request) {
	if a.resolver == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "no artifact source configured",
		})
		return
	}

	artifact, err := a.resolver.Resolve(r.Context())
	if err != nil {
		a.log.Warn("reload failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "no artifact available",
		})
		return
	}
	if err := a.ApplyArtifact(artifact); err != nil {
		a.log.Error("artifact rejected", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "artifact could not be loaded",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "reloaded",
		"version": a.state.Version(),
	})
}

func cacheKey(version string, vector []float64) string {
	return fmt.Sprintf("%s|%v", version, vector)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
