// Package registry stores and resolves trained model artifacts.
//
// An artifact is one JSON document wrapping the serialized model and its
// metadata. Every training run writes a versioned file, overwrites the
// "latest" pointer file and refreshes a plain-text version marker; artifacts
// are never mutated after being written.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"heartml/ml"
)

const (
	// LatestFile is the overwritten pointer to the newest artifact.
	LatestFile = "model-latest.json"
	// VersionMarker holds the current version string as plain text.
	VersionMarker = "model_version.txt"

	modelPrefix = "model"
)

// Meta describes a trained model artifact.
type Meta struct {
	ModelType string    `json:"model_type"`
	Version   string    `json:"version"`
	Accuracy  float64   `json:"accuracy"`
	TrainedAt time.Time `json:"trained_at"`
	Features  []string  `json:"features"`
}

// Artifact is the canonical on-disk layout: metadata plus the model payload.
type Artifact struct {
	Meta  Meta            `json:"meta"`
	Model json.RawMessage `json:"model"`
}

// Decode instantiates the model carried by the artifact.
func (a *Artifact) Decode() (ml.Model, error) {
	switch a.Meta.ModelType {
	case "random_forest":
		model := &ml.RandomForest{}
		if err := json.Unmarshal(a.Model, model); err != nil {
			return nil, fmt.Errorf("decode random forest: %w", err)
		}
		return model, nil
	case "decision_tree":
		model := &ml.DecisionTree{}
		if err := json.Unmarshal(a.Model, model); err != nil {
			return nil, fmt.Errorf("decode decision tree: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", a.Meta.ModelType)
	}
}

// Save writes a new artifact under dir: the versioned file first, then the
// latest pointer, then the version marker. Each file goes through a temp
// file and rename so no reader ever sees a half-written document.
func Save(dir string, meta Meta, model interface{}) (string, error) {
	if meta.Version == "" {
		return "", fmt.Errorf("artifact version is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	raw, err := json.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("serialize model: %w", err)
	}
	payload, err := json.MarshalIndent(Artifact{Meta: meta, Model: raw}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize artifact: %w", err)
	}

	versioned := filepath.Join(dir, fmt.Sprintf("%s-%s.json", modelPrefix, meta.Version))
	if err := writeAtomic(versioned, payload); err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(dir, LatestFile), payload); err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(dir, VersionMarker), []byte(meta.Version)); err != nil {
		return "", err
	}
	return versioned, nil
}

// Load reads one artifact file.
func Load(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if artifact.Meta.Version == "" {
		return nil, fmt.Errorf("artifact %s has no version", path)
	}
	return &artifact, nil
}

// LoadLatest reads the latest-pointer artifact under dir.
func LoadLatest(dir string) (*Artifact, error) {
	return Load(filepath.Join(dir, LatestFile))
}

// NewVersion builds a version string of the form
// {UTC timestamp}-{short git revision}. A failed revision lookup falls back
// to a constant placeholder instead of failing the run.
func NewVersion(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102150405"), gitShortSHA())
}

func gitShortSHA() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "nogit"
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "nogit"
	}
	return sha
}

func writeAtomic(path string, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o644)
}
