package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"heartml/ml"
)

func trainedForest(t *testing.T) *ml.RandomForest {
	t.Helper()
	features := [][]float64{{0.1, 0.1}, {0.2, 0.2}, {0.8, 0.8}, {0.9, 0.9}}
	labels := []int{0, 0, 1, 1}
	forest := ml.NewRandomForest(5, 3, 42)
	if err := forest.Train(features, labels); err != nil {
		t.Fatalf("train: %v", err)
	}
	return forest
}

func testMeta(version string) Meta {
	return Meta{
		ModelType: "random_forest",
		Version:   version,
		Accuracy:  0.85,
		TrainedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Features:  ml.FeatureNames(),
	}
}

func TestSaveWritesAllFiles(t *testing.T) {
	dir := t.TempDir()
	forest := trainedForest(t)

	versioned, err := Save(dir, testMeta("20260301120000-abc1234"), forest)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if filepath.Base(versioned) != "model-20260301120000-abc1234.json" {
		t.Fatalf("unexpected versioned file name: %s", versioned)
	}
	for _, name := range []string{filepath.Base(versioned), LatestFile, VersionMarker} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	marker, err := os.ReadFile(filepath.Join(dir, VersionMarker))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if string(marker) != "20260301120000-abc1234" {
		t.Fatalf("unexpected marker content: %q", marker)
	}
}

func TestLoadLatestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	forest := trainedForest(t)
	meta := testMeta("20260301120000-abc1234")

	if _, err := Save(dir, meta, forest); err != nil {
		t.Fatalf("save: %v", err)
	}

	artifact, err := LoadLatest(dir)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if artifact.Meta.Version != meta.Version {
		t.Fatalf("version mismatch: %q", artifact.Meta.Version)
	}
	if artifact.Meta.Accuracy != meta.Accuracy {
		t.Fatalf("accuracy mismatch: %v", artifact.Meta.Accuracy)
	}
	if len(artifact.Meta.Features) != 13 {
		t.Fatalf("expected 13 features in meta, got %d", len(artifact.Meta.Features))
	}

	model, err := artifact.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantLabel, wantProb, _ := forest.Predict([]float64{0.85, 0.85})
	gotLabel, gotProb, err := model.Predict([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if gotLabel != wantLabel || gotProb != wantProb {
		t.Fatalf("decoded model diverges: got (%d, %v), want (%d, %v)", gotLabel, gotProb, wantLabel, wantProb)
	}
}

func TestSaveOverwritesLatest(t *testing.T) {
	dir := t.TempDir()
	forest := trainedForest(t)

	if _, err := Save(dir, testMeta("v1-nogit"), forest); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Save(dir, testMeta("v2-nogit"), forest); err != nil {
		t.Fatalf("save: %v", err)
	}

	artifact, err := LoadLatest(dir)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if artifact.Meta.Version != "v2-nogit" {
		t.Fatalf("latest pointer not overwritten: %q", artifact.Meta.Version)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	artifact := &Artifact{Meta: Meta{ModelType: "svm", Version: "x"}}
	if _, err := artifact.Decode(); err == nil {
		t.Fatal("expected error for unsupported model type")
	}
}

func TestNewVersionShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	version := NewVersion(now)
	if !strings.HasPrefix(version, "20260301120000-") {
		t.Fatalf("unexpected version shape: %q", version)
	}
	if strings.TrimPrefix(version, "20260301120000-") == "" {
		t.Fatalf("version has no revision component: %q", version)
	}
}
