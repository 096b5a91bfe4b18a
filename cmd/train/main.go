// Command train runs the offline training pipeline: fetch the dataset, clean
// it, fit a random forest and publish one new artifact.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"heartml/logging"
	"heartml/ml"
	"heartml/pipeline"
	"heartml/registry"
)

func main() {
	dataURL := flag.String("data-url", pipeline.DefaultDataURL, "dataset URL")
	modelDir := flag.String("model-dir", "models", "artifact output directory")
	cachePath := flag.String("cache", "data/dataset.db", "dataset cache database")
	offline := flag.Bool("offline", false, "train from the dataset cache instead of fetching")
	trees := flag.Int("trees", 100, "number of trees")
	maxDepth := flag.Int("max-depth", 10, "max tree depth")
	seed := flag.Int64("seed", 42, "random seed")
	testRatio := flag.Float64("test-ratio", 0.2, "holdout fraction")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel})
	defer logger.Sync()

	records, err := loadRecords(logger, *dataURL, *cachePath, *offline)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	logger.Info("dataset loaded", zap.Int("rows", len(records)))

	samples, stats, err := pipeline.Clean(records)
	if err != nil {
		logger.Fatal("cleaning failed", zap.Error(err))
	}
	logger.Info("dataset cleaned",
		zap.Int64("kept", stats.Kept),
		zap.Int64("dropped", stats.Dropped),
		zap.Any("dropped_by", stats.DroppedBy))

	if err := pipeline.QualityCheck(samples); err != nil {
		logger.Fatal("dataset quality check failed", zap.Error(err))
	}

	train, test := pipeline.StratifiedSplit(samples, *testRatio, *seed)
	trainX, trainY := pipeline.Matrices(train)
	testX, testY := pipeline.Matrices(test)

	forest := ml.NewRandomForest(*trees, *maxDepth, *seed)
	if err := forest.Train(trainX, trainY); err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}

	accuracy := evaluate(forest, testX, testY)
	logger.Info("holdout evaluation",
		zap.Float64("accuracy", accuracy),
		zap.Int("test_samples", len(testY)))

	now := time.Now()
	meta := registry.Meta{
		ModelType: "random_forest",
		Version:   registry.NewVersion(now),
		Accuracy:  accuracy,
		TrainedAt: now.UTC(),
		Features:  ml.FeatureNames(),
	}
	path, err := registry.Save(*modelDir, meta, forest)
	if err != nil {
		logger.Fatal("failed to save artifact", zap.Error(err))
	}

	logger.Info("artifact saved",
		zap.String("path", path),
		zap.String("version", meta.Version),
		zap.Float64("accuracy", accuracy))
}

// loadRecords fetches the dataset (refreshing the cache) or, with -offline,
// reads the last cached fetch.
func loadRecords(logger *zap.Logger, dataURL, cachePath string, offline bool) ([][]string, error) {
	store, err := pipeline.OpenStorage(cachePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if offline {
		logger.Info("training from dataset cache", zap.String("cache", cachePath))
		return store.LoadRows()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, err := pipeline.Fetch(ctx, dataURL)
	if err != nil {
		return nil, err
	}
	if err := store.SaveRows(dataURL, records); err != nil {
		logger.Warn("failed to refresh dataset cache", zap.Error(err))
	}
	return records, nil
}

func evaluate(model ml.Model, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}
	correct := 0
	for i, features := range testX {
		label, _, err := model.Predict(features)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testX))
}
