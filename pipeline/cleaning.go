package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sample is one cleaned training record: the 13 features in schema order and
// a binary target.
type Sample struct {
	Features []float64
	Label    int
}

// CleaningStats tallies what happened to the raw records during cleaning.
type CleaningStats struct {
	Processed int64            `json:"processed"`
	Kept      int64            `json:"kept"`
	Dropped   int64            `json:"dropped"`
	DroppedBy map[string]int64 `json:"dropped_by"`
	LastClean time.Time        `json:"last_clean"`
}

// MinMinorityFraction is the dataset-quality floor: cleaning fails when the
// rarer class makes up less of the data than this.
const MinMinorityFraction = 0.25

// Clean drops rows with missing or unparseable cells (no imputation) and
// binarizes the target: any original label above zero becomes 1.
func Clean(records [][]string) ([]Sample, CleaningStats, error) {
	stats := CleaningStats{DroppedBy: make(map[string]int64)}

	var samples []Sample
	for _, record := range records {
		stats.Processed++

		sample, reason := cleanRecord(record)
		if reason != "" {
			stats.Dropped++
			stats.DroppedBy[reason]++
			continue
		}
		stats.Kept++
		samples = append(samples, sample)
	}
	stats.LastClean = time.Now()

	if len(samples) == 0 {
		return nil, stats, fmt.Errorf("no usable rows among %d records", stats.Processed)
	}
	return samples, stats, nil
}

// cleanRecord parses one raw row, returning a non-empty drop reason on failure.
func cleanRecord(record []string) (Sample, string) {
	if len(record) != datasetColumns {
		return Sample{}, "column_count"
	}

	values := make([]float64, datasetColumns)
	for i, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" || cell == "?" {
			return Sample{}, "missing_value"
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Sample{}, "parse_error"
		}
		values[i] = v
	}

	label := 0
	if values[datasetColumns-1] > 0 {
		label = 1
	}
	return Sample{Features: values[:datasetColumns-1], Label: label}, ""
}

// QualityCheck verifies the cleaned set still carries enough of the minority
// class to train on.
func QualityCheck(samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to check")
	}
	positives := 0
	for _, s := range samples {
		if s.Label == 1 {
			positives++
		}
	}
	minority := float64(positives) / float64(len(samples))
	if minority > 0.5 {
		minority = 1 - minority
	}
	if minority < MinMinorityFraction {
		return fmt.Errorf("minority class fraction %.3f below minimum %.2f", minority, MinMinorityFraction)
	}
	return nil
}
