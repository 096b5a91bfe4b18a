// Package pipeline turns the raw heart-disease dataset into training samples.
package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultDataURL is the processed Cleveland dataset: 14 columns, no header,
// "?" marks missing values.
const DefaultDataURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/heart-disease/processed.cleveland.data"

// datasetColumns is the 13 feature columns plus the target.
const datasetColumns = 14

var fetchClient = &http.Client{Timeout: 60 * time.Second}

// Fetch downloads the raw dataset and returns its records. Any transport or
// decode failure aborts the whole fetch; nothing partial is returned.
func Fetch(ctx context.Context, url string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}

	// Some UCI mirrors serve Latin-1 rather than UTF-8.
	reader := csv.NewReader(transform.NewReader(resp.Body, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset at %s is empty", url)
	}
	return records, nil
}
