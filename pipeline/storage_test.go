package pipeline

import (
	"path/filepath"
	"testing"
)

func TestStorageRoundTrip(t *testing.T) {
	store, err := OpenStorage(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	records := [][]string{validRow("0"), validRow("2")}
	if err := store.SaveRows(DefaultDataURL, records); err != nil {
		t.Fatalf("save rows: %v", err)
	}

	loaded, err := store.LoadRows()
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), len(loaded))
	}
	for i := range records {
		if len(loaded[i]) != len(records[i]) {
			t.Fatalf("row %d: expected %d cells, got %d", i, len(records[i]), len(loaded[i]))
		}
		for j := range records[i] {
			if loaded[i][j] != records[i][j] {
				t.Fatalf("row %d cell %d: expected %q, got %q", i, j, records[i][j], loaded[i][j])
			}
		}
	}
}

func TestStorageSaveReplacesPreviousFetch(t *testing.T) {
	store, err := OpenStorage(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	if err := store.SaveRows(DefaultDataURL, [][]string{validRow("0"), validRow("1")}); err != nil {
		t.Fatalf("save rows: %v", err)
	}
	if err := store.SaveRows(DefaultDataURL, [][]string{validRow("3")}); err != nil {
		t.Fatalf("save rows: %v", err)
	}

	loaded, err := store.LoadRows()
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected replacement fetch with 1 row, got %d", len(loaded))
	}
}

func TestStorageLoadEmpty(t *testing.T) {
	store, err := OpenStorage(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadRows(); err == nil {
		t.Fatal("expected error for empty cache")
	}
}
