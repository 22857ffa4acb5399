package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/sigconv/internal/model"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// createTestRun creates a successful run with minimal required fields.
func createTestRun(id, hash string, minute int) Run {
	return Run{
		ID:            id,
		RequestHash:   hash,
		Request:       `{"f":{"expr":"exp(-t**2)"}}`,
		Method:        string(model.MethodDiscrete),
		Status:        StatusOK,
		Points:        1999,
		Peak:          &Peak{T: 0, Value: 0.9226},
		Elapsed:       12 * time.Millisecond,
		EngineVersion: model.EngineVersion,
		CreatedAt:     testEpoch.Add(time.Duration(minute) * time.Minute),
	}
}
