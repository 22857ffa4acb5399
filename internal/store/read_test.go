package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() = %v, want ErrNotFound", err)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Insert out of created_at order; listing follows insertion (seq).
	for i, id := range []string{"a", "b", "c"} {
		if err := s.WriteRun(ctx, createTestRun(id, "h", 10-i)); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	for i, want := range []string{"c", "b", "a"} {
		if runs[i].ID != want {
			t.Errorf("runs[%d].ID = %s, want %s", i, runs[i].ID, want)
		}
	}
}

func TestListRuns_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fixtures := []Run{
		createTestRun("r1", "hash-a", 0),
		createTestRun("r2", "hash-b", 1),
		createTestRun("r3", "hash-a", 2),
		createTestRun("r4", "hash-a", 3),
	}
	for _, r := range fixtures {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", r.ID, err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"limit", ListOptions{Limit: 2}, []string{"r4", "r3"}},
		{"hash", ListOptions{RequestHash: "hash-a"}, []string{"r4", "r3", "r1"}},
		{"since", ListOptions{Since: testEpoch.Add(2 * time.Minute)}, []string{"r4", "r3"}},
		{"hash and limit", ListOptions{RequestHash: "hash-a", Limit: 1}, []string{"r4"}},
		{"no match", ListOptions{RequestHash: "hash-z"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListRuns() failed: %v", err)
			}
			if runs == nil {
				t.Fatal("ListRuns() returned nil, want empty slice")
			}
			got := make([]string, len(runs))
			for i, r := range runs {
				got[i] = r.ID
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestListRuns_OmitsWarnings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("r1", "h", 0)
	run.WarningCount = 1
	run.Warnings = nil
	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs[0].WarningCount != 1 || runs[0].Warnings != nil {
		t.Errorf("unexpected warnings in listing: %+v", runs[0])
	}
}
