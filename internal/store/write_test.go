package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/sigconv/internal/model"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	diff := 1.5e-4
	run := createTestRun("run-1", "hash-a", 0)
	run.Method = string(model.MethodBoth)
	run.MaxAbsDiff = &diff
	run.WarningCount = 2
	run.Warnings = []model.IntegrationWarning{
		{Index: 7, T: -1.25, Value: 0.5, AbsError: 1e-3, Evaluations: 1470, Reason: "maximum number of subdivisions reached"},
		{Index: 2, T: -3, Value: 0.1, AbsError: 2e-3, Evaluations: 1470, Reason: "maximum number of subdivisions reached"},
	}

	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}

	if got.Seq != 1 {
		t.Errorf("Seq = %d, want 1", got.Seq)
	}
	if got.RequestHash != "hash-a" || got.Method != "both" || got.Status != StatusOK {
		t.Errorf("unexpected run header: %+v", got)
	}
	if got.Peak == nil || got.Peak.Value != 0.9226 {
		t.Errorf("Peak = %+v, want value 0.9226", got.Peak)
	}
	if got.MaxAbsDiff == nil || *got.MaxAbsDiff != diff {
		t.Errorf("MaxAbsDiff = %v, want %g", got.MaxAbsDiff, diff)
	}
	if got.Elapsed != run.Elapsed {
		t.Errorf("Elapsed = %v, want %v", got.Elapsed, run.Elapsed)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
	if len(got.Warnings) != 2 {
		t.Fatalf("len(Warnings) = %d, want 2", len(got.Warnings))
	}
	if got.Warnings[0].Index != 2 || got.Warnings[1].Index != 7 {
		t.Errorf("warnings not in index order: %+v", got.Warnings)
	}
}

func TestWriteRun_FailedRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-err", "hash-b", 0)
	run.Status = StatusError
	run.ErrorCode = string(model.ErrCodeExpression)
	run.ErrorMessage = `EXPRESSION_ERROR: g.expr: cannot parse "undefined_symbol(t)"`
	run.Points = 0
	run.Peak = nil

	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-err")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Peak != nil {
		t.Errorf("failed run has peak %+v", got.Peak)
	}
	if got.MaxAbsDiff != nil {
		t.Errorf("failed run has max_abs_diff %v", *got.MaxAbsDiff)
	}
	if got.ErrorCode != "EXPRESSION_ERROR" || got.ErrorMessage != run.ErrorMessage {
		t.Errorf("error = %q %q", got.ErrorCode, got.ErrorMessage)
	}
	if got.Warnings != nil {
		t.Errorf("expected no warnings, got %+v", got.Warnings)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun("run-1", "hash-a", 0)
	if err := s.WriteRun(ctx, first); err != nil {
		t.Fatalf("first WriteRun() failed: %v", err)
	}

	second := createTestRun("run-1", "hash-other", 5)
	second.Warnings = []model.IntegrationWarning{{Index: 0, Reason: "x"}}
	if err := s.WriteRun(ctx, second); err != nil {
		t.Fatalf("duplicate WriteRun() should be a no-op, got: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.RequestHash != "hash-a" {
		t.Errorf("duplicate write replaced the run: hash = %q", got.RequestHash)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("duplicate write added warnings: %+v", got.Warnings)
	}
}

func TestWriteRun_InvalidStatus(t *testing.T) {
	s := createTestStore(t)

	run := createTestRun("run-1", "hash-a", 0)
	run.Status = "pending"
	if err := s.WriteRun(context.Background(), run); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestDeleteRun_CascadesWarnings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", "hash-a", 0)
	run.Warnings = []model.IntegrationWarning{{Index: 0, Reason: "r"}, {Index: 1, Reason: "r"}}
	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	if err := s.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("DeleteRun() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM integration_warnings").Scan(&count); err != nil {
		t.Fatalf("count warnings: %v", err)
	}
	if count != 0 {
		t.Errorf("%d warnings survived their run", count)
	}

	if err := s.DeleteRun(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRun() = %v, want ErrNotFound", err)
	}
}

func TestMarshalRequest_NoHTMLEscapingMap(t *testing.T) {
	got, err := MarshalRequest(map[string]string{"expr": "where((t>0)&(t<1), 1, 0)"})
	if err != nil {
		t.Fatalf("MarshalRequest() failed: %v", err)
	}
	want := `{"expr":"where((t>0)&(t<1), 1, 0)"}`
	if got != want {
		t.Errorf("MarshalRequest() = %s, want %s", got, want)
	}

	var back map[string]string
	if err := UnmarshalRequest(got, &back); err != nil {
		t.Fatalf("UnmarshalRequest() failed: %v", err)
	}
	if back["expr"] != "where((t>0)&(t<1), 1, 0)" {
		t.Errorf("round trip lost text: %q", back["expr"])
	}
}
