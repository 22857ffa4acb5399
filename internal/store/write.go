package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteRun records a run and its integration warnings in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same run id
// twice keeps the first record.
func (s *Store) WriteRun(ctx context.Context, run Run) (err error) {
	if run.Status != StatusOK && run.Status != StatusError {
		return fmt.Errorf("write run: invalid status %q", run.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var peakT, peakValue sql.NullFloat64
	if run.Peak != nil {
		peakT = sql.NullFloat64{Float64: run.Peak.T, Valid: true}
		peakValue = sql.NullFloat64{Float64: run.Peak.Value, Valid: true}
	}
	var diff sql.NullFloat64
	if run.MaxAbsDiff != nil {
		diff = sql.NullFloat64{Float64: *run.MaxAbsDiff, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, request_hash, request_json, method, status, error_code, error_message,
		 points, warning_count, peak_t, peak_value, max_abs_diff, elapsed_ns,
		 engine_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.RequestHash,
		run.Request,
		run.Method,
		run.Status,
		nullString(run.ErrorCode),
		nullString(run.ErrorMessage),
		run.Points,
		run.WarningCount,
		peakT,
		peakValue,
		diff,
		int64(run.Elapsed),
		run.EngineVersion,
		run.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	// Duplicate id: leave the existing warnings alone.
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	for _, w := range run.Warnings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO integration_warnings
			(run_id, idx, t, value, abs_error, evaluations, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, w.Index, w.T, w.Value, w.AbsError, w.Evaluations, w.Reason)
		if err != nil {
			return fmt.Errorf("write run: warning %d: %w", w.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, via the foreign key, its warnings.
// Returns ErrNotFound if the id does not exist.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
