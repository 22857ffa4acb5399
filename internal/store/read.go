package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/sigconv/internal/model"
)

const runColumns = `
	seq, id, request_hash, request_json, method, status, error_code, error_message,
	points, warning_count, peak_t, peak_value, max_abs_diff, elapsed_ns,
	engine_version, created_at`

// GetRun returns one run with its integration warnings.
// Returns ErrNotFound if the id does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	warnings, err := s.readWarnings(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Warnings = warnings
	return &run, nil
}

// ListRuns returns runs newest first, without their warnings.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if opts.RequestHash != "" {
		where = append(where, "request_hash = ?")
		args = append(args, opts.RequestHash)
	}
	if !opts.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.Since.UTC().Format(timeFormat))
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// readWarnings returns a run's warnings in output-axis order.
func (s *Store) readWarnings(ctx context.Context, runID string) ([]model.IntegrationWarning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, t, value, abs_error, evaluations, reason
		FROM integration_warnings
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var warnings []model.IntegrationWarning
	for rows.Next() {
		var w model.IntegrationWarning
		if err := rows.Scan(&w.Index, &w.T, &w.Value, &w.AbsError, &w.Evaluations, &w.Reason); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warnings: %w", err)
	}
	return warnings, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                Run
		errCode, errMsg    sql.NullString
		peakT, peakV, diff sql.NullFloat64
		elapsedNs          int64
		createdAt          string
	)
	err := sc.Scan(
		&run.Seq, &run.ID, &run.RequestHash, &run.Request, &run.Method, &run.Status,
		&errCode, &errMsg, &run.Points, &run.WarningCount, &peakT, &peakV, &diff,
		&elapsedNs, &run.EngineVersion, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.ErrorCode = errCode.String
	run.ErrorMessage = errMsg.String
	if peakT.Valid && peakV.Valid {
		run.Peak = &Peak{T: peakT.Float64, Value: peakV.Float64}
	}
	if diff.Valid {
		d := diff.Float64
		run.MaxAbsDiff = &d
	}
	run.Elapsed = time.Duration(elapsedNs)
	if run.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: created_at: %w", err)
	}
	return run, nil
}
