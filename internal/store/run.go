package store

import (
	"errors"
	"time"

	"github.com/roach88/sigconv/internal/model"
)

// Run status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded convolution request.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	RequestHash string `json:"request_hash"`

	// Request is the request's JSON text.
	Request string `json:"request"`

	Method       string `json:"method"`
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Points is the length of the output axis (0 for failed runs).
	Points int `json:"points"`

	WarningCount int `json:"warning_count"`

	// Peak is nil for failed runs.
	Peak *Peak `json:"peak,omitempty"`

	// MaxAbsDiff is set only when both methods ran.
	MaxAbsDiff *float64 `json:"max_abs_diff,omitempty"`

	Elapsed       time.Duration `json:"elapsed"`
	EngineVersion string        `json:"engine_version"`
	CreatedAt     time.Time     `json:"created_at"`

	// Warnings is populated by GetRun only.
	Warnings []model.IntegrationWarning `json:"warnings,omitempty"`
}

// Peak is the location and value of a result's maximum.
type Peak struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// ListOptions filters ListRuns. The zero value lists everything.
type ListOptions struct {
	// Limit caps the number of runs returned. 0 means no limit.
	Limit int

	// RequestHash restricts the listing to one request.
	RequestHash string

	// Since excludes runs created before it.
	Since time.Time
}
