package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/request"
)

// RequestFlags are the request fields settable on the command line.
// Blank flags leave the underlying request untouched.
type RequestFlags struct {
	File    string
	Example string

	FExpr, FKind, FX1, FX2 string
	GExpr, GKind, GX1, GX2 string

	XMin, XMax, N string

	Method  string
	Points  string
	Timeout string
}

// addRequestFlags registers the request flags on cmd.
func addRequestFlags(cmd *cobra.Command, rf *RequestFlags) {
	fs := cmd.Flags()
	fs.StringVar(&rf.File, "file", "", "request file (.cue, .yaml, .yml or .json)")
	fs.StringVar(&rf.Example, "example", "", "start from a catalog example (see 'sigconv examples')")

	fs.StringVar(&rf.FExpr, "f", "", "expression for f(t)")
	fs.StringVar(&rf.FKind, "f-interval", "", "interval kind for f (unbounded|left-bounded|right-bounded|bounded)")
	fs.StringVar(&rf.FX1, "f-x1", "", "lower bound of f's interval")
	fs.StringVar(&rf.FX2, "f-x2", "", "upper bound of f's interval")

	fs.StringVar(&rf.GExpr, "g", "", "expression for g(t)")
	fs.StringVar(&rf.GKind, "g-interval", "", "interval kind for g (unbounded|left-bounded|right-bounded|bounded)")
	fs.StringVar(&rf.GX1, "g-x1", "", "lower bound of g's interval")
	fs.StringVar(&rf.GX2, "g-x2", "", "upper bound of g's interval")

	fs.StringVar(&rf.XMin, "xmin", "", "start of the sampling grid")
	fs.StringVar(&rf.XMax, "xmax", "", "end of the sampling grid")
	fs.StringVar(&rf.N, "n", "", "number of samples")

	fs.StringVar(&rf.Method, "method", "", "convolution method (discrete|continuous|both)")
	fs.StringVar(&rf.Points, "points", "", "continuous output axis length (default len(f)+len(g)-1)")
	fs.StringVar(&rf.Timeout, "timeout", "", "deadline for the continuous method, e.g. 30s")
}

// overlay returns the request fields set by flags.
func (rf *RequestFlags) overlay() request.Request {
	return request.Request{
		F: request.SignalSpec{
			Expr:     rf.FExpr,
			Interval: request.IntervalSpec{Kind: rf.FKind, X1: rf.FX1, X2: rf.FX2},
		},
		G: request.SignalSpec{
			Expr:     rf.GExpr,
			Interval: request.IntervalSpec{Kind: rf.GKind, X1: rf.GX1, X2: rf.GX2},
		},
		Domain:  request.Domain{XMin: rf.XMin, XMax: rf.XMax, N: rf.N},
		Method:  rf.Method,
		Points:  rf.Points,
		Timeout: rf.Timeout,
	}
}

// BuildRequest layers the request: defaults or catalog example, then the
// request file, then flags.
func (rf *RequestFlags) BuildRequest() (request.Request, error) {
	base := request.Defaults()
	if rf.Example != "" {
		ex, err := request.Lookup(rf.Example)
		if err != nil {
			return request.Request{}, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
		}
		base = ex.Request
	}

	if rf.File != "" {
		if _, err := os.Stat(rf.File); err != nil {
			return request.Request{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("request file not found: %s", rf.File)}
		}
		fileReq, err := request.LoadFile(rf.File)
		if err != nil {
			return request.Request{}, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		base = base.Overlay(fileReq)
	}

	return base.Overlay(rf.overlay()), nil
}

// LoadError reports a request that could not be assembled: a missing or
// malformed file, or an unknown example.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Request file load failed
	ErrCodeNotFound    = "E005" // Path, example or run not found
	ErrCodeWriteFailed = "E007" // File write error

	// Request errors
	ErrCodeParse            = "E201" // Numeric field not a number
	ErrCodeParameter        = "E202" // Invalid parameter
	ErrCodeExpression       = "E203" // Invalid or non-finite expression
	ErrCodeIncompatibleGrid = "E204" // Signals sampled with different steps
	ErrCodeCancelled        = "E205" // Deadline or cancellation

	// Store errors
	ErrCodeDatabase = "E301" // Database open/read/write failed
)

// MapErrorCode maps a request or load error to a CLI error code.
func MapErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	switch model.CodeOf(err) {
	case model.ErrCodeParse:
		return ErrCodeParse
	case model.ErrCodeParameter:
		return ErrCodeParameter
	case model.ErrCodeExpression:
		return ErrCodeExpression
	case model.ErrCodeIncompatibleGrid:
		return ErrCodeIncompatibleGrid
	case model.ErrCodeCancelled:
		return ErrCodeCancelled
	default:
		return ErrCodeGeneric
	}
}

// errorDetails returns the offending field of a model error, if any.
func errorDetails(err error) map[string]string {
	var me *model.Error
	if errors.As(err, &me) && me.Field != "" {
		return map[string]string{"field": me.Field, "kind": string(me.Code)}
	}
	return nil
}

// reportRequestError prints err in the configured format and returns the
// matching exit error: load errors are command errors, request errors are
// failures.
func reportRequestError(formatter *OutputFormatter, err error) error {
	code := MapErrorCode(err)
	message := err.Error()
	var le *LoadError
	if errors.As(err, &le) {
		message = le.Message
	}
	if outErr := formatter.Error(code, message, errorDetails(err)); outErr != nil {
		return outErr
	}
	if le != nil {
		return WrapExitError(ExitCommandError, "failed to load request", err)
	}
	return WrapExitError(ExitFailure, "request failed", err)
}

func withField(err error, prefix string) error {
	var me *model.Error
	if errors.As(err, &me) {
		return me.WithField(prefix)
	}
	return err
}
