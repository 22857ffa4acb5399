package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/request"
	"github.com/roach88/sigconv/internal/signal"
)

// ValidationError is one problem found in a request.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`

	// Set when valid.
	F    string  `json:"f,omitempty"`
	G    string  `json:"g,omitempty"`
	N    int     `json:"n,omitempty"`
	Step float64 `json:"step,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Request RequestFlags
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a request without convolving",
		Long: `Validate a convolution request without running it.

Each part of the request (f, g, domain, method options) is checked on its
own so one bad field does not hide another. When every part is valid both
signals are sampled to catch non-finite values inside their intervals.

Examples:
  sigconv validate --file request.cue
  sigconv validate --f "log(t)" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	addRequestFlags(cmd, &opts.Request)

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	req, err := opts.Request.BuildRequest()
	if err != nil {
		return outputValidateError(formatter, MapErrorCode(err), err.Error(), nil)
	}

	result := validateRequest(req, formatter)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateRequest checks every section of req against the defaults, then
// samples both signals if all sections are valid.
func validateRequest(req request.Request, formatter *OutputFormatter) ValidationResult {
	var errs []ValidationError
	add := func(err error) {
		if err != nil {
			errs = append(errs, toValidationError(err))
		}
	}

	sections := []struct {
		name  string
		apply func(r *request.Request)
	}{
		{"f", func(r *request.Request) { r.F = req.F }},
		{"g", func(r *request.Request) { r.G = req.G }},
		{"domain", func(r *request.Request) { r.Domain = req.Domain }},
		{"method", func(r *request.Request) {
			r.Method, r.Points, r.Timeout = req.Method, req.Points, req.Timeout
		}},
	}
	for _, s := range sections {
		formatter.VerboseLog("Validating %s", s.name)
		probe := request.Defaults()
		s.apply(&probe)
		_, err := probe.Parse()
		add(err)
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}

	// Sections are independent; the combination must also parse.
	plan, err := req.Parse()
	if err != nil {
		add(err)
		return ValidationResult{Valid: false, Errors: errs}
	}

	formatter.VerboseLog("Sampling f and g on %d points", plan.N)
	fs, err := signal.Sample(plan.F, plan.XMin, plan.XMax, plan.N)
	add(withField(err, "f.expr"))
	_, err = signal.Sample(plan.G, plan.XMin, plan.XMax, plan.N)
	add(withField(err, "g.expr"))
	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}

	return ValidationResult{
		Valid: true,
		F:     plan.F.String(),
		G:     plan.G.String(),
		N:     plan.N,
		Step:  fs.Step(),
	}
}

func toValidationError(err error) ValidationError {
	ve := ValidationError{Code: MapErrorCode(err), Message: err.Error()}
	var me *model.Error
	if errors.As(err, &me) {
		ve.Field = me.Field
		ve.Kind = string(me.Code)
		ve.Message = me.Message
		if me.Err != nil {
			ve.Message = fmt.Sprintf("%s: %v", me.Message, me.Err)
		}
	}
	return ve
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Request valid")
	fmt.Fprintf(formatter.Writer, "  f(t) = %s\n", result.F)
	fmt.Fprintf(formatter.Writer, "  g(t) = %s\n", result.G)
	fmt.Fprintf(formatter.Writer, "  %d samples, dt = %g\n", result.N, result.Step)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Unloadable requests are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, message)
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
