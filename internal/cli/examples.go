package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/request"
)

// NewExamplesCommand creates the examples command.
func NewExamplesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples [name]",
		Short: "List the built-in example requests",
		Long: `List the built-in catalog of example signal pairs, or show one in full.

Any example can be run with 'sigconv run --example <name>' and adjusted
with further flags.

Examples:
  sigconv examples
  sigconv examples rc-circuit --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			if len(args) == 1 {
				return showExample(formatter, args[0])
			}
			return listExamples(formatter)
		},
	}

	return cmd
}

func listExamples(formatter *OutputFormatter) error {
	examples, err := request.Catalog()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load example catalog", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(examples)
	}

	w := formatter.Writer
	for _, ex := range examples {
		fmt.Fprintf(w, "%-18s %s\n", ex.Name, ex.Title)
	}
	return nil
}

func showExample(formatter *OutputFormatter, name string) error {
	ex, err := request.Lookup(name)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown example", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ex)
	}

	w := formatter.Writer
	r := ex.Request
	fmt.Fprintf(w, "%s: %s\n", ex.Name, ex.Title)
	if ex.Description != "" {
		fmt.Fprintf(w, "  %s\n", ex.Description)
	}
	fmt.Fprintf(w, "  f(t) = %s  %s\n", r.F.Expr, describeInterval(r.F.Interval))
	fmt.Fprintf(w, "  g(t) = %s  %s\n", r.G.Expr, describeInterval(r.G.Interval))
	fmt.Fprintf(w, "  grid [%s, %s], n = %s, method %s\n", r.Domain.XMin, r.Domain.XMax, r.Domain.N, r.Method)
	return nil
}

func describeInterval(iv request.IntervalSpec) string {
	switch iv.Kind {
	case "", "unbounded":
		return "(-inf, +inf)"
	case "left-bounded":
		return fmt.Sprintf("(-inf, %s]", iv.X2)
	case "right-bounded":
		return fmt.Sprintf("[%s, +inf)", iv.X1)
	default:
		return fmt.Sprintf("[%s, %s]", iv.X1, iv.X2)
	}
}
