package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/signal"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	Request RequestFlags
}

// SampleOutput is one sampled signal.
type SampleOutput struct {
	Signal     string    `json:"signal"`
	Definition string    `json:"definition"`
	Step       float64   `json:"step"`
	Grid       []float64 `json:"grid"`
	Values     []float64 `json:"values"`
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample <f|g>",
		Short: "Print one sampled signal",
		Long: `Sample f or g on the request's grid and print (t, value) pairs.

Values outside the signal's interval are exactly zero. The request is
assembled the same way as for 'sigconv run'.

Example:
  sigconv sample f --f "sin(t)" --f-interval bounded --f-x1 0 --f-x2 pi --n 9`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sampleSignal(opts, args[0], cmd)
		},
	}

	addRequestFlags(cmd, &opts.Request)

	return cmd
}

func sampleSignal(opts *SampleOptions, which string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if which != "f" && which != "g" {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown signal %q: must be f or g", which))
	}

	req, err := opts.Request.BuildRequest()
	if err != nil {
		return reportRequestError(formatter, err)
	}
	plan, err := req.Parse()
	if err != nil {
		return reportRequestError(formatter, err)
	}

	fn := plan.F
	if which == "g" {
		fn = plan.G
	}
	formatter.VerboseLog("sampling %s = %s", which, fn)

	sig, err := signal.Sample(fn, plan.XMin, plan.XMax, plan.N)
	if err != nil {
		return reportRequestError(formatter, withField(err, which+".expr"))
	}

	result := SampleOutput{
		Signal:     which,
		Definition: fn.String(),
		Step:       sig.Step(),
		Grid:       sig.Grid,
		Values:     sig.Values,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "# %s(t) = %s, dt = %g\n", which, result.Definition, result.Step)
	fmt.Fprintf(w, "%-14s %s\n", "t", "value")
	for i, t := range sig.Grid {
		fmt.Fprintf(w, "%-14g %g\n", t, sig.Values[i])
	}
	return nil
}
