package harness

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sigconv/internal/model"
)

// summaryValues is the number of output values sampled into a summary.
const summaryValues = 9

// Summary is the golden-file view of a scenario result: the shape of the
// output and a handful of sampled values, all rendered with six
// significant digits so platform rounding noise does not show.
type Summary struct {
	ScenarioName string
	Result       *Result
}

// FormatNumber renders v with six significant digits. Magnitudes below
// 1e-12 print as "0".
func FormatNumber(v float64) string {
	if math.Abs(v) < 1e-12 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// sampleValues picks up to summaryValues evenly spaced values, always
// including both ends.
func sampleValues(values []float64) []any {
	n := len(values)
	if n <= summaryValues {
		out := make([]any, n)
		for i, v := range values {
			out[i] = FormatNumber(v)
		}
		return out
	}
	out := make([]any, summaryValues)
	for i := range out {
		out[i] = FormatNumber(values[i*(n-1)/(summaryValues-1)])
	}
	return out
}

// toCanonicalMap converts a Summary to a map[string]any for canonical JSON
// serialization. Floats become strings because model.MarshalCanonical
// rejects them.
func (s *Summary) toCanonicalMap() map[string]any {
	r := s.Result
	m := map[string]any{
		"scenario": s.ScenarioName,
		"status":   "ok",
	}

	if r.Run != nil {
		m["run_id"] = r.Run.ID
		m["run"] = map[string]any{
			"created_at":    r.Run.CreatedAt.UTC().Format(time.RFC3339),
			"elapsed":       r.Run.Elapsed.String(),
			"status":        r.Run.Status,
			"warning_count": r.Run.WarningCount,
		}
	}

	if r.Err != nil {
		m["status"] = "error"
		e := map[string]any{"code": string(model.CodeOf(r.Err))}
		var me *model.Error
		if errors.As(r.Err, &me) && me.Field != "" {
			e["field"] = me.Field
		}
		m["error"] = e
	}

	if out := r.Outcome; out != nil {
		res := out.Result()
		_, peakT, peakV := res.Peak()
		m["method"] = string(out.Method)
		m["points"] = res.Len()
		m["axis"] = []any{FormatNumber(res.Axis[0]), FormatNumber(res.Axis[res.Len()-1])}
		m["peak"] = map[string]any{"t": FormatNumber(peakT), "value": FormatNumber(peakV)}
		m["values"] = sampleValues(res.Values)
		m["warnings"] = len(res.Warnings)
		if out.Discrete != nil && out.Continuous != nil {
			m["discrete_values"] = sampleValues(out.Discrete.Values)
		}
		if out.MaxAbsDiff != nil {
			m["max_abs_diff"] = FormatNumber(*out.MaxAbsDiff)
		}
	}

	return m
}

// MarshalSummary renders a result as canonical JSON with a trailing newline.
func MarshalSummary(scenarioName string, result *Result) ([]byte, error) {
	s := Summary{ScenarioName: scenarioName, Result: result}
	data, err := model.MarshalCanonical(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its summary against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the summary doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's summary against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSummary(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
