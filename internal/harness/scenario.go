package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/request"
)

// Scenario defines one convolution test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Example is an optional catalog example the request starts from.
	// If empty, the request starts from request.Defaults().
	Example string `yaml:"example,omitempty"`

	// RequestFile is an optional CUE or YAML request file overlaid on the
	// base request. Relative paths resolve against the scenario file.
	RequestFile string `yaml:"request_file,omitempty"`

	// Request is overlaid last; only the fields it sets take effect.
	Request request.Request `yaml:"request,omitempty"`

	// ExpectError makes the scenario pass only if the request fails
	// with the given code.
	ExpectError *ExpectError `yaml:"expect_error,omitempty"`

	// Assertions validate a successful result.
	// Supported types: length, axis_start, axis_end, peak_at, peak_value,
	// value_at, max_warnings, methods_agree, commutes
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is an optional fixed run id for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// ExpectError specifies the expected request failure.
type ExpectError struct {
	// Code is the model.ErrorCode, e.g. "PARAMETER_ERROR".
	Code string `yaml:"code"`

	// Field optionally pins the offending input, e.g. "f.interval.x1".
	Field string `yaml:"field,omitempty"`
}

// Assertion validates a numeric property of the result.
//
// Unless noted otherwise assertions look at the primary result: the
// continuous one when it was computed, otherwise the discrete one.
type Assertion struct {
	// Type selects the assertion (see the Assert* constants).
	Type string `yaml:"type"`

	// Method optionally selects "discrete" or "continuous" instead of
	// the primary result.
	Method string `yaml:"method,omitempty"`

	// Value is the expected number (axis_start, axis_end, peak_value, value_at).
	Value *float64 `yaml:"value,omitempty"`

	// T is the time to look at (peak_at, value_at).
	T *float64 `yaml:"t,omitempty"`

	// Count is the expected count (length, max_warnings).
	Count *int `yaml:"count,omitempty"`

	// Tolerance is the allowed absolute error. Default 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertLength       = "length"
	AssertAxisStart    = "axis_start"
	AssertAxisEnd      = "axis_end"
	AssertPeakAt       = "peak_at"
	AssertPeakValue    = "peak_value"
	AssertValueAt      = "value_at"
	AssertMaxWarnings  = "max_warnings"
	AssertMethodsAgree = "methods_agree"
	AssertCommutes     = "commutes"
)

// defaultRunID is used when a scenario does not pin its own.
const defaultRunID = "test-run-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative request_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving request_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.RequestFile != "" && !filepath.IsAbs(scenario.RequestFile) && basePath != "" {
		scenario.RequestFile = filepath.Join(basePath, scenario.RequestFile)
	}
	if scenario.RequestFile != "" {
		if _, err := os.Stat(scenario.RequestFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: request file not found: %s", scenario.RequestFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// BuildRequest assembles the scenario's request: the catalog example (or
// the defaults), then the request file, then the inline request.
func (s *Scenario) BuildRequest() (request.Request, error) {
	base := request.Defaults()
	if s.Example != "" {
		ex, err := request.Lookup(s.Example)
		if err != nil {
			return request.Request{}, err
		}
		base = ex.Request
	}

	if s.RequestFile != "" {
		fileReq, err := request.LoadFile(s.RequestFile)
		if err != nil {
			return request.Request{}, err
		}
		base = base.Overlay(fileReq)
	}

	return base.Overlay(s.Request), nil
}

func (s *Scenario) runID() string {
	if s.RunID == "" {
		return defaultRunID
	}
	return s.RunID
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.ExpectError == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("either expect_error or assertions is required")
	}

	if s.ExpectError != nil && len(s.Assertions) > 0 {
		return fmt.Errorf("expect_error and assertions are mutually exclusive")
	}

	if s.ExpectError != nil {
		switch model.ErrorCode(s.ExpectError.Code) {
		case model.ErrCodeParse, model.ErrCodeParameter, model.ErrCodeExpression,
			model.ErrCodeIncompatibleGrid, model.ErrCodeCancelled:
		case "":
			return fmt.Errorf("expect_error: code is required")
		default:
			return fmt.Errorf("expect_error: unknown error code %q", s.ExpectError.Code)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Method {
	case "", string(model.MethodDiscrete), string(model.MethodContinuous):
	default:
		return fmt.Errorf("assertions[%d]: method must be discrete or continuous, got %q", index, a.Method)
	}

	switch a.Type {
	case AssertLength, AssertMaxWarnings:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertAxisStart, AssertAxisEnd, AssertPeakValue:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertPeakAt:
		if a.T == nil {
			return fmt.Errorf("assertions[%d]: t is required for peak_at", index)
		}
	case AssertValueAt:
		if a.T == nil || a.Value == nil {
			return fmt.Errorf("assertions[%d]: t and value are required for value_at", index)
		}
	case AssertMethodsAgree, AssertCommutes:
		if a.Tolerance == 0 {
			return fmt.Errorf("assertions[%d]: tolerance is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// Discover returns the scenario files (*.yaml, *.yml) directly under dir,
// sorted by name. A non-empty filter is a glob pattern matched against
// the file name without its extension.
func Discover(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(name, ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
