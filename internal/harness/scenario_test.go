package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
request:
  f: {expr: "exp(-t)", interval: {kind: right-bounded, x1: 0}}
  domain: {xmin: -1, xmax: 4, n: 51}
assertions:
  - type: peak_value
    value: 1
    tolerance: 0.1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "exp(-t)", scenario.Request.F.Expr)
	assert.Equal(t, "right-bounded", scenario.Request.F.Interval.Kind)
	assert.Equal(t, "0", scenario.Request.F.Interval.X1)
	assert.Equal(t, "-1", scenario.Request.Domain.XMin)
	assert.Equal(t, "51", scenario.Request.Domain.N)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertPeakValue, scenario.Assertions[0].Type)
	assert.Equal(t, 1.0, *scenario.Assertions[0].Value)
	assert.Equal(t, 0.1, scenario.Assertions[0].Tolerance)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "typo.yaml", `
name: typo
description: "assertion instead of assertions"
assertion:
  - type: length
    count: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownRequestField(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "typo.yaml", `
name: typo
description: "xmn instead of xmin"
request:
  domain: {xmn: -1}
assertions:
  - type: length
    count: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_ResolvesRequestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "req.yaml"), []byte("method: both\n"), 0644))
	path := writeScenario(t, dir, "s.yaml", `
name: with_file
description: "Relative request file"
request_file: req.yaml
assertions:
  - type: methods_agree
    tolerance: 1e-3
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "req.yaml"), scenario.RequestFile)

	req, err := scenario.BuildRequest()
	require.NoError(t, err)
	assert.Equal(t, "both", req.Method)
	assert.Equal(t, "exp(-t**2)", req.F.Expr)
}

func TestLoadScenario_MissingRequestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "s.yaml", `
name: with_file
description: "Relative request file"
request_file: nope.cue
assertions:
  - type: length
    count: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request file not found")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nassertions: [{type: length, count: 1}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nassertions: [{type: length, count: 1}]\n",
			wantErr: "description is required",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\n",
			wantErr: "either expect_error or assertions is required",
		},
		{
			name:    "both error and assertions",
			content: "name: n\ndescription: d\nexpect_error: {code: PARSE_ERROR}\nassertions: [{type: length, count: 1}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown error code",
			content: "name: n\ndescription: d\nexpect_error: {code: OOPS}\n",
			wantErr: `unknown error code "OOPS"`,
		},
		{
			name:    "missing error code",
			content: "name: n\ndescription: d\nexpect_error: {field: domain.n}\n",
			wantErr: "code is required",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nassertions: [{type: area}]\n",
			wantErr: `unknown assertion type "area"`,
		},
		{
			name:    "missing type",
			content: "name: n\ndescription: d\nassertions: [{count: 1}]\n",
			wantErr: "type is required",
		},
		{
			name:    "length without count",
			content: "name: n\ndescription: d\nassertions: [{type: length}]\n",
			wantErr: "count is required for length",
		},
		{
			name:    "negative count",
			content: "name: n\ndescription: d\nassertions: [{type: max_warnings, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "peak_value without value",
			content: "name: n\ndescription: d\nassertions: [{type: peak_value}]\n",
			wantErr: "value is required for peak_value",
		},
		{
			name:    "peak_at without t",
			content: "name: n\ndescription: d\nassertions: [{type: peak_at}]\n",
			wantErr: "t is required for peak_at",
		},
		{
			name:    "value_at without value",
			content: "name: n\ndescription: d\nassertions: [{type: value_at, t: 1}]\n",
			wantErr: "t and value are required",
		},
		{
			name:    "methods_agree without tolerance",
			content: "name: n\ndescription: d\nassertions: [{type: methods_agree}]\n",
			wantErr: "tolerance is required for methods_agree",
		},
		{
			name:    "negative tolerance",
			content: "name: n\ndescription: d\nassertions: [{type: peak_at, t: 0, tolerance: -1}]\n",
			wantErr: "tolerance must be non-negative",
		},
		{
			name:    "bad method",
			content: "name: n\ndescription: d\nassertions: [{type: peak_at, t: 0, method: both}]\n",
			wantErr: "method must be discrete or continuous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildRequest_Layers(t *testing.T) {
	scenario := &Scenario{
		Name:        "layers",
		Description: "example then inline overlay",
		Example:     "gaussian-rect",
	}
	scenario.Request.Domain.N = "201"
	scenario.Request.Method = "both"

	req, err := scenario.BuildRequest()
	require.NoError(t, err)

	assert.Equal(t, "exp(-t**2)", req.F.Expr)
	assert.Equal(t, "bounded", req.G.Interval.Kind)
	assert.Equal(t, "-5", req.Domain.XMin)
	assert.Equal(t, "201", req.Domain.N)
	assert.Equal(t, "both", req.Method)
}

func TestBuildRequest_UnknownExample(t *testing.T) {
	scenario := &Scenario{Name: "x", Description: "x", Example: "no-such-example"}
	_, err := scenario.BuildRequest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-example")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "c_rect.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	paths, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c_rect.yaml"),
	}, paths)

	paths, err = Discover(dir, "*rect*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "c_rect.yaml")}, paths)

	_, err = Discover(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), "")
	require.Error(t, err)
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
