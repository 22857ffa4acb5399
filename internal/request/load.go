package request

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// LoadFile reads a request file. The format is chosen by extension:
// .cue for CUE, .yaml/.yml/.json for YAML (JSON is a subset of YAML).
func LoadFile(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("failed to read request file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		return LoadCUE(filepath.Base(path), data)
	case ".yaml", ".yml", ".json":
		return LoadYAML(data)
	default:
		return Request{}, fmt.Errorf("unsupported request file extension %q (want .cue, .yaml, .yml or .json)", ext)
	}
}

// LoadYAML decodes a request document. Unknown fields are rejected so
// that typos ("xmx:") fail loudly instead of silently taking a default.
// Scalars of any YAML type decode into the text fields unchanged.
func LoadYAML(data []byte) (Request, error) {
	var r Request
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return Request{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return r, nil
}

// LoadCUE evaluates a CUE request against the #Request schema and decodes
// the concrete result. name is used in CUE error positions.
func LoadCUE(name string, data []byte) (Request, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Request{}, fmt.Errorf("building request schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Request"))

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return Request{}, fmt.Errorf("compiling CUE request: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Request{}, fmt.Errorf("validating CUE request: %w", err)
	}

	js, err := unified.MarshalJSON()
	if err != nil {
		return Request{}, fmt.Errorf("exporting CUE request: %w", err)
	}
	return LoadYAML(js)
}
