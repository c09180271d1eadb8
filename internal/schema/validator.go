package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Kind identifies one of the three record list kinds.
type Kind string

const (
	KindTokens     Kind = "tokens"
	KindVaults     Kind = "vaults"
	KindValidators Kind = "validators"
)

// Kinds lists all record kinds in validation order.
var Kinds = []Kind{KindTokens, KindVaults, KindValidators}

// FileErrors groups validation errors for one data file.
type FileErrors struct {
	File   string
	Errors []string
}

// Validator holds the compiled schemas for all record kinds.
type Validator struct {
	schemas map[Kind]*gojsonschema.Schema
}

// NewValidator compiles <kind>.schema.json for every kind under schemaDir.
func NewValidator(schemaDir string) (*Validator, error) {
	schemas := make(map[Kind]*gojsonschema.Schema, len(Kinds))
	for _, kind := range Kinds {
		path := filepath.Join(schemaDir, string(kind)+".schema.json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		schemas[kind] = compiled
	}
	return &Validator{schemas: schemas}, nil
}

// ValidateFile validates one data file against the schema for its kind.
// A malformed JSON document is reported as a single error for the file.
func (v *Validator) ValidateFile(kind Kind, path string) ([]string, error) {
	compiled, ok := v.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}, nil
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errs, nil
}

// ValidateDir validates every src/<kind>/*.json file under dataDir and
// returns the aggregated errors grouped by file, sorted by file name.
func (v *Validator) ValidateDir(dataDir string) ([]FileErrors, error) {
	var collected []FileErrors
	for _, kind := range Kinds {
		pattern := filepath.Join(dataDir, string(kind), "*.json")
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(files)
		for _, file := range files {
			errs, err := v.ValidateFile(kind, file)
			if err != nil {
				return nil, err
			}
			if len(errs) > 0 {
				collected = append(collected, FileErrors{File: file, Errors: errs})
			}
		}
	}
	return collected, nil
}
