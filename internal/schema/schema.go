// Package schema compiles and applies the entry header schema.
//
// The JSON Schema definition covers types, required and unknown properties,
// the date-time format, the filename shape and tag uniqueness. Agreement
// between filename, date and title cannot be expressed declaratively and is
// checked after the schema passes.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/starford/jrnl/internal/naming"
)

//go:embed header.schema.json
var headerSchema []byte

const resourceURL = "https://jrnl.local/schema/header.json"

// ErrFilenameMismatch is returned when filename is not derived from date and title.
var ErrFilenameMismatch = errors.New("schema: filename does not match date and title")

// Validator is a compiled header schema. It is immutable and safe for
// concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile builds a Validator from a JSON Schema definition.
func Compile(definition []byte) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource(resourceURL, bytes.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	s, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return &Validator{schema: s}, nil
}

var defaultValidator = sync.OnceValue(func() *Validator {
	v, err := Compile(headerSchema)
	if err != nil {
		panic(err)
	}
	return v
})

// Default returns the Validator for the built-in header schema, compiling it
// on first use.
func Default() *Validator {
	return defaultValidator()
}

// Definition returns a copy of the built-in schema definition.
func Definition() []byte {
	return bytes.Clone(headerSchema)
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into
// any) against the schema and the filename derivation rule.
func (v *Validator) Validate(candidate any) error {
	if err := v.schema.Validate(candidate); err != nil {
		return err
	}
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil
	}
	return checkDerived(obj)
}

// Valid reports whether candidate passes Validate.
func (v *Validator) Valid(candidate any) bool {
	return v.Validate(candidate) == nil
}

func checkDerived(obj map[string]any) error {
	date, _ := obj["date"].(string)
	filename, _ := obj["filename"].(string)
	title, _ := obj["title"].(string)

	t, err := naming.ParseDate(date)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if !naming.Matches(filename, t, title) {
		return fmt.Errorf("%w: %q (want %s...)", ErrFilenameMismatch, filename, naming.Prefix(t))
	}
	return nil
}
