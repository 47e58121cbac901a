package config

import (
	"bytes"
	_ "embed"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
	schemaErr  error
)

// schema compiles the embedded CUE schema once and returns #Config.
func schema() (cue.Value, error) {
	schemaOnce.Do(func() {
		v := cuecontext.New().CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = err
			return
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Config"))
		schemaErr = schemaVal.Err()
	})
	return schemaVal, schemaErr
}

// ValidateYAML checks a config document against the embedded schema.
func ValidateYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	s, err := schema()
	if err != nil {
		return err
	}
	return cueyaml.Validate(data, s)
}
