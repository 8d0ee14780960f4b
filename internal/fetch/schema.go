package fetch

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator validates decoded documents against JSON Schemas fetched
// alongside them. Compiled schemas are cached by URL.
type SchemaValidator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator returns an empty validator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Compiled reports whether a schema for url is already cached.
func (v *SchemaValidator) Compiled(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.compiled[url]
	return ok
}

// Compile parses and caches the schema document served at url.
func (v *SchemaValidator) Compile(url string, schema []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return fmt.Errorf("parse schema %s: %w", url, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return fmt.Errorf("add schema %s: %w", url, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", url, err)
	}

	v.mu.Lock()
	v.compiled[url] = compiled
	v.mu.Unlock()
	return nil
}

// Validate checks doc against the schema previously compiled for url.
func (v *SchemaValidator) Validate(url string, doc any) error {
	v.mu.Lock()
	compiled, ok := v.compiled[url]
	v.mu.Unlock()
	if !ok {
		return fmt.Errorf("schema %s has not been compiled", url)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("document does not match schema %s: %w", url, err)
	}
	return nil
}
