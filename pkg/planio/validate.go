// SPDX-License-Identifier: Apache-2.0

package planio

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/pgdiffhq/catalogdiff/schema"
)

const schemaResourceID = "plan.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema compiles the module's embedded plan schema exactly
// once; every Validate call reuses it.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema.PlanSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("planio: decode embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaResourceID, doc); err != nil {
			compileErr = fmt.Errorf("planio: add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaResourceID)
	})
	return compiled, compileErr
}

// Validate checks raw plan JSON against the embedded schema, the
// source of the InvalidPlan error kind. It validates the wire bytes
// directly rather than a decoded Envelope, so it catches shape errors
// (unknown fields, wrong types) an Envelope struct would silently drop.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return nil
}
