package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	labelSchemaOnce sync.Once
	labelSchema     *jsonschema.Schema
	labelSchemaErr  error
)

// compiledLabelSchema compiles BuildLabelJSONSchema once; the schema is
// static, so every extraction shares the compiled form.
func compiledLabelSchema() (*jsonschema.Schema, error) {
	labelSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildLabelJSONSchema())
		if err != nil {
			labelSchemaErr = fmt.Errorf("marshal label schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("label.json", bytes.NewReader(b)); err != nil {
			labelSchemaErr = fmt.Errorf("add label schema: %w", err)
			return
		}
		labelSchema, labelSchemaErr = compiler.Compile("label.json")
	})
	return labelSchema, labelSchemaErr
}

// ValidateLabelJSON checks a model reply against the label output contract.
func ValidateLabelJSON(data []byte) error {
	schema, err := compiledLabelSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal label json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("label json does not match schema: %w", err)
	}
	return nil
}
