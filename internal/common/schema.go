package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const durationPattern = "^([0-9]+(\\.[0-9]+)?(ns|us|ms|s|m|h))+$"

// configSchema describes scanocr.json. Keys mirror the mapstructure tags of Config,
// except the two original settings which keep their historical spelling.
var configSchema = map[string]any{
	"$schema":              "http://json-schema.org/draft-07/schema#",
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"PathToFiles":      map[string]any{"type": "string"},
		"AddPreProcessing": map[string]any{"type": "boolean"},
		"output_dir":       map[string]any{"type": "string"},
		"workers":          map[string]any{"type": "integer", "minimum": 1, "maximum": 64},
		"recursive":        map[string]any{"type": "boolean"},
		"document_timeout": map[string]any{"type": "string", "pattern": durationPattern},
		"ocr": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"backend":        map[string]any{"type": "string", "enum": []any{BackendCLI, BackendGosseract}},
				"language":       map[string]any{"type": "string", "minLength": 1},
				"engine_mode":    map[string]any{"type": "string"},
				"page_seg_mode":  map[string]any{"type": "integer", "minimum": 0, "maximum": 13},
				"tessdata_dir":   map[string]any{"type": "string"},
				"tesseract":      map[string]any{"type": "string"},
				"pdftoppm":       map[string]any{"type": "string"},
				"dpi":            map[string]any{"type": "integer", "minimum": 50, "maximum": 1200},
				"max_pages":      map[string]any{"type": "integer", "minimum": 0},
				"page_timeout":   map[string]any{"type": "string", "pattern": durationPattern},
				"normalize_text": map[string]any{"type": "boolean"},
			},
		},
		"report": map[string]any{
			"type":       "object",
			"properties": map[string]any{"xlsx_path": map[string]any{"type": "string"}},
		},
		"metrics": map[string]any{
			"type":       "object",
			"properties": map[string]any{"addr": map[string]any{"type": "string"}},
		},
		"log": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"level":  map[string]any{"type": "string", "enum": []any{"debug", "info", "warn", "warning", "error"}},
				"format": map[string]any{"type": "string", "enum": []any{"json", "text"}},
			},
		},
	},
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
