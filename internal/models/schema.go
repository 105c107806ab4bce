package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// renderSchemaInstruction turns the request's JSON schema, when present,
// into a system-message suffix demanding schema-conformant JSON.
func renderSchemaInstruction(cfg *genai.GenerateContentConfig) string {
	if cfg == nil || cfg.ResponseJsonSchema == nil {
		return ""
	}

	var rendered map[string]any
	switch schema := cfg.ResponseJsonSchema.(type) {
	case *jsonschema.Schema:
		rendered = schemaToMap(schema)
	case map[string]any:
		rendered = schema
	default:
		return ""
	}

	encoded, err := json.Marshal(rendered)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n\nRespond with ONLY a JSON object conforming to this JSON Schema, no prose or fences:\n%s", encoded)
}

// schemaToMap converts a jsonschema.Schema to the plain JSON Schema form.
func schemaToMap(schema *jsonschema.Schema) map[string]any {
	if schema == nil {
		return nil
	}

	result := make(map[string]any)
	if schema.Type != "" {
		result["type"] = schema.Type
	}
	if schema.Description != "" {
		result["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		result["enum"] = schema.Enum
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			if prop != nil {
				properties[name] = schemaToMap(prop)
			}
		}
		result["properties"] = properties
	}
	if len(schema.Required) > 0 {
		result["required"] = schema.Required
	}
	if schema.Items != nil {
		result["items"] = schemaToMap(schema.Items)
	}
	return result
}
