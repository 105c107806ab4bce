package classifier

import (
	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// Response schemas are declared once as JSON Schema and converted per
// provider: the Gemini path takes the native genai form, OpenAI-compatible
// backends read the jsonschema form off the request config.

var emotionSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"emotion": {
			Type:        "string",
			Description: "The dominant emotion detected in the text. Prioritize 'Danger' if any signs of distress, fear, pain, panic, or conflict are present.",
			Enum:        []any{"Neutral", "Calm", "Happy", "Sad", "Stressed", "Fearful", "Angry", "Danger"},
		},
		"intensity": {
			Type:        "number",
			Description: "A score from 0 to 100 representing the intensity of the emotion.",
		},
		"confidence": {
			Type:        "number",
			Description: "A score from 0.0 to 1.0 representing the model's confidence in the detection of distress. A high score (e.g., >0.85) indicates a high certainty of a real emergency.",
		},
	},
	Required: []string{"emotion", "intensity", "confidence"},
}

var acousticSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"detection_confidence": {
			Type:        "number",
			Description: "Confidence score from 0.00 to 1.00.",
		},
		"distress_type": {
			Type: "string",
			Enum: []any{"none", "scream", "cry", "yell", "fearful"},
		},
		"trigger_status": {
			Type: "string",
			Enum: []any{"none", "medium", "high"},
		},
		"reasoning": {
			Type:        "string",
			Description: "Brief explanation of acoustic patterns found in the text.",
		},
		"recommended_action": {
			Type: "string",
			Enum: []any{"continue_monitoring", "activate_emergency", "escalate_listening"},
		},
	},
	Required: []string{"detection_confidence", "distress_type", "trigger_status", "reasoning", "recommended_action"},
}

var safetyActionSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"action_type": {
			Type: "string",
			Enum: []any{"safety_tip", "de_escalation", "information"},
		},
		"headline": {
			Type:        "string",
			Description: "A short, engaging headline for the suggestion (e.g., 'Grounding Technique').",
		},
		"suggestion": {
			Type:        "string",
			Description: "A single, concise, actionable sentence with a practical tip.",
		},
	},
	Required: []string{"action_type", "headline", "suggestion"},
}

// toGenaiSchema converts a jsonschema.Schema to the genai native form for
// Gemini structured output.
func toGenaiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	}

	for _, e := range s.Enum {
		if str, ok := e.(string); ok {
			out.Enum = append(out.Enum, str)
		}
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	out.Required = s.Required

	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	return out
}
