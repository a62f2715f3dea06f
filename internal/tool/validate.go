package tool

import (
	"encoding/json"
	"fmt"
	"math"
)

// validateArgs checks decoded arguments against a tool's parameter schema
// before dispatch. It catches the shapes that used to slip through and blow
// up inside tool implementations: missing required parameters, wrong
// primitive types, and in particular a nested structure supplied where a
// primitive was declared. Problems name the parameter so the model can
// correct itself.
func validateArgs(schemaJSON, argsJSON json.RawMessage) []string {
	var jsonSchema struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return []string{fmt.Sprintf("unusable parameter schema: %v", err)}
	}

	args := make(map[string]any)
	if len(argsJSON) > 0 {
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			return []string{fmt.Sprintf("arguments are not a JSON object: %v", err)}
		}
	}

	var problems []string

	for _, name := range jsonSchema.Required {
		if _, ok := args[name]; !ok {
			problems = append(problems, fmt.Sprintf("%s is required", name))
		}
	}

	for name, value := range args {
		prop, ok := jsonSchema.Properties[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is not a declared parameter", name))
			continue
		}
		if value == nil {
			continue
		}
		if p := checkShape(name, prop.Type, value); p != "" {
			problems = append(problems, p)
		}
	}

	return problems
}

func checkShape(name, declared string, value any) string {
	switch declared {
	case "string":
		switch value.(type) {
		case string:
			return ""
		case map[string]any, []any:
			return fmt.Sprintf("%s must be a string, got a nested structure", name)
		default:
			return fmt.Sprintf("%s must be a string", name)
		}

	case "integer":
		n, ok := value.(float64)
		if !ok {
			if isNested(value) {
				return fmt.Sprintf("%s must be an integer, got a nested structure", name)
			}
			return fmt.Sprintf("%s must be an integer", name)
		}
		if n != math.Trunc(n) {
			return fmt.Sprintf("%s must be an integer", name)
		}
		return ""

	case "number":
		if _, ok := value.(float64); !ok {
			if isNested(value) {
				return fmt.Sprintf("%s must be a number, got a nested structure", name)
			}
			return fmt.Sprintf("%s must be a number", name)
		}
		return ""

	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("%s must be a boolean", name)
		}
		return ""

	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Sprintf("%s must be an array", name)
		}
		return ""

	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Sprintf("%s must be an object", name)
		}
		return ""

	default:
		// Unconstrained or unrecognized declared type; accept.
		return ""
	}
}

func isNested(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
