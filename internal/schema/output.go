package schema

import (
	"encoding/json"
	"errors"
	"strings"
)

// Output describes the structured result a flow expects from the model.
// Schema is a JSON Schema object sent to providers that support structured
// output; Decode enforces the same contract locally.
type Output[T any] struct {
	Name        string
	Description string
	Schema      map[string]any
}

// Decode parses raw model text into T and checks its required fields.
// Every failure is a *ContractError.
func (o Output[T]) Decode(v *Validator, raw string) (*T, error) {
	text := extractJSON(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &ContractError{Schema: o.Name, Reason: "empty output"}
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ContractError{Schema: o.Name, Field: typeErr.Field, Constraint: "type", Err: err}
		}
		return nil, &ContractError{Schema: o.Name, Reason: "output is not valid JSON", Err: err}
	}

	if err := v.Struct(&out); err != nil {
		verr, ok := AsValidationError(err)
		if !ok || len(verr.Fields) == 0 {
			return nil, &ContractError{Schema: o.Name, Reason: "output failed validation", Err: err}
		}
		first := verr.Fields[0]
		return nil, &ContractError{Schema: o.Name, Field: first.Field, Constraint: first.Constraint}
	}

	return &out, nil
}

// extractJSON pulls the outermost JSON object out of a response that may
// contain markdown fences or extra prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}
