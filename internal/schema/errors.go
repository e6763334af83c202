package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError identifies a single failed constraint.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError is returned when input fails its schema. Callers must not
// invoke a model after receiving one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", f.Field, f.Constraint, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details maps each failed field to its message, in the shape used by the
// VALIDATION_ERROR response body.
func (e *ValidationError) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := details[f.Field]; !ok {
			details[f.Field] = f.Message
		}
	}
	return details
}

// Field returns the first error reported for name.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// ErrContractViolation matches every ContractError.
var ErrContractViolation = errors.New("output contract violation")

// ContractError reports model output that does not satisfy its output schema.
type ContractError struct {
	Schema     string
	Field      string
	Constraint string
	Reason     string
	Err        error
}

func (e *ContractError) Error() string {
	switch {
	case e.Field != "" && e.Constraint == "required":
		return fmt.Sprintf("output does not match %s: missing required field %q", e.Schema, e.Field)
	case e.Field != "":
		return fmt.Sprintf("output does not match %s: field %q failed %q", e.Schema, e.Field, e.Constraint)
	case e.Err != nil:
		return fmt.Sprintf("output does not match %s: %s: %v", e.Schema, e.Reason, e.Err)
	default:
		return fmt.Sprintf("output does not match %s: %s", e.Schema, e.Reason)
	}
}

func (e *ContractError) Is(target error) bool {
	return target == ErrContractViolation
}

func (e *ContractError) Unwrap() error {
	return e.Err
}
