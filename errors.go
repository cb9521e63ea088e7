package paintmix

import (
	"fmt"
	"strings"
)

// Structured failure codes surfaced in Response.Error and ValidationError.
const (
	CodeInsufficientPaints        = "INSUFFICIENT_PAINTS"
	CodeVolumeConstraintsConflict = "VOLUME_CONSTRAINTS_CONFLICT"
	CodeNoMatchFound              = "NO_MATCH_FOUND"
	codeValidation                = "validation_error"
)

// FieldError reports one violated input contract.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every field violation found in a request.
// Identical invalid input always produces the same field set.
type ValidationError struct {
	Fields []FieldError
}

// Code returns the most specific failure code carried by the violated
// fields, or the generic validation code.
func (e *ValidationError) Code() string {
	for _, f := range e.Fields {
		if f.Code != "" {
			return f.Code
		}
	}
	return codeValidation
}

// Error formats an aggregated report, one violation per line.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code())
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}
