package level

import "fmt"

// Violation classes reported by the validator. Callers use these to tell
// "the generator produced garbage shape" from "well-typed but logically
// incoherent content".
const (
	ViolationMissingField      = "missing_field"
	ViolationOutOfRange        = "out_of_range"
	ViolationEmptyList         = "empty_list"
	ViolationUnknownAction     = "unknown_action"
	ViolationDuplicateObjectID = "duplicate_object_id"
	ViolationConflictingEffect = "conflicting_effect"
	ViolationDanglingFlag      = "dangling_flag"
)

// StructuralError reports a schema-level shape or bounds violation.
type StructuralError struct {
	Class string // one of the Violation constants
	Field string // JSON path of the offending field
	Msg   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural validation failed (%s) at %s: %s", e.Class, e.Field, e.Msg)
}

// SemanticError reports a document that is structurally sound but logically
// broken, such as a condition referencing a flag missing from initialState.
type SemanticError struct {
	Class string
	Field string
	Msg   string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic validation failed (%s) at %s: %s", e.Class, e.Field, e.Msg)
}

func structuralf(class, field, format string, args ...interface{}) error {
	return &StructuralError{Class: class, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func semanticf(class, field, format string, args ...interface{}) error {
	return &SemanticError{Class: class, Field: field, Msg: fmt.Sprintf(format, args...)}
}
