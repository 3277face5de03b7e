// Package types provides type definitions for structured data used throughout the staffing engine.
package types

import (
	"fmt"
	"strings"
)

// ValidationError represents malformed or missing required input detected
// before any computation begins.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NotFoundError represents a lookup of an unknown request, person, or rate scope.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// InfeasibleConstraints signals that one or more hard constraints are provably
// unsatisfiable before any assignment is attempted. It carries the complete
// set of violations so the caller can adjust all of them in one pass.
type InfeasibleConstraints struct {
	Violations []ConstraintReport
}

func (e *InfeasibleConstraints) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Kind, v.Detail))
	}
	return fmt.Sprintf("infeasible constraints: %s", strings.Join(parts, "; "))
}

// ConflictError signals that a concurrent write claimed a person's
// availability window between ranking and assignment creation. The caller
// should re-rank and retry.
type ConflictError struct {
	PersonID string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assignment conflict for person %s: %s", e.PersonID, e.Message)
}

// ImmutableFieldError signals an attempted mutation of a write-once pricing
// snapshot on an existing assignment.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %s is immutable once the assignment is created", e.Field)
}

// ComputationError represents an unexpected internal failure, such as an
// unsupported optimization mode.
type ComputationError struct {
	Message string
	Cause   error
}

func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("computation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("computation error: %s", e.Message)
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}
