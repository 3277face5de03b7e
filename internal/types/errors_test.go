package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "level", Message: "must be between 1 and 5"}
	assert.Equal(t, "validation error: level: must be between 1 and 5", err.Error())

	err = &ValidationError{Message: "invalid payload"}
	assert.Equal(t, "validation error: invalid payload", err.Error())
}

func TestValidationError_Unwrap(t *testing.T) {
	cause := errors.New("bad json")
	err := &ValidationError{Message: "invalid payload", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Resource: "staffing request", ID: "abc"}
	assert.Equal(t, "staffing request not found: abc", err.Error())

	err = &NotFoundError{Resource: "applicable rate"}
	assert.Equal(t, "applicable rate not found", err.Error())
}

func TestInfeasibleConstraints_JoinsViolations(t *testing.T) {
	err := &InfeasibleConstraints{Violations: []ConstraintReport{
		{Kind: ConstraintBudget, Hard: true, Detail: "estimated cost 12000.00 exceeds limit 5000.00"},
		{Kind: ConstraintCoverage, Hard: true, Detail: "no candidate holds required skill"},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "infeasible constraints")
	assert.Contains(t, msg, "budget:")
	assert.Contains(t, msg, "coverage:")
}

func TestConflictError_Message(t *testing.T) {
	err := &ConflictError{PersonID: "p1", Message: "window already allocated"}
	assert.Contains(t, err.Error(), "assignment conflict for person p1")
	assert.Contains(t, err.Error(), "window already allocated")
}

func TestImmutableFieldError_Message(t *testing.T) {
	err := &ImmutableFieldError{Field: "bill_rate_snapshot"}
	assert.Contains(t, err.Error(), "bill_rate_snapshot")
	assert.Contains(t, err.Error(), "immutable")
}

func TestComputationError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("matrix dimension mismatch")
	err := &ComputationError{Message: "assignment failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "assignment failed")

	bare := &ComputationError{Message: "unsupported mode"}
	assert.Equal(t, "computation error: unsupported mode", bare.Error())
	require.NoError(t, bare.Unwrap())
}

func TestErrorTypes_MatchWithErrorsAs(t *testing.T) {
	var wrapped error = fmt.Errorf("resolving: %w", &NotFoundError{Resource: "person", ID: "x"})

	var nf *NotFoundError
	require.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "person", nf.Resource)
}
