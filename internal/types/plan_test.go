package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraint_Validate(t *testing.T) {
	c := Constraint{Kind: ConstraintCoverage, Hard: true, RequiredSkills: []uuid.UUID{uuid.New()}}
	require.NoError(t, c.Validate())
}

func TestConstraint_BudgetRequiresPositiveLimit(t *testing.T) {
	c := Constraint{Kind: ConstraintBudget, Hard: true}

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive limit")

	c.BudgetLimit = 5000
	require.NoError(t, c.Validate())
}

func TestConstraint_SeniorityMixRequiresParameters(t *testing.T) {
	c := Constraint{Kind: ConstraintSeniorityMix, Hard: true}

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mix parameters")

	c.SeniorityMix = &SeniorityMix{MinLevel: 4, MinRatio: 0.5}
	require.NoError(t, c.Validate())
}

func TestConstraint_RejectsUnknownKind(t *testing.T) {
	c := Constraint{Kind: ConstraintKind("vibes")}
	require.Error(t, c.Validate())
}

func TestSeniorityMix_RatioBounds(t *testing.T) {
	c := Constraint{Kind: ConstraintSeniorityMix, SeniorityMix: &SeniorityMix{MinLevel: 3, MinRatio: 1.5}}
	require.Error(t, c.Validate())
}
